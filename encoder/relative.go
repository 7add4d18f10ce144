// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encoder

import (
	"github.com/wax-asm/wax/internal/in"
	"github.com/wax-asm/wax/x86"
)

// rel32Placeholder and rel8Placeholder are the load-bearing magic
// constants for unresolved relative targets. rel32Placeholder must sit outside
// any rel8 range (|delta| <= 127) but inside the rel32 range, so that a
// context-free encode still commits to the NEAR branch-type hint.
// rel8Placeholder must sit inside the rel8 range, for the handful of
// mnemonics that only ever have a short form.
const (
	rel32Placeholder int64 = 0x123456
	rel8Placeholder  int64 = 0x44
)

// resolved is what the relative-address resolver hands back to the
// operand builder: the displacement to encode and which branch-type hint
// the byte-level encoder should use.
type resolved struct {
	delta      int64
	branchType in.BranchType
}

// resolveRelative implements component C. Without context the real
// target is irrelevant: the resolver always substitutes the
// mnemonic-appropriate placeholder (the rel32 placeholder for most
// control-flow mnemonics, the rel8 placeholder for the temporary-rel-8
// set; see operand.go's labelPlaceholder) as the displacement and tags it
// NEAR, ignoring whatever target the caller passed in. The byte-level
// encoder still needs a branch-type hint even when no real address is
// available, and for the short-only mnemonics it ignores that hint and
// resolves their true size from whether the placeholder fits in a
// disp8, not from this tag.
//
// With context it prefers the short encoding, falling back to near, and
// panics if neither fits: callers must never reach this on a
// well-formed program.
func resolveRelative(s *state, m x86.Mnemonic, target int64) resolved {
	v := x86.Variant(m)

	if s.contextFree() {
		return resolved{delta: labelPlaceholder(m), branchType: in.BranchNear}
	}

	ctx := s.ctx
	if v.CanRel8() {
		delta8 := target - (ctx.VA + int64(v.Rel8Size))
		if delta8 >= -127 && delta8 <= 127 {
			return resolved{delta: delta8, branchType: in.BranchShort}
		}
	}
	if v.CanRel32() {
		delta32 := target - (ctx.VA + int64(v.Rel32Size))
		if delta32 >= -(1<<31) && delta32 <= (1<<31)-1 {
			return resolved{delta: delta32, branchType: in.BranchNear}
		}
	}

	panic("encoder: relative-address resolver found no viable encoding for a well-formed program")
}
