// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package encoder is the context-aware x86/x86-64 instruction encoding
// core: given a mnemonic, attributes, an operand list, and a target
// machine mode, it produces machine-code bytes, resolves symbolic label
// references, selects the smallest viable branch encoding, and records
// relocation metadata when a concrete address cannot yet be baked into
// the bytes. The byte-level opcode generator it delegates to lives in
// internal/in; the program model, label allocator, and multi-pass layout
// driver are external collaborators (package program and the caller).
package encoder

import (
	"github.com/wax-asm/wax/operand"
	"github.com/wax-asm/wax/program"
	"github.com/wax-asm/wax/reloc"
)

// InstrSize is a three-state value replacing a magic -1 sentinel for
// ctx.instrSize: a size is either not yet known, known and
// concrete, or known to require a re-encode once the in-flight size is
// available (RIP-relative memory operands need their own encoded length
// to compute a displacement).
type InstrSize struct {
	state instrSizeState
	value uint8
}

type instrSizeState uint8

const (
	sizeUnknown instrSizeState = iota
	sizeKnown
	sizeNeedsResize
)

// Unknown is the zero value: no size has been computed yet.
var Unknown InstrSize

// Known wraps a concrete, already-encoded byte length.
func Known(n uint8) InstrSize { return InstrSize{state: sizeKnown, value: n} }

// NeedsResize is the signal an operand builder sends to request a
// re-encode once the size it produced this pass is known to the caller.
var NeedsResize = InstrSize{state: sizeNeedsResize}

func (s InstrSize) IsUnknown() bool    { return s.state == sizeUnknown }
func (s InstrSize) IsKnown() bool      { return s.state == sizeKnown }
func (s InstrSize) NeedsResize() bool  { return s.state == sizeNeedsResize }
func (s InstrSize) Value() uint8       { return s.value }

// Context is the mutable, per-instruction state a multi-pass layout
// driver threads through repeated Encode calls for the same instruction
// site. The driver owns it across calls; the core never runs two encodes
// against the same Context concurrently.
type Context struct {
	// VA is the virtual address the instruction will occupy. The core
	// never modifies it.
	VA int64

	// InstrSize starts Unknown on first entry to EncodeContext; the core
	// sets it to NeedsResize to request a re-encode, and the driver (or
	// EncodeContext's own loop) feeds back Known(n) between passes.
	InstrSize InstrSize

	// Program resolves label addresses and external-ness.
	Program program.Program

	// NeedsExtraPass is set, never cleared, by the core when an internal
	// label reference could not be resolved this pass. The driver must
	// reset it to false before the next layout pass.
	NeedsExtraPass bool
}

// Reset clears the per-pass fields a layout driver is responsible for
// resetting between passes (InstrSize and NeedsExtraPass), leaving VA and
// Program untouched.
func (c *Context) Reset() {
	c.InstrSize = Unknown
	c.NeedsExtraPass = false
}

// state is the per-call, internal working state the builder stages thread
// through one encodeOnce invocation: the Context (nil when context-free)
// and the relocation the call will ultimately report. The request being
// built and the operand index are passed to the builders alongside it.
// It is always fresh per call, unlike Context.
type state struct {
	ctx *Context // nil means context-free: placeholder addresses only

	relocKind  reloc.Type
	relocData  reloc.Data
	relocLabel operand.LabelId
}

func newState(ctx *Context) *state {
	return &state{ctx: ctx, relocLabel: operand.InvalidLabelId}
}

func (s *state) contextFree() bool { return s.ctx == nil }
