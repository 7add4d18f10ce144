// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package in

import "github.com/wax-asm/wax/x86"

// rexWRXB composes the four REX extension bits.
type rexWRXB byte

const (
	rexBase = byte(0x40)
	RexW    = rexWRXB(8) // 64-bit operand size
	RexR    = rexWRXB(4) // extension of the ModR/M reg field
	RexX    = rexWRXB(2) // extension of the SIB index field
	RexB    = rexWRXB(1) // extension of the ModR/M r/m field, SIB base field, or opcode reg field
)

func regRexR(r x86.RegId) rexWRXB {
	if r.NeedsRexBit() {
		return RexR
	}
	return 0
}

func regRexX(r x86.RegId) rexWRXB {
	if r.NeedsRexBit() {
		return RexX
	}
	return 0
}

func regRexB(r x86.RegId) rexWRXB {
	if r.NeedsRexBit() {
		return RexB
	}
	return 0
}

func sizeRexW(size int) rexWRXB {
	if size == 64 {
		return RexW
	}
	return 0
}
