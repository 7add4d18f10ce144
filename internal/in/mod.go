// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package in

import "github.com/wax-asm/wax/x86"

// Mod, ModRO, ModRM, Scale, Index and Base are the bitfields of the ModRM
// and SIB bytes, kept as distinct small types so each field's shift is
// written once at the type's construction site instead of being
// re-derived at every call site.
type Mod byte
type ModRO byte
type ModRM byte
type Scale byte
type Index byte
type Base byte

const (
	ModMem       = Mod(0x00)
	ModMemDisp8  = Mod(0x40)
	ModMemDisp32 = Mod(0x80)
	ModReg       = Mod(0xc0)
)

const (
	ModRMSIB    = ModRM(4)
	ModRMDisp32 = ModRM(5) // base-less absolute addressing in ModMem
)

const noIndex = Index(4 << 3) // SIB.index == 100 means "no index"

func regRO(r x86.RegId) ModRO { return ModRO(r.Low3()) << 3 }
func regRM(r x86.RegId) ModRM { return ModRM(r.Low3()) }
func regBase(r x86.RegId) Base { return Base(r.Low3()) }

func regIndex(r x86.RegId) Index {
	if r == x86.RegNone {
		return noIndex
	}
	return Index(r.Low3()) << 3
}

func scaleOf(scale uint8) Scale {
	switch scale {
	case 1:
		return Scale(0)
	case 2:
		return Scale(1) << 6
	case 4:
		return Scale(2) << 6
	case 8:
		return Scale(3) << 6
	default:
		panic("in: bad SIB scale")
	}
}

// dispModSize picks the ModRM addressing variant and displacement width
// for a base-relative memory operand: no displacement (when it's exactly
// zero and the base isn't one that requires an explicit disp8, e.g. RBP),
// disp8 when it fits, otherwise disp32.
func dispModSize(disp int64, forceDisp bool) (mod Mod, size uint8) {
	switch {
	case disp == 0 && !forceDisp:
		return ModMem, 0
	case disp >= -0x80 && disp <= 0x7f:
		return ModMemDisp8, 1
	default:
		return ModMemDisp32, 4
	}
}
