// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package in

import "github.com/wax-asm/wax/x86"

// emitMem writes the ModRM(.rm)/SIB/displacement bytes for mem, with ro
// holding the already-shifted ModRM.reg field (the other operand, or an
// opcode-extension constant). It returns the REX bits the base/index
// registers require.
func emitMem(o *output, mode x86.MachineMode, ro ModRO, mem MemOperand) rexWRXB {
	if mem.Base == x86.RegNone && mem.Index == x86.RegNone {
		// Absolute or RIP-relative: no base, no index.
		o.mod(ModMem, ro, ModRMDisp32)
		o.int32(int32(mem.Displacement))
		return 0
	}

	if mem.Base == x86.RegRIP {
		o.mod(ModMem, ro, ModRMDisp32)
		o.int32(int32(mem.Displacement))
		return 0
	}

	needSIB := mem.Index != x86.RegNone || mem.Base.Low3() == 4
	forceDisp := mem.Base.Low3() == 5 // RBP/R13 with mod=00 would mean "no base"

	mod, dispSize := dispModSize(mem.Displacement, forceDisp)

	var rex rexWRXB
	if needSIB {
		o.mod(mod, ro, ModRMSIB)
		scale := mem.Scale
		if scale == 0 {
			scale = 1
		}
		o.sib(scaleOf(scale), regIndex(mem.Index), regBase(mem.Base))
		rex = regRexB(mem.Base) | regRexX(mem.Index)
	} else {
		o.mod(mod, ro, regRM(mem.Base))
		rex = regRexB(mem.Base)
	}
	o.intSized(int32(mem.Displacement), dispSize)
	return rex
}

func emitPrefixes(o *output, req *Request) {
	o.byteIf(0xf0, req.Prefixes&PrefixLock != 0)
	o.byteIf(0xf2, req.Prefixes&PrefixXacquire != 0)
	o.byteIf(0xf3, req.Prefixes&(PrefixRep|PrefixRepe|PrefixXrelease) != 0)
	o.byteIf(0xf2, req.Prefixes&PrefixRepne != 0)
	o.byteIf(0x65, req.Prefixes&PrefixSegmentGS != 0)
	o.byteIf(0x64, req.Prefixes&PrefixSegmentFS != 0)
	o.byteIf(0x66, req.OperandSizeHint == 16)
}
