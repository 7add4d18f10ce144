// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package in

import "github.com/wax-asm/wax/x86"

func encodeMOV(o *output, req *Request) error {
	if req.OperandCount != 2 {
		return ErrImpossible
	}
	dst, src := req.Operands[0], req.Operands[1]

	emitPrefixes(o, req)

	switch {
	case dst.Type == Register && src.Type == Immediate:
		return encodeMOVRegImm(o, req, dst.Reg.Value, src.Imm.Value)

	case dst.Type == Register && src.Type == Register:
		o.rexIf(sizeRexW(req.OperandSizeHint) | regRexR(src.Reg.Value) | regRexB(dst.Reg.Value))
		o.byte(0x89)
		o.mod(ModReg, regRO(src.Reg.Value), regRM(dst.Reg.Value))
		return nil

	case dst.Type == Register && src.Type == Memory:
		emitMemOp(o, req.MachineMode, sizeRexW(req.OperandSizeHint)|regRexR(dst.Reg.Value), regRO(dst.Reg.Value), src.Mem, 0x8b)
		return nil

	case dst.Type == Memory && src.Type == Register:
		emitMemOp(o, req.MachineMode, sizeRexW(req.OperandSizeHint)|regRexR(src.Reg.Value), regRO(src.Reg.Value), dst.Mem, 0x89)
		return nil

	case dst.Type == Memory && src.Type == Immediate:
		if !fitsImm32(src.Imm.Value) {
			return ErrImpossible
		}
		rex := regRexB(dst.Mem.Base) | regRexX(dst.Mem.Index) | sizeRexW(req.OperandSizeHint)
		o.rexIf(rex)
		o.byte(0xc7)
		emitMem(o, req.MachineMode, ModRO(0), dst.Mem)
		o.int32(int32(src.Imm.Value))
		return nil

	default:
		return ErrImpossible
	}
}

func encodeMOVRegImm(o *output, req *Request, r x86.RegId, val int64) error {
	switch req.OperandSizeHint {
	case 64:
		o.rex(RexW | regRexB(r))
		o.byte(0xb8 + r.Low3())
		o.int64(val)
	case 16:
		o.byte(0x66)
		o.rexIf(regRexB(r))
		o.byte(0xb8 + r.Low3())
		o.int16(int16(val))
	case 8:
		o.rexIf(regRexB(r))
		o.byte(0xb0 + r.Low3())
		o.int8(int8(val))
	default:
		if !fitsImm32(val) && req.OperandSizeHint != 64 {
			// Needs the full 64-bit immediate form even though no
			// explicit OperandSize64 attribute was set (e.g. MOV
			// reg, label with a high label address). Fall back to
			// the wide form rather than truncating.
			o.rex(RexW | regRexB(r))
			o.byte(0xb8 + r.Low3())
			o.int64(val)
			return nil
		}
		o.rexIf(regRexB(r))
		o.byte(0xb8 + r.Low3())
		o.int32(int32(val))
	}
	return nil
}

// emitMemOp writes rex (if requested) and opcode before delegating to
// emitMem for the ModRM/SIB/displacement bytes, combining the REX bits the
// caller already knows about (e.g. from the other operand) with the ones
// emitMem derives from the memory operand itself.
func emitMemOp(o *output, mode x86.MachineMode, rex rexWRXB, ro ModRO, mem MemOperand, opcode byte) rexWRXB {
	memRex := regRexB(mem.Base) | regRexX(mem.Index)
	o.rexIf(rex | memRex)
	o.byte(opcode)
	emitMem(o, mode, ro, mem)
	return rex | memRex
}
