// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package in

import "github.com/wax-asm/wax/x86"

type aluOpcodes struct {
	mr      byte // r/m, r  (dst is r/m)
	rm      byte // r, r/m  (dst is reg)
	immSlot byte // ModRM.reg extension for the 0x81/0x83 imm forms
}

var aluOps = map[x86.Mnemonic]aluOpcodes{
	x86.ADD: {0x01, 0x03, 0},
	x86.OR:  {0x09, 0x0b, 1},
	x86.AND: {0x21, 0x23, 4},
	x86.SUB: {0x29, 0x2b, 5},
	x86.XOR: {0x31, 0x33, 6},
	x86.CMP: {0x39, 0x3b, 7},
}

func encodeALU(o *output, req *Request) error {
	ops, ok := aluOps[req.Mnemonic]
	if !ok || req.OperandCount != 2 {
		return ErrImpossible
	}
	dst, src := req.Operands[0], req.Operands[1]

	emitPrefixes(o, req)

	switch {
	case dst.Type == Register && src.Type == Register:
		o.rexIf(sizeRexW(req.OperandSizeHint) | regRexR(src.Reg.Value) | regRexB(dst.Reg.Value))
		o.byte(ops.mr)
		o.mod(ModReg, regRO(src.Reg.Value), regRM(dst.Reg.Value))

	case dst.Type == Register && src.Type == Memory:
		emitMemOp(o, req.MachineMode, sizeRexW(req.OperandSizeHint)|regRexR(dst.Reg.Value), regRO(dst.Reg.Value), src.Mem, ops.rm)

	case dst.Type == Register && src.Type == Immediate:
		val := src.Imm.Value
		rex := sizeRexW(req.OperandSizeHint) | regRexB(dst.Reg.Value)
		o.rexIf(rex)
		if fitsImm8(val) {
			o.byte(0x83)
			o.mod(ModReg, ModRO(ops.immSlot)<<3, regRM(dst.Reg.Value))
			o.int8(int8(val))
		} else {
			if !fitsImm32(val) {
				return ErrImpossible
			}
			o.byte(0x81)
			o.mod(ModReg, ModRO(ops.immSlot)<<3, regRM(dst.Reg.Value))
			o.int32(int32(val))
		}

	default:
		return ErrImpossible
	}
	return nil
}

func encodeTEST(o *output, req *Request) error {
	if req.OperandCount != 2 {
		return ErrImpossible
	}
	dst, src := req.Operands[0], req.Operands[1]

	emitPrefixes(o, req)

	switch {
	case dst.Type == Register && src.Type == Register:
		o.rexIf(sizeRexW(req.OperandSizeHint) | regRexR(src.Reg.Value) | regRexB(dst.Reg.Value))
		o.byte(0x85)
		o.mod(ModReg, regRO(src.Reg.Value), regRM(dst.Reg.Value))
		return nil

	case dst.Type == Register && src.Type == Immediate:
		if !fitsImm32(src.Imm.Value) {
			return ErrImpossible
		}
		o.rexIf(sizeRexW(req.OperandSizeHint) | regRexB(dst.Reg.Value))
		o.byte(0xf7)
		o.mod(ModReg, ModRO(0), regRM(dst.Reg.Value))
		o.int32(int32(src.Imm.Value))
		return nil

	default:
		return ErrImpossible
	}
}

func encodeLEA(o *output, req *Request) error {
	if req.OperandCount != 2 {
		return ErrImpossible
	}
	dst, src := req.Operands[0], req.Operands[1]
	if dst.Type != Register || src.Type != Memory {
		return ErrImpossible
	}

	emitPrefixes(o, req)
	emitMemOp(o, req.MachineMode, sizeRexW(req.OperandSizeHint)|regRexR(dst.Reg.Value), regRO(dst.Reg.Value), src.Mem, 0x8d)
	return nil
}

func encodePush(o *output, req *Request) error {
	if req.OperandCount != 1 || req.Operands[0].Type != Register {
		return ErrImpossible
	}
	r := req.Operands[0].Reg.Value
	o.rexIf(regRexB(r))
	o.byte(0x50 + r.Low3())
	return nil
}

func encodePop(o *output, req *Request) error {
	if req.OperandCount != 1 || req.Operands[0].Type != Register {
		return ErrImpossible
	}
	r := req.Operands[0].Reg.Value
	o.rexIf(regRexB(r))
	o.byte(0x58 + r.Low3())
	return nil
}
