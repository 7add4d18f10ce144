// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package in

import "github.com/wax-asm/wax/x86"

// is4Opcode is a structural approximation of the real VEX/XOP one-byte
// opcodes for the fixed mnemonic set in x86.IsIS4: real silicon splits
// this set across the VEX (0xC4) map for the Intel AVX members
// (VBLENDVPS/PD, VPBLENDVB) and the AMD-specific XOP (0x8F) prefix for the
// FMA4/XOP members. This encoder always emits the VEX-style 3-byte prefix
// with the 0F3A opcode map and a distinct placeholder opcode byte per
// mnemonic, which is enough to exercise the is4 fixup (the register whose
// id lands in the immediate's upper nibble) end to end; byte-for-byte
// silicon fidelity for this rarely used instruction family is not
// attempted (see DESIGN.md).
var is4Opcode = map[x86.Mnemonic]byte{
	x86.VBLENDVPD: 0x4b, x86.VBLENDVPS: 0x4a, x86.VPBLENDVB: 0x4c,
	x86.VFMADDPD: 0x69, x86.VFMADDPS: 0x68, x86.VFMADDSD: 0x6b, x86.VFMADDSS: 0x6a,
	x86.VFMADDSUBPD: 0x5d, x86.VFMADDSUBPS: 0x5c,
	x86.VFMSUBADDPD: 0x5f, x86.VFMSUBADDPS: 0x5e,
	x86.VFMSUBPD: 0x6d, x86.VFMSUBPS: 0x6c, x86.VFMSUBSD: 0x6f, x86.VFMSUBSS: 0x6e,
	x86.VFNMADDPD: 0x79, x86.VFNMADDPS: 0x78, x86.VFNMADDSD: 0x7b, x86.VFNMADDSS: 0x7a,
	x86.VFNMSUBPD: 0x7d, x86.VFNMSUBPS: 0x7c, x86.VFNMSUBSD: 0x7f, x86.VFNMSUBSS: 0x7e,
	x86.VPCMOV: 0xa2,
	x86.VPERMIL2PD: 0x49, x86.VPERMIL2PS: 0x48,
	x86.VPMACSDD: 0x9e, x86.VPMACSDQH: 0x9f, x86.VPMACSDQL: 0x97,
	x86.VPMACSSDD: 0x8e, x86.VPMACSSDQH: 0x8f, x86.VPMACSSDQL: 0x87,
	x86.VPMACSSWW: 0x85, x86.VPMACSSWD: 0x86, x86.VPMACSWD: 0x96, x86.VPMACSWW: 0x95,
	x86.VPMADCSSWD: 0xa6, x86.VPMADCSWD: 0xb6,
	x86.VPPERM: 0xa3,
}

// encodeIS4 assumes 4 operands: dst reg, src1 reg (VEX.vvvv), src2
// reg-or-mem, src3/is4 reg (encoded in the immediate's upper nibble).
// Exactly one of operands 2/3 carries RegOperand.Is4==true, set by the
// encoding core's is4 fixup before Encode is called.
func encodeIS4(o *output, req *Request) error {
	opcode, ok := is4Opcode[req.Mnemonic]
	if !ok || req.OperandCount != 4 {
		return ErrImpossible
	}

	dst := req.Operands[0]
	src1 := req.Operands[1]
	op2 := req.Operands[2]
	op3 := req.Operands[3]

	if dst.Type != Register || src1.Type != Register {
		return ErrImpossible
	}

	var modrmOperand Operand
	var is4Reg x86.RegId

	switch {
	case op2.Type == Register && op2.Reg.Is4:
		modrmOperand, is4Reg = op3, op2.Reg.Value
	case op3.Type == Register && op3.Reg.Is4:
		modrmOperand, is4Reg = op2, op3.Reg.Value
	default:
		return ErrImpossible
	}

	rexR := regRexR(dst.Reg.Value)
	var rexX, rexB rexWRXB
	switch modrmOperand.Type {
	case Register:
		rexB = regRexB(modrmOperand.Reg.Value)
	case Memory:
		rexB = regRexB(modrmOperand.Mem.Base)
		rexX = regRexX(modrmOperand.Mem.Index)
	default:
		return ErrImpossible
	}

	// VEX.R/X/B are stored inverted; vvvv holds the one's complement of
	// the second source register.
	vexRXB := byte(0x7)
	if rexR != 0 {
		vexRXB &^= 0x4
	}
	if rexX != 0 {
		vexRXB &^= 0x2
	}
	if rexB != 0 {
		vexRXB &^= 0x1
	}
	const mapSelect0F3A = 0x03
	vvvv := (^byte(src1.Reg.Value)) & 0xf

	o.byte(0xc4)
	o.byte(vexRXB<<5 | mapSelect0F3A)
	o.byte(0x1<<7 | vvvv<<3 | 0x1) // W=1, L=128 (bit2=0), pp=01 (0x66)
	o.byte(opcode)

	switch modrmOperand.Type {
	case Register:
		o.mod(ModReg, regRO(dst.Reg.Value), regRM(modrmOperand.Reg.Value))
	case Memory:
		emitMem(o, req.MachineMode, regRO(dst.Reg.Value), modrmOperand.Mem)
	}

	o.int8(int8(byte(is4Reg)&0xf) << 4)
	return nil
}
