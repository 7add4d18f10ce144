// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package instruction is the instruction-level entry point built on top
// of the encoding core: it holds a full instruction description and
// knows how many of its trailing operands are hidden (implicit to the
// mnemonic, never passed to the byte-level encoder) rather than explicit.
package instruction

import (
	"github.com/wax-asm/wax/encoder"
	"github.com/wax-asm/wax/operand"
	"github.com/wax-asm/wax/x86"
)

// MaxOperands mirrors the byte-level encoder's operand-slot capacity;
// an Instruction never carries more operands than that encoder can
// accept.
const MaxOperands = 5

// Instruction is a full instruction description: mnemonic, attributes,
// and an operand list where the last HiddenOperands entries are implicit
// to the mnemonic (e.g. the flags register a SHL reads) and must not be
// counted as explicit operands when delegating to the encoding core.
type Instruction struct {
	Mnemonic       x86.Mnemonic
	Attribs        x86.Attribs
	Operands       [MaxOperands]operand.Operand
	OperandCount   int // total populated slots in Operands, explicit + hidden
	HiddenOperands int // trailing slots of OperandCount that are implicit
}

// explicitOperandCount returns the number of leading operands that are
// not hidden.
func (ins Instruction) explicitOperandCount() int {
	n := ins.OperandCount - ins.HiddenOperands
	if n < 0 {
		return 0
	}
	return n
}

// Encode counts ins's explicit leading operands and delegates to the
// context-driven encoder, matching the "encode(ctx, mode, instruction)"
// entry point shape.
func Encode(ctx *encoder.Context, mode x86.MachineMode, ins Instruction) (encoder.Result, error) {
	n := ins.explicitOperandCount()
	return encoder.EncodeContext(ctx, mode, ins.Attribs, ins.Mnemonic, n, ins.Operands[:n])
}
