// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package operand defines the closed operand sum type the encoding core
// visits: a plain register, a literal immediate, a symbolic label
// reference, a memory operand, or an absent slot.
package operand

import "github.com/wax-asm/wax/x86"

// Operand is implemented only by the five cases below (isOperand is
// unexported, so no other package can add one). The builder dispatches on
// it with a type switch (see encoder/operand.go), never with an open Visit
// method; a sixth case that the switch does not list reaches its default
// arm, which panics at run time, instead of being silently ignored.
type Operand interface {
	isOperand()
}

// None is an absent operand slot.
type None struct{}

func (None) isOperand() {}

// Reg is a plain register operand.
type Reg struct {
	ID x86.RegId
}

func (Reg) isOperand() {}

// Imm is a literal signed 64-bit immediate.
type Imm struct {
	Value int64
}

func (Imm) isOperand() {}

// Label is a symbolic reference to a label defined, or not yet defined,
// elsewhere in the program.
type Label struct {
	ID LabelId
}

func (Label) isOperand() {}

// Mem is a memory operand with an optional symbolic label folded into the
// displacement.
type Mem struct {
	Base         x86.RegId
	Index        x86.RegId
	Scale        uint8
	ByteSize     uint16
	Displacement int64
	LabelId      LabelId // InvalidLabelId when no label is attached
	Segment      x86.RegId
}

func (Mem) isOperand() {}
