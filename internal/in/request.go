// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package in is the byte-level x86 opcode generator, the external
// collaborator behind the "byte-level encoder contract". The encoding
// core (package encoder) populates a Request and calls Encode; in knows
// nothing about labels, relocations, or multi-pass layout, and only
// turns a fully-resolved operand list into machine code bytes.
package in

import "github.com/wax-asm/wax/x86"

// MaxOperands is the byte-level encoder's operand-slot capacity.
const MaxOperands = 5

// MaxInstrLen is the longest encoded x86 instruction this encoder emits.
const MaxInstrLen = 15

// BranchType selects which control-flow encoding a control-flow mnemonic
// should use. The encoding core sets this from the relative-address
// resolver before calling Encode; Encode itself never chooses between
// short and near on its own.
type BranchType int

const (
	BranchNone BranchType = iota
	BranchShort
	BranchNear
)

// OperandType tags which field of Operand is meaningful.
type OperandType int

const (
	Unused OperandType = iota
	Register
	Immediate
	Memory
)

// Operand is one populated slot of a Request. Exactly one of Reg, Imm, Mem
// is meaningful, selected by Type; the ModRM/SIB bitfield helpers (mod.go,
// rex.go) stay separate from this struct because the byte-level encoder
// here is request-driven rather than method-per-addressing-mode.
type Operand struct {
	Type OperandType
	Reg  RegOperand
	Imm  ImmOperand
	Mem  MemOperand
}

// RegOperand is a register operand. Is4 marks that, for the fixed
// XOP/FMA4-style mnemonics, this register's id belongs in the upper
// nibble of the instruction's immediate byte rather than in ModRM/VEX.vvvv.
type RegOperand struct {
	Value x86.RegId
	Is4   bool
}

// ImmOperand is a signed immediate, or (for control-flow instructions) the
// already-resolved relative displacement.
type ImmOperand struct {
	Value int64
}

// MemOperand is a memory operand: base + index*scale + displacement, with
// RegNone for an absent base/index, and x86.RegGS/RegFS/RegNone for the
// (rare) segment override, recorded separately in Request.Prefixes.
type MemOperand struct {
	Base         x86.RegId
	Index        x86.RegId
	Scale        uint8 // 1, 2, 4, or 8
	Size         uint16
	Displacement int64
}

// Prefix is a flag set over the legacy prefixes the byte-level encoder
// must emit ahead of the opcode.
type Prefix uint16

const (
	PrefixLock Prefix = 1 << iota
	PrefixRep
	PrefixRepe
	PrefixRepne
	PrefixBnd
	PrefixXacquire
	PrefixXrelease
	PrefixSegmentGS
	PrefixSegmentFS
)

// Request is the fully-resolved instruction description the encoding core
// hands to Encode. Every field must already hold final values: Encode
// performs no label or relative-address resolution of its own.
type Request struct {
	MachineMode     x86.MachineMode
	Mnemonic        x86.Mnemonic
	Prefixes        Prefix
	BranchType      BranchType
	OperandSizeHint int // 0, 8, 16, 32, or 64
	OperandCount    int
	Operands        [MaxOperands]Operand
}
