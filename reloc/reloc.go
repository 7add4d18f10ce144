// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reloc names the relocation descriptor the encoding core attaches
// to its result when a concrete address could not be baked into the
// emitted bytes.
package reloc

import "github.com/wax-asm/wax/operand"

// Type is the relocation kind.
type Type int

const (
	// None means the instruction needs no relocation.
	None Type = iota
	// Abs means the full operand value is the label's absolute address.
	Abs
	// Rel32 means the operand is a 32-bit value relative to the
	// instruction following it (RIP-relative memory).
	Rel32
)

func (t Type) String() string {
	switch t {
	case None:
		return "None"
	case Abs:
		return "Abs"
	case Rel32:
		return "Rel32"
	default:
		return "Type(?)"
	}
}

// Data identifies which part of the encoded instruction the relocation
// applies to.
type Data int

const (
	// NoData means Type is None and Data is not meaningful.
	NoData Data = iota
	Immediate
	Memory
)

func (d Data) String() string {
	switch d {
	case NoData:
		return "NoData"
	case Immediate:
		return "Immediate"
	case Memory:
		return "Memory"
	default:
		return "Data(?)"
	}
}

// Descriptor is the relocation metadata carried on an EncoderResult.
// Invariant I1: Kind != None implies Data != NoData.
type Descriptor struct {
	Kind  Type
	Data  Data
	Label operand.LabelId // operand.InvalidLabelId when Kind == None
}

// Valid reports whether the descriptor satisfies invariant I1.
func (d Descriptor) Valid() bool {
	if d.Kind == None {
		return true
	}
	return d.Data != NoData
}
