// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// +build gofuzz

package encoder

import (
	"errors"

	"github.com/wax-asm/wax/operand"
	"github.com/wax-asm/wax/program"
	"github.com/wax-asm/wax/x86"
)

// Fuzz decodes a pseudo-random (mode, attribs, mnemonic, operands) tuple
// from data and round-trips it through both the context-free and
// context-driven entry points. ErrImpossibleInstruction is an expected
// outcome for nonsensical fuzzed operand combinations; Fuzz panics when a
// returned Result violates I1 (relocation kind without relocation data)
// or I3 (length differs from the converged instruction size).
func Fuzz(data []byte) int {
	if len(data) < 4 {
		return -1
	}

	r := byteReader{data: data}

	mode := x86.I386
	if r.bit() {
		mode = x86.AMD64
	}
	attribs := x86.Attribs(r.uint16())
	mnemonic := x86.Mnemonic(int(r.uint16()) % 64)

	numOps := int(r.byte()) % (instructionMaxOperands + 1)
	ops := make([]operand.Operand, numOps)
	for i := range ops {
		ops[i] = r.operand()
	}

	res, err := Encode(mode, attribs, mnemonic, numOps, ops)
	if err == nil {
		checkInvariants(res)
	} else if !errors.Is(err, ErrImpossibleInstruction) {
		panic(err)
	}

	table := &program.Table{}
	id := table.NewLabel()
	table.Define(id, 0x401000)
	for i := range ops {
		if lbl, ok := ops[i].(operand.Label); ok {
			ops[i] = operand.Label{ID: lbl.ID % (id + 1)}
		}
	}

	ctx := &Context{VA: 0x400000, Program: table}
	res, err = EncodeContext(ctx, mode, attribs, mnemonic, numOps, ops)
	if err == nil {
		checkInvariants(res)
		if res.Length != ctx.InstrSize.Value() && ctx.InstrSize.IsKnown() {
			panic("I3 violated: length does not match converged instrSize")
		}
	} else if !errors.Is(err, ErrImpossibleInstruction) {
		panic(err)
	}

	return 1
}

const instructionMaxOperands = 5

func checkInvariants(res Result) {
	if !res.Reloc.Valid() {
		panic("I1 violated: relocKind set without relocData")
	}
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) byte() byte {
	if r.pos >= len(r.data) {
		return 0
	}
	b := r.data[r.pos]
	r.pos++
	return b
}

func (r *byteReader) bit() bool { return r.byte()&1 != 0 }

func (r *byteReader) uint16() uint16 {
	return uint16(r.byte()) | uint16(r.byte())<<8
}

func (r *byteReader) int64() int64 {
	var v int64
	for i := 0; i < 8; i++ {
		v |= int64(r.byte()) << (8 * i)
	}
	return v
}

func (r *byteReader) operand() operand.Operand {
	switch r.byte() % 5 {
	case 0:
		return operand.None{}
	case 1:
		return operand.Reg{ID: x86.RegId(r.byte() % 16)}
	case 2:
		return operand.Imm{Value: r.int64()}
	case 3:
		return operand.Label{ID: operand.LabelId(r.byte() % 4)}
	default:
		return operand.Mem{
			Base:         x86.RegId(r.byte()%17) - 1,
			Index:        x86.RegId(r.byte()%17) - 1,
			Scale:        [4]uint8{1, 2, 4, 8}[r.byte()%4],
			ByteSize:     uint16(r.byte()),
			Displacement: r.int64(),
			LabelId:      operand.InvalidLabelId,
			Segment:      x86.RegNone,
		}
	}
}
