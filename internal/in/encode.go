// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package in

import (
	"errors"

	"github.com/wax-asm/wax/x86"
)

// ErrImpossible is the only failure this package reports: the request
// cannot be turned into a valid instruction. Mirrors Zydis's
// ZYDIS_STATUS_IMPOSSIBLE_INSTRUCTION.
var ErrImpossible = errors.New("in: impossible instruction")

// Result is what Encode produces on success.
type Result struct {
	Data   [MaxInstrLen]byte
	Length uint8
}

// Encode turns a fully-resolved Request into machine code. It performs no
// label resolution, no relative-address selection, and no is4 fixup:
// those are the encoding core's job (package encoder); by the time a
// Request reaches here every field holds a final value.
func Encode(req *Request) (Result, error) {
	var o output

	m := req.Mnemonic

	switch {
	case x86.Variant(m).ControlFlow:
		if err := encodeBranch(&o, req); err != nil {
			return Result{}, err
		}

	case x86.IsIS4(m):
		if err := encodeIS4(&o, req); err != nil {
			return Result{}, err
		}

	default:
		if err := encodePlain(&o, req); err != nil {
			return Result{}, err
		}
	}

	var res Result
	res.Length = uint8(o.len())
	copy(res.Data[:], o.bytes())
	debugDump(res.Data[:res.Length], req.MachineMode)
	return res, nil
}

func encodePlain(o *output, req *Request) error {
	switch req.Mnemonic {
	case x86.MOV:
		return encodeMOV(o, req)
	case x86.LEA:
		return encodeLEA(o, req)
	case x86.ADD, x86.SUB, x86.AND, x86.OR, x86.XOR, x86.CMP:
		return encodeALU(o, req)
	case x86.TEST:
		return encodeTEST(o, req)
	case x86.PUSH:
		return encodePush(o, req)
	case x86.POP:
		return encodePop(o, req)
	case x86.NOP:
		o.byte(0x90)
		return nil
	case x86.RET:
		o.byte(0xc3)
		return nil
	default:
		return ErrImpossible
	}
}
