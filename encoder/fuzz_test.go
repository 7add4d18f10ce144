// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encoder

import (
	"errors"
	"os"
	"path"
	"testing"

	"github.com/wax-asm/wax/operand"
	"github.com/wax-asm/wax/program"
	"github.com/wax-asm/wax/x86"
)

const fuzzInputDir = "testdata/fuzz/crashers"

// TestFuzzCorpus replays any saved go-fuzz crasher inputs directly
// against Encode/EncodeContext, without requiring a +build gofuzz
// binary. replay takes the mode, attributes and mnemonic from the first
// four bytes the way Fuzz (fuzz.go) does, but always encodes the fixed
// operands (RAX, imm 1) instead of decoding operands from the input; it
// checks I1 on the context-free result and that EncodeContext fails only
// with ErrImpossibleInstruction. It does not check I3.
func TestFuzzCorpus(t *testing.T) {
	infos, err := os.ReadDir(fuzzInputDir)
	if err != nil {
		if os.IsNotExist(err) {
			t.Skip(err)
		}
		t.Fatal(err)
	}

	for _, info := range infos {
		data, err := os.ReadFile(path.Join(fuzzInputDir, info.Name()))
		if err != nil {
			t.Errorf("%s: %v", info.Name(), err)
			continue
		}
		replay(t, data)
	}
}

func replay(t *testing.T, data []byte) {
	t.Helper()
	if len(data) < 4 {
		return
	}

	mode := x86.I386
	if data[0]&1 != 0 {
		mode = x86.AMD64
	}
	attribs := x86.Attribs(uint16(data[1]) | uint16(data[2])<<8)
	mnemonic := x86.Mnemonic(int(data[3]) % 64)

	ops := []operand.Operand{operand.Reg{ID: x86.RAX}, operand.Imm{Value: 1}}

	res, err := Encode(mode, attribs, mnemonic, len(ops), ops)
	if err == nil && !res.Reloc.Valid() {
		t.Fatalf("Encode(%v): invalid relocation descriptor %+v", mnemonic, res.Reloc)
	}

	table := &program.Table{}
	ctx := &Context{VA: 0x1000, Program: table}
	if _, err := EncodeContext(ctx, mode, attribs, mnemonic, len(ops), ops); err != nil && !errors.Is(err, ErrImpossibleInstruction) {
		t.Fatalf("EncodeContext(%v): %v", mnemonic, err)
	}
}
