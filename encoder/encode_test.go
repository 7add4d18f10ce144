// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encoder

import (
	"reflect"
	"testing"

	"github.com/wax-asm/wax/internal/in"
	"github.com/wax-asm/wax/operand"
	"github.com/wax-asm/wax/program"
	"github.com/wax-asm/wax/reloc"
	"github.com/wax-asm/wax/x86"
)

func TestPlaceholderBounds(t *testing.T) {
	// Load-bearing: rel32Placeholder must sit outside any rel8
	// range but inside rel32; rel8Placeholder must sit inside rel8.
	if rel32Placeholder >= -128 && rel32Placeholder <= 127 {
		t.Fatalf("rel32Placeholder %#x falls inside the rel8 range", rel32Placeholder)
	}
	if rel32Placeholder > (1<<31)-1 || rel32Placeholder < -(1<<31) {
		t.Fatalf("rel32Placeholder %#x falls outside the rel32 range", rel32Placeholder)
	}
	if rel8Placeholder < -128 || rel8Placeholder > 127 {
		t.Fatalf("rel8Placeholder %#x falls outside the rel8 range", rel8Placeholder)
	}
}

// TestDeterminism: property 1.
func TestDeterminism(t *testing.T) {
	ops := []operand.Operand{operand.Reg{ID: x86.RAX}, operand.Imm{Value: 42}}
	a, err := Encode(x86.AMD64, 0, x86.MOV, len(ops), ops)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encode(x86.AMD64, 0, x86.MOV, len(ops), ops)
	if err != nil {
		t.Fatal(err)
	}
	if a.Data != b.Data || a.Length != b.Length {
		t.Fatalf("non-deterministic encode: %+v vs %+v", a, b)
	}
}

// TestShortPreference: property 2.
func TestShortPreference(t *testing.T) {
	table := &program.Table{}
	near := table.NewLabel()
	short := table.NewLabel()
	table.Define(near, 0x2000)
	table.Define(short, 0x1002) // delta8 = 0x1002-(0x1000+2) = 0

	ctx := &Context{VA: 0x1000, Program: table}
	res, err := EncodeContext(ctx, x86.AMD64, 0, x86.JMP, 1, []operand.Operand{operand.Label{ID: short}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Length != uint8(x86.Variant(x86.JMP).Rel8Size) {
		t.Fatalf("short-range JMP length = %d, want %d", res.Length, x86.Variant(x86.JMP).Rel8Size)
	}

	ctx = &Context{VA: 0x1000, Program: table}
	res, err = EncodeContext(ctx, x86.AMD64, 0, x86.JMP, 1, []operand.Operand{operand.Label{ID: near}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Length != uint8(x86.Variant(x86.JMP).Rel32Size) {
		t.Fatalf("long-range JMP length = %d, want %d", res.Length, x86.Variant(x86.JMP).Rel32Size)
	}
}

// TestSizeConvergence: property 3.
func TestSizeConvergence(t *testing.T) {
	table := &program.Table{}
	id := table.NewLabel() // left unresolved: exercises the RIP resize loop

	ctx := &Context{VA: 0x1000, Program: table}
	ops := []operand.Operand{
		operand.Reg{ID: x86.RAX},
		operand.Mem{Base: x86.RegNone, Index: x86.RegNone, LabelId: id},
	}
	res, err := EncodeContext(ctx, x86.AMD64, 0, x86.MOV, len(ops), ops)
	if err != nil {
		t.Fatal(err)
	}
	if !ctx.InstrSize.IsKnown() || res.Length != ctx.InstrSize.Value() {
		t.Fatalf("res.Length=%d, ctx.InstrSize=%+v: did not converge", res.Length, ctx.InstrSize)
	}
}

// TestRelocationCoherence: property 4.
func TestRelocationCoherence(t *testing.T) {
	table := &program.Table{}
	id := table.NewLabel()
	table.Define(id, 0x404000)

	t.Run("MOV reg, label", func(t *testing.T) {
		ctx := &Context{VA: 0x1000, Program: table}
		ops := []operand.Operand{operand.Reg{ID: x86.RAX}, operand.Label{ID: id}}
		res, err := EncodeContext(ctx, x86.AMD64, x86.OperandSize64, x86.MOV, len(ops), ops)
		if err != nil {
			t.Fatal(err)
		}
		want := reloc.Descriptor{Kind: reloc.Abs, Data: reloc.Immediate, Label: id}
		if !reflect.DeepEqual(res.Reloc, want) {
			t.Fatalf("reloc = %+v, want %+v", res.Reloc, want)
		}
	})

	t.Run("[label] absolute in 32-bit mode", func(t *testing.T) {
		ctx := &Context{VA: 0x1000, Program: table}
		ops := []operand.Operand{
			operand.Reg{ID: x86.RAX},
			operand.Mem{Base: x86.RegNone, Index: x86.RegNone, LabelId: id},
		}
		res, err := EncodeContext(ctx, x86.I386, 0, x86.MOV, len(ops), ops)
		if err != nil {
			t.Fatal(err)
		}
		if res.Reloc.Kind != reloc.Abs || res.Reloc.Data != reloc.Memory {
			t.Fatalf("reloc = %+v, want Abs/Memory", res.Reloc)
		}
	})

	t.Run("[RIP + external label]", func(t *testing.T) {
		extTable := &program.Table{}
		extId := extTable.NewLabel()
		extTable.MarkExternal(extId)

		ctx := &Context{VA: 0x1000, Program: extTable}
		ops := []operand.Operand{
			operand.Reg{ID: x86.RAX},
			operand.Mem{Base: x86.RegNone, Index: x86.RegNone, LabelId: extId},
		}
		res, err := EncodeContext(ctx, x86.AMD64, 0, x86.MOV, len(ops), ops)
		if err != nil {
			t.Fatal(err)
		}
		if res.Reloc.Kind != reloc.Rel32 || res.Reloc.Data != reloc.Memory || res.Reloc.Label != extId {
			t.Fatalf("reloc = %+v, want Rel32/Memory/%v", res.Reloc, extId)
		}
		if ctx.NeedsExtraPass {
			t.Fatalf("external label must never set NeedsExtraPass")
		}
	})
}

// TestContextFreeSafety: property 5.
func TestContextFreeSafety(t *testing.T) {
	res, err := Encode(x86.AMD64, 0, x86.JMP, 1, []operand.Operand{operand.Label{ID: 0}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Length != uint8(x86.Variant(x86.JMP).Rel32Size) {
		t.Fatalf("context-free JMP label length = %d, want NEAR (%d)", res.Length, x86.Variant(x86.JMP).Rel32Size)
	}

	res, err = Encode(x86.AMD64, 0, x86.JCXZ, 1, []operand.Operand{operand.Label{ID: 0}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Length != uint8(x86.Variant(x86.JCXZ).Rel8Size) {
		t.Fatalf("context-free JCXZ label length = %d, want SHORT (%d)", res.Length, x86.Variant(x86.JCXZ).Rel8Size)
	}
}

// TestExtraPassSignal: property 6.
func TestExtraPassSignal(t *testing.T) {
	table := &program.Table{}
	id := table.NewLabel() // never defined, never external

	ctx := &Context{VA: 0x1000, Program: table}
	_, err := EncodeContext(ctx, x86.AMD64, 0, x86.JMP, 1, []operand.Operand{operand.Label{ID: id}})
	if err != nil {
		t.Fatal(err)
	}
	if !ctx.NeedsExtraPass {
		t.Fatal("NeedsExtraPass should be set for an unresolved, non-external label")
	}
}

// A forward JMP whose label resolves to a near-zero delta after the
// first pass converges to the SHORT form on the second pass.
func TestJMPConvergesToShortOnSecondPass(t *testing.T) {
	table := &program.Table{}
	id := table.NewLabel()

	ctx := &Context{VA: 0x1000, Program: table}
	ops := []operand.Operand{operand.Label{ID: id}}

	res, err := EncodeContext(ctx, x86.AMD64, 0, x86.JMP, 1, ops)
	if err != nil {
		t.Fatal(err)
	}
	if res.Length != 5 || !ctx.NeedsExtraPass {
		t.Fatalf("pass 1: length=%d needsExtraPass=%v, want 5/true", res.Length, ctx.NeedsExtraPass)
	}

	ctx.Reset()
	table.Define(id, 0x1002)
	res, err = EncodeContext(ctx, x86.AMD64, 0, x86.JMP, 1, ops)
	if err != nil {
		t.Fatal(err)
	}
	if res.Length != 2 {
		t.Fatalf("pass 2: length=%d, want 2 (SHORT, delta=0)", res.Length)
	}
}

// A JMP to a label far outside rel8 range encodes NEAR.
func TestJMPFarTargetEncodesNear(t *testing.T) {
	table := &program.Table{}
	id := table.NewLabel()
	table.Define(id, 0x2000)

	ctx := &Context{VA: 0x1000, Program: table}
	res, err := EncodeContext(ctx, x86.AMD64, 0, x86.JMP, 1, []operand.Operand{operand.Label{ID: id}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Length != 5 {
		t.Fatalf("length=%d, want 5 (NEAR)", res.Length)
	}
}

// CALL has no rel8 form, so even a very close label encodes NEAR.
func TestCALLAlwaysEncodesNear(t *testing.T) {
	table := &program.Table{}
	id := table.NewLabel()
	table.Define(id, 0x1040)

	ctx := &Context{VA: 0x1000, Program: table}
	res, err := EncodeContext(ctx, x86.AMD64, 0, x86.CALL, 1, []operand.Operand{operand.Label{ID: id}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Length != 5 {
		t.Fatalf("length=%d, want 5 (NEAR, CALL has no rel8)", res.Length)
	}
}

// JCXZ label within rel8 range succeeds SHORT; far out of range panics
// since JCXZ has no rel32 fallback.
func TestJCXZHasNoNearFallback(t *testing.T) {
	table := &program.Table{}
	near := table.NewLabel()
	table.Define(near, 0x1010)

	ctx := &Context{VA: 0x1000, Program: table}
	res, err := EncodeContext(ctx, x86.AMD64, 0, x86.JCXZ, 1, []operand.Operand{operand.Label{ID: near}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Length != 2 {
		t.Fatalf("length=%d, want 2 (SHORT)", res.Length)
	}

	far := table.NewLabel()
	table.Define(far, 0x1200)
	defer func() {
		if recover() == nil {
			t.Fatal("JCXZ with an out-of-rel8-range target should panic: no rel32 fallback exists")
		}
	}()
	ctx2 := &Context{VA: 0x1000, Program: table}
	EncodeContext(ctx2, x86.AMD64, 0, x86.JCXZ, 1, []operand.Operand{operand.Label{ID: far}})
}

// MOV rax, label (64-bit) produces an Abs/Immediate relocation.
func TestMOVRegLabelProducesAbsImmediateReloc(t *testing.T) {
	table := &program.Table{}
	id := table.NewLabel()
	table.Define(id, 0x404000)

	ctx := &Context{VA: 0x1000, Program: table}
	ops := []operand.Operand{operand.Reg{ID: x86.RAX}, operand.Label{ID: id}}
	res, err := EncodeContext(ctx, x86.AMD64, x86.OperandSize64, x86.MOV, len(ops), ops)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reloc.Kind != reloc.Abs || res.Reloc.Data != reloc.Immediate || res.Reloc.Label != id {
		t.Fatalf("reloc = %+v, want Abs/Immediate/%v", res.Reloc, id)
	}
}

// MOV rax, [label] on AMD64 with an unresolved internal label: base
// promotes to RIP, the size loop runs at least twice, and no relocation
// is produced (internal label).
func TestMOVRegMemRIPRelativeConverges(t *testing.T) {
	table := &program.Table{}
	id := table.NewLabel()

	ctx := &Context{VA: 0x1000, Program: table}
	ops := []operand.Operand{
		operand.Reg{ID: x86.RAX},
		operand.Mem{Base: x86.RegNone, Index: x86.RegNone, LabelId: id},
	}
	res, err := EncodeContext(ctx, x86.AMD64, 0, x86.MOV, len(ops), ops)
	if err != nil {
		t.Fatal(err)
	}
	if !ctx.NeedsExtraPass {
		t.Fatal("unresolved internal label must set NeedsExtraPass")
	}
	if res.Reloc.Kind != reloc.None {
		t.Fatalf("reloc = %+v, want None for an internal label", res.Reloc)
	}
	if !ctx.InstrSize.IsKnown() || res.Length != ctx.InstrSize.Value() {
		t.Fatalf("size loop did not converge: length=%d instrSize=%+v", res.Length, ctx.InstrSize)
	}
}

func TestIS4Fixup(t *testing.T) {
	req := &in.Request{
		Mnemonic:     x86.VFMADDPD,
		OperandCount: 4,
		Operands: [in.MaxOperands]in.Operand{
			{Type: in.Register}, // dst
			{Type: in.Register}, // vvvv
			{Type: in.Register}, // op2
			{Type: in.Register}, // op3
		},
	}
	fixupIS4(req)
	if !req.Operands[3].Reg.Is4 {
		t.Fatal("(reg, reg) pairing should mark operand 3's is4 flag")
	}

	req2 := &in.Request{
		Mnemonic:     x86.VFMADDPD,
		OperandCount: 4,
		Operands: [in.MaxOperands]in.Operand{
			{Type: in.Register},
			{Type: in.Register},
			{Type: in.Register},
			{Type: in.Memory},
		},
	}
	fixupIS4(req2)
	if !req2.Operands[2].Reg.Is4 {
		t.Fatal("(reg, mem) pairing should mark operand 2's is4 flag")
	}

	req3 := &in.Request{
		Mnemonic:     x86.MOV,
		OperandCount: 4,
		Operands: [in.MaxOperands]in.Operand{
			{Type: in.Register},
			{Type: in.Register},
			{Type: in.Register},
			{Type: in.Register},
		},
	}
	fixupIS4(req3)
	if req3.Operands[2].Reg.Is4 || req3.Operands[3].Reg.Is4 {
		t.Fatal("non-IS4 mnemonics must not have their operands touched")
	}
}
