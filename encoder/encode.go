// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encoder

import (
	"golang.org/x/xerrors"

	"github.com/wax-asm/wax/internal/in"
	"github.com/wax-asm/wax/operand"
	"github.com/wax-asm/wax/reloc"
	"github.com/wax-asm/wax/x86"
)

// ErrImpossibleInstruction is the single user-visible failure kind: the
// byte-level encoder rejected the request. Detect it with
// errors.Is/xerrors.Is; Encode and EncodeContext always wrap it with
// %w so the mnemonic that failed is still visible in the message.
var ErrImpossibleInstruction = xerrors.New("encoder: impossible instruction")

// Result is EncoderResult: the encoded bytes plus whatever relocation the
// call produced. It implements RelocationCarrier so callers can pull the
// descriptor back out without caring which entry point produced it.
type Result struct {
	Data   [in.MaxInstrLen]byte
	Length uint8
	Reloc  reloc.Descriptor
}

// RelocationCarrier is the marker interface a successful Result
// satisfies: a narrow single-method interface tagging a concrete type
// rather than inspecting its concrete type directly.
type RelocationCarrier interface {
	Relocation() reloc.Descriptor
}

func (r Result) Relocation() reloc.Descriptor { return r.Reloc }

// maxContextIterations bounds the re-encode loop in EncodeContext.
// Convergence is expected within 2 iterations; this is a
// programming-error backstop, not a normal exit path.
const maxContextIterations = 8

// encodeOnce is component E. It builds a fresh internal state and
// byte-level request, fills each operand through the operand builder,
// applies the is4 fixup, and delegates to the byte-level encoder. ctx may
// be nil for a context-free encode.
func encodeOnce(ctx *Context, mode x86.MachineMode, attribs x86.Attribs, mnemonic x86.Mnemonic, numOps int, operands []operand.Operand) (Result, error) {
	s := newState(ctx)

	req := in.Request{
		MachineMode:     mode,
		Mnemonic:        mnemonic,
		Prefixes:        prefixesOf(attribs),
		OperandSizeHint: attribs.SizeHint(),
		BranchType:      in.BranchNone,
	}

	for i := 0; i < numOps && i < in.MaxOperands; i++ {
		buildOperand(s, &req, i, mode, mnemonic, operands[i])
		req.OperandCount++
	}

	fixupIS4(&req)

	out, err := in.Encode(&req)
	if err != nil {
		return Result{}, xerrors.Errorf("encode %s: %w", mnemonic, ErrImpossibleInstruction)
	}

	return Result{
		Data:   out.Data,
		Length: out.Length,
		Reloc:  reloc.Descriptor{Kind: s.relocKind, Data: s.relocData, Label: s.relocLabel},
	}, nil
}

// prefixesOf converts the caller-facing attribute flags to the byte-level
// encoder's own prefix bit set; the two are kept as distinct types so
// that internal/in stays ignorant of the core's attribute vocabulary.
func prefixesOf(a x86.Attribs) in.Prefix {
	var p in.Prefix
	if a.Has(x86.Lock) {
		p |= in.PrefixLock
	}
	if a.Has(x86.Rep) {
		p |= in.PrefixRep
	}
	if a.Has(x86.Repe) {
		p |= in.PrefixRepe
	}
	if a.Has(x86.Repne) {
		p |= in.PrefixRepne
	}
	if a.Has(x86.Bnd) {
		p |= in.PrefixBnd
	}
	if a.Has(x86.Xacquire) {
		p |= in.PrefixXacquire
	}
	if a.Has(x86.Xrelease) {
		p |= in.PrefixXrelease
	}
	return p
}

// Encode is the context-free entry point: it produces a
// placeholder-relative encoding suitable for size estimation, never
// touching a Context.
func Encode(mode x86.MachineMode, attribs x86.Attribs, mnemonic x86.Mnemonic, numOps int, operands []operand.Operand) (Result, error) {
	return encodeOnce(nil, mode, attribs, mnemonic, numOps, operands)
}

// EncodeContext is component F, the context-driven entry point. It
// resets ctx.InstrSize to Unknown on entry, then re-invokes component E
// until the size either never needed resolving or has converged to a
// fixed point via the iterative re-encode protocol.
func EncodeContext(ctx *Context, mode x86.MachineMode, attribs x86.Attribs, mnemonic x86.Mnemonic, numOps int, operands []operand.Operand) (Result, error) {
	ctx.InstrSize = Unknown

	for i := 0; i < maxContextIterations; i++ {
		res, err := encodeOnce(ctx, mode, attribs, mnemonic, numOps, operands)
		if err != nil {
			return Result{}, err
		}

		if ctx.InstrSize.NeedsResize() {
			ctx.InstrSize = Known(res.Length)
			continue
		}
		if ctx.InstrSize.IsKnown() && res.Length != ctx.InstrSize.Value() {
			ctx.InstrSize = NeedsResize
			continue
		}
		return res, nil
	}

	panic("encoder: context-driven encode failed to converge on an instruction size")
}
