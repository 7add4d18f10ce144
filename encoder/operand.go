// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encoder

import (
	"github.com/wax-asm/wax/internal/in"
	"github.com/wax-asm/wax/operand"
	"github.com/wax-asm/wax/reloc"
	"github.com/wax-asm/wax/x86"
)

// shortPlaceholderMnemonics is the temporary-rel-8 mnemonic set: exactly
// these three get the in-range rel8Placeholder when their label operand
// is still unresolved. Every other short-only mnemonic (LOOP/LOOPE/
// LOOPNE/JRCXZ/JKZD) still receives the rel32 placeholder even though it
// can only ever be encoded short; this is a real asymmetry, not an
// oversight.
var shortPlaceholderMnemonics = map[x86.Mnemonic]bool{
	x86.JCXZ: true, x86.JECXZ: true, x86.JKNZD: true,
}

func labelPlaceholder(m x86.Mnemonic) int64 {
	if shortPlaceholderMnemonics[m] {
		return rel8Placeholder
	}
	return rel32Placeholder
}

// buildOperand implements component B: it dispatches on the operand sum
// type with a plain type switch (never an open Visit method, per the
// closed-sum-type design in package operand), filling req.Operands[idx]
// and mutating the shared call state as each arm requires.
func buildOperand(s *state, req *in.Request, idx int, mode x86.MachineMode, mnemonic x86.Mnemonic, o operand.Operand) {
	switch v := o.(type) {
	case operand.None:
		req.Operands[idx] = in.Operand{Type: in.Unused}

	case operand.Reg:
		req.Operands[idx] = in.Operand{
			Type: in.Register,
			Reg:  in.RegOperand{Value: v.ID},
		}

	case operand.Imm:
		buildImmediate(s, req, idx, mnemonic, v.Value)

	case operand.Label:
		buildLabel(s, req, idx, mnemonic, v.ID)

	case operand.Mem:
		buildMemory(s, req, idx, mode, v)

	default:
		panic("encoder: unreachable operand variant")
	}
}

// buildImmediate is the Immediate arm. Operand 0 of a control-flow
// instruction is an absolute target address, resolved through the
// relative-address resolver; every other immediate passes through
// unchanged.
func buildImmediate(s *state, req *in.Request, idx int, mnemonic x86.Mnemonic, value int64) {
	if idx == 0 && x86.Variant(mnemonic).ControlFlow {
		r := resolveRelative(s, mnemonic, value)
		req.BranchType = r.branchType
		req.Operands[idx] = in.Operand{Type: in.Immediate, Imm: in.ImmOperand{Value: r.delta}}
		return
	}
	req.Operands[idx] = in.Operand{Type: in.Immediate, Imm: in.ImmOperand{Value: value}}
}

// buildLabel is the Label arm.
func buildLabel(s *state, req *in.Request, idx int, mnemonic x86.Mnemonic, id operand.LabelId) {
	placeholder := labelPlaceholder(mnemonic)

	// With context the placeholder is offset by va, so that once the
	// resolver (or the plain subtraction a control-flow target goes
	// through) computes a delta relative to va, the result is the
	// placeholder itself.
	target := placeholder
	if !s.contextFree() {
		target = s.ctx.VA + placeholder
	}

	resolvedVA, resolvedOK := int64(0), false
	if !s.contextFree() && !s.ctx.Program.LabelExternal(id) {
		if va, ok := s.ctx.Program.LabelAddress(id); ok {
			target = va
			resolvedVA, resolvedOK = va, true
		} else {
			s.ctx.NeedsExtraPass = true
		}
	}

	if idx == 0 && x86.Variant(mnemonic).ControlFlow {
		r := resolveRelative(s, mnemonic, target)
		req.BranchType = r.branchType
		req.Operands[idx] = in.Operand{Type: in.Immediate, Imm: in.ImmOperand{Value: r.delta}}
		return
	}

	if resolvedOK {
		req.Operands[idx] = in.Operand{Type: in.Immediate, Imm: in.ImmOperand{Value: resolvedVA}}
		if mnemonic == x86.MOV && req.Operands[0].Type == in.Register {
			s.relocKind = reloc.Abs
			s.relocData = reloc.Immediate
			s.relocLabel = id
		}
		return
	}

	req.Operands[idx] = in.Operand{Type: in.Immediate, Imm: in.ImmOperand{Value: target}}
}

// buildMemory is the Memory arm, including RIP-relative promotion,
// absolute-memory relocation, and RIP displacement resolution.
func buildMemory(s *state, req *in.Request, idx int, mode x86.MachineMode, m operand.Mem) {
	mem := in.MemOperand{
		Base:         m.Base,
		Index:        m.Index,
		Scale:        m.Scale,
		Size:         m.ByteSize,
		Displacement: m.Displacement,
	}

	usingLabel := m.LabelId != operand.InvalidLabelId
	if usingLabel {
		if !s.contextFree() {
			external := s.ctx.Program.LabelExternal(m.LabelId)
			if va, ok := s.ctx.Program.LabelAddress(m.LabelId); ok {
				mem.Displacement += va
			} else {
				mem.Displacement += rel32Placeholder
				if !external {
					s.ctx.NeedsExtraPass = true
				}
			}
		} else {
			mem.Displacement += rel32Placeholder
		}
	}

	if mode == x86.AMD64 && mem.Base == x86.RegNone && mem.Index == x86.RegNone && usingLabel {
		mem.Base = x86.RegRIP
	}

	if mem.Base == x86.RegNone && mem.Index == x86.RegNone {
		s.relocKind = reloc.Abs
		s.relocData = reloc.Memory
		if usingLabel {
			s.relocLabel = m.LabelId
		}
	}

	if mem.Base == x86.RegRIP {
		va := int64(0)
		if !s.contextFree() {
			va = s.ctx.VA
		}
		instrSize := int64(0)
		if !s.contextFree() && s.ctx.InstrSize.IsKnown() {
			instrSize = int64(s.ctx.InstrSize.Value())
		}
		mem.Displacement -= va + instrSize

		if !s.contextFree() && s.ctx.InstrSize.IsUnknown() {
			s.ctx.InstrSize = NeedsResize
		}

		if usingLabel && !s.contextFree() && s.ctx.Program.LabelExternal(m.LabelId) {
			s.relocKind = reloc.Rel32
			s.relocData = reloc.Memory
			s.relocLabel = m.LabelId
		}
	}

	switch m.Segment {
	case x86.RegGS:
		req.Prefixes |= in.PrefixSegmentGS
	case x86.RegFS:
		req.Prefixes |= in.PrefixSegmentFS
	}

	req.Operands[idx] = in.Operand{Type: in.Memory, Mem: mem}
}
