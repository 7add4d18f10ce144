// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package program states the external contract the encoding core leans on
// to resolve symbolic labels: address lookup and the "is this external"
// flag. The actual instruction-stream model, section/label allocator, and
// multi-pass layout driver live outside this package, which only states
// the interface the core calls through, plus a small reference
// implementation usable by tests and simple callers.
package program

import "github.com/wax-asm/wax/operand"

// Program is the read-only view of label state the encoding core needs.
// Addresses may change between passes; External is stable once set.
type Program interface {
	// LabelAddress returns the label's current virtual address and true,
	// or false if it has not been placed yet.
	LabelAddress(id operand.LabelId) (va int64, ok bool)

	// LabelExternal reports whether the label is resolved by a later
	// linking stage rather than by this assembly pass.
	LabelExternal(id operand.LabelId) bool
}

// Table is a minimal, in-memory Program implementation: a flat slice of
// label records indexed by LabelId, generalized from a per-site label
// record to a lookup table keyed by id, since the core needs
// random-access lookup by LabelId, not a sites list.
type Table struct {
	labels []labelRecord
}

type labelRecord struct {
	va       int64
	placed   bool
	external bool
}

// NewLabel allocates a fresh, unplaced, non-external label and returns its
// id.
func (t *Table) NewLabel() operand.LabelId {
	id := operand.LabelId(len(t.labels))
	t.labels = append(t.labels, labelRecord{})
	return id
}

// Define places id at virtual address va.
func (t *Table) Define(id operand.LabelId, va int64) {
	r := t.mustGet(id)
	r.va = va
	r.placed = true
}

// Undefine marks id as not-yet-placed again, as a multi-pass layout driver
// does when it discards a stale address before recomputing it.
func (t *Table) Undefine(id operand.LabelId) {
	r := t.mustGet(id)
	r.placed = false
}

// MarkExternal marks id as resolved by the linker rather than this pass.
func (t *Table) MarkExternal(id operand.LabelId) {
	r := t.mustGet(id)
	r.external = true
}

func (t *Table) mustGet(id operand.LabelId) *labelRecord {
	if int(id) < 0 || int(id) >= len(t.labels) {
		panic("program: unknown label id")
	}
	return &t.labels[id]
}

func (t *Table) LabelAddress(id operand.LabelId) (int64, bool) {
	if int(id) < 0 || int(id) >= len(t.labels) {
		return 0, false
	}
	r := t.labels[id]
	if !r.placed {
		return 0, false
	}
	return r.va, true
}

func (t *Table) LabelExternal(id operand.LabelId) bool {
	if int(id) < 0 || int(id) >= len(t.labels) {
		return false
	}
	return t.labels[id].external
}
