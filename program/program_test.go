// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package program

import "testing"

func TestTableLifecycle(t *testing.T) {
	var tbl Table

	id := tbl.NewLabel()
	if _, ok := tbl.LabelAddress(id); ok {
		t.Fatal("freshly allocated label should not resolve")
	}
	if tbl.LabelExternal(id) {
		t.Fatal("freshly allocated label should not be external")
	}

	tbl.Define(id, 0x1000)
	va, ok := tbl.LabelAddress(id)
	if !ok || va != 0x1000 {
		t.Fatalf("LabelAddress = (%d, %v), want (0x1000, true)", va, ok)
	}

	tbl.Undefine(id)
	if _, ok := tbl.LabelAddress(id); ok {
		t.Fatal("Undefine should make the label unresolved again")
	}

	tbl.MarkExternal(id)
	if !tbl.LabelExternal(id) {
		t.Fatal("MarkExternal should stick")
	}
}

func TestTableUnknownID(t *testing.T) {
	var tbl Table
	if _, ok := tbl.LabelAddress(99); ok {
		t.Fatal("unknown label id should not resolve")
	}
	if tbl.LabelExternal(99) {
		t.Fatal("unknown label id should not be external")
	}
}

func TestTableMustGetPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Define on an unknown id should panic")
		}
	}()
	var tbl Table
	tbl.Define(42, 0)
}
