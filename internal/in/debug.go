// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build wax_debug

// This file gates a build-tag dump tool behind wax_debug and decodes
// with the pure-Go, cgo-free golang.org/x/arch/x86/x86asm, so the
// library stays buildable without a system libcapstone install.
package in

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"

	"github.com/wax-asm/wax/x86"
)

func debugDump(data []byte, mode x86.MachineMode) {
	bits := 32
	if mode == x86.AMD64 {
		bits = 64
	}
	inst, err := x86asm.Decode(data, bits)
	if err != nil {
		fmt.Printf("; <undecodable: %v> % x\n", err, data)
		return
	}
	fmt.Printf("; %-28s % x\n", x86asm.GNUSyntax(inst, 0, nil), data[:inst.Len])
}
