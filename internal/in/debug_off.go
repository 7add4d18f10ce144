// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !wax_debug

package in

import "github.com/wax-asm/wax/x86"

func debugDump(data []byte, mode x86.MachineMode) {}
