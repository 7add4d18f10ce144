// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package in

// fitsImm8 reports whether v fits in a sign-extended 8-bit immediate.
func fitsImm8(v int64) bool { return v >= -0x80 && v <= 0x7f }

// fitsImm32 reports whether v fits in a sign-extended 32-bit immediate.
func fitsImm32(v int64) bool { return v >= -0x80000000 && v <= 0x7fffffff }
