// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encoder

import (
	"github.com/wax-asm/wax/internal/in"
	"github.com/wax-asm/wax/x86"
)

// fixupIS4 implements component D. For the fixed mnemonic set in
// x86.IsIS4, operands 2 and 3 (0-indexed) decide which register carries
// the is4 flag: (reg, mem) marks operand 2, (reg, reg) or (mem, reg)
// marks operand 3. Any other pairing is a no-op; the request will go on
// to fail in the byte-level encoder if the mnemonic truly required is4
// operands it didn't get. No other mnemonics are touched.
func fixupIS4(req *in.Request) {
	if !x86.IsIS4(req.Mnemonic) {
		return
	}
	if req.OperandCount < 4 {
		return
	}
	op2, op3 := &req.Operands[2], &req.Operands[3]

	switch {
	case op2.Type == in.Register && op3.Type == in.Memory:
		op2.Reg.Is4 = true
	case op2.Type == in.Register && op3.Type == in.Register:
		op3.Reg.Is4 = true
	case op2.Type == in.Memory && op3.Type == in.Register:
		op3.Reg.Is4 = true
	}
}
