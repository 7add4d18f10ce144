// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operand

// LabelId identifies a Label defined, or not yet defined, in the program
// being assembled.
type LabelId int32

// InvalidLabelId marks the absence of a label reference, e.g. Mem.LabelId
// when the memory operand has no symbolic component.
const InvalidLabelId LabelId = -1

// LabelFlags is a flag set carried by a label definition in the program
// state (see the program package); External is the only flag the encoding
// core inspects.
type LabelFlags uint8

const (
	// External marks a label resolved by the linker, not by this pass.
	External LabelFlags = 1 << iota
)

func (f LabelFlags) Has(other LabelFlags) bool { return f&other != 0 }
