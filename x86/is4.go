// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x86

// is4Mnemonics is the fixed XOP/FMA4-style mnemonic set that needs the is4
// fixup (encoder.fixupIS4) applied to one of its operands 2/3. Hand-curated
// from the ISA reference; re-verification against it is advised (an open
// question, left unresolved rather than guessed at).
var is4Mnemonics = map[Mnemonic]bool{
	VBLENDVPD: true, VBLENDVPS: true,
	VFMADDPD: true, VFMADDPS: true, VFMADDSD: true, VFMADDSS: true,
	VFMADDSUBPD: true, VFMADDSUBPS: true,
	VFMSUBADDPD: true, VFMSUBADDPS: true,
	VFMSUBPD: true, VFMSUBPS: true, VFMSUBSD: true, VFMSUBSS: true,
	VFNMADDPD: true, VFNMADDPS: true, VFNMADDSD: true, VFNMADDSS: true,
	VFNMSUBPD: true, VFNMSUBPS: true, VFNMSUBSD: true, VFNMSUBSS: true,
	VPBLENDVB: true, VPCMOV: true,
	VPERMIL2PD: true, VPERMIL2PS: true,
	VPMACSDD: true, VPMACSDQH: true, VPMACSDQL: true,
	VPMACSSDD: true, VPMACSSDQH: true, VPMACSSDQL: true,
	VPMACSSWW: true, VPMACSSWD: true, VPMACSWD: true, VPMACSWW: true,
	VPMADCSSWD: true, VPMADCSWD: true,
	VPPERM: true,
}

// IsIS4 reports whether m is one of the fixed mnemonics requiring the is4
// register-operand fixup.
func IsIS4(m Mnemonic) bool { return is4Mnemonics[m] }
