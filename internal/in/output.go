// Copyright (c) 2024 The Wax Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package in

import "encoding/binary"

// output is a fixed-size instruction-byte accumulator: every encoder
// writes into one of these and copies the result out once, instead of
// growing a slice per field.
type output struct {
	buf    [MaxInstrLen]byte
	offset uint8
}

func (o *output) len() int              { return int(o.offset) }
func (o *output) bytes() []byte         { return o.buf[:o.offset] }
func (o *output) byte(b byte)           { o.buf[o.offset] = b; o.offset++ }
func (o *output) byteIf(b byte, ok bool) {
	if ok {
		o.byte(b)
	}
}

func (o *output) rex(wrxb rexWRXB) {
	o.buf[o.offset] = rexBase | byte(wrxb)
	o.offset++
}

func (o *output) rexIf(wrxb rexWRXB) {
	if wrxb != 0 {
		o.rex(wrxb)
	}
}

func (o *output) mod(mod Mod, ro ModRO, rm ModRM) {
	o.buf[o.offset] = byte(mod) | byte(ro) | byte(rm)
	o.offset++
}

func (o *output) sib(s Scale, i Index, b Base) {
	o.buf[o.offset] = byte(s) | byte(i) | byte(b)
	o.offset++
}

func (o *output) int8(v int8) {
	o.buf[o.offset] = uint8(v)
	o.offset++
}

func (o *output) int16(v int16) {
	binary.LittleEndian.PutUint16(o.buf[o.offset:], uint16(v))
	o.offset += 2
}

func (o *output) int32(v int32) {
	binary.LittleEndian.PutUint32(o.buf[o.offset:], uint32(v))
	o.offset += 4
}

func (o *output) int64(v int64) {
	binary.LittleEndian.PutUint64(o.buf[o.offset:], uint64(v))
	o.offset += 8
}

// intSized writes v in the smallest of {1, 4} bytes that size calls for,
// the two displacement/immediate widths the x86 ModRM encoding supports
// (disp8/disp32, or a caller-chosen imm8/imm32).
func (o *output) intSized(v int32, size uint8) {
	switch size {
	case 0:
	case 1:
		o.int8(int8(v))
	case 4:
		o.int32(v)
	default:
		panic("in: bad intSized width")
	}
}
