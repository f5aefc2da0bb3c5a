// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package cfgpack

import (
	"encoding/binary"
	"math"
)

// cursor is a read-only scan position over a decode buffer. It is
// the decode-side analogue of Buffer: a borrowed slice plus an
// offset, never owning memory.
type cursor struct {
	buf []byte
	pos int
}

func newCursor(buf []byte) *cursor { return &cursor{buf: buf} }

func (c *cursor) remaining() []byte { return c.buf[c.pos:] }

func (c *cursor) need(n int) ([]byte, error) {
	if c.pos+n > len(c.buf) {
		return nil, decodeErr("decode", "need %d bytes at offset %d, have %d", n, c.pos, len(c.buf)-c.pos)
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) peekByte() (byte, error) {
	if c.pos >= len(c.buf) {
		return 0, decodeErr("decode", "unexpected end of buffer at offset %d", c.pos)
	}
	return c.buf[c.pos], nil
}

// numResult is the generic outcome of decoding any MessagePack
// numeric value: its wire class (which drives widening, spec.md
// §4.4) plus the raw magnitude, available as both unsigned and
// signed/float projections.
type numResult struct {
	class wireClass
	u     uint64
	i     int64
	f32   float32
	f64   float64
}

// decodeUintClassed reads any of the unsigned-integer encodings
// (fixint, u8, u16, u32, u64) and reports which wire class produced it.
func decodeUintClassed(c *cursor) (numResult, error) {
	tag, err := c.peekByte()
	if err != nil {
		return numResult{}, err
	}
	switch {
	case tag <= fixintPosMax:
		b, _ := c.need(1)
		return numResult{class: wcU8, u: uint64(b[0])}, nil
	case tag == tagUint8:
		c.need(1)
		b, err := c.need(1)
		if err != nil {
			return numResult{}, err
		}
		return numResult{class: wcU8, u: uint64(b[0])}, nil
	case tag == tagUint16:
		c.need(1)
		b, err := c.need(2)
		if err != nil {
			return numResult{}, err
		}
		return numResult{class: wcU16, u: uint64(binary.BigEndian.Uint16(b))}, nil
	case tag == tagUint32:
		c.need(1)
		b, err := c.need(4)
		if err != nil {
			return numResult{}, err
		}
		return numResult{class: wcU32, u: uint64(binary.BigEndian.Uint32(b))}, nil
	case tag == tagUint64:
		c.need(1)
		b, err := c.need(8)
		if err != nil {
			return numResult{}, err
		}
		return numResult{class: wcU64, u: binary.BigEndian.Uint64(b)}, nil
	default:
		return numResult{}, decodeErr("decodeUint", "tag 0x%02x is not an unsigned integer", tag)
	}
}

// decodeIntClassed reads any integer encoding, signed or unsigned,
// and reports its wire class. This is the entry point pagein uses,
// since a declared signed slot may legally receive an unsigned
// wire value with headroom (spec.md §4.4).
func decodeIntClassed(c *cursor) (numResult, error) {
	tag, err := c.peekByte()
	if err != nil {
		return numResult{}, err
	}
	if tag <= fixintPosMax || tag == tagUint8 || tag == tagUint16 || tag == tagUint32 || tag == tagUint64 {
		return decodeUintClassed(c)
	}
	switch {
	case tag >= negFixintBase:
		b, _ := c.need(1)
		return numResult{class: wcI8, i: int64(int8(b[0]))}, nil
	case tag == tagInt8:
		c.need(1)
		b, err := c.need(1)
		if err != nil {
			return numResult{}, err
		}
		return numResult{class: wcI8, i: int64(int8(b[0]))}, nil
	case tag == tagInt16:
		c.need(1)
		b, err := c.need(2)
		if err != nil {
			return numResult{}, err
		}
		return numResult{class: wcI16, i: int64(int16(binary.BigEndian.Uint16(b)))}, nil
	case tag == tagInt32:
		c.need(1)
		b, err := c.need(4)
		if err != nil {
			return numResult{}, err
		}
		return numResult{class: wcI32, i: int64(int32(binary.BigEndian.Uint32(b)))}, nil
	case tag == tagInt64:
		c.need(1)
		b, err := c.need(8)
		if err != nil {
			return numResult{}, err
		}
		return numResult{class: wcI64, i: int64(binary.BigEndian.Uint64(b))}, nil
	default:
		return numResult{}, decodeErr("decodeInt", "tag 0x%02x is not an integer", tag)
	}
}

func decodeFloatClassed(c *cursor) (numResult, error) {
	tag, err := c.peekByte()
	if err != nil {
		return numResult{}, err
	}
	switch tag {
	case tagFloat32:
		c.need(1)
		b, err := c.need(4)
		if err != nil {
			return numResult{}, err
		}
		bits := binary.BigEndian.Uint32(b)
		return numResult{class: wcF32, f32: math.Float32frombits(bits), f64: float64(math.Float32frombits(bits))}, nil
	case tagFloat64:
		c.need(1)
		b, err := c.need(8)
		if err != nil {
			return numResult{}, err
		}
		bits := binary.BigEndian.Uint64(b)
		return numResult{class: wcF64, f64: math.Float64frombits(bits)}, nil
	default:
		return numResult{}, decodeErr("decodeFloat", "tag 0x%02x is not a float", tag)
	}
}

// DecodeUint reads an unsigned integer of any supported width and
// returns it widened to uint64. Callers that need the wire class
// for coercion decisions should use the internal decode path in
// pagein.go instead; DecodeUint is the public, type-committed form
// used when the destination kind is already known to be U64-class.
func DecodeUint(buf []byte) (uint64, []byte, error) {
	c := newCursor(buf)
	r, err := decodeUintClassed(c)
	if err != nil {
		return 0, buf, err
	}
	return r.u, c.remaining(), nil
}

// DecodeInt reads a signed or unsigned integer and returns it as
// int64 (see DecodeUint's caveat).
func DecodeInt(buf []byte) (int64, []byte, error) {
	c := newCursor(buf)
	r, err := decodeIntClassed(c)
	if err != nil {
		return 0, buf, err
	}
	if r.class == wcU8 || r.class == wcU16 || r.class == wcU32 || r.class == wcU64 {
		return int64(r.u), c.remaining(), nil
	}
	return r.i, c.remaining(), nil
}

// DecodeF32 reads a 5-byte float32.
func DecodeF32(buf []byte) (float32, []byte, error) {
	c := newCursor(buf)
	r, err := decodeFloatClassed(c)
	if err != nil {
		return 0, buf, err
	}
	if r.class != wcF32 {
		return 0, buf, decodeErr("DecodeF32", "value is not a float32")
	}
	return r.f32, c.remaining(), nil
}

// DecodeF64 reads a 5- or 9-byte float (float32 values are widened).
func DecodeF64(buf []byte) (float64, []byte, error) {
	c := newCursor(buf)
	r, err := decodeFloatClassed(c)
	if err != nil {
		return 0, buf, err
	}
	return r.f64, c.remaining(), nil
}

// DecodeStr reads a fixstr/str8/str16/str32 and returns its bytes
// (aliasing buf, not copied) along with the remaining input.
func DecodeStr(buf []byte) ([]byte, []byte, error) {
	c := newCursor(buf)
	s, err := decodeStrBytes(c)
	if err != nil {
		return nil, buf, err
	}
	return s, c.remaining(), nil
}

func decodeStrBytes(c *cursor) ([]byte, error) {
	tag, err := c.peekByte()
	if err != nil {
		return nil, err
	}
	var n int
	switch {
	case tag >= fixstrBase && tag <= fixstrMax:
		c.need(1)
		n = int(tag - fixstrBase)
	case tag == tagStr8:
		c.need(1)
		b, err := c.need(1)
		if err != nil {
			return nil, err
		}
		n = int(b[0])
	case tag == tagStr16:
		c.need(1)
		b, err := c.need(2)
		if err != nil {
			return nil, err
		}
		n = int(binary.BigEndian.Uint16(b))
	case tag == tagStr32:
		c.need(1)
		b, err := c.need(4)
		if err != nil {
			return nil, err
		}
		n64 := binary.BigEndian.Uint32(b)
		if n64 > math.MaxUint16 {
			return nil, decodeErr("decodeStr", "str32 length %d exceeds wire limit", n64)
		}
		n = int(n64)
	default:
		return nil, decodeErr("decodeStr", "tag 0x%02x is not a string", tag)
	}
	return c.need(n)
}

// DecodeMapHeader reads a fixmap/map16/map32 header and returns the
// pair count.
func DecodeMapHeader(buf []byte) (int, []byte, error) {
	c := newCursor(buf)
	n, err := decodeMapHeader(c)
	if err != nil {
		return 0, buf, err
	}
	return n, c.remaining(), nil
}

func decodeMapHeader(c *cursor) (int, error) {
	tag, err := c.peekByte()
	if err != nil {
		return 0, err
	}
	switch {
	case tag >= fixmapBase && tag <= fixmapMax:
		c.need(1)
		return int(tag - fixmapBase), nil
	case tag == tagMap16:
		c.need(1)
		b, err := c.need(2)
		if err != nil {
			return 0, err
		}
		return int(binary.BigEndian.Uint16(b)), nil
	case tag == tagMap32:
		c.need(1)
		b, err := c.need(4)
		if err != nil {
			return 0, err
		}
		return int(binary.BigEndian.Uint32(b)), nil
	default:
		return 0, decodeErr("decodeMapHeader", "tag 0x%02x is not a map", tag)
	}
}

// SkipValue advances past one encoded value of any supported type
// (including nil/false/true, which only ever appear for skip
// purposes, spec.md §4.1) without decoding it. It is implemented
// iteratively with an explicit depth-bounded stack of pending
// element counts, never native recursion, per spec.md §4.1 and §9
// ("Skip recursion").
func SkipValue(buf []byte) ([]byte, error) {
	c := newCursor(buf)
	if err := skipValue(c, SkipMaxDepth); err != nil {
		return buf, err
	}
	return c.remaining(), nil
}

// skipValue walks c iteratively. stack[d] holds the number of
// values still owed at nesting depth d; depth 0 starts owing
// exactly one value (the top-level value being skipped). Opening a
// map pushes a new frame owing 2*n values (n key/value pairs)
// instead of recursing; closing a frame (owing reaches zero) pops
// back to its parent. The frame stack is a fixed array of
// SkipMaxDepth+1 ints (8 bytes each on 64-bit targets), so its size
// does not depend on the input.
func skipValue(c *cursor, maxDepth int) error {
	var stack [SkipMaxDepth + 1]int
	depth := 0
	stack[0] = 1
	for {
		for depth > 0 && stack[depth] == 0 {
			depth--
		}
		if depth == 0 && stack[0] == 0 {
			break
		}
		stack[depth]--
		isMap, n, err := skipOne(c)
		if err != nil {
			return err
		}
		if isMap && n > 0 {
			depth++
			if depth > maxDepth {
				return decodeErr("SkipValue", "nesting exceeds max depth %d", maxDepth)
			}
			stack[depth] = n * 2
		}
	}
	return nil
}

// skipOne consumes one value's header (and, for scalars, its full
// body) at c. If the value is a map it does not consume its
// contents -- it reports the pair count so the caller can push a
// new frame.
func skipOne(c *cursor) (isMap bool, pairs int, err error) {
	tag, err := c.peekByte()
	if err != nil {
		return false, 0, err
	}
	switch {
	case tag == tagNil || tag == tagFalse || tag == tagTrue:
		c.need(1)
		return false, 0, nil
	case tag <= fixintPosMax, tag >= negFixintBase,
		tag == tagUint8, tag == tagUint16, tag == tagUint32, tag == tagUint64,
		tag == tagInt8, tag == tagInt16, tag == tagInt32, tag == tagInt64:
		_, err := decodeIntClassed(c)
		return false, 0, err
	case tag == tagFloat32, tag == tagFloat64:
		_, err := decodeFloatClassed(c)
		return false, 0, err
	case (tag >= fixstrBase && tag <= fixstrMax), tag == tagStr8, tag == tagStr16, tag == tagStr32:
		_, err := decodeStrBytes(c)
		return false, 0, err
	case (tag >= fixmapBase && tag <= fixmapMax), tag == tagMap16, tag == tagMap32:
		n, err := decodeMapHeader(c)
		if err != nil {
			return false, 0, err
		}
		return true, n, nil
	default:
		return false, 0, decodeErr("SkipValue", "tag 0x%02x is not a recognised type", tag)
	}
}
