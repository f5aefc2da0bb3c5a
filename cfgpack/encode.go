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

// MessagePack tag bytes for the subset this package supports
// (spec.md §4.1).
const (
	tagNil     = 0xc0
	tagFalse   = 0xc2
	tagTrue    = 0xc3
	tagFloat32 = 0xca
	tagFloat64 = 0xcb
	tagUint8   = 0xcc
	tagUint16  = 0xcd
	tagUint32  = 0xce
	tagUint64  = 0xcf
	tagInt8    = 0xd0
	tagInt16   = 0xd1
	tagInt32   = 0xd2
	tagInt64   = 0xd3
	tagStr8    = 0xd9
	tagStr16   = 0xda
	tagStr32   = 0xdb
	tagMap16   = 0xde
	tagMap32   = 0xdf

	fixintPosMax = 0x7f
	fixmapBase   = 0x80
	fixmapMax    = 0x8f
	fixstrBase   = 0xa0
	fixstrMax    = 0xbf
	fixstrMaxLen = fixstrMax - fixstrBase // 31
	negFixintBase = 0xe0
)

// EncodeUint appends the minimum-sized MessagePack encoding of v.
func EncodeUint(b *Buffer, v uint64) error {
	switch {
	case v <= fixintPosMax:
		dst, err := b.grow(1)
		if err != nil {
			return err
		}
		dst[0] = byte(v)
	case v <= math.MaxUint8:
		dst, err := b.grow(2)
		if err != nil {
			return err
		}
		dst[0] = tagUint8
		dst[1] = byte(v)
	case v <= math.MaxUint16:
		dst, err := b.grow(3)
		if err != nil {
			return err
		}
		dst[0] = tagUint16
		binary.BigEndian.PutUint16(dst[1:], uint16(v))
	case v <= math.MaxUint32:
		dst, err := b.grow(5)
		if err != nil {
			return err
		}
		dst[0] = tagUint32
		binary.BigEndian.PutUint32(dst[1:], uint32(v))
	default:
		dst, err := b.grow(9)
		if err != nil {
			return err
		}
		dst[0] = tagUint64
		binary.BigEndian.PutUint64(dst[1:], v)
	}
	return nil
}

// EncodeUintKey is identical to EncodeUint; keys are encoded values
// like any other (spec.md §4.1).
func EncodeUintKey(b *Buffer, v uint64) error { return EncodeUint(b, v) }

// EncodeInt appends the minimum-sized MessagePack encoding of v,
// deferring to EncodeUint for non-negative values.
func EncodeInt(b *Buffer, v int64) error {
	if v >= 0 {
		return EncodeUint(b, uint64(v))
	}
	switch {
	case v >= -32:
		dst, err := b.grow(1)
		if err != nil {
			return err
		}
		dst[0] = byte(negFixintBase) | byte(int8(v)&0x1f)
	case v >= math.MinInt8:
		dst, err := b.grow(2)
		if err != nil {
			return err
		}
		dst[0] = tagInt8
		dst[1] = byte(int8(v))
	case v >= math.MinInt16:
		dst, err := b.grow(3)
		if err != nil {
			return err
		}
		dst[0] = tagInt16
		binary.BigEndian.PutUint16(dst[1:], uint16(int16(v)))
	case v >= math.MinInt32:
		dst, err := b.grow(5)
		if err != nil {
			return err
		}
		dst[0] = tagInt32
		binary.BigEndian.PutUint32(dst[1:], uint32(int32(v)))
	default:
		dst, err := b.grow(9)
		if err != nil {
			return err
		}
		dst[0] = tagInt64
		binary.BigEndian.PutUint64(dst[1:], uint64(v))
	}
	return nil
}

// EncodeF32 appends a 5-byte big-endian IEEE-754 float32.
func EncodeF32(b *Buffer, v float32) error {
	dst, err := b.grow(5)
	if err != nil {
		return err
	}
	dst[0] = tagFloat32
	binary.BigEndian.PutUint32(dst[1:], math.Float32bits(v))
	return nil
}

// EncodeF64 appends a 9-byte big-endian IEEE-754 float64.
func EncodeF64(b *Buffer, v float64) error {
	dst, err := b.grow(9)
	if err != nil {
		return err
	}
	dst[0] = tagFloat64
	binary.BigEndian.PutUint64(dst[1:], math.Float64bits(v))
	return nil
}

// EncodeStr appends the minimum-sized MessagePack encoding of s.
// The caller is expected to have already enforced any domain-level
// length limit (spec.md §4.1); EncodeStr itself only rejects
// lengths that would not fit the wire format at all.
func EncodeStr(b *Buffer, s []byte) error {
	n := len(s)
	switch {
	case n <= fixstrMaxLen:
		dst, err := b.grow(1 + n)
		if err != nil {
			return err
		}
		dst[0] = byte(fixstrBase | n)
		copy(dst[1:], s)
	case n <= math.MaxUint8:
		dst, err := b.grow(2 + n)
		if err != nil {
			return err
		}
		dst[0] = tagStr8
		dst[1] = byte(n)
		copy(dst[2:], s)
	case n <= math.MaxUint16:
		dst, err := b.grow(3 + n)
		if err != nil {
			return err
		}
		dst[0] = tagStr16
		binary.BigEndian.PutUint16(dst[1:], uint16(n))
		copy(dst[3:], s)
	default:
		return encodeErr("EncodeStr", "string length %d exceeds wire limit %d", n, math.MaxUint16)
	}
	return nil
}

// EncodeStrKey is identical to EncodeStr (spec.md §4.1).
func EncodeStrKey(b *Buffer, s []byte) error { return EncodeStr(b, s) }

// EncodeMapHeader appends a fixmap/map16/map32 header for a map of n pairs.
func EncodeMapHeader(b *Buffer, n int) error {
	switch {
	case n <= fixmapMax-fixmapBase:
		dst, err := b.grow(1)
		if err != nil {
			return err
		}
		dst[0] = byte(fixmapBase | n)
	case n <= math.MaxUint16:
		dst, err := b.grow(3)
		if err != nil {
			return err
		}
		dst[0] = tagMap16
		binary.BigEndian.PutUint16(dst[1:], uint16(n))
	case n <= math.MaxUint32:
		dst, err := b.grow(5)
		if err != nil {
			return err
		}
		dst[0] = tagMap32
		binary.BigEndian.PutUint32(dst[1:], uint32(n))
	default:
		return encodeErr("EncodeMapHeader", "map of %d pairs exceeds wire limit", n)
	}
	return nil
}
