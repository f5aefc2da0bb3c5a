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

package cfgcompress

import (
	"fmt"

	"github.com/Arsievert/cfgpack-sub001/cfgpack"
)

// DecodeLZSS decompresses a small LZSS-variant stream into scratch.
// Unlike DecodeS2 there is no example library in this pack for this
// format (spec.md §1 calls it a bespoke "small LZSS variant"), so
// this is a from-scratch decoder rather than an adapter around a
// third-party codec.
//
// Wire format: a uvarint-encoded decompressed length, followed by a
// token stream. Each token is a flag byte whose 8 bits (LSB first)
// select, for the next 8 "slots", either a single literal byte or a
// 2-byte back-reference (12-bit offset, 4-bit length+3, matching
// the classic LZSS windowed scheme).
func DecodeLZSS(src []byte, scratch []byte) (int, error) {
	wantLen, n, err := uvarint(src)
	if err != nil {
		return 0, fmt.Errorf("cfgcompress.DecodeLZSS: %w: %v", cfgpack.ErrDecode, err)
	}
	if wantLen > len(scratch) {
		return 0, fmt.Errorf("cfgcompress.DecodeLZSS: decompressed size %d exceeds scratch capacity %d: %w", wantLen, len(scratch), cfgpack.ErrBounds)
	}
	src = src[n:]
	out := scratch[:0]
	for len(out) < wantLen {
		if len(src) < 1 {
			return 0, fmt.Errorf("cfgcompress.DecodeLZSS: truncated token stream: %w", cfgpack.ErrDecode)
		}
		flags := src[0]
		src = src[1:]
		for bit := 0; bit < 8 && len(out) < wantLen; bit++ {
			if flags&(1<<uint(bit)) == 0 {
				if len(src) < 1 {
					return 0, fmt.Errorf("cfgcompress.DecodeLZSS: truncated literal: %w", cfgpack.ErrDecode)
				}
				out = append(out, src[0])
				src = src[1:]
				continue
			}
			if len(src) < 2 {
				return 0, fmt.Errorf("cfgcompress.DecodeLZSS: truncated back-reference: %w", cfgpack.ErrDecode)
			}
			packed := uint16(src[0]) | uint16(src[1])<<8
			src = src[2:]
			offset := int(packed & 0x0fff)
			length := int(packed>>12) + 3
			start := len(out) - offset - 1
			if offset == 0 || start < 0 {
				return 0, fmt.Errorf("cfgcompress.DecodeLZSS: back-reference offset %d out of range: %w", offset, cfgpack.ErrDecode)
			}
			for i := 0; i < length && len(out) < wantLen; i++ {
				out = append(out, out[start+i])
			}
		}
	}
	return len(out), nil
}

func uvarint(buf []byte) (int, int, error) {
	var x uint64
	var s uint
	for i, b := range buf {
		if i >= 10 {
			return 0, 0, fmt.Errorf("uvarint overflow")
		}
		if b < 0x80 {
			return int(x | uint64(b)<<s), i + 1, nil
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
	return 0, 0, fmt.Errorf("truncated uvarint")
}
