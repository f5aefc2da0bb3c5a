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
	"bytes"
	"testing"
)

// TestMinimumEncoding is scenario S2: every integer encodes to its
// shortest legal MessagePack form.
func TestMinimumEncoding(t *testing.T) {
	cases := []struct {
		name string
		enc  func(*Buffer) error
		want []byte
	}{
		{"u64=127", func(b *Buffer) error { return EncodeUint(b, 127) }, []byte{0x7f}},
		{"u64=128", func(b *Buffer) error { return EncodeUint(b, 128) }, []byte{0xcc, 0x80}},
		{"u64=256", func(b *Buffer) error { return EncodeUint(b, 256) }, []byte{0xcd, 0x01, 0x00}},
		{"u64=65536", func(b *Buffer) error { return EncodeUint(b, 65536) }, []byte{0xce, 0x00, 0x01, 0x00, 0x00}},
		{"i64=-1", func(b *Buffer) error { return EncodeInt(b, -1) }, []byte{0xff}},
		{"i64=-33", func(b *Buffer) error { return EncodeInt(b, -33) }, []byte{0xd0, 0xdf}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var buf Buffer
			buf.Reset(make([]byte, 16))
			if err := c.enc(&buf); err != nil {
				t.Fatalf("encode: %v", err)
			}
			if !bytes.Equal(buf.Bytes(), c.want) {
				t.Fatalf("got % x, want % x", buf.Bytes(), c.want)
			}
		})
	}
}

// TestSkipAllTypes is scenario S3: a buffer holding one encoding of
// every supported type, back to back, is fully consumed by
// SkipValue in a loop.
func TestSkipAllTypes(t *testing.T) {
	var buf Buffer
	buf.Reset(make([]byte, 512))

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	must(EncodeUint(&buf, 5))                       // fixint
	must(EncodeUint(&buf, 200))                     // u8
	must(EncodeUint(&buf, 40000))                   // u16
	must(EncodeUint(&buf, 1<<20))                    // u32
	must(EncodeUint(&buf, 1<<40))                    // u64
	must(EncodeInt(&buf, -10))                       // neg fixint
	must(EncodeInt(&buf, -100))                      // i8
	must(EncodeInt(&buf, -30000))                    // i16
	must(EncodeInt(&buf, -(1 << 20)))                // i32
	must(EncodeInt(&buf, -(1 << 40)))                // i64
	must(EncodeF32(&buf, 3.5))
	must(EncodeF64(&buf, 3.14159))
	must(EncodeStr(&buf, []byte("hi")))              // fixstr
	must(EncodeStr(&buf, bytes.Repeat([]byte{'a'}, 40))) // str8
	must(EncodeStr(&buf, bytes.Repeat([]byte{'b'}, 300))) // str16
	must(EncodeMapHeader(&buf, 1))
	must(EncodeUint(&buf, 1))
	must(EncodeUint(&buf, 1))

	dst, err := buf.grow(3)
	must(err)
	dst[0] = tagNil
	dst[1] = tagFalse
	dst[2] = tagTrue

	data := buf.Bytes()
	total := len(data)
	consumed := 0
	rest := data
	for consumed < total {
		next, err := SkipValue(rest)
		if err != nil {
			t.Fatalf("SkipValue at offset %d: %v", consumed, err)
		}
		consumed += len(rest) - len(next)
		rest = next
	}
	if consumed != total {
		t.Fatalf("consumed %d bytes, want %d", consumed, total)
	}
	if len(rest) != 0 {
		t.Fatalf("%d bytes left over", len(rest))
	}
}

func TestSkipValueDepthBound(t *testing.T) {
	var buf Buffer
	buf.Reset(make([]byte, 4096))
	for i := 0; i < SkipMaxDepth+2; i++ {
		if err := EncodeMapHeader(&buf, 1); err != nil {
			t.Fatalf("encode: %v", err)
		}
		if err := EncodeUint(&buf, 1); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	if err := EncodeUint(&buf, 0); err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err := SkipValue(buf.Bytes())
	if err == nil {
		t.Fatal("expected an error for nesting beyond SkipMaxDepth")
	}
}
