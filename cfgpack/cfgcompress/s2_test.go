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
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/s2"

	"github.com/Arsievert/cfgpack-sub001/cfgpack"
)

func TestDecodeS2Roundtrip(t *testing.T) {
	want := bytes.Repeat([]byte("cfgpack page payload "), 8)
	compressed := s2.Encode(nil, want)

	scratch := make([]byte, len(want))
	n, err := DecodeS2(compressed, scratch)
	if err != nil {
		t.Fatalf("DecodeS2: %v", err)
	}
	if !bytes.Equal(scratch[:n], want) {
		t.Fatalf("got %q, want %q", scratch[:n], want)
	}
}

func TestDecodeS2ScratchTooSmall(t *testing.T) {
	want := bytes.Repeat([]byte("x"), 128)
	compressed := s2.Encode(nil, want)
	_, err := DecodeS2(compressed, make([]byte, 4))
	if !errors.Is(err, cfgpack.ErrBounds) {
		t.Fatalf("got %v, want ErrBounds", err)
	}
}

func TestDecodeS2Corrupt(t *testing.T) {
	_, err := DecodeS2([]byte{0xff, 0xff, 0xff}, make([]byte, 16))
	if !errors.Is(err, cfgpack.ErrDecode) {
		t.Fatalf("got %v, want ErrDecode", err)
	}
}
