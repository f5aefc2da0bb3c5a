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

// Package cfgcompress holds the two optional decompression adapters
// that may bracket the input of cfgpack.Context.Pagein (spec.md §6):
// the page on disk is compressed, decompressed wholesale into
// caller scratch, and only then handed to Pagein. Neither adapter
// is part of the core decode path.
package cfgcompress

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/Arsievert/cfgpack-sub001/cfgpack"
)

// DecodeS2 decompresses src into scratch and returns the number of
// decompressed bytes. It stands in for the spec's "LZ4" adapter
// slot: s2 is klauspost/compress's LZ4-class block format (no
// dictionary, byte-oriented), the same family this repo's teacher
// reaches for in ion/zion/compress.go when it needs a block
// compressor for bounded-size ion pages. ErrBounds is returned if
// the decompressed size would exceed len(scratch); ErrDecode on any
// underlying corruption.
func DecodeS2(src []byte, scratch []byte) (int, error) {
	n, err := s2.DecodedLen(src)
	if err != nil {
		return 0, fmt.Errorf("cfgcompress.DecodeS2: %w: %v", cfgpack.ErrDecode, err)
	}
	if n > len(scratch) {
		return 0, fmt.Errorf("cfgcompress.DecodeS2: decompressed size %d exceeds scratch capacity %d: %w", n, len(scratch), cfgpack.ErrBounds)
	}
	out, err := s2.Decode(scratch[:n], src)
	if err != nil {
		return 0, fmt.Errorf("cfgcompress.DecodeS2: %w: %v", cfgpack.ErrDecode, err)
	}
	return len(out), nil
}
