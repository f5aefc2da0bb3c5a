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

// Package cfgio is the thin filesystem adapter named in spec.md §6
// ("Adapters"). It is deliberately outside the core: it performs
// blocking I/O in userland and only moves page bytes between a file
// and caller memory. It does not call cfgpack.Context.Pageout or
// Pagein itself; the caller passes the bytes to or from them, and
// those never touch the filesystem.
package cfgio

import (
	"fmt"
	"io"
	"os"

	"github.com/Arsievert/cfgpack-sub001/cfgpack"
)

// ReadPage reads the whole file at path into scratch and returns
// the number of bytes read. It fails with a cfgpack Bounds error if
// the file is larger than len(scratch) -- there is no dynamic
// allocation here, matching the core's no-heap policy.
func ReadPage(path string, scratch []byte) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, ioErr("ReadPage", err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return 0, ioErr("ReadPage", err)
	}
	if fi.Size() > int64(len(scratch)) {
		return 0, fmt.Errorf("cfgio.ReadPage: file is %d bytes, scratch has %d: %w", fi.Size(), len(scratch), cfgpack.ErrBounds)
	}
	n, err := io.ReadFull(f, scratch[:fi.Size()])
	if err != nil {
		return 0, ioErr("ReadPage", err)
	}
	return n, nil
}

// WritePage creates (or truncates) path and writes page to it.
func WritePage(path string, page []byte) error {
	if err := os.WriteFile(path, page, 0o644); err != nil {
		return ioErr("WritePage", err)
	}
	return nil
}

func ioErr(fn string, cause error) error {
	return fmt.Errorf("cfgio.%s: %w: %v", fn, cfgpack.ErrIO, cause)
}
