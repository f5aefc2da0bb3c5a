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

package cfgio

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Arsievert/cfgpack-sub001/cfgpack"
)

func TestWriteThenReadPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.bin")
	want := []byte{0x81, 0x00, 0xa4, 0x64, 0x65, 0x6d, 0x6f}
	if err := WritePage(path, want); err != nil {
		t.Fatalf("WritePage: %v", err)
	}
	scratch := make([]byte, 64)
	n, err := ReadPage(path, scratch)
	if err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	if string(scratch[:n]) != string(want) {
		t.Fatalf("got % x, want % x", scratch[:n], want)
	}
}

func TestReadPageTooSmallScratch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.bin")
	if err := WritePage(path, make([]byte, 32)); err != nil {
		t.Fatalf("WritePage: %v", err)
	}
	_, err := ReadPage(path, make([]byte, 4))
	if !errors.Is(err, cfgpack.ErrBounds) {
		t.Fatalf("got %v, want ErrBounds", err)
	}
}

func TestReadPageMissingFile(t *testing.T) {
	_, err := ReadPage(filepath.Join(t.TempDir(), "missing.bin"), make([]byte, 16))
	if !errors.Is(err, cfgpack.ErrIO) {
		t.Fatalf("got %v, want ErrIO", err)
	}
}
