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

// Command cfgpack inspects and migrates cfgpack pages on disk. It is
// a thin wrapper around the cfgpack/cfgio adapters: the core package
// itself never touches a filesystem.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Arsievert/cfgpack-sub001/cfgpack"
	"github.com/Arsievert/cfgpack-sub001/cfgpack/cfgio"
)

var dashv bool

const maxPage = 64 * 1024

func init() {
	flag.BoolVar(&dashv, "v", false, "verbose")
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func logf(runID uuid.UUID, f string, args ...interface{}) {
	if !dashv {
		return
	}
	if f[len(f)-1] != '\n' {
		f += "\n"
	}
	fmt.Fprintf(os.Stderr, "[%s] "+f, append([]interface{}{runID}, args...)...)
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  cfgpack peek <page>\n")
	fmt.Fprintf(os.Stderr, "  cfgpack migrate <old.page> <new.page> <remap.csv>\n")
	os.Exit(2)
}

// entry point for 'cfgpack peek <page>'
func peek(runID uuid.UUID, path string) {
	scratch := make([]byte, maxPage)
	n, err := cfgio.ReadPage(path, scratch)
	if err != nil {
		exitf("reading %s: %s\n", path, err)
	}
	logf(runID, "read %d bytes from %s", n, path)

	var name [cfgpack.NameMax]byte
	nn, err := cfgpack.PeekName(scratch[:n], name[:])
	if err != nil {
		exitf("peek_name: %s\n", err)
	}
	fmt.Println(string(name[:nn]))
}

// entry point for 'cfgpack migrate <old> <new> <remap.csv>'. The
// remap file has one "old,new" pair of decimal indices per line; the
// destination page's schema is not known to this tool, so migrate
// does not attach a live Context (that is left to the embedding
// program). Instead it walks the old page's wire pairs itself,
// translates each key through the table via RemapTable.Translate,
// and re-encodes a new page with the translated keys and the
// original value bytes copied through verbatim. It does not handle
// the legacy string-key-at-position-0 form (cfgpack/pagein.go) --
// that form only ever names slot 0, which is never a migration
// target.
func migrate(runID uuid.UUID, oldPath, newPath, remapPath string) {
	scratch := make([]byte, maxPage)
	n, err := cfgio.ReadPage(oldPath, scratch)
	if err != nil {
		exitf("reading %s: %s\n", oldPath, err)
	}
	logf(runID, "read %d bytes from %s", n, oldPath)

	remap, err := loadRemapTable(remapPath)
	if err != nil {
		exitf("loading remap table: %s\n", err)
	}
	logf(runID, "loaded %d remap entries from %s", len(remap), remapPath)

	out := make([]byte, maxPage)
	wn, err := translatePage(scratch[:n], remap, out)
	if err != nil {
		exitf("translating %s: %s\n", oldPath, err)
	}
	logf(runID, "translated page into %d bytes", wn)

	if err := cfgio.WritePage(newPath, out[:wn]); err != nil {
		exitf("writing %s: %s\n", newPath, err)
	}
	logf(runID, "wrote %d bytes to %s", wn, newPath)
}

// translatePage decodes the outer map header of data, then for each
// pair decodes the wire key, runs it through remap.Translate, and
// re-encodes the (possibly translated) key into dst followed by the
// value's original bytes, copied through verbatim via
// Buffer.AppendRaw. It returns the number of bytes written to dst.
func translatePage(data []byte, remap cfgpack.RemapTable, dst []byte) (int, error) {
	m, rest, err := cfgpack.DecodeMapHeader(data)
	if err != nil {
		return 0, fmt.Errorf("decoding page header: %w", err)
	}

	var b cfgpack.Buffer
	b.Reset(dst)
	if err := cfgpack.EncodeMapHeader(&b, m); err != nil {
		return 0, fmt.Errorf("encoding page header: %w", err)
	}

	for i := 0; i < m; i++ {
		k, afterKey, err := cfgpack.DecodeUint(rest)
		if err != nil {
			return 0, fmt.Errorf("decoding pair %d key: %w", i, err)
		}
		if k > math.MaxUint16 {
			return 0, fmt.Errorf("pair %d key %d exceeds uint16 range", i, k)
		}
		afterValue, err := cfgpack.SkipValue(afterKey)
		if err != nil {
			return 0, fmt.Errorf("decoding pair %d value: %w", i, err)
		}
		valueBytes := afterKey[:len(afterKey)-len(afterValue)]

		newKey := remap.Translate(uint16(k))
		if err := cfgpack.EncodeUintKey(&b, uint64(newKey)); err != nil {
			return 0, fmt.Errorf("encoding pair %d key: %w", i, err)
		}
		if err := b.AppendRaw(valueBytes); err != nil {
			return 0, fmt.Errorf("copying pair %d value: %w", i, err)
		}

		rest = afterValue
	}
	return b.Len(), nil
}

func loadRemapTable(path string) (cfgpack.RemapTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var table cfgpack.RemapTable
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("bad remap line %q", line)
		}
		oldIdx, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("bad old index in %q: %w", line, err)
		}
		newIdx, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("bad new index in %q: %w", line, err)
		}
		table = append(table, cfgpack.RemapEntry{Old: uint16(oldIdx), New: uint16(newIdx)})
	}
	return table, sc.Err()
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		usage()
	}
	runID := uuid.New()

	switch args[0] {
	case "peek":
		if len(args) != 2 {
			usage()
		}
		peek(runID, args[1])
	case "migrate":
		if len(args) != 4 {
			usage()
		}
		migrate(runID, args[1], args[2], args[3])
	default:
		usage()
	}
}
