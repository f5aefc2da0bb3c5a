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

import "testing"

func TestValueAccessorsRoundtrip(t *testing.T) {
	if got := I8Value(-7).AsI8(); got != -7 {
		t.Fatalf("AsI8() = %d, want -7", got)
	}
	if got := U64Value(1 << 40).AsU64(); got != 1<<40 {
		t.Fatalf("AsU64() = %d, want %d", got, uint64(1)<<40)
	}
	if got := F32Value(1.5).AsF32(); got != 1.5 {
		t.Fatalf("AsF32() = %v, want 1.5", got)
	}
	if got := F64Value(-2.25).AsF64(); got != -2.25 {
		t.Fatalf("AsF64() = %v, want -2.25", got)
	}
}

func TestValueEqual(t *testing.T) {
	a := U16Value(42)
	b := U16Value(42)
	c := U16Value(43)
	if !a.Equal(b) {
		t.Fatal("equal values compared unequal")
	}
	if a.Equal(c) {
		t.Fatal("unequal values compared equal")
	}
	if a.Equal(U32Value(42)) {
		t.Fatal("values of differing kind compared equal")
	}
}

func TestFatStrPanicsOnNonStringKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected FatStr to panic for a non-string kind")
		}
	}()
	FatStr(U8, "x")
}

func TestFatValueToSlim(t *testing.T) {
	storage := make([]byte, 32)
	pool := NewPool(storage)
	off, err := pool.alloc("name", FStr.MaxStrLen())
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	fv := FatStr(FStr, "hello")
	v, err := fv.ToSlim(pool, off)
	if err != nil {
		t.Fatalf("ToSlim: %v", err)
	}
	got, err := pool.read(v.str.Offset, v.str.Len)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want \"hello\"", got)
	}
}
