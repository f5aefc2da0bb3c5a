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
	"errors"
	"testing"
)

func TestPoolAllocWriteRead(t *testing.T) {
	pool := NewPool(make([]byte, 16))
	off, err := pool.alloc("a", 5)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	n, err := pool.write(off, []byte("abc"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if n != 3 {
		t.Fatalf("write returned %d, want 3", n)
	}
	got, err := pool.read(off, n)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "abc" {
		t.Fatalf("got %q, want \"abc\"", got)
	}
}

func TestPoolAllocExhaustsCapacity(t *testing.T) {
	pool := NewPool(make([]byte, 8))
	if _, err := pool.alloc("a", 4); err != nil {
		t.Fatalf("first alloc: %v", err)
	}
	_, err := pool.alloc("b", 4)
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != KindBounds {
		t.Fatalf("second alloc err = %v, want Bounds", err)
	}
}

func TestPoolAllocRejectsDuplicateName(t *testing.T) {
	pool := NewPool(make([]byte, 64))
	if _, err := pool.alloc("a", 4); err != nil {
		t.Fatalf("first alloc: %v", err)
	}
	_, err := pool.alloc("a", 4)
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != KindDuplicate {
		t.Fatalf("second alloc err = %v, want Duplicate", err)
	}
}

func TestPoolWriteOutOfBounds(t *testing.T) {
	pool := NewPool(make([]byte, 4))
	_, err := pool.write(2, []byte("abc"))
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != KindBounds {
		t.Fatalf("got %v, want Bounds", err)
	}
}
