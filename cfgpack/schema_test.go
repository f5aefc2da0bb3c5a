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

func TestSchemaValidateRejectsReservedIndex(t *testing.T) {
	s := &Schema{Entries: []Entry{{Index: 0, Name: "bad", Kind: U8}}}
	err := s.Validate()
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != KindReservedIndex {
		t.Fatalf("got %v, want ReservedIndex", err)
	}
}

func TestSchemaValidateRejectsDuplicateIndex(t *testing.T) {
	s := &Schema{Entries: []Entry{
		{Index: 1, Name: "a", Kind: U8},
		{Index: 1, Name: "b", Kind: U16},
	}}
	err := s.Validate()
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != KindDuplicate {
		t.Fatalf("got %v, want Duplicate", err)
	}
}

func TestSchemaValidateRejectsMismatchedDefault(t *testing.T) {
	s := &Schema{Entries: []Entry{
		{Index: 1, Name: "a", Kind: U8, HasDefault: true, Default: FatU16(1)},
	}}
	err := s.Validate()
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != KindTypeMismatch {
		t.Fatalf("got %v, want TypeMismatch", err)
	}
}

func TestSchemaValidateRejectsLongMapName(t *testing.T) {
	s := &Schema{MapName: "toolong", Entries: []Entry{{Index: 1, Name: "a", Kind: U8}}}
	if err := s.Validate(); err == nil {
		t.Fatal("expected an error for an oversized map_name")
	}
}

func TestSlotLookup(t *testing.T) {
	s := &Schema{Entries: []Entry{
		{Index: 5, Name: "five", Kind: U8},
		{Index: 9, Name: "nine", Kind: U16},
	}}
	if slot, ok := s.SlotOf(9); !ok || slot != 1 {
		t.Fatalf("SlotOf(9) = (%d, %v), want (1, true)", slot, ok)
	}
	if _, ok := s.SlotOf(3); ok {
		t.Fatal("SlotOf(3) should not be found")
	}
	if slot, ok := s.SlotByName("five"); !ok || slot != 0 {
		t.Fatalf("SlotByName(\"five\") = (%d, %v), want (0, true)", slot, ok)
	}
}
