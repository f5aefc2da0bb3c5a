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

// Package cfgpacktest holds schema/storage fixtures shared by the
// core package's tests, the way sneller's ion tests lean on small
// shared helpers rather than re-declaring fixtures per file.
package cfgpacktest

import "github.com/Arsievert/cfgpack-sub001/cfgpack"

// Storage bundles the backing arrays a cfgpack.Context needs, sized
// generously for test schemas.
type Storage struct {
	Values  [32]cfgpack.Value
	Present [1]uint64
	Pool    [512]byte
}

// NewContext builds a fresh Context over schema using a fresh
// Storage, returning both so callers can reuse Storage's arrays
// across re-Init calls if they want to.
func NewContext(schema *cfgpack.Schema) (*cfgpack.Context, *Storage, error) {
	st := &Storage{}
	ctx, err := cfgpack.Init(schema, st.Values[:], st.Present[:], st.Pool[:])
	return ctx, st, err
}

// SmokeSchema is the two-entry schema from spec.md scenario S1.
func SmokeSchema() *cfgpack.Schema {
	return &cfgpack.Schema{
		MapName: "",
		Version: 1,
		Entries: []cfgpack.Entry{
			{Index: 1, Name: "a", Kind: cfgpack.U8},
			{Index: 2, Name: "b", Kind: cfgpack.Str},
		},
	}
}
