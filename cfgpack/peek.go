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

// PeekName extracts the schema name (key 0) from a page without
// populating any Context, copying it into out (spec.md §4.5). It
// returns the number of bytes written. Legacy blobs that lack key 0
// report Missing; out being too small reports Bounds.
func PeekName(data []byte, out []byte) (int, error) {
	cur := newCursor(data)
	m, err := decodeMapHeader(cur)
	if err != nil {
		return 0, decodeErr("PeekName", "%v", err)
	}
	for i := 0; i < m; i++ {
		tag, err := cur.peekByte()
		if err != nil {
			return 0, decodeErr("PeekName", "%v", err)
		}
		if isStringTag(tag) {
			if i != 0 {
				return 0, decodeErr("PeekName", "string key only permitted as the first pair (legacy form)")
			}
			if _, err := decodeStrBytes(cur); err != nil {
				return 0, decodeErr("PeekName", "%v", err)
			}
			if err := skipValue(cur, SkipMaxDepth); err != nil {
				return 0, err
			}
			continue
		}
		r, err := decodeIntClassed(cur)
		if err != nil {
			return 0, decodeErr("PeekName", "%v", err)
		}
		if !(r.class == wcU8 || r.class == wcU16 || r.class == wcU32 || r.class == wcU64) {
			return 0, decodeErr("PeekName", "map key must be an unsigned integer")
		}
		if r.u != 0 {
			if err := skipValue(cur, SkipMaxDepth); err != nil {
				return 0, err
			}
			continue
		}
		tag, err = cur.peekByte()
		if err != nil {
			return 0, decodeErr("PeekName", "%v", err)
		}
		if !isStringTag(tag) {
			return 0, decodeErr("PeekName", "key 0 value is not a string")
		}
		name, err := decodeStrBytes(cur)
		if err != nil {
			return 0, decodeErr("PeekName", "%v", err)
		}
		if len(name) > len(out) {
			return 0, bounds("PeekName", "name is %d bytes, out has %d", len(name), len(out))
		}
		return copy(out, name), nil
	}
	return 0, missing("PeekName", 0)
}
