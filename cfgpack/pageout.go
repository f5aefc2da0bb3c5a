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

// Pageout serializes the current presence/value snapshot of c into
// b as a single MessagePack map: key 0 holds the schema name, and
// every present slot follows keyed by its entry index, in
// declaration order (spec.md §4.3). It returns the number of bytes
// written.
func (c *Context) Pageout(b *Buffer) (int, error) {
	start := b.Len()
	n := c.GetSize()
	if err := EncodeMapHeader(b, n+1); err != nil {
		return 0, err
	}
	if err := EncodeUintKey(b, 0); err != nil {
		return 0, err
	}
	if err := EncodeStr(b, []byte(c.schema.MapName)); err != nil {
		return 0, err
	}
	for i := range c.schema.Entries {
		if !c.presentGet(i) {
			continue
		}
		e := &c.schema.Entries[i]
		if err := EncodeUintKey(b, uint64(e.Index)); err != nil {
			return 0, err
		}
		if err := c.encodeSlotValue(b, i, e.Kind); err != nil {
			return 0, err
		}
	}
	return b.Len() - start, nil
}

func (c *Context) encodeSlotValue(b *Buffer, slot int, kind Kind) error {
	v := c.values[slot]
	switch kind {
	case U8, U16, U32, U64:
		return EncodeUint(b, v.AsU64())
	case I8:
		return EncodeInt(b, int64(v.AsI8()))
	case I16:
		return EncodeInt(b, int64(v.AsI16()))
	case I32:
		return EncodeInt(b, int64(v.AsI32()))
	case I64:
		return EncodeInt(b, v.AsI64())
	case F32:
		return EncodeF32(b, v.AsF32())
	case F64:
		return EncodeF64(b, v.AsF64())
	case Str, FStr:
		data, err := c.pool.read(v.str.Offset, v.str.Len)
		if err != nil {
			return err
		}
		return EncodeStr(b, data)
	default:
		return newErr(KindInvalidType, "Pageout", c.schema.Entries[slot].Index, "unknown kind %s", kind)
	}
}
