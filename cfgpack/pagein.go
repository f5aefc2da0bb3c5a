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
	"math"
)

// RemapEntry rewrites a single old wire index to a new schema
// index, used by PaginRemap for schema-migration decoding (spec.md
// §4.4).
type RemapEntry struct {
	Old, New uint16
}

// RemapTable is an ordered list of index rewrites. Lookup is a
// linear scan; a RemapTable is expected to be small (tens of
// entries, same order as a Schema).
type RemapTable []RemapEntry

// lookup returns the first entry matching old, if any. Spec.md
// §4.4 leaves duplicate Old entries implementation-defined; this
// package takes the first match (see DESIGN.md).
func (t RemapTable) lookup(old uint16) (uint16, bool) {
	for i := range t {
		if t[i].Old == old {
			return t[i].New, true
		}
	}
	return 0, false
}

func (t RemapTable) translate(old uint16) uint16 {
	if new, ok := t.lookup(old); ok {
		return new
	}
	return old
}

// Translate exports translate for callers outside this package (the
// cfgpack CLI's migrate command) that need to rewrite a wire key
// without decoding a full page through a live Context.
func (t RemapTable) Translate(old uint16) uint16 { return t.translate(old) }

var errNotNumeric = errors.New("cfgpack: value is not a number")

// Pagein decodes data into c with identity key mapping (spec.md
// §4.4). It is equivalent to PaginRemap(data, nil).
func (c *Context) Pagein(data []byte) error {
	return c.PaginRemap(data, nil)
}

// PaginRemap decodes data into c, translating wire indices through
// remap before schema lookup (spec.md §4.4). It implements the
// five-step algorithm verbatim: clear presence, decode the outer
// map, resolve/skip each key, decode values with widening coercion,
// then restore defaults for anything still unset.
func (c *Context) PaginRemap(data []byte, remap RemapTable) error {
	c.presentClearAll()
	cur := newCursor(data)
	m, err := decodeMapHeader(cur)
	if err != nil {
		return decodeErr("Pagein", "%v", err)
	}
	for i := 0; i < m; i++ {
		if err := c.pageinPair(cur, remap, i == 0); err != nil {
			return err
		}
	}
	for i := range c.schema.Entries {
		e := &c.schema.Entries[i]
		if !c.presentGet(i) && e.HasDefault {
			if err := c.applyDefault(i, e); err != nil {
				return err
			}
		}
	}
	return nil
}

// pageinPair decodes one key/value pair of the outer map.
func (c *Context) pageinPair(cur *cursor, remap RemapTable, first bool) error {
	tag, err := cur.peekByte()
	if err != nil {
		return decodeErr("Pagein", "%v", err)
	}
	if isStringTag(tag) {
		if !first {
			return decodeErr("Pagein", "string key only permitted as the first pair (legacy form)")
		}
		if _, err := decodeStrBytes(cur); err != nil {
			return decodeErr("Pagein", "%v", err)
		}
		return skipValue(cur, SkipMaxDepth)
	}
	r, err := decodeIntClassed(cur)
	if err != nil {
		return decodeErr("Pagein", "%v", err)
	}
	if !(r.class == wcU8 || r.class == wcU16 || r.class == wcU32 || r.class == wcU64) {
		return decodeErr("Pagein", "map key must be an unsigned integer")
	}
	if r.u > math.MaxUint16 {
		return decodeErr("Pagein", "key %d exceeds uint16 range", r.u)
	}
	k := uint16(r.u)
	if k == 0 {
		return skipValue(cur, SkipMaxDepth)
	}
	resolved := remap.translate(k)
	slot, ok := c.schema.SlotOf(resolved)
	if !ok {
		return skipValue(cur, SkipMaxDepth)
	}
	return c.decodeInto(cur, slot)
}

// decodeAnyNumber reads whatever integer or float is at cur without
// committing to a destination kind, reporting its wire class so the
// caller can apply the widening table.
func decodeAnyNumber(cur *cursor) (numResult, error) {
	tag, err := cur.peekByte()
	if err != nil {
		return numResult{}, err
	}
	switch {
	case tag == tagFloat32 || tag == tagFloat64:
		return decodeFloatClassed(cur)
	case tag <= fixintPosMax, tag >= negFixintBase,
		tag == tagUint8, tag == tagUint16, tag == tagUint32, tag == tagUint64,
		tag == tagInt8, tag == tagInt16, tag == tagInt32, tag == tagInt64:
		return decodeIntClassed(cur)
	default:
		return numResult{}, errNotNumeric
	}
}

// decodeInto decodes one wire value at cur into slot, applying the
// numeric widening / string length rules of spec.md §4.4.
func (c *Context) decodeInto(cur *cursor, slot int) error {
	const fn = "Pagein"
	e := &c.schema.Entries[slot]
	dst := e.Kind

	if dst.IsString() {
		tag, err := cur.peekByte()
		if err != nil {
			return decodeErr(fn, "%v", err)
		}
		if !isStringTag(tag) {
			return typeMismatch(fn, e.Index, KindInvalid, dst)
		}
		data, err := decodeStrBytes(cur)
		if err != nil {
			return decodeErr(fn, "%v", err)
		}
		if max := dst.MaxStrLen(); len(data) > max {
			return strTooLong(fn, e.Index, len(data), max)
		}
		n, err := c.pool.write(c.values[slot].str.Offset, data)
		if err != nil {
			return err
		}
		c.values[slot].str.Len = n
		c.presentSet(slot)
		return nil
	}

	r, err := decodeAnyNumber(cur)
	if err != nil {
		if err == errNotNumeric {
			return typeMismatch(fn, e.Index, KindInvalid, dst)
		}
		return decodeErr(fn, "%v", err)
	}
	ok := r.class.widensTo(dst)
	if !ok && r.class <= wcU64 {
		// Pageout writes a non-negative signed value with an unsigned
		// encoding (EncodeInt defers to EncodeUint), so an unsigned
		// wire value is accepted into a signed slot when it fits.
		switch dst {
		case I8:
			ok = r.u <= math.MaxInt8
		case I16:
			ok = r.u <= math.MaxInt16
		case I32:
			ok = r.u <= math.MaxInt32
		case I64:
			ok = r.u <= math.MaxInt64
		}
	}
	if !ok {
		return typeMismatch(fn, e.Index, r.class.kind(), dst)
	}

	if dst == F32 || dst == F64 {
		switch dst {
		case F32:
			c.values[slot] = F32Value(r.f32)
		case F64:
			c.values[slot] = F64Value(r.f64)
		}
		c.presentSet(slot)
		return nil
	}

	var val int64
	if r.class == wcU8 || r.class == wcU16 || r.class == wcU32 || r.class == wcU64 {
		val = int64(r.u)
	} else {
		val = r.i
	}
	switch dst {
	case U8:
		c.values[slot] = U8Value(uint8(val))
	case U16:
		c.values[slot] = U16Value(uint16(val))
	case U32:
		c.values[slot] = U32Value(uint32(val))
	case U64:
		c.values[slot] = U64Value(uint64(val))
	case I8:
		c.values[slot] = I8Value(int8(val))
	case I16:
		c.values[slot] = I16Value(int16(val))
	case I32:
		c.values[slot] = I32Value(int32(val))
	case I64:
		c.values[slot] = I64Value(val)
	}
	c.presentSet(slot)
	return nil
}

func isStringTag(tag byte) bool {
	return (tag >= fixstrBase && tag <= fixstrMax) || tag == tagStr8 || tag == tagStr16 || tag == tagStr32
}
