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

import "math"

// Context is the runtime store: a non-owning reference to a Schema
// plus the caller-supplied backing arrays it is initialized over
// (spec.md §3). Every field here is borrowed -- Context allocates
// nothing and frees nothing.
type Context struct {
	schema  *Schema
	values  []Value
	present []uint64 // bitmap, one bit per slot
	pool    Pool
}

func presentWords(nslots int) int { return (nslots + 63) / 64 }

// Init builds a Context over schema, using values, presentBits and
// poolBuf as backing storage (spec.md §3 "Lifecycle", §4.2
// "Construction"). All three must already be sized for schema: Init
// never grows them.
func Init(schema *Schema, values []Value, presentBits []uint64, poolBuf []byte) (*Context, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if len(values) < len(schema.Entries) {
		return nil, bounds("Init", "values has %d slots, schema needs %d", len(values), len(schema.Entries))
	}
	if len(presentBits) < presentWords(len(schema.Entries)) {
		return nil, bounds("Init", "present bitmap has %d words, schema needs %d", len(presentBits), presentWords(len(schema.Entries)))
	}
	ctx := &Context{
		schema:  schema,
		values:  values[:len(schema.Entries)],
		present: presentBits,
		pool:    *NewPool(poolBuf),
	}
	if err := ctx.initValues(); err != nil {
		return nil, err
	}
	return ctx, nil
}

// initValues performs Init steps 1-3 (spec.md §4.2) and is reused
// verbatim by ResetToDefaults.
func (c *Context) initValues() error {
	c.presentClearAll()
	c.pool = *NewPool(c.pool.buf[:0:cap(c.pool.buf)])
	for i := range c.schema.Entries {
		e := &c.schema.Entries[i]
		if !e.Kind.IsString() {
			continue
		}
		off, err := c.pool.alloc(e.Name, e.Kind.MaxStrLen())
		if err != nil {
			return err
		}
		c.values[i] = Value{Kind: e.Kind, str: slimStr{Offset: off, Len: 0}}
	}
	for i := range c.schema.Entries {
		e := &c.schema.Entries[i]
		if !e.HasDefault {
			continue
		}
		if err := c.applyDefault(i, e); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) applyDefault(slot int, e *Entry) error {
	if e.Kind.IsString() {
		data := e.Default.StrBytes()
		if max := e.Kind.MaxStrLen(); len(data) > max {
			return strTooLong("applyDefault", e.Index, len(data), max)
		}
		n, err := c.pool.write(c.values[slot].str.Offset, data)
		if err != nil {
			return err
		}
		c.values[slot].str.Len = n
	} else {
		c.values[slot] = Value{Kind: e.Kind, bits: e.Default.bits}
	}
	c.presentSet(slot)
	return nil
}

// ResetToDefaults clears presence and reapplies every entry's
// default, exactly as Init does (spec.md §4.2, "reset_to_defaults").
func (c *Context) ResetToDefaults() error {
	return c.initValues()
}

// GetVersion returns the schema's informational version number.
func (c *Context) GetVersion() uint32 { return c.schema.Version }

// GetSize returns the number of slots currently present.
func (c *Context) GetSize() int {
	n := 0
	for i := range c.schema.Entries {
		if c.presentGet(i) {
			n++
		}
	}
	return n
}

func (c *Context) presentClearAll() {
	for i := range c.present {
		c.present[i] = 0
	}
}

func (c *Context) presentGet(slot int) bool {
	return c.present[slot/64]&(uint64(1)<<(uint(slot)%64)) != 0
}

func (c *Context) presentSet(slot int) {
	c.present[slot/64] |= uint64(1) << (uint(slot) % 64)
}

// --- generic, Value-typed get/set ---

// SetValue writes v into the slot for index, failing TypeMismatch
// if v.Kind disagrees with the schema's declared kind for that slot.
func (c *Context) SetValue(index uint16, v Value) error {
	slot, e, err := c.lookup("SetValue", index)
	if err != nil {
		return err
	}
	if v.Kind != e.Kind {
		return typeMismatch("SetValue", index, v.Kind, e.Kind)
	}
	if v.Kind.IsString() {
		// A slim Value's string payload is a pool offset, not
		// inline bytes, so a generic set only makes sense for a
		// Value obtained from this same Context (e.g. copying a
		// slot's current contents back via GetValue). SetStr is
		// the entry point for setting string content from bytes.
		data, err := c.pool.read(v.str.Offset, v.str.Len)
		if err != nil {
			return err
		}
		return c.setStrSlot("SetValue", slot, index, e.Kind, data)
	}
	c.values[slot] = v
	c.presentSet(slot)
	return nil
}

// GetValue reads the slot for index, failing Missing if unset.
func (c *Context) GetValue(index uint16) (Value, error) {
	slot, _, err := c.lookup("GetValue", index)
	if err != nil {
		return Value{}, err
	}
	if !c.presentGet(slot) {
		return Value{}, missing("GetValue", index)
	}
	return c.values[slot], nil
}

func (c *Context) lookup(fn string, index uint16) (int, *Entry, error) {
	slot, ok := c.schema.SlotOf(index)
	if !ok {
		return 0, nil, missing(fn, index)
	}
	return slot, &c.schema.Entries[slot], nil
}

func (c *Context) lookupByName(fn string, name string) (int, *Entry, error) {
	slot, ok := c.schema.SlotByName(name)
	if !ok {
		return 0, nil, notFound(fn, name)
	}
	return slot, &c.schema.Entries[slot], nil
}

func (c *Context) setScalar(fn string, index uint16, want Kind, bits uint64) error {
	slot, e, err := c.lookup(fn, index)
	if err != nil {
		return err
	}
	if e.Kind != want {
		return typeMismatch(fn, index, e.Kind, want)
	}
	c.values[slot] = Value{Kind: want, bits: bits}
	c.presentSet(slot)
	return nil
}

func (c *Context) getScalar(fn string, index uint16, want Kind) (Value, error) {
	slot, e, err := c.lookup(fn, index)
	if err != nil {
		return Value{}, err
	}
	if e.Kind != want {
		return Value{}, typeMismatch(fn, index, e.Kind, want)
	}
	if !c.presentGet(slot) {
		return Value{}, missing(fn, index)
	}
	return c.values[slot], nil
}

// --- per-kind typed get/set (spec.md §4.2) ---

func (c *Context) SetU8(index uint16, v uint8) error  { return c.setScalar("SetU8", index, U8, uint64(v)) }
func (c *Context) SetU16(index uint16, v uint16) error { return c.setScalar("SetU16", index, U16, uint64(v)) }
func (c *Context) SetU32(index uint16, v uint32) error { return c.setScalar("SetU32", index, U32, uint64(v)) }
func (c *Context) SetU64(index uint16, v uint64) error { return c.setScalar("SetU64", index, U64, v) }
func (c *Context) SetI8(index uint16, v int8) error {
	return c.setScalar("SetI8", index, I8, uint64(uint8(v)))
}
func (c *Context) SetI16(index uint16, v int16) error {
	return c.setScalar("SetI16", index, I16, uint64(uint16(v)))
}
func (c *Context) SetI32(index uint16, v int32) error {
	return c.setScalar("SetI32", index, I32, uint64(uint32(v)))
}
func (c *Context) SetI64(index uint16, v int64) error {
	return c.setScalar("SetI64", index, I64, uint64(v))
}
func (c *Context) SetF32(index uint16, v float32) error {
	return c.setScalar("SetF32", index, F32, uint64(math.Float32bits(v)))
}
func (c *Context) SetF64(index uint16, v float64) error {
	return c.setScalar("SetF64", index, F64, math.Float64bits(v))
}

func (c *Context) GetU8(index uint16) (uint8, error) {
	v, err := c.getScalar("GetU8", index, U8)
	return v.AsU8(), err
}
func (c *Context) GetU16(index uint16) (uint16, error) {
	v, err := c.getScalar("GetU16", index, U16)
	return v.AsU16(), err
}
func (c *Context) GetU32(index uint16) (uint32, error) {
	v, err := c.getScalar("GetU32", index, U32)
	return v.AsU32(), err
}
func (c *Context) GetU64(index uint16) (uint64, error) {
	v, err := c.getScalar("GetU64", index, U64)
	return v.AsU64(), err
}
func (c *Context) GetI8(index uint16) (int8, error) {
	v, err := c.getScalar("GetI8", index, I8)
	return v.AsI8(), err
}
func (c *Context) GetI16(index uint16) (int16, error) {
	v, err := c.getScalar("GetI16", index, I16)
	return v.AsI16(), err
}
func (c *Context) GetI32(index uint16) (int32, error) {
	v, err := c.getScalar("GetI32", index, I32)
	return v.AsI32(), err
}
func (c *Context) GetI64(index uint16) (int64, error) {
	v, err := c.getScalar("GetI64", index, I64)
	return v.AsI64(), err
}
func (c *Context) GetF32(index uint16) (float32, error) {
	v, err := c.getScalar("GetF32", index, F32)
	return v.AsF32(), err
}
func (c *Context) GetF64(index uint16) (float64, error) {
	v, err := c.getScalar("GetF64", index, F64)
	return v.AsF64(), err
}

// SetStr writes bytes into the string slot for index. The slot's
// declared kind (Str or FStr) determines the length budget
// (spec.md §4.2).
func (c *Context) SetStr(index uint16, data []byte) error {
	slot, e, err := c.lookup("SetStr", index)
	if err != nil {
		return err
	}
	return c.setStrSlot("SetStr", slot, index, e.Kind, data)
}

func (c *Context) setStrSlot(fn string, slot int, index uint16, kind Kind, data []byte) error {
	if !kind.IsString() {
		return typeMismatch(fn, index, kind, Str)
	}
	if max := kind.MaxStrLen(); len(data) > max {
		return strTooLong(fn, index, len(data), max)
	}
	n, err := c.pool.write(c.values[slot].str.Offset, data)
	if err != nil {
		return err
	}
	c.values[slot].str.Len = n
	c.presentSet(slot)
	return nil
}

// GetStr returns the bytes currently stored in the string slot for
// index, aliasing the pool's backing storage.
func (c *Context) GetStr(index uint16) ([]byte, error) {
	slot, e, err := c.lookup("GetStr", index)
	if err != nil {
		return nil, err
	}
	if !e.Kind.IsString() {
		return nil, typeMismatch("GetStr", index, e.Kind, Str)
	}
	if !c.presentGet(slot) {
		return nil, missing("GetStr", index)
	}
	return c.pool.read(c.values[slot].str.Offset, c.values[slot].str.Len)
}

// --- by-name variants (spec.md §4.2) ---

func (c *Context) SetU8ByName(name string, v uint8) error {
	_, e, err := c.lookupByName("SetU8ByName", name)
	if err != nil {
		return err
	}
	return c.SetU8(e.Index, v)
}
func (c *Context) SetU16ByName(name string, v uint16) error {
	_, e, err := c.lookupByName("SetU16ByName", name)
	if err != nil {
		return err
	}
	return c.SetU16(e.Index, v)
}
func (c *Context) SetU32ByName(name string, v uint32) error {
	_, e, err := c.lookupByName("SetU32ByName", name)
	if err != nil {
		return err
	}
	return c.SetU32(e.Index, v)
}
func (c *Context) SetU64ByName(name string, v uint64) error {
	_, e, err := c.lookupByName("SetU64ByName", name)
	if err != nil {
		return err
	}
	return c.SetU64(e.Index, v)
}
func (c *Context) SetStrByName(name string, data []byte) error {
	_, e, err := c.lookupByName("SetStrByName", name)
	if err != nil {
		return err
	}
	return c.SetStr(e.Index, data)
}

func (c *Context) GetU8ByName(name string) (uint8, error) {
	_, e, err := c.lookupByName("GetU8ByName", name)
	if err != nil {
		return 0, err
	}
	return c.GetU8(e.Index)
}
func (c *Context) GetU16ByName(name string) (uint16, error) {
	_, e, err := c.lookupByName("GetU16ByName", name)
	if err != nil {
		return 0, err
	}
	return c.GetU16(e.Index)
}
func (c *Context) GetU32ByName(name string) (uint32, error) {
	_, e, err := c.lookupByName("GetU32ByName", name)
	if err != nil {
		return 0, err
	}
	return c.GetU32(e.Index)
}
func (c *Context) GetU64ByName(name string) (uint64, error) {
	_, e, err := c.lookupByName("GetU64ByName", name)
	if err != nil {
		return 0, err
	}
	return c.GetU64(e.Index)
}
func (c *Context) GetStrByName(name string) ([]byte, error) {
	_, e, err := c.lookupByName("GetStrByName", name)
	if err != nil {
		return nil, err
	}
	return c.GetStr(e.Index)
}

func (c *Context) SetI8ByName(name string, v int8) error {
	_, e, err := c.lookupByName("SetI8ByName", name)
	if err != nil {
		return err
	}
	return c.SetI8(e.Index, v)
}
func (c *Context) SetI16ByName(name string, v int16) error {
	_, e, err := c.lookupByName("SetI16ByName", name)
	if err != nil {
		return err
	}
	return c.SetI16(e.Index, v)
}
func (c *Context) SetI32ByName(name string, v int32) error {
	_, e, err := c.lookupByName("SetI32ByName", name)
	if err != nil {
		return err
	}
	return c.SetI32(e.Index, v)
}
func (c *Context) SetI64ByName(name string, v int64) error {
	_, e, err := c.lookupByName("SetI64ByName", name)
	if err != nil {
		return err
	}
	return c.SetI64(e.Index, v)
}
func (c *Context) SetF32ByName(name string, v float32) error {
	_, e, err := c.lookupByName("SetF32ByName", name)
	if err != nil {
		return err
	}
	return c.SetF32(e.Index, v)
}
func (c *Context) SetF64ByName(name string, v float64) error {
	_, e, err := c.lookupByName("SetF64ByName", name)
	if err != nil {
		return err
	}
	return c.SetF64(e.Index, v)
}

func (c *Context) GetI8ByName(name string) (int8, error) {
	_, e, err := c.lookupByName("GetI8ByName", name)
	if err != nil {
		return 0, err
	}
	return c.GetI8(e.Index)
}
func (c *Context) GetI16ByName(name string) (int16, error) {
	_, e, err := c.lookupByName("GetI16ByName", name)
	if err != nil {
		return 0, err
	}
	return c.GetI16(e.Index)
}
func (c *Context) GetI32ByName(name string) (int32, error) {
	_, e, err := c.lookupByName("GetI32ByName", name)
	if err != nil {
		return 0, err
	}
	return c.GetI32(e.Index)
}
func (c *Context) GetI64ByName(name string) (int64, error) {
	_, e, err := c.lookupByName("GetI64ByName", name)
	if err != nil {
		return 0, err
	}
	return c.GetI64(e.Index)
}
func (c *Context) GetF32ByName(name string) (float32, error) {
	_, e, err := c.lookupByName("GetF32ByName", name)
	if err != nil {
		return 0, err
	}
	return c.GetF32(e.Index)
}
func (c *Context) GetF64ByName(name string) (float64, error) {
	_, e, err := c.lookupByName("GetF64ByName", name)
	if err != nil {
		return 0, err
	}
	return c.GetF64(e.Index)
}

// SetValueByName resolves name to its Entry and delegates to SetValue.
func (c *Context) SetValueByName(name string, v Value) error {
	_, e, err := c.lookupByName("SetValueByName", name)
	if err != nil {
		return err
	}
	return c.SetValue(e.Index, v)
}

// GetValueByName resolves name to its Entry and delegates to GetValue.
func (c *Context) GetValueByName(name string) (Value, error) {
	_, e, err := c.lookupByName("GetValueByName", name)
	if err != nil {
		return Value{}, err
	}
	return c.GetValue(e.Index)
}
