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

import "github.com/dchest/siphash"

// Pool is a fixed-capacity byte arena sliced into disjoint per-slot
// regions, one per string entry in a schema (spec.md §3, "String
// Pool"). Unlike ion.Symtab -- which this is grounded on -- the
// pool never grows and never interns by content: regions are handed
// out once, in declaration order, at Context.Init time, and then
// written/read in place for the lifetime of the Context.
type Pool struct {
	buf  []byte // caller-owned storage, fixed capacity
	next int    // bump-allocation offset for the next region
	seed uint64 // siphash seed for the per-slot name hash below

	// seen holds the siphash of every string entry's name handed to
	// alloc so far, in allocation order. Two string entries sharing a
	// name would make SlotByName/GetStrByName/SetStrByName ambiguous,
	// so alloc rejects the duplicate before a region is carved out.
	seen      [MaxEntries]uint64
	seenCount int
}

// NewPool wraps storage as an empty pool. storage's capacity bounds
// the total bytes available to every string slot combined.
func NewPool(storage []byte) *Pool {
	return &Pool{buf: storage[:0], seed: siphash.Hash(0, 0, []byte("cfgpack-pool"))}
}

// Cap returns the total byte capacity of the pool.
func (p *Pool) Cap() int { return cap(p.buf) }

// alloc reserves n+1 bytes (the +1 matches spec.md §4.2 step 2,
// "assign a pool region of size max_len(kind)+1") and returns the
// region's starting offset. Regions are never freed or reused: the
// pool is rebuilt by Context.Init every time a Context is
// constructed over fresh storage. name is the owning entry's name,
// used only to detect a duplicate string slot (see seen above);
// alloc fails with KindDuplicate before touching next if name was
// already handed to a prior alloc call on this Pool.
func (p *Pool) alloc(name string, n int) (uint16, error) {
	h := siphash.Hash(p.seed, 0, []byte(name))
	for _, seen := range p.seen[:p.seenCount] {
		if seen == h {
			return 0, newErr(KindDuplicate, "Pool.alloc", 0, "duplicate string slot name %q", name)
		}
	}

	size := n + 1
	if p.next+size > cap(p.buf) {
		return 0, bounds("Pool.alloc", "need %d bytes, have %d of %d", size, cap(p.buf)-p.next, cap(p.buf))
	}
	off := p.next
	p.next += size
	if off > 0xffff {
		return 0, bounds("Pool.alloc", "offset %d exceeds uint16 range", off)
	}
	p.seen[p.seenCount] = h
	p.seenCount++
	return uint16(off), nil
}

// write copies data into the region starting at offset and returns
// the number of bytes written. It does not itself enforce a slot's
// kind-specific maximum length -- that check happens in store.go
// before write is called, using the schema's declared Kind -- but it
// does defend the pool's own backing storage from overrun.
func (p *Pool) write(offset uint16, data []byte) (int, error) {
	end := int(offset) + len(data)
	if end > cap(p.buf) {
		return 0, bounds("Pool.write", "write of %d bytes at offset %d exceeds pool capacity %d", len(data), offset, cap(p.buf))
	}
	if end > len(p.buf) {
		p.buf = p.buf[:end]
	}
	copy(p.buf[offset:end], data)
	return len(data), nil
}

// read returns the n bytes starting at offset, aliasing the pool's
// backing storage.
func (p *Pool) read(offset uint16, n int) ([]byte, error) {
	end := int(offset) + n
	if end > cap(p.buf) {
		return nil, bounds("Pool.read", "read of %d bytes at offset %d exceeds pool capacity %d", n, offset, cap(p.buf))
	}
	if end > len(p.buf) {
		return nil, bounds("Pool.read", "read of %d bytes at offset %d exceeds written length %d", n, offset, len(p.buf))
	}
	return p.buf[offset:end], nil
}
