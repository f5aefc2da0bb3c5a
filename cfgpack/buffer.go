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

// Buffer is an append-only encode target backed by caller-owned
// storage. Unlike ion.Buffer (which the encoders here are modeled
// on) it never grows its own backing array: the core path is
// no-heap, so capacity is fixed at Reset and every encoder reports
// an Encode error (ErrEncode) rather than reallocating.
type Buffer struct {
	buf []byte
}

// Reset points b at storage and truncates it to zero length.
// Subsequent encode calls append to storage up to cap(storage).
func (b *Buffer) Reset(storage []byte) {
	b.buf = storage[:0]
}

// Bytes returns the bytes written so far.
func (b *Buffer) Bytes() []byte { return b.buf }

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int { return len(b.buf) }

// Cap returns the total capacity of the underlying storage.
func (b *Buffer) Cap() int { return cap(b.buf) }

// grow reserves n more bytes and returns them for the caller to
// fill in place. On overflow b is left unchanged (len unchanged)
// and an error is returned -- encode calls are atomic per spec.md
// §4.1's encoder contract.
func (b *Buffer) grow(n int) ([]byte, error) {
	old := len(b.buf)
	if old+n > cap(b.buf) {
		return nil, encodeErr("grow", "need %d more bytes, have %d of %d", n, cap(b.buf)-old, cap(b.buf))
	}
	b.buf = b.buf[:old+n]
	return b.buf[old : old+n], nil
}

// AppendRaw appends already-encoded bytes verbatim. It exists for
// callers outside this package (the cfgpack CLI's migrate command)
// that need to copy a decoded value's wire bytes through unchanged,
// e.g. when only its key is being translated.
func (b *Buffer) AppendRaw(raw []byte) error {
	dst, err := b.grow(len(raw))
	if err != nil {
		return err
	}
	copy(dst, raw)
	return nil
}
