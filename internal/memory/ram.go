/*
 * mips32sim - educational MIPS-I simulator core.
 *
 * Copyright (c) 2026 mips32sim contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package memory implements the physical address space: a paged RAM
// backend and a dispatcher that routes accesses to RAM or to registered
// memory-mapped peripherals.
package memory

// PageWords is the number of 32-bit words per RAM page. Pages are
// allocated lazily on first write; a page never written reads as all
// zero without ever being materialized.
const PageWords = 256

const pageBytes = PageWords * 4

type page struct {
	words [PageWords]uint32
}

// RAM is a word-addressed, big-endian, lazily-paged backing store. It has
// no notion of access source or alignment policy; those are enforced by
// the AddressSpace that fronts it.
type RAM struct {
	pages map[uint32]*page
	size  uint32 // total addressable bytes; 0 means unbounded.
}

// NewRAM creates a RAM backend. size is the number of bytes the region
// spans; pass 0 for an unbounded region (the simulator's default flat
// physical space).
func NewRAM(size uint32) *RAM {
	return &RAM{pages: make(map[uint32]*page), size: size}
}

// Size reports the configured byte span, 0 if unbounded.
func (r *RAM) Size() uint32 { return r.size }

// InBounds reports whether addr is within the configured span.
func (r *RAM) InBounds(addr uint32) bool {
	return r.size == 0 || addr < r.size
}

func (r *RAM) pageFor(addr uint32, alloc bool) *page {
	idx := addr / pageBytes
	p, ok := r.pages[idx]
	if !ok {
		if !alloc {
			return nil
		}
		p = &page{}
		r.pages[idx] = p
	}
	return p
}

// ReadWord returns the big-endian word at addr, which must be
// word-aligned. A never-written page reads as zero.
func (r *RAM) ReadWord(addr uint32) uint32 {
	p := r.pageFor(addr, false)
	if p == nil {
		return 0
	}
	return p.words[(addr%pageBytes)/4]
}

// WriteWord stores a word at addr, allocating its page if this is the
// page's first write.
func (r *RAM) WriteWord(addr, v uint32) {
	p := r.pageFor(addr, true)
	p.words[(addr%pageBytes)/4] = v
}

// ReadByte returns one byte from the big-endian view of the word
// containing addr.
func (r *RAM) ReadByte(addr uint32) uint8 {
	w := r.ReadWord(addr &^ 3)
	shift := uint(24 - 8*(addr&3))
	return uint8(w >> shift)
}

// WriteByte stores one byte into the big-endian view of the word
// containing addr, leaving the other three bytes untouched.
func (r *RAM) WriteByte(addr uint32, v uint8) {
	base := addr &^ 3
	w := r.ReadWord(base)
	shift := uint(24 - 8*(addr&3))
	mask := uint32(0xFF) << shift
	w = (w &^ mask) | (uint32(v) << shift)
	r.WriteWord(base, w)
}

// ReadHalf returns the big-endian halfword at addr, which must be
// half-aligned.
func (r *RAM) ReadHalf(addr uint32) uint16 {
	hi := r.ReadByte(addr)
	lo := r.ReadByte(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// WriteHalf stores a big-endian halfword at addr, which must be
// half-aligned.
func (r *RAM) WriteHalf(addr uint32, v uint16) {
	r.WriteByte(addr, uint8(v>>8))
	r.WriteByte(addr+1, uint8(v))
}

// ReadRange copies length bytes starting at addr into a fresh slice. It
// reads through never-written pages as zero, the same as ReadByte.
func (r *RAM) ReadRange(addr, length uint32) []byte {
	out := make([]byte, length)
	for i := uint32(0); i < length; i++ {
		out[i] = r.ReadByte(addr + i)
	}
	return out
}

// WriteRange stores data starting at addr, allocating pages as needed.
// It is the bulk path used by ELF load and the assembler's finish().
func (r *RAM) WriteRange(addr uint32, data []byte) {
	for i, b := range data {
		r.WriteByte(addr+uint32(i), b)
	}
}

// PageCount reports how many pages have been materialized, for
// dump/debug reporting; it never allocates.
func (r *RAM) PageCount() int { return len(r.pages) }
