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

package core

import (
	"github.com/mipssim/mips32/internal/cache"
	"github.com/mipssim/mips32/internal/device"
	"github.com/mipssim/mips32/internal/memory"
)

// MemPort is the core's view of memory for one purpose (fetch, or data
// load/store). If Cache is set, word-granular accesses to the RAM region
// go through it; everything else (peripherals, an absent cache) goes
// through Space directly. Byte/half accesses that go through the cache are
// synthesized from a word-level read-modify-write so it only ever sees whole words,
// matching its block-addressing contract.
type MemPort struct {
	Space *memory.AddressSpace
	Cache *cache.Cache
	Src   device.Source

	// StructuralStall reports, when Cache == nil, whether this port must
	// share the single memory port with another one this cycle (the
	// pipelined core's IF-vs-MEM structural hazard with caches disabled).
	StructuralStall func() bool
}

// Read loads a width-sized, zero-extended value from addr.
func (p *MemPort) Read(addr uint32, width device.Width) (uint32, error) {
	if err := memory.CheckAlign(addr, width); err != nil {
		return 0, err
	}
	if p.Cache != nil && p.Space.InRAMRegion(addr) {
		word := p.Cache.Read(addr &^ 3)
		return extract(word, addr, width), nil
	}
	return p.Space.Read(addr, width, p.Src)
}

// Write stores a width-sized value at addr.
func (p *MemPort) Write(addr uint32, width device.Width, value uint32) error {
	if err := memory.CheckAlign(addr, width); err != nil {
		return err
	}
	if p.Cache != nil && p.Space.InRAMRegion(addr) {
		base := addr &^ 3
		word := p.Cache.Read(base)
		merged := merge(word, addr, width, value)
		p.Cache.Write(base, merged)
		return nil
	}
	return p.Space.Write(addr, width, value, p.Src)
}

func extract(word, addr uint32, width device.Width) uint32 {
	switch width {
	case device.WidthByte:
		shift := 24 - 8*(addr&3)
		return (word >> shift) & 0xFF
	case device.WidthHalf:
		shift := 16 - 8*(addr&2)
		return (word >> shift) & 0xFFFF
	default:
		return word
	}
}

func merge(word, addr uint32, width device.Width, value uint32) uint32 {
	switch width {
	case device.WidthByte:
		shift := 24 - 8*(addr&3)
		mask := uint32(0xFF) << shift
		return (word &^ mask) | ((value & 0xFF) << shift)
	case device.WidthHalf:
		shift := 16 - 8*(addr&2)
		mask := uint32(0xFFFF) << shift
		return (word &^ mask) | ((value & 0xFFFF) << shift)
	default:
		return value
	}
}
