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

package memory

import (
	"fmt"
	"sort"

	"github.com/mipssim/mips32/internal/device"
)

// FaultKind classifies why an AddressSpace access failed.
type FaultKind uint8

const (
	FaultUnaligned FaultKind = iota
	FaultUnmapped
)

// AccessFault is returned by AddressSpace when a read or write cannot be
// completed. It carries no PC; the caller (the executing core) attaches
// that context when it turns this into a trap.
type AccessFault struct {
	Kind FaultKind
	Addr uint32
}

func (f *AccessFault) Error() string {
	switch f.Kind {
	case FaultUnaligned:
		return fmt.Sprintf("unaligned access at 0x%08x", f.Addr)
	default:
		return fmt.Sprintf("access to unmapped address 0x%08x", f.Addr)
	}
}

// region is one registered device's slice of the physical address space.
type region struct {
	base uint32
	size uint32
	dev  device.Device
}

// SyncFunc is notified when memory is mutated out from under a cache,
// e.g. the assembler rewriting already-assembled code. addr/length give
// the affected byte range.
type SyncFunc func(addr, length uint32)

// AddressSpace is the single entry point CPU cores, peripherals-as-bus-
// masters, and the assembler all go through to touch physical memory. It
// owns one RAM backend and any number of non-overlapping device regions
// registered above it.
type AddressSpace struct {
	ram      *RAM
	ramBase  uint32
	ramSize  uint32
	regions  []region
	syncSubs []SyncFunc
}

// NewAddressSpace creates a space backed by ram starting at ramBase and
// spanning ram.Size() bytes (or, if ram is unbounded, the whole 32-bit
// space not claimed by a registered device).
func NewAddressSpace(ram *RAM, ramBase uint32) *AddressSpace {
	return &AddressSpace{ram: ram, ramBase: ramBase, ramSize: ram.Size()}
}

// RAM returns the backing RAM, for components (the assembler, ELF
// loader) that need bulk access without going through device dispatch.
func (s *AddressSpace) RAM() *RAM { return s.ram }

// RegisterDevice maps dev into the address space at [base, base+dev.Size()).
// Panics on overlap with an existing region; overlapping memory maps are a
// configuration bug, not a runtime condition.
func (s *AddressSpace) RegisterDevice(base uint32, dev device.Device) {
	size := dev.Size()
	for _, r := range s.regions {
		if base < r.base+r.size && r.base < base+size {
			panic(fmt.Sprintf("memory: device %q overlaps %q at 0x%08x", dev.Name(), r.dev.Name(), base))
		}
	}
	s.regions = append(s.regions, region{base: base, size: size, dev: dev})
	sort.Slice(s.regions, func(i, j int) bool { return s.regions[i].base < s.regions[j].base })
}

func (s *AddressSpace) findDevice(addr uint32) *region {
	i := sort.Search(len(s.regions), func(i int) bool { return s.regions[i].base+s.regions[i].size > addr })
	if i < len(s.regions) && addr >= s.regions[i].base {
		return &s.regions[i]
	}
	return nil
}

func (s *AddressSpace) inRAM(addr uint32) bool {
	if s.findDevice(addr) != nil {
		return false
	}
	return addr >= s.ramBase && (s.ramSize == 0 || addr < s.ramBase+s.ramSize)
}

// InRAMRegion reports whether addr falls in the RAM-backed region rather
// than a registered device's range. Callers that front RAM with their own
// cache (the core's I/D caches) use this to decide whether a cache lookup
// applies or the access must go through device dispatch.
func (s *AddressSpace) InRAMRegion(addr uint32) bool { return s.inRAM(addr) }

// RAMBase returns the byte address RAM is mapped at.
func (s *AddressSpace) RAMBase() uint32 { return s.ramBase }

// Subscribe registers fn to be called on CacheSync.
func (s *AddressSpace) Subscribe(fn SyncFunc) {
	s.syncSubs = append(s.syncSubs, fn)
}

// CacheSync notifies subscribers (an instruction cache, typically) that
// the byte range [addr, addr+length) was mutated by something other than
// the normal store path, and any cached copy must be invalidated.
func (s *AddressSpace) CacheSync(addr, length uint32) {
	for _, fn := range s.syncSubs {
		fn(addr, length)
	}
}

// Read performs a width-sized access. width must be 1, 2, or 4; 2 and 4
// require addr aligned to that width. src lets a device suppress side
// effects for debugger probes.
func (s *AddressSpace) Read(addr uint32, width device.Width, src device.Source) (uint32, error) {
	if err := checkAlign(addr, width); err != nil {
		return 0, err
	}
	if s.inRAM(addr) {
		rel := addr - s.ramBase
		switch width {
		case device.WidthByte:
			return uint32(s.ram.ReadByte(rel)), nil
		case device.WidthHalf:
			return uint32(s.ram.ReadHalf(rel)), nil
		default:
			return s.ram.ReadWord(rel), nil
		}
	}
	if r := s.findDevice(addr); r != nil {
		return s.readDevice(r, addr, width, src)
	}
	return 0, &AccessFault{Kind: FaultUnmapped, Addr: addr}
}

// Write performs a width-sized store; see Read for alignment and
// dispatch rules.
func (s *AddressSpace) Write(addr uint32, width device.Width, value uint32, src device.Source) error {
	if err := checkAlign(addr, width); err != nil {
		return err
	}
	if s.inRAM(addr) {
		rel := addr - s.ramBase
		switch width {
		case device.WidthByte:
			s.ram.WriteByte(rel, uint8(value))
		case device.WidthHalf:
			s.ram.WriteHalf(rel, uint16(value))
		default:
			s.ram.WriteWord(rel, value)
		}
		return nil
	}
	if r := s.findDevice(addr); r != nil {
		return s.writeDevice(r, addr, width, value, src)
	}
	return &AccessFault{Kind: FaultUnmapped, Addr: addr}
}

func (s *AddressSpace) readDevice(r *region, addr uint32, width device.Width, src device.Source) (uint32, error) {
	off := addr - r.base
	var v uint32
	for i := uint32(0); i < uint32(width); i++ {
		b, err := r.dev.ReadByte(off+i, src)
		if err != nil {
			return 0, err
		}
		v = v<<8 | uint32(b)
	}
	return v, nil
}

func (s *AddressSpace) writeDevice(r *region, addr uint32, width device.Width, value uint32, src device.Source) error {
	off := addr - r.base
	shift := 8 * (uint32(width) - 1)
	for i := uint32(0); i < uint32(width); i++ {
		b := uint8(value >> shift)
		if err := r.dev.WriteByte(off+i, b, src); err != nil {
			return err
		}
		shift -= 8
	}
	return nil
}

// CheckAlign reports an AccessFault if addr is not aligned to width. It is
// exported so callers that bypass AddressSpace.Read/Write for a cached
// fast path (the core's I/D cache ports) can still enforce the same
// alignment policy.
func CheckAlign(addr uint32, width device.Width) error {
	return checkAlign(addr, width)
}

func checkAlign(addr uint32, width device.Width) error {
	if width == device.WidthHalf && addr&1 != 0 {
		return &AccessFault{Kind: FaultUnaligned, Addr: addr}
	}
	if width == device.WidthWord && addr&3 != 0 {
		return &AccessFault{Kind: FaultUnaligned, Addr: addr}
	}
	return nil
}
