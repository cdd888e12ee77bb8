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
	"testing"

	"github.com/mipssim/mips32/internal/device"
)

func TestRAMNeverWrittenPageReadsZero(t *testing.T) {
	r := NewRAM(0)
	if got := r.ReadWord(0x4000); got != 0 {
		t.Fatalf("ReadWord on untouched page = 0x%x, want 0", got)
	}
	if r.PageCount() != 0 {
		t.Fatalf("reading must not allocate a page, got %d pages", r.PageCount())
	}
}

func TestRAMWordRoundTrip(t *testing.T) {
	r := NewRAM(0)
	r.WriteWord(0x100, 0xDEADBEEF)
	if got := r.ReadWord(0x100); got != 0xDEADBEEF {
		t.Fatalf("ReadWord = 0x%x, want 0xDEADBEEF", got)
	}
}

func TestRAMBigEndianByteOrder(t *testing.T) {
	r := NewRAM(0)
	r.WriteWord(0, 0x01020304)
	want := []byte{0x01, 0x02, 0x03, 0x04}
	for i, w := range want {
		if got := r.ReadByte(uint32(i)); got != w {
			t.Errorf("ReadByte(%d) = 0x%02x, want 0x%02x", i, got, w)
		}
	}
}

func TestRAMHalfRoundTrip(t *testing.T) {
	r := NewRAM(0)
	r.WriteHalf(6, 0xBEEF)
	if got := r.ReadHalf(6); got != 0xBEEF {
		t.Fatalf("ReadHalf = 0x%x, want 0xbeef", got)
	}
	// The other half of the containing word must be untouched.
	if got := r.ReadHalf(4); got != 0 {
		t.Fatalf("ReadHalf(4) = 0x%x, want 0 (unrelated half)", got)
	}
}

func TestRAMRangeRoundTrip(t *testing.T) {
	r := NewRAM(0)
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
	r.WriteRange(0x1000, data)
	got := r.ReadRange(0x1000, uint32(len(data)))
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("byte %d = %d, want %d", i, got[i], data[i])
		}
	}
}

func TestAddressSpaceUnalignedAccessFaults(t *testing.T) {
	s := NewAddressSpace(NewRAM(0), 0)
	_, err := s.Read(1, device.WidthWord, device.SourceCPU)
	if err == nil {
		t.Fatal("expected unaligned-access fault, got nil")
	}
	af, ok := err.(*AccessFault)
	if !ok || af.Kind != FaultUnaligned {
		t.Fatalf("err = %v, want FaultUnaligned AccessFault", err)
	}
}

func TestAddressSpaceUnmappedAccessFaults(t *testing.T) {
	ram := NewRAM(0x1000)
	s := NewAddressSpace(ram, 0)
	_, err := s.Read(0x2000, device.WidthWord, device.SourceCPU)
	af, ok := err.(*AccessFault)
	if !ok || af.Kind != FaultUnmapped {
		t.Fatalf("err = %v, want FaultUnmapped AccessFault", err)
	}
}

func TestAddressSpaceDispatchesToDevice(t *testing.T) {
	ram := NewRAM(0x1000)
	s := NewAddressSpace(ram, 0)
	dev := &fakeDevice{name: "fake", size: 4, store: make([]uint8, 4)}
	s.RegisterDevice(0x10000000, dev)

	if err := s.Write(0x10000000, device.WidthWord, 0x11223344, device.SourceCPU); err != nil {
		t.Fatal(err)
	}
	v, err := s.Read(0x10000000, device.WidthWord, device.SourceCPU)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x11223344 {
		t.Fatalf("Read = 0x%x, want 0x11223344", v)
	}
}

func TestAddressSpaceCacheSyncNotifiesSubscribers(t *testing.T) {
	s := NewAddressSpace(NewRAM(0), 0)
	var got [2]uint32
	called := false
	s.Subscribe(func(addr, length uint32) {
		called = true
		got = [2]uint32{addr, length}
	})
	s.CacheSync(0x400, 16)
	if !called {
		t.Fatal("CacheSync did not notify subscriber")
	}
	if got != [2]uint32{0x400, 16} {
		t.Fatalf("subscriber saw %v, want [0x400 16]", got)
	}
}

type fakeDevice struct {
	name  string
	size  uint32
	store []uint8
}

func (d *fakeDevice) Name() string { return d.name }
func (d *fakeDevice) Size() uint32 { return d.size }

func (d *fakeDevice) ReadByte(addr uint32, _ device.Source) (uint8, error) {
	return d.store[addr], nil
}

func (d *fakeDevice) WriteByte(addr uint32, v uint8, _ device.Source) error {
	d.store[addr] = v
	return nil
}
