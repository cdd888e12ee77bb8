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

package periph

import (
	"testing"

	"github.com/mipssim/mips32/internal/device"
	"github.com/mipssim/mips32/internal/memory"
)

func TestSerialEcho(t *testing.T) {
	s := NewSerial()
	space := memory.NewAddressSpace(memory.NewRAM(0x1000), 0)
	space.RegisterDevice(0x2000, s)

	s.PushInput([]byte{'A'})
	st, err := space.Read(0x2000, device.WidthByte, device.SourceCPU)
	if err != nil || st&serialStatusRXReady == 0 {
		t.Fatalf("status = %d, err = %v, want RX_READY set", st, err)
	}
	b, err := space.Read(0x2001, device.WidthByte, device.SourceCPU)
	if err != nil || b != 'A' {
		t.Fatalf("data = %d, err = %v, want 'A'", b, err)
	}
	st2, _ := space.Read(0x2000, device.WidthByte, device.SourceCPU)
	if st2&serialStatusRXReady != 0 {
		t.Fatalf("RX_READY still set after drain")
	}

	if err := space.Write(0x2001, device.WidthByte, 'z', device.SourceCPU); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := s.TakeOutput()
	if string(out) != "z" {
		t.Fatalf("output = %q, want %q", out, "z")
	}
}

func TestSerialDebuggerPeekDoesNotDrain(t *testing.T) {
	s := NewSerial()
	s.PushInput([]byte{'Q'})
	b, err := s.ReadByte(serialOffData, device.SourceDebugger)
	if err != nil || b != 'Q' {
		t.Fatalf("peek = %d, err = %v", b, err)
	}
	b2, _ := s.ReadByte(serialOffData, device.SourceCPU)
	if b2 != 'Q' {
		t.Fatalf("byte disappeared after a debugger peek: got %d", b2)
	}
}

func TestLCDWriteAndWrap(t *testing.T) {
	l := NewLCD(2, 4)
	for _, c := range []byte("abcdefgh") {
		if err := l.WriteByte(lcdOffData, c, device.SourceCPU); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	lines := l.Lines()
	if lines[0] != "abcd" || lines[1] != "efgh" {
		t.Fatalf("lines = %q", lines)
	}
	// Ninth character wraps back to the start.
	if err := l.WriteByte(lcdOffData, 'Z', device.SourceCPU); err != nil {
		t.Fatalf("write: %v", err)
	}
	if l.Lines()[0] != "Zbcd" {
		t.Fatalf("lines after wrap = %q", l.Lines())
	}
}

func TestLCDClear(t *testing.T) {
	l := NewLCD(1, 3)
	l.WriteByte(lcdOffData, 'x', device.SourceCPU)
	l.WriteByte(lcdOffCtrl, lcdCmdClear, device.SourceCPU)
	if l.Lines()[0] != "   " {
		t.Fatalf("lines after clear = %q", l.Lines())
	}
}

func TestDialAndLED(t *testing.T) {
	d := NewDial()
	d.SetDial(7)
	v, err := d.ReadByte(dialOffDial, device.SourceCPU)
	if err != nil || v != 7 {
		t.Fatalf("dial = %d, err = %v", v, err)
	}
	if err := d.WriteByte(dialOffLED, 0x0f, device.SourceCPU); err != nil {
		t.Fatalf("write led: %v", err)
	}
	if d.LED() != 0x0f {
		t.Fatalf("led = %d, want 0x0f", d.LED())
	}
}

func TestTimerFiresAndAutoreloads(t *testing.T) {
	tm := NewTimer()
	load := func(addr uint32, v uint32) {
		for i, b := range putWord(v) {
			tm.WriteByte(addr+uint32(i), b, device.SourceCPU)
		}
	}
	load(timerOffReload, 3)
	load(timerOffCount, 3)
	load(timerOffCtrl, timerCtrlEnable|timerCtrlAutoreload)

	tm.Tick(3)
	if tm.Fired() {
		t.Fatalf("fired too early")
	}
	tm.Tick(1)
	if !tm.Fired() {
		t.Fatalf("expected fired after the count reaches zero")
	}

	// Acknowledge by writing 1 to the status byte.
	tm.WriteByte(15, timerStatusFired, device.SourceCPU)
	if tm.Fired() {
		t.Fatalf("still fired after acknowledge")
	}

	b0, _ := tm.ReadByte(timerOffCount+3, device.SourceCPU)
	if b0 != 3 {
		t.Fatalf("count after autoreload = %d, want 3", b0)
	}
}

func TestTimerOneShotDisablesItself(t *testing.T) {
	tm := NewTimer()
	load := func(addr uint32, v uint32) {
		for i, b := range putWord(v) {
			tm.WriteByte(addr+uint32(i), b, device.SourceCPU)
		}
	}
	load(timerOffCount, 1)
	load(timerOffCtrl, timerCtrlEnable)

	tm.Tick(2)
	if !tm.Fired() {
		t.Fatalf("expected fired")
	}
	ctrl, _ := tm.ReadByte(timerOffCtrl+3, device.SourceCPU)
	if ctrl&timerCtrlEnable != 0 {
		t.Fatalf("one-shot timer did not disable itself")
	}
}
