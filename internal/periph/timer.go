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

import "github.com/mipssim/mips32/internal/device"

const (
	timerOffCount  = 0 // word, big-endian: current countdown value.
	timerOffReload = 4 // word: value COUNT reloads to when AUTORELOAD is set.
	timerOffCtrl   = 8 // word: bit0 ENABLE, bit1 AUTORELOAD.
	timerOffStatus = 12 // word: bit0 FIRED, sticky; cleared by writing 1 to it.
	timerSize      = 16

	timerCtrlEnable     = 1 << 0
	timerCtrlAutoreload = 1 << 1
	timerStatusFired    = 1 << 0
)

// Timer is a countdown interval timer: it decrements COUNT once per Tick
// while enabled, and on reaching zero sets the FIRED status bit (and
// reloads from RELOAD if AUTORELOAD is set, else disables itself). It
// carries no vectoring of its own; the machine facade reads Fired and
// latches whatever CP0 Cause bit the osemu hook expects, per spec §9's
// decision not to model a full exception vector. Grounded on the
// teacher's CPU-timer decrement-and-flag idiom (cpu.timer.go).
type Timer struct {
	count, reload, ctrl, status [4]byte
}

// NewTimer creates a stopped timer with everything at zero.
func NewTimer() *Timer { return &Timer{} }

func (t *Timer) Name() string { return "timer" }
func (t *Timer) Size() uint32 { return timerSize }

func getWord(b [4]byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func putWord(v uint32) [4]byte {
	return [4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// Fired reports whether the timer has reached zero since the last
// acknowledgement.
func (t *Timer) Fired() bool {
	return getWord(t.status)&timerStatusFired != 0
}

// Tick advances the timer by n cycles, applied one decrement at a time
// so a reload that undershoots zero is handled the same as hardware
// that free-runs: the remainder carries into the next period.
func (t *Timer) Tick(n uint32) {
	ctrl := getWord(t.ctrl)
	if ctrl&timerCtrlEnable == 0 {
		return
	}
	count := getWord(t.count)
	for i := uint32(0); i < n; i++ {
		if count == 0 {
			t.status = putWord(getWord(t.status) | timerStatusFired)
			if ctrl&timerCtrlAutoreload != 0 {
				count = getWord(t.reload)
				continue
			} else {
				ctrl &^= timerCtrlEnable
				t.ctrl = putWord(ctrl)
				break
			}
		}
		if count > 0 {
			count--
		}
	}
	t.count = putWord(count)
}

func (t *Timer) ReadByte(addr uint32, src device.Source) (uint8, error) {
	switch {
	case addr < 4:
		return t.count[addr], nil
	case addr < 8:
		return t.reload[addr-4], nil
	case addr < 12:
		return t.ctrl[addr-8], nil
	case addr < 16:
		return t.status[addr-12], nil
	default:
		return 0, nil
	}
}

func (t *Timer) WriteByte(addr uint32, v uint8, src device.Source) error {
	switch {
	case addr < 4:
		t.count[addr] = v
	case addr < 8:
		t.reload[addr-4] = v
	case addr < 12:
		t.ctrl[addr-8] = v
	case addr < 16:
		// Write-one-to-clear on the low byte only, matching a
		// single-bit status flag in its usual byte.
		if addr == 15 && v&timerStatusFired != 0 {
			t.status = putWord(getWord(t.status) &^ timerStatusFired)
		}
	}
	return nil
}
