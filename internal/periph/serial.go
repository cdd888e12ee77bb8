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

// Package periph implements the memory-mapped peripherals: a serial
// console, an LCD text display, a dial/LED register, and a countdown
// interval timer. Each satisfies device.Device and is driven externally
// by host code between cycles, per the single-threaded cooperative model.
package periph

import "github.com/mipssim/mips32/internal/device"

const (
	serialOffStatus = 0
	serialOffData   = 1
	serialSize      = 2

	serialStatusRXReady = 1 << 0
	serialStatusTXReady = 1 << 1
)

// Serial is a one-byte-at-a-time UART-style console. The CPU side sees a
// STATUS byte and a DATA byte; the host side feeds input with PushInput
// and drains output with TakeOutput.
type Serial struct {
	rx  []byte
	tx  []byte
}

// NewSerial creates an empty console with no pending input or output.
func NewSerial() *Serial {
	return &Serial{}
}

func (s *Serial) Name() string { return "serial" }
func (s *Serial) Size() uint32 { return serialSize }

// PushInput queues bytes for the CPU to read via DATA, in order.
func (s *Serial) PushInput(data []byte) {
	s.rx = append(s.rx, data...)
}

// TakeOutput drains and returns everything the CPU has transmitted.
func (s *Serial) TakeOutput() []byte {
	out := s.tx
	s.tx = nil
	return out
}

func (s *Serial) ReadByte(addr uint32, src device.Source) (uint8, error) {
	switch addr {
	case serialOffStatus:
		var st uint8 = serialStatusTXReady
		if len(s.rx) > 0 {
			st |= serialStatusRXReady
		}
		return st, nil
	case serialOffData:
		if len(s.rx) == 0 {
			return 0, nil
		}
		b := s.rx[0]
		// A debugger probe must not disturb state: only a genuine CPU
		// read drains the queue.
		if src != device.SourceDebugger {
			s.rx = s.rx[1:]
		}
		return b, nil
	default:
		return 0, nil
	}
}

func (s *Serial) WriteByte(addr uint32, v uint8, src device.Source) error {
	if addr == serialOffData {
		s.tx = append(s.tx, v)
	}
	return nil
}
