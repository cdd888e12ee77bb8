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

// Package device describes the contract a memory-mapped peripheral
// implements, and the Source that distinguishes who is issuing an access.
package device

// Source distinguishes the originator of a memory access. Peripherals may
// use it to decide whether an access should trigger a side effect (a
// console read draining its input queue) or pass through untouched (a
// debugger probe inspecting state without disturbing it).
type Source uint8

const (
	SourceCPU       Source = iota // core fetch/load/store.
	SourcePeripheral              // burst DMA-style transfer, e.g. assembler/ELF load.
	SourceDebugger                // console examine/deposit; side-effect-free by convention.
)

// Width is the size in bytes of a memory access.
type Width uint8

const (
	WidthByte Width = 1
	WidthHalf Width = 2
	WidthWord Width = 4
)

// Device is a memory-mapped peripheral. Addr arguments are offsets from
// the device's own base, already translated by the address space
// dispatcher that owns it.
type Device interface {
	// Name identifies the device for trace and dump output.
	Name() string

	// Size is the number of bytes the device occupies in the physical
	// address space.
	Size() uint32

	// ReadByte/WriteByte perform one byte-wide access at offset addr.
	// src lets the device suppress side effects on debugger probes.
	ReadByte(addr uint32, src Source) (uint8, error)
	WriteByte(addr uint32, v uint8, src Source) error
}
