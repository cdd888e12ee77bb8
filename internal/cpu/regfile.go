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

// Package cpu holds architectural CPU state: the register file and CP0.
// The execution cores that run against it live in package core.
package cpu

// RegKind identifies which register bank a change notification refers to.
type RegKind uint8

const (
	RegGP RegKind = iota // r0..r31
	RegPC
	RegHI
	RegLO
	RegCP0
)

// CP0 select numbers this core models.
const (
	CP0Status   = 12
	CP0Cause    = 13
	CP0EPC      = 14
	CP0BadVAddr = 8
)

// Change is the notification emitted by every register mutation.
type Change struct {
	Kind  RegKind
	Index uint8 // GP register number or CP0 select; unused for PC/HI/LO.
	Old   uint32
	New   uint32
}

// Observer receives register Change notifications. Registration happens
// through the machine facade; the register file itself holds only
// non-owning function handles, never a back-pointer to a subscriber.
type Observer func(Change)

// RegFile is the architectural register state: 32 general-purpose
// registers (r0 hardwired to zero), the multiply result pair, the program
// counter, and a small Coprocessor 0 set.
type RegFile struct {
	gp  [32]uint32
	hi  uint32
	lo  uint32
	pc  uint32
	cp0 map[uint8]uint32

	observers []Observer
}

// NewRegFile returns a zeroed register file.
func NewRegFile() *RegFile {
	return &RegFile{cp0: make(map[uint8]uint32)}
}

// Subscribe registers an observer for all future register changes.
func (r *RegFile) Subscribe(obs Observer) {
	r.observers = append(r.observers, obs)
}

func (r *RegFile) notify(c Change) {
	for _, obs := range r.observers {
		obs(c)
	}
}

// ReadGP reads general-purpose register i. Side-effect-free.
func (r *RegFile) ReadGP(i uint8) uint32 {
	return r.gp[i&31]
}

// WriteGP writes general-purpose register i. Writes to r0 are silently
// discarded and emit no notification, since no mutation occurred.
func (r *RegFile) WriteGP(i uint8, v uint32) {
	i &= 31
	if i == 0 {
		return
	}
	old := r.gp[i]
	r.gp[i] = v
	r.notify(Change{Kind: RegGP, Index: i, Old: old, New: v})
}

// ReadPC returns the program counter.
func (r *RegFile) ReadPC() uint32 { return r.pc }

// WritePC sets the program counter.
func (r *RegFile) WritePC(v uint32) {
	old := r.pc
	r.pc = v
	r.notify(Change{Kind: RegPC, Old: old, New: v})
}

// ReadHI/ReadLO read the multiply/divide result registers.
func (r *RegFile) ReadHI() uint32 { return r.hi }
func (r *RegFile) ReadLO() uint32 { return r.lo }

// WriteHI/WriteLO set the multiply/divide result registers.
func (r *RegFile) WriteHI(v uint32) {
	old := r.hi
	r.hi = v
	r.notify(Change{Kind: RegHI, Old: old, New: v})
}

func (r *RegFile) WriteLO(v uint32) {
	old := r.lo
	r.lo = v
	r.notify(Change{Kind: RegLO, Old: old, New: v})
}

// ReadCP0 reads Coprocessor 0 register sel. Unwritten selects read zero.
func (r *RegFile) ReadCP0(sel uint8) uint32 {
	return r.cp0[sel]
}

// WriteCP0 sets Coprocessor 0 register sel.
func (r *RegFile) WriteCP0(sel uint8, v uint32) {
	old := r.cp0[sel]
	r.cp0[sel] = v
	r.notify(Change{Kind: RegCP0, Index: sel, Old: old, New: v})
}

// Reset clears all architectural state back to power-on values.
func (r *RegFile) Reset() {
	for i := range r.gp {
		r.gp[i] = 0
	}
	r.hi, r.lo, r.pc = 0, 0, 0
	r.cp0 = make(map[uint8]uint32)
}
