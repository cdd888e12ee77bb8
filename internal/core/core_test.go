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
	"testing"

	"github.com/mipssim/mips32/internal/cpu"
	"github.com/mipssim/mips32/internal/device"
	"github.com/mipssim/mips32/internal/isa"
	"github.com/mipssim/mips32/internal/memory"
)

func rType(mn isa.Mnemonic, rs, rt, rd, shamt uint8) uint32 {
	w, err := isa.Encode(isa.Instruction{Format: isa.FormatR, Mn: mn, RS: rs, RT: rt, RD: rd, Shamt: shamt})
	if err != nil {
		panic(err)
	}
	return w
}

func iType(mn isa.Mnemonic, rs, rt uint8, imm16 uint16) uint32 {
	w, err := isa.Encode(isa.Instruction{Format: isa.FormatI, Mn: mn, RS: rs, RT: rt, ImmZExt: uint32(imm16)})
	if err != nil {
		panic(err)
	}
	return w
}

func jType(mn isa.Mnemonic, target uint32) uint32 {
	w, err := isa.Encode(isa.Instruction{Format: isa.FormatJ, Mn: mn, JIndex: (target >> 2) & 0x03FFFFFF})
	if err != nil {
		panic(err)
	}
	return w
}

func newTestSpace(t *testing.T, words ...uint32) *memory.AddressSpace {
	t.Helper()
	ram := memory.NewRAM(4096)
	space := memory.NewAddressSpace(ram, 0)
	for i, w := range words {
		ram.WriteWord(uint32(i*4), w)
	}
	return space
}

func newSingle(space *memory.AddressSpace, delaySlot bool, haltAddr *uint32) *SingleCycleCore {
	regs := cpu.NewRegFile()
	port := &MemPort{Space: space, Src: device.SourceCPU}
	return NewSingleCycleCore(regs, port, port, delaySlot, haltAddr)
}

func newPipelined(space *memory.AddressSpace, hazard HazardUnit, haltAddr *uint32) *PipelinedCore {
	regs := cpu.NewRegFile()
	port := &MemPort{Space: space, Src: device.SourceCPU}
	return NewPipelinedCore(regs, port, port, hazard, true, haltAddr)
}

// TestSingleCycleAddOverflowTraps exercises the ADD/OVERFLOW scenario
// from the spec: two maximally-positive 32-bit values added together
// must trap with the faulting PC latched as EPC.
func TestSingleCycleAddOverflowTraps(t *testing.T) {
	words := []uint32{
		iType(isa.MLUI, 0, 1, 0x7FFF),      // LUI $1, 0x7FFF
		iType(isa.MORI, 1, 1, 0xFFFF),      // ORI $1, $1, 0xFFFF
		rType(isa.MADD, 1, 1, 2, 0),        // ADD $2, $1, $1
	}
	space := newTestSpace(t, words...)
	c := newSingle(space, false, nil)

	for i := 0; i < 2; i++ {
		res := c.Step()
		if res.Trap != nil {
			t.Fatalf("unexpected trap at step %d: %v", i, res.Trap)
		}
	}
	if got := c.Regs.ReadGP(1); got != 0x7FFFFFFF {
		t.Fatalf("$1 = 0x%08x, want 0x7fffffff", got)
	}

	res := c.Step()
	if res.Trap == nil {
		t.Fatalf("expected an overflow trap, got none")
	}
	if res.Trap.Kind.Letter() != 'O' {
		t.Fatalf("trap kind = %v, want overflow", res.Trap.Kind)
	}
	if res.Trap.EPC != 8 {
		t.Fatalf("EPC = 0x%x, want 0x8 (address of the ADD)", res.Trap.EPC)
	}
	if !c.Halted() {
		t.Fatalf("core did not halt on trap")
	}
	if got := c.Regs.ReadGP(2); got != 0 {
		t.Fatalf("$2 = %d, want 0 (overflowing ADD must not write back)", got)
	}
}

// TestSingleCycleBranchDelaySlot follows the spec's delay-slot example:
// J target; ADDI $1,$0,1; target: ADDI $2,$0,2 — with delay slots
// enabled, the instruction textually after J still executes before the
// jump lands.
func TestSingleCycleBranchDelaySlot(t *testing.T) {
	target := uint32(8)
	words := []uint32{
		jType(isa.MJ, target),           // 0: J target
		iType(isa.MADDI, 0, 1, 1),       // 4: ADDI $1, $0, 1  (delay slot)
		iType(isa.MADDI, 0, 2, 2),       // 8: ADDI $2, $0, 2  (target)
	}
	space := newTestSpace(t, words...)
	haltAddr := uint32(12)
	c := newSingle(space, true, &haltAddr)

	for steps := 0; !c.Halted() && steps < 10; steps++ {
		res := c.Step()
		if res.Trap != nil {
			t.Fatalf("unexpected trap: %v", res.Trap)
		}
	}
	if !c.Halted() {
		t.Fatalf("core never reached halt address")
	}
	if got := c.Regs.ReadGP(1); got != 1 {
		t.Fatalf("$1 = %d, want 1 (delay slot must execute)", got)
	}
	if got := c.Regs.ReadGP(2); got != 2 {
		t.Fatalf("$2 = %d, want 2", got)
	}
}

// TestPipelinedLoadUseStall follows the spec's load-use example: with
// hazard_unit=forward, LW immediately followed by a dependent ADD costs
// exactly one bubble, and forwarding out of MEM/WB still produces the
// correct sum.
func TestPipelinedLoadUseStall(t *testing.T) {
	words := []uint32{
		iType(isa.MLW, 0, 2, 8),      // 0: LW $2, 8($0)  (loads the data word below)
		rType(isa.MADD, 2, 2, 3, 0),  // 4: ADD $3, $2, $2
		21,                           // 8: data word, never fetched (halt address)
	}
	space := newTestSpace(t, words...)
	haltAddr := uint32(8)
	c := newPipelined(space, HazardForward, &haltAddr)

	for steps := 0; !c.Halted() && steps < 20; steps++ {
		res := c.Step()
		if res.Trap != nil {
			t.Fatalf("unexpected trap: %v", res.Trap)
		}
	}
	if !c.Halted() {
		t.Fatalf("pipeline never drained to halt")
	}
	if c.Stats.Bubbles != 1 {
		t.Fatalf("Bubbles = %d, want exactly 1", c.Stats.Bubbles)
	}
	loaded := words[2]
	want := loaded + loaded
	if got := c.Regs.ReadGP(3); got != want {
		t.Fatalf("$3 = 0x%x, want 0x%x", got, want)
	}
}

// TestPipelinedBranchMispredictFlushesOneInstruction verifies the flush
// extent documented in DESIGN.md: a taken branch discards exactly the
// one wrong-path instruction fetched after the delay slot, while the
// delay-slot instruction itself always retires.
func TestPipelinedBranchMispredictFlushesOneInstruction(t *testing.T) {
	words := []uint32{
		jType(isa.MJ, 12),             // 0: J 12
		iType(isa.MADDI, 0, 1, 1),     // 4: ADDI $1, $0, 1   (delay slot, always executes)
		iType(isa.MADDI, 0, 4, 99),    // 8: ADDI $4, $0, 99  (wrong path, must be squashed)
		iType(isa.MADDI, 0, 2, 2),     // 12: ADDI $2, $0, 2  (target)
	}
	space := newTestSpace(t, words...)
	haltAddr := uint32(16)
	c := newPipelined(space, HazardForward, &haltAddr)

	for steps := 0; !c.Halted() && steps < 20; steps++ {
		res := c.Step()
		if res.Trap != nil {
			t.Fatalf("unexpected trap: %v", res.Trap)
		}
	}
	if !c.Halted() {
		t.Fatalf("pipeline never drained to halt")
	}
	if c.Stats.Flushes != 1 {
		t.Fatalf("Flushes = %d, want exactly 1", c.Stats.Flushes)
	}
	if got := c.Regs.ReadGP(1); got != 1 {
		t.Fatalf("$1 = %d, want 1 (delay slot must retire)", got)
	}
	if got := c.Regs.ReadGP(4); got != 0 {
		t.Fatalf("$4 = %d, want 0 (wrong-path instruction must be squashed)", got)
	}
	if got := c.Regs.ReadGP(2); got != 2 {
		t.Fatalf("$2 = %d, want 2", got)
	}
}

// TestPipelinedVsSingleCycleAgree checks the invariant that, for a
// program with no hazards spanning undefined behaviour, the pipelined
// and single-cycle cores reach identical final register state.
func TestPipelinedVsSingleCycleAgree(t *testing.T) {
	prog := func() []uint32 {
		return []uint32{
			iType(isa.MADDI, 0, 1, 10),  // 0: ADDI $1, $0, 10
			iType(isa.MADDI, 0, 2, 20),  // 4: ADDI $2, $0, 20
			rType(isa.MADD, 1, 2, 3, 0), // 8: ADD $3, $1, $2
			rType(isa.MSUB, 2, 1, 4, 0), // 12: SUB $4, $2, $1
		}
	}
	haltAddr := uint32(16)

	single := newSingle(newTestSpace(t, prog()...), false, &haltAddr)
	for steps := 0; !single.Halted() && steps < 20; steps++ {
		if res := single.Step(); res.Trap != nil {
			t.Fatalf("single-cycle: unexpected trap: %v", res.Trap)
		}
	}

	pipe := newPipelined(newTestSpace(t, prog()...), HazardForward, &haltAddr)
	for steps := 0; !pipe.Halted() && steps < 20; steps++ {
		if res := pipe.Step(); res.Trap != nil {
			t.Fatalf("pipelined: unexpected trap: %v", res.Trap)
		}
	}

	for _, reg := range []uint8{1, 2, 3, 4} {
		sv, pv := single.Regs.ReadGP(reg), pipe.Regs.ReadGP(reg)
		if sv != pv {
			t.Fatalf("$%d diverges: single=%d pipelined=%d", reg, sv, pv)
		}
	}
}
