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
	"github.com/mipssim/mips32/internal/cpu"
	"github.com/mipssim/mips32/internal/device"
	"github.com/mipssim/mips32/internal/isa"
	"github.com/mipssim/mips32/internal/trap"
)

// HazardUnit selects how the pipeline reacts to a RAW hazard between an
// in-flight producer and a later consumer.
type HazardUnit uint8

const (
	HazardNone HazardUnit = iota // no protection; program is responsible (testing only).
	HazardStall
	HazardForward
)

// Each latch is a tagged variant: either a bubble (zero value, Valid ==
// false) or a fully computed payload, so forwarding and flush logic are
// total functions that never need to special-case a nil instruction.

type ifidLatch struct {
	Valid bool
	PC    uint32
	Word  uint32
	Fault *trap.Trap
}

type idexLatch struct {
	Valid bool
	PC    uint32
	In    isa.Instruction
	RSVal uint32
	RTVal uint32
	Fault *trap.Trap
}

type exmemLatch struct {
	Valid        bool
	PC           uint32
	In           isa.Instruction
	ALUVal       uint32
	StoreVal     uint32
	WriteReg     uint8
	HasWrite     bool
	WriteHL      bool
	HIVal, LOVal uint32
	BranchTaken  bool
	BranchTarget uint32
	Fault        *trap.Trap
}

type memwbLatch struct {
	Valid    bool
	PC       uint32
	In       isa.Instruction
	WriteReg uint8
	HasWrite bool
	WriteVal uint32
	WriteHL  bool
	HIVal, LOVal uint32
	Fault    *trap.Trap
}

// PipelineStats counts hazard events for the --dump-cycles / debug
// surface.
type PipelineStats struct {
	Bubbles       uint64
	Flushes       uint64
	StructStalls  uint64
}

// PipelinedCore is a classic 5-stage IF/ID/EX/MEM/WB core.
type PipelinedCore struct {
	Regs      *cpu.RegFile
	IFetch    *MemPort
	DMem      *MemPort
	Hazard    HazardUnit
	HasICache bool // if false, IF and MEM structurally contend for memory.
	HaltAddr  *uint32

	pc uint32

	ifid   ifidLatch
	idex   idexLatch
	exmem  exmemLatch
	memwb  memwbLatch

	Cycles uint64
	Stats  PipelineStats
	halted bool
	trap   *trap.Trap
}

// NewPipelinedCore builds a pipelined core starting from the register
// file's current PC, all latches empty.
func NewPipelinedCore(regs *cpu.RegFile, ifetch, dmem *MemPort, hazard HazardUnit, hasICache bool, haltAddr *uint32) *PipelinedCore {
	return &PipelinedCore{Regs: regs, IFetch: ifetch, DMem: dmem, Hazard: hazard, HasICache: hasICache, HaltAddr: haltAddr, pc: regs.ReadPC()}
}

func (c *PipelinedCore) Halted() bool { return c.halted }

// Trap returns the trap that halted the core, nil if it halted cleanly
// or is still running.
func (c *PipelinedCore) Trap() *trap.Trap { return c.trap }

// Step advances the pipeline by exactly one cycle, computing every
// stage's new latch from the current (pre-cycle) latches, then
// committing all of them together — stage evaluation order within a
// cycle does not matter since each stage only reads input latches and
// writes output latches.
func (c *PipelinedCore) Step() StepResult {
	if c.halted {
		return StepResult{Halted: true}
	}
	c.Cycles++

	retiredPC, wbTrap := c.writeback()
	memOut, memDidAccess := c.memStage()
	exOut := c.exStage()

	// A mispredict resolved last cycle (latched into EX/MEM, now sitting
	// one stage past EX) discards both the instruction currently in
	// IF/ID and whatever IF is fetching this cycle, per spec: "flush
	// IF/ID (and IF fetch)".
	target, mispredict := c.resolveBranch()
	if mispredict {
		c.pc = target
		c.Stats.Flushes++
	}

	idOut, stall := c.idStage(mispredict)

	structStall := !c.HasICache && memDidAccess
	if structStall {
		c.Stats.StructStalls++
	}

	ifOut := c.ifStage(stall || structStall || mispredict)

	c.memwb = memOut
	c.exmem = exOut
	if !stall && !mispredict {
		c.idex = idOut
	} else {
		c.idex = idexLatch{} // bubble: load-use stall or squashed by a mispredict.
		if stall {
			c.Stats.Bubbles++
		}
	}
	if mispredict {
		c.ifid = ifidLatch{}
	} else if !stall && !structStall {
		c.ifid = ifOut
	} else if !stall {
		c.ifid = ifidLatch{} // ID took IF/ID's instruction; the held IF fetched nothing.
	}

	if wbTrap != nil {
		c.halted = true
		c.trap = wbTrap
		return StepResult{Halted: true, Trap: wbTrap, PC: retiredPC}
	}
	if c.halted {
		return StepResult{Halted: true, PC: retiredPC} // halt SYSCALL retired.
	}

	if c.HaltAddr != nil && c.pc == *c.HaltAddr && !c.idex.Valid && !c.exmem.Valid && !c.memwb.Valid && !c.ifid.Valid {
		c.halted = true
		return StepResult{Halted: true, PC: retiredPC}
	}

	return StepResult{PC: retiredPC}
}

// writeback commits MEM/WB's result to the register file and reports the
// PC that retired this cycle (0 if nothing did).
func (c *PipelinedCore) writeback() (uint32, *trap.Trap) {
	l := c.memwb
	if !l.Valid {
		return 0, nil
	}
	if l.Fault != nil {
		return l.PC, l.Fault
	}
	if l.WriteHL {
		c.Regs.WriteHI(l.HIVal)
		c.Regs.WriteLO(l.LOVal)
	} else if l.HasWrite {
		c.Regs.WriteGP(l.WriteReg, l.WriteVal)
	}
	if l.In.Mn == isa.MSYSCALL && c.Regs.ReadGP(2) == 10 {
		c.halted = true
	}
	return l.PC, nil
}

// memStage services EX/MEM's memory reference and produces MEM/WB.
// didAccess reports whether it touched data memory this cycle, which
// drives the no-cache structural hazard against IF.
func (c *PipelinedCore) memStage() (memwbLatch, bool) {
	l := c.exmem
	if !l.Valid {
		return memwbLatch{}, false
	}
	if l.Fault != nil {
		return memwbLatch{Valid: true, PC: l.PC, In: l.In, Fault: l.Fault}, false
	}
	out := memwbLatch{Valid: true, PC: l.PC, In: l.In, WriteReg: l.WriteReg, HasWrite: l.HasWrite,
		WriteVal: l.ALUVal, WriteHL: l.WriteHL, HIVal: l.HIVal, LOVal: l.LOVal}

	switch {
	case l.In.IsLoad():
		v, err := c.DMem.Read(l.ALUVal, widthOf(l.In.Mn))
		if err != nil {
			out.Fault = addrTrap(err, l.PC, l.ALUVal, false)
			return out, true
		}
		out.WriteVal = signExtendLoad(l.In.Mn, v)
		return out, true
	case l.In.IsStore():
		if err := c.DMem.Write(l.ALUVal, widthOf(l.In.Mn), l.StoreVal); err != nil {
			out.Fault = addrTrap(err, l.PC, l.ALUVal, true)
		}
		return out, true
	default:
		return out, false
	}
}

// exStage evaluates EX/MEM from ID/EX, forwarding EX/MEM and MEM/WB
// results over stale register-file reads (EX/MEM takes priority).
func (c *PipelinedCore) exStage() exmemLatch {
	l := c.idex
	if !l.Valid {
		return exmemLatch{}
	}
	if l.Fault != nil {
		return exmemLatch{Valid: true, PC: l.PC, In: l.In, Fault: l.Fault}
	}

	rsVal := c.forward(l.In.RS, l.RSVal)
	rtVal := c.forward(l.In.RT, l.RTVal)
	hi, lo := c.Regs.ReadHI(), c.Regs.ReadLO()

	out := exmemLatch{Valid: true, PC: l.PC, In: l.In}

	switch {
	case l.In.IsLoad(), l.In.IsStore():
		out.ALUVal = rsVal + uint32(l.In.ImmSExt)
		out.StoreVal = rtVal
		if reg, ok := l.In.WritesGP(); ok {
			out.WriteReg, out.HasWrite = reg, true
		}
		return out

	case l.In.Mn == isa.MJ:
		out.BranchTaken, out.BranchTarget = true, isa.JumpTarget(l.In, l.PC)
		return out
	case l.In.Mn == isa.MJAL:
		out.WriteReg, out.HasWrite = 31, true
		out.ALUVal = l.PC + 4
		out.BranchTaken, out.BranchTarget = true, isa.JumpTarget(l.In, l.PC)
		return out
	case l.In.Mn == isa.MJR:
		out.BranchTaken, out.BranchTarget = true, rsVal
		return out
	case l.In.Mn == isa.MJALR:
		out.WriteReg, out.HasWrite = l.In.RD, true
		out.ALUVal = l.PC + 4
		out.BranchTaken, out.BranchTarget = true, rsVal
		return out
	case l.In.IsBranch():
		taken, link := branchTaken(l.In, rsVal, rtVal)
		if link {
			out.WriteReg, out.HasWrite = 31, true
			out.ALUVal = l.PC + 4
		}
		if taken {
			out.BranchTaken, out.BranchTarget = true, isa.BranchTarget(l.In, l.PC)
		}
		return out
	case l.In.Mn == isa.MSYSCALL:
		return out
	case l.In.Mn == isa.MBREAK:
		out.Fault = trap.New(trap.UnsupportedALU, l.PC, "BREAK")
		return out

	case l.In.Mn == isa.MMFC0:
		out.WriteReg, out.HasWrite = l.In.RT, true
		out.ALUVal = c.Regs.ReadCP0(l.In.RD)
		return out
	case l.In.Mn == isa.MMTC0:
		c.Regs.WriteCP0(l.In.RD, rtVal)
		return out

	default:
		res, newHI, newLO, writeHL, unsupported := execALU(l.In, rsVal, rtVal, hi, lo)
		if unsupported {
			out.Fault = trap.New(trap.UnsupportedALU, l.PC, l.In.Mn.String())
			return out
		}
		if res.overflow {
			out.Fault = trap.New(trap.Overflow, l.PC, l.In.Mn.String())
			return out
		}
		if writeHL {
			out.WriteHL, out.HIVal, out.LOVal = true, newHI, newLO
			return out
		}
		out.ALUVal = res.value
		if reg, ok := l.In.WritesGP(); ok {
			out.WriteReg, out.HasWrite = reg, true
		}
		return out
	}
}

// forward returns the most recent in-flight value for reg when the
// hazard unit is configured to forward; EX/MEM wins over MEM/WB per spec
// priority. With hazard_unit ∈ {none, stall} this is a no-op: "none"
// deliberately leaves the hazard unhandled (a baseline for comparison),
// and "stall" already keeps the hazard out of the pipeline by holding ID
// until the producer has retired.
func (c *PipelinedCore) forward(reg uint8, fallback uint32) uint32 {
	if reg == 0 {
		return 0
	}
	if c.Hazard != HazardForward {
		return fallback
	}
	if c.exmem.Valid && c.exmem.HasWrite && c.exmem.WriteReg == reg {
		return c.exmem.ALUVal
	}
	if c.memwb.Valid && c.memwb.HasWrite && c.memwb.WriteReg == reg {
		return c.memwb.WriteVal
	}
	return fallback
}

// pendingHazard reports whether reg is about to be written by an
// instruction still in flight, used by the stall-only hazard unit. The
// instruction in ID/EX has a statically known destination (WritesGP
// needs only the decoded fields, not its computed result), so it is
// checked directly; EX/MEM and MEM/WB have theirs already latched.
func (c *PipelinedCore) pendingHazard(reg uint8) bool {
	if reg == 0 {
		return false
	}
	if c.idex.Valid {
		if dest, ok := c.idex.In.WritesGP(); ok && dest == reg {
			return true
		}
	}
	if c.exmem.Valid && c.exmem.HasWrite && c.exmem.WriteReg == reg {
		return true
	}
	if c.memwb.Valid && c.memwb.HasWrite && c.memwb.WriteReg == reg {
		return true
	}
	return false
}

// idStage decodes IF/ID, reads the register file, and detects a
// load-use hazard against the instruction currently in ID/EX. On a
// detected hazard it reports stall == true; the caller injects a bubble
// into ID/EX and holds PC and IF/ID.
func (c *PipelinedCore) idStage(squash bool) (idexLatch, bool) {
	if squash {
		return idexLatch{}, false
	}
	l := c.ifid
	if !l.Valid {
		return idexLatch{}, false
	}
	if l.Fault != nil {
		return idexLatch{Valid: true, PC: l.PC, Fault: l.Fault}, false
	}
	in, err := isa.Decode(l.Word)
	if err != nil {
		return idexLatch{Valid: true, PC: l.PC, Fault: trap.New(trap.UnsupportedInstruction, l.PC, err.Error())}, false
	}

	switch c.Hazard {
	case HazardForward:
		if c.idex.Valid && c.idex.In.IsLoad() {
			if dest, ok := c.idex.In.WritesGP(); ok && dest != 0 && (dest == in.RS || dest == in.RT) {
				return idexLatch{}, true
			}
		}
	case HazardStall:
		if c.pendingHazard(in.RS) || c.pendingHazard(in.RT) {
			return idexLatch{}, true
		}
	case HazardNone:
		// No protection: forwarding and stalling are both suppressed.
	}

	return idexLatch{Valid: true, PC: l.PC, In: in, RSVal: c.Regs.ReadGP(in.RS), RTVal: c.Regs.ReadGP(in.RT)}, false
}

// ifStage fetches the next instruction unless held: a load-use stall, a
// no-cache structural conflict with MEM, or a mispredict flush (the
// caller redirects c.pc and discards this stage's output in that case).
func (c *PipelinedCore) ifStage(held bool) ifidLatch {
	if held {
		return c.ifid
	}
	if c.HaltAddr != nil && c.pc == *c.HaltAddr {
		return ifidLatch{}
	}
	word, err := c.IFetch.Read(c.pc, device.WidthWord)
	pc := c.pc
	if c.pc&3 != 0 {
		l := ifidLatch{Valid: true, PC: pc, Fault: trap.New(trap.UnalignedJump, pc, "PC not word-aligned")}
		c.pc += 4
		return l
	}
	if err != nil {
		l := ifidLatch{Valid: true, PC: pc, Fault: trap.New(trap.BusError, pc, err.Error())}
		c.pc += 4
		return l
	}
	c.pc += 4
	return ifidLatch{Valid: true, PC: pc, Word: word}
}

// resolveBranch reports whether the instruction sitting in EX/MEM this
// cycle — resolved one cycle earlier, in EX — was a taken branch/jump.
// Checking it at the EX/MEM boundary rather than immediately in EX gives
// the delay-slot instruction (already latched into IF/ID while the
// branch was in EX) one full cycle to proceed into ID/EX unmolested;
// only the instruction fetched after it is wrong-path when taken.
func (c *PipelinedCore) resolveBranch() (target uint32, flush bool) {
	l := c.exmem
	if !l.Valid || l.Fault != nil || !l.BranchTaken {
		return 0, false
	}
	return l.BranchTarget, true
}
