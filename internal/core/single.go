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

// StepResult is what one Step call produced, for the machine facade and
// tracer to react to.
type StepResult struct {
	Halted bool
	Trap   *trap.Trap
	PC     uint32 // PC of the instruction just executed.
}

// SingleCycleCore executes one instruction per Step call: fetch, execute,
// and commit all in one cycle. A pending branch/jump target is latched
// and, if delay slots are enabled, installed only after the following
// instruction has also executed.
type SingleCycleCore struct {
	Regs      *cpu.RegFile
	IFetch    *MemPort
	DMem      *MemPort
	DelaySlot bool
	HaltAddr  *uint32 // ELF _halt symbol address, nil if undefined.

	Cycles uint64
	halted bool

	pendingTarget uint32
	pendingBranch bool // a branch/jump is in its delay slot, waiting to land.
}

// NewSingleCycleCore builds a core ready to run from the register file's
// current PC.
func NewSingleCycleCore(regs *cpu.RegFile, ifetch, dmem *MemPort, delaySlot bool, haltAddr *uint32) *SingleCycleCore {
	return &SingleCycleCore{Regs: regs, IFetch: ifetch, DMem: dmem, DelaySlot: delaySlot, HaltAddr: haltAddr}
}

// Halted reports whether the core has reached a halt condition.
func (c *SingleCycleCore) Halted() bool { return c.halted }

// Step executes exactly one instruction.
func (c *SingleCycleCore) Step() StepResult {
	if c.halted {
		return StepResult{Halted: true}
	}
	pc := c.Regs.ReadPC()
	c.Cycles++

	if pc&3 != 0 {
		t := trap.New(trap.UnalignedJump, pc, "PC not word-aligned")
		c.halted = true
		return StepResult{Halted: true, Trap: t, PC: pc}
	}
	if c.HaltAddr != nil && pc == *c.HaltAddr {
		c.halted = true
		return StepResult{Halted: true, PC: pc}
	}

	word, err := c.IFetch.Read(pc, device.WidthWord)
	if err != nil {
		t := trap.New(trap.BusError, pc, err.Error())
		c.halted = true
		return StepResult{Halted: true, Trap: t, PC: pc}
	}
	in, err := isa.Decode(word)
	if err != nil {
		t := trap.New(trap.UnsupportedInstruction, pc, err.Error())
		c.halted = true
		return StepResult{Halted: true, Trap: t, PC: pc}
	}

	res := c.execute(pc, in)
	if res.Trap != nil {
		c.halted = true
		res.PC = pc
		return res.StepResult
	}

	// Advance PC: land a pending delay-slot branch, else apply this
	// instruction's own control transfer (immediately, if delay slots
	// are disabled), else fall through.
	switch {
	case c.pendingBranch:
		c.Regs.WritePC(c.pendingTarget)
		c.pendingBranch = false
	case res.nextPC != nil:
		if c.DelaySlot && (in.IsBranch() || in.IsJump()) {
			c.Regs.WritePC(pc + 4)
			c.pendingTarget = *res.nextPC
			c.pendingBranch = true
		} else {
			c.Regs.WritePC(*res.nextPC)
		}
	default:
		c.Regs.WritePC(pc + 4)
	}

	if in.Mn == isa.MSYSCALL && c.Regs.ReadGP(2) == 10 {
		c.halted = true
		return StepResult{Halted: true, PC: pc}
	}
	return StepResult{PC: pc}
}

// execResult augments StepResult with the control-transfer target this
// instruction wants to take, if any; nil means fall through to pc+4.
type execResult struct {
	StepResult
	nextPC *uint32
}

func (c *SingleCycleCore) execute(pc uint32, in isa.Instruction) execResult {
	rsVal := c.Regs.ReadGP(in.RS)
	rtVal := c.Regs.ReadGP(in.RT)
	hi, lo := c.Regs.ReadHI(), c.Regs.ReadLO()

	switch {
	case in.IsLoad():
		addr := rsVal + uint32(in.ImmSExt)
		width := widthOf(in.Mn)
		v, err := c.DMem.Read(addr, width)
		if err != nil {
			return execResult{StepResult: StepResult{Trap: addrTrap(err, pc, addr, false)}}
		}
		c.Regs.WriteGP(in.RT, signExtendLoad(in.Mn, v))
		return execResult{}

	case in.IsStore():
		addr := rsVal + uint32(in.ImmSExt)
		width := widthOf(in.Mn)
		if err := c.DMem.Write(addr, width, rtVal); err != nil {
			return execResult{StepResult: StepResult{Trap: addrTrap(err, pc, addr, true)}}
		}
		return execResult{}

	case in.Mn == isa.MJ:
		target := isa.JumpTarget(in, pc)
		return execResult{nextPC: &target}
	case in.Mn == isa.MJAL:
		c.Regs.WriteGP(31, pc+4)
		target := isa.JumpTarget(in, pc)
		return execResult{nextPC: &target}
	case in.Mn == isa.MJR:
		target := rsVal
		return execResult{nextPC: &target}
	case in.Mn == isa.MJALR:
		c.Regs.WriteGP(in.RD, pc+4)
		target := rsVal
		return execResult{nextPC: &target}

	case in.IsBranch():
		taken, link := branchTaken(in, rsVal, rtVal)
		if link {
			c.Regs.WriteGP(31, pc+4)
		}
		if taken {
			target := isa.BranchTarget(in, pc)
			return execResult{nextPC: &target}
		}
		return execResult{}

	case in.Mn == isa.MSYSCALL:
		return execResult{}
	case in.Mn == isa.MBREAK:
		return execResult{StepResult: StepResult{Trap: trap.New(trap.UnsupportedALU, pc, "BREAK")}}

	case in.Mn == isa.MMFC0:
		c.Regs.WriteGP(in.RT, c.Regs.ReadCP0(in.RD))
		return execResult{}
	case in.Mn == isa.MMTC0:
		c.Regs.WriteCP0(in.RD, rtVal)
		return execResult{}

	default:
		res, newHI, newLO, writeHL, unsupported := execALU(in, rsVal, rtVal, hi, lo)
		if unsupported {
			return execResult{StepResult: StepResult{Trap: trap.New(trap.UnsupportedALU, pc, in.Mn.String())}}
		}
		if res.overflow {
			return execResult{StepResult: StepResult{Trap: trap.New(trap.Overflow, pc, in.Mn.String())}}
		}
		if writeHL {
			c.Regs.WriteHI(newHI)
			c.Regs.WriteLO(newLO)
		}
		if reg, ok := in.WritesGP(); ok && !writeHL {
			c.Regs.WriteGP(reg, res.value)
		}
		return execResult{}
	}
}

func widthOf(m isa.Mnemonic) device.Width {
	switch m {
	case isa.MLB, isa.MLBU, isa.MSB:
		return device.WidthByte
	case isa.MLH, isa.MLHU, isa.MSH:
		return device.WidthHalf
	default:
		return device.WidthWord
	}
}

func signExtendLoad(m isa.Mnemonic, v uint32) uint32 {
	switch m {
	case isa.MLB:
		return uint32(int32(int8(v)))
	case isa.MLH:
		return uint32(int32(int16(v)))
	default:
		return v
	}
}

func branchTaken(in isa.Instruction, rsVal, rtVal uint32) (taken, link bool) {
	switch in.Mn {
	case isa.MBEQ:
		return rsVal == rtVal, false
	case isa.MBNE:
		return rsVal != rtVal, false
	case isa.MBLEZ:
		return int32(rsVal) <= 0, false
	case isa.MBGTZ:
		return int32(rsVal) > 0, false
	case isa.MBLTZ:
		return int32(rsVal) < 0, false
	case isa.MBGEZ:
		return int32(rsVal) >= 0, false
	case isa.MBLTZAL:
		return int32(rsVal) < 0, true
	case isa.MBGEZAL:
		return int32(rsVal) >= 0, true
	default:
		return false, false
	}
}

func addrTrap(err error, pc, addr uint32, store bool) *trap.Trap {
	if af, ok := asAccessFault(err); ok {
		kind := trap.UnalignedAccess
		if af.Unmapped {
			kind = trap.BusError
		}
		return trap.NewAddr(kind, pc, addr, store, err.Error())
	}
	return trap.New(trap.BusError, pc, err.Error())
}
