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

// Package machine is the facade that owns every simulated component
// (registers, address space, caches, the chosen core, peripherals) and
// drives the single-threaded cooperative step/run loop spec §5 describes.
// Grounded on the teacher's emu/core.Core: the same struct-owns-
// everything shape, generalized from a goroutine+channel run loop to
// synchronous Step/Run calls, since this simulator's concurrency model
// has no independent device timing to race against.
package machine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/mipssim/mips32/internal/cache"
	"github.com/mipssim/mips32/internal/core"
	"github.com/mipssim/mips32/internal/cpu"
	"github.com/mipssim/mips32/internal/device"
	"github.com/mipssim/mips32/internal/memory"
	"github.com/mipssim/mips32/internal/periph"
	"github.com/mipssim/mips32/internal/trap"
)

// CauseIP2 is the CP0 Cause interrupt-pending bit this machine latches
// when the interval timer fires. No vectoring is modelled (spec §9
// explicitly leaves that out); software polls CP0 Cause itself, which is
// the osemu hook spec §6 alludes to.
const CauseIP2 = 1 << 10

// Config is the machine's full configuration surface, spec §6's
// Configuration record plus the physical layout the CLI/config file must
// also supply.
type Config struct {
	Pipelined        bool
	DelaySlot        bool
	Hazard           core.HazardUnit
	ICache           *cache.Config // nil disables the instruction cache.
	DCache           *cache.Config // nil disables the data cache.
	ResetAtAssembly  bool
	OSEmuEnable      bool

	RAMSize   uint32
	EntryPC   uint32
	HaltAddr  *uint32

	SerialBase uint32 // 0 disables the device.
	LCDBase    uint32
	LCDRows    int
	LCDCols    int
	DialBase   uint32
	TimerBase  uint32
}

// runnableCore is the shape both SingleCycleCore and PipelinedCore
// satisfy; Machine drives whichever one Config.Pipelined selected
// without otherwise caring which it has.
type runnableCore interface {
	Step() core.StepResult
	Halted() bool
}

// Machine owns every simulated component and drives it one cycle at a
// time. Construct with New; Step/Run advance it; Cancel interrupts a
// running Run from another goroutine (e.g. the interactive console).
type Machine struct {
	cfg Config

	Regs  *cpu.RegFile
	Space *memory.AddressSpace

	ICache *cache.Cache
	DCache *cache.Cache

	Serial *periph.Serial
	LCD    *periph.LCD
	Dial   *periph.Dial
	Timer  *periph.Timer

	core runnableCore

	cycles   uint64
	cancel   atomic.Bool
	log      *slog.Logger
}

// New builds a machine from cfg: RAM and every configured peripheral are
// mapped into one AddressSpace, caches are attached if configured, and
// the requested core (single-cycle or pipelined) is constructed pointed
// at EntryPC.
func New(cfg Config, log *slog.Logger) (*Machine, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.RAMSize == 0 {
		return nil, errors.New("machine: RAMSize must be non-zero")
	}

	ram := memory.NewRAM(cfg.RAMSize)
	space := memory.NewAddressSpace(ram, 0)
	regs := cpu.NewRegFile()
	regs.WritePC(cfg.EntryPC)

	m := &Machine{cfg: cfg, Regs: regs, Space: space, log: log}

	if cfg.SerialBase != 0 {
		m.Serial = periph.NewSerial()
		space.RegisterDevice(cfg.SerialBase, m.Serial)
	}
	if cfg.LCDBase != 0 {
		rows, cols := cfg.LCDRows, cfg.LCDCols
		if rows == 0 {
			rows = 2
		}
		if cols == 0 {
			cols = 16
		}
		m.LCD = periph.NewLCD(rows, cols)
		space.RegisterDevice(cfg.LCDBase, m.LCD)
	}
	if cfg.DialBase != 0 {
		m.Dial = periph.NewDial()
		space.RegisterDevice(cfg.DialBase, m.Dial)
	}
	if cfg.TimerBase != 0 {
		m.Timer = periph.NewTimer()
		space.RegisterDevice(cfg.TimerBase, m.Timer)
	}

	ifetch := &core.MemPort{Space: space, Src: device.SourceCPU}
	dmem := &core.MemPort{Space: space, Src: device.SourceCPU}

	if cfg.ICache != nil {
		m.ICache = cache.New(*cfg.ICache, ram, int64(cfg.RAMSize))
		ifetch.Cache = m.ICache
		space.Subscribe(m.ICache.Invalidate)
	}
	if cfg.DCache != nil {
		m.DCache = cache.New(*cfg.DCache, ram, int64(cfg.RAMSize)+1)
		dmem.Cache = m.DCache
	}

	if cfg.Pipelined {
		hasICache := cfg.ICache != nil
		m.core = core.NewPipelinedCore(regs, ifetch, dmem, cfg.Hazard, hasICache, cfg.HaltAddr)
	} else {
		m.core = core.NewSingleCycleCore(regs, ifetch, dmem, cfg.DelaySlot, cfg.HaltAddr)
	}

	return m, nil
}

// Cycles returns the number of cycles executed so far.
func (m *Machine) Cycles() uint64 { return m.cycles }

// PipelineStats returns the pipelined core's hazard counters. ok is false
// when the machine was built with a single-cycle core, which tracks no
// such counters.
func (m *Machine) PipelineStats() (stats core.PipelineStats, ok bool) {
	pc, ok := m.core.(*core.PipelinedCore)
	if !ok {
		return core.PipelineStats{}, false
	}
	return pc.Stats, true
}

// Halted reports whether the core has stopped.
func (m *Machine) Halted() bool { return m.core.Halted() }

// Cancel requests that a running Run loop stop before its next cycle.
// Safe to call from another goroutine; Run checks it between cycles only,
// per spec §5's cooperative cancellation model.
func (m *Machine) Cancel() { m.cancel.Store(true) }

// Step advances the machine by exactly one cycle: the core's own Step,
// then the timer's tick and CP0 Cause update if one is configured.
func (m *Machine) Step() core.StepResult {
	res := m.core.Step()
	m.cycles++
	if m.Timer != nil {
		m.Timer.Tick(1)
		if m.Timer.Fired() {
			m.Regs.WriteCP0(cpu.CP0Cause, m.Regs.ReadCP0(cpu.CP0Cause)|CauseIP2)
		}
	}
	if res.Trap != nil {
		m.log.Debug("trap", "kind", res.Trap.Kind, "pc", fmt.Sprintf("0x%08x", res.Trap.EPC))
		m.latchTrap(res.Trap)
	}
	return res
}

// latchTrap records a trap's EPC/Cause/BadVAddr into CP0, per spec §7's
// propagation rule.
func (m *Machine) latchTrap(t *trap.Trap) {
	m.Regs.WriteCP0(cpu.CP0EPC, t.EPC)
	m.Regs.WriteCP0(cpu.CP0Cause, (m.Regs.ReadCP0(cpu.CP0Cause)&^0x7c)|(t.Cause<<2))
	if t.BadVA != 0 {
		m.Regs.WriteCP0(cpu.CP0BadVAddr, t.BadVA)
	}
}

// Run repeats Step until halt, a trap, cancellation, or budget cycles
// have executed (0 means unbounded). It returns the last StepResult and
// the number of cycles this call actually ran.
func (m *Machine) Run(budget uint64) (core.StepResult, uint64) {
	m.cancel.Store(false)
	var last core.StepResult
	var ran uint64
	for {
		if m.Halted() {
			return last, ran
		}
		if budget != 0 && ran >= budget {
			return last, ran
		}
		if m.cancel.Load() {
			return last, ran
		}
		last = m.Step()
		ran++
		if last.Trap != nil {
			return last, ran
		}
	}
}
