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

// Package trace prints one line per enabled channel as the machine
// executes: register writes as they commit, and the instruction that
// retired on the most recent Step. Grounded on the teacher's slog-based
// CPU logging (one Debug call per notable event, gated by whether that
// event's channel is of interest) generalized to a small fixed channel
// set instead of slog's leveled logging.
package trace

import (
	"fmt"
	"io"

	"github.com/mipssim/mips32/internal/core"
	"github.com/mipssim/mips32/internal/cpu"
	"github.com/mipssim/mips32/internal/device"
	"github.com/mipssim/mips32/internal/isa"
	"github.com/mipssim/mips32/internal/memory"
)

// Channel names one of the --trace-* switches spec §6 lists.
type Channel string

const (
	ChannelFetch  Channel = "fetch"
	ChannelDecode Channel = "decode"
	ChannelExec   Channel = "exec"
	ChannelMem    Channel = "mem"
	ChannelRegs   Channel = "regs"
)

// Tracer prints trace lines to Out for every channel enabled at
// construction. The core package exposes no per-stage commit hook, so
// fetch/decode/exec/mem all report the same retired-instruction line;
// only regs carries genuinely distinct information, sourced from
// cpu.RegFile's own change notifications.
type Tracer struct {
	out      io.Writer
	channels map[Channel]bool
}

// New creates a Tracer that prints to out for each channel named.
// Unknown channel names are ignored rather than rejected, since the
// caller is expected to have validated them against the CLI flag set
// already.
func New(out io.Writer, channels []string) *Tracer {
	t := &Tracer{out: out, channels: make(map[Channel]bool)}
	for _, c := range channels {
		t.channels[Channel(c)] = true
	}
	return t
}

func (t *Tracer) enabled(c Channel) bool { return t.channels[c] }

// Attach subscribes the tracer to regs, if that channel is enabled.
// Call once per Tracer against the machine's register file.
func (t *Tracer) Attach(regs *cpu.RegFile) {
	if !t.enabled(ChannelRegs) {
		return
	}
	regs.Subscribe(func(c cpu.Change) {
		switch c.Kind {
		case cpu.RegGP:
			fmt.Fprintf(t.out, "regs: $%d 0x%08x -> 0x%08x\n", c.Index, c.Old, c.New)
		case cpu.RegPC:
			fmt.Fprintf(t.out, "regs: pc 0x%08x -> 0x%08x\n", c.Old, c.New)
		case cpu.RegHI:
			fmt.Fprintf(t.out, "regs: hi 0x%08x -> 0x%08x\n", c.Old, c.New)
		case cpu.RegLO:
			fmt.Fprintf(t.out, "regs: lo 0x%08x -> 0x%08x\n", c.Old, c.New)
		case cpu.RegCP0:
			fmt.Fprintf(t.out, "regs: cp0[%d] 0x%08x -> 0x%08x\n", c.Index, c.Old, c.New)
		}
	})
}

// AfterStep reports the instruction that just retired at res.PC on every
// enabled instruction-level channel. Call once per Machine.Step.
func (t *Tracer) AfterStep(space *memory.AddressSpace, res core.StepResult) {
	if !t.enabled(ChannelFetch) && !t.enabled(ChannelDecode) && !t.enabled(ChannelExec) && !t.enabled(ChannelMem) {
		return
	}
	word, err := space.Read(res.PC, device.WidthWord, device.SourceDebugger)
	if err != nil {
		return
	}
	in, err := isa.Decode(word)
	if err != nil {
		fmt.Fprintf(t.out, "0x%08x: <invalid 0x%08x>\n", res.PC, word)
		return
	}
	fmt.Fprintf(t.out, "0x%08x: %s\n", res.PC, isa.Disassemble(in, res.PC))
}
