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

package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mipssim/mips32/internal/core"
	"github.com/mipssim/mips32/internal/cpu"
	"github.com/mipssim/mips32/internal/device"
	"github.com/mipssim/mips32/internal/memory"
)

func TestRegsChannelPrintsOnWrite(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf, []string{"regs"})
	regs := cpu.NewRegFile()
	tr.Attach(regs)

	regs.WriteGP(1, 5)

	if !strings.Contains(buf.String(), "$1") {
		t.Fatalf("output = %q, want a $1 register line", buf.String())
	}
}

func TestRegsChannelDisabledIsSilent(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf, []string{"fetch"})
	regs := cpu.NewRegFile()
	tr.Attach(regs)

	regs.WriteGP(1, 5)

	if buf.Len() != 0 {
		t.Fatalf("output = %q, want nothing when regs is disabled", buf.String())
	}
}

func TestAfterStepPrintsDisassembly(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf, []string{"exec"})

	ram := memory.NewRAM(0x100)
	space := memory.NewAddressSpace(ram, 0)
	// ADDI $1, $0, 5
	word := uint32(0x20010005)
	if err := space.Write(0, device.WidthWord, word, device.SourceCPU); err != nil {
		t.Fatalf("write: %v", err)
	}

	tr.AfterStep(space, core.StepResult{PC: 0})

	if !strings.Contains(buf.String(), "0x00000000:") {
		t.Fatalf("output = %q, want a PC-prefixed line", buf.String())
	}
}

func TestAfterStepSilentWhenNoInstructionChannelEnabled(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf, []string{"regs"})
	ram := memory.NewRAM(0x100)
	space := memory.NewAddressSpace(ram, 0)

	tr.AfterStep(space, core.StepResult{PC: 0})

	if buf.Len() != 0 {
		t.Fatalf("output = %q, want nothing", buf.String())
	}
}
