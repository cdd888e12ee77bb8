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

package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mipssim/mips32/internal/assemble"
	"github.com/mipssim/mips32/internal/machine"
)

func newTestConsole(t *testing.T) (*Console, *bytes.Buffer) {
	t.Helper()
	m, err := machine.New(machine.Config{RAMSize: 0x4000}, nil)
	if err != nil {
		t.Fatalf("machine.New: %v", err)
	}
	a := assemble.New(m.Space, 0, 0x1000, nil)
	a.Assemble("prog.s", ""+
		"ADDI $1, $0, 5\n"+
		"ADDI $2, $0, 10\n"+
		"SYSCALL\n")
	if ok, diags := a.Finish(); !ok {
		t.Fatalf("assembly failed: %v", diags)
	}
	var buf bytes.Buffer
	return New(m, &buf), &buf
}

func TestStepAdvancesOneCycle(t *testing.T) {
	c, buf := newTestConsole(t)
	quit, err := c.ProcessCommand("step")
	if err != nil {
		t.Fatalf("ProcessCommand: %v", err)
	}
	if quit {
		t.Fatalf("step must not quit the console")
	}
	if !strings.Contains(buf.String(), "pc=") {
		t.Fatalf("output = %q, want a pc= line", buf.String())
	}
}

func TestRunHaltsOnSyscall(t *testing.T) {
	c, buf := newTestConsole(t)
	if _, err := c.ProcessCommand("run"); err != nil {
		t.Fatalf("ProcessCommand: %v", err)
	}
	if !c.M.Halted() {
		t.Fatalf("expected the machine to halt")
	}
	if !strings.Contains(buf.String(), "halted=true") {
		t.Fatalf("output = %q, want halted=true", buf.String())
	}
}

func TestExamineAndDeposit(t *testing.T) {
	c, buf := newTestConsole(t)
	if _, err := c.ProcessCommand("deposit 0x100 0xdeadbeef"); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	buf.Reset()
	if _, err := c.ProcessCommand("examine 0x100"); err != nil {
		t.Fatalf("examine: %v", err)
	}
	if !strings.Contains(buf.String(), "0xdeadbeef") {
		t.Fatalf("output = %q, want the deposited value", buf.String())
	}
}

func TestBreakpointStopsRun(t *testing.T) {
	c, _ := newTestConsole(t)
	if _, err := c.ProcessCommand("break 0x8"); err != nil {
		t.Fatalf("break: %v", err)
	}
	if _, err := c.ProcessCommand("run"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if c.M.Regs.ReadPC() != 0x8 {
		t.Fatalf("pc = 0x%x, want to stop at the breakpoint (0x8)", c.M.Regs.ReadPC())
	}
	if c.M.Halted() {
		t.Fatalf("the machine should have stopped at the breakpoint, not halted")
	}
}

func TestUnknownCommand(t *testing.T) {
	c, _ := newTestConsole(t)
	_, err := c.ProcessCommand("frobnicate")
	if err == nil {
		t.Fatalf("expected an error for an unknown command")
	}
}

func TestQuitCommand(t *testing.T) {
	c, _ := newTestConsole(t)
	quit, err := c.ProcessCommand("quit")
	if err != nil {
		t.Fatalf("ProcessCommand: %v", err)
	}
	if !quit {
		t.Fatalf("quit must report quit=true")
	}
}

func TestCompleteCmdPrefixes(t *testing.T) {
	got := CompleteCmd("br")
	if len(got) != 1 || got[0] != "break" {
		t.Fatalf("completions = %v, want [break]", got)
	}
}
