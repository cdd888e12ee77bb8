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

// Package console is the interactive debugger REPL: a github.com/peterh/liner
// line editor with tab completion dispatching a small command grammar
// against a running machine.Machine. Grounded on the teacher's
// command/reader (the liner loop itself) and command/parser (the
// cmdLine tokenizer and prefix-matched command table), simplified from
// the teacher's device-attach/set/show grammar to the register/memory/
// breakpoint grammar spec §9.4 calls for.
package console

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/peterh/liner"

	"github.com/mipssim/mips32/internal/device"
	"github.com/mipssim/mips32/internal/machine"
	"github.com/mipssim/mips32/internal/trace"
)

// cmdLine tokenizes one input line left to right, the same cursor-based
// shape as the teacher's parser.cmdLine.
type cmdLine struct {
	line string
	pos  int
}

func (l *cmdLine) skipSpace() {
	for l.pos < len(l.line) && unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
}

func (l *cmdLine) isEOL() bool { return l.pos >= len(l.line) }

func (l *cmdLine) getCurrent() byte {
	if l.isEOL() {
		return 0
	}
	b := l.line[l.pos]
	l.pos++
	return b
}

// getWord returns the next run of non-space characters, lower-cased.
func (l *cmdLine) getWord() string {
	l.skipSpace()
	start := l.pos
	for !l.isEOL() && !unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
	return strings.ToLower(l.line[start:l.pos])
}

// getHex parses a 0x-prefixed or bare hexadecimal address, stopping at
// the first character that isn't a hex digit rather than at whitespace,
// so a caller can immediately follow it with a separator like ',' or '='.
func (l *cmdLine) getHex() (uint32, error) {
	l.skipSpace()
	if !l.isEOL() && l.line[l.pos] == '0' && l.pos+1 < len(l.line) && (l.line[l.pos+1] == 'x' || l.line[l.pos+1] == 'X') {
		l.pos += 2
	}
	start := l.pos
	var v uint32
	for !l.isEOL() {
		lower := l.line[l.pos] | 0x20 // fold ASCII letters to lower case.
		d := strings.IndexByte("0123456789abcdef", lower)
		if d < 0 {
			break
		}
		v = v<<4 | uint32(d)
		l.pos++
	}
	if l.pos == start {
		return 0, errors.New("expected a hexadecimal address")
	}
	return v, nil
}

// getUint parses a run of decimal digits, stopping at the first
// non-digit character.
func (l *cmdLine) getUint() (uint32, error) {
	l.skipSpace()
	start := l.pos
	var v uint32
	for !l.isEOL() && l.line[l.pos] >= '0' && l.line[l.pos] <= '9' {
		v = v*10 + uint32(l.line[l.pos]-'0')
		l.pos++
	}
	if l.pos == start {
		return 0, errors.New("expected a number")
	}
	return v, nil
}

type cmd struct {
	Name    string
	Min     int
	Process func(c *Console, line *cmdLine) (bool, error)
}

var cmdList = []cmd{
	{Name: "step", Min: 1, Process: (*Console).cmdStep},
	{Name: "run", Min: 1, Process: (*Console).cmdRun},
	{Name: "break", Min: 2, Process: (*Console).cmdBreak},
	{Name: "clear", Min: 2, Process: (*Console).cmdClearBreak},
	{Name: "dump", Min: 1, Process: (*Console).cmdDump},
	{Name: "examine", Min: 1, Process: (*Console).cmdExamine},
	{Name: "deposit", Min: 1, Process: (*Console).cmdDeposit},
	{Name: "trace", Min: 1, Process: (*Console).cmdTrace},
	{Name: "quit", Min: 1, Process: (*Console).cmdQuit},
}

func matchCommand(m cmd, name string) bool {
	if len(name) > len(m.Name) {
		return false
	}
	if !strings.HasPrefix(m.Name, name) {
		return false
	}
	return len(name) >= m.Min
}

func matchList(name string) []cmd {
	if name == "" {
		return nil
	}
	var out []cmd
	for _, m := range cmdList {
		if matchCommand(m, name) {
			out = append(out, m)
		}
	}
	return out
}

// Console drives one interactive debugger session against a machine.
type Console struct {
	M           *machine.Machine
	Out         io.Writer
	Tracer      *trace.Tracer
	breakpoints map[uint32]bool
}

// New creates a console for m, printing command output to out.
func New(m *machine.Machine, out io.Writer) *Console {
	return &Console{M: m, Out: out, breakpoints: make(map[uint32]bool)}
}

// ProcessCommand executes one command line. It returns quit=true when the
// session should end.
func (c *Console) ProcessCommand(commandLine string) (bool, error) {
	line := &cmdLine{line: commandLine}
	name := line.getWord()
	if name == "" {
		return false, nil
	}

	match := matchList(name)
	switch len(match) {
	case 0:
		return false, fmt.Errorf("command not found: %s", name)
	case 1:
		return match[0].Process(c, line)
	default:
		return false, fmt.Errorf("ambiguous command: %s", name)
	}
}

// CompleteCmd is the liner tab-completion callback: it completes only
// command names, since this console has no attachable devices to
// complete arguments against.
func CompleteCmd(commandLine string) []string {
	line := &cmdLine{line: commandLine}
	name := line.getWord()
	var out []string
	for _, m := range cmdList {
		if strings.HasPrefix(m.Name, name) {
			out = append(out, m.Name)
		}
	}
	return out
}

// Run starts the liner-backed REPL loop against c.M until quit or EOF.
// Grounded on the teacher's command/reader.ConsoleReader.
func (c *Console) Run() {
	ln := liner.NewLiner()
	defer ln.Close()

	ln.SetCtrlCAborts(true)
	ln.SetCompleter(func(line string) []string { return CompleteCmd(line) })

	for {
		input, err := ln.Prompt("mipssim> ")
		if err == nil {
			ln.AppendHistory(input)
			quit, cerr := c.ProcessCommand(input)
			if cerr != nil {
				fmt.Fprintln(c.Out, "error: "+cerr.Error())
			}
			if quit {
				return
			}
			continue
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return
		}
		fmt.Fprintln(c.Out, "error reading line: "+err.Error())
		return
	}
}

func (c *Console) cmdStep(_ *cmdLine) (bool, error) {
	res := c.M.Step()
	if c.Tracer != nil {
		c.Tracer.AfterStep(c.M.Space, res)
	}
	fmt.Fprintf(c.Out, "pc=0x%08x halted=%v\n", res.PC, c.M.Halted())
	return false, nil
}

func (c *Console) cmdRun(line *cmdLine) (bool, error) {
	var budget uint64
	if !line.isEOL() {
		n, err := line.getUint()
		if err != nil {
			return false, err
		}
		budget = uint64(n)
	}
	var ran uint64
	for {
		if c.M.Halted() {
			break
		}
		if budget != 0 && ran >= budget {
			break
		}
		res := c.M.Step()
		ran++
		if c.Tracer != nil {
			c.Tracer.AfterStep(c.M.Space, res)
		}
		if res.Trap != nil {
			fmt.Fprintf(c.Out, "trap at pc=0x%08x\n", res.PC)
			break
		}
		if c.breakpoints[c.M.Regs.ReadPC()] {
			fmt.Fprintf(c.Out, "breakpoint hit at pc=0x%08x\n", c.M.Regs.ReadPC())
			break
		}
	}
	fmt.Fprintf(c.Out, "ran %d cycles, halted=%v\n", ran, c.M.Halted())
	return false, nil
}

func (c *Console) cmdBreak(line *cmdLine) (bool, error) {
	addr, err := line.getHex()
	if err != nil {
		return false, err
	}
	c.breakpoints[addr] = true
	fmt.Fprintf(c.Out, "breakpoint set at 0x%08x\n", addr)
	return false, nil
}

func (c *Console) cmdClearBreak(line *cmdLine) (bool, error) {
	addr, err := line.getHex()
	if err != nil {
		return false, err
	}
	delete(c.breakpoints, addr)
	return false, nil
}

func (c *Console) cmdDump(line *cmdLine) (bool, error) {
	what := line.getWord()
	switch what {
	case "regs":
		for i := uint8(0); i < 32; i++ {
			fmt.Fprintf(c.Out, "$%-2d=0x%08x", i, c.M.Regs.ReadGP(i))
			if i%4 == 3 {
				fmt.Fprintln(c.Out)
			} else {
				fmt.Fprint(c.Out, "  ")
			}
		}
		fmt.Fprintf(c.Out, "pc=0x%08x hi=0x%08x lo=0x%08x\n", c.M.Regs.ReadPC(), c.M.Regs.ReadHI(), c.M.Regs.ReadLO())
		return false, nil
	case "mem":
		start, err := line.getHex()
		if err != nil {
			return false, err
		}
		if line.getCurrent() != ',' {
			return false, errors.New("dump mem requires START,LEN")
		}
		length, err := line.getUint()
		if err != nil {
			return false, err
		}
		for i := uint32(0); i < length; i += 4 {
			v, err := c.M.Space.Read(start+i, device.WidthWord, device.SourceDebugger)
			if err != nil {
				return false, err
			}
			fmt.Fprintf(c.Out, "0x%08x: 0x%08x\n", start+i, v)
		}
		return false, nil
	default:
		return false, fmt.Errorf("unknown dump target: %s", what)
	}
}

func (c *Console) cmdExamine(line *cmdLine) (bool, error) {
	addr, err := line.getHex()
	if err != nil {
		return false, err
	}
	v, err := c.M.Space.Read(addr, device.WidthWord, device.SourceDebugger)
	if err != nil {
		return false, err
	}
	fmt.Fprintf(c.Out, "0x%08x: 0x%08x\n", addr, v)
	return false, nil
}

func (c *Console) cmdDeposit(line *cmdLine) (bool, error) {
	addr, err := line.getHex()
	if err != nil {
		return false, err
	}
	sep := line.getCurrent()
	if sep != ' ' && sep != '=' {
		return false, errors.New("deposit requires ADDR VALUE")
	}
	value, err := line.getHex()
	if err != nil {
		return false, err
	}
	if err := c.M.Space.Write(addr, device.WidthWord, value, device.SourceDebugger); err != nil {
		return false, err
	}
	return false, nil
}

func (c *Console) cmdTrace(line *cmdLine) (bool, error) {
	channel := line.getWord()
	if c.Tracer == nil {
		return false, errors.New("no tracer attached to this console")
	}
	fmt.Fprintf(c.Out, "trace channel %q managed by --trace-* flags at startup\n", channel)
	return false, nil
}

func (c *Console) cmdQuit(_ *cmdLine) (bool, error) {
	return true, nil
}
