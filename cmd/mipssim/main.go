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

package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	getopt "github.com/pborman/getopt/v2"

	"github.com/mipssim/mips32/internal/assemble"
	"github.com/mipssim/mips32/internal/cache"
	"github.com/mipssim/mips32/internal/config"
	"github.com/mipssim/mips32/internal/console"
	"github.com/mipssim/mips32/internal/core"
	"github.com/mipssim/mips32/internal/device"
	"github.com/mipssim/mips32/internal/machine"
	"github.com/mipssim/mips32/internal/reporter"
	"github.com/mipssim/mips32/internal/trace"
	logger "github.com/mipssim/mips32/internal/util/logger"
)

// errELFNotImplemented documents the ELF loading path's contract without
// pulling in a real ELF parser: spec §1/§7 name ELF loading out of scope.
var errELFNotImplemented = errors.New("mipssim: ELF loading is out of scope; pass --asm to assemble the input as MIPS source")

func main() {
	os.Exit(run())
}

func run() int {
	optConfigFile := getopt.StringLong("config", 'c', "", "Machine configuration file")
	optAsm := getopt.BoolLong("asm", 'a', "Treat the input file as MIPS assembly source")
	optPipelined := getopt.BoolLong("pipelined", 'p', "Use the five-stage pipelined core")
	optNoDelaySlot := getopt.BoolLong("no-delay-slot", 0, "Disable branch delay slots (single-cycle core only)")
	optHazard := getopt.StringLong("hazard-unit", 0, "forward", "none, stall, or forward")
	optInteractive := getopt.BoolLong("interactive", 'i', "Start the interactive debugger console")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Log debug to console")
	optHelp := getopt.BoolLong("help", 'h', "Help")

	optTraceFetch := getopt.BoolLong("trace-fetch", 0, "Trace fetched instructions")
	optTraceDecode := getopt.BoolLong("trace-decode", 0, "Trace decoded instructions")
	optTraceExecute := getopt.BoolLong("trace-execute", 0, "Trace executed instructions")
	optTraceMemory := getopt.BoolLong("trace-memory", 0, "Trace memory accesses")
	optTraceWriteback := getopt.BoolLong("trace-writeback", 0, "Trace writeback commits")
	optTracePC := getopt.BoolLong("trace-pc", 0, "Trace the program counter")
	optTraceHi := getopt.BoolLong("trace-hi", 0, "Trace the HI register")
	optTraceLo := getopt.BoolLong("trace-lo", 0, "Trace the LO register")
	optTraceGP := getopt.BoolLong("trace-gp", 0, "Trace general-purpose register writes")

	optDumpRegisters := getopt.BoolLong("dump-registers", 0, "Print all registers after the run")
	optDumpCacheStats := getopt.BoolLong("dump-cache-stats", 0, "Print cache statistics after the run")
	optDumpCycles := getopt.BoolLong("dump-cycles", 0, "Print pipeline hazard/cycle counters after the run")
	optDumpRange := getopt.StringLong("dump-range", 0, "", "START,LENGTH,FNAME: hex-dump memory after the run")
	optLoadRange := getopt.StringLong("load-range", 0, "", "START,FNAME: load words into memory before the run")

	optExpectFail := getopt.BoolLong("expect-fail", 0, "Exit 0 only if the run traps")
	optFailMatch := getopt.StringLong("fail-match", 0, "", "Trap letters (I,A,O,J) --expect-fail must match")

	optICache := getopt.StringLong("i-cache", 0, "", "POLICY,SETS,WORDS,ASSOC[,WRITE] instruction cache")
	optDCache := getopt.StringLong("d-cache", 0, "", "POLICY,SETS,WORDS,ASSOC[,WRITE] data cache")
	optReadTime := getopt.StringLong("read-time", 0, "", "Memory read burst start latency, in cycles")
	optWriteTime := getopt.StringLong("write-time", 0, "", "Memory write burst start latency, in cycles")
	optBurstTime := getopt.StringLong("burst-time", 0, "", "Additional per-word burst latency, in cycles")

	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		return 0
	}

	args := getopt.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "mipssim: exactly one input file is required")
		return 1
	}
	inputPath := args[0]

	var logFile *os.File
	if *optLogFile != "" {
		var err error
		logFile, err = os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "mipssim: "+err.Error())
			return 1
		}
	}
	level := new(slog.LevelVar)
	level.Set(slog.LevelDebug)
	log := slog.New(logger.NewHandler(logFile, &slog.HandlerOptions{Level: level, AddSource: false}, optDebug))
	slog.SetDefault(log)

	cfg := machine.Config{RAMSize: 1 << 20, Pipelined: *optPipelined, DelaySlot: !*optNoDelaySlot}
	if *optConfigFile != "" {
		parsed, err := loadConfigFile(*optConfigFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "mipssim: "+err.Error())
			return 1
		}
		if parsed.RAMSize == 0 {
			parsed.RAMSize = cfg.RAMSize
		}
		parsed.Pipelined = parsed.Pipelined || *optPipelined
		if *optNoDelaySlot {
			parsed.DelaySlot = false
		}
		cfg = parsed
	}

	if err := applyHazard(&cfg, *optHazard); err != nil {
		fmt.Fprintln(os.Stderr, "mipssim: "+err.Error())
		return 1
	}
	if *optICache != "" {
		c, err := config.ParseCacheSpec(*optICache)
		if err != nil {
			fmt.Fprintln(os.Stderr, "mipssim: "+err.Error())
			return 1
		}
		cfg.ICache = c
	}
	if *optDCache != "" {
		c, err := config.ParseCacheSpec(*optDCache)
		if err != nil {
			fmt.Fprintln(os.Stderr, "mipssim: "+err.Error())
			return 1
		}
		cfg.DCache = c
	}
	applyTiming(cfg.ICache, *optReadTime, *optWriteTime, *optBurstTime)
	applyTiming(cfg.DCache, *optReadTime, *optWriteTime, *optBurstTime)

	m, err := machine.New(cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mipssim: "+err.Error())
		return 1
	}

	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mipssim: "+err.Error())
		return 1
	}

	var syms *assemble.SymbolTable
	if *optAsm {
		a := assemble.New(m.Space, 0, cfg.RAMSize/2, nil)
		a.Assemble(inputPath, string(source))
		ok, diags := a.Finish()
		if !ok {
			for _, d := range diags {
				fmt.Fprintln(os.Stderr, d.String())
			}
			return 1
		}
		syms = a.Symbols()
		if entry, found := syms.Lookup("main"); found {
			m.Regs.WritePC(entry)
		}
	} else {
		fmt.Fprintln(os.Stderr, "mipssim: "+errELFNotImplemented.Error())
		return 1
	}

	if *optLoadRange != "" {
		if err := loadRange(m, *optLoadRange, syms); err != nil {
			fmt.Fprintln(os.Stderr, "mipssim: "+err.Error())
			return 1
		}
	}

	channels := traceChannels(*optTraceFetch, *optTraceDecode, *optTraceExecute, *optTraceMemory,
		*optTraceWriteback, *optTracePC, *optTraceHi, *optTraceLo, *optTraceGP)
	tracer := trace.New(os.Stdout, channels)
	tracer.Attach(m.Regs)

	var trapKind byte
	var trapped bool

	if *optInteractive {
		con := console.New(m, os.Stdout)
		con.Tracer = tracer
		con.Run()
	} else {
		for {
			if m.Halted() {
				break
			}
			res := m.Step()
			tracer.AfterStep(m.Space, res)
			if res.Trap != nil {
				trapped = true
				trapKind = res.Trap.Kind.Letter()
				break
			}
		}
	}

	if *optDumpRegisters {
		dumpRegisters(m)
	}
	if *optDumpCacheStats {
		if m.ICache != nil {
			fmt.Print(reporter.CacheStats("icache", m.ICache.Stats()))
		}
		if m.DCache != nil {
			fmt.Print(reporter.CacheStats("dcache", m.DCache.Stats()))
		}
	}
	if *optDumpCycles {
		if stats, ok := m.PipelineStats(); ok {
			fmt.Print(reporter.PipelineStats(m.Cycles(), stats))
		} else {
			fmt.Printf("cycles=%d\n", m.Cycles())
		}
	}
	if *optDumpRange != "" {
		if err := dumpRange(m, *optDumpRange, syms); err != nil {
			fmt.Fprintln(os.Stderr, "mipssim: "+err.Error())
			return 1
		}
	}

	if *optExpectFail {
		if !trapped {
			fmt.Fprintln(os.Stderr, "mipssim: expected a trap but the run completed normally")
			return 1
		}
		if *optFailMatch != "" && !strings.ContainsRune(*optFailMatch, rune(trapKind)) {
			fmt.Fprintf(os.Stderr, "mipssim: trap %q did not match --fail-match %q\n", string(trapKind), *optFailMatch)
			return 1
		}
		return 0
	}
	if trapped {
		return 1
	}
	return 0
}

func applyHazard(cfg *machine.Config, v string) error {
	switch strings.ToLower(v) {
	case "", "forward":
		cfg.Hazard = core.HazardForward
	case "none":
		cfg.Hazard = core.HazardNone
	case "stall":
		cfg.Hazard = core.HazardStall
	default:
		return fmt.Errorf("--hazard-unit must be none, stall, or forward, got %q", v)
	}
	return nil
}

// applyTiming overrides a cache's read/write/burst latency from the
// --read-time/--write-time/--burst-time flags. c is nil when the
// corresponding cache was never configured; empty flag strings leave
// the cache spec's own timing untouched.
func applyTiming(c *cache.Config, readTime, writeTime, burstTime string) {
	if c == nil {
		return
	}
	if readTime != "" {
		if n, err := strconv.ParseUint(readTime, 0, 64); err == nil {
			c.ReadTime = n
		}
	}
	if writeTime != "" {
		if n, err := strconv.ParseUint(writeTime, 0, 64); err == nil {
			c.WriteTime = n
		}
	}
	if burstTime != "" {
		if n, err := strconv.ParseUint(burstTime, 0, 64); err == nil {
			c.BurstTime = n
		}
	}
}

func loadConfigFile(path string) (machine.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return machine.Config{}, err
	}
	defer f.Close()
	return config.Parse(f)
}

func loadRange(m *machine.Machine, spec string, syms *assemble.SymbolTable) error {
	parts := strings.SplitN(spec, ",", 2)
	if len(parts) != 2 {
		return fmt.Errorf("--load-range needs START,FNAME, got %q", spec)
	}
	start, err := resolveAddr(strings.TrimSpace(parts[0]), syms)
	if err != nil {
		return fmt.Errorf("--load-range START: %w", err)
	}
	start &^= 3 // round down to a word boundary.

	f, err := os.Open(strings.TrimSpace(parts[1]))
	if err != nil {
		return err
	}
	defer f.Close()

	addr := start
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseUint(line, 0, 32)
		if err != nil {
			return fmt.Errorf("--load-range: %q is not a number: %w", line, err)
		}
		if err := m.Space.Write(addr, device.WidthWord, uint32(v), device.SourcePeripheral); err != nil {
			return err
		}
		addr += 4
	}
	return scanner.Err()
}

func dumpRange(m *machine.Machine, spec string, syms *assemble.SymbolTable) error {
	parts := strings.SplitN(spec, ",", 3)
	if len(parts) != 3 {
		return fmt.Errorf("--dump-range needs START,LENGTH,FNAME, got %q", spec)
	}
	start, err := resolveAddr(strings.TrimSpace(parts[0]), syms)
	if err != nil {
		return fmt.Errorf("--dump-range START: %w", err)
	}
	length, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 0, 32)
	if err != nil {
		return fmt.Errorf("--dump-range LENGTH must be a number: %w", err)
	}

	f, err := os.Create(strings.TrimSpace(parts[2]))
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()
	for i := uint32(0); i < uint32(length); i += 4 {
		v, err := m.Space.Read(start+i, device.WidthWord, device.SourceDebugger)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "0x%08x: 0x%08x\n", start+i, v)
	}
	return nil
}

func resolveAddr(s string, syms *assemble.SymbolTable) (uint32, error) {
	if syms != nil {
		if v, ok := syms.Lookup(s); ok {
			return v, nil
		}
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%q is neither a known symbol nor a number", s)
	}
	return uint32(v), nil
}

func traceChannels(fetch, decode, exec, mem, writeback, pc, hi, lo, gp bool) []string {
	var out []string
	if fetch {
		out = append(out, string(trace.ChannelFetch))
	}
	if decode {
		out = append(out, string(trace.ChannelDecode))
	}
	if exec {
		out = append(out, string(trace.ChannelExec))
	}
	if mem {
		out = append(out, string(trace.ChannelMem))
	}
	if writeback || pc || hi || lo || gp {
		out = append(out, string(trace.ChannelRegs))
	}
	return out
}

func dumpRegisters(m *machine.Machine) {
	for i := uint8(0); i < 32; i++ {
		fmt.Printf("$%-2d=0x%08x", i, m.Regs.ReadGP(i))
		if i%4 == 3 {
			fmt.Println()
		} else {
			fmt.Print("  ")
		}
	}
	fmt.Printf("pc=0x%08x hi=0x%08x lo=0x%08x\n", m.Regs.ReadPC(), m.Regs.ReadHI(), m.Regs.ReadLO())
}
