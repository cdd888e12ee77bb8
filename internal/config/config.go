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

// Package config parses the machine's line-oriented configuration file
// format: `# comment` lines, blank lines, and `key value` /
// `key value,value,...` lines, each dispatched through a registry of
// option handlers. Adapted from the teacher's config/configparser
// (Option/registry idiom, one handler per model keyword) to a flat
// key-value format describing a single machine.Config instead of a set
// of addressable devices.
package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mipssim/mips32/internal/cache"
	"github.com/mipssim/mips32/internal/core"
	"github.com/mipssim/mips32/internal/machine"
)

// handler applies one config line's value to p. Registered by key in
// init(), mirroring the teacher's RegisterModel/RegisterOption calls.
type handler func(p *parser, value string) error

var handlers = map[string]handler{}

func register(key string, h handler) {
	handlers[strings.ToUpper(key)] = h
}

func init() {
	register("pipeline", func(p *parser, v string) error { return p.setBool(&p.cfg.Pipelined, v) })
	register("delay_slot", func(p *parser, v string) error { return p.setBool(&p.cfg.DelaySlot, v) })
	register("hazard_unit", func(p *parser, v string) error { return p.setHazard(v) })
	register("icache", func(p *parser, v string) error {
		c, err := ParseCacheSpec(v)
		if err != nil {
			return err
		}
		p.icache = c
		return nil
	})
	register("dcache", func(p *parser, v string) error {
		c, err := ParseCacheSpec(v)
		if err != nil {
			return err
		}
		p.dcache = c
		return nil
	})
	register("read_time", func(p *parser, v string) error { return p.setUint(&p.readTime, v) })
	register("write_time", func(p *parser, v string) error { return p.setUint(&p.writeTime, v) })
	register("burst_time", func(p *parser, v string) error { return p.setUint(&p.burstTime, v) })
	register("reset_at_assembly", func(p *parser, v string) error { return p.setBool(&p.cfg.ResetAtAssembly, v) })
	register("osemu", func(p *parser, v string) error { return p.setBool(&p.cfg.OSEmuEnable, v) })
	register("ram_size", func(p *parser, v string) error { return p.setAddr(&p.cfg.RAMSize, v) })
	register("entry_pc", func(p *parser, v string) error { return p.setAddr(&p.cfg.EntryPC, v) })
	register("serial_base", func(p *parser, v string) error { return p.setAddr(&p.cfg.SerialBase, v) })
	register("lcd_base", func(p *parser, v string) error { return p.setAddr(&p.cfg.LCDBase, v) })
	register("lcd_rows", func(p *parser, v string) error { return p.setInt(&p.cfg.LCDRows, v) })
	register("lcd_cols", func(p *parser, v string) error { return p.setInt(&p.cfg.LCDCols, v) })
	register("dial_base", func(p *parser, v string) error { return p.setAddr(&p.cfg.DialBase, v) })
	register("timer_base", func(p *parser, v string) error { return p.setAddr(&p.cfg.TimerBase, v) })
}

type parser struct {
	cfg machine.Config

	icache, dcache             *cache.Config
	readTime, writeTime, burstTime uint64
}

// Parse reads a configuration file and returns the machine.Config it
// describes. Every field not mentioned in r keeps its Go zero value,
// except RAMSize, which callers must still validate before New.
func Parse(r io.Reader) (machine.Config, error) {
	p := &parser{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		key := fields[0]
		value := ""
		if len(fields) == 2 {
			value = strings.TrimSpace(fields[1])
		}
		h, ok := handlers[strings.ToUpper(key)]
		if !ok {
			return machine.Config{}, fmt.Errorf("config:%d: unknown option %q", lineNo, key)
		}
		if err := h(p, value); err != nil {
			return machine.Config{}, fmt.Errorf("config:%d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return machine.Config{}, err
	}

	p.applyTiming(p.icache)
	p.applyTiming(p.dcache)
	p.cfg.ICache = p.icache
	p.cfg.DCache = p.dcache
	return p.cfg, nil
}

func (p *parser) applyTiming(c *cache.Config) {
	if c == nil {
		return
	}
	if p.readTime != 0 {
		c.ReadTime = p.readTime
	}
	if p.writeTime != 0 {
		c.WriteTime = p.writeTime
	}
	if p.burstTime != 0 {
		c.BurstTime = p.burstTime
	}
}

func (p *parser) setBool(dst *bool, v string) error {
	switch strings.ToLower(v) {
	case "on", "true", "1", "yes":
		*dst = true
	case "off", "false", "0", "no":
		*dst = false
	default:
		return fmt.Errorf("expected on/off, got %q", v)
	}
	return nil
}

func (p *parser) setHazard(v string) error {
	switch strings.ToLower(v) {
	case "none":
		p.cfg.Hazard = core.HazardNone
	case "stall":
		p.cfg.Hazard = core.HazardStall
	case "forward":
		p.cfg.Hazard = core.HazardForward
	default:
		return fmt.Errorf("expected none/stall/forward, got %q", v)
	}
	return nil
}

func (p *parser) setUint(dst *uint64, v string) error {
	n, err := strconv.ParseUint(v, 0, 64)
	if err != nil {
		return fmt.Errorf("expected a number, got %q", v)
	}
	*dst = n
	return nil
}

func (p *parser) setInt(dst *int, v string) error {
	n, err := strconv.ParseInt(v, 0, 32)
	if err != nil {
		return fmt.Errorf("expected a number, got %q", v)
	}
	*dst = int(n)
	return nil
}

func (p *parser) setAddr(dst *uint32, v string) error {
	n, err := strconv.ParseUint(v, 0, 32)
	if err != nil {
		return fmt.Errorf("expected an address, got %q", v)
	}
	*dst = uint32(n)
	return nil
}

// ParseCacheSpec parses `POLICY,SETS,WORDS,ASSOC[,WRITE]` into a
// *cache.Config. Exported so cmd/mipssim's `--i-cache`/`--d-cache` flags
// can share this grammar with the config file's `icache`/`dcache` lines.
func ParseCacheSpec(v string) (*cache.Config, error) {
	parts := strings.Split(v, ",")
	if len(parts) < 4 {
		return nil, fmt.Errorf("cache spec %q needs POLICY,SETS,WORDS,ASSOC[,WRITE]", v)
	}
	var cfg cache.Config
	switch strings.ToUpper(parts[0]) {
	case "RAND":
		cfg.Replacement = cache.ReplRAND
	case "LRU":
		cfg.Replacement = cache.ReplLRU
	case "LFU":
		cfg.Replacement = cache.ReplLFU
	default:
		return nil, fmt.Errorf("unknown replacement policy %q", parts[0])
	}
	var err error
	if cfg.Sets, err = strconv.Atoi(parts[1]); err != nil {
		return nil, fmt.Errorf("bad SETS %q", parts[1])
	}
	if cfg.Words, err = strconv.Atoi(parts[2]); err != nil {
		return nil, fmt.Errorf("bad WORDS %q", parts[2])
	}
	if cfg.Assoc, err = strconv.Atoi(parts[3]); err != nil {
		return nil, fmt.Errorf("bad ASSOC %q", parts[3])
	}
	cfg.WritePolicy = cache.WriteBack
	if len(parts) == 5 {
		switch strings.ToUpper(parts[4]) {
		case "WB":
			cfg.WritePolicy = cache.WriteBack
		case "WT":
			cfg.WritePolicy = cache.WriteThroughNoAlloc
		case "WTA":
			cfg.WritePolicy = cache.WriteThroughAlloc
		default:
			return nil, fmt.Errorf("unknown write policy %q", parts[4])
		}
	}
	return &cfg, nil
}
