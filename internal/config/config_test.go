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

package config

import (
	"strings"
	"testing"

	"github.com/mipssim/mips32/internal/cache"
	"github.com/mipssim/mips32/internal/core"
)

func TestParseBasics(t *testing.T) {
	src := "" +
		"# a sample machine configuration\n" +
		"pipeline on\n" +
		"delay_slot off\n" +
		"hazard_unit forward\n" +
		"ram_size 0x10000\n" +
		"entry_pc 0x400\n" +
		"\n" +
		"serial_base 0x20000000\n"

	cfg, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.Pipelined {
		t.Fatalf("Pipelined = false, want true")
	}
	if cfg.DelaySlot {
		t.Fatalf("DelaySlot = true, want false")
	}
	if cfg.Hazard != core.HazardForward {
		t.Fatalf("Hazard = %v, want HazardForward", cfg.Hazard)
	}
	if cfg.RAMSize != 0x10000 {
		t.Fatalf("RAMSize = 0x%x, want 0x10000", cfg.RAMSize)
	}
	if cfg.EntryPC != 0x400 {
		t.Fatalf("EntryPC = 0x%x, want 0x400", cfg.EntryPC)
	}
	if cfg.SerialBase != 0x20000000 {
		t.Fatalf("SerialBase = 0x%x, want 0x20000000", cfg.SerialBase)
	}
}

func TestParseCacheSpec(t *testing.T) {
	src := "" +
		"icache LRU,64,4,2\n" +
		"dcache RAND,32,4,1,WT\n" +
		"read_time 10\n" +
		"write_time 12\n" +
		"burst_time 2\n"

	cfg, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.ICache == nil {
		t.Fatalf("ICache = nil, want a config")
	}
	if cfg.ICache.Replacement != cache.ReplLRU || cfg.ICache.Sets != 64 || cfg.ICache.Words != 4 || cfg.ICache.Assoc != 2 {
		t.Fatalf("icache = %+v", cfg.ICache)
	}
	if cfg.ICache.ReadTime != 10 || cfg.ICache.WriteTime != 12 || cfg.ICache.BurstTime != 2 {
		t.Fatalf("icache timing = %+v", cfg.ICache)
	}
	if cfg.DCache == nil || cfg.DCache.WritePolicy != cache.WriteThroughNoAlloc {
		t.Fatalf("dcache = %+v", cfg.DCache)
	}
}

func TestParseUnknownOption(t *testing.T) {
	_, err := Parse(strings.NewReader("bogus_option 1\n"))
	if err == nil {
		t.Fatalf("expected an error for an unknown option")
	}
}

func TestParseBadBool(t *testing.T) {
	_, err := Parse(strings.NewReader("pipeline maybe\n"))
	if err == nil {
		t.Fatalf("expected an error for a non on/off value")
	}
}

func TestParseBadCacheSpec(t *testing.T) {
	_, err := Parse(strings.NewReader("icache LRU,64\n"))
	if err == nil {
		t.Fatalf("expected an error for a truncated cache spec")
	}
}
