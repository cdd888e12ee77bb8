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

package reporter

import (
	"strings"
	"testing"

	"github.com/mipssim/mips32/internal/cache"
	"github.com/mipssim/mips32/internal/core"
)

func TestCacheStatsFormatsCounters(t *testing.T) {
	s := cache.Stats{Hits: 8, Misses: 2, MemReads: 2, MemWrites: 1, StallCycles: 20, NoCacheCycles: 100}
	out := CacheStats("icache", s)
	if !strings.Contains(out, "icache: hits=8 misses=2") {
		t.Fatalf("output = %q, missing hit/miss line", out)
	}
	if !strings.Contains(out, "speed_improvement=5.000") {
		t.Fatalf("output = %q, want speed_improvement=5.000", out)
	}
}

func TestPipelineStatsFormatsCounters(t *testing.T) {
	s := core.PipelineStats{Bubbles: 3, Flushes: 1, StructStalls: 2}
	out := PipelineStats(42, s)
	if !strings.Contains(out, "cycles=42") {
		t.Fatalf("output = %q, missing cycles line", out)
	}
	if !strings.Contains(out, "bubbles=3 flushes=1 struct_stalls=2") {
		t.Fatalf("output = %q, missing hazard line", out)
	}
}
