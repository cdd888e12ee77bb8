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

// Package reporter formats post-run snapshots for the --dump-cache-stats
// and --dump-cycles CLI flags. Grounded on the teacher's device Show
// idiom (emu/model1403.Show and friends): a device-side method builds one
// formatted status string from its own counters, on demand, rather than
// exposing a live dashboard.
package reporter

import (
	"fmt"
	"strings"

	"github.com/mipssim/mips32/internal/cache"
	"github.com/mipssim/mips32/internal/core"
)

// CacheStats formats one cache's counters as a single multi-line report.
// name identifies which cache (icache/dcache) the report belongs to.
func CacheStats(name string, s cache.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: hits=%d misses=%d mem_reads=%d mem_writes=%d\n", name, s.Hits, s.Misses, s.MemReads, s.MemWrites)
	fmt.Fprintf(&b, "%s: stall_cycles=%d no_cache_cycles=%d speed_improvement=%.3f\n", name, s.StallCycles, s.NoCacheCycles, s.SpeedImprovement())
	return b.String()
}

// PipelineStats formats a pipeline's hazard counters as spec §10's
// --dump-cycles report.
func PipelineStats(cycles uint64, s core.PipelineStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "cycles=%d\n", cycles)
	fmt.Fprintf(&b, "bubbles=%d flushes=%d struct_stalls=%d\n", s.Bubbles, s.Flushes, s.StructStalls)
	return b.String()
}
