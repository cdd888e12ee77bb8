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

// Package cache models a single set-associative L1 cache: configurable
// sets/ways/block size, RAND/LRU/LFU replacement, and the three write
// policies a core can be built against (write-back, write-through with
// and without write-allocate).
package cache

import "math/rand"

// Replacement selects how a victim line is chosen on a miss.
type Replacement uint8

const (
	ReplRAND Replacement = iota
	ReplLRU
	ReplLFU
)

// WritePolicy selects how stores interact with the cache and backing
// memory.
type WritePolicy uint8

const (
	WriteBack WritePolicy = iota
	WriteThroughNoAlloc
	WriteThroughAlloc
)

// Backend is the word-addressed store a cache fills lines from and
// writes back to. *memory.RAM satisfies this without the cache package
// importing memory, keeping the dependency one-directional.
type Backend interface {
	ReadWord(addr uint32) uint32
	WriteWord(addr uint32, value uint32)
}

// Config describes one cache instance; set by --{d,i}-cache on the CLI.
type Config struct {
	Sets        int
	Words       int // words per block
	Assoc       int
	Replacement Replacement
	WritePolicy WritePolicy
	ReadTime    uint64 // cycles to start a memory read burst
	WriteTime   uint64 // cycles to start a memory write burst
	BurstTime   uint64 // additional cycles per word beyond the first in a burst
}

type line struct {
	valid   bool
	dirty   bool
	tag     uint32
	data    []uint32
	lastUse uint64
	freq    uint64
}

// Stats are the read-only counters external observers (the --dump-cache-
// stats reporter) read back.
type Stats struct {
	Hits              uint64
	Misses            uint64
	MemReads          uint64
	MemWrites          uint64
	StallCycles       uint64
	NoCacheCycles     uint64 // cycles this many accesses would cost with no cache at all
}

// SpeedImprovement is the emulated ratio of no-cache cost to actual cost;
// 1.0 means the cache bought nothing so far.
func (s Stats) SpeedImprovement() float64 {
	if s.StallCycles == 0 {
		return 1.0
	}
	return float64(s.NoCacheCycles) / float64(s.StallCycles)
}

// Cache is one configured L1 cache instance.
type Cache struct {
	cfg   Config
	sets  [][]line
	mem   Backend
	clock uint64
	rng   *rand.Rand
	stats Stats
}

// New builds a cache of the given configuration over mem. seed drives the
// RAND replacement policy's PRNG, conventionally the machine's cycle
// count at construction time.
func New(cfg Config, mem Backend, seed int64) *Cache {
	sets := make([][]line, cfg.Sets)
	for i := range sets {
		ways := make([]line, cfg.Assoc)
		for w := range ways {
			ways[w].data = make([]uint32, cfg.Words)
		}
		sets[i] = ways
	}
	return &Cache{cfg: cfg, sets: sets, mem: mem, rng: rand.New(rand.NewSource(seed))}
}

// Stats returns a snapshot of the running counters.
func (c *Cache) Stats() Stats { return c.stats }

func (c *Cache) addrParts(addr uint32) (tag uint32, set, offset int) {
	w := uint32(c.cfg.Words)
	s := uint32(c.cfg.Sets)
	offset = int((addr / 4) % w)
	set = int((addr / (4 * w)) % s)
	tag = addr / (4 * w * s)
	return
}

func (c *Cache) blockBase(addr uint32, offset int) uint32 {
	return addr - uint32(offset)*4
}

// Read returns the word at addr, updating hit/miss statistics and
// replacement metadata. It always returns the correct value, even on a
// miss; miss handling loads the line behind the scenes.
func (c *Cache) Read(addr uint32) uint32 {
	c.clock++
	tag, set, offset := c.addrParts(addr)
	ways := c.sets[set]

	for i := range ways {
		if ways[i].valid && ways[i].tag == tag {
			c.stats.Hits++
			c.stats.StallCycles++
			c.stats.NoCacheCycles += c.missPenalty()
			c.touch(&ways[i], i)
			return ways[i].data[offset]
		}
	}

	c.stats.Misses++
	victim := c.selectVictim(ways)
	c.fillLine(set, victim, tag, addr, offset)
	c.stats.StallCycles += c.missPenalty()
	c.stats.NoCacheCycles += c.missPenalty()
	return ways[victim].data[offset]
}

// Write stores value at addr per the configured write policy.
func (c *Cache) Write(addr, value uint32) {
	c.clock++
	tag, set, offset := c.addrParts(addr)
	ways := c.sets[set]

	var hitWay = -1
	for i := range ways {
		if ways[i].valid && ways[i].tag == tag {
			hitWay = i
			break
		}
	}

	switch c.cfg.WritePolicy {
	case WriteBack:
		if hitWay >= 0 {
			c.stats.Hits++
			ways[hitWay].data[offset] = value
			ways[hitWay].dirty = true
			c.touch(&ways[hitWay], hitWay)
			c.stats.StallCycles++
		} else {
			c.stats.Misses++
			victim := c.selectVictim(ways)
			c.fillLine(set, victim, tag, addr, offset)
			ways[victim].data[offset] = value
			ways[victim].dirty = true
			c.stats.StallCycles += c.missPenaltyWrite()
		}

	case WriteThroughNoAlloc:
		c.mem.WriteWord(addr, value)
		c.stats.MemWrites++
		if hitWay >= 0 {
			c.stats.Hits++
			ways[hitWay].data[offset] = value
			c.touch(&ways[hitWay], hitWay)
		} else {
			c.stats.Misses++
		}
		c.stats.StallCycles += c.missPenaltyWrite()

	case WriteThroughAlloc:
		if hitWay < 0 {
			c.stats.Misses++
			victim := c.selectVictim(ways)
			c.fillLine(set, victim, tag, addr, offset)
			hitWay = victim
		} else {
			c.stats.Hits++
		}
		ways[hitWay].data[offset] = value
		c.touch(&ways[hitWay], hitWay)
		c.mem.WriteWord(addr, value)
		c.stats.MemWrites++
		c.stats.StallCycles += c.missPenaltyWrite()
	}
	c.stats.NoCacheCycles += c.missPenaltyWrite()
}

// fillLine evicts (and, if write-back and dirty, writes back) the way at
// victim in set, then loads a fresh block covering addr from memory.
func (c *Cache) fillLine(set, victim int, tag, addr uint32, offset int) {
	l := &c.sets[set][victim]
	if c.cfg.WritePolicy == WriteBack && l.valid && l.dirty {
		oldBase := l.tag*uint32(c.cfg.Words)*uint32(c.cfg.Sets)*4 + uint32(set)*uint32(c.cfg.Words)*4
		for i, v := range l.data {
			c.mem.WriteWord(oldBase+uint32(i)*4, v)
		}
		c.stats.MemWrites++
	}
	base := c.blockBase(addr, offset)
	for i := range l.data {
		l.data[i] = c.mem.ReadWord(base + uint32(i)*4)
	}
	c.stats.MemReads++
	l.valid = true
	l.dirty = false
	l.tag = tag
	l.freq = 0
	c.touch(l, victim)
}

func (c *Cache) touch(l *line, way int) {
	c.clock++
	l.lastUse = c.clock
	l.freq++
}

// selectVictim picks a way per the configured replacement policy,
// preferring an invalid (never-filled) way over eviction, lowest way
// index breaking ties.
func (c *Cache) selectVictim(ways []line) int {
	for i := range ways {
		if !ways[i].valid {
			return i
		}
	}
	switch c.cfg.Replacement {
	case ReplLRU:
		best := 0
		for i := 1; i < len(ways); i++ {
			if ways[i].lastUse < ways[best].lastUse {
				best = i
			}
		}
		return best
	case ReplLFU:
		best := 0
		for i := 1; i < len(ways); i++ {
			if ways[i].freq < ways[best].freq {
				best = i
			}
		}
		return best
	default: // ReplRAND
		return c.rng.Intn(len(ways))
	}
}

func (c *Cache) missPenalty() uint64 {
	return c.cfg.ReadTime + uint64(c.cfg.Words-1)*c.cfg.BurstTime
}

func (c *Cache) missPenaltyWrite() uint64 {
	return c.cfg.WriteTime + uint64(c.cfg.Words-1)*c.cfg.BurstTime
}

// Invalidate drops any cached line overlapping [addr, addr+length),
// the hook CacheSync drives when memory changes out from under the cache
// (the assembler rewriting code it already emitted).
func (c *Cache) Invalidate(addr, length uint32) {
	blockBytes := uint32(c.cfg.Words) * 4
	for s := range c.sets {
		ways := c.sets[s]
		for w := range ways {
			if !ways[w].valid {
				continue
			}
			base := ways[w].tag*uint32(c.cfg.Words)*uint32(c.cfg.Sets)*4 + uint32(s)*blockBytes
			if base+blockBytes > addr && base < addr+length {
				ways[w].valid = false
				ways[w].dirty = false
			}
		}
	}
}
