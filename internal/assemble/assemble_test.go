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

package assemble

import (
	"testing"

	"github.com/mipssim/mips32/internal/device"
	"github.com/mipssim/mips32/internal/isa"
	"github.com/mipssim/mips32/internal/memory"
)

func newTestAssembler(t *testing.T) (*Assembler, *memory.AddressSpace) {
	t.Helper()
	ram := memory.NewRAM(0x4000)
	space := memory.NewAddressSpace(ram, 0)
	return New(space, 0, 0x2000, nil), space
}

// TestAsciz follows the spec's .asciz scenario: a label at .org 0x2000
// holding "Hi" must land its bytes and NUL terminator exactly there, and
// the label symbol must equal the section's origin.
func TestAsciz(t *testing.T) {
	a, space := newTestAssembler(t)
	a.Assemble("prog.s", ".data\n.org 0x2000\nmsg: .asciz \"Hi\"\n")
	ok, diags := a.Finish()
	if !ok {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	msg, found := a.Symbols().Lookup("msg")
	if !found || msg != 0x2000 {
		t.Fatalf("msg = 0x%x, found=%v, want 0x2000", msg, found)
	}

	ram := space.RAM()
	wantBytes := []byte{'H', 'i', 0}
	for i, want := range wantBytes {
		got := ram.ReadByte(0x2000 + uint32(i))
		if got != want {
			t.Fatalf("byte at 0x%x = %q, want %q", 0x2000+i, got, want)
		}
	}
}

// TestForwardBranchReference exercises pass one/pass two separation: a
// branch to a label defined later in the file must still resolve.
func TestForwardBranchReference(t *testing.T) {
	a, space := newTestAssembler(t)
	src := "" +
		".text\n" +
		"start: BEQ $0, $0, done\n" +
		"       ADDI $1, $0, 99\n" +
		"done:  ADDI $2, $0, 1\n"
	a.Assemble("prog.s", src)
	ok, diags := a.Finish()
	if !ok {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	done, ok2 := a.Symbols().Lookup("done")
	if !ok2 || done != 8 {
		t.Fatalf("done = %d, want 8", done)
	}

	word := space.RAM().ReadWord(0)
	in, err := isa.Decode(word)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if in.Mn != isa.MBEQ {
		t.Fatalf("mnemonic = %v, want BEQ", in.Mn)
	}
	target := isa.BranchTarget(in, 0)
	if target != done {
		t.Fatalf("branch target = 0x%x, want 0x%x", target, done)
	}
}

// TestPseudoExpansion checks LA/LI/B/NOP/MOVE against the spec's
// documented expansions.
func TestPseudoExpansion(t *testing.T) {
	a, space := newTestAssembler(t)
	src := "" +
		".data\n" +
		"val: .word 0x12345678\n" +
		".text\n" +
		"	LA $8, val\n" + // LUI $8,hi(val); ORI $8,$8,lo(val)
		"	LI $9, 5\n" + // single word: ADDIU $9,$0,5
		"	LI $10, 0x12345\n" + // two words: LUI/ORI
		"	B skip\n" + // BEQ $0,$0,skip
		"	NOP\n" +
		"skip:	MOVE $11, $9\n"
	a.Assemble("prog.s", src)
	ok, diags := a.Finish()
	if !ok {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	decodeAt := func(addr uint32) isa.Instruction {
		w := space.RAM().ReadWord(addr)
		in, err := isa.Decode(w)
		if err != nil {
			t.Fatalf("decode at 0x%x: %v", addr, err)
		}
		return in
	}

	// val is the first .data word, so LA loads its address 0x2000, not
	// the 0x12345678 stored there.
	lui := decodeAt(0)
	if lui.Mn != isa.MLUI || lui.RT != 8 || lui.ImmZExt != 0x0000 {
		t.Fatalf("LA upper half = %+v", lui)
	}
	ori := decodeAt(4)
	if ori.Mn != isa.MORI || ori.RT != 8 || ori.RS != 8 || ori.ImmZExt != 0x2000 {
		t.Fatalf("LA lower half = %+v", ori)
	}
	li1 := decodeAt(8)
	if li1.Mn != isa.MADDIU || li1.RT != 9 || li1.ImmZExt != 5 {
		t.Fatalf("LI (1-word) = %+v", li1)
	}
	li2lui := decodeAt(12)
	li2ori := decodeAt(16)
	if li2lui.Mn != isa.MLUI || li2lui.ImmZExt != 0x1 || li2ori.Mn != isa.MORI || li2ori.ImmZExt != 0x2345 {
		t.Fatalf("LI (2-word) = %+v / %+v", li2lui, li2ori)
	}
	b := decodeAt(20)
	if b.Mn != isa.MBEQ || b.RS != 0 || b.RT != 0 {
		t.Fatalf("B = %+v", b)
	}
	if target := isa.BranchTarget(b, 20); target != 28 {
		t.Fatalf("B target = 0x%x, want 0x1c", target)
	}
	nop := decodeAt(24)
	if !nop.IsNOP() {
		t.Fatalf("NOP did not assemble to the canonical NOP: %+v", nop)
	}
	move := decodeAt(28)
	if move.Mn != isa.MADDU || move.RD != 11 || move.RS != 0 || move.RT != 9 {
		t.Fatalf("MOVE = %+v", move)
	}
}

// TestDuplicateSymbolDiagnostic checks that redefining a symbol is
// reported, not silently overwritten.
func TestDuplicateSymbolDiagnostic(t *testing.T) {
	a, _ := newTestAssembler(t)
	a.Assemble("prog.s", ".text\nfoo: NOP\nfoo: NOP\n")
	ok, diags := a.Finish()
	if ok {
		t.Fatalf("expected assembly to fail on duplicate symbol")
	}
	if len(diags) != 1 {
		t.Fatalf("diags = %v, want exactly one", diags)
	}
}

// TestExpressionGrammar exercises literal bases and operator precedence
// against a .word list, then round-trips through the address space.
func TestExpressionGrammar(t *testing.T) {
	a, space := newTestAssembler(t)
	a.Assemble("prog.s", ".data\n.org 0x3000\n.word 1+2*3, 0x10, 010, 0b101, (1+2)*3\n")
	ok, diags := a.Finish()
	if !ok {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	want := []uint32{7, 0x10, 8, 5, 9}
	for i, w := range want {
		got, err := space.Read(0x3000+uint32(i)*4, device.WidthWord, device.SourceDebugger)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if got != w {
			t.Fatalf("word %d = %d, want %d", i, got, w)
		}
	}
}

// TestUndefinedSymbolDiagnostic checks that a reference that is still
// unresolved after pass two is reported, not silently zeroed.
func TestUndefinedSymbolDiagnostic(t *testing.T) {
	a, _ := newTestAssembler(t)
	a.Assemble("prog.s", ".text\nJ nowhere\n")
	ok, diags := a.Finish()
	if ok {
		t.Fatalf("expected assembly to fail on undefined symbol")
	}
	if len(diags) != 1 {
		t.Fatalf("diags = %v, want exactly one", diags)
	}
}

// TestPragmaCollection checks that #pragma lines are captured as events
// rather than treated as ordinary comments, only at statement boundaries.
func TestPragmaCollection(t *testing.T) {
	a, _ := newTestAssembler(t)
	a.Assemble("prog.s", "#pragma window title=\"demo\"\nNOP\n")
	ok, diags := a.Finish()
	if !ok {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	pragmas := a.Pragmas()
	if len(pragmas) != 1 || pragmas[0].Name != "window" {
		t.Fatalf("pragmas = %+v, want one named \"window\"", pragmas)
	}
}
