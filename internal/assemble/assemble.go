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
	"fmt"
	"strings"

	"github.com/mipssim/mips32/internal/device"
	"github.com/mipssim/mips32/internal/isa"
	"github.com/mipssim/mips32/internal/memory"
)

// Section is one of the two location counters the assembler tracks; `.`
// always refers to whichever is current.
type Section uint8

const (
	SectText Section = iota
	SectData
)

// Diagnostic is one assembler error, collected rather than raised
// immediately so a single run reports every problem it finds.
type Diagnostic struct {
	File string
	Line int
	Msg  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s", d.File, d.Line, d.Msg)
}

// PragmaEvent is a `#pragma` line, opaque to the assembler itself and
// surfaced to the host (e.g. editor window-control hints) as an event.
type PragmaEvent struct {
	Name string
	Args string
	File string
	Line int
}

// IncludeProvider resolves the content named by a `.include "path"`
// directive. The plain file-system provider and a live-editor-aware
// provider both satisfy this without the assembler knowing which one
// it's talking to.
type IncludeProvider interface {
	Resolve(path string) ([]byte, error)
}

type itemKind uint8

const (
	itemInstr itemKind = iota
	itemWord
	itemHalf
	itemByte
)

// pendingItem is a fix-up: pass one recorded its address and raw operand
// text but deferred evaluation to pass two, once every symbol (forward
// references included) is in the table.
type pendingItem struct {
	addr     uint32
	file     string
	line     int
	kind     itemKind
	mnemonic string   // itemInstr only
	operands string   // itemInstr only
	exprs    []string // itemWord/itemHalf/itemByte only, one per element
}

// Assembler is a two-pass MIPS-I assembler writing directly into an
// AddressSpace. Construct with New, feed it source with Assemble (called
// once per top-level file; `.include` recurses internally), then call
// Finish to resolve fix-ups and learn whether assembly succeeded.
type Assembler struct {
	space    *memory.AddressSpace
	syms     *SymbolTable
	includes IncludeProvider

	section  Section
	textPC   uint32
	dataPC   uint32

	pending []pendingItem
	diags   []Diagnostic
	pragmas []PragmaEvent

	tracked          bool
	minAddr, maxAddr uint32
}

// New builds an assembler targeting space, with .text starting at
// textBase and .data at dataBase. includes may be nil, in which case
// `.include` always fails with an AssemblerError diagnostic.
func New(space *memory.AddressSpace, textBase, dataBase uint32, includes IncludeProvider) *Assembler {
	return &Assembler{
		space:    space,
		syms:     NewSymbolTable(),
		includes: includes,
		textPC:   textBase,
		dataPC:   dataBase,
	}
}

// Symbols returns the assembler's symbol table, for the debugger's
// symbol-table queries and for listings.
func (a *Assembler) Symbols() *SymbolTable { return a.syms }

// Pragmas returns every `#pragma` line seen so far, in source order.
func (a *Assembler) Pragmas() []PragmaEvent { return a.pragmas }

// Diagnostics returns every diagnostic collected so far, across both
// passes.
func (a *Assembler) Diagnostics() []Diagnostic { return a.diags }

// Assemble runs pass one over source, named filename for diagnostics.
// Call Finish afterward to run pass two and learn whether it succeeded.
func (a *Assembler) Assemble(filename, source string) {
	a.scanSource(filename, source)
}

// Finish runs pass two: every fix-up recorded during pass one is
// re-evaluated against the now-complete symbol table and the resulting
// word(s) patched into memory. It returns false if any diagnostic was
// ever emitted, in which case the memory image must not be trusted.
func (a *Assembler) Finish() (ok bool, diags []Diagnostic) {
	for _, p := range a.pending {
		switch p.kind {
		case itemInstr:
			a.resolveInstr(p)
		case itemWord:
			a.resolveData(p, 4)
		case itemHalf:
			a.resolveData(p, 2)
		case itemByte:
			a.resolveData(p, 1)
		}
	}
	if a.tracked {
		a.space.CacheSync(a.minAddr, a.maxAddr-a.minAddr)
	}
	a.pending = nil
	return len(a.diags) == 0, a.diags
}

func (a *Assembler) resolveInstr(p pendingItem) {
	var insts []isa.Instruction
	if pseudoMnemonics[p.mnemonic] {
		in, err := expandPseudo(p.mnemonic, p.operands, p.addr, a.syms)
		if err != nil {
			a.errorf(p.file, p.line, "%v", err)
			return
		}
		insts = in
	} else {
		info, ok := opTable[p.mnemonic]
		if !ok {
			a.errorf(p.file, p.line, "unknown mnemonic %q", p.mnemonic)
			return
		}
		in, err := buildReal(info, p.operands, p.addr, a.syms)
		if err != nil {
			a.errorf(p.file, p.line, "%v", err)
			return
		}
		insts = []isa.Instruction{in}
	}
	for i, in := range insts {
		word, err := isa.Encode(in)
		if err != nil {
			a.errorf(p.file, p.line, "%v", err)
			return
		}
		if err := a.space.Write(p.addr+uint32(i)*4, device.WidthWord, word, device.SourcePeripheral); err != nil {
			a.errorf(p.file, p.line, "%v", err)
			return
		}
	}
}

func (a *Assembler) resolveData(p pendingItem, elemSize uint32) {
	for i, e := range p.exprs {
		v, unresolved, err := evalExpr(e, p.addr, a.syms)
		if err != nil {
			a.errorf(p.file, p.line, "%v", err)
			continue
		}
		if unresolved != "" {
			a.errorf(p.file, p.line, "undefined symbol %q", unresolved)
			continue
		}
		addr := p.addr + uint32(i)*elemSize
		var werr error
		switch elemSize {
		case 1:
			werr = a.space.Write(addr, device.WidthByte, v&0xFF, device.SourcePeripheral)
		case 2:
			werr = a.space.Write(addr, device.WidthHalf, v&0xFFFF, device.SourcePeripheral)
		default:
			werr = a.space.Write(addr, device.WidthWord, v, device.SourcePeripheral)
		}
		if werr != nil {
			a.errorf(p.file, p.line, "%v", werr)
		}
	}
}

// scanSource is pass one over one file's text. `.include` calls back
// into this recursively so included content shares section/PC state
// with its includer.
func (a *Assembler) scanSource(filename, source string) {
	for i, raw := range strings.Split(source, "\n") {
		a.scanLine(filename, i+1, raw)
	}
}

func (a *Assembler) scanLine(filename string, lineNo int, raw string) {
	line := strings.TrimRight(raw, "\r")
	if strings.HasPrefix(strings.TrimSpace(line), "#pragma") {
		a.handlePragma(filename, lineNo, strings.TrimSpace(line))
		return
	}

	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	if idx := strings.IndexByte(line, ':'); idx >= 0 {
		label := strings.TrimSpace(line[:idx])
		line = strings.TrimSpace(line[idx+1:])
		if label != "" {
			a.defineLabel(filename, lineNo, label)
		}
	}
	if line == "" {
		return
	}

	name, rest := splitDirectiveName(line)
	upper := strings.ToUpper(name)

	switch {
	case strings.HasPrefix(name, "."):
		a.handleDirective(filename, lineNo, strings.ToLower(name), rest)
	case pseudoMnemonics[upper]:
		a.queueInstruction(filename, lineNo, upper, rest, pseudoSize(upper, rest, a.syms))
	default:
		if _, ok := opTable[upper]; !ok {
			a.errorf(filename, lineNo, "unknown mnemonic %q", name)
			return
		}
		a.queueInstruction(filename, lineNo, upper, rest, 1)
	}
}

func (a *Assembler) defineLabel(filename string, lineNo int, name string) {
	if !isValidIdent(name) {
		a.errorf(filename, lineNo, "invalid label name %q", name)
		return
	}
	if err := a.syms.Define(name, a.cur(), lineNo); err != nil {
		a.errorf(filename, lineNo, "%v", err)
	}
}

func (a *Assembler) handleDirective(filename string, lineNo int, name, rest string) {
	switch name {
	case ".text":
		a.section = SectText
	case ".data":
		a.section = SectData
	case ".org":
		if v, err := a.evalNow(filename, lineNo, rest); err == nil {
			a.setPC(v)
		}
	case ".word":
		a.queueData(filename, lineNo, itemWord, rest, 4)
	case ".half":
		a.queueData(filename, lineNo, itemHalf, rest, 2)
	case ".byte":
		a.queueData(filename, lineNo, itemByte, rest, 1)
	case ".ascii":
		a.emitAscii(filename, lineNo, rest, false)
	case ".asciz":
		a.emitAscii(filename, lineNo, rest, true)
	case ".space", ".skip":
		a.emitSpace(filename, lineNo, rest)
	case ".set", ".equ":
		a.handleSet(filename, lineNo, rest)
	case ".globl", ".global":
		a.syms.MarkGlobal(strings.TrimSpace(rest))
	case ".include":
		a.handleInclude(filename, lineNo, rest)
	default:
		a.errorf(filename, lineNo, "unknown directive %q", name)
	}
}

func (a *Assembler) queueInstruction(filename string, lineNo int, mnemonic, operands string, words int) {
	addr := a.cur()
	a.pending = append(a.pending, pendingItem{addr: addr, file: filename, line: lineNo, kind: itemInstr, mnemonic: mnemonic, operands: operands})
	n := uint32(words) * 4
	a.advance(n)
	a.track(addr, n)
}

func (a *Assembler) queueData(filename string, lineNo int, kind itemKind, rest string, elemSize uint32) {
	exprs := splitTop(rest, ',')
	if len(exprs) == 0 || exprs[0] == "" {
		a.errorf(filename, lineNo, "expected at least one value")
		return
	}
	addr := a.cur()
	a.pending = append(a.pending, pendingItem{addr: addr, file: filename, line: lineNo, kind: kind, exprs: exprs})
	n := elemSize * uint32(len(exprs))
	a.advance(n)
	a.track(addr, n)
}

func (a *Assembler) emitAscii(filename string, lineNo int, rest string, zeroTerminate bool) {
	b, err := parseStringLiteral(rest)
	if err != nil {
		a.errorf(filename, lineNo, "%v", err)
		return
	}
	if zeroTerminate {
		b = append(b, 0)
	}
	addr := a.cur()
	for i, by := range b {
		if err := a.writeByte(addr+uint32(i), by); err != nil {
			a.errorf(filename, lineNo, "%v", err)
			return
		}
	}
	a.advance(uint32(len(b)))
	a.track(addr, uint32(len(b)))
}

func (a *Assembler) emitSpace(filename string, lineNo int, rest string) {
	parts := splitTop(rest, ',')
	if len(parts) == 0 || parts[0] == "" {
		a.errorf(filename, lineNo, "expected a size")
		return
	}
	n, err := a.evalNow(filename, lineNo, parts[0])
	if err != nil {
		return
	}
	var fill uint32
	if len(parts) > 1 {
		fill, err = a.evalNow(filename, lineNo, parts[1])
		if err != nil {
			return
		}
	}
	addr := a.cur()
	for i := uint32(0); i < n; i++ {
		if err := a.writeByte(addr+i, uint8(fill)); err != nil {
			a.errorf(filename, lineNo, "%v", err)
			return
		}
	}
	a.advance(n)
	a.track(addr, n)
}

func (a *Assembler) handleSet(filename string, lineNo int, rest string) {
	parts := splitTop(rest, ',')
	if len(parts) != 2 {
		a.errorf(filename, lineNo, ".set/.equ expects name, expr")
		return
	}
	name := strings.TrimSpace(parts[0])
	if !isValidIdent(name) {
		a.errorf(filename, lineNo, "invalid symbol name %q", name)
		return
	}
	v, err := a.evalNow(filename, lineNo, parts[1])
	if err != nil {
		return
	}
	if err := a.syms.Define(name, v, lineNo); err != nil {
		a.errorf(filename, lineNo, "%v", err)
	}
}

func (a *Assembler) handleInclude(filename string, lineNo int, rest string) {
	path, err := parseStringLiteral(rest)
	if err != nil {
		a.errorf(filename, lineNo, "%v", err)
		return
	}
	if a.includes == nil {
		a.errorf(filename, lineNo, "include not found: %q (no content provider configured)", string(path))
		return
	}
	content, err := a.includes.Resolve(string(path))
	if err != nil {
		a.errorf(filename, lineNo, "include not found: %q: %v", string(path), err)
		return
	}
	a.scanSource(string(path), string(content))
}

func (a *Assembler) handlePragma(filename string, lineNo int, trimmed string) {
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "#pragma"))
	name, args := splitDirectiveName(rest)
	a.pragmas = append(a.pragmas, PragmaEvent{Name: name, Args: args, File: filename, Line: lineNo})
}

// evalNow evaluates expr immediately, against whatever the symbol table
// holds right now. Used where the spec gives no fix-up mechanism
// (.org, .space, .set, .equ): a forward reference there is a
// diagnostic, not a deferred fix-up.
func (a *Assembler) evalNow(filename string, lineNo int, expr string) (uint32, error) {
	v, unresolved, err := evalExpr(expr, a.cur(), a.syms)
	if err != nil {
		a.errorf(filename, lineNo, "%v", err)
		return 0, err
	}
	if unresolved != "" {
		err := fmt.Errorf("undefined symbol %q (forward references are not allowed here)", unresolved)
		a.errorf(filename, lineNo, "%v", err)
		return 0, err
	}
	return v, nil
}

func (a *Assembler) writeByte(addr uint32, v uint8) error {
	return a.space.Write(addr, device.WidthByte, uint32(v), device.SourcePeripheral)
}

func (a *Assembler) cur() uint32 {
	if a.section == SectData {
		return a.dataPC
	}
	return a.textPC
}

func (a *Assembler) setPC(v uint32) {
	if a.section == SectData {
		a.dataPC = v
	} else {
		a.textPC = v
	}
}

func (a *Assembler) advance(n uint32) {
	if a.section == SectData {
		a.dataPC += n
	} else {
		a.textPC += n
	}
}

func (a *Assembler) track(addr, n uint32) {
	if n == 0 {
		return
	}
	if !a.tracked || addr < a.minAddr {
		a.minAddr = addr
	}
	if end := addr + n; !a.tracked || end > a.maxAddr {
		a.maxAddr = end
	}
	a.tracked = true
}

func (a *Assembler) errorf(filename string, lineNo int, format string, args ...any) {
	a.diags = append(a.diags, Diagnostic{File: filename, Line: lineNo, Msg: fmt.Sprintf(format, args...)})
}

func isValidIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentCont(s[i]) {
			return false
		}
	}
	return true
}
