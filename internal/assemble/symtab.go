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

// Package assemble is the two-pass MIPS-I assembler: expression grammar,
// directives, symbol table, fix-ups, and pseudo-instruction expansion.
package assemble

import "fmt"

// symbol is one entry in the symbol table: its value and where it was
// first defined, for duplicate-definition diagnostics.
type symbol struct {
	value   uint32
	line    int
	defined bool
	global  bool
}

// SymbolTable maps names to 32-bit values. A name may be defined once;
// a second definition is a diagnostic, not a silent overwrite.
type SymbolTable struct {
	syms map[string]symbol
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{syms: make(map[string]symbol)}
}

// Define records name = value at line. It fails if name is already
// defined, per the spec's "a symbol may be defined once" invariant.
func (t *SymbolTable) Define(name string, value uint32, line int) error {
	prev, ok := t.syms[name]
	if ok && prev.defined {
		return fmt.Errorf("symbol %q already defined at line %d", name, prev.line)
	}
	t.syms[name] = symbol{value: value, line: line, defined: true, global: prev.global}
	return nil
}

// MarkGlobal records that name was named in a .globl directive. It does
// not require name to be defined yet; .globl commonly precedes the
// label it exports.
func (t *SymbolTable) MarkGlobal(name string) {
	s := t.syms[name]
	s.global = true
	t.syms[name] = s
}

// Lookup returns name's value and whether it is defined.
func (t *SymbolTable) Lookup(name string) (uint32, bool) {
	s, ok := t.syms[name]
	return s.value, ok && s.defined
}

// Globals returns every symbol named in a .globl directive, defined or
// not, for the debugger's symbol-table queries.
func (t *SymbolTable) Globals() map[string]uint32 {
	out := make(map[string]uint32)
	for name, s := range t.syms {
		if s.global {
			out[name] = s.value
		}
	}
	return out
}

// All returns every defined symbol, for --dump-style listings and the
// debugger's "list symbols" command.
func (t *SymbolTable) All() map[string]uint32 {
	out := make(map[string]uint32, len(t.syms))
	for name, s := range t.syms {
		if s.defined {
			out[name] = s.value
		}
	}
	return out
}
