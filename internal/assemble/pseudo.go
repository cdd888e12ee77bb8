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

	"github.com/mipssim/mips32/internal/isa"
)

// pseudoMnemonics names every pseudo-op this assembler expands, so pass
// one can recognize them without attempting a real-opcode lookup first.
var pseudoMnemonics = map[string]bool{
	"LA": true, "LI": true, "B": true, "NOP": true, "MOVE": true,
}

// pseudoSize returns how many 4-byte words mnemonic expands to, for pass
// one's address bookkeeping. LI's size depends on whether its immediate
// is already known to fit one word; an operand that is still unresolved
// (a forward reference) is sized conservatively as two words (LUI+ORI),
// documented in DESIGN.md.
func pseudoSize(mnemonic, operandText string, syms *SymbolTable) int {
	switch mnemonic {
	case "LA", "MOVE":
		return sizeLA(mnemonic)
	case "LI":
		ops := splitTop(operandText, ',')
		if len(ops) == 2 {
			if v, unresolved, err := evalExpr(ops[1], 0, syms); err == nil && unresolved == "" {
				if fitsSignedOrZero16(v) {
					return 1
				}
			}
		}
		return 2
	case "B", "NOP":
		return 1
	default:
		return 1
	}
}

func sizeLA(mnemonic string) int {
	if mnemonic == "MOVE" {
		return 1
	}
	return 2
}

func fitsSignedOrZero16(v uint32) bool {
	sv := int32(v)
	return sv >= -32768 && sv <= 32767
}

// expandPseudo builds the real instructions mnemonic stands for at addr,
// evaluating operands against the now-complete (pass two) symbol table.
func expandPseudo(mnemonic, operandText string, addr uint32, syms *SymbolTable) ([]isa.Instruction, error) {
	ops := splitTop(operandText, ',')

	switch mnemonic {
	case "LA":
		if len(ops) != 2 {
			return nil, fmt.Errorf("LA expects 2 operands, got %d", len(ops))
		}
		rd, err := parseRegister(ops[0])
		if err != nil {
			return nil, err
		}
		v, unresolved, err := evalExpr(ops[1], addr, syms)
		if err != nil {
			return nil, err
		}
		if unresolved != "" {
			return nil, fmt.Errorf("undefined symbol %q", unresolved)
		}
		lui := isa.Instruction{Format: isa.FormatI, Mn: isa.MLUI, RT: rd, ImmZExt: (v >> 16) & 0xFFFF}
		ori := isa.Instruction{Format: isa.FormatI, Mn: isa.MORI, RS: rd, RT: rd, ImmZExt: v & 0xFFFF}
		return []isa.Instruction{lui, ori}, nil

	case "LI":
		if len(ops) != 2 {
			return nil, fmt.Errorf("LI expects 2 operands, got %d", len(ops))
		}
		rd, err := parseRegister(ops[0])
		if err != nil {
			return nil, err
		}
		v, unresolved, err := evalExpr(ops[1], addr, syms)
		if err != nil {
			return nil, err
		}
		if unresolved != "" {
			return nil, fmt.Errorf("undefined symbol %q", unresolved)
		}
		if fitsSignedOrZero16(v) {
			addiu := isa.Instruction{Format: isa.FormatI, Mn: isa.MADDIU, RT: rd, RS: 0,
				ImmSExt: int32(int16(v)), ImmZExt: v & 0xFFFF}
			return []isa.Instruction{addiu}, nil
		}
		lui := isa.Instruction{Format: isa.FormatI, Mn: isa.MLUI, RT: rd, ImmZExt: (v >> 16) & 0xFFFF}
		ori := isa.Instruction{Format: isa.FormatI, Mn: isa.MORI, RS: rd, RT: rd, ImmZExt: v & 0xFFFF}
		return []isa.Instruction{lui, ori}, nil

	case "B":
		if len(ops) != 1 {
			return nil, fmt.Errorf("B expects 1 operand, got %d", len(ops))
		}
		target, unresolved, err := evalExpr(ops[0], addr, syms)
		if err != nil {
			return nil, err
		}
		if unresolved != "" {
			return nil, fmt.Errorf("undefined symbol %q", unresolved)
		}
		disp, err := branchDisplacement(target, addr)
		if err != nil {
			return nil, err
		}
		return []isa.Instruction{{Format: isa.FormatI, Mn: isa.MBEQ, RS: 0, RT: 0, ImmZExt: disp}}, nil

	case "NOP":
		if len(ops) != 0 && operandText != "" {
			return nil, fmt.Errorf("NOP takes no operands")
		}
		return []isa.Instruction{isa.NOP}, nil

	case "MOVE":
		if len(ops) != 2 {
			return nil, fmt.Errorf("MOVE expects 2 operands, got %d", len(ops))
		}
		rd, err := parseRegister(ops[0])
		if err != nil {
			return nil, err
		}
		rs, err := parseRegister(ops[1])
		if err != nil {
			return nil, err
		}
		return []isa.Instruction{{Format: isa.FormatR, Mn: isa.MADDU, RD: rd, RS: 0, RT: rs}}, nil

	default:
		return nil, fmt.Errorf("internal: unhandled pseudo-op %s", mnemonic)
	}
}
