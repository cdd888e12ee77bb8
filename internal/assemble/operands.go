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
	"strconv"
	"strings"

	"github.com/mipssim/mips32/internal/isa"
)

// opClass groups mnemonics by operand syntax, the same role the
// teacher's tyRR/tyRX/tyRS/tySI/tySS/tyS type constants play for S/370
// formats: one table maps a name to {mnemonic, class}, one switch per
// class builds the Instruction.
type opClass int

const (
	clsRRR      opClass = iota // rd, rs, rt
	clsShift                   // rd, rt, shamt
	clsShiftV                  // rd, rt, rs
	clsMulDiv                  // rs, rt
	clsMFHILO                  // rd
	clsMTHILO                  // rs
	clsLoadStore               // rt, imm(rs)
	clsBranch2                 // rs, rt, label
	clsBranch1                 // rs, label
	clsJump                    // target
	clsJR                      // rs
	clsJALR                    // [rd,] rs
	clsArithImm                // rt, rs, imm
	clsLUI                     // rt, imm
	clsCP0                     // rt, rd
	clsNone                    // no operands
)

type opInfo struct {
	mn    isa.Mnemonic
	class opClass
}

// opTable is the real (non-pseudo) MIPS-I mnemonic set from spec §4.E.
var opTable = map[string]opInfo{
	"ADD": {isa.MADD, clsRRR}, "ADDU": {isa.MADDU, clsRRR},
	"SUB": {isa.MSUB, clsRRR}, "SUBU": {isa.MSUBU, clsRRR},
	"AND": {isa.MAND, clsRRR}, "OR": {isa.MOR, clsRRR},
	"XOR": {isa.MXOR, clsRRR}, "NOR": {isa.MNOR, clsRRR},
	"SLT": {isa.MSLT, clsRRR}, "SLTU": {isa.MSLTU, clsRRR},

	"SLL": {isa.MSLL, clsShift}, "SRL": {isa.MSRL, clsShift}, "SRA": {isa.MSRA, clsShift},
	"SLLV": {isa.MSLLV, clsShiftV}, "SRLV": {isa.MSRLV, clsShiftV}, "SRAV": {isa.MSRAV, clsShiftV},

	"MULT": {isa.MMULT, clsMulDiv}, "MULTU": {isa.MMULTU, clsMulDiv},
	"DIV": {isa.MDIV, clsMulDiv}, "DIVU": {isa.MDIVU, clsMulDiv},
	"MFHI": {isa.MMFHI, clsMFHILO}, "MFLO": {isa.MMFLO, clsMFHILO},
	"MTHI": {isa.MMTHI, clsMTHILO}, "MTLO": {isa.MMTLO, clsMTHILO},

	"LB": {isa.MLB, clsLoadStore}, "LBU": {isa.MLBU, clsLoadStore},
	"LH": {isa.MLH, clsLoadStore}, "LHU": {isa.MLHU, clsLoadStore},
	"LW": {isa.MLW, clsLoadStore},
	"SB": {isa.MSB, clsLoadStore}, "SH": {isa.MSH, clsLoadStore}, "SW": {isa.MSW, clsLoadStore},

	"BEQ": {isa.MBEQ, clsBranch2}, "BNE": {isa.MBNE, clsBranch2},
	"BLEZ": {isa.MBLEZ, clsBranch1}, "BGTZ": {isa.MBGTZ, clsBranch1},
	"BLTZ": {isa.MBLTZ, clsBranch1}, "BGEZ": {isa.MBGEZ, clsBranch1},
	"BLTZAL": {isa.MBLTZAL, clsBranch1}, "BGEZAL": {isa.MBGEZAL, clsBranch1},

	"J": {isa.MJ, clsJump}, "JAL": {isa.MJAL, clsJump},
	"JR": {isa.MJR, clsJR}, "JALR": {isa.MJALR, clsJALR},

	"ADDI": {isa.MADDI, clsArithImm}, "ADDIU": {isa.MADDIU, clsArithImm},
	"SLTI": {isa.MSLTI, clsArithImm}, "SLTIU": {isa.MSLTIU, clsArithImm},
	"ANDI": {isa.MANDI, clsArithImm}, "ORI": {isa.MORI, clsArithImm}, "XORI": {isa.MXORI, clsArithImm},
	"LUI": {isa.MLUI, clsLUI},

	"SYSCALL": {isa.MSYSCALL, clsNone}, "BREAK": {isa.MBREAK, clsNone},

	"MFC0": {isa.MMFC0, clsCP0}, "MTC0": {isa.MMTC0, clsCP0},
}

// regNames maps MIPS register aliases (without the leading $) to index.
var regNames = map[string]uint8{
	"zero": 0, "at": 1, "v0": 2, "v1": 3,
	"a0": 4, "a1": 5, "a2": 6, "a3": 7,
	"t0": 8, "t1": 9, "t2": 10, "t3": 11, "t4": 12, "t5": 13, "t6": 14, "t7": 15,
	"s0": 16, "s1": 17, "s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23,
	"t8": 24, "t9": 25, "k0": 26, "k1": 27, "gp": 28, "sp": 29, "fp": 30, "ra": 31,
}

func parseRegister(tok string) (uint8, error) {
	tok = strings.TrimSpace(tok)
	if !strings.HasPrefix(tok, "$") {
		return 0, fmt.Errorf("expected a register, got %q", tok)
	}
	tok = tok[1:]
	if n, ok := regNames[tok]; ok {
		return n, nil
	}
	if v, err := strconv.Atoi(tok); err == nil && v >= 0 && v < 32 {
		return uint8(v), nil
	}
	return 0, fmt.Errorf("%q is not a valid register", "$"+tok)
}

// splitTop splits s on sep at nesting depth zero, so "4($t0)" is not
// split on a comma that doesn't exist, and "f(a,b)" style nesting (not
// used by this grammar, but defended against) never mis-splits.
func splitTop(s string, sep byte) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	for i := range out {
		out[i] = strings.TrimSpace(out[i])
	}
	return out
}

// splitOffsetBase splits a load/store address operand "expr(reg)" into
// its offset expression and base register text. A bare register with no
// offset ("($t0)") is a zero offset.
func splitOffsetBase(s string) (offsetExpr, baseReg string, err error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return "", "", fmt.Errorf("expected offset(base), got %q", s)
	}
	offsetExpr = strings.TrimSpace(s[:open])
	if offsetExpr == "" {
		offsetExpr = "0"
	}
	baseReg = strings.TrimSpace(s[open+1 : len(s)-1])
	return offsetExpr, baseReg, nil
}

// buildReal parses operandText for a non-pseudo mnemonic and produces
// its Instruction, evaluating any immediate/target expression against
// syms. addr is this instruction's own address, needed for PC-relative
// branch displacements.
func buildReal(info opInfo, operandText string, addr uint32, syms *SymbolTable) (isa.Instruction, error) {
	ops := splitTop(operandText, ',')
	if len(ops) == 1 && ops[0] == "" {
		ops = nil
	}
	in := isa.Instruction{Mn: info.mn}

	need := func(n int) error {
		if len(ops) != n {
			return fmt.Errorf("%s expects %d operand(s), got %d", info.mn, n, len(ops))
		}
		return nil
	}
	reg := func(s string) (uint8, error) { return parseRegister(s) }
	eval := func(s string) (uint32, error) {
		v, unresolved, err := evalExpr(s, addr, syms)
		if err != nil {
			return 0, err
		}
		if unresolved != "" {
			return 0, fmt.Errorf("undefined symbol %q", unresolved)
		}
		return v, nil
	}

	switch info.class {
	case clsNone:
		if err := need(0); err != nil {
			return in, err
		}
		in.Format = isa.FormatR

	case clsRRR:
		if err := need(3); err != nil {
			return in, err
		}
		in.Format = isa.FormatR
		var e error
		if in.RD, e = reg(ops[0]); e != nil {
			return in, e
		}
		if in.RS, e = reg(ops[1]); e != nil {
			return in, e
		}
		if in.RT, e = reg(ops[2]); e != nil {
			return in, e
		}

	case clsShift:
		if err := need(3); err != nil {
			return in, err
		}
		in.Format = isa.FormatR
		var e error
		if in.RD, e = reg(ops[0]); e != nil {
			return in, e
		}
		if in.RT, e = reg(ops[1]); e != nil {
			return in, e
		}
		v, e := eval(ops[2])
		if e != nil {
			return in, e
		}
		in.Shamt = uint8(v & 0x1F)

	case clsShiftV:
		if err := need(3); err != nil {
			return in, err
		}
		in.Format = isa.FormatR
		var e error
		if in.RD, e = reg(ops[0]); e != nil {
			return in, e
		}
		if in.RT, e = reg(ops[1]); e != nil {
			return in, e
		}
		if in.RS, e = reg(ops[2]); e != nil {
			return in, e
		}

	case clsMulDiv:
		if err := need(2); err != nil {
			return in, err
		}
		in.Format = isa.FormatR
		var e error
		if in.RS, e = reg(ops[0]); e != nil {
			return in, e
		}
		if in.RT, e = reg(ops[1]); e != nil {
			return in, e
		}

	case clsMFHILO:
		if err := need(1); err != nil {
			return in, err
		}
		in.Format = isa.FormatR
		var e error
		if in.RD, e = reg(ops[0]); e != nil {
			return in, e
		}

	case clsMTHILO:
		if err := need(1); err != nil {
			return in, err
		}
		in.Format = isa.FormatR
		var e error
		if in.RS, e = reg(ops[0]); e != nil {
			return in, e
		}

	case clsJR:
		if err := need(1); err != nil {
			return in, err
		}
		in.Format = isa.FormatR
		var e error
		if in.RS, e = reg(ops[0]); e != nil {
			return in, e
		}

	case clsJALR:
		in.Format = isa.FormatR
		switch len(ops) {
		case 1:
			in.RD = 31
			rs, e := reg(ops[0])
			if e != nil {
				return in, e
			}
			in.RS = rs
		case 2:
			rd, e := reg(ops[0])
			if e != nil {
				return in, e
			}
			rs, e := reg(ops[1])
			if e != nil {
				return in, e
			}
			in.RD, in.RS = rd, rs
		default:
			return in, fmt.Errorf("JALR expects 1 or 2 operands, got %d", len(ops))
		}

	case clsLoadStore:
		if err := need(2); err != nil {
			return in, err
		}
		in.Format = isa.FormatI
		rt, e := reg(ops[0])
		if e != nil {
			return in, e
		}
		in.RT = rt
		offExpr, baseTok, e := splitOffsetBase(ops[1])
		if e != nil {
			return in, e
		}
		rs, e := reg(baseTok)
		if e != nil {
			return in, e
		}
		in.RS = rs
		v, e := eval(offExpr)
		if e != nil {
			return in, e
		}
		in.ImmSExt = int32(int16(v))
		in.ImmZExt = uint32(int16(v)) & 0xFFFF

	case clsBranch2:
		if err := need(3); err != nil {
			return in, err
		}
		in.Format = isa.FormatI
		var e error
		if in.RS, e = reg(ops[0]); e != nil {
			return in, e
		}
		if in.RT, e = reg(ops[1]); e != nil {
			return in, e
		}
		target, e := eval(ops[2])
		if e != nil {
			return in, e
		}
		disp, e := branchDisplacement(target, addr)
		if e != nil {
			return in, e
		}
		in.ImmZExt = disp

	case clsBranch1:
		if err := need(2); err != nil {
			return in, err
		}
		in.Format = isa.FormatI
		var e error
		if in.RS, e = reg(ops[0]); e != nil {
			return in, e
		}
		target, e := eval(ops[1])
		if e != nil {
			return in, e
		}
		disp, e := branchDisplacement(target, addr)
		if e != nil {
			return in, e
		}
		in.ImmZExt = disp

	case clsJump:
		if err := need(1); err != nil {
			return in, err
		}
		in.Format = isa.FormatJ
		target, e := eval(ops[0])
		if e != nil {
			return in, e
		}
		if target&3 != 0 {
			return in, fmt.Errorf("jump target 0x%x is not word-aligned", target)
		}
		in.JIndex = (target >> 2) & 0x03FFFFFF

	case clsArithImm:
		if err := need(3); err != nil {
			return in, err
		}
		in.Format = isa.FormatI
		var e error
		if in.RT, e = reg(ops[0]); e != nil {
			return in, e
		}
		if in.RS, e = reg(ops[1]); e != nil {
			return in, e
		}
		v, e := eval(ops[2])
		if e != nil {
			return in, e
		}
		in.ImmSExt = int32(int16(v))
		in.ImmZExt = v & 0xFFFF

	case clsLUI:
		if err := need(2); err != nil {
			return in, err
		}
		in.Format = isa.FormatI
		var e error
		if in.RT, e = reg(ops[0]); e != nil {
			return in, e
		}
		v, e := eval(ops[1])
		if e != nil {
			return in, e
		}
		in.ImmZExt = v & 0xFFFF

	case clsCP0:
		if err := need(2); err != nil {
			return in, err
		}
		in.Format = isa.FormatR
		rt, e := reg(ops[0])
		if e != nil {
			return in, e
		}
		in.RT = rt
		sel := strings.TrimPrefix(strings.TrimSpace(ops[1]), "$")
		v, e := eval(sel)
		if e != nil {
			return in, e
		}
		in.RD = uint8(v & 0x1F)

	default:
		return in, fmt.Errorf("internal: unhandled operand class for %s", info.mn)
	}
	return in, nil
}

// branchDisplacement converts an absolute target into the signed
// word-granular offset from the delay slot (addr+4), MIPS-I's
// PC-relative branch convention, masked to the instruction's 16-bit
// immediate field.
func branchDisplacement(target, addr uint32) (uint32, error) {
	if target&3 != 0 {
		return 0, fmt.Errorf("branch target 0x%x is not word-aligned", target)
	}
	delta := int64(int32(target-(addr+4))) / 4
	if delta < -32768 || delta > 32767 {
		return 0, fmt.Errorf("branch target 0x%x is out of range", target)
	}
	return uint32(int16(delta)) & 0xFFFF, nil
}
