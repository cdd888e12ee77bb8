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

package isa

import "fmt"

// operandShape drives how Disassemble formats an instruction's operands;
// grounded on the teacher disassembler's opcode->{name,type,flags} map.
type operandShape uint8

const (
	shapeRRR operandShape = iota // rd, rs, rt
	shapeRRI                     // rt, rs, imm
	shapeRI                      // rt, imm        (LUI)
	shapeShift                   // rd, rt, shamt
	shapeShiftV                  // rd, rt, rs
	shapeMemRI                   // rt, imm(rs)
	shapeBranch2                 // rs, rt, offset
	shapeBranch1                 // rs, offset
	shapeJump                    // target
	shapeJR                      // rs
	shapeJALR                    // rd, rs
	shapeRR                      // rd, rs
	shapeR                       // rd
	shapeNone
	shapeCop // rt, rd (MFC0/MTC0)
)

var shapeOf = map[Mnemonic]operandShape{
	MADD: shapeRRR, MADDU: shapeRRR, MSUB: shapeRRR, MSUBU: shapeRRR,
	MAND: shapeRRR, MOR: shapeRRR, MXOR: shapeRRR, MNOR: shapeRRR,
	MSLT: shapeRRR, MSLTU: shapeRRR,
	MSLL: shapeShift, MSRL: shapeShift, MSRA: shapeShift,
	MSLLV: shapeShiftV, MSRLV: shapeShiftV, MSRAV: shapeShiftV,
	MMULT: shapeRR, MMULTU: shapeRR, MDIV: shapeRR, MDIVU: shapeRR,
	MMFHI: shapeR, MMFLO: shapeR, MMTHI: shapeJR, MMTLO: shapeJR,
	MLB: shapeMemRI, MLBU: shapeMemRI, MLH: shapeMemRI, MLHU: shapeMemRI, MLW: shapeMemRI,
	MSB: shapeMemRI, MSH: shapeMemRI, MSW: shapeMemRI,
	MBEQ: shapeBranch2, MBNE: shapeBranch2,
	MBLEZ: shapeBranch1, MBGTZ: shapeBranch1,
	MBLTZ: shapeBranch1, MBGEZ: shapeBranch1, MBLTZAL: shapeBranch1, MBGEZAL: shapeBranch1,
	MJ: shapeJump, MJAL: shapeJump, MJR: shapeJR, MJALR: shapeJALR,
	MADDI: shapeRRI, MADDIU: shapeRRI, MANDI: shapeRRI, MORI: shapeRRI, MXORI: shapeRRI,
	MLUI: shapeRI, MSLTI: shapeRRI, MSLTIU: shapeRRI,
	MSYSCALL: shapeNone, MBREAK: shapeNone,
	MMFC0: shapeCop, MMTC0: shapeCop,
}

// Disassemble renders an Instruction as assembler text. pc is the
// instruction's own address, used only to turn a branch/jump field into
// the absolute target printed as its operand; it affects nothing else.
func Disassemble(in Instruction, pc uint32) string {
	name := in.Mn.String()
	switch shapeOf[in.Mn] {
	case shapeRRR:
		return fmt.Sprintf("%s $%d, $%d, $%d", name, in.RD, in.RS, in.RT)
	case shapeRRI:
		return fmt.Sprintf("%s $%d, $%d, %d", name, in.RT, in.RS, in.ImmSExt)
	case shapeRI:
		return fmt.Sprintf("%s $%d, 0x%x", name, in.RT, in.ImmZExt)
	case shapeShift:
		return fmt.Sprintf("%s $%d, $%d, %d", name, in.RD, in.RT, in.Shamt)
	case shapeShiftV:
		return fmt.Sprintf("%s $%d, $%d, $%d", name, in.RD, in.RT, in.RS)
	case shapeMemRI:
		return fmt.Sprintf("%s $%d, %d($%d)", name, in.RT, in.ImmSExt, in.RS)
	case shapeBranch2:
		target := pc + 4 + uint32(in.ImmSExt*4)
		return fmt.Sprintf("%s $%d, $%d, 0x%x", name, in.RS, in.RT, target)
	case shapeBranch1:
		target := pc + 4 + uint32(in.ImmSExt*4)
		return fmt.Sprintf("%s $%d, 0x%x", name, in.RS, target)
	case shapeJump:
		target := ((pc + 4) & 0xF0000000) | (in.JIndex << 2)
		return fmt.Sprintf("%s 0x%x", name, target)
	case shapeJR:
		return fmt.Sprintf("%s $%d", name, in.RS)
	case shapeJALR:
		return fmt.Sprintf("%s $%d, $%d", name, in.RD, in.RS)
	case shapeRR:
		return fmt.Sprintf("%s $%d, $%d", name, in.RS, in.RT)
	case shapeR:
		return fmt.Sprintf("%s $%d", name, in.RD)
	case shapeCop:
		return fmt.Sprintf("%s $%d, $%d", name, in.RT, in.RD)
	case shapeNone:
		if in.ImmZExt != 0 {
			return fmt.Sprintf("%s 0x%x", name, in.ImmZExt)
		}
		return name
	default:
		return fmt.Sprintf("<unknown 0x%08x>", in.Word)
	}
}

// JumpTarget computes the absolute byte address of a J/JAL target given
// the instruction's own address.
func JumpTarget(in Instruction, pc uint32) uint32 {
	return ((pc + 4) & 0xF0000000) | (in.JIndex << 2)
}

// BranchTarget computes the absolute byte address of a branch's target
// given the instruction's own address.
func BranchTarget(in Instruction, pc uint32) uint32 {
	return uint32(int64(pc) + 4 + int64(in.ImmSExt)*4)
}
