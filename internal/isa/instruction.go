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

// RelocKind identifies how an assembler-emitted word's immediate/target
// field should be patched once its symbol resolves.
type RelocKind uint8

const (
	RelNone     RelocKind = iota
	RelHi16               // upper 16 bits of a 32-bit symbol value (LUI half of LA).
	RelLo16               // lower 16 bits of a 32-bit symbol value (ORI/ADDI half).
	RelWord                // whole-word absolute value (.word sym).
	RelJTarget             // 26-bit jump index, (value>>2)&0x03ffffff.
	RelBranchPC            // 16-bit branch displacement, (value-(pc+4))>>2.
)

// Relocation is a symbol reference attached to an instruction. Nothing in
// this module creates one: the assembler resolves every operand before
// encoding.
type Relocation struct {
	Symbol string
	Kind   RelocKind
}

// Instruction is the decoded form of one 32-bit machine word: opcode
// class, function code, register indices, shift amount, both sign- and
// zero-extended interpretations of the 16-bit immediate, the raw jump
// index, the original encoded word, and an optional assembler relocation.
//
// Decode is pure and deterministic over Word alone; Reloc is never set by
// Decode, nor by the assembler.
type Instruction struct {
	Word   uint32
	Mn     Mnemonic
	Format Format

	Opcode uint8
	Funct  uint8

	RS, RT, RD uint8
	Shamt      uint8

	ImmZExt uint32 // zero-extended 16-bit immediate.
	ImmSExt int32  // sign-extended 16-bit immediate.

	JIndex uint32 // 26-bit index field, valid for J/JAL only.

	Reloc *Relocation
}

// IsBranch reports whether the instruction is a conditional or
// unconditional PC-relative branch (not J/JAL/JR/JALR).
func (in *Instruction) IsBranch() bool {
	switch in.Mn {
	case MBEQ, MBNE, MBLEZ, MBGTZ, MBLTZ, MBGEZ, MBLTZAL, MBGEZAL:
		return true
	default:
		return false
	}
}

// IsJump reports whether the instruction unconditionally transfers
// control via a jump (register or immediate target).
func (in *Instruction) IsJump() bool {
	switch in.Mn {
	case MJ, MJAL, MJR, MJALR:
		return true
	default:
		return false
	}
}

// IsLoad/IsStore classify memory-referencing instructions.
func (in *Instruction) IsLoad() bool {
	switch in.Mn {
	case MLB, MLBU, MLH, MLHU, MLW:
		return true
	default:
		return false
	}
}

func (in *Instruction) IsStore() bool {
	switch in.Mn {
	case MSB, MSH, MSW:
		return true
	default:
		return false
	}
}

// WritesGP reports whether the instruction writes a general-purpose
// register, and which one.
func (in *Instruction) WritesGP() (reg uint8, ok bool) {
	switch in.Mn {
	case MADD, MADDU, MSUB, MSUBU, MAND, MOR, MXOR, MNOR, MSLT, MSLTU,
		MSLL, MSRL, MSRA, MSLLV, MSRLV, MSRAV, MJALR:
		return in.RD, true
	case MMFHI, MMFLO, MLB, MLBU, MLH, MLHU, MLW,
		MADDI, MADDIU, MANDI, MORI, MXORI, MLUI, MSLTI, MSLTIU, MMFC0:
		return in.RT, true
	case MJAL, MBLTZAL, MBGEZAL:
		return 31, true
	default:
		return 0, false
	}
}

// Canonical NOP: SLL $0, $0, 0.
var NOP = Instruction{Word: 0, Mn: MSLL, Format: FormatR, Opcode: OpSPECIAL, Funct: FnSLL}

// IsNOP reports whether the instruction is the canonical NOP. Pipeline
// bubbles are empty latches (Valid == false), not NOPs.
func (in *Instruction) IsNOP() bool {
	return in.Mn == MSLL && in.RD == 0 && in.RT == 0 && in.Shamt == 0
}
