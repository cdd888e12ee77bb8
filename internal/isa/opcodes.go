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

// Package isa is the instruction set model: primary/secondary opcode
// constants, the decoded instruction record, and the table-driven
// decoder/encoder/disassembler that operate on it.
package isa

// Primary opcode field (bits 31:26).
const (
	OpSPECIAL = 0x00
	OpREGIMM  = 0x01
	OpJ       = 0x02
	OpJAL     = 0x03
	OpBEQ     = 0x04
	OpBNE     = 0x05
	OpBLEZ    = 0x06
	OpBGTZ    = 0x07
	OpADDI    = 0x08
	OpADDIU   = 0x09
	OpSLTI    = 0x0A
	OpSLTIU   = 0x0B
	OpANDI    = 0x0C
	OpORI     = 0x0D
	OpXORI    = 0x0E
	OpLUI     = 0x0F
	OpCOP0    = 0x10
	OpLB      = 0x20
	OpLH      = 0x21
	OpLW      = 0x23
	OpLBU     = 0x24
	OpLHU     = 0x25
	OpSB      = 0x28
	OpSH      = 0x29
	OpSW      = 0x2B
)

// SPECIAL function field (bits 5:0), used when Opcode == OpSPECIAL.
const (
	FnSLL     = 0x00
	FnSRL     = 0x02
	FnSRA     = 0x03
	FnSLLV    = 0x04
	FnSRLV    = 0x06
	FnSRAV    = 0x07
	FnJR      = 0x08
	FnJALR    = 0x09
	FnSYSCALL = 0x0C
	FnBREAK   = 0x0D
	FnMFHI    = 0x10
	FnMTHI    = 0x11
	FnMFLO    = 0x12
	FnMTLO    = 0x13
	FnMULT    = 0x18
	FnMULTU   = 0x19
	FnDIV     = 0x1A
	FnDIVU    = 0x1B
	FnADD     = 0x20
	FnADDU    = 0x21
	FnSUB     = 0x22
	FnSUBU    = 0x23
	FnAND     = 0x24
	FnOR      = 0x25
	FnXOR     = 0x26
	FnNOR     = 0x27
	FnSLT     = 0x2A
	FnSLTU    = 0x2B
)

// REGIMM rt field, used when Opcode == OpREGIMM.
const (
	RtBLTZ   = 0x00
	RtBGEZ   = 0x01
	RtBLTZAL = 0x10
	RtBGEZAL = 0x11
)

// COP0 rs field, used when Opcode == OpCOP0.
const (
	CopRsMF = 0x00
	CopRsMT = 0x04
)

// Mnemonic names every instruction this core supports, R/I/J alike.
type Mnemonic uint8

const (
	MInvalid Mnemonic = iota
	MADD
	MADDU
	MSUB
	MSUBU
	MAND
	MOR
	MXOR
	MNOR
	MSLT
	MSLTU
	MSLL
	MSRL
	MSRA
	MSLLV
	MSRLV
	MSRAV
	MMULT
	MMULTU
	MDIV
	MDIVU
	MMFHI
	MMFLO
	MMTHI
	MMTLO
	MLB
	MLBU
	MLH
	MLHU
	MLW
	MSB
	MSH
	MSW
	MBEQ
	MBNE
	MBLEZ
	MBGTZ
	MBLTZ
	MBGEZ
	MBLTZAL
	MBGEZAL
	MJ
	MJAL
	MJR
	MJALR
	MADDI
	MADDIU
	MANDI
	MORI
	MXORI
	MLUI
	MSLTI
	MSLTIU
	MSYSCALL
	MBREAK
	MMFC0
	MMTC0
)

var mnemonicNames = map[Mnemonic]string{
	MADD: "ADD", MADDU: "ADDU", MSUB: "SUB", MSUBU: "SUBU",
	MAND: "AND", MOR: "OR", MXOR: "XOR", MNOR: "NOR",
	MSLT: "SLT", MSLTU: "SLTU",
	MSLL: "SLL", MSRL: "SRL", MSRA: "SRA",
	MSLLV: "SLLV", MSRLV: "SRLV", MSRAV: "SRAV",
	MMULT: "MULT", MMULTU: "MULTU", MDIV: "DIV", MDIVU: "DIVU",
	MMFHI: "MFHI", MMFLO: "MFLO", MMTHI: "MTHI", MMTLO: "MTLO",
	MLB: "LB", MLBU: "LBU", MLH: "LH", MLHU: "LHU", MLW: "LW",
	MSB: "SB", MSH: "SH", MSW: "SW",
	MBEQ: "BEQ", MBNE: "BNE", MBLEZ: "BLEZ", MBGTZ: "BGTZ",
	MBLTZ: "BLTZ", MBGEZ: "BGEZ", MBLTZAL: "BLTZAL", MBGEZAL: "BGEZAL",
	MJ: "J", MJAL: "JAL", MJR: "JR", MJALR: "JALR",
	MADDI: "ADDI", MADDIU: "ADDIU", MANDI: "ANDI", MORI: "ORI", MXORI: "XORI",
	MLUI: "LUI", MSLTI: "SLTI", MSLTIU: "SLTIU",
	MSYSCALL: "SYSCALL", MBREAK: "BREAK",
	MMFC0: "MFC0", MMTC0: "MTC0",
}

func (m Mnemonic) String() string {
	if s, ok := mnemonicNames[m]; ok {
		return s
	}
	return "INVALID"
}

// Format is the machine-word layout an instruction is encoded in.
type Format uint8

const (
	FormatR Format = iota
	FormatI
	FormatJ
)
