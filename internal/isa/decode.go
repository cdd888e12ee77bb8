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

// rFuncTable maps a SPECIAL function code to its mnemonic.
var rFuncTable = map[uint8]Mnemonic{
	FnSLL: MSLL, FnSRL: MSRL, FnSRA: MSRA,
	FnSLLV: MSLLV, FnSRLV: MSRLV, FnSRAV: MSRAV,
	FnJR: MJR, FnJALR: MJALR,
	FnSYSCALL: MSYSCALL, FnBREAK: MBREAK,
	FnMFHI: MMFHI, FnMFLO: MMFLO, FnMTHI: MMTHI, FnMTLO: MMTLO,
	FnMULT: MMULT, FnMULTU: MMULTU, FnDIV: MDIV, FnDIVU: MDIVU,
	FnADD: MADD, FnADDU: MADDU, FnSUB: MSUB, FnSUBU: MSUBU,
	FnAND: MAND, FnOR: MOR, FnXOR: MXOR, FnNOR: MNOR,
	FnSLT: MSLT, FnSLTU: MSLTU,
}

var regimmTable = map[uint8]Mnemonic{
	RtBLTZ: MBLTZ, RtBGEZ: MBGEZ, RtBLTZAL: MBLTZAL, RtBGEZAL: MBGEZAL,
}

var iOpTable = map[uint8]Mnemonic{
	OpBEQ: MBEQ, OpBNE: MBNE, OpBLEZ: MBLEZ, OpBGTZ: MBGTZ,
	OpADDI: MADDI, OpADDIU: MADDIU, OpSLTI: MSLTI, OpSLTIU: MSLTIU,
	OpANDI: MANDI, OpORI: MORI, OpXORI: MXORI, OpLUI: MLUI,
	OpLB: MLB, OpLH: MLH, OpLW: MLW, OpLBU: MLBU, OpLHU: MLHU,
	OpSB: MSB, OpSH: MSH, OpSW: MSW,
}

// Decode translates a 32-bit machine word into its Instruction record.
// Decode is pure: it never reads PC or any other external state, and the
// same word always decodes the same way. Unknown encodings return an
// error carrying the word so the caller can raise unsupported-instruction.
func Decode(word uint32) (Instruction, error) {
	in := Instruction{Word: word}
	in.Opcode = uint8((word >> 26) & 0x3F)
	in.RS = uint8((word >> 21) & 0x1F)
	in.RT = uint8((word >> 16) & 0x1F)
	imm16 := uint16(word & 0xFFFF)
	in.ImmZExt = uint32(imm16)
	in.ImmSExt = int32(int16(imm16))

	switch in.Opcode {
	case OpSPECIAL:
		in.Format = FormatR
		in.RD = uint8((word >> 11) & 0x1F)
		in.Shamt = uint8((word >> 6) & 0x1F)
		in.Funct = uint8(word & 0x3F)
		mn, ok := rFuncTable[in.Funct]
		if !ok {
			return in, fmt.Errorf("unsupported SPECIAL function 0x%02x in word 0x%08x", in.Funct, word)
		}
		in.Mn = mn
		return in, nil

	case OpREGIMM:
		in.Format = FormatI
		mn, ok := regimmTable[in.RT]
		if !ok {
			return in, fmt.Errorf("unsupported REGIMM rt 0x%02x in word 0x%08x", in.RT, word)
		}
		in.Mn = mn
		return in, nil

	case OpJ, OpJAL:
		in.Format = FormatJ
		in.JIndex = word & 0x03FFFFFF
		if in.Opcode == OpJ {
			in.Mn = MJ
		} else {
			in.Mn = MJAL
		}
		return in, nil

	case OpCOP0:
		in.Format = FormatR
		switch in.RS {
		case CopRsMF:
			in.Mn = MMFC0
		case CopRsMT:
			in.Mn = MMTC0
		default:
			return in, fmt.Errorf("unsupported COP0 rs 0x%02x in word 0x%08x", in.RS, word)
		}
		in.RD = uint8((word >> 11) & 0x1F)
		return in, nil

	default:
		in.Format = FormatI
		mn, ok := iOpTable[in.Opcode]
		if !ok {
			return in, fmt.Errorf("unsupported opcode 0x%02x in word 0x%08x", in.Opcode, word)
		}
		in.Mn = mn
		return in, nil
	}
}
