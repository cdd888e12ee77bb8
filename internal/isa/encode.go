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

var funcOf = map[Mnemonic]uint8{
	MSLL: FnSLL, MSRL: FnSRL, MSRA: FnSRA,
	MSLLV: FnSLLV, MSRLV: FnSRLV, MSRAV: FnSRAV,
	MJR: FnJR, MJALR: FnJALR,
	MSYSCALL: FnSYSCALL, MBREAK: FnBREAK,
	MMFHI: FnMFHI, MMFLO: FnMFLO, MMTHI: FnMTHI, MMTLO: FnMTLO,
	MMULT: FnMULT, MMULTU: FnMULTU, MDIV: FnDIV, MDIVU: FnDIVU,
	MADD: FnADD, MADDU: FnADDU, MSUB: FnSUB, MSUBU: FnSUBU,
	MAND: FnAND, MOR: FnOR, MXOR: FnXOR, MNOR: FnNOR,
	MSLT: FnSLT, MSLTU: FnSLTU,
}

var regimmRtOf = map[Mnemonic]uint8{
	MBLTZ: RtBLTZ, MBGEZ: RtBGEZ, MBLTZAL: RtBLTZAL, MBGEZAL: RtBGEZAL,
}

var opcodeOf = map[Mnemonic]uint8{
	MBEQ: OpBEQ, MBNE: OpBNE, MBLEZ: OpBLEZ, MBGTZ: OpBGTZ,
	MADDI: OpADDI, MADDIU: OpADDIU, MSLTI: OpSLTI, MSLTIU: OpSLTIU,
	MANDI: OpANDI, MORI: OpORI, MXORI: OpXORI, MLUI: OpLUI,
	MLB: OpLB, MLH: OpLH, MLW: OpLW, MLBU: OpLBU, MLHU: OpLHU,
	MSB: OpSB, MSH: OpSH, MSW: OpSW,
}

// Encode reconstructs the 32-bit machine word for an Instruction. For
// every Instruction produced by Decode, Encode(Decode(w)) == w; this is
// the decode/encode round-trip invariant the core guarantees.
func Encode(in Instruction) (uint32, error) {
	switch in.Format {
	case FormatR:
		if in.Mn == MMFC0 || in.Mn == MMTC0 {
			rs := uint8(CopRsMF)
			if in.Mn == MMTC0 {
				rs = CopRsMT
			}
			return word(OpCOP0, rs, in.RT, in.RD, 0, 0), nil
		}
		fn, ok := funcOf[in.Mn]
		if !ok {
			return 0, errUnsupported(in.Mn)
		}
		return word(OpSPECIAL, in.RS, in.RT, in.RD, in.Shamt, fn), nil

	case FormatJ:
		op := uint8(OpJ)
		if in.Mn == MJAL {
			op = OpJAL
		}
		return (uint32(op) << 26) | (in.JIndex & 0x03FFFFFF), nil

	case FormatI:
		if rt, ok := regimmRtOf[in.Mn]; ok {
			return word(OpREGIMM, in.RS, rt, 0, 0, 0) | in.ImmZExt, nil
		}
		op, ok := opcodeOf[in.Mn]
		if !ok {
			return 0, errUnsupported(in.Mn)
		}
		return (uint32(op) << 26) | (uint32(in.RS&0x1F) << 21) | (uint32(in.RT&0x1F) << 16) | in.ImmZExt, nil

	default:
		return 0, errUnsupported(in.Mn)
	}
}

func word(op, rs, rt, rd, shamt, funct uint8) uint32 {
	return (uint32(op&0x3F) << 26) |
		(uint32(rs&0x1F) << 21) |
		(uint32(rt&0x1F) << 16) |
		(uint32(rd&0x1F) << 11) |
		(uint32(shamt&0x1F) << 6) |
		uint32(funct&0x3F)
}

func errUnsupported(m Mnemonic) error {
	return &unsupportedEncodeError{m}
}

type unsupportedEncodeError struct{ m Mnemonic }

func (e *unsupportedEncodeError) Error() string {
	return "isa: cannot encode mnemonic " + e.m.String()
}
