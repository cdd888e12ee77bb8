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

// Package core implements the two execution engines: a single-cycle core
// and a five-stage pipelined core, sharing one ALU and one memory port.
package core

import "github.com/mipssim/mips32/internal/isa"

// aluResult is what the ALU computes for one instruction: the value to
// write back (if any) and whether a trapping overflow occurred.
type aluResult struct {
	value    uint32
	overflow bool
}

// execALU evaluates the non-memory, non-branch effect of in given its two
// operand values (already read from the register file or forwarded). hi/lo
// are read for MFHI/MFLO and written for MULT/DIV/MTHI/MTLO via the out
// parameters.
func execALU(in isa.Instruction, rsVal, rtVal, hi, lo uint32) (res aluResult, newHI, newLO uint32, writeHL bool, unsupported bool) {
	newHI, newLO = hi, lo
	switch in.Mn {
	case isa.MADD:
		sum := rsVal + rtVal
		if overflowsAdd(rsVal, rtVal, sum) {
			return aluResult{overflow: true}, hi, lo, false, false
		}
		return aluResult{value: sum}, hi, lo, false, false
	case isa.MADDU:
		return aluResult{value: rsVal + rtVal}, hi, lo, false, false
	case isa.MSUB:
		diff := rsVal - rtVal
		if overflowsSub(rsVal, rtVal, diff) {
			return aluResult{overflow: true}, hi, lo, false, false
		}
		return aluResult{value: diff}, hi, lo, false, false
	case isa.MSUBU:
		return aluResult{value: rsVal - rtVal}, hi, lo, false, false
	case isa.MAND:
		return aluResult{value: rsVal & rtVal}, hi, lo, false, false
	case isa.MOR:
		return aluResult{value: rsVal | rtVal}, hi, lo, false, false
	case isa.MXOR:
		return aluResult{value: rsVal ^ rtVal}, hi, lo, false, false
	case isa.MNOR:
		return aluResult{value: ^(rsVal | rtVal)}, hi, lo, false, false
	case isa.MSLT:
		if int32(rsVal) < int32(rtVal) {
			return aluResult{value: 1}, hi, lo, false, false
		}
		return aluResult{value: 0}, hi, lo, false, false
	case isa.MSLTU:
		if rsVal < rtVal {
			return aluResult{value: 1}, hi, lo, false, false
		}
		return aluResult{value: 0}, hi, lo, false, false
	case isa.MSLL:
		return aluResult{value: rtVal << in.Shamt}, hi, lo, false, false
	case isa.MSRL:
		return aluResult{value: rtVal >> in.Shamt}, hi, lo, false, false
	case isa.MSRA:
		return aluResult{value: uint32(int32(rtVal) >> in.Shamt)}, hi, lo, false, false
	case isa.MSLLV:
		return aluResult{value: rtVal << (rsVal & 0x1F)}, hi, lo, false, false
	case isa.MSRLV:
		return aluResult{value: rtVal >> (rsVal & 0x1F)}, hi, lo, false, false
	case isa.MSRAV:
		return aluResult{value: uint32(int32(rtVal) >> (rsVal & 0x1F))}, hi, lo, false, false
	case isa.MMULT:
		p := int64(int32(rsVal)) * int64(int32(rtVal))
		return aluResult{}, uint32(p >> 32), uint32(p), true, false
	case isa.MMULTU:
		p := uint64(rsVal) * uint64(rtVal)
		return aluResult{}, uint32(p >> 32), uint32(p), true, false
	case isa.MDIV:
		if rtVal == 0 {
			return aluResult{}, hi, lo, false, true
		}
		q := int32(rsVal) / int32(rtVal)
		r := int32(rsVal) % int32(rtVal)
		return aluResult{}, uint32(r), uint32(q), true, false
	case isa.MDIVU:
		if rtVal == 0 {
			return aluResult{}, hi, lo, false, true
		}
		return aluResult{}, rsVal % rtVal, rsVal / rtVal, true, false
	case isa.MMFHI:
		return aluResult{value: hi}, hi, lo, false, false
	case isa.MMFLO:
		return aluResult{value: lo}, hi, lo, false, false
	case isa.MMTHI:
		return aluResult{}, rsVal, lo, true, false
	case isa.MMTLO:
		return aluResult{}, hi, rsVal, true, false
	case isa.MADDI:
		sum := rsVal + uint32(in.ImmSExt)
		if overflowsAdd(rsVal, uint32(in.ImmSExt), sum) {
			return aluResult{overflow: true}, hi, lo, false, false
		}
		return aluResult{value: sum}, hi, lo, false, false
	case isa.MADDIU:
		return aluResult{value: rsVal + uint32(in.ImmSExt)}, hi, lo, false, false
	case isa.MANDI:
		return aluResult{value: rsVal & in.ImmZExt}, hi, lo, false, false
	case isa.MORI:
		return aluResult{value: rsVal | in.ImmZExt}, hi, lo, false, false
	case isa.MXORI:
		return aluResult{value: rsVal ^ in.ImmZExt}, hi, lo, false, false
	case isa.MLUI:
		return aluResult{value: in.ImmZExt << 16}, hi, lo, false, false
	case isa.MSLTI:
		if int32(rsVal) < in.ImmSExt {
			return aluResult{value: 1}, hi, lo, false, false
		}
		return aluResult{value: 0}, hi, lo, false, false
	case isa.MSLTIU:
		if rsVal < uint32(in.ImmSExt) {
			return aluResult{value: 1}, hi, lo, false, false
		}
		return aluResult{value: 0}, hi, lo, false, false
	case isa.MJALR, isa.MLB, isa.MLBU, isa.MLH, isa.MLHU, isa.MLW,
		isa.MSB, isa.MSH, isa.MSW, isa.MJ, isa.MJAL, isa.MJR,
		isa.MBEQ, isa.MBNE, isa.MBLEZ, isa.MBGTZ, isa.MBLTZ, isa.MBGEZ,
		isa.MBLTZAL, isa.MBGEZAL, isa.MSYSCALL, isa.MBREAK, isa.MMFC0, isa.MMTC0:
		// Handled outside the ALU (memory, control flow, CP0); not an
		// ALU fault for the ALU to see these.
		return aluResult{}, hi, lo, false, false
	default:
		return aluResult{}, hi, lo, false, true
	}
}

func overflowsAdd(a, b, sum uint32) bool {
	signA, signB, signSum := a>>31, b>>31, sum>>31
	return signA == signB && signSum != signA
}

func overflowsSub(a, b, diff uint32) bool {
	signA, signB, signDiff := a>>31, b>>31, diff>>31
	return signA != signB && signDiff != signA
}
