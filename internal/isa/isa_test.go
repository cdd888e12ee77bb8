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

import "testing"

// Every supported instruction must satisfy decode(encode(x)) == x.
func TestDecodeEncodeRoundTrip(t *testing.T) {
	words := []uint32{
		word(OpSPECIAL, 1, 2, 3, 0, FnADD),
		word(OpSPECIAL, 1, 2, 3, 0, FnADDU),
		word(OpSPECIAL, 1, 2, 3, 0, FnSUB),
		word(OpSPECIAL, 1, 2, 3, 0, FnSUBU),
		word(OpSPECIAL, 1, 2, 3, 0, FnAND),
		word(OpSPECIAL, 1, 2, 3, 0, FnOR),
		word(OpSPECIAL, 1, 2, 3, 0, FnXOR),
		word(OpSPECIAL, 1, 2, 3, 0, FnNOR),
		word(OpSPECIAL, 1, 2, 3, 0, FnSLT),
		word(OpSPECIAL, 1, 2, 3, 0, FnSLTU),
		word(OpSPECIAL, 0, 2, 3, 7, FnSLL),
		word(OpSPECIAL, 0, 2, 3, 7, FnSRL),
		word(OpSPECIAL, 0, 2, 3, 7, FnSRA),
		word(OpSPECIAL, 1, 2, 3, 0, FnSLLV),
		word(OpSPECIAL, 1, 2, 3, 0, FnSRLV),
		word(OpSPECIAL, 1, 2, 3, 0, FnSRAV),
		word(OpSPECIAL, 1, 2, 0, 0, FnMULT),
		word(OpSPECIAL, 1, 2, 0, 0, FnMULTU),
		word(OpSPECIAL, 1, 2, 0, 0, FnDIV),
		word(OpSPECIAL, 1, 2, 0, 0, FnDIVU),
		word(OpSPECIAL, 0, 0, 4, 0, FnMFHI),
		word(OpSPECIAL, 0, 0, 4, 0, FnMFLO),
		word(OpSPECIAL, 1, 0, 0, 0, FnMTHI),
		word(OpSPECIAL, 1, 0, 0, 0, FnMTLO),
		word(OpSPECIAL, 1, 0, 0, 0, FnJR),
		word(OpSPECIAL, 1, 0, 31, 0, FnJALR),
		word(OpSPECIAL, 0, 0, 0, 0, FnSYSCALL),
		word(OpSPECIAL, 0, 0, 0, 0, FnBREAK),
		word(OpREGIMM, 1, RtBLTZ, 0, 0, 0) | 0x1234,
		word(OpREGIMM, 1, RtBGEZ, 0, 0, 0) | 0x1234,
		word(OpREGIMM, 1, RtBLTZAL, 0, 0, 0) | 0x1234,
		word(OpREGIMM, 1, RtBGEZAL, 0, 0, 0) | 0x1234,
		(uint32(OpJ) << 26) | 0x0001234,
		(uint32(OpJAL) << 26) | 0x0001234,
		(uint32(OpBEQ) << 26) | (1 << 21) | (2 << 16) | 0xFFFE,
		(uint32(OpBNE) << 26) | (1 << 21) | (2 << 16) | 0x0010,
		(uint32(OpBLEZ) << 26) | (1 << 21) | 0x0010,
		(uint32(OpBGTZ) << 26) | (1 << 21) | 0x0010,
		(uint32(OpADDI) << 26) | (1 << 21) | (2 << 16) | 0xFFF0,
		(uint32(OpADDIU) << 26) | (1 << 21) | (2 << 16) | 0x0010,
		(uint32(OpSLTI) << 26) | (1 << 21) | (2 << 16) | 0x0010,
		(uint32(OpSLTIU) << 26) | (1 << 21) | (2 << 16) | 0x0010,
		(uint32(OpANDI) << 26) | (1 << 21) | (2 << 16) | 0x00FF,
		(uint32(OpORI) << 26) | (1 << 21) | (2 << 16) | 0x00FF,
		(uint32(OpXORI) << 26) | (1 << 21) | (2 << 16) | 0x00FF,
		(uint32(OpLUI) << 26) | (2 << 16) | 0xBEEF,
		(uint32(OpLB) << 26) | (1 << 21) | (2 << 16) | 0x0004,
		(uint32(OpLBU) << 26) | (1 << 21) | (2 << 16) | 0x0004,
		(uint32(OpLH) << 26) | (1 << 21) | (2 << 16) | 0x0004,
		(uint32(OpLHU) << 26) | (1 << 21) | (2 << 16) | 0x0004,
		(uint32(OpLW) << 26) | (1 << 21) | (2 << 16) | 0x0004,
		(uint32(OpSB) << 26) | (1 << 21) | (2 << 16) | 0x0004,
		(uint32(OpSH) << 26) | (1 << 21) | (2 << 16) | 0x0004,
		(uint32(OpSW) << 26) | (1 << 21) | (2 << 16) | 0x0004,
		word(OpCOP0, CopRsMF, 3, 12, 0, 0),
		word(OpCOP0, CopRsMT, 3, 12, 0, 0),
	}

	for _, w := range words {
		in, err := Decode(w)
		if err != nil {
			t.Fatalf("decode(0x%08x) failed: %v", w, err)
		}
		got, err := Encode(in)
		if err != nil {
			t.Fatalf("encode(decode(0x%08x)) failed: %v", w, err)
		}
		if got != w {
			t.Errorf("round trip broken: word=0x%08x mnemonic=%s got=0x%08x", w, in.Mn, got)
		}
	}
}

func TestDecodeUnsupported(t *testing.T) {
	// Opcode 0x3F is not assigned to any instruction in this subset.
	_, err := Decode(uint32(0x3F) << 26)
	if err == nil {
		t.Fatal("expected unsupported-instruction error for opcode 0x3f")
	}
}

func TestDisassembleRoundTripsMnemonic(t *testing.T) {
	w := word(OpSPECIAL, 1, 2, 3, 0, FnADD)
	in, err := Decode(w)
	if err != nil {
		t.Fatal(err)
	}
	got := Disassemble(in, 0x1000)
	want := "ADD $3, $1, $2"
	if got != want {
		t.Errorf("Disassemble() = %q, want %q", got, want)
	}
}
