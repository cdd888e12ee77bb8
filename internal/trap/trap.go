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

// Package trap defines the CPU exception kinds a core can raise and the
// Cause codes latched into CP0 on commit.
package trap

import "fmt"

// Kind identifies a class of CPU trap.
type Kind uint8

const (
	UnsupportedInstruction Kind = iota // (I) decoder rejected the word.
	UnsupportedALU                     // (A) an ALU case reached an impossible operand combination.
	Overflow                           // (O) signed add/sub overflow on a trapping variant.
	UnalignedJump                      // (J) PC target not aligned to a word.
	UnalignedAccess                    // (J) data address not aligned to its width.
	BusError                           // access to an unmapped address.
)

// Cause codes mirror MIPS-I ExcCode values for the subset this core models.
const (
	CauseInt    uint32 = 0  // Interrupt.
	CauseAdEL   uint32 = 4  // Address error, load/fetch.
	CauseAdES   uint32 = 5  // Address error, store.
	CauseIBE    uint32 = 6  // Bus error on fetch.
	CauseDBE    uint32 = 7  // Bus error on data access.
	CauseSys    uint32 = 8  // SYSCALL.
	CauseBp     uint32 = 9  // BREAK.
	CauseRI     uint32 = 10 // Reserved (unsupported) instruction.
	CauseOv     uint32 = 12 // Arithmetic overflow.
)

// Trap is a CPU exception. EPC is the faulting instruction's address.
type Trap struct {
	Kind  Kind
	Cause uint32
	EPC   uint32
	BadVA uint32 // valid for address-error traps only.
	msg   string
}

func (t *Trap) Error() string {
	return fmt.Sprintf("%s at pc=0x%08x: %s", t.Kind, t.EPC, t.msg)
}

func (k Kind) String() string {
	switch k {
	case UnsupportedInstruction:
		return "unsupported-instruction"
	case UnsupportedALU:
		return "unsupported-alu"
	case Overflow:
		return "overflow"
	case UnalignedJump:
		return "unaligned-jump"
	case UnalignedAccess:
		return "unaligned-access"
	case BusError:
		return "bus-error"
	default:
		return "unknown-trap"
	}
}

// Letter is the single-character code used by --fail-match (I/A/O/J).
func (k Kind) Letter() byte {
	switch k {
	case UnsupportedInstruction:
		return 'I'
	case UnsupportedALU:
		return 'A'
	case Overflow:
		return 'O'
	case UnalignedJump, UnalignedAccess:
		return 'J'
	default:
		return '?'
	}
}

// New builds a Trap for the given kind, faulting PC, and message.
func New(kind Kind, pc uint32, msg string) *Trap {
	cause := CauseRI
	switch kind {
	case UnsupportedALU:
		cause = CauseRI
	case Overflow:
		cause = CauseOv
	case UnalignedJump, UnalignedAccess:
		cause = CauseAdEL
	case BusError:
		cause = CauseDBE
	}
	return &Trap{Kind: kind, Cause: cause, EPC: pc, msg: msg}
}

// NewAddr builds an address-error Trap carrying the bad virtual address.
func NewAddr(kind Kind, pc, badVA uint32, store bool, msg string) *Trap {
	t := New(kind, pc, msg)
	t.BadVA = badVA
	if store {
		t.Cause = CauseAdES
	}
	return t
}
