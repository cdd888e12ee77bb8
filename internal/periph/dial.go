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

package periph

import "github.com/mipssim/mips32/internal/device"

const (
	dialOffDial = 0
	dialOffLED  = 1
	dialSize    = 2
)

// Dial is the classic front-panel peripheral: a read-only dial register
// the host sets externally, and a read/write LED register the program
// drives. Neither side has any latency or handshake.
type Dial struct {
	dial uint8
	led  uint8
}

// NewDial creates a dial/LED register with the dial at rest (zero).
func NewDial() *Dial { return &Dial{} }

func (d *Dial) Name() string { return "dial" }
func (d *Dial) Size() uint32 { return dialSize }

// SetDial sets the externally-supplied dial value.
func (d *Dial) SetDial(v uint8) { d.dial = v }

// LED returns the program's current LED output.
func (d *Dial) LED() uint8 { return d.led }

func (d *Dial) ReadByte(addr uint32, src device.Source) (uint8, error) {
	switch addr {
	case dialOffDial:
		return d.dial, nil
	case dialOffLED:
		return d.led, nil
	default:
		return 0, nil
	}
}

func (d *Dial) WriteByte(addr uint32, v uint8, src device.Source) error {
	if addr == dialOffLED {
		d.led = v
	}
	return nil
}
