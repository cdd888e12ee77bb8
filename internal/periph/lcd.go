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
	lcdOffCtrl = 0
	lcdOffData = 1
	lcdHeader  = 2 // bytes before the character buffer starts.

	lcdCmdClear = 0
	lcdCmdHome  = 1
)

// LCD is a fixed-size text display. CTRL accepts clear/home commands,
// DATA writes the character under the cursor and advances it (on to the
// next row at the end of a row, back to the first cell after the last
// one), and the character buffer itself is readable at
// offsets >= lcdHeader for dumps and debugger probes.
type LCD struct {
	rows, cols int
	buf        []byte
	cursor     int
}

// NewLCD creates a rows x cols text display, initially blank (spaces).
func NewLCD(rows, cols int) *LCD {
	l := &LCD{rows: rows, cols: cols, buf: make([]byte, rows*cols)}
	for i := range l.buf {
		l.buf[i] = ' '
	}
	return l
}

func (l *LCD) Name() string { return "lcd" }
func (l *LCD) Size() uint32 { return uint32(lcdHeader + len(l.buf)) }

// Lines returns the display content as one string per row.
func (l *LCD) Lines() []string {
	out := make([]string, l.rows)
	for r := 0; r < l.rows; r++ {
		out[r] = string(l.buf[r*l.cols : (r+1)*l.cols])
	}
	return out
}

func (l *LCD) ReadByte(addr uint32, src device.Source) (uint8, error) {
	switch {
	case addr == lcdOffCtrl:
		return 0, nil
	case addr == lcdOffData:
		if l.cursor < len(l.buf) {
			return l.buf[l.cursor], nil
		}
		return ' ', nil
	case int(addr)-lcdHeader < len(l.buf):
		return l.buf[int(addr)-lcdHeader], nil
	default:
		return 0, nil
	}
}

func (l *LCD) WriteByte(addr uint32, v uint8, src device.Source) error {
	switch addr {
	case lcdOffCtrl:
		switch v {
		case lcdCmdClear:
			for i := range l.buf {
				l.buf[i] = ' '
			}
			l.cursor = 0
		case lcdCmdHome:
			l.cursor = 0
		}
	case lcdOffData:
		if l.cursor < len(l.buf) {
			l.buf[l.cursor] = v
		}
		l.cursor++
		if l.cursor >= len(l.buf) {
			l.cursor = 0
		}
	}
	return nil
}
