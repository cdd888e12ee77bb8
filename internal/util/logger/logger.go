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

// Package logger is a minimal slog.Handler that tees run log lines (the
// machine facade's trap diagnostics) to an optional log file and to
// stderr: records above debug level always, debug-level records only in
// debug mode. Grounded on
// the teacher's util/logger wrapper: same tee-to-file/tee-to-stderr
// split and the same embedded stdlib handler used only for level
// filtering, reworked to print each record's attributes as `key=value`
// pairs instead of bare values, since this simulator's attributes
// (trap kind, PC, address) are meaningless without their names attached.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Handler formats records as a single line of plain text and writes it
// to an optional file and, when debug is set (or the record is above
// debug level), to stderr.
type Handler struct {
	out   io.Writer
	level slog.Handler // embedded only for its Enabled/WithAttrs/WithGroup level logic.
	mu    *sync.Mutex
	debug bool
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.level.Enabled(ctx, level)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{out: h.out, level: h.level.WithAttrs(attrs), mu: h.mu, debug: h.debug}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{out: h.out, level: h.level.WithGroup(name), mu: h.mu, debug: h.debug}
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s %s", r.Time.Format("2006/01/02 15:04:05"), r.Level, r.Message)
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%s", a.Key, a.Value)
		return true
	})
	b.WriteByte('\n')
	line := []byte(b.String())

	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.out != nil {
		_, err = h.out.Write(line)
	}
	if h.debug || r.Level > slog.LevelDebug {
		_, err = os.Stderr.Write(line)
	}
	return err
}

// SetDebug toggles whether debug-level records also go to stderr.
func (h *Handler) SetDebug(debug *bool) {
	h.debug = *debug
}

// NewHandler builds a Handler that tees to file (nil disables the file
// sink), mirrors records above debug level to stderr, and mirrors debug
// records there too when *debug is true.
func NewHandler(file io.Writer, opts *slog.HandlerOptions, debug *bool) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &Handler{
		out:   file,
		level: slog.NewTextHandler(file, &slog.HandlerOptions{Level: opts.Level, AddSource: opts.AddSource}),
		mu:    &sync.Mutex{},
		debug: *debug,
	}
}
