// Package console is the kernel's serialized text front end over the UART.
//
// Every byte-level operation runs under one spin lock, so output from
// concurrent writers never interleaves within a call. Lines end in CR LF.
package console

import (
	"io"
	"sync/atomic"
	"unicode/utf8"

	"sagehal-go/cpu"
	"sagehal-go/hal"
	"sagehal-go/klock"
	"sagehal-go/x/conv"
	"sagehal-go/x/fmtx"

	"golang.org/x/text/transform"
)

const (
	bs  = 0x08
	del = 0x7F
)

var _ io.Writer = (*Console)(nil)

type Console struct {
	mu     klock.Spin
	u      hal.UART
	buf    []byte // formatting scratch, guarded by mu
	halt   func()
	fatal  atomic.Bool
	skipLF bool // last line ended in CR; drop the LF of a CR LF pair
}

type Option func(*Console)

// WithHalt replaces cpu.Halt as the end of the fatal path.
func WithHalt(fn func()) Option { return func(c *Console) { c.halt = fn } }

func New(u hal.UART, opts ...Option) *Console {
	c := &Console{u: u, halt: cpu.Halt, buf: make([]byte, 0, 128)}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ---- Formatted output ----

// Printf writes formatted text without a line break.
func (c *Console) Printf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf = fmtx.Appendf(c.buf[:0], format, a...)
	c.send(c.buf)
}

// Printfln writes formatted text followed by CR LF.
func (c *Console) Printfln(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf = fmtx.Appendf(c.buf[:0], format, a...)
	c.buf = append(c.buf, '\r', '\n')
	c.send(c.buf)
}

// Logf writes one line "[tag] message".
func (c *Console) Logf(tag, format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf = append(c.buf[:0], '[')
	c.buf = append(c.buf, tag...)
	c.buf = append(c.buf, ']', ' ')
	c.buf = fmtx.Appendf(c.buf, format, a...)
	c.buf = append(c.buf, '\r', '\n')
	c.send(c.buf)
}

// send emits p byte by byte. Callers hold mu.
func (c *Console) send(p []byte) {
	for _, b := range p {
		c.u.Send(b)
	}
}

// ---- Locked pass-throughs ----

func (c *Console) Send(b byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.u.Send(b)
}

// Receive returns the next input byte, or false when none is waiting.
func (c *Console) Receive() (byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.u.Receive()
}

func (c *Console) WriteString(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.u.WriteString(s)
}

// Write sends p unchanged. It never fails.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.send(p)
	return len(p), nil
}

// Writer returns a writer that turns bare LF into CR LF, for output
// formatted with "\n".
func (c *Console) Writer() io.Writer { return transform.NewWriter(c, &crlf{}) }

// crlf is a transform.Transformer inserting CR before any LF not already
// preceded by one.
type crlf struct{ prevCR bool }

func (t *crlf) Reset() { t.prevCR = false }

func (t *crlf) Transform(dst, src []byte, _ bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		b := src[nSrc]
		need := 1
		if b == '\n' && !t.prevCR {
			need = 2
		}
		if nDst+need > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		if need == 2 {
			dst[nDst] = '\r'
			nDst++
		}
		dst[nDst] = b
		nDst++
		nSrc++
		t.prevCR = b == '\r'
	}
	return nDst, nSrc, nil
}

// ---- Line input ----

// ReadLine blocks until CR or LF and returns the number of bytes stored in
// buf. Printable input is echoed; BS and DEL erase the last character on
// screen with BS, space, BS. Input past len(buf) is dropped.
func (c *Console) ReadLine(buf []byte) int {
	n := 0
	for {
		b, ok := c.Receive()
		if !ok {
			cpu.Relax()
			continue
		}
		if b == '\n' && c.skipLF {
			c.skipLF = false
			continue
		}
		c.skipLF = false
		switch {
		case b == '\r' || b == '\n':
			c.skipLF = b == '\r'
			c.WriteString("\r\n")
			return n
		case b == bs || b == del:
			if n > 0 {
				n--
				c.WriteString("\b \b")
			}
		case b >= ' ' && b <= '~':
			if n < len(buf) {
				buf[n] = b
				n++
				c.Send(b)
			}
		}
	}
}

// ---- Fatal path ----

const fatalLine = 160

// Fatal prints "KERNEL PANIC: msg" as one locked write and halts. A nested
// call, from a fault inside the fatal path itself, halts without printing.
// Nothing here allocates.
func (c *Console) Fatal(msg string) {
	if c.fatal.Swap(true) {
		c.halt()
		return
	}
	var line [fatalLine]byte
	b := append(line[:0], "KERNEL PANIC: "...)
	if room := fatalLine - len(b) - 2; len(msg) > room {
		// cut on a rune boundary
		for room > 0 && !utf8.RuneStart(msg[room]) {
			room--
		}
		msg = msg[:room]
	}
	b = append(b, msg...)
	b = append(b, '\r', '\n')
	c.Write(b)
	c.halt()
}

// FatalAlloc reports a failed allocation of size bytes at align and halts,
// like Fatal.
func (c *Console) FatalAlloc(size, align uint64) {
	if c.fatal.Swap(true) {
		c.halt()
		return
	}
	var line [fatalLine]byte
	var num [20]byte
	b := append(line[:0], "ALLOCATION ERROR: size="...)
	b = append(b, conv.Utoa(num[:], size)...)
	b = append(b, " align="...)
	b = append(b, conv.Utoa(num[:], align)...)
	b = append(b, '\r', '\n')
	c.Write(b)
	c.halt()
}
