// Package pl011 drives the ARM PrimeCell PL011 UART.
package pl011

import (
	"sync/atomic"

	"sagehal-go/errcode"
	"sagehal-go/hal"
	"sagehal-go/mmio"
	"sagehal-go/x/mathx"
	"sagehal-go/x/ring"

	"tinygo.org/x/drivers"
)

var (
	_ hal.UART     = (*UART)(nil)
	_ drivers.UART = (*UART)(nil)
)

// Config for a PL011 port. Zero fields take defaults.
type Config struct {
	ClockHz     uint32 // UARTCLK; default 48 MHz
	Baud        uint32 // default 115200
	RxInterrupt bool   // unmask receive and receive-timeout interrupts
	RxBuffer    int    // receive ring size with RxInterrupt, a power of two; default 256
}

const (
	DefaultClockHz = 48_000_000
	DefaultBaud    = 115_200
	DefaultRxRing  = 256
)

type registers struct {
	dr   mmio.U32
	fr   mmio.R32[Flag]
	ibrd mmio.U32
	fbrd mmio.U32
	lcrh mmio.R32[LineCtl]
	cr   mmio.R32[Ctl]
	imsc mmio.R32[Intr]
	icr  mmio.R32[Intr]
}

// UART is one PL011 port.
type UART struct {
	regs    registers
	cfg     Config
	rx      *ring.Ring // nil when polling
	dropped atomic.Uint32
}

// New binds a port to its register block.
func New(bus mmio.Bus, cfg Config) *UART {
	if cfg.ClockHz == 0 {
		cfg.ClockHz = DefaultClockHz
	}
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	u := &UART{
		cfg: cfg,
		regs: registers{
			dr:   mmio.At[uint32](bus, regDR),
			fr:   mmio.At[Flag](bus, regFR),
			ibrd: mmio.At[uint32](bus, regIBRD),
			fbrd: mmio.At[uint32](bus, regFBRD),
			lcrh: mmio.At[LineCtl](bus, regLCRH),
			cr:   mmio.At[Ctl](bus, regCR),
			imsc: mmio.At[Intr](bus, regIMSC),
			icr:  mmio.At[Intr](bus, regICR),
		},
	}
	if cfg.RxInterrupt && cfg.RxBuffer == 0 {
		u.cfg.RxBuffer = DefaultRxRing
	}
	return u
}

// Divisor computes the baud rate divisor pair for a reference clock.
// ibrd is clock/(16*baud) rounded down and fbrd the remaining fraction in
// 64ths, rounded. A fraction that rounds up to 64 carries into ibrd.
func Divisor(clockHz, baud uint32) (ibrd, fbrd uint32, err error) {
	const op = "pl011.Divisor"
	if clockHz == 0 || baud == 0 {
		return 0, 0, errcode.New(errcode.InvalidParams, op, "zero clock or baud")
	}
	// clock/(16*baud) in 6-bit fixed point is 4*clock/baud.
	fixed := mathx.RoundDiv(4*uint64(clockHz), uint64(baud))
	whole, frac := mathx.SplitFixed(fixed, 6)
	if whole < 1 || whole > 0xFFFF {
		return 0, 0, errcode.New(errcode.InvalidParams, op, "baud out of range for clock")
	}
	return uint32(whole), uint32(frac), nil
}

// Init disables the port, clears pending interrupts, programs the divisor
// and an 8N1 frame with FIFOs, then enables transmit and receive. With
// RxInterrupt it also allocates the receive ring.
func (u *UART) Init() error {
	ibrd, fbrd, err := Divisor(u.cfg.ClockHz, u.cfg.Baud)
	if err != nil {
		return err
	}
	if u.cfg.RxInterrupt && u.rx == nil {
		n := u.cfg.RxBuffer
		if n < 2 || n&(n-1) != 0 {
			return errcode.New(errcode.InvalidParams, "pl011.Init", "receive ring size must be a power of two >= 2")
		}
		u.rx = ring.New(n)
	}
	u.regs.cr.Store(0)
	u.regs.icr.Store(IntrAll)
	u.regs.ibrd.Store(ibrd)
	u.regs.fbrd.Store(fbrd)
	u.regs.lcrh.Store(LineWLEN8 | LineFEN)
	if u.cfg.RxInterrupt {
		u.regs.imsc.Store(IntrRX | IntrRT)
	}
	u.regs.cr.Store(CtlUARTEN | CtlTXE | CtlRXE)
	return nil
}

// Send waits for room in the transmit FIFO, then writes b. There is no
// timeout: a wedged transmitter hangs the caller.
func (u *UART) Send(b byte) {
	for u.regs.fr.LoadBits(FlagTXFF) != 0 {
	}
	u.regs.dr.Store(uint32(b))
}

// Receive returns the next byte from the receive FIFO, if any. The error
// bits above the data byte are discarded.
func (u *UART) Receive() (byte, bool) {
	if u.rx != nil {
		return u.rx.Get()
	}
	return u.receiveFIFO()
}

func (u *UART) receiveFIFO() (byte, bool) {
	if u.regs.fr.LoadBits(FlagRXFE) != 0 {
		return 0, false
	}
	return byte(u.regs.dr.Load() & dataMask), true
}

func (u *UART) WriteString(s string) {
	for i := 0; i < len(s); i++ {
		u.Send(s[i])
	}
}

// ---- drivers.UART ----

// Read drains up to len(p) waiting bytes. It never blocks and returns 0, nil
// when nothing is waiting.
func (u *UART) Read(p []byte) (int, error) {
	if u.rx != nil {
		return u.rx.Read(p), nil
	}
	n := 0
	for n < len(p) {
		b, ok := u.Receive()
		if !ok {
			break
		}
		p[n] = b
		n++
	}
	return n, nil
}

// Write sends p, blocking on a full FIFO.
func (u *UART) Write(p []byte) (int, error) {
	for _, b := range p {
		u.Send(b)
	}
	return len(p), nil
}

// Buffered reports how much receive data is waiting. Without a receive ring
// the PL011 exposes no FIFO level, so the answer is 0 or 1.
func (u *UART) Buffered() int {
	if u.rx != nil {
		return u.rx.Available()
	}
	if u.regs.fr.LoadBits(FlagRXFE) != 0 {
		return 0
	}
	return 1
}

// ---- interrupt receive ----

// HandleInterrupt drains the receive FIFO into the ring and acknowledges the
// receive interrupts. Register it for the port's line when RxInterrupt is
// set. Bytes that find the ring full are counted and discarded.
func (u *UART) HandleInterrupt() {
	if u.rx == nil {
		return
	}
	for {
		b, ok := u.receiveFIFO()
		if !ok {
			break
		}
		if !u.rx.Put(b) {
			u.dropped.Add(1)
		}
	}
	u.regs.icr.Store(IntrRX | IntrRT)
}

// Dropped returns how many received bytes were lost to a full ring.
func (u *UART) Dropped() uint32 { return u.dropped.Load() }
