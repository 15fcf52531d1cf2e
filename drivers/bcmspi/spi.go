// Package bcmspi drives SPI0, the BCM2711's polled SPI master.
package bcmspi

import (
	"sagehal-go/cpu"
	"sagehal-go/errcode"
	"sagehal-go/mmio"
	"sagehal-go/x/mathx"

	"tinygo.org/x/drivers"
)

var _ drivers.SPI = (*Bus)(nil)

// Register offsets from the controller base.
const (
	regCS   = 0x00 // control and status
	regFIFO = 0x04 // TX and RX FIFOs
	regCLK  = 0x08 // clock divider
	regDLEN = 0x0C // DMA data length
	regLTOH = 0x10 // LoSSI output hold
	regDC   = 0x14 // DMA DREQ controls
)

// Exported for register models built on top of the driver's layout.
const (
	RegCS   = regCS
	RegFIFO = regFIFO
	RegCLK  = regCLK
)

// CS is the control and status register.
type CS uint32

const (
	CSSelect CS = 3 << 0 // chip select line
	CSCPHA   CS = 1 << 2
	CSCPOL   CS = 1 << 3
	CSClear  CS = 3 << 4 // flush both FIFOs
	CSCSPOL  CS = 1 << 6
	CSTA     CS = 1 << 7 // transfer active
	CSDone   CS = 1 << 16
	CSRXD    CS = 1 << 17 // RX FIFO holds data
	CSTXD    CS = 1 << 18 // TX FIFO has room
	CSRXR    CS = 1 << 19
	CSRXF    CS = 1 << 20
	CSCSPOL0 CS = 1 << 21 // CSPOL0..2 follow
)

// Config for SPI0. Zero fields take defaults.
type Config struct {
	ClockHz    uint32 // core clock; default 250 MHz
	Frequency  uint32 // SCLK; default 1 MHz
	Mode       uint8  // 0..3, CPOL is bit 1 and CPHA bit 0
	Select     uint8  // chip select 0..2
	ActiveHigh bool   // chip select polarity
	Polls      int    // idle status reads before a timeout; default 100000
}

const (
	DefaultClockHz   = 250_000_000
	DefaultFrequency = 1_000_000
	DefaultPolls     = 100_000

	opTx = "bcmspi.Tx"
)

func (c *Config) defaults() {
	if c.ClockHz == 0 {
		c.ClockHz = DefaultClockHz
	}
	if c.Frequency == 0 {
		c.Frequency = DefaultFrequency
	}
	if c.Polls <= 0 {
		c.Polls = DefaultPolls
	}
}

// Bus is the SPI0 controller bound to one chip select.
type Bus struct {
	cs    mmio.R32[CS]
	fifo  mmio.U32
	clk   mmio.U32
	cfg   Config
	base  CS
	ready bool
}

func New(bus mmio.Bus) *Bus {
	return &Bus{
		cs:   mmio.At[CS](bus, regCS),
		fifo: mmio.At[uint32](bus, regFIFO),
		clk:  mmio.At[uint32](bus, regCLK),
	}
}

// Divider returns the even clock divider giving the fastest SCLK not above
// freq, clamped to 2..65536.
func Divider(clockHz, freq uint32) uint32 {
	d := mathx.RoundUpEven(mathx.CeilDiv(uint64(clockHz), uint64(freq)))
	return uint32(mathx.Clamp(d, 2, 65536))
}

// Configure sets clock, mode and chip select. The line stays idle until
// the first transfer.
func (b *Bus) Configure(cfg Config) error {
	const op = "bcmspi.Configure"
	cfg.defaults()
	switch {
	case cfg.Mode > 3:
		return errcode.New(errcode.InvalidParams, op, "mode out of range")
	case cfg.Select > 2:
		return errcode.New(errcode.InvalidParams, op, "chip select out of range")
	}
	base := CS(cfg.Select)
	if cfg.Mode&1 != 0 {
		base |= CSCPHA
	}
	if cfg.Mode&2 != 0 {
		base |= CSCPOL
	}
	if cfg.ActiveHigh {
		base |= CSCSPOL0 << cfg.Select
	}
	b.cs.Store(base | CSClear)
	// 65536 is written as 0.
	b.clk.Store(Divider(cfg.ClockHz, cfg.Frequency) & 0xFFFF)
	b.cfg, b.base, b.ready = cfg, base, true
	return nil
}

// Tx clocks max(len(w), len(r)) bytes. A nil w sends zeros; a nil r drops
// what comes back. Non-nil buffers of different lengths are rejected.
func (b *Bus) Tx(w, r []byte) error {
	switch {
	case !b.ready:
		return errcode.New(errcode.NotReady, opTx, "not configured")
	case w != nil && r != nil && len(w) != len(r):
		return errcode.New(errcode.InvalidParams, opTx, "length mismatch")
	case b.cs.LoadBits(CSTA) != 0:
		return errcode.New(errcode.Busy, opTx, "transfer active")
	}
	n := mathx.Max(len(w), len(r))
	b.cs.Store(b.base | CSClear | CSTA)
	tx, rx, idle := 0, 0, 0
	for rx < n {
		s := b.cs.Load()
		moved := false
		if tx < n && s&CSTXD != 0 {
			var v byte
			if tx < len(w) {
				v = w[tx]
			}
			b.fifo.Store(uint32(v))
			tx++
			moved = true
		}
		if s&CSRXD != 0 {
			v := byte(b.fifo.Load())
			if rx < len(r) {
				r[rx] = v
			}
			rx++
			moved = true
		}
		if moved {
			idle = 0
			continue
		}
		if idle++; idle >= b.cfg.Polls {
			return b.abort("no data moved")
		}
		cpu.Relax()
	}
	for idle = 0; b.cs.LoadBits(CSDone) == 0; idle++ {
		if idle >= b.cfg.Polls {
			return b.abort("transfer never completed")
		}
		cpu.Relax()
	}
	b.cs.Store(b.base)
	return nil
}

func (b *Bus) abort(msg string) error {
	b.cs.Store(b.base | CSClear)
	return errcode.New(errcode.Timeout, opTx, msg)
}

// Transfer sends one byte and returns the byte clocked in.
func (b *Bus) Transfer(v byte) (byte, error) {
	var r [1]byte
	err := b.Tx([]byte{v}, r[:])
	return r[0], err
}
