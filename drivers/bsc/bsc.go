// Package bsc drives the Broadcom Serial Controller, the I²C master of the
// BCM2711.
//
// Transfers are polled. Every wait is bounded by Config.Polls status reads,
// so a wedged bus reports errcode.Timeout instead of hanging the caller.
package bsc

import (
	"sagehal-go/cpu"
	"sagehal-go/errcode"
	"sagehal-go/mmio"
	"sagehal-go/x/mathx"

	"github.com/sigurn/crc8"
	"tinygo.org/x/drivers"
)

var _ drivers.I2C = (*Bus)(nil)

// Config for a controller. Zero fields take defaults.
type Config struct {
	ClockHz   uint32 // core clock feeding the divider; default 150 MHz
	Frequency uint32 // SCL rate; default 100 kHz
	Polls     int    // status reads per wait; default 100000
}

const (
	DefaultClockHz   = 150_000_000
	DefaultFrequency = 100_000
	DefaultPolls     = 100_000

	clockStretch = 0x40 // SCL cycles a slave may stretch
	maxAddr      = 0x7F
	maxLen       = 0xFFFF
	firstAddr    = 0x08
	lastAddr     = 0x77

	opTx = "bsc.Tx"
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

type registers struct {
	c    mmio.R32[Ctl]
	s    mmio.R32[Status]
	dlen mmio.U32
	a    mmio.U32
	fifo mmio.U32
	div  mmio.U32
	del  mmio.U32
	clkt mmio.U32
}

// Bus is one BSC controller.
type Bus struct {
	regs  registers
	cfg   Config
	ready bool
}

func New(bus mmio.Bus) *Bus {
	return &Bus{regs: registers{
		c:    mmio.At[Ctl](bus, regC),
		s:    mmio.At[Status](bus, regS),
		dlen: mmio.At[uint32](bus, regDLEN),
		a:    mmio.At[uint32](bus, regA),
		fifo: mmio.At[uint32](bus, regFIFO),
		div:  mmio.At[uint32](bus, regDIV),
		del:  mmio.At[uint32](bus, regDEL),
		clkt: mmio.At[uint32](bus, regCLKT),
	}}
}

// Divider returns the even clock divider giving the fastest SCL not above
// freq. The hardware ignores bit 0.
func Divider(clockHz, freq uint32) uint32 {
	return mathx.Clamp(mathx.RoundUpEven(mathx.CeilDiv(clockHz, freq)), 2, 0xFFFE)
}

// Configure programs the divider and enables the controller.
func (b *Bus) Configure(cfg Config) error {
	const op = "bsc.Configure"
	cfg.defaults()
	if cfg.Frequency > cfg.ClockHz/2 {
		return errcode.New(errcode.InvalidParams, op, "frequency above clock/2")
	}
	div := Divider(cfg.ClockHz, cfg.Frequency)
	fedl := mathx.Max(div/16, 1)
	redl := mathx.Max(div/4, 1)

	b.regs.c.Store(0)
	b.regs.div.Store(div)
	b.regs.del.Store(fedl<<16 | redl)
	b.regs.clkt.Store(clockStretch)
	b.regs.s.Store(statusClear)
	b.regs.c.Store(CtlEnable | CtlClear)
	b.cfg = cfg
	b.ready = true
	return nil
}

// Tx writes w then reads len(r) bytes from the 7-bit address addr, as two
// transfers. With both empty it sends the address alone, which probes for
// an acknowledging device.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	const op = opTx
	switch {
	case !b.ready:
		return errcode.New(errcode.NotReady, op, "not configured")
	case addr > maxAddr || len(w) > maxLen || len(r) > maxLen:
		return errcode.New(errcode.InvalidParams, op, "address or length out of range")
	case b.regs.s.LoadBits(StatusTA) != 0:
		return errcode.New(errcode.Busy, op, "transfer active")
	}
	if len(w) > 0 || len(r) == 0 {
		if err := b.write(addr, w); err != nil {
			return b.abort(err)
		}
	}
	if len(r) > 0 {
		if err := b.read(addr, r); err != nil {
			return b.abort(err)
		}
	}
	return nil
}

func (b *Bus) start(addr uint16, n int) {
	b.regs.c.Store(CtlEnable | CtlClear)
	b.regs.s.Store(statusClear)
	b.regs.a.Store(uint32(addr))
	b.regs.dlen.Store(uint32(n))
}

func (b *Bus) write(addr uint16, w []byte) error {
	b.start(addr, len(w))
	n := mathx.Min(len(w), fifoDepth)
	for _, v := range w[:n] {
		b.regs.fifo.Store(uint32(v))
	}
	b.regs.c.Store(CtlEnable | CtlStart)
	for n < len(w) {
		s, err := b.poll(StatusTXD)
		if err != nil {
			return err
		}
		if s&StatusTXD == 0 {
			return errcode.New(errcode.Error, opTx, "transfer ended early")
		}
		b.regs.fifo.Store(uint32(w[n]))
		n++
	}
	return b.finish()
}

func (b *Bus) read(addr uint16, r []byte) error {
	b.start(addr, len(r))
	b.regs.c.Store(CtlEnable | CtlStart | CtlRead)
	for n := 0; n < len(r); {
		s, err := b.poll(StatusRXD)
		if err != nil {
			return err
		}
		if s&StatusRXD == 0 {
			return errcode.New(errcode.Error, opTx, "transfer ended early")
		}
		r[n] = byte(b.regs.fifo.Load())
		n++
	}
	return b.finish()
}

func (b *Bus) finish() error {
	if _, err := b.poll(StatusDONE); err != nil {
		return err
	}
	b.regs.s.Store(StatusDONE)
	return nil
}

// poll reads S until a bit of want or DONE is set, or an error bit appears.
func (b *Bus) poll(want Status) (Status, error) {
	for i := 0; i < b.cfg.Polls; i++ {
		s := b.regs.s.Load()
		switch {
		case s&StatusERR != 0:
			return s, errcode.New(errcode.Nack, opTx, "no acknowledge")
		case s&StatusCLKT != 0:
			return s, errcode.New(errcode.Timeout, opTx, "clock stretch timeout")
		case s&(want|StatusDONE) != 0:
			return s, nil
		}
		cpu.Relax()
	}
	return 0, errcode.New(errcode.Timeout, opTx, "no status change")
}

// abort leaves the controller idle with the FIFO flushed.
func (b *Bus) abort(err error) error {
	b.regs.s.Store(statusClear)
	b.regs.c.Store(CtlEnable | CtlClear)
	return err
}

// Scan probes every non-reserved 7-bit address and returns those that
// acknowledge. Errors other than a NACK stop the scan.
func (b *Bus) Scan() ([]uint16, error) {
	var found []uint16
	for a := uint16(firstAddr); a <= lastAddr; a++ {
		err := b.Tx(a, nil, nil)
		switch errcode.Of(err) {
		case errcode.OK:
			found = append(found, a)
		case errcode.Nack:
		default:
			return found, err
		}
	}
	return found, nil
}

// ---- SMBus ----

var pecTable = crc8.MakeTable(crc8.Params{Poly: 0x07, Init: 0x00, RefIn: false, RefOut: false, XorOut: 0x00, Check: 0xF4, Name: "CRC-8 SMBus"})

// PEC returns the SMBus packet error code of data.
func PEC(data []byte) uint8 { return crc8.Checksum(data, pecTable) }

// ReadByteData reads register reg. With pec set the device's trailing PEC
// byte is verified.
func (b *Bus) ReadByteData(addr uint16, reg byte, pec bool) (byte, error) {
	const op = "bsc.ReadByteData"
	var buf [2]byte
	n := 1
	if pec {
		n = 2
	}
	if err := b.Tx(addr, []byte{reg}, buf[:n]); err != nil {
		return 0, err
	}
	if pec {
		a := byte(addr << 1)
		if PEC([]byte{a, reg, a | 1, buf[0]}) != buf[1] {
			return 0, errcode.New(errcode.Checksum, op, "pec mismatch")
		}
	}
	return buf[0], nil
}

// WriteByteData writes v to register reg, appending a PEC byte when pec is set.
func (b *Bus) WriteByteData(addr uint16, reg, v byte, pec bool) error {
	w := []byte{reg, v}
	if pec {
		w = append(w, PEC([]byte{byte(addr << 1), reg, v}))
	}
	return b.Tx(addr, w, nil)
}
