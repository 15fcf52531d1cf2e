// Package ns16550 drives a 16550-compatible UART with byte-wide registers,
// as found on the QEMU virt RISC-V machine.
package ns16550

import (
	"sagehal-go/errcode"
	"sagehal-go/hal"
	"sagehal-go/mmio"
	"sagehal-go/x/mathx"

	"tinygo.org/x/drivers"
)

var (
	_ hal.UART     = (*UART)(nil)
	_ drivers.UART = (*UART)(nil)
)

// Register offsets. DLL and DLM overlay RBR/THR and IER while LCR.DLAB is set.
const (
	regRBR = 0 // receive buffer (RO)
	regTHR = 0 // transmit holding (WO)
	regDLL = 0 // divisor latch low
	regIER = 1 // interrupt enable
	regDLM = 1 // divisor latch high
	regFCR = 2 // FIFO control (WO)
	regLCR = 3 // line control
	regMCR = 4 // modem control
	regLSR = 5 // line status (RO)
)

const (
	ierRX = 1 << 0

	fcrEnable  = 1 << 0
	fcrClearRX = 1 << 1
	fcrClearTX = 1 << 2

	lcr8N1  = 0x03
	lcrDLAB = 1 << 7

	mcrOUT2 = 1 << 3 // routes the interrupt line out on PC-style parts
)

// Status is the LSR register.
type Status uint8

const (
	StatusDR   Status = 1 << 0 // data ready
	StatusTHRE Status = 1 << 5 // transmit holding register empty
	StatusTEMT Status = 1 << 6 // transmitter idle
)

// Config for a 16550 port. Zero fields take defaults.
type Config struct {
	ClockHz     uint32 // default 3.6864 MHz
	Baud        uint32 // default 115200
	RxInterrupt bool
}

const (
	DefaultClockHz = 3_686_400
	DefaultBaud    = 115_200
)

type UART struct {
	rbr mmio.U8
	thr mmio.U8
	dll mmio.U8
	dlm mmio.U8
	ier mmio.U8
	fcr mmio.U8
	lcr mmio.U8
	mcr mmio.U8
	lsr mmio.R8[Status]
	cfg Config
}

func New(bus mmio.Bus, cfg Config) *UART {
	if cfg.ClockHz == 0 {
		cfg.ClockHz = DefaultClockHz
	}
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	return &UART{
		rbr: mmio.At8[uint8](bus, regRBR),
		thr: mmio.At8[uint8](bus, regTHR),
		dll: mmio.At8[uint8](bus, regDLL),
		dlm: mmio.At8[uint8](bus, regDLM),
		ier: mmio.At8[uint8](bus, regIER),
		fcr: mmio.At8[uint8](bus, regFCR),
		lcr: mmio.At8[uint8](bus, regLCR),
		mcr: mmio.At8[uint8](bus, regMCR),
		lsr: mmio.At8[Status](bus, regLSR),
		cfg: cfg,
	}
}

// Divisor returns clock/(16*baud), rounded to nearest.
func Divisor(clockHz, baud uint32) (uint16, error) {
	if clockHz == 0 || baud == 0 {
		return 0, errcode.New(errcode.InvalidParams, "ns16550.Divisor", "zero clock or baud")
	}
	d := mathx.RoundDiv(uint64(clockHz), 16*uint64(baud))
	if d < 1 || d > 0xFFFF {
		return 0, errcode.New(errcode.InvalidParams, "ns16550.Divisor", "baud out of range for clock")
	}
	return uint16(d), nil
}

// Init masks interrupts, programs the divisor through the DLAB window, sets
// 8N1, then resets and enables both FIFOs.
func (u *UART) Init() error {
	div, err := Divisor(u.cfg.ClockHz, u.cfg.Baud)
	if err != nil {
		return err
	}
	u.ier.Store(0)
	u.lcr.Store(lcrDLAB)
	u.dll.Store(uint8(div))
	u.dlm.Store(uint8(div >> 8))
	u.lcr.Store(lcr8N1)
	u.fcr.Store(fcrEnable | fcrClearRX | fcrClearTX)
	if u.cfg.RxInterrupt {
		u.mcr.Store(mcrOUT2)
		u.ier.Store(ierRX)
	}
	return nil
}

// Send waits for the holding register to empty, then writes b.
func (u *UART) Send(b byte) {
	for u.lsr.LoadBits(StatusTHRE) == 0 {
	}
	u.thr.Store(b)
}

// Receive returns the next received byte, if any.
func (u *UART) Receive() (byte, bool) {
	if u.lsr.LoadBits(StatusDR) == 0 {
		return 0, false
	}
	return u.rbr.Load(), true
}

func (u *UART) WriteString(s string) {
	for i := 0; i < len(s); i++ {
		u.Send(s[i])
	}
}

// ---- drivers.UART ----

func (u *UART) Read(p []byte) (int, error) {
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

func (u *UART) Write(p []byte) (int, error) {
	for _, b := range p {
		u.Send(b)
	}
	return len(p), nil
}

// Buffered reports 1 while LSR.DR is set.
func (u *UART) Buffered() int {
	if u.lsr.LoadBits(StatusDR) == 0 {
		return 0
	}
	return 1
}
