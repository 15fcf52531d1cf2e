// Package bcmgpio drives the Broadcom BCM283x/BCM2711 GPIO block.
package bcmgpio

import (
	"strconv"

	"sagehal-go/cpu"
	"sagehal-go/errcode"
	"sagehal-go/hal"
	"sagehal-go/mmio"
)

var _ hal.GPIO = (*GPIO)(nil)

// Config selects the variant of the block.
type Config struct {
	Pins int // default 58 (BCM2711)
	// LegacyPull uses the GPPUD/GPPUDCLK strobe of BCM2835..2837 instead
	// of the BCM2711 per-pin pull registers.
	LegacyPull bool
}

const DefaultPins = 58

type GPIO struct {
	bus   mmio.Bus
	cfg   Config
	ready bool
	delay func(cycles int)
}

func New(bus mmio.Bus, cfg Config) *GPIO {
	if cfg.Pins <= 0 {
		cfg.Pins = DefaultPins
	}
	return &GPIO{bus: bus, cfg: cfg, delay: cpu.Delay}
}

// Init leaves pin functions as the firmware set them (the console pins are
// already muxed) and enables the accessors.
func (g *GPIO) Init() error {
	g.ready = true
	return nil
}

func (g *GPIO) Pins() int { return g.cfg.Pins }

func (g *GPIO) check(op string, pin int) error {
	if !g.ready {
		return errcode.New(errcode.NotReady, op, "")
	}
	if pin < 0 || pin >= g.cfg.Pins {
		return errcode.New(errcode.UnknownPin, op, "pin "+strconv.Itoa(pin))
	}
	return nil
}

func fsel(fn hal.Func) (uint32, bool) {
	switch fn {
	case hal.FuncInput:
		return fselInput, true
	case hal.FuncOutput:
		return fselOutput, true
	case hal.FuncAlt0:
		return fselAlt0, true
	case hal.FuncAlt1:
		return fselAlt1, true
	case hal.FuncAlt2:
		return fselAlt2, true
	case hal.FuncAlt3:
		return fselAlt3, true
	case hal.FuncAlt4:
		return fselAlt4, true
	case hal.FuncAlt5:
		return fselAlt5, true
	}
	return 0, false
}

// SetFunction rewrites the pin's 3-bit field in its GPFSEL register.
func (g *GPIO) SetFunction(pin int, fn hal.Func) error {
	const op = "bcmgpio.SetFunction"
	if err := g.check(op, pin); err != nil {
		return err
	}
	code, ok := fsel(fn)
	if !ok {
		return errcode.New(errcode.InvalidParams, op, "function")
	}
	r := mmio.At[uint32](g.bus, regGPFSEL0+uintptr(pin/10)*4)
	shift := uint(pin%10) * 3
	r.StoreBits(fselMask<<shift, code<<shift)
	return nil
}

// Set drives an output pin through GPSET/GPCLR, leaving other pins alone.
func (g *GPIO) Set(pin int, high bool) error {
	if err := g.check("bcmgpio.Set", pin); err != nil {
		return err
	}
	off := uintptr(regGPCLR0)
	if high {
		off = regGPSET0
	}
	g.bus.Store32(off+uintptr(pin/32)*4, 1<<(pin%32))
	return nil
}

func (g *GPIO) Get(pin int) (bool, error) {
	if err := g.check("bcmgpio.Get", pin); err != nil {
		return false, err
	}
	return g.bus.Load32(regGPLEV0+uintptr(pin/32)*4)&(1<<(pin%32)) != 0, nil
}

func (g *GPIO) SetPull(pin int, p hal.Pull) error {
	const op = "bcmgpio.SetPull"
	if err := g.check(op, pin); err != nil {
		return err
	}
	if p > hal.PullDown {
		return errcode.New(errcode.InvalidParams, op, "pull")
	}
	if g.cfg.LegacyPull {
		g.legacyPull(pin, p)
		return nil
	}
	code := uint32(puppdnNone)
	switch p {
	case hal.PullUp:
		code = puppdnUp
	case hal.PullDown:
		code = puppdnDown
	}
	r := mmio.At[uint32](g.bus, regPUPPDN0+uintptr(pin/16)*4)
	shift := uint(pin%16) * 2
	r.StoreBits(puppdnMask<<shift, code<<shift)
	return nil
}

// legacyPull latches the pull setting with the GPPUD clock strobe.
func (g *GPIO) legacyPull(pin int, p hal.Pull) {
	code := uint32(gppudOff)
	switch p {
	case hal.PullUp:
		code = gppudUp
	case hal.PullDown:
		code = gppudDown
	}
	clk := regGPPUDCLK0 + uintptr(pin/32)*4
	g.bus.Store32(regGPPUD, code)
	g.delay(pullSettle)
	g.bus.Store32(clk, 1<<(pin%32))
	g.delay(pullSettle)
	g.bus.Store32(regGPPUD, 0)
	g.bus.Store32(clk, 0)
}
