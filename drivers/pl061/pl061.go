// Package pl061 drives the ARM PrimeCell PL061 GPIO controller (8 pins).
package pl061

import (
	"strconv"

	"sagehal-go/errcode"
	"sagehal-go/hal"
	"sagehal-go/mmio"
)

var _ hal.GPIO = (*GPIO)(nil)

// Register offsets. DATA is addressed through a mask: bits [9:2] of the
// offset select which pins a load or store touches.
const (
	regDATA  = 0x000
	regDIR   = 0x400 // 1 = output
	regIS    = 0x404 // interrupt sense
	regIBE   = 0x408 // both edges
	regIEV   = 0x40C // event
	regIE    = 0x410 // interrupt mask
	regRIS   = 0x414
	regMIS   = 0x418
	regIC    = 0x41C // interrupt clear (WO)
	regAFSEL = 0x420 // hardware (alternate) control
)

const Pins = 8

type GPIO struct {
	bus   mmio.Bus
	dir   mmio.U32
	ie    mmio.U32
	ic    mmio.U32
	afsel mmio.U32
	ready bool
}

func New(bus mmio.Bus) *GPIO {
	return &GPIO{
		bus:   bus,
		dir:   mmio.At[uint32](bus, regDIR),
		ie:    mmio.At[uint32](bus, regIE),
		ic:    mmio.At[uint32](bus, regIC),
		afsel: mmio.At[uint32](bus, regAFSEL),
	}
}

// Init masks and clears every pin interrupt.
func (g *GPIO) Init() error {
	g.ie.Store(0)
	g.ic.Store(0xFF)
	g.ready = true
	return nil
}

func (g *GPIO) Pins() int { return Pins }

func (g *GPIO) check(op string, pin int) error {
	if !g.ready {
		return errcode.New(errcode.NotReady, op, "")
	}
	if pin < 0 || pin >= Pins {
		return errcode.New(errcode.UnknownPin, op, "pin "+strconv.Itoa(pin))
	}
	return nil
}

func dataOff(pin int) uintptr { return regDATA + uintptr(1)<<(pin+2) }

// SetFunction supports input, output and Alt0 (hardware control).
func (g *GPIO) SetFunction(pin int, fn hal.Func) error {
	const op = "pl061.SetFunction"
	if err := g.check(op, pin); err != nil {
		return err
	}
	bit := uint32(1) << pin
	switch fn {
	case hal.FuncInput:
		g.afsel.ClearBits(bit)
		g.dir.ClearBits(bit)
	case hal.FuncOutput:
		g.afsel.ClearBits(bit)
		g.dir.SetBits(bit)
	case hal.FuncAlt0:
		g.afsel.SetBits(bit)
	default:
		return errcode.New(errcode.Unsupported, op, "function")
	}
	return nil
}

// Set writes through the pin's data mask so other pins are untouched.
func (g *GPIO) Set(pin int, high bool) error {
	if err := g.check("pl061.Set", pin); err != nil {
		return err
	}
	var v uint32
	if high {
		v = 1 << pin
	}
	g.bus.Store32(dataOff(pin), v)
	return nil
}

func (g *GPIO) Get(pin int) (bool, error) {
	if err := g.check("pl061.Get", pin); err != nil {
		return false, err
	}
	return g.bus.Load32(dataOff(pin)) != 0, nil
}

// SetPull: the PL061 has no pull control.
func (g *GPIO) SetPull(pin int, p hal.Pull) error {
	const op = "pl061.SetPull"
	if err := g.check(op, pin); err != nil {
		return err
	}
	if p == hal.PullNone {
		return nil
	}
	return errcode.New(errcode.Unsupported, op, "pull")
}
