// Package bcmintc drives the legacy Broadcom ARM interrupt controller:
// 64 GPU peripheral lines in two banks plus eight ARM-local basic lines.
//
// On the BCM2711 the block is only wired to the core when the firmware
// leaves the GIC-400 disabled (enable_gic=0 in config.txt).
package bcmintc

import (
	"math/bits"

	"sagehal-go/drivers/irqtab"
	"sagehal-go/hal"
	"sagehal-go/mmio"
)

var _ hal.InterruptController = (*Controller)(nil)

// Register offsets from the block base (peripheral base + 0xB000).
const (
	regBasicPending = 0x200
	regPending1     = 0x204
	regPending2     = 0x208
	regFIQControl   = 0x20C
	regEnable1      = 0x210
	regEnable2      = 0x214
	regEnableBasic  = 0x218
	regDisable1     = 0x21C
	regDisable2     = 0x220
	regDisableBasic = 0x224
)

// Line numbering: 0..63 are GPU IRQs (bank 1 then bank 2), 64..71 the
// basic ARM lines (ARM timer, mailbox, doorbells, GPU halts).
const (
	gpuLines   = 64
	basicLines = 8
	Lines      = gpuLines + basicLines
	basicMask  = 1<<basicLines - 1
)

// Well-known GPU lines.
const (
	IRQSystemTimer1 = 1
	IRQSystemTimer3 = 3
	IRQAux          = 29
	IRQI2C          = 53
	IRQSPI          = 54
	IRQUART         = 57
)

type Controller struct {
	bus mmio.Bus
	tab *irqtab.Table
}

func New(bus mmio.Bus) *Controller {
	return &Controller{bus: bus, tab: irqtab.New("bcmintc", Lines)}
}

// Init masks every line and routes nothing to FIQ.
func (c *Controller) Init() error {
	c.bus.Store32(regFIQControl, 0)
	c.bus.Store32(regDisable1, 0xFFFFFFFF)
	c.bus.Store32(regDisable2, 0xFFFFFFFF)
	c.bus.Store32(regDisableBasic, 0xFFFFFFFF)
	return nil
}

func (c *Controller) Lines() int { return Lines }

// reg picks the bank register and bit for irq from the three enable or
// disable registers, which share a layout.
func reg(irq int, bank1, bank2, basic uintptr) (uintptr, uint32) {
	switch {
	case irq < 32:
		return bank1, 1 << irq
	case irq < gpuLines:
		return bank2, 1 << (irq - 32)
	}
	return basic, 1 << (irq - gpuLines)
}

// Enable and Disable write single bits; the registers are write-1-to-act.
func (c *Controller) Enable(irq int) error {
	if err := c.tab.Check(irq); err != nil {
		return err
	}
	off, bit := reg(irq, regEnable1, regEnable2, regEnableBasic)
	c.bus.Store32(off, bit)
	return nil
}

func (c *Controller) Disable(irq int) error {
	if err := c.tab.Check(irq); err != nil {
		return err
	}
	off, bit := reg(irq, regDisable1, regDisable2, regDisableBasic)
	c.bus.Store32(off, bit)
	return nil
}

func (c *Controller) Register(irq int, h hal.Handler) error { return c.tab.Register(irq, h) }

// Dispatch runs the handler of every pending line that is also enabled.
// Handlers acknowledge their own device; this block has no EOI.
func (c *Controller) Dispatch() int {
	n := 0
	banks := [...]struct {
		pending, enable uintptr
		first           int
		mask            uint32
	}{
		{regPending1, regEnable1, 0, 0xFFFFFFFF},
		{regPending2, regEnable2, 32, 0xFFFFFFFF},
		{regBasicPending, regEnableBasic, gpuLines, basicMask},
	}
	for _, b := range banks {
		p := c.bus.Load32(b.pending) & c.bus.Load32(b.enable) & b.mask
		for p != 0 {
			i := bits.TrailingZeros32(p)
			p &^= 1 << i
			if c.tab.Run(b.first + i) {
				n++
			}
		}
	}
	return n
}
