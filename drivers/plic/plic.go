// Package plic drives the RISC-V platform-level interrupt controller for a
// single hart context.
package plic

import (
	"sagehal-go/drivers/irqtab"
	"sagehal-go/errcode"
	"sagehal-go/hal"
	"sagehal-go/mmio"
)

var _ hal.InterruptController = (*Controller)(nil)

const (
	regPriority  = 0x000000 // 4 bytes per source
	regPending   = 0x001000
	regEnable    = 0x002000 // 0x80 bytes per context
	regThreshold = 0x200000 // 0x1000 bytes per context
	regClaim     = 0x200004
)

// DefaultSources is the source count of the QEMU virt machine. Source 0 is
// reserved and never raised.
const DefaultSources = 96

// Well-known sources on QEMU virt.
const (
	IRQVirtIO0 = 1
	IRQUART0   = 10
	IRQPCIe0   = 32
)

type Config struct {
	// Context is hart*2 for M-mode, hart*2+1 for S-mode.
	Context int
	Sources int
}

type Controller struct {
	bus       mmio.Bus
	sources   int
	enable    uintptr
	threshold mmio.U32
	claim     mmio.U32
	tab       *irqtab.Table
}

func New(bus mmio.Bus, cfg Config) *Controller {
	if cfg.Sources <= 0 {
		cfg.Sources = DefaultSources
	}
	ctx := uintptr(cfg.Context)
	return &Controller{
		bus:       bus,
		sources:   cfg.Sources,
		enable:    regEnable + ctx*0x80,
		threshold: mmio.At[uint32](bus, regThreshold+ctx*0x1000),
		claim:     mmio.At[uint32](bus, regClaim+ctx*0x1000),
		tab:       irqtab.New("plic", cfg.Sources),
	}
}

// Init disables every source for the context, sets every priority to 0
// (never delivered) and opens the threshold.
func (c *Controller) Init() error {
	for i := 0; i < c.sources; i += 32 {
		c.bus.Store32(c.enable+uintptr(i/32)*4, 0)
	}
	for i := 1; i < c.sources; i++ {
		c.bus.Store32(regPriority+uintptr(i)*4, 0)
	}
	c.threshold.Store(0)
	return nil
}

func (c *Controller) Lines() int { return c.sources }

func (c *Controller) check(irq int) error {
	if irq == 0 {
		return errcode.New(errcode.UnknownIRQ, "plic", "source 0 is reserved")
	}
	return c.tab.Check(irq)
}

// Enable gives irq priority 1 and sets its enable bit.
func (c *Controller) Enable(irq int) error {
	if err := c.check(irq); err != nil {
		return err
	}
	c.bus.Store32(regPriority+uintptr(irq)*4, 1)
	r := mmio.At[uint32](c.bus, c.enable+uintptr(irq/32)*4)
	r.SetBits(1 << (irq % 32))
	return nil
}

func (c *Controller) Disable(irq int) error {
	if err := c.check(irq); err != nil {
		return err
	}
	r := mmio.At[uint32](c.bus, c.enable+uintptr(irq/32)*4)
	r.ClearBits(1 << (irq % 32))
	return nil
}

func (c *Controller) Register(irq int, h hal.Handler) error {
	if err := c.check(irq); err != nil {
		return err
	}
	return c.tab.Register(irq, h)
}

// Dispatch claims sources until none is pending and completes each one.
func (c *Controller) Dispatch() int {
	n := 0
	for {
		id := c.claim.Load()
		if id == 0 {
			return n
		}
		if c.tab.Run(int(id)) {
			n++
		}
		c.claim.Store(id)
	}
}
