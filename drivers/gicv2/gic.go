// Package gicv2 drives an ARM GICv2: the shared distributor and the CPU
// interface of the boot core.
package gicv2

import (
	"sagehal-go/drivers/irqtab"
	"sagehal-go/errcode"
	"sagehal-go/hal"
	"sagehal-go/mmio"
)

var _ hal.InterruptController = (*Controller)(nil)

// Distributor offsets.
const (
	gicdCTLR       = 0x000
	gicdTYPER      = 0x004
	gicdIGROUPR    = 0x080
	gicdISENABLER  = 0x100
	gicdICENABLER  = 0x180
	gicdICPENDR    = 0x280
	gicdIPRIORITYR = 0x400
	gicdITARGETSR  = 0x800
	gicdICFGR      = 0xC00
)

// CPU interface offsets.
const (
	giccCTLR = 0x00
	giccPMR  = 0x04
	giccBPR  = 0x08
	giccIAR  = 0x0C
	giccEOIR = 0x10
)

const (
	maxLines    = 1020 // IDs 1020..1023 are special
	spiBase     = 32   // first shared peripheral interrupt
	idMask      = 0x3FF
	spurious    = 1023
	prioDefault = 0x80808080 // four lines per register
	targetCPU0  = 0x01010101
	prioMaskAll = 0xFF
)

// Controller serves interrupt IDs 0..Lines()-1: SGIs 0..15, PPIs 16..31,
// then SPIs.
type Controller struct {
	dist, cpu mmio.Bus
	tab       *irqtab.Table
}

func New(dist, cpu mmio.Bus) *Controller {
	return &Controller{dist: dist, cpu: cpu}
}

// Init follows the usual bring-up: both halves off, everything masked and
// cleared, all lines group 0 at one priority, SPIs level-triggered and
// routed to CPU 0, then both halves on.
func (c *Controller) Init() error {
	c.dist.Store32(gicdCTLR, 0)
	c.cpu.Store32(giccCTLR, 0)
	c.cpu.Store32(giccPMR, prioMaskAll)
	c.cpu.Store32(giccBPR, 0)

	lines := int(c.dist.Load32(gicdTYPER)&0x1F+1) * 32
	lines = min(lines, maxLines)
	c.tab = irqtab.New("gicv2", lines)

	for i := 0; i < lines; i += 32 {
		off := uintptr(i/32) * 4
		c.dist.Store32(gicdICENABLER+off, 0xFFFFFFFF)
		c.dist.Store32(gicdICPENDR+off, 0xFFFFFFFF)
		c.dist.Store32(gicdIGROUPR+off, 0)
	}
	for i := 0; i < lines; i += 4 {
		c.dist.Store32(gicdIPRIORITYR+uintptr(i), prioDefault)
		if i >= spiBase {
			c.dist.Store32(gicdITARGETSR+uintptr(i), targetCPU0)
		}
	}
	for i := spiBase; i < lines; i += 16 {
		c.dist.Store32(gicdICFGR+uintptr(i/16)*4, 0)
	}

	c.dist.Store32(gicdCTLR, 1)
	c.cpu.Store32(giccCTLR, 1)
	return nil
}

func (c *Controller) Lines() int {
	if c.tab == nil {
		return 0
	}
	return c.tab.Lines()
}

func (c *Controller) ready(op string) error {
	if c.tab == nil {
		return errcode.New(errcode.NotReady, op, "")
	}
	return nil
}

func (c *Controller) Enable(irq int) error {
	if err := c.ready("gicv2.Enable"); err != nil {
		return err
	}
	if err := c.tab.Check(irq); err != nil {
		return err
	}
	c.dist.Store32(gicdISENABLER+uintptr(irq/32)*4, 1<<(irq%32))
	return nil
}

func (c *Controller) Disable(irq int) error {
	if err := c.ready("gicv2.Disable"); err != nil {
		return err
	}
	if err := c.tab.Check(irq); err != nil {
		return err
	}
	c.dist.Store32(gicdICENABLER+uintptr(irq/32)*4, 1<<(irq%32))
	return nil
}

func (c *Controller) Register(irq int, h hal.Handler) error {
	if err := c.ready("gicv2.Register"); err != nil {
		return err
	}
	return c.tab.Register(irq, h)
}

// Dispatch acknowledges interrupts until the CPU interface reports a
// spurious ID. Every acknowledged ID is completed, handled or not.
func (c *Controller) Dispatch() int {
	if c.tab == nil {
		return 0
	}
	n := 0
	for {
		iar := c.cpu.Load32(giccIAR)
		id := int(iar & idMask)
		if id >= maxLines {
			return n
		}
		if c.tab.Run(id) {
			n++
		}
		c.cpu.Store32(giccEOIR, iar)
	}
}
