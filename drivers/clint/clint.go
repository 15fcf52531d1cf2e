// Package clint drives the RISC-V core-local interruptor timer: the shared
// 64-bit mtime counter and one mtimecmp per hart.
package clint

import (
	"time"

	"sagehal-go/errcode"
	"sagehal-go/hal"
	"sagehal-go/mmio"
	"sagehal-go/x/timex"
)

var _ hal.Timer = (*Timer)(nil)

const (
	regMSIP     = 0x0000 // software interrupt, 4 bytes per hart
	regMTIMECMP = 0x4000 // 8 bytes per hart
	regMTIME    = 0xBFF8
)

// DefaultFrequency is the mtime rate of the QEMU virt machine.
const DefaultFrequency = 10_000_000

type Config struct {
	Hart      int
	Frequency uint64
}

// Timer exposes one compare channel: the mtimecmp of the configured hart.
// A pending compare raises the machine timer interrupt (mip.MTIP), which is
// delivered to the hart directly rather than through the PLIC.
type Timer struct {
	bus mmio.Bus
	cmp uintptr
	hz  uint64
}

func New(bus mmio.Bus, cfg Config) *Timer {
	if cfg.Frequency == 0 {
		cfg.Frequency = DefaultFrequency
	}
	return &Timer{bus: bus, cmp: regMTIMECMP + uintptr(cfg.Hart)*8, hz: cfg.Frequency}
}

// Init disarms the compare so no timer interrupt is pending.
func (t *Timer) Init() error {
	t.setCompare(^uint64(0))
	return nil
}

func (t *Timer) Frequency() uint64 { return t.hz }
func (t *Timer) Channels() int     { return 1 }
func (t *Timer) Ticks() uint64     { return mmio.Load64(t.bus, regMTIME, regMTIME+4) }

func (t *Timer) Delay(d time.Duration) {
	n := timex.TicksFor(d, t.hz)
	start := t.Ticks()
	for t.Ticks()-start < n {
	}
}

// setCompare writes mtimecmp as two halves without ever passing through a
// value below both the old and the new compare.
func (t *Timer) setCompare(v uint64) {
	t.bus.Store32(t.cmp+4, 0xFFFFFFFF)
	t.bus.Store32(t.cmp, uint32(v))
	t.bus.Store32(t.cmp+4, uint32(v>>32))
}

func (t *Timer) compare() uint64 {
	return uint64(t.bus.Load32(t.cmp+4))<<32 | uint64(t.bus.Load32(t.cmp))
}

func check(op string, ch int) error {
	if ch != 0 {
		return errcode.New(errcode.InvalidParams, op, "clint has one channel")
	}
	return nil
}

func (t *Timer) Arm(ch int, d time.Duration) error {
	if err := check("clint.Arm", ch); err != nil {
		return err
	}
	t.setCompare(t.Ticks() + timex.TicksFor(d, t.hz))
	return nil
}

// Pending reports mtime >= mtimecmp.
func (t *Timer) Pending(ch int) (bool, error) {
	if err := check("clint.Pending", ch); err != nil {
		return false, err
	}
	return t.Ticks() >= t.compare(), nil
}

// Clear disarms the compare.
func (t *Timer) Clear(ch int) error {
	if err := check("clint.Clear", ch); err != nil {
		return err
	}
	t.setCompare(^uint64(0))
	return nil
}
