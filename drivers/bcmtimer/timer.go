// Package bcmtimer drives the Broadcom system timer: a free-running 1 MHz
// 64-bit counter with four 32-bit compare channels.
package bcmtimer

import (
	"strconv"
	"time"

	"sagehal-go/errcode"
	"sagehal-go/hal"
	"sagehal-go/mmio"
	"sagehal-go/x/timex"
)

var _ hal.Timer = (*Timer)(nil)

const (
	regCS  = 0x00 // match flags, write 1 to clear
	regCLO = 0x04
	regCHI = 0x08
	regC0  = 0x0C // compare 0..3 at 4-byte stride
)

// Exported for register models built on top of the driver's layout.
const (
	RegCLO = regCLO
	RegCHI = regCHI
)

const (
	Frequency = 1_000_000
	channels  = 4
)

type Timer struct {
	bus mmio.Bus
	cs  mmio.U32
}

func New(bus mmio.Bus) *Timer {
	return &Timer{bus: bus, cs: mmio.At[uint32](bus, regCS)}
}

// Init clears any stale match flags. The counter itself cannot be stopped
// or reset.
func (t *Timer) Init() error {
	t.cs.Store(1<<channels - 1)
	return nil
}

func (t *Timer) Frequency() uint64 { return Frequency }
func (t *Timer) Channels() int     { return channels }

// Ticks reads CHI:CLO without tearing across a CLO wrap.
func (t *Timer) Ticks() uint64 { return mmio.Load64(t.bus, regCLO, regCHI) }

// Delay busy-waits on CLO alone; the 32-bit difference stays correct
// across a wrap.
func (t *Timer) Delay(d time.Duration) {
	n := timex.TicksFor(d, Frequency)
	for n > 0 {
		step := uint32(min(n, 1<<31))
		start := t.bus.Load32(regCLO)
		for t.bus.Load32(regCLO)-start < step {
		}
		n -= uint64(step)
	}
}

func check(op string, ch int) error {
	if ch < 0 || ch >= channels {
		return errcode.New(errcode.InvalidParams, op, "channel "+strconv.Itoa(ch))
	}
	return nil
}

// Arm sets compare channel ch to CLO + d and clears its match flag. Compare
// registers are 32 bits wide, so d is limited to about 71 minutes.
func (t *Timer) Arm(ch int, d time.Duration) error {
	const op = "bcmtimer.Arm"
	if err := check(op, ch); err != nil {
		return err
	}
	n := timex.TicksFor(d, Frequency)
	if n > 1<<32-1 {
		return errcode.New(errcode.InvalidParams, op, "delay exceeds 32-bit compare")
	}
	t.bus.Store32(regC0+uintptr(ch)*4, t.bus.Load32(regCLO)+uint32(n))
	t.cs.Store(1 << ch)
	return nil
}

func (t *Timer) Pending(ch int) (bool, error) {
	if err := check("bcmtimer.Pending", ch); err != nil {
		return false, err
	}
	return t.cs.LoadBits(1<<ch) != 0, nil
}

func (t *Timer) Clear(ch int) error {
	if err := check("bcmtimer.Clear", ch); err != nil {
		return err
	}
	t.cs.Store(1 << ch)
	return nil
}
