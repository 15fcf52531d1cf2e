// Package armtimer drives the EL1 virtual timer of the ARM generic timer.
package armtimer

import (
	"time"

	"sagehal-go/errcode"
	"sagehal-go/hal"
	"sagehal-go/x/timex"
)

var _ hal.Timer = (*Timer)(nil)

// SysRegs is the system register view of the virtual timer
// (CNTVCT_EL0, CNTFRQ_EL0, CNTV_TVAL_EL0, CNTV_CTL_EL0).
type SysRegs interface {
	Counter() uint64
	Frequency() uint64
	SetTimerValue(v uint32)
	Control() uint32
	SetControl(v uint32)
}

// CNTV_CTL_EL0 bits
const (
	ctlEnable  = 1 << 0
	ctlIMask   = 1 << 1
	ctlIStatus = 1 << 2
)

// The virtual timer raises PPI 27 on the GIC.
const IRQ = 27

type Timer struct {
	regs SysRegs
	hz   uint64
}

func New(regs SysRegs) *Timer { return &Timer{regs: regs} }

// Init latches the counter frequency and stops the timer.
func (t *Timer) Init() error {
	t.hz = t.regs.Frequency()
	if t.hz == 0 {
		return errcode.New(errcode.NotReady, "armtimer.Init", "CNTFRQ_EL0 not set by firmware")
	}
	t.regs.SetControl(0)
	return nil
}

func (t *Timer) Frequency() uint64 { return t.hz }
func (t *Timer) Channels() int     { return 1 }
func (t *Timer) Ticks() uint64     { return t.regs.Counter() }

func (t *Timer) Delay(d time.Duration) {
	n := timex.TicksFor(d, t.hz)
	start := t.regs.Counter()
	for t.regs.Counter()-start < n {
	}
}

func check(op string, ch int) error {
	if ch != 0 {
		return errcode.New(errcode.InvalidParams, op, "generic timer has one channel")
	}
	return nil
}

// Arm loads the down-counter and enables the timer with its interrupt
// unmasked. TVAL is a signed 32-bit value, which bounds d.
func (t *Timer) Arm(ch int, d time.Duration) error {
	const op = "armtimer.Arm"
	if err := check(op, ch); err != nil {
		return err
	}
	n := timex.TicksFor(d, t.hz)
	if n > 1<<31-1 {
		return errcode.New(errcode.InvalidParams, op, "delay exceeds timer range")
	}
	t.regs.SetTimerValue(uint32(n))
	t.regs.SetControl(ctlEnable)
	return nil
}

func (t *Timer) Pending(ch int) (bool, error) {
	if err := check("armtimer.Pending", ch); err != nil {
		return false, err
	}
	c := t.regs.Control()
	return c&ctlEnable != 0 && c&ctlIStatus != 0, nil
}

// Clear stops the timer, which drops the interrupt condition.
func (t *Timer) Clear(ch int) error {
	if err := check("armtimer.Clear", ch); err != nil {
		return err
	}
	t.regs.SetControl(0)
	return nil
}
