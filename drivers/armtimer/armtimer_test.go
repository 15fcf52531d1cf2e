package armtimer

import (
	"testing"
	"time"

	"sagehal-go/errcode"
)

type fakeRegs struct {
	now, due uint64
	hz       uint64
	ctl      uint32
	step     uint64
}

func (f *fakeRegs) Counter() uint64 {
	f.now += f.step
	return f.now
}
func (f *fakeRegs) Frequency() uint64      { return f.hz }
func (f *fakeRegs) SetTimerValue(v uint32) { f.due = f.now + uint64(v) }
func (f *fakeRegs) Control() uint32 {
	c := f.ctl
	if c&ctlEnable != 0 && f.now >= f.due {
		c |= ctlIStatus
	}
	return c
}
func (f *fakeRegs) SetControl(v uint32) { f.ctl = v }

func TestInit(t *testing.T) {
	f := &fakeRegs{hz: 62_500_000, ctl: ctlEnable}
	tm := New(f)
	if err := tm.Init(); err != nil {
		t.Fatal(err)
	}
	if f.ctl != 0 || tm.Frequency() != 62_500_000 {
		t.Fatalf("ctl=%#x hz=%d", f.ctl, tm.Frequency())
	}
	if err := New(&fakeRegs{}).Init(); errcode.Of(err) != errcode.NotReady {
		t.Fatalf("zero CNTFRQ err=%v", err)
	}
}

func TestArmFireClear(t *testing.T) {
	f := &fakeRegs{hz: 1_000_000, now: 5000}
	tm := New(f)
	_ = tm.Init()
	if err := tm.Arm(0, 3*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if f.due != 8000 || f.ctl != ctlEnable {
		t.Fatalf("due=%d ctl=%#x", f.due, f.ctl)
	}
	if p, _ := tm.Pending(0); p {
		t.Fatal("pending early")
	}
	f.now = 8000
	if p, _ := tm.Pending(0); !p {
		t.Fatal("not pending when due")
	}
	_ = tm.Clear(0)
	if p, _ := tm.Pending(0); p {
		t.Fatal("pending after Clear")
	}
}

func TestLimits(t *testing.T) {
	f := &fakeRegs{hz: 62_500_000}
	tm := New(f)
	_ = tm.Init()
	if err := tm.Arm(0, time.Minute); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("Arm 1m err=%v", err)
	}
	if err := tm.Arm(1, time.Millisecond); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("Arm(1) err=%v", err)
	}
	f.step = 1000
	tm.Delay(time.Millisecond)
	if f.now < 62_500 {
		t.Fatalf("Delay returned at %d", f.now)
	}
}
