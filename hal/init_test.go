package hal

import (
	"errors"
	"strings"
	"testing"
	"time"

	"sagehal-go/errcode"
)

// ---- fakes ----

type recorder struct{ calls []string }

type fakeDev struct {
	name string
	rec  *recorder
	err  error
}

func (d *fakeDev) Init() error {
	d.rec.calls = append(d.rec.calls, d.name)
	return d.err
}

type fakeUART struct {
	fakeDev
	out strings.Builder
}

func (u *fakeUART) Send(b byte)           { u.out.WriteByte(b) }
func (u *fakeUART) Receive() (byte, bool) { return 0, false }
func (u *fakeUART) WriteString(s string)  { u.out.WriteString(s) }

type fakeGPIO struct{ fakeDev }

func (fakeGPIO) Pins() int                   { return 0 }
func (fakeGPIO) SetFunction(int, Func) error { return nil }
func (fakeGPIO) Set(int, bool) error         { return nil }
func (fakeGPIO) Get(int) (bool, error)       { return false, nil }
func (fakeGPIO) SetPull(int, Pull) error     { return nil }

type fakeTimer struct{ fakeDev }

func (fakeTimer) Frequency() uint64            { return 1 }
func (fakeTimer) Ticks() uint64                { return 0 }
func (fakeTimer) Delay(time.Duration)          {}
func (fakeTimer) Channels() int                { return 0 }
func (fakeTimer) Arm(int, time.Duration) error { return nil }
func (fakeTimer) Pending(int) (bool, error)    { return false, nil }
func (fakeTimer) Clear(int) error              { return nil }

type fakeIntc struct{ fakeDev }

func (fakeIntc) Lines() int                  { return 0 }
func (fakeIntc) Enable(int) error            { return nil }
func (fakeIntc) Disable(int) error           { return nil }
func (fakeIntc) Register(int, Handler) error { return nil }
func (fakeIntc) Dispatch() int               { return 0 }

type fakeMMU struct{ fakeDev }

func (fakeMMU) Enabled() bool                 { return true }
func (fakeMMU) Lookup(uint64) (Mapping, bool) { return Mapping{}, false }

type rig struct {
	rec    *recorder
	uart   *fakeUART
	gpio   *fakeGPIO
	timer  *fakeTimer
	intc   *fakeIntc
	mmu    *fakeMMU
	halted int
}

func newRig() *rig {
	rec := &recorder{}
	return &rig{
		rec:   rec,
		uart:  &fakeUART{fakeDev: fakeDev{name: "uart", rec: rec}},
		gpio:  &fakeGPIO{fakeDev{name: "gpio", rec: rec}},
		timer: &fakeTimer{fakeDev{name: "timer", rec: rec}},
		intc:  &fakeIntc{fakeDev{name: "interrupt", rec: rec}},
		mmu:   &fakeMMU{fakeDev{name: "mmu", rec: rec}},
	}
}

func (r *rig) platform() Platform {
	return Platform{
		ID: RPi4, Name: "test", Arch: "arm64",
		UART: r.uart, GPIO: r.gpio, Timer: r.timer, Interrupt: r.intc, MMU: r.mmu,
	}
}

func (r *rig) hal(t *testing.T) *HAL {
	t.Helper()
	h, err := New(r.platform(), WithHalt(func() { r.halted++ }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

// ---- tests ----

func TestInitOrder(t *testing.T) {
	r := newRig()
	h := r.hal(t)
	if h.Initialized() {
		t.Fatal("flag set before Init")
	}
	h.Init()
	want := []string{"mmu", "interrupt", "timer", "uart", "gpio"}
	if strings.Join(r.rec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("order=%v want %v", r.rec.calls, want)
	}
	if !h.Initialized() || r.halted != 0 {
		t.Fatalf("initialized=%v halted=%d", h.Initialized(), r.halted)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	r := newRig()
	h := r.hal(t)
	h.Init()
	h.Init()
	h.Init()
	if len(r.rec.calls) != 5 {
		t.Fatalf("driver inits ran %d times, want 5", len(r.rec.calls))
	}
}

func TestTraceSeesEveryStage(t *testing.T) {
	r := newRig()
	var seen []Stage
	h, err := New(r.platform(), WithTrace(func(s Stage) { seen = append(seen, s) }))
	if err != nil {
		t.Fatal(err)
	}
	h.Init()
	if len(seen) != 5 || seen[0] != StageMMU || seen[4] != StageGPIO {
		t.Fatalf("trace=%v", seen)
	}
}

func TestFailingStageHalts(t *testing.T) {
	for _, c := range []struct {
		name     string
		inject   func(r *rig)
		ran      int
		reported bool
	}{
		{"mmu", func(r *rig) { r.mmu.err = errcode.Unsupported }, 1, false},
		{"timer", func(r *rig) { r.timer.err = errcode.Timeout }, 3, false},
		{"uart", func(r *rig) { r.uart.err = errcode.InvalidParams }, 4, false},
		{"gpio", func(r *rig) { r.gpio.err = errors.New("stuck") }, 5, true},
	} {
		r := newRig()
		c.inject(r)
		h := r.hal(t)
		h.Init()
		if r.halted != 1 {
			t.Fatalf("%s: halted=%d want 1", c.name, r.halted)
		}
		if h.Initialized() {
			t.Fatalf("%s: flag set after failure", c.name)
		}
		if len(r.rec.calls) != c.ran {
			t.Fatalf("%s: stages run=%v", c.name, r.rec.calls)
		}
		out := r.uart.out.String()
		if c.reported != (out != "") {
			t.Fatalf("%s: uart output %q", c.name, out)
		}
		if c.reported && out != "[hal] gpio init failed: stuck\r\n" {
			t.Fatalf("%s: report %q", c.name, out)
		}
	}
}

func TestNewRejectsIncompletePlatform(t *testing.T) {
	r := newRig()
	p := r.platform()
	p.Timer = nil
	if _, err := New(p); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("missing timer: err=%v", err)
	}
	p = r.platform()
	p.ID = 0
	if _, err := New(p); err == nil {
		t.Fatal("zero platform id accepted")
	}
}

func TestDefaultsAndAccessors(t *testing.T) {
	r := newRig()
	h := r.hal(t)
	if _, ok := h.Buses().I2C("i2c1"); ok {
		t.Fatal("default buses must be empty")
	}
	if h.UART() != UART(r.uart) || h.MMU() != MMU(r.mmu) || h.Platform().ID != RPi4 {
		t.Fatal("accessor mismatch")
	}
}

func TestStringForms(t *testing.T) {
	for want, s := range map[string]interface{ String() string }{
		"rpi4":        RPi4,
		"qemuvirt":    QEMUVirt,
		"riscv64virt": RISCV64Virt,
		"unknown":     PlatformID(9),
		"interrupt":   StageInterrupt,
		"device":      Device,
		"normal":      Normal,
	} {
		if s.String() != want {
			t.Fatalf("String()=%q want %q", s.String(), want)
		}
	}
}

func TestNoGPIO(t *testing.T) {
	var g NoGPIO
	if err := g.Init(); err != nil {
		t.Fatal(err)
	}
	if err := g.Set(0, true); err != errcode.Unsupported {
		t.Fatalf("Set err=%v", err)
	}
	if _, err := g.Get(0); errcode.Of(err) != errcode.Unsupported {
		t.Fatalf("Get err=%v", err)
	}
}
