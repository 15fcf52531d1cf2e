package hal

import (
	"sync/atomic"

	"sagehal-go/cpu"
)

// Stage is one step of the bring-up sequence.
type Stage uint8

const (
	StageMMU Stage = iota
	StageInterrupt
	StageTimer
	StageUART
	StageGPIO
)

func (s Stage) String() string {
	switch s {
	case StageMMU:
		return "mmu"
	case StageInterrupt:
		return "interrupt"
	case StageTimer:
		return "timer"
	case StageUART:
		return "uart"
	case StageGPIO:
		return "gpio"
	}
	return "unknown"
}

// HAL is the kernel's handle on the selected platform. There is one per
// kernel, created at boot.
type HAL struct {
	p           Platform
	initialized atomic.Bool
	halt        func()
	trace       func(Stage)
}

// Option configures a HAL.
type Option func(*HAL)

// WithHalt replaces cpu.Halt as the reaction to a failed stage.
func WithHalt(fn func()) Option { return func(h *HAL) { h.halt = fn } }

// WithTrace calls fn before each stage runs.
func WithTrace(fn func(Stage)) Option { return func(h *HAL) { h.trace = fn } }

// New checks p and returns an uninitialized HAL.
func New(p Platform, opts ...Option) (*HAL, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Buses == nil {
		p.Buses = NoBuses{}
	}
	h := &HAL{p: p, halt: cpu.Halt}
	for _, o := range opts {
		o(h)
	}
	return h, nil
}

// Init brings the platform up: MMU, interrupt controller, timer, UART, GPIO,
// strictly in that order. Memory attributes must be right before any device
// is touched, and interrupts and the timer are ready before the UART so no
// receive interrupt is lost.
//
// Once Init has succeeded, further calls return at once without touching
// hardware. A failing stage is fatal: it is reported on the UART when the
// UART is already up, then the CPU halts.
func (h *HAL) Init() {
	if h.initialized.Load() {
		return
	}
	steps := [...]struct {
		stage Stage
		init  func() error
	}{
		{StageMMU, h.p.MMU.Init},
		{StageInterrupt, h.p.Interrupt.Init},
		{StageTimer, h.p.Timer.Init},
		{StageUART, h.p.UART.Init},
		{StageGPIO, h.p.GPIO.Init},
	}
	for _, s := range steps {
		if h.trace != nil {
			h.trace(s.stage)
		}
		if err := s.init(); err != nil {
			h.fail(s.stage, err)
			return
		}
	}
	h.initialized.Store(true)
}

func (h *HAL) fail(s Stage, err error) {
	if s > StageUART {
		u := h.p.UART
		u.WriteString("[hal] ")
		u.WriteString(s.String())
		u.WriteString(" init failed: ")
		u.WriteString(err.Error())
		u.WriteString("\r\n")
	}
	h.halt()
}

// Initialized reports whether Init has completed.
func (h *HAL) Initialized() bool { return h.initialized.Load() }

func (h *HAL) Platform() Platform             { return h.p }
func (h *HAL) UART() UART                     { return h.p.UART }
func (h *HAL) GPIO() GPIO                     { return h.p.GPIO }
func (h *HAL) Timer() Timer                   { return h.p.Timer }
func (h *HAL) Interrupt() InterruptController { return h.p.Interrupt }
func (h *HAL) MMU() MMU                       { return h.p.MMU }
func (h *HAL) Buses() Buses                   { return h.p.Buses }

// Halt stops the CPU for good.
func Halt() { cpu.Halt() }
