// Package hal defines the hardware capabilities the kernel relies on and the
// sequencer that brings them up.
//
// A platform package supplies one implementation of each capability. The
// kernel only ever talks to these interfaces, never to register addresses.
package hal

import (
	"time"

	"tinygo.org/x/drivers"
)

// ---- UART ----

// UART is the byte-oriented serial port behind the console.
type UART interface {
	Init() error
	// Send blocks until the transmit FIFO has room, then queues b.
	Send(b byte)
	// Receive returns the next received byte, or false when none is waiting.
	// It never blocks.
	Receive() (byte, bool)
	// WriteString sends every byte of s in order.
	WriteString(s string)
}

// ---- GPIO ----

// Func selects what a pin is connected to.
type Func uint8

const (
	FuncInput Func = iota
	FuncOutput
	FuncAlt0
	FuncAlt1
	FuncAlt2
	FuncAlt3
	FuncAlt4
	FuncAlt5
)

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// GPIO is a bank of general purpose pins numbered from 0.
type GPIO interface {
	Init() error
	Pins() int
	SetFunction(pin int, fn Func) error
	Set(pin int, high bool) error
	Get(pin int) (bool, error)
	SetPull(pin int, p Pull) error
}

// ---- Timer ----

// Timer is a free-running counter with one or more compare channels.
type Timer interface {
	Init() error
	// Frequency is the counter rate in Hz.
	Frequency() uint64
	Ticks() uint64
	// Delay busy-waits for at least d.
	Delay(d time.Duration)
	Channels() int
	// Arm programs channel ch to fire d from now.
	Arm(ch int, d time.Duration) error
	Pending(ch int) (bool, error)
	Clear(ch int) error
}

// ---- Interrupts ----

// Handler services one interrupt line.
type Handler func()

// InterruptController routes device interrupt lines to handlers.
type InterruptController interface {
	Init() error
	Lines() int
	Enable(irq int) error
	Disable(irq int) error
	// Register binds h to irq. A line takes at most one handler.
	Register(irq int, h Handler) error
	// Dispatch runs the handlers of all pending, enabled lines and
	// reports how many ran.
	Dispatch() int
}

// ---- MMU ----

// MemKind is the memory type of a mapped region.
type MemKind uint8

const (
	Normal MemKind = iota // cacheable RAM, executable
	Device                // strongly ordered, never executable
)

func (k MemKind) String() string {
	if k == Device {
		return "device"
	}
	return "normal"
}

// Region is one entry of a platform memory map.
type Region struct {
	Base uint64
	Size uint64
	Kind MemKind
}

// End returns the first address past the region.
func (r Region) End() uint64 { return r.Base + r.Size }

// Mapping describes how a virtual address translates.
type Mapping struct {
	PA   uint64
	Kind MemKind
	Exec bool
}

// MMU owns the kernel's identity mapping.
type MMU interface {
	Init() error
	Enabled() bool
	Lookup(va uint64) (Mapping, bool)
}

// ---- Buses ----

// Buses hands out configured I²C and SPI controllers by id ("i2c1", "spi0").
// Uses the TinyGo drivers interfaces so device drivers written against them
// work unchanged.
type Buses interface {
	I2C(id string) (drivers.I2C, bool)
	SPI(id string) (drivers.SPI, bool)
}
