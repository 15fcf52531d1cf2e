package hal

import (
	"sagehal-go/errcode"

	"tinygo.org/x/drivers"
)

// NoGPIO stands in on boards without a GPIO block. Init succeeds so the
// sequencer can run; every pin operation is unsupported.
type NoGPIO struct{}

func (NoGPIO) Init() error                 { return nil }
func (NoGPIO) Pins() int                   { return 0 }
func (NoGPIO) SetFunction(int, Func) error { return errcode.Unsupported }
func (NoGPIO) Set(int, bool) error         { return errcode.Unsupported }
func (NoGPIO) Get(int) (bool, error)       { return false, errcode.Unsupported }
func (NoGPIO) SetPull(int, Pull) error     { return errcode.Unsupported }

// NoBuses is the bus factory of boards without I²C or SPI support.
type NoBuses struct{}

func (NoBuses) I2C(string) (drivers.I2C, bool) { return nil, false }
func (NoBuses) SPI(string) (drivers.SPI, bool) { return nil, false }
