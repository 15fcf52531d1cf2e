package board

import (
	"sync"

	"sagehal-go/drivers/bcmspi"
	"sagehal-go/drivers/bsc"
	"sagehal-go/hal"
	"sagehal-go/mmio"

	"tinygo.org/x/drivers"
)

var _ hal.Buses = (*rpi4Buses)(nil)

// rpi4Buses hands out BSC1 as "i2c1" and SPI0 as "spi0". A controller is
// configured the first time it is asked for; one that fails to configure
// is reported as absent.
type rpi4Buses struct {
	mu   sync.Mutex
	i2c1 *bsc.Bus
	spi0 *bcmspi.Bus
	done map[string]error
}

func newRPi4Buses(bsc1, spi0 mmio.Bus) *rpi4Buses {
	return &rpi4Buses{
		i2c1: bsc.New(bsc1),
		spi0: bcmspi.New(spi0),
		done: map[string]error{},
	}
}

func (f *rpi4Buses) once(id string, configure func() error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	err, ok := f.done[id]
	if !ok {
		err = configure()
		f.done[id] = err
	}
	return err == nil
}

func (f *rpi4Buses) I2C(id string) (drivers.I2C, bool) {
	if id != "i2c1" {
		return nil, false
	}
	ok := f.once(id, func() error {
		return f.i2c1.Configure(bsc.Config{Frequency: 400_000})
	})
	if !ok {
		return nil, false
	}
	return f.i2c1, true
}

func (f *rpi4Buses) SPI(id string) (drivers.SPI, bool) {
	if id != "spi0" {
		return nil, false
	}
	ok := f.once(id, func() error {
		return f.spi0.Configure(bcmspi.Config{})
	})
	if !ok {
		return nil, false
	}
	return f.spi0, true
}
