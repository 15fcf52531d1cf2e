// Package pl011sim models a PL011 at register level on top of a recording
// bank: receive bytes are queued by the host, transmitted bytes stream to a
// writer, and FR reflects the queue.
package pl011sim

import (
	"io"
	"sync"

	"sagehal-go/drivers/pl011"
	"sagehal-go/mmio/mmiotest"
)

// Device is a simulated port. It is an mmio.Bus through the embedded Bank.
type Device struct {
	*mmiotest.Bank

	mu     sync.Mutex
	rx     []uint32
	tx     io.Writer
	txFull int // FR reads left that report TXFF
}

// New returns a device whose transmitted bytes are written to tx.
func New(tx io.Writer) *Device {
	d := &Device{Bank: mmiotest.New(), tx: tx}
	d.OnLoad(pl011.RegFR, d.flags)
	d.OnLoad(pl011.RegDR, d.pop)
	d.OnStore(pl011.RegDR, d.push)
	return d
}

// Feed queues bytes for the receiver.
func (d *Device) Feed(p []byte) {
	d.mu.Lock()
	for _, b := range p {
		d.rx = append(d.rx, uint32(b))
	}
	d.mu.Unlock()
}

// FeedRaw queues a raw DR value, error bits included.
func (d *Device) FeedRaw(v uint32) {
	d.mu.Lock()
	d.rx = append(d.rx, v)
	d.mu.Unlock()
}

// StallTx makes the next n FR reads report TXFF.
func (d *Device) StallTx(n int) {
	d.mu.Lock()
	d.txFull = n
	d.mu.Unlock()
}

// Pending returns the number of queued receive entries.
func (d *Device) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rx)
}

// Enabled reports whether UARTEN, TXE and RXE are all set.
func (d *Device) Enabled() bool {
	want := uint32(pl011.CtlUARTEN | pl011.CtlTXE | pl011.CtlRXE)
	return d.Get(pl011.RegCR)&want == want
}

func (d *Device) flags() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	var f pl011.Flag
	if len(d.rx) == 0 {
		f |= pl011.FlagRXFE
	}
	if d.txFull > 0 {
		d.txFull--
		f |= pl011.FlagTXFF
	} else {
		f |= pl011.FlagTXFE
	}
	return uint32(f)
}

func (d *Device) pop() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.rx) == 0 {
		return 0
	}
	v := d.rx[0]
	d.rx = d.rx[1:]
	return v
}

func (d *Device) push(v uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tx != nil {
		d.tx.Write([]byte{byte(v)})
	}
}
