package console_test

import (
	"bytes"
	"testing"

	"sagehal-go/board"
	"sagehal-go/console"
	"sagehal-go/drivers/pl011/pl011sim"
	"sagehal-go/hal"
	"sagehal-go/mmio"
	"sagehal-go/mmio/mmiotest"
)

type mmuStub struct{ on bool }

func (m *mmuStub) ActivateMMU(_, _, _ uint64) { m.on = true }
func (m *mmuStub) MMUEnabled() bool           { return m.on }

// Cold boot of the rpi4 driver set with the UART simulated at register level.
func TestBootPrintsOK(t *testing.T) {
	var wire bytes.Buffer
	uart := pl011sim.New(&wire)
	var banks []*mmiotest.Bank
	mapper := func(base uintptr) mmio.Bus {
		if base == board.RPi4UART0 {
			return uart
		}
		b := mmiotest.New()
		banks = append(banks, b)
		return b
	}

	h, err := hal.New(board.RPi4(mapper, &mmuStub{}), hal.WithHalt(func() { t.Fatal("halted") }))
	if err != nil {
		t.Fatal(err)
	}
	h.Init()
	if !uart.Enabled() {
		t.Fatal("uart not enabled")
	}

	con := console.New(h.UART())
	con.Printfln("OK")
	if got := wire.Bytes(); !bytes.Equal(got, []byte{'O', 'K', '\r', '\n'}) {
		t.Fatalf("wire %q", got)
	}

	before := uart.WriteCount()
	for _, b := range banks {
		b.ClearWrites()
	}
	h.Init()
	if uart.WriteCount() != before {
		t.Fatal("second Init touched the uart")
	}
	for _, b := range banks {
		if b.WriteCount() != 0 {
			t.Fatal("second Init touched a device")
		}
	}
}

func TestEchoOverSimulatedUART(t *testing.T) {
	var wire bytes.Buffer
	uart := pl011sim.New(&wire)
	mapper := func(base uintptr) mmio.Bus {
		if base == board.RPi4UART0 {
			return uart
		}
		return mmiotest.New()
	}
	h, err := hal.New(board.RPi4(mapper, &mmuStub{}), hal.WithHalt(func() { t.Fatal("halted") }))
	if err != nil {
		t.Fatal(err)
	}
	h.Init()

	con := console.New(h.UART())
	uart.Feed([]byte("helo\x7flo\r"))
	buf := make([]byte, 32)
	n := con.ReadLine(buf)
	if string(buf[:n]) != "hello" {
		t.Fatalf("line %q", buf[:n])
	}
	if wire.String() != "helo\b \blo\r\n" {
		t.Fatalf("echo %q", wire.String())
	}
}
