package pl011_test

import (
	"bytes"
	"testing"

	"sagehal-go/drivers/pl011"
	"sagehal-go/drivers/pl011/pl011sim"
)

func TestSendWaitsForRoom(t *testing.T) {
	var out bytes.Buffer
	d := pl011sim.New(&out)
	u := pl011.New(d, pl011.Config{})
	d.StallTx(5)
	u.Send('x')
	if out.String() != "x" {
		t.Fatalf("out=%q", out.String())
	}
	if n := len(d.WritesTo(pl011.RegDR)); n != 1 {
		t.Fatalf("DR writes=%d want 1", n)
	}
}

func TestWriteStringAndReadAdapter(t *testing.T) {
	var out bytes.Buffer
	d := pl011sim.New(&out)
	u := pl011.New(d, pl011.Config{})
	if err := u.Init(); err != nil {
		t.Fatal(err)
	}
	if !d.Enabled() {
		t.Fatal("port not enabled after Init")
	}
	u.WriteString("OK\r\n")
	if out.String() != "OK\r\n" {
		t.Fatalf("out=%q", out.String())
	}

	if u.Buffered() != 0 {
		t.Fatal("Buffered with empty FIFO")
	}
	d.Feed([]byte("hey"))
	d.FeedRaw(0x0441) // framing error bit with 'A'
	if u.Buffered() != 1 {
		t.Fatal("Buffered should report waiting data")
	}
	buf := make([]byte, 8)
	n, err := u.Read(buf)
	if err != nil || string(buf[:n]) != "heyA" {
		t.Fatalf("Read=%q,%v", buf[:n], err)
	}
	if n, _ := u.Read(buf); n != 0 {
		t.Fatalf("Read on empty FIFO returned %d", n)
	}
	if n, _ := u.Write([]byte("!")); n != 1 || out.String() != "OK\r\n!" {
		t.Fatalf("Write: n=%d out=%q", n, out.String())
	}
}

func TestInterruptReceiveRing(t *testing.T) {
	d := pl011sim.New(&bytes.Buffer{})
	u := pl011.New(d, pl011.Config{RxInterrupt: true, RxBuffer: 4})
	if err := u.Init(); err != nil {
		t.Fatal(err)
	}
	d.Feed([]byte("abcdef"))
	if u.Buffered() != 0 {
		t.Fatal("ring filled before the interrupt ran")
	}
	d.ClearWrites()
	u.HandleInterrupt()
	if d.Pending() != 0 {
		t.Fatalf("FIFO not drained: %d left", d.Pending())
	}
	if got := d.WritesTo(pl011.RegICR); len(got) != 1 || got[0] != uint32(pl011.IntrRX|pl011.IntrRT) {
		t.Fatalf("ICR writes=%v", got)
	}
	if u.Buffered() != 4 || u.Dropped() != 2 {
		t.Fatalf("buffered=%d dropped=%d", u.Buffered(), u.Dropped())
	}
	buf := make([]byte, 8)
	n, _ := u.Read(buf)
	if string(buf[:n]) != "abcd" {
		t.Fatalf("read %q", buf[:n])
	}
	if _, ok := u.Receive(); ok {
		t.Fatal("Receive returned data from an empty ring")
	}
}
