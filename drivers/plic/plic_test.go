package plic

import (
	"testing"

	"sagehal-go/errcode"
	"sagehal-go/mmio/mmiotest"
)

func TestInit(t *testing.T) {
	b := mmiotest.New()
	if err := New(b, Config{}).Init(); err != nil {
		t.Fatal(err)
	}
	if n := len(b.Writes()); n != 3+95+1 {
		t.Fatalf("Init wrote %d registers", n)
	}
	if len(b.WritesTo(regPriority)) != 0 {
		t.Fatal("reserved source 0 priority written")
	}
	if len(b.WritesTo(regThreshold)) != 1 {
		t.Fatal("threshold not written")
	}
}

func TestEnableContext(t *testing.T) {
	b := mmiotest.New()
	c := New(b, Config{Context: 1})
	if err := c.Enable(IRQUART0); err != nil {
		t.Fatal(err)
	}
	if b.Get(regPriority+IRQUART0*4) != 1 {
		t.Fatal("priority not raised")
	}
	if got := b.Get(regEnable + 0x80); got != 1<<IRQUART0 {
		t.Fatalf("enable=%#x", got)
	}
	if err := c.Enable(IRQPCIe0 + 1); err != nil {
		t.Fatal(err)
	}
	if got := b.Get(regEnable + 0x80 + 4); got != 1<<1 {
		t.Fatalf("enable word 1=%#x", got)
	}
	if err := c.Disable(IRQUART0); err != nil {
		t.Fatal(err)
	}
	if got := b.Get(regEnable + 0x80); got != 0 {
		t.Fatalf("enable after Disable=%#x", got)
	}
	for _, irq := range []int{0, 96, -3} {
		if err := c.Enable(irq); errcode.Of(err) != errcode.UnknownIRQ {
			t.Fatalf("Enable(%d) err=%v", irq, err)
		}
	}
}

func TestDispatchClaimComplete(t *testing.T) {
	b := mmiotest.New()
	c := New(b, Config{})
	got := 0
	if err := c.Register(IRQUART0, func() { got++ }); err != nil {
		t.Fatal(err)
	}
	claims := []uint32{IRQUART0, 7, 0}
	b.OnLoad(regClaim, func() uint32 {
		v := claims[0]
		claims = claims[1:]
		return v
	})
	if n := c.Dispatch(); n != 1 || got != 1 {
		t.Fatalf("Dispatch=%d handler=%d", n, got)
	}
	if done := b.WritesTo(regClaim); len(done) != 2 || done[0] != IRQUART0 || done[1] != 7 {
		t.Fatalf("complete writes=%v", done)
	}
}
