package bcmintc

import (
	"testing"

	"sagehal-go/errcode"
	"sagehal-go/mmio/mmiotest"
)

func TestInitMasksEverything(t *testing.T) {
	b := mmiotest.New()
	if err := New(b).Init(); err != nil {
		t.Fatal(err)
	}
	for _, off := range []uintptr{regDisable1, regDisable2, regDisableBasic} {
		if got := b.WritesTo(off); len(got) != 1 || got[0] != 0xFFFFFFFF {
			t.Fatalf("%#x writes=%v", off, got)
		}
	}
}

func TestEnableDisableBits(t *testing.T) {
	for _, c := range []struct {
		irq    int
		enOff  uintptr
		disOff uintptr
		bit    uint32
	}{
		{IRQSystemTimer1, regEnable1, regDisable1, 1 << 1},
		{IRQUART, regEnable2, regDisable2, 1 << 25},
		{64, regEnableBasic, regDisableBasic, 1 << 0},
		{71, regEnableBasic, regDisableBasic, 1 << 7},
	} {
		b := mmiotest.New()
		ic := New(b)
		if err := ic.Enable(c.irq); err != nil {
			t.Fatal(err)
		}
		if err := ic.Disable(c.irq); err != nil {
			t.Fatal(err)
		}
		w := b.Writes()
		if len(w) != 2 || w[0].Off != c.enOff || w[0].Val != c.bit || w[1].Off != c.disOff || w[1].Val != c.bit {
			t.Fatalf("irq %d writes=%+v", c.irq, w)
		}
	}
	if err := New(mmiotest.New()).Enable(Lines); errcode.Of(err) != errcode.UnknownIRQ {
		t.Fatalf("Enable(%d) err=%v", Lines, err)
	}
}

func TestDispatch(t *testing.T) {
	b := mmiotest.New()
	ic := New(b)
	var order []int
	for _, irq := range []int{IRQSystemTimer1, IRQUART, 64, 5} {
		if err := ic.Register(irq, func() { order = append(order, irq) }); err != nil {
			t.Fatal(err)
		}
	}
	if err := ic.Register(IRQUART, func() {}); errcode.Of(err) != errcode.Busy {
		t.Fatalf("duplicate err=%v", err)
	}

	b.Set(regPending1, 1<<1|1<<5|1<<9)
	b.Set(regEnable1, 1<<1|1<<9) // 5 pending but masked
	b.Set(regPending2, 1<<25)
	b.Set(regEnable2, 1<<25)
	b.Set(regBasicPending, 1<<0|1<<8) // bit 8 is a bank summary bit
	b.Set(regEnableBasic, 1<<0)

	if n := ic.Dispatch(); n != 3 {
		t.Fatalf("Dispatch ran %d handlers", n)
	}
	want := []int{IRQSystemTimer1, IRQUART, 64}
	for i, irq := range want {
		if order[i] != irq {
			t.Fatalf("order=%v want %v", order, want)
		}
	}
}
