package bcmtimer

import (
	"testing"
	"time"

	"sagehal-go/errcode"
	"sagehal-go/mmio/mmiotest"
)

// counter advances CLO by step on every read and carries into CHI.
func counter(b *mmiotest.Bank, start uint64, step uint32) *uint64 {
	now := start
	b.OnLoad(regCLO, func() uint32 {
		now += uint64(step)
		return uint32(now)
	})
	b.OnLoad(regCHI, func() uint32 { return uint32(now >> 32) })
	return &now
}

func TestInitClearsMatches(t *testing.T) {
	b := mmiotest.New()
	if err := New(b).Init(); err != nil {
		t.Fatal(err)
	}
	if got := b.WritesTo(regCS); len(got) != 1 || got[0] != 0xF {
		t.Fatalf("CS writes=%v", got)
	}
}

func TestTicksAcrossWrap(t *testing.T) {
	b := mmiotest.New()
	counter(b, 0xFFFFFFF0, 0x20)
	got := New(b).Ticks()
	// reads: CHI=0, CLO wraps to 0x1_00000010, CHI=1 mismatch, retry
	if got>>32 != 1 {
		t.Fatalf("Ticks=%#x torn across wrap", got)
	}
}

func TestDelay(t *testing.T) {
	b := mmiotest.New()
	now := counter(b, 0xFFFFFF00, 10)
	tm := New(b)
	start := *now
	tm.Delay(2 * time.Millisecond)
	if elapsed := *now - start; elapsed < 2000 {
		t.Fatalf("Delay returned after %d ticks", elapsed)
	}
}

func TestArmPendingClear(t *testing.T) {
	b := mmiotest.New()
	b.Set(regCLO, 1000)
	tm := New(b)
	if err := tm.Arm(1, 500*time.Microsecond); err != nil {
		t.Fatal(err)
	}
	if got := b.Get(regC0 + 4); got != 1500 {
		t.Fatalf("C1=%d", got)
	}
	if got := b.WritesTo(regCS); len(got) != 1 || got[0] != 1<<1 {
		t.Fatalf("CS writes=%v", got)
	}

	b.Set(regCS, 1<<1|1<<3)
	if p, _ := tm.Pending(1); !p {
		t.Fatal("channel 1 not pending")
	}
	if p, _ := tm.Pending(2); p {
		t.Fatal("channel 2 pending")
	}
	b.ClearWrites()
	if err := tm.Clear(3); err != nil {
		t.Fatal(err)
	}
	if got := b.WritesTo(regCS); len(got) != 1 || got[0] != 1<<3 {
		t.Fatalf("Clear wrote %v", got)
	}
}

func TestChannelErrors(t *testing.T) {
	tm := New(mmiotest.New())
	if err := tm.Arm(4, time.Millisecond); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("Arm(4) err=%v", err)
	}
	if err := tm.Arm(0, 2*time.Hour); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("Arm 2h err=%v", err)
	}
	if _, err := tm.Pending(-1); err == nil {
		t.Fatal("Pending(-1) accepted")
	}
	if tm.Channels() != 4 || tm.Frequency() != 1_000_000 {
		t.Fatal("descriptor values")
	}
}
