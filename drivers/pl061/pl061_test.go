package pl061

import (
	"testing"

	"sagehal-go/errcode"
	"sagehal-go/hal"
	"sagehal-go/mmio/mmiotest"
)

func TestInitThenIdempotentAccess(t *testing.T) {
	b := mmiotest.New()
	g := New(b)
	if err := g.Set(0, true); errcode.Of(err) != errcode.NotReady {
		t.Fatalf("Set before Init err=%v", err)
	}
	if err := g.Init(); err != nil {
		t.Fatal(err)
	}
	if got := b.WritesTo(regIE); len(got) != 1 || got[0] != 0 {
		t.Fatalf("IE writes=%v", got)
	}
	if got := b.WritesTo(regIC); len(got) != 1 || got[0] != 0xFF {
		t.Fatalf("IC writes=%v", got)
	}
}

func TestMaskedData(t *testing.T) {
	b := mmiotest.New()
	g := New(b)
	_ = g.Init()
	b.ClearWrites()

	if err := g.Set(3, true); err != nil {
		t.Fatal(err)
	}
	if err := g.Set(5, false); err != nil {
		t.Fatal(err)
	}
	w := b.Writes()
	if len(w) != 2 || w[0].Off != 1<<5 || w[0].Val != 1<<3 || w[1].Off != 1<<7 || w[1].Val != 0 {
		t.Fatalf("writes=%+v", w)
	}
	b.Set(1<<(2+2), 1<<2)
	if v, _ := g.Get(2); !v {
		t.Fatal("Get(2) low")
	}
	if _, err := g.Get(8); errcode.Of(err) != errcode.UnknownPin {
		t.Fatalf("Get(8) err=%v", err)
	}
}

func TestFunctions(t *testing.T) {
	b := mmiotest.New()
	g := New(b)
	_ = g.Init()
	if err := g.SetFunction(1, hal.FuncOutput); err != nil {
		t.Fatal(err)
	}
	if err := g.SetFunction(6, hal.FuncOutput); err != nil {
		t.Fatal(err)
	}
	if err := g.SetFunction(1, hal.FuncInput); err != nil {
		t.Fatal(err)
	}
	if got := b.Get(regDIR); got != 1<<6 {
		t.Fatalf("DIR=%#x", got)
	}
	if err := g.SetFunction(0, hal.FuncAlt0); err != nil || b.Get(regAFSEL) != 1 {
		t.Fatalf("alt0: err=%v AFSEL=%#x", err, b.Get(regAFSEL))
	}
	if err := g.SetFunction(0, hal.FuncAlt3); errcode.Of(err) != errcode.Unsupported {
		t.Fatalf("alt3 err=%v", err)
	}
	if err := g.SetPull(0, hal.PullUp); errcode.Of(err) != errcode.Unsupported {
		t.Fatalf("pull err=%v", err)
	}
	if err := g.SetPull(0, hal.PullNone); err != nil {
		t.Fatalf("PullNone err=%v", err)
	}
}
