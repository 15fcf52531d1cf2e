package sv39

import (
	"testing"

	"sagehal-go/drivers/internal/pagetable"
	"sagehal-go/errcode"
	"sagehal-go/hal"
)

type fakeCSR struct{ satp uint64 }

func (f *fakeCSR) SetSATP(v uint64) { f.satp = v }
func (f *fakeCSR) SATP() uint64     { return f.satp }

var virtMap = []hal.Region{
	{Base: 0, Size: 0x8000_0000, Kind: hal.Device},
	{Base: 0x8000_0000, Size: 0x4000_0000, Kind: hal.Normal},
}

func TestInit(t *testing.T) {
	csr := &fakeCSR{}
	m := New(csr, virtMap)
	if m.Enabled() {
		t.Fatal("enabled before Init")
	}
	if err := m.Init(); err != nil {
		t.Fatal(err)
	}
	if csr.satp>>60 != 8 || csr.satp&(1<<44-1) != pagetable.Addr(m.root)>>12 {
		t.Fatalf("satp=%#x", csr.satp)
	}
	if !m.Enabled() {
		t.Fatal("not enabled")
	}
	const dev = pteV | pteR | pteW | pteA | pteD | pteG
	if m.root[0] != dev || m.root[1] != (1<<30)>>12<<10|dev {
		t.Fatalf("root[0]=%#x root[1]=%#x", m.root[0], m.root[1])
	}
	if m.root[2] != (2<<30)>>12<<10|dev|pteX {
		t.Fatalf("root[2]=%#x", m.root[2])
	}
	if m.root[3] != 0 {
		t.Fatal("unmapped gigabyte has an entry")
	}
}

func TestLookup(t *testing.T) {
	m := New(&fakeCSR{}, virtMap)
	_ = m.Init()
	for _, c := range []struct {
		va   uint64
		ok   bool
		kind hal.MemKind
	}{
		{0x1000_0000, true, hal.Device},
		{0x0C00_0004, true, hal.Device},
		{0x8020_0000, true, hal.Normal},
		{0xC000_0000, false, 0},
	} {
		mp, ok := m.Lookup(c.va)
		if ok != c.ok || (ok && (mp.PA != c.va || mp.Kind != c.kind || mp.Exec != (c.kind == hal.Normal))) {
			t.Fatalf("Lookup(%#x)=%+v,%v", c.va, mp, ok)
		}
	}
}

func TestInitRejects(t *testing.T) {
	if err := New(&fakeCSR{}, nil).Init(); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("err=%v", err)
	}
	bad := []hal.Region{{Base: 1 << 39, Size: 4096}}
	if err := New(&fakeCSR{}, bad).Init(); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("err=%v", err)
	}
}
