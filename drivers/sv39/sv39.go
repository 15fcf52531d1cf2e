// Package sv39 builds a RISC-V Sv39 identity map from 1 GiB leaf entries.
//
// Sv39 has no memory types; device regions differ from RAM only in being
// non-executable. Memory attributes come from the platform's PMAs.
package sv39

import (
	"sagehal-go/drivers/internal/pagetable"
	"sagehal-go/errcode"
	"sagehal-go/hal"
)

var _ hal.MMU = (*MMU)(nil)

// SATP reads and writes the satp CSR. cpu.Sv39MMU implements it.
type SATP interface {
	SetSATP(v uint64)
	SATP() uint64
}

// PTE bits
const (
	pteV = 1 << 0
	pteR = 1 << 1
	pteW = 1 << 2
	pteX = 1 << 3
	pteU = 1 << 4
	pteG = 1 << 5
	pteA = 1 << 6
	pteD = 1 << 7

	ppnShift  = 10
	pageShift = 12
	gigaShift = 30
	vaLimit   = 1 << 39
)

const (
	modeSv39  = 8
	modeShift = 60
)

type MMU struct {
	csr     SATP
	regions []hal.Region
	root    []uint64
}

func New(csr SATP, regions []hal.Region) *MMU {
	return &MMU{csr: csr, regions: regions}
}

func pte(pa uint64, k hal.MemKind) uint64 {
	flags := uint64(pteV | pteR | pteW | pteA | pteD | pteG)
	if k == hal.Normal {
		flags |= pteX
	}
	return pa>>pageShift<<ppnShift | flags
}

// Init fills the root table and writes satp. A gigabyte touched by any
// device region is mapped as device.
func (m *MMU) Init() error {
	const op = "sv39.Init"
	if len(m.regions) == 0 {
		return errcode.New(errcode.InvalidParams, op, "empty memory map")
	}
	for _, r := range m.regions {
		if r.Size == 0 || r.End() > vaLimit || r.End() < r.Base {
			return errcode.New(errcode.InvalidParams, op, "region outside 39-bit address space")
		}
	}
	if m.root == nil {
		m.root = pagetable.Alloc(1)[0]
		for gi := range m.root {
			lo := uint64(gi) << gigaShift
			hi := lo + 1<<gigaShift
			mapped, kind := false, hal.Normal
			for _, r := range m.regions {
				if r.Base < hi && r.End() > lo {
					mapped = true
					if r.Kind == hal.Device {
						kind = hal.Device
					}
				}
			}
			if mapped {
				m.root[gi] = pte(lo, kind)
			}
		}
	}
	m.csr.SetSATP(modeSv39<<modeShift | pagetable.Addr(m.root)>>pageShift)
	return nil
}

func (m *MMU) Enabled() bool { return m.csr.SATP()>>modeShift == modeSv39 }

func (m *MMU) Lookup(va uint64) (hal.Mapping, bool) {
	if m.root == nil || va >= vaLimit {
		return hal.Mapping{}, false
	}
	e := m.root[va>>gigaShift]
	if e&pteV == 0 {
		return hal.Mapping{}, false
	}
	base := e >> ppnShift << pageShift
	mp := hal.Mapping{PA: base | va&(1<<gigaShift-1), Kind: hal.Normal, Exec: e&pteX != 0}
	if !mp.Exec {
		mp.Kind = hal.Device
	}
	return mp, true
}
