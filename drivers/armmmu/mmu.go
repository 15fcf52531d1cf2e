// Package armmmu builds the AArch64 EL1 identity map and turns the MMU on.
//
// The map uses the 4 KiB granule with a 39-bit address space, so translation
// starts at level 1: each level-1 entry covers 1 GiB. A gigabyte whose
// regions all share one memory type becomes a single block; one that mixes
// types is split into 2 MiB level-2 blocks.
package armmmu

import (
	"sagehal-go/drivers/internal/pagetable"
	"sagehal-go/errcode"
	"sagehal-go/hal"
)

var _ hal.MMU = (*MMU)(nil)

// Activator loads the translation registers. cpu.AArch64MMU implements it.
type Activator interface {
	ActivateMMU(mair, tcr, ttbr0 uint64)
	MMUEnabled() bool
}

// descriptor bits
const (
	descValid = 1 << 0
	descTable = 1 << 1 // with descValid: next-level table; without: block
	descAF    = 1 << 10
	descSHIn  = 3 << 8
	descPXN   = 1 << 53
	descUXN   = 1 << 54
	attrShift = 2
	attrMask  = 7 << attrShift
	outMask   = 0x0000_FFFF_FFFF_F000
)

// MAIR_EL1 attribute indices
const (
	attrNormal = 0 // 0xFF: inner/outer write-back, read/write allocate
	attrDevice = 1 // 0x00: device nGnRnE

	MAIR = 0xFF<<(8*attrNormal) | 0x00<<(8*attrDevice)
)

// TCR_EL1: T0SZ=25, inner/outer WB WA walks, inner shareable, 4 KiB
// granule, TTBR1 walks disabled, 40-bit physical addresses.
const TCR = 25 | 1<<8 | 1<<10 | 3<<12 | 0<<14 | 1<<23 | 2<<32

const (
	l1Shift = 30
	l2Shift = 21
	vaLimit = 1 << 39
)

// DefaultMaxSplits bounds how many gigabytes may be split into level-2 tables.
const DefaultMaxSplits = 4

type Config struct {
	Regions   []hal.Region
	MaxSplits int
}

type MMU struct {
	act  Activator
	cfg  Config
	l1   []uint64
	l2   map[int][]uint64
	done bool
}

func New(act Activator, cfg Config) *MMU {
	if cfg.MaxSplits <= 0 {
		cfg.MaxSplits = DefaultMaxSplits
	}
	return &MMU{act: act, cfg: cfg}
}

// Init builds the tables and activates them.
func (m *MMU) Init() error {
	if err := m.build(); err != nil {
		return err
	}
	m.act.ActivateMMU(MAIR, TCR, pagetable.Addr(m.l1))
	return nil
}

func (m *MMU) Enabled() bool { return m.act.MMUEnabled() }

func block(pa uint64, k hal.MemKind) uint64 {
	d := pa&outMask | descValid | descAF
	if k == hal.Device {
		return d | attrDevice<<attrShift | descPXN | descUXN
	}
	return d | attrNormal<<attrShift | descSHIn | descUXN
}

// kindOf classifies [lo, hi): mapped reports any overlap, mixed reports
// overlapping regions of different kinds. Device wins a mixed range.
func kindOf(regs []hal.Region, lo, hi uint64) (k hal.MemKind, mapped, mixed bool) {
	for _, r := range regs {
		if r.Base >= hi || r.End() <= lo {
			continue
		}
		if mapped && r.Kind != k {
			mixed = true
		}
		if !mapped || r.Kind == hal.Device {
			k = r.Kind
		}
		mapped = true
	}
	return k, mapped, mixed
}

func (m *MMU) build() error {
	const op = "armmmu.Init"
	if m.done {
		return nil
	}
	if len(m.cfg.Regions) == 0 {
		return errcode.New(errcode.InvalidParams, op, "empty memory map")
	}
	for _, r := range m.cfg.Regions {
		if r.Size == 0 || r.End() > vaLimit || r.End() < r.Base {
			return errcode.New(errcode.InvalidParams, op, "region outside 39-bit address space")
		}
	}
	var splits []int
	for gi := 0; gi < pagetable.Entries; gi++ {
		lo := uint64(gi) << l1Shift
		if _, _, mixed := kindOf(m.cfg.Regions, lo, lo+1<<l1Shift); mixed {
			splits = append(splits, gi)
		}
	}
	if len(splits) > m.cfg.MaxSplits {
		return errcode.New(errcode.InvalidParams, op, "too many mixed gigabytes")
	}

	tabs := pagetable.Alloc(1 + len(splits))
	m.l1 = tabs[0]
	m.l2 = make(map[int][]uint64, len(splits))
	for i, gi := range splits {
		m.l2[gi] = tabs[1+i]
	}
	for gi := range m.l1 {
		lo := uint64(gi) << l1Shift
		if t, ok := m.l2[gi]; ok {
			for si := range t {
				slo := lo + uint64(si)<<l2Shift
				if k, mapped, _ := kindOf(m.cfg.Regions, slo, slo+1<<l2Shift); mapped {
					t[si] = block(slo, k)
				}
			}
			m.l1[gi] = pagetable.Addr(t) | descValid | descTable
			continue
		}
		if k, mapped, _ := kindOf(m.cfg.Regions, lo, lo+1<<l1Shift); mapped {
			m.l1[gi] = block(lo, k)
		}
	}
	m.done = true
	return nil
}

// Lookup walks the tables built by Init.
func (m *MMU) Lookup(va uint64) (hal.Mapping, bool) {
	if !m.done || va >= vaLimit {
		return hal.Mapping{}, false
	}
	gi := int(va >> l1Shift)
	d := m.l1[gi]
	size := uint64(1) << l1Shift
	if t, ok := m.l2[gi]; ok {
		d = t[(va>>l2Shift)%pagetable.Entries]
		size = 1 << l2Shift
	}
	if d&descValid == 0 {
		return hal.Mapping{}, false
	}
	mp := hal.Mapping{
		PA:   d&outMask&^(size-1) | va&(size-1),
		Kind: hal.Normal,
		Exec: d&descPXN == 0,
	}
	if (d&attrMask)>>attrShift == attrDevice {
		mp.Kind = hal.Device
	}
	return mp, true
}
