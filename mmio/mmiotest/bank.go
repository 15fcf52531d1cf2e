// Package mmiotest provides a recording register bank for driver tests.
package mmiotest

import (
	"sync"

	"sagehal-go/mmio"
)

var _ mmio.Bus = (*Bank)(nil)

// Access is one recorded store.
type Access struct {
	Off   uintptr
	Val   uint32
	Width uint8 // 8 or 32
}

// Bank implements mmio.Bus over a sparse register map. Unwritten registers
// read as zero. Every store is recorded in order. Hooks model registers whose
// reads or writes have side effects (FIFOs, write-1-to-clear bits).
//
// Hooks run without the bank lock held, so they may call Set and Get.
type Bank struct {
	mu     sync.Mutex
	regs   map[uintptr]uint32
	writes []Access
	loads  map[uintptr]func() uint32
	stores map[uintptr]func(v uint32)
}

// New returns an empty bank.
func New() *Bank {
	return &Bank{
		regs:   map[uintptr]uint32{},
		loads:  map[uintptr]func() uint32{},
		stores: map[uintptr]func(uint32){},
	}
}

// ---- mmio.Bus ----

func (b *Bank) Load32(off uintptr) uint32 {
	b.mu.Lock()
	fn, v := b.loads[off], b.regs[off]
	b.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return v
}

func (b *Bank) Store32(off uintptr, v uint32) { b.store(off, v, 32) }

func (b *Bank) Load8(off uintptr) uint8 { return uint8(b.Load32(off)) }

func (b *Bank) Store8(off uintptr, v uint8) { b.store(off, uint32(v), 8) }

func (b *Bank) store(off uintptr, v uint32, width uint8) {
	b.mu.Lock()
	b.writes = append(b.writes, Access{Off: off, Val: v, Width: width})
	fn := b.stores[off]
	if fn == nil {
		b.regs[off] = v
	}
	b.mu.Unlock()
	if fn != nil {
		fn(v)
	}
}

// ---- Test helpers ----

// Set presets a register without recording a write.
func (b *Bank) Set(off uintptr, v uint32) {
	b.mu.Lock()
	b.regs[off] = v
	b.mu.Unlock()
}

// Get returns the stored register value, bypassing load hooks.
func (b *Bank) Get(off uintptr) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.regs[off]
}

// OnLoad installs fn as the value source for off.
func (b *Bank) OnLoad(off uintptr, fn func() uint32) {
	b.mu.Lock()
	b.loads[off] = fn
	b.mu.Unlock()
}

// OnStore routes stores to off through fn instead of the register map.
// The store is still recorded.
func (b *Bank) OnStore(off uintptr, fn func(v uint32)) {
	b.mu.Lock()
	b.stores[off] = fn
	b.mu.Unlock()
}

// Writes returns a copy of the recorded stores in order.
func (b *Bank) Writes() []Access {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Access(nil), b.writes...)
}

// WriteCount returns the number of recorded stores.
func (b *Bank) WriteCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.writes)
}

// WritesTo returns the values stored to off, in order.
func (b *Bank) WritesTo(off uintptr) []uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []uint32
	for _, w := range b.writes {
		if w.Off == off {
			out = append(out, w.Val)
		}
	}
	return out
}

// ClearWrites forgets the recorded stores; register values are kept.
func (b *Bank) ClearWrites() {
	b.mu.Lock()
	b.writes = nil
	b.mu.Unlock()
}
