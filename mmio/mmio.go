// Package mmio provides access to memory-mapped device registers.
//
// A driver sees its device as a Bus: a window of registers addressed by byte
// offset from the device base. On hardware the Bus is a Window over physical
// addresses; in tests it is a recording fake (see mmiotest).
//
// Every access goes to the device. Loads and stores are never cached, merged
// or reordered with respect to other accesses through the same Window.
package mmio

import (
	"sync/atomic"
	"unsafe"
)

// Bus is a block of device registers.
type Bus interface {
	Load32(off uintptr) uint32
	Store32(off uintptr, v uint32)
	Load8(off uintptr) uint8
	Store8(off uintptr, v uint8)
}

// Window is a Bus over physical memory. The kernel runs identity mapped, so
// the physical base doubles as the virtual address.
type Window struct {
	base uintptr
}

// NewWindow returns a Window rooted at base.
func NewWindow(base uintptr) Window { return Window{base: base} }

// 32-bit accesses use sync/atomic, which the compiler never elides or merges.

func (w Window) Load32(off uintptr) uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(w.base + off)))
}

func (w Window) Store32(off uintptr, v uint32) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(w.base+off)), v)
}

// Byte accesses have no atomic form; keeping them out of line forces one
// real access per call.

//go:noinline
func (w Window) Load8(off uintptr) uint8 {
	return *(*uint8)(unsafe.Pointer(w.base + off))
}

//go:noinline
func (w Window) Store8(off uintptr, v uint8) {
	*(*uint8)(unsafe.Pointer(w.base + off)) = v
}
