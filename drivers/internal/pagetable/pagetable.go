// Package pagetable hands out page-aligned translation tables.
package pagetable

import "unsafe"

const (
	// Entries per 4 KiB table of 64-bit descriptors.
	Entries  = 512
	PageSize = 4096
)

// Alloc returns n zeroed tables, each aligned to PageSize. The Go heap
// never moves objects, so the addresses stay valid for the tables' life.
func Alloc(n int) [][]uint64 {
	raw := make([]uint64, (n+1)*Entries)
	base := uintptr(unsafe.Pointer(&raw[0]))
	skip := int((PageSize-base%PageSize)%PageSize) / 8
	out := make([][]uint64, n)
	for i := range out {
		lo := skip + i*Entries
		out[i] = raw[lo : lo+Entries : lo+Entries]
	}
	return out
}

// Addr returns the physical address of a table. The kernel is identity
// mapped, so this is the table's Go address.
func Addr(t []uint64) uint64 { return uint64(uintptr(unsafe.Pointer(&t[0]))) }
