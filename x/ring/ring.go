// Package ring is a single-producer, single-consumer byte ring. The producer
// is typically an interrupt handler and the consumer the code it interrupts;
// neither side takes a lock.
package ring

import "sync/atomic"

// Ring holds up to its size in bytes. Indices run freely and wrap through
// the mask.
type Ring struct {
	buf  []byte
	mask uint32
	rd   atomic.Uint32 // consumer index
	wr   atomic.Uint32 // producer index
}

// New returns a ring of size bytes. size must be a power of two >= 2.
func New(size int) *Ring {
	if size < 2 || size&(size-1) != 0 {
		panic("ring: size must be power of two >= 2")
	}
	return &Ring{buf: make([]byte, size), mask: uint32(size - 1)}
}

// Available returns the number of bytes waiting.
func (r *Ring) Available() int { return int(r.wr.Load() - r.rd.Load()) }

// ---- producer ----

// Put appends b and reports false when the ring is full.
func (r *Ring) Put(b byte) bool {
	wr := r.wr.Load()
	if wr-r.rd.Load() == uint32(len(r.buf)) {
		return false
	}
	r.buf[wr&r.mask] = b
	r.wr.Store(wr + 1)
	return true
}

// ---- consumer ----

// Get removes the oldest byte.
func (r *Ring) Get() (byte, bool) {
	rd := r.rd.Load()
	if rd == r.wr.Load() {
		return 0, false
	}
	b := r.buf[rd&r.mask]
	r.rd.Store(rd + 1)
	return b, true
}

// Read moves up to len(dst) bytes out of the ring.
func (r *Ring) Read(dst []byte) int {
	rd := r.rd.Load()
	n := min(len(dst), int(r.wr.Load()-rd))
	if n <= 0 {
		return 0
	}
	at := rd & r.mask
	first := copy(dst[:n], r.buf[at:])
	copy(dst[first:n], r.buf)
	r.rd.Store(rd + uint32(n))
	return n
}
