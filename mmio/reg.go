package mmio

// R32 is a 32-bit register at a fixed offset on a Bus. T is usually a
// driver-local flag type so bit masks cannot be mixed between registers.
type R32[T ~uint32] struct {
	bus Bus
	off uintptr
}

// U32 is an untyped 32-bit register.
type U32 = R32[uint32]

// At binds a 32-bit register at off.
func At[T ~uint32](b Bus, off uintptr) R32[T] { return R32[T]{bus: b, off: off} }

func (r R32[T]) Offset() uintptr { return r.off }
func (r R32[T]) Load() T         { return T(r.bus.Load32(r.off)) }
func (r R32[T]) Store(v T)       { r.bus.Store32(r.off, uint32(v)) }

// LoadBits returns the register masked by mask.
func (r R32[T]) LoadBits(mask T) T { return r.Load() & mask }

// StoreBits replaces the bits selected by mask with v (read-modify-write).
func (r R32[T]) StoreBits(mask, v T) { r.Store(r.Load()&^mask | v&mask) }

// SetBits sets mask (read-modify-write).
func (r R32[T]) SetBits(mask T) { r.Store(r.Load() | mask) }

// ClearBits clears mask (read-modify-write).
func (r R32[T]) ClearBits(mask T) { r.Store(r.Load() &^ mask) }

// R8 is an 8-bit register at a fixed offset on a Bus.
type R8[T ~uint8] struct {
	bus Bus
	off uintptr
}

// U8 is an untyped 8-bit register.
type U8 = R8[uint8]

// At8 binds an 8-bit register at off.
func At8[T ~uint8](b Bus, off uintptr) R8[T] { return R8[T]{bus: b, off: off} }

func (r R8[T]) Offset() uintptr { return r.off }
func (r R8[T]) Load() T         { return T(r.bus.Load8(r.off)) }
func (r R8[T]) Store(v T)       { r.bus.Store8(r.off, uint8(v)) }

// LoadBits returns the register masked by mask.
func (r R8[T]) LoadBits(mask T) T { return r.Load() & mask }

// SetBits sets mask (read-modify-write).
func (r R8[T]) SetBits(mask T) { r.Store(r.Load() | mask) }

// ClearBits clears mask (read-modify-write).
func (r R8[T]) ClearBits(mask T) { r.Store(r.Load() &^ mask) }

// Load64 reads a 64-bit counter exposed as two 32-bit halves that keep
// counting while being read. The high half is read again until it is stable,
// so the result is never torn across a low-word wrap.
func Load64(b Bus, lo, hi uintptr) uint64 {
	for {
		h := b.Load32(hi)
		l := b.Load32(lo)
		if b.Load32(hi) == h {
			return uint64(h)<<32 | uint64(l)
		}
	}
}
