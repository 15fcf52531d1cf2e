// Package cpu holds the few operations that need a specific instruction:
// low-power waiting, interrupt masking, spin hints and the system registers
// behind the MMU and the ARM generic timer.
//
// Kernel builds (platform tags plus a matching GOARCH) implement them in
// assembly. Every other build gets a hosted emulation, so tests and the
// simulator run the same code paths on a development machine.
package cpu

// Halt parks the calling core for good. Each wake-up (event or interrupt)
// goes straight back to the wait instruction. It never returns.
func Halt() {
	for {
		wait()
	}
}

// Delay spins for roughly n hint instructions. Used for the short settle
// times some peripherals need between register writes.
func Delay(n int) {
	for i := 0; i < n; i++ {
		Relax()
	}
}
