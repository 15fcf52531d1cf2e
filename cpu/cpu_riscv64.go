//go:build riscv64 && riscv64virt

package cpu

// Implemented in cpu_riscv64.s. The kernel runs in machine mode.
func wait()
func relax()
func disableInterrupts() uintptr
func restoreInterrupts(state uintptr)
func writeSATP(v uint64)
func readSATP() uint64

// Relax is a spin-loop hint (PAUSE).
func Relax() { relax() }

// DisableInterrupts clears mstatus.MIE and returns the previous mstatus.
func DisableInterrupts() uintptr { return disableInterrupts() }

// RestoreInterrupts sets mstatus.MIE again if state had it set.
func RestoreInterrupts(state uintptr) { restoreInterrupts(state) }

// Sv39MMU drives the satp register.
type Sv39MMU struct{}

// SetSATP writes satp between two full sfence.vma.
func (Sv39MMU) SetSATP(v uint64) { writeSATP(v) }
func (Sv39MMU) SATP() uint64     { return readSATP() }
