//go:build arm64 && (rpi4 || qemuvirt)

package cpu

// Implemented in cpu_arm64.s.
func wait()
func relax()
func disableInterrupts() uintptr
func restoreInterrupts(state uintptr)
func activateMMU(mair, tcr, ttbr0 uint64)
func readSCTLR() uint64
func readCNTVCT() uint64
func readCNTFRQ() uint64
func writeCNTVTVAL(v uint64)
func readCNTVCTL() uint64
func writeCNTVCTL(v uint64)

const sctlrM = 1 << 0

// Relax is a spin-loop hint (YIELD).
func Relax() { relax() }

// DisableInterrupts masks IRQ and FIQ and returns the previous DAIF state.
func DisableInterrupts() uintptr { return disableInterrupts() }

// RestoreInterrupts writes back a state from DisableInterrupts.
func RestoreInterrupts(state uintptr) { restoreInterrupts(state) }

// AArch64MMU drives the EL1 translation registers.
type AArch64MMU struct{}

// ActivateMMU loads MAIR_EL1, TCR_EL1 and TTBR0_EL1, invalidates the TLB and
// sets SCTLR_EL1.{M,C,I}.
func (AArch64MMU) ActivateMMU(mair, tcr, ttbr0 uint64) { activateMMU(mair, tcr, ttbr0) }

// MMUEnabled reports SCTLR_EL1.M.
func (AArch64MMU) MMUEnabled() bool { return readSCTLR()&sctlrM != 0 }

// GenericTimer is the EL1 virtual timer of the ARM generic timer.
type GenericTimer struct{}

func (GenericTimer) Counter() uint64        { return readCNTVCT() }
func (GenericTimer) Frequency() uint64      { return readCNTFRQ() }
func (GenericTimer) SetTimerValue(v uint32) { writeCNTVTVAL(uint64(v)) }
func (GenericTimer) Control() uint32        { return uint32(readCNTVCTL()) }
func (GenericTimer) SetControl(v uint32)    { writeCNTVCTL(uint64(v)) }
