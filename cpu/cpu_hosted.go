//go:build !(arm64 && (rpi4 || qemuvirt)) && !(riscv64 && riscv64virt)

package cpu

import (
	"runtime"
	"sync/atomic"
	"time"
)

// Hosted emulation for tests and the simulator. State that a kernel would
// keep in system registers lives in package variables.

const hostedHz = 62_500_000

var boot = time.Now()

var (
	maskDepth atomic.Int32
	mmuOn     atomic.Bool
	ttbr0     atomic.Uint64
	satp      atomic.Uint64
	timerCtl  atomic.Uint32
	timerDue  atomic.Uint64
)

func wait() { time.Sleep(time.Hour) }

// Relax yields the processor to other goroutines.
func Relax() { runtime.Gosched() }

// The emulated mask is one count shared by every goroutine. Goroutines act
// as cores that release in any order, so saved states are not replayed:
// DisableInterrupts raises the count and RestoreInterrupts lowers it, and
// callers must pair them.

// DisableInterrupts raises the mask count; 1 means it was already raised.
func DisableInterrupts() uintptr {
	if maskDepth.Add(1) > 1 {
		return 1
	}
	return 0
}

// RestoreInterrupts lowers the mask count raised by DisableInterrupts.
func RestoreInterrupts(uintptr) {
	if maskDepth.Add(-1) < 0 {
		panic("cpu: RestoreInterrupts without DisableInterrupts")
	}
}

// InterruptsMasked reports whether any caller holds the emulated mask.
func InterruptsMasked() bool { return maskDepth.Load() > 0 }

// AArch64MMU records the activation instead of touching system registers.
type AArch64MMU struct{}

func (AArch64MMU) ActivateMMU(mair, tcr, root uint64) {
	ttbr0.Store(root)
	mmuOn.Store(true)
}
func (AArch64MMU) MMUEnabled() bool { return mmuOn.Load() }

// Sv39MMU records satp.
type Sv39MMU struct{}

func (Sv39MMU) SetSATP(v uint64) { satp.Store(v) }
func (Sv39MMU) SATP() uint64     { return satp.Load() }

// GenericTimer emulates the virtual timer from the host monotonic clock.
type GenericTimer struct{}

const (
	timerEnable  = 1 << 0
	timerIStatus = 1 << 2
)

func (GenericTimer) Counter() uint64 {
	ns := uint64(time.Since(boot))
	return ns/uint64(time.Second)*hostedHz + ns%uint64(time.Second)*hostedHz/uint64(time.Second)
}
func (GenericTimer) Frequency() uint64 { return hostedHz }
func (g GenericTimer) SetTimerValue(v uint32) {
	timerDue.Store(g.Counter() + uint64(v))
}
func (g GenericTimer) Control() uint32 {
	c := timerCtl.Load()
	if c&timerEnable != 0 && g.Counter() >= timerDue.Load() {
		c |= timerIStatus
	}
	return c
}
func (GenericTimer) SetControl(v uint32) { timerCtl.Store(v &^ timerIStatus) }
