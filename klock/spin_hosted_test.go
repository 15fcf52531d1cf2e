//go:build !(arm64 && (rpi4 || qemuvirt)) && !(riscv64 && riscv64virt)

package klock

import (
	"sync"
	"testing"

	"sagehal-go/cpu"
)

func TestContendedLockLeavesInterruptsUnmasked(t *testing.T) {
	var (
		l  Spin
		wg sync.WaitGroup
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				l.Lock()
				if !cpu.InterruptsMasked() {
					t.Error("interrupts unmasked while lock held")
				}
				l.Unlock()
				if l.TryLock() {
					l.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	if cpu.InterruptsMasked() {
		t.Fatal("interrupts left masked after every holder unlocked")
	}
}
