// Package klock provides the kernel's spin lock.
package klock

import (
	"sync"
	"sync/atomic"

	"sagehal-go/cpu"
)

var _ sync.Locker = (*Spin)(nil)

// Spin is a test-and-set lock that masks interrupts on the local core while
// held, so an interrupt handler can never spin on a lock its own core owns.
// It is not reentrant. The zero value is unlocked.
type Spin struct {
	locked atomic.Bool
	saved  uintptr
}

// Lock masks interrupts, then spins until the lock is taken.
func (s *Spin) Lock() {
	st := cpu.DisableInterrupts()
	for !s.locked.CompareAndSwap(false, true) {
		cpu.Relax()
	}
	s.saved = st
}

// TryLock takes the lock if it is free.
func (s *Spin) TryLock() bool {
	st := cpu.DisableInterrupts()
	if !s.locked.CompareAndSwap(false, true) {
		cpu.RestoreInterrupts(st)
		return false
	}
	s.saved = st
	return true
}

// Unlock releases the lock and restores the interrupt state seen by Lock.
func (s *Spin) Unlock() {
	st := s.saved
	if !s.locked.CompareAndSwap(true, false) {
		panic("klock: unlock of unlocked spin lock")
	}
	cpu.RestoreInterrupts(st)
}
