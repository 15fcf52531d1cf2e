package klock

import (
	"sync"
	"testing"
)

func TestSpinMutualExclusion(t *testing.T) {
	var (
		l       Spin
		wg      sync.WaitGroup
		counter int
	)
	const workers, rounds = 8, 500
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				l.Lock()
				counter++
				l.Unlock()
			}
		}()
	}
	wg.Wait()
	if counter != workers*rounds {
		t.Fatalf("counter=%d want %d", counter, workers*rounds)
	}
}

func TestTryLock(t *testing.T) {
	var l Spin
	if !l.TryLock() {
		t.Fatal("TryLock on free lock failed")
	}
	if l.TryLock() {
		t.Fatal("TryLock on held lock succeeded")
	}
	l.Unlock()
	if !l.TryLock() {
		t.Fatal("TryLock after Unlock failed")
	}
	l.Unlock()
}

func TestUnlockOfUnlockedPanics(t *testing.T) {
	var l Spin
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic")
		}
	}()
	l.Unlock()
}
