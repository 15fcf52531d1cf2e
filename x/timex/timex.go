package timex

import "time"

// TicksFor converts d into counter ticks at hz, rounding up so a delay is
// never shorter than requested. Negative durations yield 0.
func TicksFor(d time.Duration, hz uint64) uint64 {
	if d <= 0 || hz == 0 {
		return 0
	}
	ns := uint64(d)
	whole := ns / uint64(time.Second) * hz
	rem := ns % uint64(time.Second) * hz
	return whole + (rem+uint64(time.Second)-1)/uint64(time.Second)
}

// DurationOf converts counter ticks at hz back into a duration.
func DurationOf(ticks, hz uint64) time.Duration {
	if hz == 0 {
		return 0
	}
	sec := ticks / hz
	rem := ticks % hz
	return time.Duration(sec)*time.Second + time.Duration(rem*uint64(time.Second)/hz)
}
