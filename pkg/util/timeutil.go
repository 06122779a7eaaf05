package util

import "time"

// Clock yields the current time; services accept one so tests can pin it.
type Clock func() time.Time

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// OrNow returns clock, or NowUTC when clock is nil.
func OrNow(clock Clock) Clock {
	if clock == nil {
		return NowUTC
	}
	return clock
}
