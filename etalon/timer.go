package etalon

import "time"

// Timer measures the wall-clock duration of a unit of work.
type Timer struct {
	now func() time.Time
}

// NewTimer returns a Timer using now as its clock, or time.Now if now is nil.
func NewTimer(now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{now: now}
}

// Measure runs work exactly once and returns the elapsed time in whole
// milliseconds, rounded down.
func (t *Timer) Measure(work func()) int64 {
	start := t.now()
	work()
	return elapsed(start, t.now())
}

func elapsed(start, end time.Time) int64 {
	ms := end.Sub(start).Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}
