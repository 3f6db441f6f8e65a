package etalon

import (
	"sync"
	"time"
)

// stepClock returns base, then base+steps[0], base+steps[0]+steps[1], ...
// Each Measure reads the clock twice, so steps alternate start/end gaps.
type stepClock struct {
	mu    sync.Mutex
	now   time.Time
	steps []time.Duration
}

func newStepClock(steps ...time.Duration) *stepClock {
	return &stepClock{now: time.Unix(1500000000, 0), steps: steps}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	if len(c.steps) > 0 {
		c.now = c.now.Add(c.steps[0])
		c.steps = c.steps[1:]
	}
	return t
}

// durations builds a step list so consecutive Measure calls see each of ds.
func durations(ds ...time.Duration) []time.Duration {
	steps := make([]time.Duration, 0, 2*len(ds))
	for _, d := range ds {
		steps = append(steps, d, 0)
	}
	return steps
}

type recordingReporter struct {
	mu     sync.Mutex
	levels []Level
	lines  []string
}

func (r *recordingReporter) Report(level Level, line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels = append(r.levels, level)
	r.lines = append(r.lines, line)
}
