// Package stats accumulates timing samples and derives summary statistics
// from them.
package stats

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// TopN is the number of slowest samples kept in a Summary.
const TopN = 5

// Stats object helps track timing stats. Durations are whole milliseconds.
type Stats struct {
	mu sync.Mutex

	Min   int64   `json:"min"`
	Max   int64   `json:"max"`
	Total int64   `json:"total-time"`
	Num   int64   `json:"num"`
	All   []int64 `json:"all"`
}

// NewStats gets a Stats object.
func NewStats() *Stats {
	return &Stats{
		Min: math.MaxInt64,
		All: make([]int64, 0),
	}
}

// Add adds a new time to the stats object.
func (s *Stats) Add(ms int64) {
	s.mu.Lock()
	s.All = append(s.All, ms)
	s.Num++
	s.Total += ms
	if ms < s.Min {
		s.Min = ms
	}
	if ms > s.Max {
		s.Max = ms
	}
	s.mu.Unlock()
}

// Snapshot is an immutable copy of a Stats object.
type Snapshot struct {
	Min   int64   `json:"min"`
	Max   int64   `json:"max"`
	Total int64   `json:"total-time"`
	Num   int64   `json:"num"`
	All   []int64 `json:"all"`
}

// Snapshot returns a copy of the stats at the time of the call.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]int64, len(s.All))
	copy(all, s.All)
	return Snapshot{
		Min:   s.Min,
		Max:   s.Max,
		Total: s.Total,
		Num:   s.Num,
		All:   all,
	}
}

// Summary holds the statistics derived from a Snapshot.
type Summary struct {
	Count     int64   `json:"count" yaml:"count" toml:"count"`
	Min       int64   `json:"min" yaml:"min" toml:"min"`
	Max       int64   `json:"max" yaml:"max" toml:"max"`
	Mean      float64 `json:"mean" yaml:"mean" toml:"mean"`
	Deviation float64 `json:"deviation" yaml:"deviation" toml:"deviation"`
	Top       []int64 `json:"top" yaml:"top" toml:"top"`
}

// Summarize derives count, min, max, mean, sample standard deviation and the
// TopN slowest samples. Mean and deviation are floored to two decimals.
func Summarize(s Snapshot) Summary {
	sum := Summary{
		Count: s.Num,
		Min:   s.Min,
		Max:   s.Max,
		Top:   Top(s.All, TopN),
	}
	if s.Num > 0 {
		sum.Mean = FloorTo(float64(s.Total)/float64(s.Num), 2)
	}
	if len(s.All) > 1 {
		sum.Deviation = FloorTo(StdDev(s.All), 2)
	}
	return sum
}

// Mean returns the arithmetic mean of samples, or 0 if there are none.
func Mean(samples []int64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var total float64
	for _, x := range samples {
		total += float64(x)
	}
	return total / float64(len(samples))
}

// SampleVariance returns the Bessel-corrected variance of samples (divided
// by n-1). It is 0 for fewer than two samples.
func SampleVariance(samples []int64) float64 {
	if len(samples) < 2 {
		return 0
	}
	mean := Mean(samples)
	var sumSquareDelta float64
	for _, x := range samples {
		delta := float64(x) - mean
		sumSquareDelta += delta * delta
	}
	return sumSquareDelta / float64(len(samples)-1)
}

// StdDev returns the sample standard deviation of samples.
func StdDev(samples []int64) float64 {
	if len(samples) < 2 {
		return 0
	}
	return math.Sqrt(SampleVariance(samples))
}

// Top returns the n largest samples in descending order. Duplicates are kept.
func Top(samples []int64, n int) []int64 {
	sorted := make([]int64, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// FloorTo floors x to the given number of decimal digits. It works on the
// shortest decimal representation of x so values like 0.29 are not pulled
// down to 0.28 by binary rounding.
func FloorTo(x float64, digits int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || digits < 0 {
		return x
	}
	s := strconv.FormatFloat(x, 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	if dot < 0 || len(s)-dot-1 <= digits {
		return x
	}
	f, err := strconv.ParseFloat(s[:dot+1+digits], 64)
	if err != nil {
		return x
	}
	if x < 0 {
		// truncation went toward zero
		f, _ = strconv.ParseFloat(strconv.FormatFloat(f-math.Pow10(-digits), 'f', digits, 64), 64)
	}
	return f
}
