package bench

import (
	"context"
	"time"

	"github.com/pilosa/etalon/etalon"
)

// Benchmark is an interface run benchmark components. Benchmarks should
// Marshal to valid JSON so that their configuration may be recorded with
// their results.
type Benchmark interface {
	Run(ctx context.Context, e *etalon.Etalon) error
}

// Result holds the output from the run of a benchmark. RunBenchmark fills
// in the Timings rendered by the Etalon, the wall-clock Duration of the
// whole run and the benchmark's Configuration. Error is set if the
// benchmark failed; timings recorded before the failure are kept.
type Result struct {
	Timings       *etalon.Report `json:"timings" yaml:"timings" toml:"timings"`
	Duration      PrettyDuration `json:"duration" yaml:"duration" toml:"duration"`
	Configuration interface{}    `json:"configuration" yaml:"configuration" toml:"configuration"`

	// Error exists so that errors can be correctly marshalled. It is set using err.Error()
	Error string `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
}

// RunBenchmark activates e and runs b against it.
func RunBenchmark(ctx context.Context, e *etalon.Etalon, b Benchmark) *Result {
	result := &Result{Configuration: b}
	e.Activate()
	start := time.Now()
	err := b.Run(ctx, e)
	result.Duration = PrettyDuration(time.Since(start))
	result.Timings = e.PrintTimings()
	if err != nil {
		result.Error = err.Error()
	}
	return result
}

// PrettyDuration is a time.Duration that encodes as a human-readable string
// instead of a number of nanoseconds.
type PrettyDuration time.Duration

// MarshalText returns a nicely formatted duration.
func (d PrettyDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText parses a duration written by MarshalText.
func (d *PrettyDuration) UnmarshalText(text []byte) error {
	td, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = PrettyDuration(td)
	return nil
}
