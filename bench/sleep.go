package bench

import (
	"context"
	"log"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/pilosa/etalon/etalon"
)

// SleepBenchmark times synthetic work: every iteration sleeps for a fixed
// period plus random jitter. It is useful to check the reporting pipeline
// without depending on anything external.
type SleepBenchmark struct {
	Name        string `json:"name"`
	Identifier  string `json:"identifier" help:"Identifier to record timings under."`
	SleepMS     int    `json:"sleep-ms" help:"Milliseconds each iteration sleeps."`
	JitterMS    int    `json:"jitter-ms" help:"Up to this many extra random milliseconds per iteration."`
	Iterations  int    `json:"iterations" help:"Each goroutine will sleep this many times."`
	Concurrency int    `json:"concurrency" help:"Run this many goroutines concurrently." short:"y"`
	Seed        int64  `json:"seed" help:"Random seed for jitter."`

	Logger *log.Logger `json:"-" yaml:"-" toml:"-"`
}

// NewSleepBenchmark returns a SleepBenchmark with default settings.
func NewSleepBenchmark() *SleepBenchmark {
	return &SleepBenchmark{
		Name:        "sleep",
		Identifier:  "sleep",
		SleepMS:     10,
		Iterations:  10,
		Concurrency: runtime.NumCPU(),
		Logger:      log.New(os.Stderr, "", log.LstdFlags),
	}
}

// Run runs the benchmark.
func (b *SleepBenchmark) Run(ctx context.Context, e *etalon.Etalon) error {
	if b.Iterations < 0 || b.Concurrency < 1 {
		return errors.Errorf("iterations [%d] must be >= 0 and concurrency [%d] >= 1", b.Iterations, b.Concurrency)
	}
	if b.SleepMS < 0 || b.JitterMS < 0 {
		return errors.New("sleep and jitter must not be negative")
	}

	eg, ctx := errgroup.WithContext(ctx)
	for i := 0; i < b.Concurrency; i++ {
		rng := rand.New(rand.NewSource(b.Seed + int64(i)))
		eg.Go(func() error {
			for n := 0; n < b.Iterations; n++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				d := time.Duration(b.SleepMS) * time.Millisecond
				if b.JitterMS > 0 {
					d += time.Duration(rng.Intn(b.JitterMS+1)) * time.Millisecond
				}
				if err := e.Time(b.Identifier, func() { time.Sleep(d) }); err != nil {
					return errors.Wrap(err, "timing sleep")
				}
			}
			return nil
		})
	}
	err := eg.Wait()
	if b.Logger != nil {
		b.Logger.Printf("%s: %d goroutines x %d iterations done", b.Name, b.Concurrency, b.Iterations)
	}
	return err
}
