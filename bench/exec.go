package bench

import (
	"bytes"
	"context"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/pilosa/etalon/etalon"
)

// ExecBenchmark runs an external command repeatedly and times each run.
type ExecBenchmark struct {
	Name         string `json:"name"`
	Command      string `json:"command" help:"Command line to run; it is passed to the shell with -c."`
	Shell        string `json:"shell" help:"Shell used to run the command."`
	Identifier   string `json:"identifier" help:"Identifier to record timings under. Defaults to the command line."`
	Iterations   int    `json:"iterations" help:"Each goroutine will run the command this many times."`
	Concurrency  int    `json:"concurrency" help:"Run this many goroutines concurrently." short:"y"`
	IgnoreErrors bool   `json:"ignore-errors" help:"Keep going when the command fails."`

	Logger *log.Logger `json:"-" yaml:"-" toml:"-"`
}

// NewExecBenchmark returns an ExecBenchmark with default settings.
func NewExecBenchmark() *ExecBenchmark {
	return &ExecBenchmark{
		Name:        "exec",
		Shell:       "sh",
		Iterations:  10,
		Concurrency: 1,
		Logger:      log.New(os.Stderr, "", log.LstdFlags),
	}
}

// Run runs the benchmark.
func (b *ExecBenchmark) Run(ctx context.Context, e *etalon.Etalon) error {
	if strings.TrimSpace(b.Command) == "" {
		return errors.New("no command to run")
	}
	if b.Iterations < 0 || b.Concurrency < 1 {
		return errors.Errorf("iterations [%d] must be >= 0 and concurrency [%d] >= 1", b.Iterations, b.Concurrency)
	}
	id := b.Identifier
	if id == "" {
		id = b.Command
	}

	eg, ctx := errgroup.WithContext(ctx)
	for i := 0; i < b.Concurrency; i++ {
		eg.Go(func() error {
			for n := 0; n < b.Iterations; n++ {
				runErr, err := etalon.Time(e, id, func() error { return b.runOnce(ctx) })
				if err != nil {
					return errors.Wrap(err, "timing command")
				}
				if runErr == nil {
					continue
				}
				if !b.IgnoreErrors {
					return runErr
				}
				if b.Logger != nil {
					b.Logger.Printf("%s: %v", b.Name, runErr)
				}
			}
			return nil
		})
	}
	return eg.Wait()
}

func (b *ExecBenchmark) runOnce(ctx context.Context) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, b.Shell, "-c", b.Command)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running '%s': %s", b.Command, strings.TrimSpace(stderr.String()))
	}
	return nil
}
