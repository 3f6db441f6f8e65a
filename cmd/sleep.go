package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/pilosa/etalon/bench"
)

// NewSleepCommand subcommands
func NewSleepCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	b := bench.NewSleepBenchmark()
	sleepCmd := &cobra.Command{
		Use:   "sleep",
		Short: "Times goroutines that sleep, to check the reporting end to end.",
		Long: `Times goroutines that sleep, to check the reporting end to end.

Each of <concurrency> goroutines sleeps <iterations> times for sleep-ms plus a
random jitter of up to jitter-ms milliseconds, recording every sleep under the
same identifier.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, notepad, err := newEtalon(cmd, stderr)
			if err != nil {
				return err
			}
			b.Logger = notepad.INFO
			return runBenchmark(cmd, b, e, stdout)
		},
	}

	flags := sleepCmd.Flags()
	flags.StringVar(&b.Identifier, "identifier", b.Identifier, "Identifier to record timings under.")
	flags.IntVar(&b.SleepMS, "sleep-ms", b.SleepMS, "Milliseconds each iteration sleeps.")
	flags.IntVar(&b.JitterMS, "jitter-ms", b.JitterMS, "Up to this many extra random milliseconds per iteration.")
	flags.IntVar(&b.Iterations, "iterations", b.Iterations, "Each goroutine will sleep this many times.")
	flags.IntVarP(&b.Concurrency, "concurrency", "y", b.Concurrency, "Run this many goroutines concurrently.")
	flags.Int64Var(&b.Seed, "seed", b.Seed, "Random seed for jitter.")
	return sleepCmd
}

func init() {
	benchCommandFns["sleep"] = NewSleepCommand
}
