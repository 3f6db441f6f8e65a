package cmd

import (
	"io"
	"strings"

	"github.com/jaffee/commandeer/cobrafy"
	"github.com/spf13/cobra"

	"github.com/pilosa/etalon/bench"
)

// NewExecCommand subcommands
func NewExecCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	b := bench.NewExecBenchmark()
	com, err := cobrafy.Command(b)
	if err != nil {
		panic(err)
	}
	com.Use = b.Name + " [command line]"
	com.Short = "Time an external command."
	com.Long = `Time an external command.

This benchmark spawns <concurrency> goroutines, each of which runs the
command <iterations> times serially through the shell. Every run is timed
under one identifier, which defaults to the command line itself.

The command can be given with --command or as the remaining arguments:

    etalon bench exec --iterations 20 -- curl -s localhost:8080/health

A failing run stops the benchmark unless --ignore-errors is set; the runs
timed so far are reported either way.
`

	com.RunE = func(cmd *cobra.Command, args []string) error {
		if b.Command == "" {
			b.Command = strings.Join(args, " ")
		}
		e, notepad, err := newEtalon(cmd, stderr)
		if err != nil {
			return err
		}
		b.Logger = notepad.INFO
		return runBenchmark(cmd, b, e, stdout)
	}
	return com
}

func init() {
	benchCommandFns["exec"] = NewExecCommand
}
