package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/pilosa/etalon/bench"
	"github.com/pilosa/etalon/etalon"
)

var benchCommandFns = map[string]func(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command{}

// NewBenchCommand subcommands
func NewBenchCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Times a workload repeatedly and reports its timings.",
		Long: `Times a workload repeatedly and reports its timings.

See the various subcommands for specific workloads and their arguments. Every
run is recorded under one identifier and the result holds the rendered
timings for it, the total duration and the configuration used.

`,
	}

	flags := benchCmd.PersistentFlags()
	flags.Bool("human", true, "Make output human friendly.")
	flags.String("format", "json", "Output format: json, toml or yaml.")

	for _, benchCommandFn := range benchCommandFns {
		benchCmd.AddCommand(benchCommandFn(stdin, stdout, stderr))
	}

	return benchCmd
}

// runBenchmark runs b against e until it finishes or the process is
// interrupted, and prints the result.
func runBenchmark(cmd *cobra.Command, b bench.Benchmark, e *etalon.Etalon, stdout io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	result := bench.RunBenchmark(ctx, e, b)
	return PrintResults(cmd, result, stdout)
}

// PrintResults encodes the output of a benchmark subcommand in the format
// given by the "format" flag and writes it to the given Writer. JSON output
// takes the "human" flag into account.
func PrintResults(cmd *cobra.Command, result *bench.Result, out io.Writer) error {
	human, err := cmd.Flags().GetBool("human")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	switch format {
	case "json", "":
		enc := json.NewEncoder(out)
		if human {
			enc.SetIndent("", "  ")
		}
		err = enc.Encode(result)
	case "toml":
		err = toml.NewEncoder(out).Encode(result)
	case "yaml":
		var data []byte
		data, err = yaml.Marshal(result)
		if err == nil {
			_, err = out.Write(data)
		}
	default:
		return errors.Errorf("unknown output format '%s'", format)
	}
	return errors.Wrapf(err, "encoding %s", format)
}

func init() {
	subcommandFns["bench"] = NewBenchCommand
}
