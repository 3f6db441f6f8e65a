package cmd

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pilosa/etalon/config"
	"github.com/pilosa/etalon/etalon"
)

var subcommandFns = map[string]func(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command{}

func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	rc := &cobra.Command{
		Use:   "etalon",
		Short: "Etalon timing tools",
		Long: `Times commands and synthetic workloads and reports count, min, max,
mean, deviation and the five slowest runs per identifier.
`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd)
			if err != nil {
				return err
			}
			err = setAllConfig(v, cmd.Flags())
			if err != nil {
				return err
			}

			// return "dry run" error if "dry-run" flag is set
			if ret, err := cmd.Flags().GetBool("dry-run"); ret && err == nil {
				if cmd.Parent() != nil {
					return fmt.Errorf("dry run")
				} else if err != nil {
					return fmt.Errorf("problem getting dry-run flag: %v", err)
				}
			}

			return nil
		},
	}
	def := config.NewConfig()
	flags := rc.PersistentFlags()
	flags.Bool("dry-run", false, "Stop before executing. Useful for testing.")
	_ = flags.MarkHidden("dry-run")
	flags.StringP(config.FileKey, "c", "", "Configuration file to read from.")
	flags.BoolP("verbose", "v", def.Verbose, "Log every report line at debug level.")
	flags.Bool("active", def.Active, "Start with the activation gate open.")
	flags.String("source", def.Source, "What backs the activation gate: memory, env or config.")
	flags.Bool("watch", def.Watch, "Re-read the configuration file when it changes (config source only).")
	flags.String("env-var", def.EnvVar, "Environment variable used by the env source.")
	flags.Int("cache-size", def.CacheSize, "Number of identifiers whose keys are cached.")
	for _, subcomFn := range subcommandFns {
		rc.AddCommand(subcomFn(stdin, stdout, stderr))
	}
	rc.SetOutput(stderr)
	return rc
}

// newViper resolves the configuration of cmd: flags that were set, then the
// environment, then the configuration file named by the "config" flag.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	return config.NewViper(afero.NewOsFs(), cmd.Flags(), "")
}

// setAllConfig takes a FlagSet to be the definition of all configuration
// options, as well as their defaults, and a viper which has already merged
// the command line, the environment and the config file (see
// config.NewViper). Since each flag in the set contains a pointer to where
// its value should be stored, setAllConfig can directly modify the value of
// each config variable.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	var flagErr error
	// set all values from viper
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil {
			return
		}
		var value string
		if f.Value.Type() == "stringSlice" {
			// special handling is needed for stringSlice as v.GetString will
			// always return "" in the case that the value is an actual string
			// slice from a config file rather than a comma separated string
			// from a flag or env var.
			vss := v.GetStringSlice(f.Name)
			value = strings.Join(vss, ",")
		} else {
			value = v.GetString(f.Name)
		}

		if f.Changed {
			// If f.Changed is true, that means the value has already been set
			// by a flag, and we don't need to ask viper for it since the flag
			// is the highest priority. This works around a problem with string
			// slices where f.Value.Set(csvString) would cause the elements of
			// csvString to be appended to the existing value rather than
			// replacing it.
			return
		}
		flagErr = f.Value.Set(value)
	})
	return flagErr
}

// newNotepad returns the leveled logger used by the tools. Report lines go
// out at debug level, so they are only shown when verbose.
func newNotepad(verbose bool, out io.Writer) *jww.Notepad {
	threshold := jww.LevelInfo
	if verbose {
		threshold = jww.LevelDebug
	}
	return jww.NewNotepad(threshold, jww.LevelFatal, out, ioutil.Discard, "etalon", log.LstdFlags)
}

// newEtalon builds an Etalon from the configuration of cmd. With the config
// source the gate follows the "active" key of the configuration file.
func newEtalon(cmd *cobra.Command, stderr io.Writer) (*etalon.Etalon, *jww.Notepad, error) {
	v, err := newViper(cmd)
	if err != nil {
		return nil, nil, err
	}
	c, err := config.Decode(v)
	if err != nil {
		return nil, nil, err
	}
	notepad := newNotepad(c.Verbose, stderr)
	e, err := c.NewEtalon(v, etalon.WithReporter(etalon.NewNotepadReporter(notepad)))
	if err != nil {
		return nil, nil, errors.Wrap(err, "creating etalon")
	}
	return e, notepad, nil
}
