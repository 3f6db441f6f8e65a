// Package config loads etalon settings from flags, the environment and a TOML
// file, and builds an Etalon from them.
package config

import (
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pilosa/etalon/etalon"
	"github.com/pilosa/etalon/slug"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ETALON"

// Activation source kinds.
const (
	SourceMemory = "memory"
	SourceEnv    = "env"
	SourceConfig = "config"
)

// Config describes how an Etalon is put together.
type Config struct {
	// Active is the initial state of the activation gate.
	Active bool `mapstructure:"active"`
	// Source selects what backs the gate: memory, env or config.
	Source string `mapstructure:"source"`
	// EnvVar is the variable used by the env source.
	EnvVar string `mapstructure:"env-var"`
	// CacheSize bounds the identifier -> key cache.
	CacheSize int `mapstructure:"cache-size"`
	// Watch re-reads the config file on change when Source is config.
	Watch bool `mapstructure:"watch"`
	// Verbose enables debug output of report lines.
	Verbose bool `mapstructure:"verbose"`
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		Source:    SourceMemory,
		EnvVar:    etalon.DefaultEnvVar,
		CacheSize: slug.DefaultCacheSize,
	}
}

// Keys returns the configuration keys understood by Config.
func Keys() []string {
	t := reflect.TypeOf(Config{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("mapstructure"); tag != "" {
			keys = append(keys, tag)
		}
	}
	sort.Strings(keys)
	return keys
}

// SetDefaults registers the defaults of NewConfig with v, which also makes
// every key visible to AutomaticEnv.
func SetDefaults(v *viper.Viper) {
	def := NewConfig()
	v.SetDefault("active", def.Active)
	v.SetDefault("source", def.Source)
	v.SetDefault("env-var", def.EnvVar)
	v.SetDefault("cache-size", def.CacheSize)
	v.SetDefault("watch", def.Watch)
	v.SetDefault("verbose", def.Verbose)
}

// FileKey is the setting that names the configuration file.
const FileKey = "config"

// NewViper returns a viper reading, in priority order, the flags that were
// set, the environment (EnvPrefix, dashes become underscores, empty values
// count as set), the TOML file at path on fs and the defaults. flags may be
// nil. If path is empty it is taken from the FileKey setting. Keys in the
// file must be known to Config or name one of flags.
func NewViper(fs afero.Fs, flags *pflag.FlagSet, path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetFs(fs)
	SetDefaults(v)
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, errors.Wrap(err, "binding flags")
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if path == "" {
		path = v.GetString(FileKey)
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading configuration file '%s'", path)
		}
		if err := CheckKeys(v, flags); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Load reads configuration from the environment and, if path is not empty,
// from the TOML file at path on fs. It returns the Config together with the
// viper instance it was decoded from so a config-backed Source can share it.
func Load(fs afero.Fs, path string) (*Config, *viper.Viper, error) {
	v, err := NewViper(fs, nil, path)
	if err != nil {
		return nil, nil, err
	}
	c, err := Decode(v)
	if err != nil {
		return nil, nil, err
	}
	return c, v, nil
}

// CheckKeys rejects keys in v that neither Config nor flags know about.
func CheckKeys(v *viper.Viper, flags *pflag.FlagSet) error {
	valid := map[string]bool{FileKey: true}
	for _, k := range Keys() {
		valid[k] = true
	}
	if flags != nil {
		flags.VisitAll(func(f *pflag.Flag) {
			valid[f.Name] = true
		})
	}
	for _, key := range v.AllKeys() {
		if !valid[key] {
			return errors.Errorf("invalid option in configuration file: %v", key)
		}
	}
	return nil
}

// Decode builds a Config from v and validates it.
func Decode(v *viper.Viper) (*Config, error) {
	c := NewConfig()
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		truthy,
	))
	if err := v.Unmarshal(c, hook); err != nil {
		return nil, errors.Wrap(err, "decoding configuration")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks c for inconsistent settings.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceMemory, SourceConfig:
	case SourceEnv:
		if c.EnvVar == "" {
			return errors.New("env source needs an env-var")
		}
	default:
		return errors.Errorf("unknown activation source '%s'", c.Source)
	}
	if c.CacheSize < 0 {
		return errors.Errorf("cache size [%d] must not be negative", c.CacheSize)
	}
	return nil
}

// NewEtalon constructs an Etalon as described by c. v is required for the
// config source and ignored otherwise. Options are applied after the ones
// derived from c.
func (c *Config) NewEtalon(v *viper.Viper, opts ...etalon.Option) (*etalon.Etalon, error) {
	var src etalon.ActivationSource
	switch c.Source {
	case SourceEnv:
		src = etalon.NewEnvSource(c.EnvVar)
	case SourceConfig:
		if v == nil {
			return nil, errors.New("config source needs a viper instance")
		}
		s := NewSource(v, "active")
		if c.Watch {
			if err := s.Watch(nil); err != nil {
				return nil, err
			}
		}
		src = s
	default:
		src = etalon.NewMemorySource(false)
	}
	if c.Active {
		src.Write(true)
	}

	n, err := slug.NewNormalizer(c.CacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "creating normalizer")
	}

	base := []etalon.Option{etalon.WithSource(src), etalon.WithNormalizer(n)}
	return etalon.New(append(base, opts...)...), nil
}

// truthy decodes strings into bools the way the activation flag is read:
// anything that does not parse as a boolean but is present counts as true.
var truthy mapstructure.DecodeHookFuncType = func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if t.Kind() != reflect.Bool || f.Kind() != reflect.String {
		return data, nil
	}
	return Truthy(data), nil
}

// Truthy reports whether a configuration value turns something on. nil is
// false; values cast can read as a boolean are used as such; any other
// present value is true.
func Truthy(val interface{}) bool {
	if val == nil {
		return false
	}
	b, err := cast.ToBoolE(val)
	if err != nil {
		return true
	}
	return b
}
