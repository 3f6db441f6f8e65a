package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/atomic"
)

// Source is an activation source backed by a key of a viper configuration.
// Writes flip the in-process state; a watched configuration file flips it
// again whenever the file changes.
type Source struct {
	v        *viper.Viper
	key      string
	active   *atomic.Bool
	onChange func(active bool)
}

// NewSource returns a Source over key in v, starting from its current value.
func NewSource(v *viper.Viper, key string) *Source {
	return &Source{
		v:      v,
		key:    key,
		active: atomic.NewBool(Truthy(v.Get(key))),
	}
}

func (s *Source) Read() bool { return s.active.Load() }

func (s *Source) Write(active bool) { s.active.Store(active) }

// Reload re-reads the key from the configuration.
func (s *Source) Reload() bool {
	b := Truthy(s.v.Get(s.key))
	s.active.Store(b)
	return b
}

// Watch starts watching the configuration file. onChange, if not nil, is
// called with the new state after each reload. It fails if v was not read
// from a file.
func (s *Source) Watch(onChange func(active bool)) error {
	if s.v.ConfigFileUsed() == "" {
		return errors.New("watching configuration needs a configuration file")
	}
	s.onChange = onChange
	s.v.OnConfigChange(s.handle)
	s.v.WatchConfig()
	return nil
}

func (s *Source) handle(e fsnotify.Event) {
	if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	active := s.Reload()
	if s.onChange != nil {
		s.onChange(active)
	}
}
