package etalon

import (
	"os"

	"go.uber.org/atomic"
)

// DefaultEnvVar is the environment variable consulted by NewEnvSource when
// no name is given.
const DefaultEnvVar = "ETALON_ACTIVE"

// ActivationSource is the external control surface behind the activation
// gate. Implementations must be safe for concurrent use.
type ActivationSource interface {
	Read() bool
	Write(active bool)
}

// MemorySource keeps the activation flag in process memory.
type MemorySource struct {
	active *atomic.Bool
}

// NewMemorySource returns a MemorySource set to initial.
func NewMemorySource(initial bool) *MemorySource {
	return &MemorySource{active: atomic.NewBool(initial)}
}

func (s *MemorySource) Read() bool { return s.active.Load() }

func (s *MemorySource) Write(active bool) { s.active.Store(active) }

// EnvSource backs the activation flag with an environment variable. Any
// value, including the empty string, counts as active; an unset variable is
// inactive.
type EnvSource struct {
	Name string
}

// NewEnvSource returns an EnvSource over the named variable, or over
// DefaultEnvVar if name is empty.
func NewEnvSource(name string) *EnvSource {
	if name == "" {
		name = DefaultEnvVar
	}
	return &EnvSource{Name: name}
}

func (s *EnvSource) Read() bool {
	_, ok := os.LookupEnv(s.Name)
	return ok
}

func (s *EnvSource) Write(active bool) {
	if active {
		os.Setenv(s.Name, "true")
		return
	}
	os.Unsetenv(s.Name)
}
