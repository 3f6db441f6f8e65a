// Package etalon times units of work and keeps per-identifier timing
// statistics in memory.
//
// An Etalon is created once by the embedding application and shared by every
// call site:
//
//	e := etalon.New(etalon.WithReporter(etalon.NewLogReporter(logger)))
//	e.Activate()
//
//	rows, err := etalon.Time(e, "Load Users", func() []User { return loadUsers() })
//
//	e.PrintTimings() // one debug line per identifier, plus the structured report
//
// While the Etalon is inactive the work is still run but nothing is timed or
// recorded, and PrintTimings returns nil.
package etalon

import (
	"time"

	"github.com/pkg/errors"

	"github.com/pilosa/etalon/slug"
	"github.com/pilosa/etalon/stats"
)

// ErrNoWork is returned when Time is called without a unit of work.
var ErrNoWork = errors.New("etalon: no work supplied to time")

// KeyNormalizer maps an identifier to its canonical key.
type KeyNormalizer interface {
	Normalize(identifier string) string
}

// NormalizerFunc adapts a function to the KeyNormalizer interface.
type NormalizerFunc func(identifier string) string

func (f NormalizerFunc) Normalize(identifier string) string { return f(identifier) }

type config struct {
	source     ActivationSource
	reporter   Reporter
	now        func() time.Time
	normalizer KeyNormalizer
}

// Option configures an Etalon constructed by New.
type Option func(*config)

// WithSource backs the activation gate with src. The default is an in-memory
// flag starting inactive.
func WithSource(src ActivationSource) Option {
	return func(c *config) { c.source = src }
}

// WithReporter sends report lines to r. The default discards them.
func WithReporter(r Reporter) Option {
	return func(c *config) { c.reporter = r }
}

// WithClock makes the timer read time from now.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// WithNormalizer replaces slug.Normalize as the key normalizer.
func WithNormalizer(n KeyNormalizer) Option {
	return func(c *config) { c.normalizer = n }
}

// Etalon ties together the activation gate, the timer, the instrument store
// and the reporter. It is safe for concurrent use.
type Etalon struct {
	gate       *Gate
	timer      *Timer
	store      *Store
	reporter   Reporter
	normalizer KeyNormalizer
}

// New constructs an Etalon.
func New(opts ...Option) *Etalon {
	cfg := &config{}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	if cfg.reporter == nil {
		cfg.reporter = NopReporter{}
	}
	if cfg.normalizer == nil {
		cfg.normalizer = NormalizerFunc(slug.Normalize)
	}
	return &Etalon{
		gate:       NewGate(cfg.source),
		timer:      NewTimer(cfg.now),
		store:      NewStore(),
		reporter:   cfg.reporter,
		normalizer: cfg.normalizer,
	}
}

// IsActive reports whether timings are recorded.
func (e *Etalon) IsActive() bool { return e.gate.IsActive() }

// Activate turns recording on and returns the new state.
func (e *Etalon) Activate() bool { return e.gate.Activate() }

// Deactivate turns recording off and returns the new state. Recorded timings
// are kept until Reset.
func (e *Etalon) Deactivate() bool { return e.gate.Deactivate() }

// Time runs work and, while active, records how long it took under
// identifier. work always runs exactly once; it is an error only to pass nil.
func (e *Etalon) Time(identifier string, work func()) error {
	if work == nil {
		return ErrNoWork
	}
	if !e.IsActive() {
		work()
		return nil
	}
	ms := e.timer.Measure(work)
	e.store.Record(e.key(identifier), ms)
	return nil
}

// Time runs work through e.Time and returns its result.
func Time[T any](e *Etalon, identifier string, work func() T) (T, error) {
	var result T
	if work == nil {
		return result, ErrNoWork
	}
	err := e.Time(identifier, func() { result = work() })
	return result, err
}

// Record adds a duration measured by the caller under identifier. It does
// nothing while inactive.
func (e *Etalon) Record(identifier string, d time.Duration) {
	if !e.IsActive() {
		return
	}
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	e.store.Record(e.key(identifier), ms)
}

// PrintTimings renders the statistics of every identifier, sends one line per
// identifier to the Reporter and returns the report. It returns nil while
// inactive; an active Etalon without timings returns an empty Report.
func (e *Etalon) PrintTimings() *Report {
	if !e.IsActive() {
		return nil
	}
	return Render(e.store, e.reporter)
}

// Reset drops every recorded timing.
func (e *Etalon) Reset() {
	e.store.Reset()
}

// Lookup returns the accumulated samples for identifier.
func (e *Etalon) Lookup(identifier string) (stats.Snapshot, bool) {
	return e.store.Lookup(e.key(identifier))
}

// Keys returns the canonical keys recorded so far, in first-recorded order.
func (e *Etalon) Keys() []string {
	return e.store.Keys()
}

func (e *Etalon) key(identifier string) string {
	return e.normalizer.Normalize(identifier)
}
