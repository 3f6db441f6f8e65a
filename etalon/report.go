package etalon

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pilosa/etalon/slug"
	"github.com/pilosa/etalon/stats"
)

// Entry is the rendered report for one key.
type Entry struct {
	Key     string        `json:"key" yaml:"key" toml:"key"`
	Title   string        `json:"title" yaml:"title" toml:"title"`
	Lines   []string      `json:"lines" yaml:"lines" toml:"lines"`
	Summary stats.Summary `json:"summary" yaml:"summary" toml:"summary"`
}

// Report holds one Entry per key, in the order keys were first recorded.
type Report struct {
	Entries []Entry `json:"entries" yaml:"entries" toml:"entries"`
}

// Len returns the number of entries. A nil Report has none.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Entries)
}

// Get returns the lines rendered for key.
func (r *Report) Get(key string) ([]string, bool) {
	if r == nil {
		return nil, false
	}
	for _, e := range r.Entries {
		if e.Key == key {
			return e.Lines, true
		}
	}
	return nil, false
}

// Map returns the report as key -> lines. It returns nil for a nil Report
// and an empty, non-nil map for a Report without entries.
func (r *Report) Map() map[string][]string {
	if r == nil {
		return nil
	}
	m := make(map[string][]string, len(r.Entries))
	for _, e := range r.Entries {
		m[e.Key] = e.Lines
	}
	return m
}

// Render summarizes every record in store and sends one line per key to
// reporter at debug level.
func Render(store *Store, reporter Reporter) *Report {
	if reporter == nil {
		reporter = NopReporter{}
	}
	report := &Report{Entries: make([]Entry, 0, store.Len())}
	store.Each(func(key string, snap stats.Snapshot) {
		sum := stats.Summarize(snap)
		e := Entry{
			Key:     key,
			Title:   slug.Titleize(key),
			Lines:   Lines(sum),
			Summary: sum,
		}
		emit(reporter, LevelDebug, e.Title+" - "+strings.Join(e.Lines, " | "))
		report.Entries = append(report.Entries, e)
	})
	return report
}

// emit hands line to r. A panicking Reporter loses the line but not the
// report.
func emit(r Reporter, level Level, line string) {
	defer func() { _ = recover() }()
	r.Report(level, line)
}

// Lines formats a summary as the report lines for its key.
func Lines(sum stats.Summary) []string {
	deviation := "0"
	if sum.Count > 1 {
		deviation = formatFloat(sum.Deviation)
	}
	return []string{
		fmt.Sprintf("count: %d", sum.Count),
		fmt.Sprintf("min: %d", sum.Min),
		fmt.Sprintf("max: %d", sum.Max),
		"mean: " + formatFloat(sum.Mean),
		"deviation: ±" + deviation + "%",
		"top " + strconv.Itoa(stats.TopN) + ": " + formatInts(sum.Top),
	}
}

// formatFloat prints f with the shortest exact decimal form, always keeping
// a fractional part: 0 -> "0.0", 1.5 -> "1.5".
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// formatInts prints xs as "[a, b, c]".
func formatInts(xs []int64) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.FormatInt(x, 10)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
