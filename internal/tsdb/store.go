// Package tsdb is the process-wide registry of named time series,
// wrapping internal/columnar.TimeSeries with per-series registration
// and concurrent access, per spec.md §1.K.
package tsdb

import (
	"fmt"
	"sync"

	"github.com/probing-go/probing/internal/columnar"
)

// SeriesOptions controls a newly registered series' paging policy.
type SeriesOptions struct {
	ChunkSize            int
	CompressionThreshold int
	MaxPages             int // 0 means unbounded retention
}

// DefaultSeriesOptions matches columnar.NewTimeSeries's own defaults
// plus a bounded retention window so a long-running agent doesn't grow
// its resident series set without limit.
var DefaultSeriesOptions = SeriesOptions{ChunkSize: 1024, CompressionThreshold: 256, MaxPages: 64}

// ErrAlreadyRegistered is returned by Register for a duplicate name.
type ErrAlreadyRegistered struct{ Name string }

func (e *ErrAlreadyRegistered) Error() string {
	return fmt.Sprintf("tsdb: series %q already registered", e.Name)
}

// ErrUnknownSeries is returned by Append/Range for an unregistered name.
type ErrUnknownSeries struct{ Name string }

func (e *ErrUnknownSeries) Error() string {
	return fmt.Sprintf("tsdb: unknown series %q", e.Name)
}

// Store is the process-wide named-series registry. All methods are
// safe for concurrent use; the registry's own map is guarded
// separately from each series' internal RWMutex so a Range on one
// series never blocks Register/Append on another.
type Store struct {
	mu     sync.RWMutex
	series map[string]*columnar.TimeSeries
}

// NewStore returns an empty registry.
func NewStore() *Store {
	return &Store{series: make(map[string]*columnar.TimeSeries)}
}

// Register creates a new series named name with the given value type
// and paging options. Returns ErrAlreadyRegistered if name is taken.
func (s *Store) Register(name string, valueTag columnar.Tag, opts SeriesOptions) (*columnar.TimeSeries, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.series[name]; ok {
		return nil, &ErrAlreadyRegistered{Name: name}
	}
	ts := columnar.NewTimeSeries(name, valueTag, opts.ChunkSize, opts.CompressionThreshold, opts.MaxPages)
	s.series[name] = ts
	return ts, nil
}

// GetOrRegister returns the named series, registering it with
// DefaultSeriesOptions on first use — the common case for a reporter
// or sampler appending to a series it doesn't own the lifecycle of.
func (s *Store) GetOrRegister(name string, valueTag columnar.Tag) *columnar.TimeSeries {
	s.mu.RLock()
	ts, ok := s.series[name]
	s.mu.RUnlock()
	if ok {
		return ts
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ts, ok := s.series[name]; ok {
		return ts
	}
	ts = columnar.NewTimeSeries(name, valueTag, DefaultSeriesOptions.ChunkSize,
		DefaultSeriesOptions.CompressionThreshold, DefaultSeriesOptions.MaxPages)
	s.series[name] = ts
	return ts
}

// Get returns the named series, or ErrUnknownSeries.
func (s *Store) Get(name string) (*columnar.TimeSeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.series[name]
	if !ok {
		return nil, &ErrUnknownSeries{Name: name}
	}
	return ts, nil
}

// Names returns every registered series name.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.series))
	for name := range s.series {
		out = append(out, name)
	}
	return out
}

// Append appends one row to the named series, registering it with
// DefaultSeriesOptions and valueTag if it doesn't already exist.
func (s *Store) Append(name string, valueTag columnar.Tag, t int64, value columnar.Ele) error {
	return s.GetOrRegister(name, valueTag).Append(t, value)
}

// Range materializes rows in [t0, t1) from the named series.
func (s *Store) Range(name string, t0, t1 int64) (*columnar.DataFrame, error) {
	ts, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	return ts.Range(t0, t1)
}
