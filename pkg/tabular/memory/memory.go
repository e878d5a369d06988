// Package memory is an in-process tabular store for dry runs and tests.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular"
)

// Store keeps tables in memory. Records are returned in insertion order.
type Store struct {
	mu     sync.RWMutex
	tables map[string][]*tabular.Record
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for record creation times.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		tables: make(map[string][]*tabular.Record),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed inserts a record as-is and returns it. A missing ID is generated and a
// zero CreatedTime is stamped with the store clock.
func (s *Store) Seed(table string, rec tabular.Record) tabular.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = tabular.NewRecordID()
	}
	if rec.CreatedTime.IsZero() {
		rec.CreatedTime = s.now()
	}
	rec.Fields = maps.Clone(rec.Fields)
	if rec.Fields == nil {
		rec.Fields = tabular.Fields{}
	}
	s.tables[table] = append(s.tables[table], &rec)
	return rec
}

// Records returns a snapshot of a table.
func (s *Store) Records(table string) []tabular.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]tabular.Record, 0, len(s.tables[table]))
	for _, r := range s.tables[table] {
		out = append(out, copyRecord(r, nil))
	}
	return out
}

func (s *Store) Select(_ context.Context, table string, q tabular.Query) ([]tabular.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []tabular.Record
	for _, r := range s.tables[table] {
		if !q.Filter.Matches(r.Fields) {
			continue
		}
		out = append(out, copyRecord(r, q.Fields))
	}
	return out, nil
}

func (s *Store) Update(_ context.Context, table, recordID string, fields tabular.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.tables[table] {
		if r.ID == recordID {
			for k, v := range fields {
				r.Fields[k] = v
			}
			return nil
		}
	}
	return fmt.Errorf("record %s in %q: %w", recordID, table, apperrors.ErrNotFound)
}

func (s *Store) Create(_ context.Context, table string, fields tabular.Fields) (*tabular.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &tabular.Record{
		ID:          tabular.NewRecordID(),
		CreatedTime: s.now(),
		Fields:      maps.Clone(fields),
	}
	if rec.Fields == nil {
		rec.Fields = tabular.Fields{}
	}
	s.tables[table] = append(s.tables[table], rec)

	out := copyRecord(rec, nil)
	return &out, nil
}

func copyRecord(r *tabular.Record, only []string) tabular.Record {
	out := tabular.Record{ID: r.ID, CreatedTime: r.CreatedTime}
	if len(only) == 0 {
		out.Fields = maps.Clone(r.Fields)
		return out
	}
	out.Fields = make(tabular.Fields, len(only))
	for _, name := range only {
		if v, ok := r.Fields[name]; ok {
			out.Fields[name] = v
		}
	}
	return out
}

var _ tabular.Store = (*Store)(nil)
