// Package tabular defines the narrow interface the status automation uses to talk
// to a table-oriented data service, plus the helpers shared by its adapters.
package tabular

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
)

// Fields is a row's column values keyed by column name.
type Fields map[string]any

// Record is one row of a table.
type Record struct {
	ID          string    `json:"id"`
	CreatedTime time.Time `json:"createdTime"`
	Fields      Fields    `json:"fields"`
}

// Query selects records from a table.
type Query struct {
	// Filter restricts results to rows matching an exact-equality predicate.
	// Nil selects every row.
	Filter *Filter
	// Fields limits the returned columns. Empty returns all columns.
	Fields []string
	// AllPages follows pagination until the table is exhausted. By default only
	// the first page is returned.
	AllPages bool
}

// Store is the tabular data service.
type Store interface {
	Select(ctx context.Context, table string, q Query) ([]Record, error)
	Update(ctx context.Context, table, recordID string, fields Fields) error
	Create(ctx context.Context, table string, fields Fields) (*Record, error)
}

// LinkValue is a linked-record cell value. Adapters write RecordID when set and
// fall back to Name otherwise.
type LinkValue struct {
	RecordID string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
}

// NewRecordID returns an Airtable-shaped record ID for stores that mint their own.
func NewRecordID() string {
	return "rec" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
}

// Opener constructs a Store. It returns an error wrapping
// apperrors.ErrConfiguration when required credentials are absent.
type Opener func() (Store, error)

// LazyStore resolves its underlying Store on first use, so a process can start
// without store credentials and fail each run with a configuration error
// before any external call.
type LazyStore struct {
	open Opener

	mu    sync.Mutex
	store Store
}

// Lazy wraps open in a LazyStore.
func Lazy(open Opener) *LazyStore {
	return &LazyStore{open: open}
}

// Resolve returns the underlying store, opening it if needed. Failed opens are
// not cached.
func (l *LazyStore) Resolve() (Store, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store != nil {
		return l.store, nil
	}
	if l.open == nil {
		return nil, fmt.Errorf("no tabular store configured: %w", apperrors.ErrConfiguration)
	}
	s, err := l.open()
	if err != nil {
		return nil, err
	}
	l.store = s
	return s, nil
}

func (l *LazyStore) Select(ctx context.Context, table string, q Query) ([]Record, error) {
	s, err := l.Resolve()
	if err != nil {
		return nil, err
	}
	return s.Select(ctx, table, q)
}

func (l *LazyStore) Update(ctx context.Context, table, recordID string, fields Fields) error {
	s, err := l.Resolve()
	if err != nil {
		return err
	}
	return s.Update(ctx, table, recordID, fields)
}

func (l *LazyStore) Create(ctx context.Context, table string, fields Fields) (*Record, error) {
	s, err := l.Resolve()
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, table, fields)
}

var _ Store = (*LazyStore)(nil)
