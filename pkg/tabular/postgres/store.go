// Package postgres implements tabular.Store over a single jsonb table, for
// running the automation without an Airtable base.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular"
)

// PageSize bounds a Select without AllPages, mirroring Airtable's first page.
const PageSize = 100

// Store keeps every logical table in tabular_records, keyed by table_name.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// New creates a Store over an existing pool. The schema comes from the
// embedded migrations.
func New(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	return &Store{pool: pool, logger: logger.Named("tabular-postgres")}
}

// A link cell is stored as an object or a list of objects with "id" and "name",
// so the filter matches a scalar, a single link or any element of a link list.
const filterClause = ` AND (
	fields->>$2::text = $3::text
	OR fields->$2::text @> jsonb_build_array(jsonb_build_object('name', $3::text))
	OR fields->$2::text @> jsonb_build_object('name', $3::text)
	OR ($3::text = '' AND NOT fields ? $2::text)
)`

func (s *Store) Select(ctx context.Context, table string, q tabular.Query) ([]tabular.Record, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, created_at, fields FROM tabular_records WHERE table_name = $1`)
	args := []any{table}
	if q.Filter != nil {
		sb.WriteString(filterClause)
		args = append(args, q.Filter.Field, q.Filter.Value)
	}
	sb.WriteString(` ORDER BY created_at, id`)
	if !q.AllPages {
		fmt.Fprintf(&sb, ` LIMIT %d`, PageSize)
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("select from %q: %w", table, err)
	}
	defer rows.Close()

	var out []tabular.Record
	for rows.Next() {
		var (
			id        string
			createdAt time.Time
			fields    map[string]any
		)
		if err := rows.Scan(&id, &createdAt, &fields); err != nil {
			return nil, fmt.Errorf("scan %q record: %w", table, err)
		}
		out = append(out, tabular.Record{ID: id, CreatedTime: createdAt, Fields: project(fields, q.Fields)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select from %q: %w", table, err)
	}

	s.logger.Debug("Selected records",
		zap.String("table", table),
		zap.Int("count", len(out)))
	return out, nil
}

func (s *Store) Update(ctx context.Context, table, recordID string, fields tabular.Fields) error {
	patch, err := encodeFields(fields)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE tabular_records SET fields = fields || $3::jsonb WHERE table_name = $1 AND id = $2`,
		table, recordID, patch)
	if err != nil {
		return fmt.Errorf("update %s in %q: %w", recordID, table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record %s in %q: %w", recordID, table, apperrors.ErrNotFound)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, table string, fields tabular.Fields) (*tabular.Record, error) {
	doc, err := encodeFields(fields)
	if err != nil {
		return nil, err
	}

	rec := tabular.Record{ID: tabular.NewRecordID()}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO tabular_records (id, table_name, fields) VALUES ($1, $2, $3::jsonb)
		 RETURNING created_at, fields`,
		rec.ID, table, doc)
	var stored map[string]any
	if err := row.Scan(&rec.CreatedTime, &stored); err != nil {
		return nil, fmt.Errorf("create in %q: %w", table, err)
	}
	rec.Fields = project(stored, nil)
	return &rec, nil
}

// Truncate removes every record of one table. Used by tests and dry-run resets.
func (s *Store) Truncate(ctx context.Context, table string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM tabular_records WHERE table_name = $1`, table)
	if err != nil {
		return fmt.Errorf("truncate %q: %w", table, err)
	}
	return nil
}

// encodeFields stores links with both id and name so later filters by name match.
func encodeFields(fields tabular.Fields) ([]byte, error) {
	if fields == nil {
		fields = tabular.Fields{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return raw, nil
}

func project(fields map[string]any, only []string) tabular.Fields {
	if fields == nil {
		return tabular.Fields{}
	}
	if len(only) == 0 {
		return tabular.Fields(fields)
	}
	out := make(tabular.Fields, len(only))
	for _, name := range only {
		if v, ok := fields[name]; ok {
			out[name] = v
		}
	}
	return out
}

var _ tabular.Store = (*Store)(nil)
