package services

import (
	"context"
	"sync"
	"time"

	"github.com/Ezzyro/Airtable-Test/pkg/models"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular/memory"
	"github.com/Ezzyro/Airtable-Test/pkg/webhook"
)

// mockSender records messages and returns err from every Send.
type mockSender struct {
	mu       sync.Mutex
	messages []*webhook.Message
	err      error
}

func (m *mockSender) Send(_ context.Context, msg *webhook.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return m.err
}

func (m *mockSender) sent() []*webhook.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*webhook.Message(nil), m.messages...)
}

var _ webhook.Sender = (*mockSender)(nil)

// countingStore wraps a memory store and counts calls per method.
type countingStore struct {
	*memory.Store
	selects, updates, creates int
	failCreate                func(fields tabular.Fields) error
}

func (s *countingStore) Select(ctx context.Context, table string, q tabular.Query) ([]tabular.Record, error) {
	s.selects++
	return s.Store.Select(ctx, table, q)
}

func (s *countingStore) Update(ctx context.Context, table, recordID string, fields tabular.Fields) error {
	s.updates++
	return s.Store.Update(ctx, table, recordID, fields)
}

func (s *countingStore) Create(ctx context.Context, table string, fields tabular.Fields) (*tabular.Record, error) {
	s.creates++
	if s.failCreate != nil {
		if err := s.failCreate(fields); err != nil {
			return nil, err
		}
	}
	return s.Store.Create(ctx, table, fields)
}

func newCountingStore(now time.Time) *countingStore {
	return &countingStore{Store: memory.New(memory.WithClock(func() time.Time { return now }))}
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func note(category models.NoteCategory, text string, addedOn time.Time) models.Note {
	return models.Note{Category: category, Text: text, AddedOn: addedOn}
}
