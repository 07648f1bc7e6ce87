package tasks

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Store is the backing document collection for task records.
type Store interface {
	// List returns every record in category. An empty level matches all.
	List(ctx context.Context, category, level string) ([]Record, error)
	Get(ctx context.Context, category, id string) (Record, error)
	// Add stores rec under a new ID, ignoring rec.ID, and returns the stored copy.
	Add(ctx context.Context, rec Record) (Record, error)
	Update(ctx context.Context, rec Record) (Record, error)
	Delete(ctx context.Context, category, id string) error
	Count(ctx context.Context, category string) (int, error)
}

// MemoryStore keeps records in process memory. It is used when no database
// is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]Record),
	}
}

func (m *MemoryStore) List(ctx context.Context, category, level string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, 0, len(m.records[category]))
	for _, rec := range m.records[category] {
		if !levelMatches(rec.Level, level) {
			continue
		}
		out = append(out, rec.clone())
	}

	return out, nil
}

func (m *MemoryStore) Get(ctx context.Context, category, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexLocked(category, id)
	if i < 0 {
		return Record{}, ErrTaskNotFound
	}

	return m.records[category][i].clone(), nil
}

func (m *MemoryStore) Add(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	rec = rec.clone()
	rec.ID = uuid.NewString()

	m.mu.Lock()
	m.records[rec.Category] = append(m.records[rec.Category], rec)
	m.mu.Unlock()

	return rec.clone(), nil
}

func (m *MemoryStore) Update(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(rec.Category, rec.ID)
	if i < 0 {
		return Record{}, ErrTaskNotFound
	}
	m.records[rec.Category][i] = rec.clone()

	return rec.clone(), nil
}

func (m *MemoryStore) Delete(ctx context.Context, category, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(category, id)
	if i < 0 {
		return ErrTaskNotFound
	}
	m.records[category] = slices.Delete(m.records[category], i, i+1)

	return nil
}

func (m *MemoryStore) Count(ctx context.Context, category string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.records[category]), nil
}

func (m *MemoryStore) indexLocked(category, id string) int {
	return slices.IndexFunc(m.records[category], func(r Record) bool {
		return r.ID == id
	})
}

func levelMatches(have, want string) bool {
	return want == "" || strings.EqualFold(have, want)
}
