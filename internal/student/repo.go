package student

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/mind-engage/gradecalc/internal/grading"
)

var ErrNotFound = errors.New("student not found")

// Store keeps one StudentRecord per student id. Returned records never alias
// the store's own copy.
type Store interface {
	Upsert(ctx context.Context, rec grading.StudentRecord) (grading.StudentRecord, error)
	Get(ctx context.Context, id string) (grading.StudentRecord, error)
	List(ctx context.Context) ([]grading.StudentRecord, error)
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &grading.ValidationError{Message: "El código del estudiante es obligatorio"}
	}
	return nil
}

type memoryStore struct {
	mu       sync.RWMutex
	students map[string]grading.StudentRecord
	order    []string // ids by first upsert
}

func NewInMemoryStore() Store {
	return &memoryStore{students: map[string]grading.StudentRecord{}}
}

func (m *memoryStore) Upsert(_ context.Context, rec grading.StudentRecord) (grading.StudentRecord, error) {
	if err := validateID(rec.ID); err != nil {
		return grading.StudentRecord{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[rec.ID]; !ok {
		m.order = append(m.order, rec.ID)
	}
	m.students[rec.ID] = rec.Clone()
	return rec.Clone(), nil
}

func (m *memoryStore) Get(_ context.Context, id string) (grading.StudentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.students[id]
	if !ok {
		return grading.StudentRecord{}, ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *memoryStore) List(_ context.Context) ([]grading.StudentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]grading.StudentRecord, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.students[id].Clone())
	}
	return out, nil
}
