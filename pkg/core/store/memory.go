package store

import (
	"context"
	"fmt"
	"sync"

	"screener_valuation/pkg/core/analysis"
)

// MemoryRepo keeps encoded reports in a map. Reports are stored as JSON so callers
// never share mutable state with the store.
type MemoryRepo struct {
	mu      sync.RWMutex
	reports map[string][]byte
}

// NewMemoryRepo creates an empty in-memory store.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{reports: make(map[string][]byte)}
}

func (r *MemoryRepo) Save(ctx context.Context, rep *analysis.Report) error {
	data, err := encode(rep)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.reports[rep.ID] = data
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (*analysis.Report, error) {
	r.mu.RLock()
	data, ok := r.reports[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	return decode(data)
}

func (r *MemoryRepo) List(ctx context.Context, limit int) ([]analysis.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]analysis.Summary, 0, len(r.reports))
	for _, data := range r.reports {
		rep, err := decode(data)
		if err != nil {
			return nil, err
		}
		out = append(out, rep.Summarize())
	}
	return newestFirst(out, limit), nil
}

func (r *MemoryRepo) Close() error { return nil }
