package auditmock

import (
	"context"
	"sync"

	domain "ibb-guide/internal/domain/audit"
)

var _ domain.Repository = (*Repo)(nil)

// Repo records every created row unless CreateFn overrides it.
type Repo struct {
	CreateFn        func(ctx context.Context, r *domain.Record) error
	ListForTargetFn func(ctx context.Context, targetKind, targetID string) ([]domain.Record, error)

	mu      sync.Mutex
	Records []domain.Record
}

func (m *Repo) Create(ctx context.Context, r *domain.Record) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, *r)
	return nil
}

func (m *Repo) ListForTarget(ctx context.Context, targetKind, targetID string) ([]domain.Record, error) {
	if m.ListForTargetFn != nil {
		return m.ListForTargetFn(ctx, targetKind, targetID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Record
	for _, r := range m.Records {
		if r.TargetKind == targetKind && r.TargetID == targetID {
			out = append(out, r)
		}
	}
	return out, nil
}
