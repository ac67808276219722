package partnermock

import (
	"context"

	domain "ibb-guide/internal/domain/partner"
	"ibb-guide/internal/domain/workflow"
)

var _ domain.Repository = (*Repo)(nil)

type Repo struct {
	CreateFn         func(ctx context.Context, p *domain.Profile) error
	GetByProfileIDFn func(ctx context.Context, profileID string) (*domain.Profile, error)
	ListByStatusFn   func(ctx context.Context, status workflow.Status) ([]domain.Profile, error)
	CountByStatusFn  func(ctx context.Context, status workflow.Status) (int64, error)
	UpdateFn         func(ctx context.Context, p *domain.Profile, expected workflow.Status) error
}

func (m *Repo) Create(ctx context.Context, p *domain.Profile) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByProfileID(ctx context.Context, profileID string) (*domain.Profile, error) {
	if m.GetByProfileIDFn != nil {
		return m.GetByProfileIDFn(ctx, profileID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListByStatus(ctx context.Context, status workflow.Status) ([]domain.Profile, error) {
	if m.ListByStatusFn != nil {
		return m.ListByStatusFn(ctx, status)
	}
	return nil, nil
}

func (m *Repo) CountByStatus(ctx context.Context, status workflow.Status) (int64, error) {
	if m.CountByStatusFn != nil {
		return m.CountByStatusFn(ctx, status)
	}
	return 0, nil
}

func (m *Repo) Update(ctx context.Context, p *domain.Profile, expected workflow.Status) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, p, expected)
	}
	return nil
}
