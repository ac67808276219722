package changemock

import (
	"context"

	domain "ibb-guide/internal/domain/pendingchange"
	"ibb-guide/internal/domain/workflow"
)

var _ domain.Repository = (*Repo)(nil)

type Repo struct {
	CreateFn                   func(ctx context.Context, c *domain.Change) error
	GetByChangeIDFn            func(ctx context.Context, changeID string) (*domain.Change, error)
	FindUnresolvedFn           func(ctx context.Context, listingID, field string) (*domain.Change, error)
	ListUnresolvedForListingFn func(ctx context.Context, listingID string) ([]domain.Change, error)
	ListUnresolvedFn           func(ctx context.Context) ([]domain.Change, error)
	CountUnresolvedFn          func(ctx context.Context) (int64, error)
	UpdateFn                   func(ctx context.Context, c *domain.Change, expected workflow.Status) error
}

func (m *Repo) Create(ctx context.Context, c *domain.Change) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}

func (m *Repo) GetByChangeID(ctx context.Context, changeID string) (*domain.Change, error) {
	if m.GetByChangeIDFn != nil {
		return m.GetByChangeIDFn(ctx, changeID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) FindUnresolved(ctx context.Context, listingID, field string) (*domain.Change, error) {
	if m.FindUnresolvedFn != nil {
		return m.FindUnresolvedFn(ctx, listingID, field)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListUnresolvedForListing(ctx context.Context, listingID string) ([]domain.Change, error) {
	if m.ListUnresolvedForListingFn != nil {
		return m.ListUnresolvedForListingFn(ctx, listingID)
	}
	return nil, nil
}

func (m *Repo) ListUnresolved(ctx context.Context) ([]domain.Change, error) {
	if m.ListUnresolvedFn != nil {
		return m.ListUnresolvedFn(ctx)
	}
	return nil, nil
}

func (m *Repo) CountUnresolved(ctx context.Context) (int64, error) {
	if m.CountUnresolvedFn != nil {
		return m.CountUnresolvedFn(ctx)
	}
	return 0, nil
}

func (m *Repo) Update(ctx context.Context, c *domain.Change, expected workflow.Status) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, c, expected)
	}
	return nil
}
