package listingmock

import (
	"context"

	domain "ibb-guide/internal/domain/listing"
	"ibb-guide/internal/domain/workflow"
)

var _ domain.Repository = (*Repo)(nil)

type Repo struct {
	CreateFn         func(ctx context.Context, l *domain.Listing) error
	GetByListingIDFn func(ctx context.Context, listingID string) (*domain.Listing, error)
	ListByStatusFn   func(ctx context.Context, status workflow.Status) ([]domain.Listing, error)
	CountByStatusFn  func(ctx context.Context, status workflow.Status) (int64, error)
	UpdateFn         func(ctx context.Context, l *domain.Listing, expected workflow.Status) error
	CategoryExistsFn func(ctx context.Context, id uint64) (bool, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Listing) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByListingID(ctx context.Context, listingID string) (*domain.Listing, error) {
	if m.GetByListingIDFn != nil {
		return m.GetByListingIDFn(ctx, listingID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListByStatus(ctx context.Context, status workflow.Status) ([]domain.Listing, error) {
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

func (m *Repo) Update(ctx context.Context, l *domain.Listing, expected workflow.Status) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, l, expected)
	}
	return nil
}

func (m *Repo) CategoryExists(ctx context.Context, id uint64) (bool, error) {
	if m.CategoryExistsFn != nil {
		return m.CategoryExistsFn(ctx, id)
	}
	return false, nil
}
