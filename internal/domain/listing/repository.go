package listing

import (
	"context"

	"ibb-guide/internal/domain/workflow"
)

type Repository interface {
	Create(ctx context.Context, l *Listing) error
	GetByListingID(ctx context.Context, listingID string) (*Listing, error)
	ListByStatus(ctx context.Context, status workflow.Status) ([]Listing, error)
	CountByStatus(ctx context.Context, status workflow.Status) (int64, error)

	// Update persists all mutable columns only if the stored row still has
	// the given approval status and l.Version; otherwise workflow.ErrStaleState.
	Update(ctx context.Context, l *Listing, expected workflow.Status) error

	CategoryExists(ctx context.Context, id uint64) (bool, error)
}
