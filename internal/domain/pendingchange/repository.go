package pendingchange

import (
	"context"

	"ibb-guide/internal/domain/workflow"
)

type Repository interface {
	Create(ctx context.Context, c *Change) error
	GetByChangeID(ctx context.Context, changeID string) (*Change, error)

	// FindUnresolved returns the pending change for (listing, field) or ErrNotFound.
	FindUnresolved(ctx context.Context, listingID, field string) (*Change, error)

	ListUnresolvedForListing(ctx context.Context, listingID string) ([]Change, error)
	ListUnresolved(ctx context.Context) ([]Change, error)
	CountUnresolved(ctx context.Context) (int64, error)

	// Update is guarded by status and version like the other aggregates.
	Update(ctx context.Context, c *Change, expected workflow.Status) error
}
