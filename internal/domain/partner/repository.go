package partner

import (
	"context"

	"ibb-guide/internal/domain/workflow"
)

type Repository interface {
	Create(ctx context.Context, p *Profile) error
	GetByProfileID(ctx context.Context, profileID string) (*Profile, error)
	ListByStatus(ctx context.Context, status workflow.Status) ([]Profile, error)
	CountByStatus(ctx context.Context, status workflow.Status) (int64, error)

	// Update persists all mutable columns only if the stored row still has
	// the given status and p.Version; otherwise workflow.ErrStaleState.
	Update(ctx context.Context, p *Profile, expected workflow.Status) error
}
