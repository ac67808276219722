package audit

import "context"

type Repository interface {
	Create(ctx context.Context, r *Record) error
	ListForTarget(ctx context.Context, targetKind, targetID string) ([]Record, error)
}
