package request

import (
	"context"

	"ibb-guide/internal/domain/workflow"
)

type Repository interface {
	Create(ctx context.Context, r *Request) error
	GetByRequestID(ctx context.Context, requestID string) (*Request, error)
	ListByStatus(ctx context.Context, status workflow.Status) ([]Request, error)

	// Update is guarded by status and version; workflow.ErrStaleState otherwise.
	Update(ctx context.Context, r *Request, expected workflow.Status) error

	AddStatusLog(ctx context.Context, l *StatusLog) error
	ListStatusLogs(ctx context.Context, requestID string) ([]StatusLog, error)

	AddDecision(ctx context.Context, d *Decision) error
	// ListDecisions is newest first.
	ListDecisions(ctx context.Context, requestID string) ([]Decision, error)

	CreateVersion(ctx context.Context, v *EntityVersion) error
	ListVersions(ctx context.Context, targetKind, targetID string) ([]EntityVersion, error)
}
