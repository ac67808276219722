package requestmock

import (
	"context"

	domain "ibb-guide/internal/domain/request"
	"ibb-guide/internal/domain/workflow"
)

var _ domain.Repository = (*Repo)(nil)

type Repo struct {
	CreateFn         func(ctx context.Context, r *domain.Request) error
	GetByRequestIDFn func(ctx context.Context, requestID string) (*domain.Request, error)
	ListByStatusFn   func(ctx context.Context, status workflow.Status) ([]domain.Request, error)
	UpdateFn         func(ctx context.Context, r *domain.Request, expected workflow.Status) error
	AddStatusLogFn   func(ctx context.Context, l *domain.StatusLog) error
	ListStatusLogsFn func(ctx context.Context, requestID string) ([]domain.StatusLog, error)
	AddDecisionFn    func(ctx context.Context, d *domain.Decision) error
	ListDecisionsFn  func(ctx context.Context, requestID string) ([]domain.Decision, error)
	CreateVersionFn  func(ctx context.Context, v *domain.EntityVersion) error
	ListVersionsFn   func(ctx context.Context, targetKind, targetID string) ([]domain.EntityVersion, error)
}

func (m *Repo) Create(ctx context.Context, r *domain.Request) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByRequestID(ctx context.Context, requestID string) (*domain.Request, error) {
	if m.GetByRequestIDFn != nil {
		return m.GetByRequestIDFn(ctx, requestID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListByStatus(ctx context.Context, status workflow.Status) ([]domain.Request, error) {
	if m.ListByStatusFn != nil {
		return m.ListByStatusFn(ctx, status)
	}
	return nil, nil
}

func (m *Repo) Update(ctx context.Context, r *domain.Request, expected workflow.Status) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, r, expected)
	}
	return nil
}

func (m *Repo) AddStatusLog(ctx context.Context, l *domain.StatusLog) error {
	if m.AddStatusLogFn != nil {
		return m.AddStatusLogFn(ctx, l)
	}
	return nil
}

func (m *Repo) ListStatusLogs(ctx context.Context, requestID string) ([]domain.StatusLog, error) {
	if m.ListStatusLogsFn != nil {
		return m.ListStatusLogsFn(ctx, requestID)
	}
	return nil, nil
}

func (m *Repo) AddDecision(ctx context.Context, d *domain.Decision) error {
	if m.AddDecisionFn != nil {
		return m.AddDecisionFn(ctx, d)
	}
	return nil
}

func (m *Repo) ListDecisions(ctx context.Context, requestID string) ([]domain.Decision, error) {
	if m.ListDecisionsFn != nil {
		return m.ListDecisionsFn(ctx, requestID)
	}
	return nil, nil
}

func (m *Repo) CreateVersion(ctx context.Context, v *domain.EntityVersion) error {
	if m.CreateVersionFn != nil {
		return m.CreateVersionFn(ctx, v)
	}
	return nil
}

func (m *Repo) ListVersions(ctx context.Context, targetKind, targetID string) ([]domain.EntityVersion, error) {
	if m.ListVersionsFn != nil {
		return m.ListVersionsFn(ctx, targetKind, targetID)
	}
	return nil, nil
}
