package mysql

import (
	"context"

	requestDomain "ibb-guide/internal/domain/request"
	"ibb-guide/internal/domain/workflow"

	"gorm.io/gorm"
)

type RequestRepository struct{ db *gorm.DB }

func NewRequestRepository(db *gorm.DB) *RequestRepository { return &RequestRepository{db: db} }

func (r *RequestRepository) Create(ctx context.Context, req *requestDomain.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RequestRepository) GetByRequestID(ctx context.Context, requestID string) (*requestDomain.Request, error) {
	var out requestDomain.Request
	res := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, requestDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *RequestRepository) ListByStatus(ctx context.Context, status workflow.Status) ([]requestDomain.Request, error) {
	var out []requestDomain.Request
	res := r.db.WithContext(ctx).Where("status = ?", status).Order("created_at ASC, id ASC").Find(&out)
	return out, res.Error
}

func (r *RequestRepository) Update(ctx context.Context, req *requestDomain.Request, expected workflow.Status) error {
	if err := casUpdate(ctx, r.db, &requestDomain.Request{}, req.ID, "status", expected, req.Version, req.Columns()); err != nil {
		return err
	}
	req.Version++
	return nil
}

func (r *RequestRepository) AddStatusLog(ctx context.Context, l *requestDomain.StatusLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *RequestRepository) ListStatusLogs(ctx context.Context, requestID string) ([]requestDomain.StatusLog, error) {
	var out []requestDomain.StatusLog
	res := r.db.WithContext(ctx).Where("request_id = ?", requestID).Order("id ASC").Find(&out)
	return out, res.Error
}

func (r *RequestRepository) AddDecision(ctx context.Context, d *requestDomain.Decision) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *RequestRepository) ListDecisions(ctx context.Context, requestID string) ([]requestDomain.Decision, error) {
	var out []requestDomain.Decision
	res := r.db.WithContext(ctx).Where("request_id = ?", requestID).Order("id DESC").Find(&out)
	return out, res.Error
}

func (r *RequestRepository) CreateVersion(ctx context.Context, v *requestDomain.EntityVersion) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *RequestRepository) ListVersions(ctx context.Context, targetKind, targetID string) ([]requestDomain.EntityVersion, error) {
	var out []requestDomain.EntityVersion
	res := r.db.WithContext(ctx).
		Where("target_kind = ? AND target_id = ?", targetKind, targetID).
		Order("id DESC").
		Find(&out)
	return out, res.Error
}
