package mysql

import (
	"context"

	auditDomain "ibb-guide/internal/domain/audit"

	"gorm.io/gorm"
)

// AuditRepository is insert-only.
type AuditRepository struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) *AuditRepository { return &AuditRepository{db: db} }

func (r *AuditRepository) Create(ctx context.Context, rec *auditDomain.Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *AuditRepository) ListForTarget(ctx context.Context, targetKind, targetID string) ([]auditDomain.Record, error) {
	var out []auditDomain.Record
	res := r.db.WithContext(ctx).
		Where("target_kind = ? AND target_id = ?", targetKind, targetID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
