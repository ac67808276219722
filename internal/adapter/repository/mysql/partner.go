package mysql

import (
	"context"

	partnerDomain "ibb-guide/internal/domain/partner"
	"ibb-guide/internal/domain/workflow"

	"gorm.io/gorm"
)

type PartnerRepository struct{ db *gorm.DB }

func NewPartnerRepository(db *gorm.DB) *PartnerRepository { return &PartnerRepository{db: db} }

func (r *PartnerRepository) Create(ctx context.Context, p *partnerDomain.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PartnerRepository) GetByProfileID(ctx context.Context, profileID string) (*partnerDomain.Profile, error) {
	var out partnerDomain.Profile
	res := r.db.WithContext(ctx).Where("profile_id = ?", profileID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, partnerDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *PartnerRepository) ListByStatus(ctx context.Context, status workflow.Status) ([]partnerDomain.Profile, error) {
	var out []partnerDomain.Profile
	res := r.db.WithContext(ctx).Where("status = ?", status).Order("created_at ASC, id ASC").Find(&out)
	return out, res.Error
}

func (r *PartnerRepository) CountByStatus(ctx context.Context, status workflow.Status) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&partnerDomain.Profile{}).Where("status = ?", status).Count(&n)
	return n, res.Error
}

func (r *PartnerRepository) Update(ctx context.Context, p *partnerDomain.Profile, expected workflow.Status) error {
	if err := casUpdate(ctx, r.db, &partnerDomain.Profile{}, p.ID, "status", expected, p.Version, p.Columns()); err != nil {
		return err
	}
	p.Version++
	return nil
}
