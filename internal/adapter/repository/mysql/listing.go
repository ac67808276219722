package mysql

import (
	"context"

	listingDomain "ibb-guide/internal/domain/listing"
	"ibb-guide/internal/domain/workflow"

	"gorm.io/gorm"
)

type ListingRepository struct{ db *gorm.DB }

func NewListingRepository(db *gorm.DB) *ListingRepository { return &ListingRepository{db: db} }

func (r *ListingRepository) Create(ctx context.Context, l *listingDomain.Listing) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *ListingRepository) GetByListingID(ctx context.Context, listingID string) (*listingDomain.Listing, error) {
	var out listingDomain.Listing
	res := r.db.WithContext(ctx).Where("listing_id = ?", listingID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, listingDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ListingRepository) ListByStatus(ctx context.Context, status workflow.Status) ([]listingDomain.Listing, error) {
	var out []listingDomain.Listing
	res := r.db.WithContext(ctx).Where("approval_status = ?", status).Order("created_at ASC, id ASC").Find(&out)
	return out, res.Error
}

func (r *ListingRepository) CountByStatus(ctx context.Context, status workflow.Status) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&listingDomain.Listing{}).Where("approval_status = ?", status).Count(&n)
	return n, res.Error
}

func (r *ListingRepository) Update(ctx context.Context, l *listingDomain.Listing, expected workflow.Status) error {
	if err := casUpdate(ctx, r.db, &listingDomain.Listing{}, l.ID, "approval_status", expected, l.Version, l.Columns()); err != nil {
		return err
	}
	l.Version++
	return nil
}

func (r *ListingRepository) CategoryExists(ctx context.Context, id uint64) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&listingDomain.Category{}).Where("id = ?", id).Count(&n)
	return n > 0, res.Error
}
