package mysql

import (
	"context"

	changeDomain "ibb-guide/internal/domain/pendingchange"
	"ibb-guide/internal/domain/workflow"

	"gorm.io/gorm"
)

type PendingChangeRepository struct{ db *gorm.DB }

func NewPendingChangeRepository(db *gorm.DB) *PendingChangeRepository {
	return &PendingChangeRepository{db: db}
}

// Create relies on the unique active_key to reject a second unresolved
// change for the same (listing, field).
func (r *PendingChangeRepository) Create(ctx context.Context, c *changeDomain.Change) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *PendingChangeRepository) GetByChangeID(ctx context.Context, changeID string) (*changeDomain.Change, error) {
	var out changeDomain.Change
	res := r.db.WithContext(ctx).Where("change_id = ?", changeID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, changeDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *PendingChangeRepository) FindUnresolved(ctx context.Context, listingID, field string) (*changeDomain.Change, error) {
	var out changeDomain.Change
	res := r.db.WithContext(ctx).
		Where("listing_id = ? AND field_name = ? AND status = ?", listingID, field, workflow.StatusPending).
		First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, changeDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *PendingChangeRepository) ListUnresolvedForListing(ctx context.Context, listingID string) ([]changeDomain.Change, error) {
	var out []changeDomain.Change
	res := r.db.WithContext(ctx).
		Where("listing_id = ? AND status = ?", listingID, workflow.StatusPending).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *PendingChangeRepository) ListUnresolved(ctx context.Context) ([]changeDomain.Change, error) {
	var out []changeDomain.Change
	res := r.db.WithContext(ctx).
		Where("status = ?", workflow.StatusPending).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *PendingChangeRepository) CountUnresolved(ctx context.Context) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&changeDomain.Change{}).Where("status = ?", workflow.StatusPending).Count(&n)
	return n, res.Error
}

func (r *PendingChangeRepository) Update(ctx context.Context, c *changeDomain.Change, expected workflow.Status) error {
	if err := casUpdate(ctx, r.db, &changeDomain.Change{}, c.ID, "status", expected, c.Version, c.Columns()); err != nil {
		return err
	}
	c.Version++
	return nil
}
