package mysql

import (
	"context"
	"errors"

	"ibb-guide/internal/domain/moderation"

	"gorm.io/gorm"
)

var ErrBannedWordNotFound = errors.New("banned word not found")

type BannedWordRepository struct{ db *gorm.DB }

func NewBannedWordRepository(db *gorm.DB) *BannedWordRepository {
	return &BannedWordRepository{db: db}
}

func (r *BannedWordRepository) ListActive(ctx context.Context) ([]moderation.BannedWord, error) {
	var out []moderation.BannedWord
	res := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&out)
	return out, res.Error
}

func (r *BannedWordRepository) Create(ctx context.Context, w *moderation.BannedWord) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *BannedWordRepository) Deactivate(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).
		Model(&moderation.BannedWord{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBannedWordNotFound
	}
	return nil
}
