package mysql

import (
	"context"

	accountDomain "ibb-guide/internal/domain/account"

	"gorm.io/gorm"
)

type AccountRepository struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) *AccountRepository { return &AccountRepository{db: db} }

func (r *AccountRepository) Create(ctx context.Context, a *accountDomain.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AccountRepository) GetByAccountID(ctx context.Context, accountID string) (*accountDomain.Account, error) {
	var out accountDomain.Account
	res := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&out)
	if res.Error != nil {
		return nil, notFound(res.Error, accountDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *AccountRepository) ListReviewers(ctx context.Context) ([]accountDomain.Account, error) {
	var out []accountDomain.Account
	res := r.db.WithContext(ctx).
		Where("is_staff = ? AND is_active = ?", true, true).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *AccountRepository) UpdateStatus(ctx context.Context, accountID string, status accountDomain.Status, active bool) error {
	return r.update(ctx, accountID, map[string]any{"account_status": status, "is_active": active})
}

func (r *AccountRepository) AssignRole(ctx context.Context, accountID, role string) error {
	return r.update(ctx, accountID, map[string]any{"role": role})
}

// update treats zero affected rows as a miss only after confirming the row is
// absent: MySQL reports changed rows unless clientFoundRows is set.
func (r *AccountRepository) update(ctx context.Context, accountID string, cols map[string]any) error {
	db := r.db.WithContext(ctx)
	res := db.Model(&accountDomain.Account{}).Where("account_id = ?", accountID).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := db.Model(&accountDomain.Account{}).Where("account_id = ?", accountID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return accountDomain.ErrNotFound
	}
	return nil
}
