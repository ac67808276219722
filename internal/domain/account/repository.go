package account

import "context"

type Repository interface {
	GetByAccountID(ctx context.Context, accountID string) (*Account, error)

	// ListReviewers returns active staff accounts.
	ListReviewers(ctx context.Context) ([]Account, error)

	// UpdateStatus writes account_status and is_active; ErrNotFound when no row matches.
	UpdateStatus(ctx context.Context, accountID string, status Status, active bool) error

	AssignRole(ctx context.Context, accountID, role string) error
}
