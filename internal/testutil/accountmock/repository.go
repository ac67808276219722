package accountmock

import (
	"context"

	domain "ibb-guide/internal/domain/account"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	GetByAccountIDFn func(ctx context.Context, accountID string) (*domain.Account, error)
	ListReviewersFn  func(ctx context.Context) ([]domain.Account, error)
	UpdateStatusFn   func(ctx context.Context, accountID string, status domain.Status, active bool) error
	AssignRoleFn     func(ctx context.Context, accountID, role string) error
}

func (m *Repo) GetByAccountID(ctx context.Context, accountID string) (*domain.Account, error) {
	if m.GetByAccountIDFn != nil {
		return m.GetByAccountIDFn(ctx, accountID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListReviewers(ctx context.Context) ([]domain.Account, error) {
	if m.ListReviewersFn != nil {
		return m.ListReviewersFn(ctx)
	}
	return nil, nil
}

func (m *Repo) UpdateStatus(ctx context.Context, accountID string, status domain.Status, active bool) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, accountID, status, active)
	}
	return nil
}

func (m *Repo) AssignRole(ctx context.Context, accountID, role string) error {
	if m.AssignRoleFn != nil {
		return m.AssignRoleFn(ctx, accountID, role)
	}
	return nil
}

// Staff returns a GetByAccountIDFn that knows the given accounts.
func Staff(accounts ...domain.Account) func(context.Context, string) (*domain.Account, error) {
	return func(_ context.Context, accountID string) (*domain.Account, error) {
		for i := range accounts {
			if accounts[i].AccountID == accountID {
				a := accounts[i]
				return &a, nil
			}
		}
		return nil, domain.ErrNotFound
	}
}
