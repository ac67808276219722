package mysql

import (
	"context"

	"ibb-guide/internal/domain/listing"
	"ibb-guide/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Accounts:       &AccountRepository{db: tx},
		Partners:       &PartnerRepository{db: tx},
		Listings:       &ListingRepository{db: tx},
		PendingChanges: &PendingChangeRepository{db: tx},
		Requests:       &RequestRepository{db: tx},
		Audit:          &AuditRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

// WithinListingTx loads the listing inside the transaction. Writes against it
// are version-guarded, so no row lock is taken here.
func (u *GormUoW) WithinListingTx(ctx context.Context, listingID string, fn func(r uow.Repos, l *listing.Listing) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		l, err := r.Listings.GetByListingID(ctx, listingID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
