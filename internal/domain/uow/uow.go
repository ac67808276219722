package uow

import (
	"context"

	"ibb-guide/internal/domain/account"
	"ibb-guide/internal/domain/audit"
	"ibb-guide/internal/domain/listing"
	"ibb-guide/internal/domain/partner"
	"ibb-guide/internal/domain/pendingchange"
	"ibb-guide/internal/domain/request"
)

// Repos are bound to one transaction.
type Repos struct {
	Accounts       account.Repository
	Partners       partner.Repository
	Listings       listing.Repository
	PendingChanges pendingchange.Repository
	Requests       request.Repository
	Audit          audit.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: load the listing first, then pass it in
	WithinListingTx(ctx context.Context, listingID string, fn func(r Repos, l *listing.Listing) error) error
}
