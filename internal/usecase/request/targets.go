package request

import (
	"context"
	"fmt"

	"ibb-guide/internal/domain/listing"
	"ibb-guide/internal/domain/partner"
	requestDomain "ibb-guide/internal/domain/request"
	"ibb-guide/internal/domain/uow"
	"ibb-guide/internal/domain/workflow"

	"github.com/go-faster/errors"
)

// targetKind loads and persists one kind of request target inside a
// transaction. verify checks relation fields after they were set; save is
// guarded by the status read at load time.
type targetKind struct {
	load   func(ctx context.Context, r uow.Repos, id string) (requestDomain.Target, error)
	status func(t requestDomain.Target) workflow.Status
	save   func(ctx context.Context, r uow.Repos, t requestDomain.Target, expected workflow.Status) error
	verify func(ctx context.Context, r uow.Repos, field string, t requestDomain.Target) error
}

func defaultTargets() map[string]targetKind {
	return map[string]targetKind{
		string(workflow.KindListing): {
			load: func(ctx context.Context, r uow.Repos, id string) (requestDomain.Target, error) {
				l, err := r.Listings.GetByListingID(ctx, id)
				if errors.Is(err, listing.ErrNotFound) {
					return nil, requestDomain.ErrTargetNotFound
				}
				return l, err
			},
			status: func(t requestDomain.Target) workflow.Status { return t.(*listing.Listing).ApprovalStatus },
			save: func(ctx context.Context, r uow.Repos, t requestDomain.Target, expected workflow.Status) error {
				return r.Listings.Update(ctx, t.(*listing.Listing), expected)
			},
			verify: func(ctx context.Context, r uow.Repos, field string, t requestDomain.Target) error {
				l := t.(*listing.Listing)
				if _, ok := listing.RelationFields[field]; !ok || l.CategoryID == nil {
					return nil
				}
				ok, err := r.Listings.CategoryExists(ctx, *l.CategoryID)
				if err != nil {
					return errors.Wrap(err, "check category")
				}
				if !ok {
					return workflow.Abort(fmt.Sprintf("category %d does not exist", *l.CategoryID))
				}
				return nil
			},
		},
		string(workflow.KindPartner): {
			load: func(ctx context.Context, r uow.Repos, id string) (requestDomain.Target, error) {
				p, err := r.Partners.GetByProfileID(ctx, id)
				if errors.Is(err, partner.ErrNotFound) {
					return nil, requestDomain.ErrTargetNotFound
				}
				return p, err
			},
			status: func(t requestDomain.Target) workflow.Status { return t.(*partner.Profile).Status },
			save: func(ctx context.Context, r uow.Repos, t requestDomain.Target, expected workflow.Status) error {
				return r.Partners.Update(ctx, t.(*partner.Profile), expected)
			},
			verify: func(context.Context, uow.Repos, string, requestDomain.Target) error { return nil },
		},
	}
}
