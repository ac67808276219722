package request

import (
	"context"
	"fmt"
	"time"

	"ibb-guide/internal/domain/account"
	"ibb-guide/internal/domain/partner"
	requestDomain "ibb-guide/internal/domain/request"
	"ibb-guide/internal/domain/uow"
	"ibb-guide/internal/domain/workflow"

	"github.com/go-faster/errors"
)

// approval carries what a request type needs to apply itself.
type approval struct {
	req        *requestDomain.Request
	kind       targetKind
	target     requestDomain.Target
	reviewerID string
	at         time.Time
}

// requestType is what approving one kind of request does to its target.
// apply returns the audit before/after values of what it touched.
type requestType struct {
	kinds       map[string]bool
	withChanges bool
	apply       func(ctx context.Context, r uow.Repos, a approval) (map[string]any, map[string]any, error)
}

func defaultTypes() map[string]requestType {
	listingOnly := map[string]bool{string(workflow.KindListing): true}
	return map[string]requestType{
		requestDomain.TypeUpdateInfo: {
			kinds:       map[string]bool{string(workflow.KindListing): true, string(workflow.KindPartner): true},
			withChanges: true,
			apply:       applyChanges,
		},
		requestDomain.TypeAddPlace:            {kinds: listingOnly, apply: raiseFlag("is_active")},
		requestDomain.TypeVerifyEstablishment: {kinds: listingOnly, apply: raiseFlag("is_verified")},
		requestDomain.TypeUpgradePartner: {
			kinds: map[string]bool{string(workflow.KindPartner): true},
			apply: upgradePartner,
		},
	}
}

// applyChanges copies every requested field onto the target; relation
// fields must point at an existing row.
func applyChanges(ctx context.Context, r uow.Repos, a approval) (map[string]any, map[string]any, error) {
	oldValues, newValues := map[string]any{}, map[string]any{}
	for _, field := range sortedKeys(a.req.Changes) {
		old, known := a.target.FieldValue(field)
		if !known {
			return nil, nil, workflow.Abort(fmt.Sprintf("unknown field %q", field))
		}
		if err := a.target.SetField(field, a.req.Changes[field]); err != nil {
			return nil, nil, workflow.Abort(fmt.Sprintf("cannot apply %s: %v", field, err))
		}
		if err := a.kind.verify(ctx, r, field, a.target); err != nil {
			return nil, nil, err
		}
		applied, _ := a.target.FieldValue(field)
		oldValues[field] = old
		newValues[field] = applied
	}
	return oldValues, newValues, nil
}

func raiseFlag(field string) func(context.Context, uow.Repos, approval) (map[string]any, map[string]any, error) {
	return func(_ context.Context, _ uow.Repos, a approval) (map[string]any, map[string]any, error) {
		old, known := a.target.FieldValue(field)
		if !known {
			return nil, nil, workflow.Abort(fmt.Sprintf("unknown field %q", field))
		}
		if err := a.target.SetField(field, true); err != nil {
			return nil, nil, workflow.Abort(fmt.Sprintf("cannot apply %s: %v", field, err))
		}
		return map[string]any{field: old}, map[string]any{field: true}, nil
	}
}

// upgradePartner approves the profile and turns its account into an active
// partner.
func upgradePartner(ctx context.Context, r uow.Repos, a approval) (map[string]any, map[string]any, error) {
	p := a.target.(*partner.Profile)
	if p.Status == workflow.StatusApproved {
		return nil, nil, workflow.Abort("partner profile is already approved")
	}
	old := map[string]any{"status": string(p.Status)}

	reviewer, at := a.reviewerID, a.at
	p.Status = workflow.StatusApproved
	p.RejectionReason = ""
	p.ReviewedBy = &reviewer
	p.ReviewedAt = &at

	err := r.Accounts.UpdateStatus(ctx, p.AccountID, account.StatusActive, true)
	if err == nil {
		err = r.Accounts.AssignRole(ctx, p.AccountID, account.RolePartner)
	}
	if errors.Is(err, account.ErrNotFound) {
		return nil, nil, workflow.Abort("linked account not found")
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "upgrade partner account")
	}
	return old, map[string]any{"status": string(p.Status), "role": account.RolePartner}, nil
}
