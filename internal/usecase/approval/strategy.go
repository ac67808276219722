package approval

import (
	"context"
	"fmt"
	"time"

	"ibb-guide/internal/domain/account"
	"ibb-guide/internal/domain/listing"
	"ibb-guide/internal/domain/notification"
	"ibb-guide/internal/domain/partner"
	changeDomain "ibb-guide/internal/domain/pendingchange"
	"ibb-guide/internal/domain/uow"
	"ibb-guide/internal/domain/workflow"
	changeUC "ibb-guide/internal/usecase/pendingchange"

	"github.com/go-faster/errors"
)

// kindStrategy holds everything that differs between entity kinds. The
// orchestrator drives all of them through the same decide routine.
type kindStrategy interface {
	machine() workflow.Machine
	load(ctx context.Context, r uow.Repos, id string) (*subject, error)
	applyStatus(ctx context.Context, r uow.Repos, s *subject, to workflow.Status, d decision) error
	// applySideEffects returns extra before/after values for the audit entry.
	applySideEffects(ctx context.Context, r uow.Repos, s *subject, to workflow.Status, d decision) (map[string]any, map[string]any, error)
	notify(s *subject, to workflow.Status, d decision) notification.Event
}

func reviewStamp(d decision) (*string, *time.Time) {
	reviewer := d.reviewerID
	at := d.at
	return &reviewer, &at
}

// ---- partner ----

type partnerStrategy struct{}

func (partnerStrategy) machine() workflow.Machine { return workflow.NewMachine() }

func (partnerStrategy) load(ctx context.Context, r uow.Repos, id string) (*subject, error) {
	p, err := r.Partners.GetByProfileID(ctx, id)
	if errors.Is(err, partner.ErrNotFound) {
		return nil, workflow.Abort("partner not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "load partner")
	}
	return &subject{id: p.ProfileID, status: p.Status, owner: p.AccountID, entity: p}, nil
}

func (partnerStrategy) applyStatus(ctx context.Context, r uow.Repos, s *subject, to workflow.Status, d decision) error {
	p := s.entity.(*partner.Profile)
	expected := p.Status
	p.Status = to
	p.ReviewedBy, p.ReviewedAt = reviewStamp(d)
	switch to {
	case workflow.StatusApproved:
		p.RejectionReason = ""
	case workflow.StatusRejected:
		p.RejectionReason = d.reason
	case workflow.StatusNeedsInfo:
		p.InfoRequestMessage = d.reason
	}
	return r.Partners.Update(ctx, p, expected)
}

// applySideEffects keeps the linked account in step: approval activates it
// and grants the partner role, rejection marks it rejected.
func (partnerStrategy) applySideEffects(ctx context.Context, r uow.Repos, s *subject, to workflow.Status, _ decision) (map[string]any, map[string]any, error) {
	var err error
	switch to {
	case workflow.StatusApproved:
		if err = r.Accounts.UpdateStatus(ctx, s.owner, account.StatusActive, true); err == nil {
			err = r.Accounts.AssignRole(ctx, s.owner, account.RolePartner)
		}
	case workflow.StatusRejected:
		err = r.Accounts.UpdateStatus(ctx, s.owner, account.StatusRejected, false)
	default:
		return nil, nil, nil
	}
	if errors.Is(err, account.ErrNotFound) {
		return nil, nil, workflow.Abort("linked account not found")
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "update partner account")
	}
	return nil, nil, nil
}

func (partnerStrategy) notify(s *subject, to workflow.Status, d decision) notification.Event {
	p := s.entity.(*partner.Profile)
	payload := map[string]any{"profile_id": p.ProfileID, "business_name": p.BusinessName}
	name := notification.EventPartnerApproved
	priority := notification.PriorityHigh
	switch to {
	case workflow.StatusRejected:
		name = notification.EventPartnerRejected
		payload["reason"] = d.reason
	case workflow.StatusNeedsInfo:
		name = notification.EventPartnerNeedsInfo
		payload["message"] = d.reason
		priority = notification.PriorityMedium
	}
	return notification.NewEvent(name, payload, notification.ToRecipient(s.owner), priority)
}

// ---- listing ----

type listingStrategy struct{}

func (listingStrategy) machine() workflow.Machine { return workflow.NewMachine(workflow.ListingOverlay) }

func (listingStrategy) load(ctx context.Context, r uow.Repos, id string) (*subject, error) {
	l, err := r.Listings.GetByListingID(ctx, id)
	if errors.Is(err, listing.ErrNotFound) {
		return nil, workflow.Abort("listing not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "load listing")
	}
	s := &subject{id: l.ListingID, status: l.ApprovalStatus, entity: l}
	if l.OwnerID != nil {
		s.owner = *l.OwnerID
	}
	return s, nil
}

func (listingStrategy) applyStatus(ctx context.Context, r uow.Repos, s *subject, to workflow.Status, d decision) error {
	l := s.entity.(*listing.Listing)
	expected := l.ApprovalStatus
	l.ApprovalStatus = to
	switch to {
	case workflow.StatusApproved:
		l.ApprovedBy, l.ApprovedAt = reviewStamp(d)
		l.RejectionReason = ""
	case workflow.StatusRejected:
		l.RejectionReason = d.reason
	}
	return r.Listings.Update(ctx, l, expected)
}

func (listingStrategy) applySideEffects(context.Context, uow.Repos, *subject, workflow.Status, decision) (map[string]any, map[string]any, error) {
	return nil, nil, nil
}

func (listingStrategy) notify(s *subject, to workflow.Status, d decision) notification.Event {
	l := s.entity.(*listing.Listing)
	payload := map[string]any{"listing_id": l.ListingID, "name": l.Name}
	name := notification.EventListingApproved
	if to == workflow.StatusRejected {
		name = notification.EventListingRejected
		payload["reason"] = d.reason
	}
	return notification.NewEvent(name, payload, notification.ToRecipient(s.owner), notification.PriorityMedium)
}

// ---- pending change ----

type changeStrategy struct {
	governor *changeUC.Usecase
}

func (changeStrategy) machine() workflow.Machine { return workflow.NewMachine() }

func (changeStrategy) load(ctx context.Context, r uow.Repos, id string) (*subject, error) {
	c, err := r.PendingChanges.GetByChangeID(ctx, id)
	if errors.Is(err, changeDomain.ErrNotFound) {
		return nil, workflow.Abort("pending change not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "load pending change")
	}
	return &subject{id: c.ChangeID, status: c.Status, owner: c.RequestedBy, entity: c}, nil
}

func (changeStrategy) applyStatus(ctx context.Context, r uow.Repos, s *subject, to workflow.Status, d decision) error {
	c := s.entity.(*changeDomain.Change)
	if to != workflow.StatusApproved && to != workflow.StatusRejected {
		return workflow.Abort(fmt.Sprintf("pending changes cannot move to %s", to))
	}
	expected := c.Status
	c.Resolve(to, d.reviewerID, d.at, d.reason)
	return r.PendingChanges.Update(ctx, c, expected)
}

// applySideEffects copies an approved value onto the live listing; the old
// value is kept only in the audit entry.
func (st changeStrategy) applySideEffects(ctx context.Context, r uow.Repos, s *subject, to workflow.Status, _ decision) (map[string]any, map[string]any, error) {
	if to != workflow.StatusApproved {
		return nil, nil, nil
	}
	c := s.entity.(*changeDomain.Change)
	previous, err := st.governor.CopyToListing(ctx, r, c)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{c.FieldName: previous}, map[string]any{c.FieldName: c.NewValue}, nil
}

func (st changeStrategy) notify(s *subject, _ workflow.Status, _ decision) notification.Event {
	return st.governor.DecisionEvent(s.entity.(*changeDomain.Change))
}
