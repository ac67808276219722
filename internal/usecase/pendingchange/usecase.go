package pendingchange

import (
	"context"
	"fmt"

	"ibb-guide/internal/domain/account"
	auditDomain "ibb-guide/internal/domain/audit"
	"ibb-guide/internal/domain/listing"
	"ibb-guide/internal/domain/moderation"
	"ibb-guide/internal/domain/notification"
	changeDomain "ibb-guide/internal/domain/pendingchange"
	"ibb-guide/internal/domain/uow"
	"ibb-guide/internal/domain/workflow"
	auditUC "ibb-guide/internal/usecase/audit"
	"ibb-guide/pkg/id"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// Usecase governs edits to sensitive listing fields: they are parked as
// pending changes until a reviewer decides through the approval orchestrator,
// which calls back into CopyToListing and DecisionEvent.
type Usecase struct {
	uow        uow.UnitOfWork
	changes    changeDomain.Repository
	audit      *auditUC.Writer
	events     notification.Dispatcher
	classifier moderation.Classifier
	log        *zap.Logger
}

type Option func(*Usecase)

// WithClassifier screens requested values before they are queued.
func WithClassifier(c moderation.Classifier) Option { return func(u *Usecase) { u.classifier = c } }

func NewUsecase(tx uow.UnitOfWork, changes changeDomain.Repository, audit *auditUC.Writer, events notification.Dispatcher, log *zap.Logger, opts ...Option) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	u := &Usecase{
		uow:     tx,
		changes: changes,
		audit:   audit,
		events:  events,
		log:     log,
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

func (u *Usecase) RequestChange(ctx context.Context, in RequestInput) (*workflow.Result, error) {
	if !changeDomain.IsSensitiveField(in.Field) {
		return workflow.Fail(fmt.Sprintf("field %q does not require review", in.Field)), nil
	}
	if res := u.screen(ctx, in); res != nil {
		return res, nil
	}

	var (
		change    *changeDomain.Change
		unchanged bool
		batch     notification.Batch
	)
	err := u.uow.WithinListingTx(ctx, in.ListingID, func(r uow.Repos, l *listing.Listing) error {
		raw, _ := l.FieldValue(in.Field)
		current, _ := raw.(string)
		if current == in.NewValue {
			unchanged = true
			return nil
		}

		existing, err := r.PendingChanges.FindUnresolved(ctx, l.ListingID, in.Field)
		switch {
		case err == nil:
			// one unresolved change per (listing, field): refresh it in place
			expected := existing.Status
			existing.NewValue = in.NewValue
			existing.RequestedBy = in.UserID
			existing.ClientIP = in.Origin.IPPtr()
			if err := r.PendingChanges.Update(ctx, existing, expected); err != nil {
				return err
			}
			change = existing
		case errors.Is(err, changeDomain.ErrNotFound):
			key := changeDomain.ActiveKeyFor(l.ListingID, in.Field)
			change = &changeDomain.Change{
				ChangeID:    id.NewID32(),
				EntityType:  changeDomain.EntityListing,
				ListingID:   l.ListingID,
				FieldName:   in.Field,
				OldValue:    current,
				NewValue:    in.NewValue,
				RequestedBy: in.UserID,
				Status:      workflow.StatusPending,
				ClientIP:    in.Origin.IPPtr(),
				ActiveKey:   &key,
			}
			if err := r.PendingChanges.Create(ctx, change); err != nil {
				return errors.Wrap(err, "create pending change")
			}
		default:
			return errors.Wrap(err, "find pending change")
		}

		if err := u.audit.Log(ctx, r.Audit, auditUC.Entry{
			ActorID:    in.UserID,
			Action:     auditDomain.ActionRequestChange,
			TargetKind: string(workflow.KindListing),
			TargetID:   l.ListingID,
			Old:        map[string]any{in.Field: current},
			New:        map[string]any{in.Field: in.NewValue},
			Origin:     in.Origin,
		}); err != nil {
			return err
		}
		reviewers, err := r.Accounts.ListReviewers(ctx)
		if err != nil {
			return errors.Wrap(err, "list reviewers")
		}
		batch.AddPerRecipient(notification.EventChangeRequested, map[string]any{
			"change_id":  change.ChangeID,
			"listing_id": change.ListingID,
			"field":      change.FieldName,
			"summary":    change.DiffSummary(),
		}, account.IDs(reviewers), notification.PriorityMedium)
		return nil
	})
	if errors.Is(err, listing.ErrNotFound) {
		return workflow.Fail("listing not found"), nil
	}
	if res, herr := workflow.AsResult(err); res != nil || herr != nil {
		return res, herr
	}
	if unchanged {
		return &workflow.Result{Success: true, Message: "value unchanged", Unchanged: true}, nil
	}

	batch.Flush(ctx, u.events)
	u.log.Info("pending change requested",
		zap.String("change_id", change.ChangeID),
		zap.String("listing_id", change.ListingID),
		zap.String("field", change.FieldName))
	return workflow.Ok("change submitted for review", change), nil
}

// CopyToListing writes the change's new value onto its listing and returns the
// value it replaced.
func (u *Usecase) CopyToListing(ctx context.Context, r uow.Repos, c *changeDomain.Change) (string, error) {
	l, err := r.Listings.GetByListingID(ctx, c.ListingID)
	if errors.Is(err, listing.ErrNotFound) {
		return "", workflow.Abort("listing not found")
	}
	if err != nil {
		return "", errors.Wrap(err, "load listing")
	}
	raw, _ := l.FieldValue(c.FieldName)
	previous, _ := raw.(string)

	expected := l.ApprovalStatus
	if err := l.SetField(c.FieldName, c.NewValue); err != nil {
		return "", workflow.Abort(err.Error())
	}
	if err := r.Listings.Update(ctx, l, expected); err != nil {
		return "", err
	}
	return previous, nil
}

// DecisionEvent is the requester notification for a resolved change.
func (u *Usecase) DecisionEvent(c *changeDomain.Change) notification.Event {
	payload := map[string]any{
		"change_id":  c.ChangeID,
		"listing_id": c.ListingID,
		"field":      c.FieldName,
		"summary":    c.DiffSummary(),
	}
	name := notification.EventChangeApproved
	if c.Status == workflow.StatusRejected {
		name = notification.EventChangeRejected
		payload["note"] = c.ReviewNote
	}
	return notification.NewEvent(name, payload, notification.ToRecipient(c.RequestedBy), notification.PriorityMedium)
}

func (u *Usecase) ListForListing(ctx context.Context, listingID string) ([]changeDomain.Change, error) {
	out, err := u.changes.ListUnresolvedForListing(ctx, listingID)
	if err != nil {
		return nil, errors.Wrap(err, "list pending changes")
	}
	return out, nil
}

// ListQueue is the reviewer queue across all listings, newest first.
func (u *Usecase) ListQueue(ctx context.Context) ([]changeDomain.Change, error) {
	out, err := u.changes.ListUnresolved(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list pending changes")
	}
	return out, nil
}

// screen returns a failed Result when the classifier blocks the value.
// Classifier outages do not block edits.
func (u *Usecase) screen(ctx context.Context, in RequestInput) *workflow.Result {
	if u.classifier == nil {
		return nil
	}
	v, err := u.classifier.Analyze(ctx, in.NewValue)
	if err != nil {
		u.log.Warn("moderation unavailable, value accepted",
			zap.String("listing_id", in.ListingID),
			zap.Error(err))
		return nil
	}
	switch v.Action {
	case moderation.ActionBlock:
		msg := v.Message
		if msg == "" {
			msg = "value rejected by content moderation"
		}
		return workflow.Fail(msg)
	case moderation.ActionWarn:
		u.log.Info("moderation warning on requested change",
			zap.String("listing_id", in.ListingID),
			zap.String("field", in.Field),
			zap.Strings("matched", v.Matched))
	}
	return nil
}
