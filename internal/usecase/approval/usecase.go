package approval

import (
	"context"
	"fmt"
	"maps"
	"time"

	"ibb-guide/internal/domain/account"
	"ibb-guide/internal/domain/listing"
	"ibb-guide/internal/domain/notification"
	"ibb-guide/internal/domain/partner"
	changeDomain "ibb-guide/internal/domain/pendingchange"
	"ibb-guide/internal/domain/uow"
	"ibb-guide/internal/domain/workflow"
	"ibb-guide/internal/infrastructure/metrics"
	auditUC "ibb-guide/internal/usecase/audit"
	changeUC "ibb-guide/internal/usecase/pendingchange"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

type Usecase struct {
	accounts account.Repository
	partners partner.Repository
	listings listing.Repository
	changes  changeDomain.Repository
	uow      uow.UnitOfWork
	audit    *auditUC.Writer
	events   notification.Dispatcher
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time

	strategies map[workflow.Kind]kindStrategy
}

type Deps struct {
	Accounts account.Repository
	Partners partner.Repository
	Listings listing.Repository
	Changes  changeDomain.Repository
	UoW      uow.UnitOfWork
	Audit    *auditUC.Writer
	Events   notification.Dispatcher
	Governor *changeUC.Usecase
	Metrics  *metrics.Metrics
	Log      *zap.Logger
}

func NewUsecase(d Deps) *Usecase {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{
		accounts: d.Accounts,
		partners: d.Partners,
		listings: d.Listings,
		changes:  d.Changes,
		uow:      d.UoW,
		audit:    d.Audit,
		events:   d.Events,
		metrics:  d.Metrics,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		strategies: map[workflow.Kind]kindStrategy{
			workflow.KindPartner:       partnerStrategy{},
			workflow.KindListing:       listingStrategy{},
			workflow.KindPendingChange: changeStrategy{governor: d.Governor},
		},
	}
}

func (u *Usecase) ApprovePartner(ctx context.Context, in DecisionInput) (*workflow.Result, error) {
	return u.Decide(ctx, workflow.KindPartner, workflow.ActionApprove, in)
}

func (u *Usecase) RejectPartner(ctx context.Context, in DecisionInput) (*workflow.Result, error) {
	return u.Decide(ctx, workflow.KindPartner, workflow.ActionReject, in)
}

func (u *Usecase) RequestInfoPartner(ctx context.Context, in DecisionInput) (*workflow.Result, error) {
	return u.Decide(ctx, workflow.KindPartner, workflow.ActionRequestInfo, in)
}

func (u *Usecase) ApproveListing(ctx context.Context, in DecisionInput) (*workflow.Result, error) {
	return u.Decide(ctx, workflow.KindListing, workflow.ActionApprove, in)
}

func (u *Usecase) RejectListing(ctx context.Context, in DecisionInput) (*workflow.Result, error) {
	return u.Decide(ctx, workflow.KindListing, workflow.ActionReject, in)
}

func (u *Usecase) ApprovePendingChange(ctx context.Context, in DecisionInput) (*workflow.Result, error) {
	return u.Decide(ctx, workflow.KindPendingChange, workflow.ActionApprove, in)
}

func (u *Usecase) RejectPendingChange(ctx context.Context, in DecisionInput) (*workflow.Result, error) {
	return u.Decide(ctx, workflow.KindPendingChange, workflow.ActionReject, in)
}

// Decide runs one reviewer decision: authorize, validate against the kind's
// state machine, then update status, side effects and audit in a single
// transaction. The notification goes out only after commit.
func (u *Usecase) Decide(ctx context.Context, kind workflow.Kind, action workflow.Action, in DecisionInput) (*workflow.Result, error) {
	st, ok := u.strategies[kind]
	if !ok {
		return workflow.Fail(fmt.Sprintf("unsupported kind %q", kind)), nil
	}
	if err := u.authorize(ctx, in.ReviewerID); err != nil {
		return nil, err
	}

	var (
		s     *subject
		to    workflow.Status
		batch notification.Batch
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		if s, err = st.load(ctx, r, in.TargetID); err != nil {
			return err
		}
		from := s.status
		ok, next, msg := st.machine().Execute(from, action, workflow.Context{
			RequestID:   s.id,
			Kind:        kind,
			RequesterID: s.owner,
			ReviewerID:  in.ReviewerID,
			Reason:      in.Reason,
		})
		if !ok {
			return workflow.Abort(msg)
		}
		to = next

		d := decision{action: action, reviewerID: in.ReviewerID, reason: in.Reason, at: u.now()}
		if err := st.applyStatus(ctx, r, s, to, d); err != nil {
			return err
		}
		extraOld, extraNew, err := st.applySideEffects(ctx, r, s, to, d)
		if err != nil {
			return err
		}

		before := map[string]any{"status": string(from)}
		after := map[string]any{"status": string(to)}
		maps.Copy(before, extraOld)
		maps.Copy(after, extraNew)
		if err := u.audit.Log(ctx, r.Audit, auditUC.Entry{
			ActorID:    in.ReviewerID,
			Action:     string(action),
			TargetKind: string(kind),
			TargetID:   s.id,
			Old:        before,
			New:        after,
			Reason:     in.Reason,
			Origin:     in.Origin,
		}); err != nil {
			return err
		}
		if s.owner != "" {
			batch.Add(st.notify(s, to, d))
		}
		return nil
	})

	res, herr := workflow.AsResult(err)
	switch {
	case herr != nil:
		u.count(kind, action, "error")
		u.log.Error("decision failed",
			zap.String("kind", string(kind)),
			zap.String("action", string(action)),
			zap.String("target_id", in.TargetID),
			zap.Error(herr))
		return nil, herr
	case res != nil:
		u.count(kind, action, "rejected")
		u.log.Info("decision refused",
			zap.String("kind", string(kind)),
			zap.String("action", string(action)),
			zap.String("target_id", in.TargetID),
			zap.String("reason", res.Message))
		return res, nil
	}

	batch.Flush(ctx, u.events)
	u.count(kind, action, "ok")
	u.log.Info("decision applied",
		zap.String("kind", string(kind)),
		zap.String("action", string(action)),
		zap.String("target_id", s.id),
		zap.String("reviewer_id", in.ReviewerID),
		zap.String("status", string(to)))
	return workflow.Ok(fmt.Sprintf("%s %s", kind, to), s.entity), nil
}

// PendingCounts returns outstanding items per review queue.
func (u *Usecase) PendingCounts(ctx context.Context) (Counts, error) {
	var c Counts
	var err error
	if c.Partners, err = u.partners.CountByStatus(ctx, workflow.StatusPending); err != nil {
		return Counts{}, errors.Wrap(err, "count partners")
	}
	if c.Listings, err = u.listings.CountByStatus(ctx, workflow.StatusPending); err != nil {
		return Counts{}, errors.Wrap(err, "count listings")
	}
	if c.Changes, err = u.changes.CountUnresolved(ctx); err != nil {
		return Counts{}, errors.Wrap(err, "count pending changes")
	}
	return c, nil
}

func (u *Usecase) ListPartners(ctx context.Context, status workflow.Status) ([]partner.Profile, error) {
	return u.partners.ListByStatus(ctx, status)
}

func (u *Usecase) ListListings(ctx context.Context, status workflow.Status) ([]listing.Listing, error) {
	return u.listings.ListByStatus(ctx, status)
}

// authorize fails with workflow.ErrForbidden unless the actor is active staff.
func (u *Usecase) authorize(ctx context.Context, reviewerID string) error {
	a, err := u.accounts.GetByAccountID(ctx, reviewerID)
	if errors.Is(err, account.ErrNotFound) {
		return workflow.ErrForbidden
	}
	if err != nil {
		return errors.Wrap(err, "load reviewer")
	}
	if !a.CanReview() {
		return workflow.ErrForbidden
	}
	return nil
}

func (u *Usecase) count(kind workflow.Kind, action workflow.Action, outcome string) {
	if u.metrics == nil {
		return
	}
	u.metrics.Decisions.WithLabelValues(string(kind), string(action), outcome).Inc()
}
