package request

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"ibb-guide/internal/domain/account"
	auditDomain "ibb-guide/internal/domain/audit"
	"ibb-guide/internal/domain/notification"
	requestDomain "ibb-guide/internal/domain/request"
	"ibb-guide/internal/domain/uow"
	"ibb-guide/internal/domain/workflow"
	auditUC "ibb-guide/internal/usecase/audit"
	"ibb-guide/pkg/id"
	"ibb-guide/pkg/jsonb"

	"github.com/go-faster/errors"
	"github.com/wI2L/jsondiff"
	"go.uber.org/zap"
)

// Usecase runs generic requests against a listing or partner profile: field
// updates, activation, verification and partner upgrades. A reviewer answers
// each one and every answer is kept as a formal decision.
type Usecase struct {
	uow      uow.UnitOfWork
	requests requestDomain.Repository
	accounts account.Repository
	audit    *auditUC.Writer
	events   notification.Dispatcher
	machine  workflow.Machine
	targets  map[string]targetKind
	types    map[string]requestType
	log      *zap.Logger
	now      func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, requests requestDomain.Repository, accounts account.Repository, audit *auditUC.Writer, events notification.Dispatcher, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{
		uow:      tx,
		requests: requests,
		accounts: accounts,
		audit:    audit,
		events:   events,
		machine:  workflow.NewMachine(),
		targets:  defaultTargets(),
		types:    defaultTypes(),
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (u *Usecase) SubmitUpdateRequest(ctx context.Context, in SubmitInput) (*workflow.Result, error) {
	tk, ok := u.targets[in.TargetKind]
	if !ok {
		return workflow.Fail(fmt.Sprintf("unsupported target kind %q", in.TargetKind)), nil
	}
	requestType := in.RequestType
	if requestType == "" {
		requestType = requestDomain.TypeUpdateInfo
	}
	rt, ok := u.types[requestType]
	if !ok {
		return workflow.Fail(fmt.Sprintf("unsupported request type %q", requestType)), nil
	}
	if !rt.kinds[in.TargetKind] {
		return workflow.Fail(fmt.Sprintf("%s requests cannot target a %s", requestType, in.TargetKind)), nil
	}
	switch {
	case rt.withChanges && len(in.Changes) == 0:
		return workflow.Fail("no changes submitted"), nil
	case !rt.withChanges && len(in.Changes) > 0:
		return workflow.Fail(fmt.Sprintf("%s requests carry no field changes", requestType)), nil
	}

	var (
		req   *requestDomain.Request
		batch notification.Batch
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := tk.load(ctx, r, in.TargetID)
		if errors.Is(err, requestDomain.ErrTargetNotFound) {
			return workflow.Abort(fmt.Sprintf("%s not found", in.TargetKind))
		}
		if err != nil {
			return errors.Wrap(err, "load request target")
		}

		original := map[string]any{}
		for _, field := range sortedKeys(in.Changes) {
			v, ok := t.FieldValue(field)
			if !ok {
				return workflow.Abort(fmt.Sprintf("unknown field %q", field))
			}
			original[field] = snapshotValue(v)
			// values are type-checked against a scratch copy; nothing is saved
			if err := t.SetField(field, in.Changes[field]); err != nil {
				return workflow.Abort(err.Error())
			}
		}

		req = &requestDomain.Request{
			RequestID:    id.NewID32(),
			RequesterID:  in.UserID,
			RequestType:  requestType,
			TargetKind:   in.TargetKind,
			TargetID:     in.TargetID,
			Changes:      jsonb.Map(in.Changes).Clone(),
			OriginalData: original,
			Description:  in.Description,
			Status:       workflow.StatusPending,
		}
		if err := r.Requests.Create(ctx, req); err != nil {
			return errors.Wrap(err, "create request")
		}
		if err := r.Requests.AddStatusLog(ctx, &requestDomain.StatusLog{
			RequestID: req.RequestID,
			Status:    workflow.StatusPending,
			ChangedBy: in.UserID,
			Message:   "request submitted",
		}); err != nil {
			return errors.Wrap(err, "add status log")
		}
		if err := u.audit.Log(ctx, r.Audit, auditUC.Entry{
			ActorID:    in.UserID,
			Action:     auditDomain.ActionSubmitRequest,
			TargetKind: string(workflow.KindRequest),
			TargetID:   req.RequestID,
			Old:        original,
			New:        in.Changes,
			Origin:     in.Origin,
		}); err != nil {
			return err
		}
		reviewers, err := r.Accounts.ListReviewers(ctx)
		if err != nil {
			return errors.Wrap(err, "list reviewers")
		}
		batch.AddPerRecipient(notification.EventRequestSubmitted, map[string]any{
			"request_id":  req.RequestID,
			"target_kind": req.TargetKind,
			"target_id":   req.TargetID,
		}, account.IDs(reviewers), notification.PriorityMedium)
		return nil
	})
	if res, herr := workflow.AsResult(err); res != nil || herr != nil {
		return res, herr
	}

	batch.Flush(ctx, u.events)
	return workflow.Ok("request submitted", req), nil
}

// ApproveRequest applies every requested change in one transaction. Any
// failure leaves both the request and its target untouched.
func (u *Usecase) ApproveRequest(ctx context.Context, in DecideInput) (*workflow.Result, error) {
	if err := u.authorize(ctx, in.ReviewerID); err != nil {
		return nil, err
	}

	var (
		req   *requestDomain.Request
		batch notification.Batch
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		req, err = u.load(ctx, r, in.RequestID)
		if err != nil {
			return err
		}
		from := req.Status
		ok, to, msg := u.machine.Execute(from, workflow.ActionApprove, u.decisionContext(req, in))
		if !ok {
			return workflow.Abort(msg)
		}

		rt, ok := u.types[req.RequestType]
		if !ok {
			return workflow.Abort(fmt.Sprintf("unsupported request type %q", req.RequestType))
		}
		tk, ok := u.targets[req.TargetKind]
		if !ok {
			return workflow.Abort(fmt.Sprintf("unsupported target kind %q", req.TargetKind))
		}
		t, err := tk.load(ctx, r, req.TargetID)
		if errors.Is(err, requestDomain.ErrTargetNotFound) {
			return workflow.Abort("request target not found")
		}
		if err != nil {
			return errors.Wrap(err, "load request target")
		}

		expected := tk.status(t)
		before := t.Snapshot()
		oldValues, newValues, err := rt.apply(ctx, r, approval{
			req:        req,
			kind:       tk,
			target:     t,
			reviewerID: in.ReviewerID,
			at:         u.now(),
		})
		if err != nil {
			return err
		}

		revert, err := revertPatch(before, t.Snapshot())
		if err != nil {
			return err
		}
		if err := r.Requests.CreateVersion(ctx, &requestDomain.EntityVersion{
			TargetKind:  req.TargetKind,
			TargetID:    req.TargetID,
			Snapshot:    before,
			RevertPatch: revert,
			CreatedBy:   in.ReviewerID,
			Reason:      "before applying request " + req.RequestID,
			RequestID:   req.RequestID,
		}); err != nil {
			return errors.Wrap(err, "store entity version")
		}
		if err := tk.save(ctx, r, t, expected); err != nil {
			return err
		}

		u.stamp(req, to, in)
		if err := r.Requests.Update(ctx, req, from); err != nil {
			return err
		}
		decision, err := u.recordDecision(ctx, r, req, workflow.ActionApprove, in)
		if err != nil {
			return err
		}
		if err := u.audit.Log(ctx, r.Audit, auditUC.Entry{
			ActorID:    in.ReviewerID,
			Action:     auditDomain.ActionApproveRequest,
			TargetKind: req.TargetKind,
			TargetID:   req.TargetID,
			Old:        oldValues,
			New:        newValues,
			Reason:     in.Reason,
			Origin:     in.Origin,
		}); err != nil {
			return err
		}
		if err := u.appendStatusLog(ctx, r, req, decision, in); err != nil {
			return err
		}
		batch.Add(u.statusEvent(req))
		return nil
	})
	if res, herr := workflow.AsResult(err); res != nil || herr != nil {
		return res, herr
	}

	batch.Flush(ctx, u.events)
	u.log.Info("request approved",
		zap.String("request_id", req.RequestID),
		zap.String("target_kind", req.TargetKind),
		zap.String("target_id", req.TargetID),
		zap.String("request_type", req.RequestType),
		zap.Int("fields", len(req.Changes)))
	return workflow.Ok("request approved and changes applied", req), nil
}

func (u *Usecase) RejectRequest(ctx context.Context, in DecideInput) (*workflow.Result, error) {
	return u.transition(ctx, in, workflow.ActionReject, auditDomain.ActionRejectRequest)
}

func (u *Usecase) RequestInfo(ctx context.Context, in DecideInput) (*workflow.Result, error) {
	return u.transition(ctx, in, workflow.ActionRequestInfo, auditDomain.ActionRequestInfo)
}

func (u *Usecase) ConditionalApprove(ctx context.Context, in DecideInput) (*workflow.Result, error) {
	return u.transition(ctx, in, workflow.ActionConditionalApprove, auditDomain.ActionConditionalApprove)
}

// transition handles the status-only decisions.
func (u *Usecase) transition(ctx context.Context, in DecideInput, action workflow.Action, auditAction string) (*workflow.Result, error) {
	if err := u.authorize(ctx, in.ReviewerID); err != nil {
		return nil, err
	}

	var (
		req   *requestDomain.Request
		batch notification.Batch
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		req, err = u.load(ctx, r, in.RequestID)
		if err != nil {
			return err
		}
		from := req.Status
		ok, to, msg := u.machine.Execute(from, action, u.decisionContext(req, in))
		if !ok {
			return workflow.Abort(msg)
		}

		u.stamp(req, to, in)
		if action == workflow.ActionConditionalApprove {
			req.Conditions = in.Conditions
			req.Deadline = in.Deadline
		}
		if err := r.Requests.Update(ctx, req, from); err != nil {
			return err
		}
		decision, err := u.recordDecision(ctx, r, req, action, in)
		if err != nil {
			return err
		}
		if err := u.audit.Log(ctx, r.Audit, auditUC.Entry{
			ActorID:    in.ReviewerID,
			Action:     auditAction,
			TargetKind: string(workflow.KindRequest),
			TargetID:   req.RequestID,
			Old:        map[string]any{"status": string(from)},
			New:        map[string]any{"status": string(to)},
			Reason:     in.Reason,
			Origin:     in.Origin,
		}); err != nil {
			return err
		}
		if err := u.appendStatusLog(ctx, r, req, decision, in); err != nil {
			return err
		}
		batch.Add(u.statusEvent(req))
		return nil
	})
	if res, herr := workflow.AsResult(err); res != nil || herr != nil {
		return res, herr
	}

	batch.Flush(ctx, u.events)
	return workflow.Ok(fmt.Sprintf("request status updated to %s", req.Status), req), nil
}

func (u *Usecase) Get(ctx context.Context, requestID string) (*requestDomain.Request, error) {
	return u.requests.GetByRequestID(ctx, requestID)
}

func (u *Usecase) ListByStatus(ctx context.Context, status workflow.Status) ([]requestDomain.Request, error) {
	out, err := u.requests.ListByStatus(ctx, status)
	if err != nil {
		return nil, errors.Wrap(err, "list requests")
	}
	return out, nil
}

// History returns the status log of one request, oldest first.
func (u *Usecase) History(ctx context.Context, requestID string) ([]requestDomain.StatusLog, error) {
	out, err := u.requests.ListStatusLogs(ctx, requestID)
	if err != nil {
		return nil, errors.Wrap(err, "list status logs")
	}
	return out, nil
}

// Decisions lists the formal decisions taken on a request, newest first.
func (u *Usecase) Decisions(ctx context.Context, requestID string) ([]requestDomain.Decision, error) {
	out, err := u.requests.ListDecisions(ctx, requestID)
	if err != nil {
		return nil, errors.Wrap(err, "list decisions")
	}
	return out, nil
}

// Versions lists pre-change snapshots of a target, newest first.
func (u *Usecase) Versions(ctx context.Context, targetKind, targetID string) ([]requestDomain.EntityVersion, error) {
	out, err := u.requests.ListVersions(ctx, targetKind, targetID)
	if err != nil {
		return nil, errors.Wrap(err, "list entity versions")
	}
	return out, nil
}

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

func (u *Usecase) load(ctx context.Context, r uow.Repos, requestID string) (*requestDomain.Request, error) {
	req, err := r.Requests.GetByRequestID(ctx, requestID)
	if errors.Is(err, requestDomain.ErrNotFound) {
		return nil, workflow.Abort("request not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "load request")
	}
	return req, nil
}

func (u *Usecase) decisionContext(req *requestDomain.Request, in DecideInput) workflow.Context {
	return workflow.Context{
		RequestID:   req.RequestID,
		Kind:        workflow.KindRequest,
		RequesterID: req.RequesterID,
		ReviewerID:  in.ReviewerID,
		Reason:      in.Reason,
		Conditions:  in.Conditions,
		Deadline:    in.Deadline,
	}
}

func (u *Usecase) stamp(req *requestDomain.Request, to workflow.Status, in DecideInput) {
	now := u.now()
	reviewer := in.ReviewerID
	req.Status = to
	req.AdminResponse = in.Reason
	req.ReviewedBy = &reviewer
	req.ReviewedAt = &now
}

// recordDecision stores the formal decision behind a status change.
func (u *Usecase) recordDecision(ctx context.Context, r uow.Repos, req *requestDomain.Request, action workflow.Action, in DecideInput) (*requestDomain.Decision, error) {
	kind, ok := requestDomain.DecisionFor(action)
	if !ok {
		return nil, workflow.Abort(fmt.Sprintf("no decision recorded for %s", action))
	}
	d := &requestDomain.Decision{
		DecisionID: id.NewID32(),
		RequestID:  req.RequestID,
		DecidedBy:  in.ReviewerID,
		Decision:   kind,
		Reason:     in.Reason,
		IsFinal:    req.Status.IsTerminal(),
	}
	if action == workflow.ActionConditionalApprove {
		d.Conditions = in.Conditions
		d.Deadline = in.Deadline
	}
	if err := r.Requests.AddDecision(ctx, d); err != nil {
		return nil, errors.Wrap(err, "record decision")
	}
	return d, nil
}

func (u *Usecase) appendStatusLog(ctx context.Context, r uow.Repos, req *requestDomain.Request, d *requestDomain.Decision, in DecideInput) error {
	if err := r.Requests.AddStatusLog(ctx, &requestDomain.StatusLog{
		RequestID:    req.RequestID,
		Status:       req.Status,
		ChangedBy:    in.ReviewerID,
		Message:      fmt.Sprintf("%s: %s", d.Decision, in.Reason),
		InternalNote: "decision " + d.DecisionID,
	}); err != nil {
		return errors.Wrap(err, "add status log")
	}
	return nil
}

func (u *Usecase) statusEvent(req *requestDomain.Request) notification.Event {
	return notification.NewEvent(notification.EventRequestUpdated, map[string]any{
		"request_id": req.RequestID,
		"status":     string(req.Status),
		"response":   req.AdminResponse,
	}, notification.ToRecipient(req.RequesterID), notification.PriorityMedium)
}

// revertPatch is the RFC 6902 patch turning after back into before.
func revertPatch(before, after map[string]any) (string, error) {
	patch, err := jsondiff.Compare(after, before)
	if err != nil {
		return "", errors.Wrap(err, "compute revert patch")
	}
	b, err := json.Marshal(patch)
	if err != nil {
		return "", errors.Wrap(err, "encode revert patch")
	}
	return string(b), nil
}

// snapshotValue stores the current value as text; missing values become "".
func snapshotValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
