package request

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ibb-guide/internal/domain/account"
	auditDomain "ibb-guide/internal/domain/audit"
	"ibb-guide/internal/domain/listing"
	"ibb-guide/internal/domain/notification"
	"ibb-guide/internal/domain/partner"
	requestDomain "ibb-guide/internal/domain/request"
	"ibb-guide/internal/domain/workflow"
	auditUC "ibb-guide/internal/usecase/audit"
	"ibb-guide/internal/testutil/eventmock"
	"ibb-guide/internal/testutil/storemock"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFixture(t *testing.T) (*Usecase, *storemock.Store, *eventmock.Dispatcher) {
	t.Helper()
	store := storemock.New()
	store.AddAccount(account.Account{AccountID: "STAFF-1", Username: "staff", IsStaff: true, IsActive: true})
	store.AddAccount(account.Account{AccountID: "OWNER-1", Username: "owner", IsActive: true})
	store.AddListing(listing.Listing{
		ListingID:      "LST-1",
		Name:           "Old Souq Cafe",
		Phone:          "0100",
		ApprovalStatus: workflow.StatusApproved,
	})
	store.AddPartner(partner.Profile{ProfileID: "PRF-1", AccountID: "OWNER-1", BusinessName: "Sabaa Tours", Status: workflow.StatusApproved})
	store.AddCategory(3)

	events := &eventmock.Dispatcher{}
	repos := store.Repos()
	uc := NewUsecase(store.UoW(), repos.Requests, repos.Accounts, auditUC.NewWriter(repos.Audit, zap.NewNop()), events, zap.NewNop())
	return uc, store, events
}

func submit(t *testing.T, uc *Usecase, kind, target string, changes map[string]any) *requestDomain.Request {
	t.Helper()
	res, err := uc.SubmitUpdateRequest(context.Background(), SubmitInput{
		UserID:      "OWNER-1",
		TargetKind:  kind,
		TargetID:    target,
		Changes:     changes,
		Description: "please update",
	})
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	return res.Entity.(*requestDomain.Request)
}

func TestSubmitUpdateRequest_SnapshotsOriginals(t *testing.T) {
	uc, store, events := newFixture(t)
	req := submit(t, uc, "listing", "LST-1", map[string]any{"phone": "0122", "category": float64(3), "is_active": true})

	assert.Equal(t, workflow.StatusPending, req.Status)
	assert.Equal(t, "0100", req.OriginalData["phone"])
	assert.Equal(t, "", req.OriginalData["category"])
	assert.Equal(t, "false", req.OriginalData["is_active"])

	// nothing is applied on submit
	assert.Equal(t, "0100", store.Listing("LST-1").Phone)

	logs, err := uc.History(context.Background(), req.RequestID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, workflow.StatusPending, logs[0].Status)

	require.Len(t, events.Events, 1)
	assert.Equal(t, notification.EventRequestSubmitted, events.Events[0].Name)
	assert.Equal(t, "STAFF-1", events.Events[0].Audience.RecipientID)
}

func TestSubmitUpdateRequest_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		target  string
		changes map[string]any
		message string
	}{
		{"unknown kind", "review", "R-1", map[string]any{"x": 1}, `unsupported target kind "review"`},
		{"no changes", "listing", "LST-1", nil, "no changes submitted"},
		{"missing target", "listing", "LST-404", map[string]any{"phone": "1"}, "listing not found"},
		{"unknown field", "listing", "LST-1", map[string]any{"owner_id": "x"}, `unknown field "owner_id"`},
		{"wrong type", "partner", "PRF-1", map[string]any{"business_name": 12.0}, `field "business_name" expects a string, got float64`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, store, _ := newFixture(t)
			res, err := uc.SubmitUpdateRequest(context.Background(), SubmitInput{
				UserID: "OWNER-1", TargetKind: tt.kind, TargetID: tt.target, Changes: tt.changes,
			})
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.Equal(t, tt.message, res.Message)
			assert.Empty(t, store.Requests)
		})
	}
}

func TestApproveRequest_AppliesAllChanges(t *testing.T) {
	ctx := context.Background()
	uc, store, events := newFixture(t)
	req := submit(t, uc, "listing", "LST-1", map[string]any{"phone": "0122", "category": "3"})

	res, err := uc.ApproveRequest(ctx, DecideInput{RequestID: req.RequestID, ReviewerID: "STAFF-1", Reason: "verified"})
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)

	l := store.Listing("LST-1")
	assert.Equal(t, "0122", l.Phone)
	require.NotNil(t, l.CategoryID)
	assert.Equal(t, uint64(3), *l.CategoryID)

	stored := store.Request(req.RequestID)
	assert.Equal(t, workflow.StatusApproved, stored.Status)
	assert.Equal(t, "verified", stored.AdminResponse)

	recs := store.AuditRecords()
	last := recs[len(recs)-1]
	assert.Equal(t, auditDomain.ActionApproveRequest, last.Action)
	assert.Equal(t, "0100", last.OldValues["phone"])
	assert.Equal(t, "0122", last.NewValues["phone"])

	versions, err := uc.Versions(ctx, "listing", "LST-1")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "0100", versions[0].Snapshot["phone"])

	// the stored revert patch turns the applied state back into the snapshot
	patch, err := jsonpatch.DecodePatch([]byte(versions[0].RevertPatch))
	require.NoError(t, err)
	after, err := json.Marshal(l.Snapshot())
	require.NoError(t, err)
	reverted, err := patch.Apply(after)
	require.NoError(t, err)
	before, err := json.Marshal(versions[0].Snapshot)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(reverted))

	logs, _ := uc.History(ctx, req.RequestID)
	assert.Len(t, logs, 2)

	lastEvent := events.Events[len(events.Events)-1]
	assert.Equal(t, notification.EventRequestUpdated, lastEvent.Name)
	assert.Equal(t, "OWNER-1", lastEvent.Audience.RecipientID)
}

func TestApproveRequest_MissingRelationIsAtomic(t *testing.T) {
	ctx := context.Background()
	uc, store, events := newFixture(t)
	req := submit(t, uc, "listing", "LST-1", map[string]any{"phone": "0122", "category": float64(99)})
	auditBefore := len(store.AuditRecords())
	eventsBefore := len(events.Events)
	listingBefore := store.Listing("LST-1")

	res, err := uc.ApproveRequest(ctx, DecideInput{RequestID: req.RequestID, ReviewerID: "STAFF-1"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "category 99 does not exist", res.Message)

	assert.Equal(t, workflow.StatusPending, store.Request(req.RequestID).Status)
	assert.Equal(t, listingBefore, store.Listing("LST-1"))
	assert.Empty(t, store.Versions)
	assert.Len(t, store.AuditRecords(), auditBefore)
	assert.Len(t, events.Events, eventsBefore)
}

func TestApproveRequest_Partner(t *testing.T) {
	uc, store, _ := newFixture(t)
	req := submit(t, uc, "partner", "PRF-1", map[string]any{"business_name": "Sabaa Travel"})

	res, err := uc.ApproveRequest(context.Background(), DecideInput{RequestID: req.RequestID, ReviewerID: "STAFF-1"})
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Sabaa Travel", store.Partner("PRF-1").BusinessName)
}

func TestApproveRequest_Twice(t *testing.T) {
	ctx := context.Background()
	uc, store, _ := newFixture(t)
	req := submit(t, uc, "listing", "LST-1", map[string]any{"phone": "0122"})

	_, err := uc.ApproveRequest(ctx, DecideInput{RequestID: req.RequestID, ReviewerID: "STAFF-1"})
	require.NoError(t, err)
	auditCount := len(store.AuditRecords())

	res, err := uc.ApproveRequest(ctx, DecideInput{RequestID: req.RequestID, ReviewerID: "STAFF-1"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "already finalized")
	assert.Len(t, store.AuditRecords(), auditCount)
}

func TestStatusOnlyDecisions(t *testing.T) {
	deadline := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		run      func(*Usecase, context.Context, DecideInput) (*workflow.Result, error)
		in       DecideInput
		success  bool
		status   workflow.Status
		message  string
		decision string
	}{
		{
			name:    "reject needs a reason",
			run:     (*Usecase).RejectRequest,
			in:      DecideInput{ReviewerID: "STAFF-1"},
			status:  workflow.StatusPending,
			message: "reason is required for REJECT",
		},
		{
			name:     "reject",
			run:      (*Usecase).RejectRequest,
			in:       DecideInput{ReviewerID: "STAFF-1", Reason: "not allowed"},
			success:  true,
			status:   workflow.StatusRejected,
			decision: requestDomain.DecisionReject,
		},
		{
			name:     "request info",
			run:      (*Usecase).RequestInfo,
			in:       DecideInput{ReviewerID: "STAFF-1", Reason: "send a licence"},
			success:  true,
			status:   workflow.StatusNeedsInfo,
			decision: requestDomain.DecisionRequestInfo,
		},
		{
			name:    "conditional approve needs conditions",
			run:     (*Usecase).ConditionalApprove,
			in:      DecideInput{ReviewerID: "STAFF-1"},
			status:  workflow.StatusPending,
			message: "conditions are required for CONDITIONAL_APPROVE",
		},
		{
			name:     "conditional approve",
			run:      (*Usecase).ConditionalApprove,
			in:       DecideInput{ReviewerID: "STAFF-1", Conditions: "upload permit", Deadline: &deadline},
			success:  true,
			status:   workflow.StatusConditional,
			decision: requestDomain.DecisionConditional,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, store, _ := newFixture(t)
			req := submit(t, uc, "listing", "LST-1", map[string]any{"phone": "0122"})
			tt.in.RequestID = req.RequestID

			res, err := tt.run(uc, context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.success, res.Success)
			if tt.message != "" {
				assert.Equal(t, tt.message, res.Message)
			}
			stored := store.Request(req.RequestID)
			assert.Equal(t, tt.status, stored.Status)
			// status-only decisions never touch the target
			assert.Equal(t, "0100", store.Listing("LST-1").Phone)
			if tt.status == workflow.StatusConditional {
				assert.Equal(t, "upload permit", stored.Conditions)
				require.NotNil(t, stored.Deadline)
				assert.True(t, deadline.Equal(*stored.Deadline))
			}

			decisions, err := uc.Decisions(context.Background(), req.RequestID)
			require.NoError(t, err)
			if tt.decision == "" {
				assert.Empty(t, decisions)
				return
			}
			require.Len(t, decisions, 1)
			assert.Equal(t, tt.decision, decisions[0].Decision)
			assert.Equal(t, "STAFF-1", decisions[0].DecidedBy)
			assert.Equal(t, tt.status.IsTerminal(), decisions[0].IsFinal)
			if tt.decision == requestDomain.DecisionConditional {
				assert.Equal(t, "upload permit", decisions[0].Conditions)
			}
		})
	}
}

func TestDecisions_RequireReviewer(t *testing.T) {
	uc, _, _ := newFixture(t)
	req := submit(t, uc, "listing", "LST-1", map[string]any{"phone": "0122"})

	_, err := uc.ApproveRequest(context.Background(), DecideInput{RequestID: req.RequestID, ReviewerID: "OWNER-1"})
	assert.ErrorIs(t, err, workflow.ErrForbidden)
	_, err = uc.RejectRequest(context.Background(), DecideInput{RequestID: req.RequestID, ReviewerID: "GHOST", Reason: "x"})
	assert.ErrorIs(t, err, workflow.ErrForbidden)
}

func TestApproveRequest_NotFound(t *testing.T) {
	uc, _, _ := newFixture(t)
	res, err := uc.ApproveRequest(context.Background(), DecideInput{RequestID: "REQ-404", ReviewerID: "STAFF-1"})
	require.NoError(t, err)
	assert.Equal(t, "request not found", res.Message)
}

func submitTyped(t *testing.T, uc *Usecase, requestType, kind, target string) *requestDomain.Request {
	t.Helper()
	res, err := uc.SubmitUpdateRequest(context.Background(), SubmitInput{
		UserID:      "OWNER-1",
		RequestType: requestType,
		TargetKind:  kind,
		TargetID:    target,
		Description: "please review",
	})
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	return res.Entity.(*requestDomain.Request)
}

func TestSubmitUpdateRequest_TypeRules(t *testing.T) {
	tests := []struct {
		name    string
		in      SubmitInput
		message string
	}{
		{
			name:    "unknown type",
			in:      SubmitInput{RequestType: "OPEN_SHOP", TargetKind: "listing", TargetID: "LST-1"},
			message: `unsupported request type "OPEN_SHOP"`,
		},
		{
			name:    "add place on a partner",
			in:      SubmitInput{RequestType: requestDomain.TypeAddPlace, TargetKind: "partner", TargetID: "PRF-1"},
			message: "ADD_PLACE requests cannot target a partner",
		},
		{
			name:    "upgrade on a listing",
			in:      SubmitInput{RequestType: requestDomain.TypeUpgradePartner, TargetKind: "listing", TargetID: "LST-1"},
			message: "UPGRADE_PARTNER requests cannot target a listing",
		},
		{
			name: "verification with changes",
			in: SubmitInput{
				RequestType: requestDomain.TypeVerifyEstablishment,
				TargetKind:  "listing",
				TargetID:    "LST-1",
				Changes:     map[string]any{"phone": "0122"},
			},
			message: "VERIFY_ESTABLISHMENT requests carry no field changes",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _, events := newFixture(t)
			tt.in.UserID = "OWNER-1"
			res, err := uc.SubmitUpdateRequest(context.Background(), tt.in)
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.Equal(t, tt.message, res.Message)
			assert.Empty(t, events.Events)
		})
	}
}

func TestApproveRequest_ListingFlags(t *testing.T) {
	tests := []struct {
		name        string
		requestType string
		check       func(t *testing.T, l listing.Listing)
	}{
		{
			name:        "add place activates the listing",
			requestType: requestDomain.TypeAddPlace,
			check:       func(t *testing.T, l listing.Listing) { assert.True(t, l.IsActive) },
		},
		{
			name:        "verification marks the listing verified",
			requestType: requestDomain.TypeVerifyEstablishment,
			check:       func(t *testing.T, l listing.Listing) { assert.True(t, l.IsVerified) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, store, _ := newFixture(t)
			ctx := context.Background()
			req := submitTyped(t, uc, tt.requestType, "listing", "LST-1")
			assert.Equal(t, tt.requestType, req.RequestType)

			res, err := uc.ApproveRequest(ctx, DecideInput{RequestID: req.RequestID, ReviewerID: "STAFF-1", Reason: "checked"})
			require.NoError(t, err)
			require.True(t, res.Success, res.Message)

			l := store.Listing("LST-1")
			tt.check(t, l)
			assert.Equal(t, "0100", l.Phone)

			decisions, err := uc.Decisions(ctx, req.RequestID)
			require.NoError(t, err)
			require.Len(t, decisions, 1)
			assert.Equal(t, requestDomain.DecisionApprove, decisions[0].Decision)
			assert.True(t, decisions[0].IsFinal)

			logs, err := uc.History(ctx, req.RequestID)
			require.NoError(t, err)
			require.Len(t, logs, 2)
			assert.Equal(t, "APPROVE: checked", logs[1].Message)
			assert.Equal(t, "decision "+decisions[0].DecisionID, logs[1].InternalNote)
		})
	}
}

func TestApproveRequest_UpgradePartner(t *testing.T) {
	uc, store, _ := newFixture(t)
	store.AddAccount(account.Account{AccountID: "ACC-NEW", Username: "newbie", Role: account.RoleTourist, AccountStatus: account.StatusPending})
	store.AddPartner(partner.Profile{ProfileID: "PRF-2", AccountID: "ACC-NEW", BusinessName: "Tihama Trips", Status: workflow.StatusPending})
	ctx := context.Background()

	req := submitTyped(t, uc, requestDomain.TypeUpgradePartner, "partner", "PRF-2")
	res, err := uc.ApproveRequest(ctx, DecideInput{RequestID: req.RequestID, ReviewerID: "STAFF-1"})
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)

	p := store.Partner("PRF-2")
	assert.Equal(t, workflow.StatusApproved, p.Status)
	require.NotNil(t, p.ReviewedBy)
	assert.Equal(t, "STAFF-1", *p.ReviewedBy)

	acc := store.Account("ACC-NEW")
	assert.Equal(t, account.RolePartner, acc.Role)
	assert.Equal(t, account.StatusActive, acc.AccountStatus)
	assert.True(t, acc.IsActive)

	records := store.AuditRecords()
	require.NotEmpty(t, records)
	last := records[len(records)-1]
	assert.Equal(t, auditDomain.ActionApproveRequest, last.Action)
	assert.Equal(t, account.RolePartner, last.NewValues["role"])

	// an already approved profile cannot be upgraded again
	again := submitTyped(t, uc, requestDomain.TypeUpgradePartner, "partner", "PRF-1")
	res, err = uc.ApproveRequest(ctx, DecideInput{RequestID: again.RequestID, ReviewerID: "STAFF-1"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "partner profile is already approved", res.Message)
}

func TestApproveRequest_UpgradeWithoutAccountRollsBack(t *testing.T) {
	uc, store, events := newFixture(t)
	store.AddPartner(partner.Profile{ProfileID: "PRF-3", AccountID: "ACC-GONE", BusinessName: "Shibam Stays", Status: workflow.StatusPending})
	ctx := context.Background()

	req := submitTyped(t, uc, requestDomain.TypeUpgradePartner, "partner", "PRF-3")
	auditCount := len(store.AuditRecords())
	sent := len(events.Events)

	res, err := uc.ApproveRequest(ctx, DecideInput{RequestID: req.RequestID, ReviewerID: "STAFF-1"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "linked account not found", res.Message)

	assert.Equal(t, workflow.StatusPending, store.Partner("PRF-3").Status)
	assert.Equal(t, workflow.StatusPending, store.Request(req.RequestID).Status)
	assert.Len(t, store.AuditRecords(), auditCount)
	assert.Len(t, events.Events, sent)

	decisions, err := uc.Decisions(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Empty(t, decisions)
	versions, err := uc.Versions(ctx, "partner", "PRF-3")
	require.NoError(t, err)
	assert.Empty(t, versions)
}
