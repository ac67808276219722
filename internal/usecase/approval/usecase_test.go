package approval

import (
	"context"
	"errors"
	"testing"

	"ibb-guide/internal/domain/account"
	auditDomain "ibb-guide/internal/domain/audit"
	"ibb-guide/internal/domain/listing"
	"ibb-guide/internal/domain/notification"
	"ibb-guide/internal/domain/partner"
	changeDomain "ibb-guide/internal/domain/pendingchange"
	"ibb-guide/internal/domain/uow"
	"ibb-guide/internal/domain/workflow"
	auditUC "ibb-guide/internal/usecase/audit"
	changeUC "ibb-guide/internal/usecase/pendingchange"
	"ibb-guide/internal/testutil/eventmock"
	"ibb-guide/internal/testutil/listingmock"
	"ibb-guide/internal/testutil/storemock"
	"ibb-guide/internal/testutil/uowmock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ptr(s string) *string { return &s }

type fixture struct {
	uc       *Usecase
	governor *changeUC.Usecase
	store    *storemock.Store
	events   *eventmock.Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storemock.New()
	store.AddAccount(account.Account{AccountID: "STAFF-1", Username: "reviewer", IsStaff: true, IsActive: true, AccountStatus: account.StatusActive})
	store.AddAccount(account.Account{AccountID: "STAFF-OFF", Username: "former", IsStaff: true, IsActive: false})
	store.AddAccount(account.Account{AccountID: "ACC-P", Username: "partner", Role: account.RoleTourist, IsActive: false, AccountStatus: account.StatusPending})
	store.AddPartner(partner.Profile{ProfileID: "PRF-1", AccountID: "ACC-P", BusinessName: "Sabaa Tours", Status: workflow.StatusPending})
	store.AddListing(listing.Listing{ListingID: "LST-PEND", OwnerID: ptr("ACC-P"), Name: "Old Hotel", ApprovalStatus: workflow.StatusPending})
	store.AddListing(listing.Listing{ListingID: "LST-DRAFT", OwnerID: ptr("ACC-P"), Name: "Draft Cafe", ApprovalStatus: workflow.StatusDraft})
	store.AddListing(listing.Listing{ListingID: "LST-LIVE", OwnerID: ptr("ACC-P"), Name: "Old Hotel", ApprovalStatus: workflow.StatusApproved})

	repos := store.Repos()
	events := &eventmock.Dispatcher{}
	writer := auditUC.NewWriter(repos.Audit, zap.NewNop())
	gov := changeUC.NewUsecase(store.UoW(), repos.PendingChanges, writer, events, zap.NewNop())
	uc := NewUsecase(Deps{
		Accounts: repos.Accounts,
		Partners: repos.Partners,
		Listings: repos.Listings,
		Changes:  repos.PendingChanges,
		UoW:      store.UoW(),
		Audit:    writer,
		Events:   events,
		Governor: gov,
		Log:      zap.NewNop(),
	})
	return &fixture{uc: uc, governor: gov, store: store, events: events}
}

func TestDecide_Table(t *testing.T) {
	tests := []struct {
		name    string
		run     func(*Usecase, context.Context, DecisionInput) (*workflow.Result, error)
		in      DecisionInput
		success bool
		message string
		audits  int
	}{
		{
			name:    "approve pending partner",
			run:     (*Usecase).ApprovePartner,
			in:      DecisionInput{ReviewerID: "STAFF-1", TargetID: "PRF-1"},
			success: true,
			audits:  1,
		},
		{
			name:    "reject partner without reason",
			run:     (*Usecase).RejectPartner,
			in:      DecisionInput{ReviewerID: "STAFF-1", TargetID: "PRF-1"},
			message: "reason is required for REJECT",
		},
		{
			name:    "request info from partner",
			run:     (*Usecase).RequestInfoPartner,
			in:      DecisionInput{ReviewerID: "STAFF-1", TargetID: "PRF-1", Reason: "upload licence"},
			success: true,
			audits:  1,
		},
		{
			name:    "unknown partner",
			run:     (*Usecase).ApprovePartner,
			in:      DecisionInput{ReviewerID: "STAFF-1", TargetID: "PRF-404"},
			message: "partner not found",
		},
		{
			name:    "approve draft listing",
			run:     (*Usecase).ApproveListing,
			in:      DecisionInput{ReviewerID: "STAFF-1", TargetID: "LST-DRAFT"},
			success: true,
			audits:  1,
		},
		{
			name:    "approve finalized listing",
			run:     (*Usecase).ApproveListing,
			in:      DecisionInput{ReviewerID: "STAFF-1", TargetID: "LST-LIVE"},
			message: "already finalized (status: APPROVED)",
		},
		{
			name:    "reject pending listing",
			run:     (*Usecase).RejectListing,
			in:      DecisionInput{ReviewerID: "STAFF-1", TargetID: "LST-PEND", Reason: "duplicate"},
			success: true,
			audits:  1,
		},
		{
			name:    "unknown pending change",
			run:     (*Usecase).ApprovePendingChange,
			in:      DecisionInput{ReviewerID: "STAFF-1", TargetID: "CHG-404"},
			message: "pending change not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			res, err := tt.run(f.uc, context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.success, res.Success, res.Message)
			if tt.message != "" {
				assert.Equal(t, tt.message, res.Message)
			}
			assert.Len(t, f.store.AuditRecords(), tt.audits)
			if !tt.success {
				assert.Empty(t, f.events.Events)
			}
		})
	}
}

// Scenarios A and B: approve once, then approve the finalized entity again.
func TestApprovePartner_ThenAgain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	in := DecisionInput{ReviewerID: "STAFF-1", TargetID: "PRF-1"}

	res, err := f.uc.ApprovePartner(ctx, in)
	require.NoError(t, err)
	require.True(t, res.Success)

	p := f.store.Partner("PRF-1")
	assert.Equal(t, workflow.StatusApproved, p.Status)
	require.NotNil(t, p.ReviewedBy)
	assert.Equal(t, "STAFF-1", *p.ReviewedBy)
	assert.NotNil(t, p.ReviewedAt)

	acc := f.store.Account("ACC-P")
	assert.True(t, acc.IsActive)
	assert.Equal(t, account.StatusActive, acc.AccountStatus)
	assert.Equal(t, account.RolePartner, acc.Role)

	recs := f.store.AuditRecords()
	require.Len(t, recs, 1)
	assert.Equal(t, auditDomain.ActionApprove, recs[0].Action)
	assert.Equal(t, "PENDING", recs[0].OldValues["status"])
	assert.Equal(t, "APPROVED", recs[0].NewValues["status"])

	require.Len(t, f.events.Events, 1)
	assert.Equal(t, notification.EventPartnerApproved, f.events.Events[0].Name)
	assert.Equal(t, "ACC-P", f.events.Events[0].Audience.RecipientID)
	assert.NotEmpty(t, f.events.Events[0].EventID)

	again, err := f.uc.ApprovePartner(ctx, in)
	require.NoError(t, err)
	assert.False(t, again.Success)
	assert.Contains(t, again.Message, "already finalized")
	assert.Equal(t, workflow.StatusApproved, f.store.Partner("PRF-1").Status)
	assert.Len(t, f.store.AuditRecords(), 1)
	assert.Len(t, f.events.Events, 1)
}

func TestRejectPartner_MarksAccountRejected(t *testing.T) {
	f := newFixture(t)
	res, err := f.uc.RejectPartner(context.Background(), DecisionInput{ReviewerID: "STAFF-1", TargetID: "PRF-1", Reason: "documents expired"})
	require.NoError(t, err)
	require.True(t, res.Success)

	assert.Equal(t, "documents expired", f.store.Partner("PRF-1").RejectionReason)
	acc := f.store.Account("ACC-P")
	assert.Equal(t, account.StatusRejected, acc.AccountStatus)
	assert.False(t, acc.IsActive)
	assert.Equal(t, "documents expired", f.events.Events[0].Payload["reason"])
}

func TestDecide_Forbidden(t *testing.T) {
	f := newFixture(t)
	for _, reviewer := range []string{"ACC-P", "STAFF-OFF", "GHOST"} {
		_, err := f.uc.ApproveListing(context.Background(), DecisionInput{ReviewerID: reviewer, TargetID: "LST-PEND"})
		assert.ErrorIs(t, err, workflow.ErrForbidden, reviewer)
	}
	assert.Equal(t, workflow.StatusPending, f.store.Listing("LST-PEND").ApprovalStatus)
	assert.Empty(t, f.store.AuditRecords())
}

// Scenario C through the orchestrator.
func TestApprovePendingChange_AppliesValue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	req, err := f.governor.RequestChange(ctx, changeUC.RequestInput{UserID: "ACC-P", ListingID: "LST-LIVE", Field: "name", NewValue: "New Hotel"})
	require.NoError(t, err)
	change := req.Entity.(*changeDomain.Change)
	assert.Equal(t, "Old Hotel", f.store.Listing("LST-LIVE").Name)

	res, err := f.uc.ApprovePendingChange(ctx, DecisionInput{ReviewerID: "STAFF-1", TargetID: change.ChangeID})
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "New Hotel", f.store.Listing("LST-LIVE").Name)

	recs := f.store.AuditRecords()
	last := recs[len(recs)-1]
	assert.Equal(t, "pending_change", last.TargetKind)
	assert.Equal(t, "Old Hotel", last.OldValues["name"])

	last2 := f.events.Events[len(f.events.Events)-1]
	assert.Equal(t, notification.EventChangeApproved, last2.Name)
	assert.Equal(t, "ACC-P", last2.Audience.RecipientID)
}

func TestRejectPendingChange_LeavesListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	req, err := f.governor.RequestChange(ctx, changeUC.RequestInput{UserID: "ACC-P", ListingID: "LST-LIVE", Field: "description", NewValue: "rooftop"})
	require.NoError(t, err)
	change := req.Entity.(*changeDomain.Change)
	before := f.store.Listing("LST-LIVE")

	res, err := f.uc.RejectPendingChange(ctx, DecisionInput{ReviewerID: "STAFF-1", TargetID: change.ChangeID, Reason: "no rooftop"})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, before, f.store.Listing("LST-LIVE"))
	assert.Equal(t, "no rooftop", f.store.Change(change.ChangeID).ReviewNote)
}

func TestPendingChange_RequesterCannotDecide(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	req, err := f.governor.RequestChange(ctx, changeUC.RequestInput{UserID: "OWNER-1", ListingID: "LST-LIVE", Field: "name", NewValue: "Hijacked Hotel"})
	require.NoError(t, err)
	change := req.Entity.(*changeDomain.Change)
	audits := len(f.store.AuditRecords())

	for _, actor := range []string{"OWNER-1", "ACC-P", "STAFF-OFF"} {
		_, err = f.uc.ApprovePendingChange(ctx, DecisionInput{ReviewerID: actor, TargetID: change.ChangeID})
		assert.ErrorIs(t, err, workflow.ErrForbidden, actor)
		_, err = f.uc.RejectPendingChange(ctx, DecisionInput{ReviewerID: actor, TargetID: change.ChangeID, Reason: "mine"})
		assert.ErrorIs(t, err, workflow.ErrForbidden, actor)
	}
	assert.Equal(t, "Old Hotel", f.store.Listing("LST-LIVE").Name)
	assert.Equal(t, workflow.StatusPending, f.store.Change(change.ChangeID).Status)
	assert.Len(t, f.store.AuditRecords(), audits)
}

func TestPendingChange_DecidedOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	req, err := f.governor.RequestChange(ctx, changeUC.RequestInput{UserID: "ACC-P", ListingID: "LST-LIVE", Field: "name", NewValue: "New Hotel"})
	require.NoError(t, err)
	change := req.Entity.(*changeDomain.Change)

	res, err := f.uc.ApprovePendingChange(ctx, DecisionInput{ReviewerID: "STAFF-1", TargetID: change.ChangeID})
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	stored := f.store.Change(change.ChangeID)
	assert.Nil(t, stored.ActiveKey)
	require.NotNil(t, stored.ReviewedBy)
	assert.Equal(t, "STAFF-1", *stored.ReviewedBy)
	recs := f.store.AuditRecords()
	assert.Equal(t, auditDomain.ActionApprove, recs[len(recs)-1].Action)

	again, err := f.uc.RejectPendingChange(ctx, DecisionInput{ReviewerID: "STAFF-1", TargetID: change.ChangeID, Reason: "late"})
	require.NoError(t, err)
	assert.False(t, again.Success)
	assert.Contains(t, again.Message, "already finalized")
	assert.Equal(t, "New Hotel", f.store.Listing("LST-LIVE").Name)
	assert.Len(t, f.store.AuditRecords(), len(recs))

	// the released key lets a fresh request open a new row
	next, err := f.governor.RequestChange(ctx, changeUC.RequestInput{UserID: "ACC-P", ListingID: "LST-LIVE", Field: "name", NewValue: "Newer Hotel"})
	require.NoError(t, err)
	require.True(t, next.Success)
	assert.NotEqual(t, change.ChangeID, next.Entity.(*changeDomain.Change).ChangeID)
}

func TestPendingChange_AuditFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	req, err := f.governor.RequestChange(ctx, changeUC.RequestInput{UserID: "ACC-P", ListingID: "LST-LIVE", Field: "name", NewValue: "New Hotel"})
	require.NoError(t, err)
	change := req.Entity.(*changeDomain.Change)
	emitted := len(f.events.Events)

	boom := errors.New("audit table locked")
	f.store.AuditErr = boom
	_, err = f.uc.ApprovePendingChange(ctx, DecisionInput{ReviewerID: "STAFF-1", TargetID: change.ChangeID})
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, "Old Hotel", f.store.Listing("LST-LIVE").Name)
	assert.Equal(t, workflow.StatusPending, f.store.Change(change.ChangeID).Status)
	assert.Len(t, f.events.Events, emitted)
}

func TestDecide_LostRaceIsNotPending(t *testing.T) {
	f := newFixture(t)
	repos := f.store.Repos()
	// another reviewer commits between our read and our conditional write
	repos.Listings = &listingmock.Repo{
		GetByListingIDFn: repos.Listings.GetByListingID,
		UpdateFn: func(context.Context, *listing.Listing, workflow.Status) error {
			return workflow.ErrStaleState
		},
	}
	f.uc.uow = uowmock.Passthrough(repos)

	res, err := f.uc.ApproveListing(context.Background(), DecisionInput{ReviewerID: "STAFF-1", TargetID: "LST-PEND"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, workflow.MsgNotPending, res.Message)
	assert.Empty(t, f.events.Events)
}

func TestDecide_InfrastructureErrorPropagates(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("connection refused")
	f.uc.uow = uowmock.New().WithWithinTx(func(context.Context, func(uow.Repos) error) error { return boom })

	res, err := f.uc.ApproveListing(context.Background(), DecisionInput{ReviewerID: "STAFF-1", TargetID: "LST-PEND"})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, boom)
}

func TestDecide_AuditFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.store.AuditErr = errors.New("audit insert failed")

	_, err := f.uc.ApprovePartner(context.Background(), DecisionInput{ReviewerID: "STAFF-1", TargetID: "PRF-1"})
	require.Error(t, err)
	assert.Equal(t, workflow.StatusPending, f.store.Partner("PRF-1").Status)
	assert.False(t, f.store.Account("ACC-P").IsActive)
	assert.Empty(t, f.events.Events)
}

func TestPendingCounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.governor.RequestChange(ctx, changeUC.RequestInput{UserID: "ACC-P", ListingID: "LST-LIVE", Field: "name", NewValue: "New Hotel"})
	require.NoError(t, err)

	c, err := f.uc.PendingCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Partners: 1, Listings: 1, Changes: 1}, c)
}
