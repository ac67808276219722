package approval

import (
	"context"
	"testing"

	"ibb-guide/internal/adapter/repository/mysql"
	"ibb-guide/internal/domain/account"
	auditDomain "ibb-guide/internal/domain/audit"
	"ibb-guide/internal/domain/partner"
	"ibb-guide/internal/domain/workflow"
	"ibb-guide/internal/domain/uow"
	infradb "ibb-guide/internal/infrastructure/db"
	"ibb-guide/internal/testutil/eventmock"
	auditUC "ibb-guide/internal/usecase/audit"
	changeUC "ibb-guide/internal/usecase/pendingchange"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, infradb.Migrate(db))
	return db
}

func newGormUsecase(db *gorm.DB, events *eventmock.Dispatcher) *Usecase {
	changes := mysql.NewPendingChangeRepository(db)
	tx := mysql.NewGormUoW(db)
	writer := auditUC.NewWriter(mysql.NewAuditRepository(db), zap.NewNop())
	return NewUsecase(Deps{
		Accounts: mysql.NewAccountRepository(db),
		Partners: mysql.NewPartnerRepository(db),
		Listings: mysql.NewListingRepository(db),
		Changes:  changes,
		UoW:      tx,
		Audit:    writer,
		Events:   events,
		Governor: changeUC.NewUsecase(tx, changes, writer, events, zap.NewNop()),
		Log:      zap.NewNop(),
	})
}

func TestApprovePartner_GormCommitsTogether(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, db.Create(&account.Account{AccountID: "STAFF-1", Username: "staff", IsStaff: true, IsActive: true, AccountStatus: account.StatusActive}).Error)
	require.NoError(t, db.Create(&account.Account{AccountID: "ACC-P", Username: "partner", AccountStatus: account.StatusPending}).Error)
	require.NoError(t, db.Model(&account.Account{}).Where("account_id = ?", "ACC-P").Update("is_active", false).Error)
	require.NoError(t, db.Create(&partner.Profile{ProfileID: "PRF-1", AccountID: "ACC-P", BusinessName: "Sabaa", Status: workflow.StatusPending}).Error)

	events := &eventmock.Dispatcher{}
	uc := newGormUsecase(db, events)

	res, err := uc.ApprovePartner(ctx, DecisionInput{ReviewerID: "STAFF-1", TargetID: "PRF-1"})
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)

	var p partner.Profile
	require.NoError(t, db.Where("profile_id = ?", "PRF-1").First(&p).Error)
	assert.Equal(t, workflow.StatusApproved, p.Status)
	assert.Equal(t, uint64(1), p.Version)

	var a account.Account
	require.NoError(t, db.Where("account_id = ?", "ACC-P").First(&a).Error)
	assert.True(t, a.IsActive)
	assert.Equal(t, account.RolePartner, a.Role)

	var n int64
	require.NoError(t, db.Model(&auditDomain.Record{}).Where("target_id = ?", "PRF-1").Count(&n).Error)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, []string{"PARTNER_APPROVED"}, events.Names())
}

func TestApprovePartner_GormRollsBackOnMissingAccount(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, db.Create(&account.Account{AccountID: "STAFF-1", Username: "staff", IsStaff: true, IsActive: true}).Error)
	require.NoError(t, db.Create(&partner.Profile{ProfileID: "PRF-2", AccountID: "ACC-GONE", BusinessName: "Orphan", Status: workflow.StatusPending}).Error)

	events := &eventmock.Dispatcher{}
	uc := newGormUsecase(db, events)

	res, err := uc.ApprovePartner(ctx, DecisionInput{ReviewerID: "STAFF-1", TargetID: "PRF-2"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "linked account not found", res.Message)

	var p partner.Profile
	require.NoError(t, db.Where("profile_id = ?", "PRF-2").First(&p).Error)
	assert.Equal(t, workflow.StatusPending, p.Status)

	var n int64
	require.NoError(t, db.Model(&auditDomain.Record{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Empty(t, events.Events)
}

// staleProfiles hands every caller the same profile as it was read before
// any decision ran.
type staleProfiles struct {
	partner.Repository
	loaded partner.Profile
}

func (s staleProfiles) GetByProfileID(context.Context, string) (*partner.Profile, error) {
	p := s.loaded
	return &p, nil
}

type staleUoW struct {
	*mysql.GormUoW
	loaded partner.Profile
}

func (u staleUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.GormUoW.WithinTx(ctx, func(r uow.Repos) error {
		r.Partners = staleProfiles{Repository: r.Partners, loaded: u.loaded}
		return fn(r)
	})
}

func TestDecide_GormStaleLoadsOneWins(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, db.Create(&account.Account{AccountID: "STAFF-1", Username: "staff", IsStaff: true, IsActive: true, AccountStatus: account.StatusActive}).Error)
	require.NoError(t, db.Create(&account.Account{AccountID: "STAFF-2", Username: "staff2", IsStaff: true, IsActive: true, AccountStatus: account.StatusActive}).Error)
	require.NoError(t, db.Create(&account.Account{AccountID: "ACC-P", Username: "partner", AccountStatus: account.StatusPending}).Error)
	require.NoError(t, db.Create(&partner.Profile{ProfileID: "PRF-1", AccountID: "ACC-P", BusinessName: "Sabaa", Status: workflow.StatusPending}).Error)

	loaded, err := mysql.NewPartnerRepository(db).GetByProfileID(ctx, "PRF-1")
	require.NoError(t, err)

	events := &eventmock.Dispatcher{}
	uc := newGormUsecase(db, events)
	uc.uow = staleUoW{GormUoW: mysql.NewGormUoW(db), loaded: *loaded}

	first, err := uc.Decide(ctx, workflow.KindPartner, workflow.ActionApprove, DecisionInput{ReviewerID: "STAFF-1", TargetID: "PRF-1"})
	require.NoError(t, err)
	second, err := uc.Decide(ctx, workflow.KindPartner, workflow.ActionReject, DecisionInput{ReviewerID: "STAFF-2", TargetID: "PRF-1", Reason: "incomplete"})
	require.NoError(t, err)

	assert.True(t, first.Success, first.Message)
	assert.False(t, second.Success)
	assert.Equal(t, workflow.MsgNotPending, second.Message)

	var p partner.Profile
	require.NoError(t, db.Where("profile_id = ?", "PRF-1").First(&p).Error)
	assert.Equal(t, workflow.StatusApproved, p.Status)
	assert.Empty(t, p.RejectionReason)

	var n int64
	require.NoError(t, db.Model(&auditDomain.Record{}).Where("target_id = ?", "PRF-1").Count(&n).Error)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, []string{"PARTNER_APPROVED"}, events.Names())
}
