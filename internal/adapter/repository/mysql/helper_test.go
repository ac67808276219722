package mysql

import (
	"testing"

	listingDomain "ibb-guide/internal/domain/listing"
	partnerDomain "ibb-guide/internal/domain/partner"
	"ibb-guide/internal/domain/workflow"
	infradb "ibb-guide/internal/infrastructure/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB returns a fresh in-memory database with every table migrated.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := infradb.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedListing(t *testing.T, db *gorm.DB, listingID string, status workflow.Status) *listingDomain.Listing {
	t.Helper()
	l := &listingDomain.Listing{
		ListingID:      listingID,
		Name:           "Old Souq Cafe",
		Description:    "coffee",
		ApprovalStatus: status,
	}
	if err := db.Create(l).Error; err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	return l
}

func seedPartner(t *testing.T, db *gorm.DB, profileID, accountID string) *partnerDomain.Profile {
	t.Helper()
	p := &partnerDomain.Profile{
		ProfileID:    profileID,
		AccountID:    accountID,
		BusinessName: "Sabaa Tours",
		Status:       workflow.StatusPending,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed partner: %v", err)
	}
	return p
}
