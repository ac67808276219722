package db

import (
	"time"

	"ibb-guide/internal/domain/account"
	"ibb-guide/internal/domain/audit"
	"ibb-guide/internal/domain/listing"
	"ibb-guide/internal/domain/moderation"
	"ibb-guide/internal/domain/partner"
	"ibb-guide/internal/domain/pendingchange"
	"ibb-guide/internal/domain/request"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func OpenGorm(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := OpenGormWithDialector(mysql.Open(dsn))
	if err != nil {
		return nil, err
	}
	if log != nil {
		log.Info("gorm: connected")
	}
	return db, nil
}

// OpenGormWithDialector opens and pings a pool over any dialector.
func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Warn),
		DisableAutomaticPing: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "open gorm")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "sql db")
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping")
	}
	return db, nil
}

// Models lists every table owned by the service.
func Models() []any {
	return []any{
		&account.Account{},
		&partner.Profile{},
		&listing.Category{},
		&listing.Listing{},
		&pendingchange.Change{},
		&request.Request{},
		&request.StatusLog{},
		&request.EntityVersion{},
		&request.Decision{},
		&audit.Record{},
		&moderation.BannedWord{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return errors.Wrap(err, "auto-migrate")
	}
	return nil
}
