package mysql

import (
	"context"

	"github.com/go-faster/errors"
	"gorm.io/gorm"

	"ibb-guide/internal/domain/workflow"
)

// casUpdate writes cols only while the row still carries the expected status
// and version, then bumps the version. Zero matched rows means another
// writer got there first.
func casUpdate(ctx context.Context, db *gorm.DB, model any, id uint64, statusCol string, expected workflow.Status, version uint64, cols map[string]any) error {
	cols["version"] = version + 1
	res := db.WithContext(ctx).
		Model(model).
		Where("id = ? AND "+statusCol+" = ? AND version = ?", id, expected, version).
		Updates(cols)
	if res.Error != nil {
		return errors.Wrap(res.Error, "conditional update")
	}
	if res.RowsAffected == 0 {
		return workflow.ErrStaleState
	}
	return nil
}

// notFound maps gorm's missing-row error onto a domain sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
