package audit

import (
	"context"

	auditDomain "ibb-guide/internal/domain/audit"
	"ibb-guide/pkg/jsonb"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

type Writer struct {
	repo auditDomain.Repository
	log  *zap.Logger
}

// NewWriter: repo serves reads; writes go through the transaction-bound
// repository handed to Log.
func NewWriter(repo auditDomain.Repository, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{repo: repo, log: log}
}

// Log inserts the record through tx. The error is returned so the caller's
// transaction rolls back together with the decision it describes.
func (w *Writer) Log(ctx context.Context, tx auditDomain.Repository, e Entry) error {
	rec := &auditDomain.Record{
		ActorID:    e.ActorID,
		Action:     e.Action,
		TargetKind: e.TargetKind,
		TargetID:   e.TargetID,
		OldValues:  jsonb.Map(e.Old),
		NewValues:  jsonb.Map(e.New),
		Diff:       auditDomain.ComputeDiff(e.Old, e.New),
		Reason:     e.Reason,
		ClientIP:   e.Origin.IPPtr(),
		UserAgent:  e.Origin.UserAgent,
	}
	if err := tx.Create(ctx, rec); err != nil {
		w.log.Error("audit write failed",
			zap.String("action", e.Action),
			zap.String("target_kind", e.TargetKind),
			zap.String("target_id", e.TargetID),
			zap.Error(err))
		return errors.Wrap(err, "write audit record")
	}
	return nil
}

func (w *Writer) ListForTarget(ctx context.Context, targetKind, targetID string) ([]auditDomain.Record, error) {
	out, err := w.repo.ListForTarget(ctx, targetKind, targetID)
	if err != nil {
		return nil, errors.Wrap(err, "list audit records")
	}
	return out, nil
}
