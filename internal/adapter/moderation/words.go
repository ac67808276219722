package moderation

import (
	"context"

	domain "ibb-guide/internal/domain/moderation"

	"go.uber.org/zap"
)

var _ domain.WordRepository = (*InvalidatingRepository)(nil)

type invalidator interface {
	Invalidate(ctx context.Context) error
}

// InvalidatingRepository drops the classifier cache after every write to
// the banned word table.
type InvalidatingRepository struct {
	domain.WordRepository
	cache invalidator
	log   *zap.Logger
}

func NewInvalidatingRepository(repo domain.WordRepository, c invalidator, log *zap.Logger) *InvalidatingRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &InvalidatingRepository{WordRepository: repo, cache: c, log: log}
}

func (r *InvalidatingRepository) Create(ctx context.Context, w *domain.BannedWord) error {
	if err := r.WordRepository.Create(ctx, w); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *InvalidatingRepository) Deactivate(ctx context.Context, id uint64) error {
	if err := r.WordRepository.Deactivate(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *InvalidatingRepository) invalidate(ctx context.Context) {
	if err := r.cache.Invalidate(ctx); err != nil {
		r.log.Warn("banned word cache not invalidated", zap.Error(err))
	}
}
