package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"evamed-backend/internal/repository"
	"evamed-backend/utilities"
)

// CleanupService purges abandoned evaluations.
type CleanupService interface {
	// PurgeStale deletes pending and in-progress evaluations not touched
	// since the stale window, with their responses. It returns how many
	// evaluations were removed.
	PurgeStale(ctx context.Context) (int64, error)
	// Run calls PurgeStale every interval until ctx is done.
	Run(ctx context.Context, interval time.Duration)
}

type cleanupService struct {
	store      *repository.Store
	staleAfter time.Duration
	now        func() time.Time
}

func NewCleanupService(store *repository.Store, staleAfter time.Duration) CleanupService {
	return &cleanupService{
		store:      store,
		staleAfter: staleAfter,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *cleanupService) PurgeStale(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.staleAfter)
	var purged int64
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		ids, err := tx.Evaluations.StaleIDs(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("find stale evaluations: %w", err)
		}
		purged, err = tx.Evaluations.DeleteByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("delete stale evaluations: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		utilities.L().Info("stale evaluations purged", zap.Int64("count", purged), zap.Time("cutoff", cutoff))
	}
	return purged, nil
}

func (s *cleanupService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PurgeStale(ctx); err != nil && ctx.Err() == nil {
				utilities.L().Error("cleanup failed", zap.Error(err))
			}
		}
	}
}
