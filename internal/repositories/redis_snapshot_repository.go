package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/exam-engine/internal/cache"
	"github.com/SAP-F-2025/exam-engine/internal/models"
)

const snapshotKeyPrefix = "paper"

// RedisSnapshotRepository stores snapshots through the cache service with
// an expiry, mirroring browser local storage
type RedisSnapshotRepository struct {
	cache cache.CacheService
	ttl   time.Duration
}

func NewRedisSnapshotRepository(c cache.CacheService, ttl time.Duration) *RedisSnapshotRepository {
	return &RedisSnapshotRepository{cache: c, ttl: ttl}
}

// SnapshotKey is the storage key of a snapshot
func SnapshotKey(paperID, submissionID uint) string {
	return fmt.Sprintf("%s-%d-submission-%d", snapshotKeyPrefix, paperID, submissionID)
}

func (r *RedisSnapshotRepository) Save(ctx context.Context, snapshot *models.SubmissionSnapshot) error {
	if err := r.cache.Set(ctx, SnapshotKey(snapshot.PaperID, snapshot.SubmissionID), snapshot, r.ttl); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

func (r *RedisSnapshotRepository) Get(ctx context.Context, paperID, submissionID uint) (*models.SubmissionSnapshot, error) {
	var snapshot models.SubmissionSnapshot
	if err := r.cache.Get(ctx, SnapshotKey(paperID, submissionID), &snapshot); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return &snapshot, nil
}

func (r *RedisSnapshotRepository) Delete(ctx context.Context, paperID, submissionID uint) error {
	return r.cache.Delete(ctx, SnapshotKey(paperID, submissionID))
}
