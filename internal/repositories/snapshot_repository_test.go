package repositories

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-engine/internal/cache"
	"github.com/SAP-F-2025/exam-engine/internal/models"
)

// fakeCache is an in-process cache.CacheService with JSON round-tripping
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = raw
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	raw, ok := f.data[key]
	f.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func snapshotFixture(t *testing.T) *models.SubmissionSnapshot {
	t.Helper()
	snapshot, err := models.NewSubmissionSnapshot(4, 12, []models.AnswerEntry{
		{QuestionID: 10, Answer: "NG"},
		{QuestionID: 11, Answer: `["","C"]`},
	})
	require.NoError(t, err)
	return snapshot
}

func TestSnapshotRepositories(t *testing.T) {
	fc := newFakeCache()
	repos := map[string]SnapshotRepository{
		"memory": NewMemorySnapshotRepository(),
		"redis":  NewRedisSnapshotRepository(fc, time.Hour),
	}

	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := repo.Get(ctx, 4, 12)
			assert.True(t, IsNotFoundError(err))

			require.NoError(t, repo.Save(ctx, snapshotFixture(t)))

			got, err := repo.Get(ctx, 4, 12)
			require.NoError(t, err)
			assert.Equal(t, uint(4), got.PaperID)
			assert.Equal(t, uint(12), got.SubmissionID)
			assert.Equal(t, map[uint]string{10: "NG", 11: `["","C"]`}, got.AnswerMap())

			require.NoError(t, repo.Delete(ctx, 4, 12))
			_, err = repo.Get(ctx, 4, 12)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}

	assert.Equal(t, time.Hour, fc.ttls["paper-4-submission-12"])
}

func TestMemorySnapshotRepositoryCopiesAnswers(t *testing.T) {
	repo := NewMemorySnapshotRepository()
	snapshot := snapshotFixture(t)
	require.NoError(t, repo.Save(context.Background(), snapshot))

	snapshot.Answers[0] = 'x'

	got, err := repo.Get(context.Background(), 4, 12)
	require.NoError(t, err)
	assert.Len(t, got.AnswerMap(), 2)
}
