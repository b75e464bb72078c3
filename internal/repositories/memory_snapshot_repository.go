package repositories

import (
	"context"
	"sync"

	"github.com/SAP-F-2025/exam-engine/internal/models"
)

type snapshotKey struct {
	paperID      uint
	submissionID uint
}

// MemorySnapshotRepository keeps snapshots in process memory
type MemorySnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[snapshotKey]models.SubmissionSnapshot
}

func NewMemorySnapshotRepository() *MemorySnapshotRepository {
	return &MemorySnapshotRepository{
		snapshots: make(map[snapshotKey]models.SubmissionSnapshot),
	}
}

func (r *MemorySnapshotRepository) Save(ctx context.Context, snapshot *models.SubmissionSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *snapshot
	stored.Answers = append([]byte(nil), snapshot.Answers...)
	r.snapshots[snapshotKey{snapshot.PaperID, snapshot.SubmissionID}] = stored
	return nil
}

func (r *MemorySnapshotRepository) Get(ctx context.Context, paperID, submissionID uint) (*models.SubmissionSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, ok := r.snapshots[snapshotKey{paperID, submissionID}]
	if !ok {
		return nil, ErrNotFound
	}
	return &snapshot, nil
}

func (r *MemorySnapshotRepository) Delete(ctx context.Context, paperID, submissionID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.snapshots, snapshotKey{paperID, submissionID})
	return nil
}
