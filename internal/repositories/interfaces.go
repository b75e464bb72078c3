package repositories

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/exam-engine/internal/models"
)

var ErrNotFound = errors.New("record not found")

// SnapshotRepository persists the answer set of submitted attempts keyed by
// (paper id, submission id). Saving the same key twice replaces the answers.
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot *models.SubmissionSnapshot) error
	Get(ctx context.Context, paperID, submissionID uint) (*models.SubmissionSnapshot, error)
	Delete(ctx context.Context, paperID, submissionID uint) error
}

// IsNotFoundError reports whether err means the snapshot does not exist
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
