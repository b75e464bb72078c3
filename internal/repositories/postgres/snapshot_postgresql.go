package postgres

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/exam-engine/internal/models"
	"github.com/SAP-F-2025/exam-engine/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SnapshotPostgreSQL struct {
	db *gorm.DB
}

func NewSnapshotPostgreSQL(db *gorm.DB) repositories.SnapshotRepository {
	return &SnapshotPostgreSQL{db: db}
}

// Migrate creates the snapshot table and its unique key
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.SubmissionSnapshot{})
}

func (s SnapshotPostgreSQL) Save(ctx context.Context, snapshot *models.SubmissionSnapshot) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "paper_id"}, {Name: "submission_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"answers", "created_at"}),
		}).
		Create(snapshot).Error
}

func (s SnapshotPostgreSQL) Get(ctx context.Context, paperID, submissionID uint) (*models.SubmissionSnapshot, error) {
	var snapshot models.SubmissionSnapshot
	if err := s.db.WithContext(ctx).
		Where("paper_id = ? AND submission_id = ?", paperID, submissionID).
		First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}

	return &snapshot, nil
}

func (s SnapshotPostgreSQL) Delete(ctx context.Context, paperID, submissionID uint) error {
	return s.db.WithContext(ctx).
		Where("paper_id = ? AND submission_id = ?", paperID, submissionID).
		Delete(&models.SubmissionSnapshot{}).Error
}
