// Package sqlite stores submission snapshots in a local SQLite file, for
// single-node deployments and offline recovery.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/exam-engine/internal/models"
	"github.com/SAP-F-2025/exam-engine/internal/repositories"
	"gorm.io/datatypes"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS submission_snapshots (
  paper_id      INTEGER NOT NULL,
  submission_id INTEGER NOT NULL,
  answers       TEXT NOT NULL,
  created_at    INTEGER NOT NULL,
  PRIMARY KEY (paper_id, submission_id)
);
`

type SnapshotSQLite struct {
	db *sql.DB
}

// Open opens the database at dsn, applies pragmas and ensures the schema.
func Open(ctx context.Context, dsn string) (*SnapshotSQLite, error) {
	if dsn == "" {
		dsn = "file:exam-engine.db?cache=shared&mode=rwc"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &SnapshotSQLite{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func (s *SnapshotSQLite) Close() error {
	return s.db.Close()
}

func (s *SnapshotSQLite) Save(ctx context.Context, snapshot *models.SubmissionSnapshot) error {
	createdAt := snapshot.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO submission_snapshots (paper_id, submission_id, answers, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (paper_id, submission_id) DO UPDATE SET answers = excluded.answers, created_at = excluded.created_at`,
		snapshot.PaperID, snapshot.SubmissionID, string(snapshot.Answers), createdAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotSQLite) Get(ctx context.Context, paperID, submissionID uint) (*models.SubmissionSnapshot, error) {
	var (
		answers   string
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT answers, created_at FROM submission_snapshots
WHERE paper_id = ? AND submission_id = ?`, paperID, submissionID).Scan(&answers, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	return &models.SubmissionSnapshot{
		PaperID:      paperID,
		SubmissionID: submissionID,
		Answers:      datatypes.JSON(answers),
		CreatedAt:    time.UnixMilli(createdAt),
	}, nil
}

func (s *SnapshotSQLite) Delete(ctx context.Context, paperID, submissionID uint) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM submission_snapshots WHERE paper_id = ? AND submission_id = ?`, paperID, submissionID)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

var _ repositories.SnapshotRepository = (*SnapshotSQLite)(nil)
