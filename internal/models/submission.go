package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// AnswerEntry is one encoded answer on the wire.
type AnswerEntry struct {
	QuestionID uint   `json:"question_id"`
	Answer     string `json:"answer"`
}

type SubmissionRequest struct {
	PaperID uint          `json:"-"`
	Answers []AnswerEntry `json:"answers"`
}

type SubmissionResult struct {
	SubmissionID uint   `json:"submission_id"`
	Message      string `json:"message,omitempty"`
}

// SubmissionSnapshot is the locally persisted answer set of a successful
// submission, keyed by (PaperID, SubmissionID).
type SubmissionSnapshot struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	PaperID      uint           `json:"paper_id" gorm:"not null;uniqueIndex:idx_snapshot_key"`
	SubmissionID uint           `json:"submission_id" gorm:"not null;uniqueIndex:idx_snapshot_key"`
	Answers      datatypes.JSON `json:"answers" gorm:"type:jsonb"` // map[question_id]encoded
	CreatedAt    time.Time      `json:"created_at"`
}

func (SubmissionSnapshot) TableName() string {
	return "submission_snapshots"
}

// NewSubmissionSnapshot builds a snapshot from an assembled answer set.
func NewSubmissionSnapshot(paperID, submissionID uint, answers []AnswerEntry) (*SubmissionSnapshot, error) {
	m := make(map[string]string, len(answers))
	for _, a := range answers {
		m[fmt.Sprint(a.QuestionID)] = a.Answer
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot answers: %w", err)
	}
	return &SubmissionSnapshot{
		PaperID:      paperID,
		SubmissionID: submissionID,
		Answers:      datatypes.JSON(raw),
		CreatedAt:    time.Now(),
	}, nil
}

// AnswerMap decodes the stored answers. A corrupt payload yields an empty map.
func (s *SubmissionSnapshot) AnswerMap() map[uint]string {
	out := make(map[uint]string)
	if len(s.Answers) == 0 {
		return out
	}
	var m map[string]string
	if err := json.Unmarshal(s.Answers, &m); err != nil {
		return out
	}
	for k, v := range m {
		var id uint
		if _, err := fmt.Sscan(k, &id); err != nil {
			continue
		}
		out[id] = v
	}
	return out
}
