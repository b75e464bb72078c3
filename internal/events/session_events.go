package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the lifecycle events of an exam session
type EventType string

const (
	EventSessionStarted EventType = "session.started"
	EventSessionExpired EventType = "session.expired"
	EventSessionClosed  EventType = "session.closed"

	EventSubmissionSucceeded EventType = "submission.succeeded"
	EventSubmissionFailed    EventType = "submission.failed"
)

const (
	eventSource  = "exam-engine"
	eventVersion = "1.0"
)

// SessionEvent is the envelope published for every session event
type SessionEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	SessionID string                 `json:"session_id"`
	PaperID   uint                   `json:"paper_id"`
	Data      interface{}            `json:"data,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type SessionStartedEvent struct {
	PaperTitle      string `json:"paper_title"`
	QuestionCount   int    `json:"question_count"`
	DurationSeconds *int   `json:"duration_seconds,omitempty"`
}

type SubmissionSucceededEvent struct {
	SubmissionID uint   `json:"submission_id"`
	Mode         string `json:"mode"`
	AnswerCount  int    `json:"answer_count"`
}

type SubmissionFailedEvent struct {
	Mode    string `json:"mode"`
	Message string `json:"message"`
}

type SessionClosedEvent struct {
	State string `json:"state"`
}

// NewSessionEvent builds an event envelope with a fresh id
func NewSessionEvent(eventType EventType, sessionID string, paperID uint, data interface{}) *SessionEvent {
	return &SessionEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		SessionID: sessionID,
		PaperID:   paperID,
		Data:      data,
	}
}
