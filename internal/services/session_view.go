package services

import (
	"github.com/SAP-F-2025/exam-engine/internal/clock"
	"github.com/SAP-F-2025/exam-engine/internal/codec"
	"github.com/SAP-F-2025/exam-engine/internal/scanner"
)

// SessionView is the renderable state of a session
type SessionView struct {
	ID               string         `json:"id"`
	PaperID          uint           `json:"paper_id"`
	Title            string         `json:"title,omitempty"`
	ReferenceText    string         `json:"reference_text,omitempty"`
	State            SessionState   `json:"state"`
	ReadOnly         bool           `json:"read_only"`
	Timed            bool           `json:"timed"`
	RemainingSeconds *int           `json:"remaining_seconds,omitempty"`
	Remaining        string         `json:"remaining,omitempty"`
	Urgency          clock.Urgency  `json:"urgency,omitempty"`
	Expired          bool           `json:"expired"`
	SubmissionID     uint           `json:"submission_id,omitempty"`
	Error            string         `json:"error,omitempty"`
	Questions        []QuestionView `json:"questions"`
}

// QuestionView is one question's derived template with its current answer
type QuestionView struct {
	scanner.Template
	Answer codec.Value `json:"answer"`
}

// View renders the session. Templates are derived from the current question
// text on every call.
func (s *ExamSession) View() *SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := &SessionView{
		ID:           s.id,
		PaperID:      s.paperID,
		State:        s.state,
		ReadOnly:     s.state.ReadOnly(),
		SubmissionID: s.submissionID,
		Error:        s.lastError,
		Questions:    []QuestionView{},
	}

	if s.clock != nil {
		if remaining, timed := s.clock.Remaining(); timed {
			view.Timed = true
			view.RemainingSeconds = &remaining
			view.Remaining = clock.FormatRemaining(remaining)
			view.Urgency = clock.UrgencyOf(remaining)
			view.Expired = s.clock.Expired()
		}
	}

	if s.paper == nil {
		return view
	}
	view.Title = s.paper.Title
	view.ReferenceText = s.paper.ReferenceText
	view.Questions = make([]QuestionView, 0, len(s.paper.Questions))
	for _, q := range s.paper.Questions {
		tpl := scanner.Scan(q)
		view.Questions = append(view.Questions, QuestionView{
			Template: tpl,
			Answer:   s.answerLocked(q, tpl),
		})
	}
	return view
}
