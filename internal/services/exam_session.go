package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/exam-engine/internal/clock"
	"github.com/SAP-F-2025/exam-engine/internal/codec"
	"github.com/SAP-F-2025/exam-engine/internal/events"
	"github.com/SAP-F-2025/exam-engine/internal/models"
	"github.com/SAP-F-2025/exam-engine/internal/repositories"
	"github.com/SAP-F-2025/exam-engine/internal/scanner"
	"github.com/SAP-F-2025/exam-engine/internal/submission"
	"github.com/SAP-F-2025/exam-engine/internal/validator"
)

// SessionState is the lifecycle state of an exam session
type SessionState string

const (
	SessionLoading    SessionState = "loading"
	SessionActive     SessionState = "active"
	SessionSubmitting SessionState = "submitting"
	SessionSubmitted  SessionState = "submitted"
	SessionReviewOnly SessionState = "review_only"
	SessionLoadFailed SessionState = "load_failed"
)

// ReadOnly reports whether answers are rendered from the persisted snapshot
func (s SessionState) ReadOnly() bool {
	return s == SessionSubmitted || s == SessionReviewOnly
}

const defaultSubmitTimeout = 30 * time.Second

// PaperProvider fetches papers for taking
type PaperProvider interface {
	GetPaper(ctx context.Context, paperID uint) (*models.Paper, error)
}

// SessionDeps are the collaborators shared by all sessions
type SessionDeps struct {
	Provider      PaperProvider
	Submitter     submission.Service
	Snapshots     repositories.SnapshotRepository
	Publisher     events.EventPublisher
	Validator     *validator.Validator
	Logger        *slog.Logger
	SubmitTimeout time.Duration
	ClockOptions  []clock.Option
}

// ExamSession is one learner attempt at one paper. It owns the paper, the
// in-progress answers, the countdown and the submission guard.
type ExamSession struct {
	id      string
	paperID uint
	deps    SessionDeps
	logger  *slog.Logger

	mu           sync.RWMutex
	state        SessionState
	paper        *models.Paper
	answers      map[uint]codec.Value
	stored       map[uint]string
	clock        *clock.Clock
	coordinator  *submission.Coordinator
	lastError    string
	submissionID uint
	closed       bool
	lastActivity time.Time
}

func NewExamSession(paperID uint, deps SessionDeps) *ExamSession {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.SubmitTimeout <= 0 {
		deps.SubmitTimeout = defaultSubmitTimeout
	}
	id := uuid.NewString()
	return &ExamSession{
		id:           id,
		paperID:      paperID,
		deps:         deps,
		logger:       deps.Logger.With("session_id", id, "paper_id", paperID),
		state:        SessionLoading,
		answers:      make(map[uint]codec.Value),
		lastActivity: time.Now(),
	}
}

func (s *ExamSession) ID() string    { return s.id }
func (s *ExamSession) PaperID() uint { return s.paperID }

func (s *ExamSession) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Load fetches the paper and activates the session, starting the clock when
// the paper is timed. A failure is terminal.
func (s *ExamSession) Load(ctx context.Context) error {
	s.logger.Info("Starting exam session")

	paper, err := s.fetchPaper(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state != SessionLoading {
		s.mu.Unlock()
		return fmt.Errorf("%w: load called in state %s", ErrConflict, s.state)
	}
	s.paper = paper
	s.clock = clock.New(paper.DurationSeconds, s.onExpire, s.deps.ClockOptions...)
	s.coordinator = submission.NewCoordinator(paper, s.deps.Submitter, s.deps.Snapshots, s, s.logger,
		submission.WithDispatchHook(s.onDispatch))
	s.state = SessionActive
	s.clock.Start()
	s.mu.Unlock()

	s.logger.Info("Exam session started successfully",
		"questions", len(paper.Questions),
		"duration_seconds", paper.DurationSeconds)
	s.publish(events.EventSessionStarted, events.SessionStartedEvent{
		PaperTitle:      paper.Title,
		QuestionCount:   len(paper.Questions),
		DurationSeconds: paper.DurationSeconds,
	})
	return nil
}

// LoadReview opens the session read-only from the snapshot persisted for
// submissionID. Only the question texts are fetched again.
func (s *ExamSession) LoadReview(ctx context.Context, submissionID uint) error {
	if s.deps.Snapshots == nil {
		s.fail(ErrSnapshotNotFound)
		return ErrSnapshotNotFound
	}
	snapshot, err := s.deps.Snapshots.Get(ctx, s.paperID, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			err = ErrSnapshotNotFound
		} else {
			err = fmt.Errorf("failed to read snapshot: %w", err)
		}
		s.fail(err)
		return err
	}

	paper, err := s.fetchPaper(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.paper = paper
	s.stored = snapshot.AnswerMap()
	s.submissionID = submissionID
	s.state = SessionReviewOnly
	s.logger.Info("Opened submitted attempt for review", "submission_id", submissionID)
	return nil
}

func (s *ExamSession) fetchPaper(ctx context.Context) (*models.Paper, error) {
	paper, err := s.deps.Provider.GetPaper(ctx, s.paperID)
	if err == nil && paper == nil {
		err = ErrNotFound
	}
	if err == nil && s.deps.Validator != nil {
		err = s.deps.Validator.Validate(paper)
	}
	if err != nil {
		loadErr := &LoadError{PaperID: s.paperID, Err: err}
		s.fail(loadErr)
		s.logger.Error("Failed to load paper", "error", err)
		return nil, loadErr
	}
	for i := range paper.Questions {
		scanner.Normalize(&paper.Questions[i])
	}
	return paper, nil
}

func (s *ExamSession) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionLoadFailed
	s.lastError = err.Error()
}

// SetAnswer replaces the answer of one question. The value must fit the
// question's current structure.
func (s *ExamSession) SetAnswer(questionID uint, v codec.Value) (*QuestionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.state != SessionActive {
		return nil, ErrSessionNotEditable
	}
	q, ok := s.paper.Question(questionID)
	if !ok {
		return nil, ErrQuestionNotFound
	}

	tpl := scanner.Scan(*q)
	if err := codec.CheckShape(tpl.Type, v, tpl.SlotCount, optionCount(*q, tpl)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnswerShape, err)
	}

	stored := codec.Value{Text: v.Text}
	if tpl.Type.IsArray() {
		stored.Slots = codec.Fit(v.Slots, tpl.SlotCount)
	}
	s.answers[questionID] = stored
	s.lastActivity = time.Now()

	return &QuestionView{Template: tpl, Answer: stored}, nil
}

func optionCount(q models.Question, tpl scanner.Template) int {
	switch tpl.Type {
	case models.QuestionTypeMultipleChoice:
		return len(q.Options)
	case models.QuestionTypeMatching:
		if tpl.Matching != nil {
			return len(tpl.Matching.Options)
		}
	}
	return 0
}

// Value implements submission.AnswerSource.
func (s *ExamSession) Value(questionID uint) (codec.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.answers[questionID]
	if !ok {
		return codec.Value{}, false
	}
	return codec.Value{Text: v.Text, Slots: append([]string(nil), v.Slots...)}, true
}

// Answer returns the decoded answer of a question. Read-only sessions
// decode the persisted snapshot.
func (s *ExamSession) Answer(questionID uint) (codec.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.paper == nil {
		return codec.Value{}, ErrSessionNotActive
	}
	q, ok := s.paper.Question(questionID)
	if !ok {
		return codec.Value{}, ErrQuestionNotFound
	}
	return s.answerLocked(*q, scanner.Scan(*q)), nil
}

func (s *ExamSession) answerLocked(q models.Question, tpl scanner.Template) codec.Value {
	if s.state.ReadOnly() {
		return codec.Decode(tpl.Type, s.stored[q.ID], tpl.SlotCount)
	}
	if v, ok := s.answers[q.ID]; ok {
		return codec.Value{Text: v.Text, Slots: append([]string(nil), v.Slots...)}
	}
	return codec.Blank(tpl.Type, tpl.SlotCount)
}

// Submit is the learner's submit action. confirmer is asked before
// anything is sent. A submit while another is in flight, or after success,
// is ignored.
func (s *ExamSession) Submit(ctx context.Context, confirmer submission.Confirmer) (submission.Outcome, error) {
	s.mu.Lock()
	closed, state := s.closed, s.state
	s.lastActivity = time.Now()
	s.mu.Unlock()

	if closed {
		return submission.Outcome{}, ErrSessionClosed
	}
	switch state {
	case SessionActive:
	case SessionSubmitting, SessionSubmitted, SessionReviewOnly:
		return submission.Outcome{Status: submission.StatusIgnored, Mode: submission.ModeManual}, nil
	default:
		return submission.Outcome{}, ErrSessionNotActive
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deps.SubmitTimeout)
	defer cancel()
	return s.submit(ctx, submission.ModeManual, confirmer), nil
}

// onExpire runs on the clock goroutine when the countdown reaches zero.
func (s *ExamSession) onExpire() {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return
	}

	s.logger.Info("Session time expired, submitting automatically")
	s.publish(events.EventSessionExpired, nil)

	ctx, cancel := context.WithTimeout(context.Background(), s.deps.SubmitTimeout)
	defer cancel()
	s.submit(ctx, submission.ModeForced, nil)
}

func (s *ExamSession) onDispatch(submission.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed && s.state == SessionActive {
		s.state = SessionSubmitting
		s.lastError = ""
	}
}

func (s *ExamSession) submit(ctx context.Context, mode submission.Mode, confirmer submission.Confirmer) submission.Outcome {
	outcome := s.coordinator.Submit(ctx, mode, confirmer)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Info("Ignoring submission result for closed session", "status", outcome.Status)
		return outcome
	}
	switch outcome.Status {
	case submission.StatusSubmitted:
		s.state = SessionSubmitted
		s.submissionID = outcome.SubmissionID
		s.lastError = ""
		s.stored = make(map[uint]string, len(outcome.Answers))
		for _, a := range outcome.Answers {
			s.stored[a.QuestionID] = a.Answer
		}
		s.clock.Stop()
	case submission.StatusFailed:
		if s.state == SessionSubmitting {
			s.state = SessionActive
		}
		s.lastError = outcome.Message
	}
	s.mu.Unlock()

	switch outcome.Status {
	case submission.StatusSubmitted:
		s.publish(events.EventSubmissionSucceeded, events.SubmissionSucceededEvent{
			SubmissionID: outcome.SubmissionID,
			Mode:         string(mode),
			AnswerCount:  len(outcome.Answers),
		})
	case submission.StatusFailed:
		s.publish(events.EventSubmissionFailed, events.SubmissionFailedEvent{
			Mode:    string(mode),
			Message: outcome.Message,
		})
	}
	return outcome
}

// Teardown stops the clock and detaches the session. Results of a
// submission still in flight are ignored afterwards.
func (s *ExamSession) Teardown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.clock != nil {
		s.clock.Stop()
	}
	state := s.state
	s.mu.Unlock()

	s.logger.Info("Exam session closed", "state", state)
	s.publish(events.EventSessionClosed, events.SessionClosedEvent{State: string(state)})
}

func (s *ExamSession) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Clock exposes the session countdown; nil before the paper is loaded.
func (s *ExamSession) Clock() *clock.Clock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clock
}

// Idle reports whether the session can be evicted after ttl without
// activity. Timed sessions still running are never idle: their clock has
// to fire the automatic submission.
func (s *ExamSession) Idle(now time.Time, ttl time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return true
	}
	if now.Sub(s.lastActivity) < ttl {
		return false
	}
	switch s.state {
	case SessionSubmitting, SessionLoading:
		return false
	case SessionActive:
		return s.clock == nil || s.clock.State() != clock.Running
	}
	return true
}

// Review builds the readable review of a submitted session.
func (s *ExamSession) Review() (*Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.state.ReadOnly() {
		return nil, fmt.Errorf("%w: session is %s", ErrSessionNotActive, s.state)
	}
	return BuildReview(s.paper, s.submissionID, s.stored), nil
}

func (s *ExamSession) publish(eventType events.EventType, data interface{}) {
	if s.deps.Publisher == nil {
		return
	}
	event := events.NewSessionEvent(eventType, s.id, s.paperID, data)
	if err := s.deps.Publisher.PublishSessionEvent(context.Background(), event); err != nil {
		s.logger.Warn("Failed to publish session event", "event_type", eventType, "error", err)
	}
}
