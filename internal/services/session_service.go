package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/exam-engine/internal/codec"
	"github.com/SAP-F-2025/exam-engine/internal/repositories"
	"github.com/SAP-F-2025/exam-engine/internal/submission"
)

// SessionService hosts the exam sessions of all connected learners
type SessionService interface {
	Start(ctx context.Context, paperID uint) (*SessionView, error)
	Get(ctx context.Context, sessionID string) (*SessionView, error)
	SetAnswer(ctx context.Context, sessionID string, questionID uint, value codec.Value) (*QuestionView, error)
	Submit(ctx context.Context, sessionID string, confirmer submission.Confirmer) (*SubmitResponse, error)
	Teardown(ctx context.Context, sessionID string) error

	OpenReview(ctx context.Context, paperID, submissionID uint) (*SessionView, error)
	Review(ctx context.Context, paperID, submissionID uint) (*Review, error)
	ExportReview(ctx context.Context, paperID, submissionID uint) ([]byte, error)

	EvictIdle(now time.Time) int
	RunJanitor(ctx context.Context, interval time.Duration)
	Close()
}

// SubmitResponse is the result of a manual submit
type SubmitResponse struct {
	Status       submission.Status `json:"status"`
	SubmissionID uint              `json:"submission_id,omitempty"`
	Message      string            `json:"message,omitempty"`
	Session      *SessionView      `json:"session"`
}

type sessionService struct {
	deps    SessionDeps
	idleTTL time.Duration
	logger  *ServiceLogger

	mu       sync.RWMutex
	sessions map[string]*ExamSession
}

func NewSessionService(deps SessionDeps, idleTTL time.Duration) SessionService {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &sessionService{
		deps:     deps,
		idleTTL:  idleTTL,
		logger:   NewServiceLogger(deps.Logger, LogConfig{Service: "exam-engine", Component: "sessions"}),
		sessions: make(map[string]*ExamSession),
	}
}

func (s *sessionService) Start(ctx context.Context, paperID uint) (view *SessionView, err error) {
	op := s.logger.WithOperation(ctx, "start")
	session := NewExamSession(paperID, s.deps)
	defer func() { op.LogResult(session.ID(), paperID, err) }()

	if err := session.Load(ctx); err != nil {
		return nil, err
	}
	s.register(session)
	return session.View(), nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*SessionView, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return session.View(), nil
}

func (s *sessionService) SetAnswer(ctx context.Context, sessionID string, questionID uint, value codec.Value) (*QuestionView, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return session.SetAnswer(questionID, value)
}

func (s *sessionService) Submit(ctx context.Context, sessionID string, confirmer submission.Confirmer) (resp *SubmitResponse, err error) {
	op := s.logger.WithOperation(ctx, "submit")
	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { op.LogResult(sessionID, session.PaperID(), err) }()

	outcome, err := session.Submit(ctx, confirmer)
	if err != nil {
		return nil, err
	}
	return &SubmitResponse{
		Status:       outcome.Status,
		SubmissionID: outcome.SubmissionID,
		Message:      outcome.Message,
		Session:      session.View(),
	}, nil
}

func (s *sessionService) Teardown(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	session.Teardown()
	return nil
}

func (s *sessionService) OpenReview(ctx context.Context, paperID, submissionID uint) (view *SessionView, err error) {
	op := s.logger.WithOperation(ctx, "open_review")
	session := NewExamSession(paperID, s.deps)
	defer func() { op.LogResult(session.ID(), paperID, err) }()

	if err := session.LoadReview(ctx, submissionID); err != nil {
		return nil, err
	}
	s.register(session)
	return session.View(), nil
}

func (s *sessionService) Review(ctx context.Context, paperID, submissionID uint) (*Review, error) {
	if s.deps.Snapshots == nil {
		return nil, ErrSnapshotNotFound
	}
	snapshot, err := s.deps.Snapshots.Get(ctx, paperID, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	paper, err := s.deps.Provider.GetPaper(ctx, paperID)
	if err != nil {
		return nil, &LoadError{PaperID: paperID, Err: err}
	}
	return BuildReview(paper, submissionID, snapshot.AnswerMap()), nil
}

func (s *sessionService) ExportReview(ctx context.Context, paperID, submissionID uint) ([]byte, error) {
	review, err := s.Review(ctx, paperID, submissionID)
	if err != nil {
		return nil, err
	}
	return ExportReviewToExcel(review)
}

// EvictIdle tears down sessions idle for longer than the configured TTL
// and returns how many were removed
func (s *sessionService) EvictIdle(now time.Time) int {
	if s.idleTTL <= 0 {
		return 0
	}

	s.mu.Lock()
	var idle []*ExamSession
	for id, session := range s.sessions {
		if session.Idle(now, s.idleTTL) {
			idle = append(idle, session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, session := range idle {
		session.Teardown()
	}
	if len(idle) > 0 {
		s.logger.Logger().Info("Evicted idle sessions", "count", len(idle))
	}
	return len(idle)
}

// RunJanitor evicts idle sessions every interval until ctx is done
func (s *sessionService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.EvictIdle(now)
		}
	}
}

// Close tears down every session
func (s *sessionService) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*ExamSession)
	s.mu.Unlock()

	for _, session := range sessions {
		session.Teardown()
	}
}

func (s *sessionService) register(session *ExamSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
}

func (s *sessionService) lookup(sessionID string) (*ExamSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}
