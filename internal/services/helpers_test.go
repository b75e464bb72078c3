package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-engine/internal/clock"
	"github.com/SAP-F-2025/exam-engine/internal/events"
	"github.com/SAP-F-2025/exam-engine/internal/models"
	"github.com/SAP-F-2025/exam-engine/internal/repositories"
	"github.com/SAP-F-2025/exam-engine/internal/validator"
)

var errProviderDown = errors.New("provider down")

// stubProvider hands out a fresh copy of its paper on every call
type stubProvider struct {
	paper *models.Paper
	err   error
}

func (p *stubProvider) GetPaper(ctx context.Context, paperID uint) (*models.Paper, error) {
	if p.err != nil {
		return nil, p.err
	}
	cp := *p.paper
	cp.Questions = append([]models.Question(nil), p.paper.Questions...)
	return &cp, nil
}

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, req *models.SubmissionRequest) (*models.SubmissionResult, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*models.SubmissionResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// manualTicker is a clock.Ticker driven by the test
type manualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }

func (m *manualTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *manualTicker) advance(t *testing.T, seconds int) {
	t.Helper()
	for i := 0; i < seconds; i++ {
		select {
		case m.ch <- time.Now():
		case <-time.After(time.Second):
			t.Fatalf("tick %d not received", i+1)
		}
	}
}

type testEnv struct {
	provider  *stubProvider
	submitter *MockSubmitter
	snapshots *repositories.MemorySnapshotRepository
	publisher *events.MockEventPublisher
	ticker    *manualTicker
	deps      SessionDeps
}

func newTestEnv(paper *models.Paper) *testEnv {
	env := &testEnv{
		provider:  &stubProvider{paper: paper},
		submitter: &MockSubmitter{},
		snapshots: repositories.NewMemorySnapshotRepository(),
		publisher: events.NewMockEventPublisher(slog.Default()),
		ticker:    newManualTicker(),
	}
	env.deps = SessionDeps{
		Provider:      env.provider,
		Submitter:     env.submitter,
		Snapshots:     env.snapshots,
		Publisher:     env.publisher,
		Validator:     validator.New(),
		Logger:        slog.Default(),
		SubmitTimeout: time.Second,
		ClockOptions: []clock.Option{clock.WithTicker(func(time.Duration) clock.Ticker {
			return env.ticker
		})},
	}
	return env
}

func (env *testEnv) loadSession(t *testing.T) *ExamSession {
	t.Helper()
	session := NewExamSession(env.provider.paper.ID, env.deps)
	require.NoError(t, session.Load(context.Background()))
	t.Cleanup(session.Teardown)
	return session
}

func waitForState(t *testing.T, s *ExamSession, want SessionState) {
	t.Helper()
	require.Eventually(t, func() bool { return s.State() == want }, 2*time.Second, 5*time.Millisecond,
		"session never reached %s", want)
}

func seconds(n int) *int { return &n }
