// Package submission owns the one-shot dispatch of a session's answers to
// the Submission Service.
package submission

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/exam-engine/internal/codec"
	"github.com/SAP-F-2025/exam-engine/internal/models"
	"github.com/SAP-F-2025/exam-engine/internal/scanner"
)

// Mode selects the submission path.
type Mode string

const (
	// ModeManual is a learner action and needs confirmation.
	ModeManual Mode = "manual"
	// ModeForced is timer expiry and never asks.
	ModeForced Mode = "forced"
)

// GuardState is the dispatch guard of one session.
type GuardState int

const (
	NotSubmitted GuardState = iota
	InFlight
	// Dispatched is terminal.
	Dispatched
)

func (g GuardState) String() string {
	switch g {
	case NotSubmitted:
		return "not_submitted"
	case InFlight:
		return "in_flight"
	case Dispatched:
		return "dispatched"
	default:
		return "unknown"
	}
}

// Status is the result kind of one Submit call.
type Status string

const (
	// StatusIgnored means another submission was in flight or already done.
	StatusIgnored   Status = "ignored"
	StatusCancelled Status = "cancelled"
	StatusSubmitted Status = "submitted"
	StatusFailed    Status = "failed"
)

// Outcome describes what a Submit call did.
type Outcome struct {
	Status       Status
	Mode         Mode
	SubmissionID uint
	Message      string
	Answers      []models.AnswerEntry
	Err          error
}

// Service is the remote Submission Service.
type Service interface {
	Submit(ctx context.Context, req *models.SubmissionRequest) (*models.SubmissionResult, error)
}

// SnapshotWriter persists the answer set of a successful submission.
type SnapshotWriter interface {
	Save(ctx context.Context, snapshot *models.SubmissionSnapshot) error
}

// AnswerSource exposes the learner's current in-memory answers.
type AnswerSource interface {
	Value(questionID uint) (codec.Value, bool)
}

// Confirmer asks the learner to confirm a manual submission.
type Confirmer interface {
	Confirm(ctx context.Context) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context) bool

func (f ConfirmFunc) Confirm(ctx context.Context) bool { return f(ctx) }

// Confirmed is a Confirmer with a fixed answer.
type Confirmed bool

func (c Confirmed) Confirm(context.Context) bool { return bool(c) }

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDispatchHook registers fn to run once the guard is taken, right
// before the Submission Service is called.
func WithDispatchHook(fn func(Mode)) Option {
	return func(c *Coordinator) {
		c.onDispatch = fn
	}
}

// Coordinator submits the answers of one paper at most once.
type Coordinator struct {
	paper      *models.Paper
	service    Service
	snapshots  SnapshotWriter
	answers    AnswerSource
	logger     *slog.Logger
	onDispatch func(Mode)

	mu    sync.Mutex
	state GuardState
}

func NewCoordinator(paper *models.Paper, service Service, snapshots SnapshotWriter, answers AnswerSource, logger *slog.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		paper:     paper,
		service:   service,
		snapshots: snapshots,
		answers:   answers,
		logger:    logger.With("paper_id", paper.ID),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current guard state.
func (c *Coordinator) State() GuardState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit dispatches the answer set. It is a no-op while another submission
// is in flight or after one succeeded. Manual submissions ask confirmer
// first; a declined confirmation leaves the guard untouched. On failure the
// guard returns to NotSubmitted.
func (c *Coordinator) Submit(ctx context.Context, mode Mode, confirmer Confirmer) Outcome {
	if c.State() != NotSubmitted {
		return Outcome{Status: StatusIgnored, Mode: mode}
	}

	if mode == ModeManual {
		if confirmer == nil || !confirmer.Confirm(ctx) {
			c.logger.Info("Submission cancelled by learner")
			return Outcome{Status: StatusCancelled, Mode: mode}
		}
	}

	// the timer may have won while the learner was confirming
	if !c.acquire() {
		return Outcome{Status: StatusIgnored, Mode: mode}
	}
	if c.onDispatch != nil {
		c.onDispatch(mode)
	}

	answers := c.Assemble()
	c.logger.Info("Submitting answers", "mode", mode, "answers", len(answers))

	result, err := c.service.Submit(ctx, &models.SubmissionRequest{
		PaperID: c.paper.ID,
		Answers: answers,
	})
	switch {
	case err != nil:
	case result == nil:
		err = ErrEmptyResult
	case result.SubmissionID == 0:
		err = &ServiceError{Message: result.Message, Err: ErrNoSubmissionID}
	}
	if err != nil {
		c.release()
		msg := ErrorMessage(err)
		c.logger.Error("Submission failed", "mode", mode, "error", err)
		return Outcome{Status: StatusFailed, Mode: mode, Message: msg, Answers: answers, Err: err}
	}

	c.mu.Lock()
	c.state = Dispatched
	c.mu.Unlock()

	c.logger.Info("Submission successfully dispatched", "mode", mode, "submission_id", result.SubmissionID)

	if err := c.persist(ctx, result.SubmissionID, answers); err != nil {
		c.logger.Error("Failed to persist submission snapshot", "submission_id", result.SubmissionID, "error", err)
	}

	return Outcome{
		Status:       StatusSubmitted,
		Mode:         mode,
		SubmissionID: result.SubmissionID,
		Message:      result.Message,
		Answers:      answers,
	}
}

// Assemble encodes every question of the paper in paper order. Unanswered
// questions get their type's empty encoding.
func (c *Coordinator) Assemble() []models.AnswerEntry {
	out := make([]models.AnswerEntry, 0, len(c.paper.Questions))
	for _, q := range c.paper.Questions {
		t := scanner.TypeOf(q)
		slots := 0
		if t.IsArray() {
			slots = scanner.SlotCount(q)
		}

		encoded := codec.Empty(t, slots)
		if v, ok := c.answers.Value(q.ID); ok {
			if t.IsArray() {
				v.Slots = codec.Fit(v.Slots, slots)
			}
			encoded = codec.Encode(t, v)
		}
		out = append(out, models.AnswerEntry{QuestionID: q.ID, Answer: encoded})
	}
	return out
}

func (c *Coordinator) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != NotSubmitted {
		return false
	}
	c.state = InFlight
	return true
}

func (c *Coordinator) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == InFlight {
		c.state = NotSubmitted
	}
}

func (c *Coordinator) persist(ctx context.Context, submissionID uint, answers []models.AnswerEntry) error {
	if c.snapshots == nil {
		return nil
	}
	snapshot, err := models.NewSubmissionSnapshot(c.paper.ID, submissionID, answers)
	if err != nil {
		return err
	}
	if err := c.snapshots.Save(context.WithoutCancel(ctx), snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
