package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-engine/internal/codec"
	"github.com/SAP-F-2025/exam-engine/internal/events"
	"github.com/SAP-F-2025/exam-engine/internal/models"
	"github.com/SAP-F-2025/exam-engine/internal/submission"
)

func TestExamSession_TimeoutSubmitsWithoutConfirmation(t *testing.T) {
	env := newTestEnv(&models.Paper{
		ID:              1,
		Title:           "Weather",
		DurationSeconds: seconds(60),
		Questions: []models.Question{
			{ID: 10, RawType: "gap_fill", Text: "The sky is ___."},
		},
	})
	env.submitter.On("Submit", mock.Anything, &models.SubmissionRequest{
		PaperID: 1,
		Answers: []models.AnswerEntry{{QuestionID: 10, Answer: `["blue"]`}},
	}).Return(&models.SubmissionResult{SubmissionID: 77}, nil).Once()

	session := env.loadSession(t)
	assert.Equal(t, SessionActive, session.State())

	_, err := session.SetAnswer(10, codec.Value{Slots: []string{"blue"}})
	require.NoError(t, err)

	env.ticker.advance(t, 59)
	require.Eventually(t, func() bool {
		v := session.View()
		return v.RemainingSeconds != nil && *v.RemainingSeconds == 1
	}, 2*time.Second, 5*time.Millisecond)
	view := session.View()
	assert.Equal(t, "0:01", view.Remaining)

	env.ticker.advance(t, 1)
	waitForState(t, session, SessionSubmitted)

	view = session.View()
	assert.True(t, view.ReadOnly)
	assert.True(t, view.Expired)
	assert.Equal(t, uint(77), view.SubmissionID)
	assert.Equal(t, []string{"blue"}, view.Questions[0].Answer.Slots)
	env.submitter.AssertExpectations(t)

	snapshot, err := env.snapshots.Get(context.Background(), 1, 77)
	require.NoError(t, err)
	assert.Equal(t, map[uint]string{10: `["blue"]`}, snapshot.AnswerMap())

	assert.Contains(t, env.publisher.Types(), events.EventSessionExpired)
	assert.Contains(t, env.publisher.Types(), events.EventSubmissionSucceeded)
}

func TestExamSession_MultipleChoiceEncodesLetter(t *testing.T) {
	env := newTestEnv(&models.Paper{
		ID: 2,
		Questions: []models.Question{
			{ID: 1, RawType: "mcq", Text: "Pick", Options: []string{"Red", "Blue"}},
		},
	})
	env.submitter.On("Submit", mock.Anything, mock.MatchedBy(func(req *models.SubmissionRequest) bool {
		return len(req.Answers) == 1 && req.Answers[0].Answer == "B"
	})).Return(&models.SubmissionResult{SubmissionID: 5}, nil).Once()

	session := env.loadSession(t)
	_, err := session.SetAnswer(1, codec.Value{Text: models.OptionLabel(1)})
	require.NoError(t, err)

	outcome, err := session.Submit(context.Background(), submission.Confirmed(true))
	require.NoError(t, err)
	assert.Equal(t, submission.StatusSubmitted, outcome.Status)
	assert.Equal(t, SessionSubmitted, session.State())
	env.submitter.AssertExpectations(t)
}

func TestExamSession_DeclinedConfirmationKeepsSessionActive(t *testing.T) {
	env := newTestEnv(&models.Paper{
		ID:        3,
		Questions: []models.Question{{ID: 1, RawType: "tfng", Text: "Water is wet."}},
	})

	session := env.loadSession(t)
	outcome, err := session.Submit(context.Background(), submission.Confirmed(false))
	require.NoError(t, err)

	assert.Equal(t, submission.StatusCancelled, outcome.Status)
	assert.Equal(t, SessionActive, session.State())
	env.submitter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)

	_, err = session.SetAnswer(1, codec.Value{Text: models.AnswerNotGiven})
	assert.NoError(t, err)
}

func TestExamSession_FailedSubmissionReturnsToActive(t *testing.T) {
	env := newTestEnv(&models.Paper{
		ID:              4,
		DurationSeconds: seconds(2),
		Questions:       []models.Question{{ID: 1, RawType: "short", Text: "Explain."}},
	})
	env.submitter.On("Submit", mock.Anything, mock.Anything).
		Return(nil, &submission.ServiceError{Message: "Deadline passed", StatusCode: 400}).Once()
	env.submitter.On("Submit", mock.Anything, mock.Anything).
		Return(&models.SubmissionResult{SubmissionID: 8}, nil).Once()

	session := env.loadSession(t)
	_, err := session.SetAnswer(1, codec.Value{Text: "Because."})
	require.NoError(t, err)

	env.ticker.advance(t, 2)
	require.Eventually(t, func() bool { return session.View().Error == "Deadline passed" }, 2*time.Second, 5*time.Millisecond)

	view := session.View()
	assert.Equal(t, SessionActive, view.State)
	assert.True(t, view.Expired)
	assert.Equal(t, 0, *view.RemainingSeconds)
	assert.Contains(t, env.publisher.Types(), events.EventSubmissionFailed)

	outcome, err := session.Submit(context.Background(), submission.Confirmed(true))
	require.NoError(t, err)
	assert.Equal(t, submission.StatusSubmitted, outcome.Status)
	assert.Equal(t, SessionSubmitted, session.State())
	env.submitter.AssertNumberOfCalls(t, "Submit", 2)
}

func TestExamSession_SubmitWhileInFlightIsIgnored(t *testing.T) {
	env := newTestEnv(&models.Paper{
		ID:        5,
		Questions: []models.Question{{ID: 1, RawType: "gap", Text: "A __ B"}},
	})
	entered := make(chan struct{})
	release := make(chan struct{})
	env.submitter.On("Submit", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&models.SubmissionResult{SubmissionID: 1}, nil).Once()

	session := env.loadSession(t)

	done := make(chan submission.Outcome, 1)
	go func() {
		outcome, _ := session.Submit(context.Background(), submission.Confirmed(true))
		done <- outcome
	}()
	<-entered
	assert.Equal(t, SessionSubmitting, session.State())

	_, err := session.SetAnswer(1, codec.Value{Slots: []string{"x"}})
	assert.ErrorIs(t, err, ErrSessionNotEditable)

	second, err := session.Submit(context.Background(), submission.Confirmed(true))
	require.NoError(t, err)
	assert.Equal(t, submission.StatusIgnored, second.Status)

	close(release)
	assert.Equal(t, submission.StatusSubmitted, (<-done).Status)
	env.submitter.AssertNumberOfCalls(t, "Submit", 1)
}

func TestExamSession_TeardownStopsClockAndIgnoresLateResult(t *testing.T) {
	env := newTestEnv(&models.Paper{
		ID:              6,
		DurationSeconds: seconds(30),
		Questions:       []models.Question{{ID: 1, RawType: "short", Text: "Q"}},
	})
	entered := make(chan struct{})
	release := make(chan struct{})
	env.submitter.On("Submit", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&models.SubmissionResult{SubmissionID: 2}, nil).Once()

	session := env.loadSession(t)
	env.ticker.advance(t, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Submit(context.Background(), submission.Confirmed(true))
	}()
	<-entered

	session.Teardown()
	close(release)
	<-done

	assert.True(t, session.Closed())
	assert.NotEqual(t, SessionSubmitted, session.State())
	select {
	case <-session.Clock().Done():
	case <-time.After(time.Second):
		t.Fatal("clock still running after teardown")
	}

	_, err := session.SetAnswer(1, codec.Value{Text: "late"})
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = session.Submit(context.Background(), submission.Confirmed(true))
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Contains(t, env.publisher.Types(), events.EventSessionClosed)
}

func TestExamSession_LoadFailureIsTerminal(t *testing.T) {
	env := newTestEnv(&models.Paper{ID: 7})
	env.provider.err = errProviderDown

	session := NewExamSession(7, env.deps)
	err := session.Load(context.Background())

	require.Error(t, err)
	assert.True(t, IsLoadFailure(err))
	assert.ErrorIs(t, err, errProviderDown)
	assert.Equal(t, SessionLoadFailed, session.State())

	_, err = session.Submit(context.Background(), submission.Confirmed(true))
	assert.ErrorIs(t, err, ErrSessionNotActive)
}

func TestExamSession_InvalidPaperFailsLoad(t *testing.T) {
	env := newTestEnv(&models.Paper{
		ID:        8,
		Questions: []models.Question{{ID: 1}, {ID: 1}},
	})

	session := NewExamSession(8, env.deps)
	err := session.Load(context.Background())

	assert.True(t, IsLoadFailure(err))
	assert.True(t, IsValidation(err))
}

func TestExamSession_SetAnswerValidatesShape(t *testing.T) {
	env := newTestEnv(&models.Paper{
		ID: 9,
		Questions: []models.Question{
			{ID: 1, RawType: "matching", Text: "Match\n1. Cat 2. Dog A. Meow B. Woof"},
			{ID: 2, RawType: "table", Text: "| a | ___ |\n|---|---|\n| ___ | d |"},
		},
	})
	session := env.loadSession(t)

	_, err := session.SetAnswer(1, codec.Value{Slots: []string{"B", "A"}})
	assert.NoError(t, err)
	_, err = session.SetAnswer(1, codec.Value{Slots: []string{"C", ""}})
	assert.ErrorIs(t, err, ErrAnswerShape)
	_, err = session.SetAnswer(2, codec.Value{Slots: []string{"b"}})
	assert.ErrorIs(t, err, ErrAnswerShape)
	assert.True(t, IsValidation(err))
	_, err = session.SetAnswer(99, codec.Value{Text: "x"})
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	qv, err := session.SetAnswer(2, codec.Value{Slots: []string{"b", "c"}})
	require.NoError(t, err)
	assert.Equal(t, 2, qv.SlotCount)

	v, err := session.Answer(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, v.Slots)
}

func TestExamSession_UntimedPaperHasNoClock(t *testing.T) {
	env := newTestEnv(&models.Paper{
		ID:        10,
		Questions: []models.Question{{ID: 1, RawType: "gap", Text: "No blanks here"}},
	})
	session := env.loadSession(t)

	view := session.View()
	assert.False(t, view.Timed)
	assert.Nil(t, view.RemainingSeconds)
	assert.Equal(t, 1, view.Questions[0].SlotCount)
	assert.Equal(t, []string{""}, view.Questions[0].Answer.Slots)
}
