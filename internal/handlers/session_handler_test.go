package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-engine/internal/clients/paperapi"
	"github.com/SAP-F-2025/exam-engine/internal/codec"
	"github.com/SAP-F-2025/exam-engine/internal/services"
	"github.com/SAP-F-2025/exam-engine/internal/submission"
	"github.com/SAP-F-2025/exam-engine/internal/utils"
	"github.com/SAP-F-2025/exam-engine/internal/validator"
)

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Start(ctx context.Context, paperID uint) (*services.SessionView, error) {
	args := m.Called(ctx, paperID)
	if v := args.Get(0); v != nil {
		return v.(*services.SessionView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionService) Get(ctx context.Context, sessionID string) (*services.SessionView, error) {
	args := m.Called(ctx, sessionID)
	if v := args.Get(0); v != nil {
		return v.(*services.SessionView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionService) SetAnswer(ctx context.Context, sessionID string, questionID uint, value codec.Value) (*services.QuestionView, error) {
	args := m.Called(ctx, sessionID, questionID, value)
	if v := args.Get(0); v != nil {
		return v.(*services.QuestionView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionService) Submit(ctx context.Context, sessionID string, confirmer submission.Confirmer) (*services.SubmitResponse, error) {
	args := m.Called(ctx, sessionID, confirmer)
	if v := args.Get(0); v != nil {
		return v.(*services.SubmitResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionService) Teardown(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockSessionService) OpenReview(ctx context.Context, paperID, submissionID uint) (*services.SessionView, error) {
	args := m.Called(ctx, paperID, submissionID)
	if v := args.Get(0); v != nil {
		return v.(*services.SessionView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionService) Review(ctx context.Context, paperID, submissionID uint) (*services.Review, error) {
	args := m.Called(ctx, paperID, submissionID)
	if v := args.Get(0); v != nil {
		return v.(*services.Review), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionService) ExportReview(ctx context.Context, paperID, submissionID uint) ([]byte, error) {
	args := m.Called(ctx, paperID, submissionID)
	if v := args.Get(0); v != nil {
		return v.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionService) EvictIdle(now time.Time) int {
	return m.Called(now).Int(0)
}

func (m *MockSessionService) RunJanitor(ctx context.Context, interval time.Duration) {
	m.Called(ctx, interval)
}

func (m *MockSessionService) Close() {
	m.Called()
}

func setupRouter(svc services.SessionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewHandlerManager(svc, validator.New(), logger).NewRouter()
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSessionHandler_StartSession(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		setupMocks func(*MockSessionService)
		wantStatus int
		wantMsg    string
	}{
		{
			name: "starts a session",
			body: map[string]interface{}{"paper_id": 4},
			setupMocks: func(m *MockSessionService) {
				m.On("Start", mock.Anything, uint(4)).
					Return(&services.SessionView{ID: "s-1", PaperID: 4, State: services.SessionActive}, nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing paper id",
			body:       map[string]interface{}{},
			setupMocks: func(m *MockSessionService) {},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Validation failed",
		},
		{
			name:       "malformed body",
			body:       "not an object",
			setupMocks: func(m *MockSessionService) {},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid request payload",
		},
		{
			name: "unknown paper",
			body: map[string]interface{}{"paper_id": 9},
			setupMocks: func(m *MockSessionService) {
				m.On("Start", mock.Anything, uint(9)).
					Return(nil, &services.LoadError{PaperID: 9, Err: paperapi.ErrPaperNotFound}).Once()
			},
			wantStatus: http.StatusNotFound,
			wantMsg:    "Paper not found",
		},
		{
			name: "provider down",
			body: map[string]interface{}{"paper_id": 9},
			setupMocks: func(m *MockSessionService) {
				m.On("Start", mock.Anything, uint(9)).
					Return(nil, &services.LoadError{PaperID: 9, Err: io.ErrUnexpectedEOF}).Once()
			},
			wantStatus: http.StatusBadGateway,
			wantMsg:    "Failed to load paper",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockSessionService{}
			tt.setupMocks(svc)

			w := doRequest(setupRouter(svc), http.MethodPost, "/api/v1/sessions", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, decodeError(t, w).Message)
			} else {
				var view services.SessionView
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
				assert.Equal(t, "s-1", view.ID)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestSessionHandler_GetSession(t *testing.T) {
	svc := &MockSessionService{}
	svc.On("Get", mock.Anything, "s-1").Return(&services.SessionView{ID: "s-1", State: services.SessionActive}, nil).Once()
	svc.On("Get", mock.Anything, "nope").Return(nil, services.ErrSessionNotFound).Once()
	router := setupRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/v1/sessions/s-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(utils.RequestIDHeader))

	w = doRequest(router, http.MethodGet, "/api/v1/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Session not found", decodeError(t, w).Message)

	svc.AssertExpectations(t)
}

func TestSessionHandler_SetAnswer(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       interface{}
		setupMocks func(*MockSessionService)
		wantStatus int
	}{
		{
			name: "single value",
			path: "/api/v1/sessions/s-1/answers/3",
			body: map[string]interface{}{"value": "B"},
			setupMocks: func(m *MockSessionService) {
				m.On("SetAnswer", mock.Anything, "s-1", uint(3), codec.Value{Text: "B"}).
					Return(&services.QuestionView{Answer: codec.Value{Text: "B"}}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "slots",
			path: "/api/v1/sessions/s-1/answers/4",
			body: map[string]interface{}{"slots": []string{"blue", ""}},
			setupMocks: func(m *MockSessionService) {
				m.On("SetAnswer", mock.Anything, "s-1", uint(4), codec.Value{Slots: []string{"blue", ""}}).
					Return(&services.QuestionView{Answer: codec.Value{Slots: []string{"blue", ""}}}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "neither value nor slots",
			path:       "/api/v1/sessions/s-1/answers/4",
			body:       map[string]interface{}{},
			setupMocks: func(m *MockSessionService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad question id",
			path:       "/api/v1/sessions/s-1/answers/abc",
			body:       map[string]interface{}{"value": "B"},
			setupMocks: func(m *MockSessionService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "wrong shape",
			path: "/api/v1/sessions/s-1/answers/4",
			body: map[string]interface{}{"value": "B"},
			setupMocks: func(m *MockSessionService) {
				m.On("SetAnswer", mock.Anything, "s-1", uint(4), codec.Value{Text: "B"}).
					Return(nil, services.ErrAnswerShape).Once()
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "session already submitted",
			path: "/api/v1/sessions/s-1/answers/4",
			body: map[string]interface{}{"value": "B"},
			setupMocks: func(m *MockSessionService) {
				m.On("SetAnswer", mock.Anything, "s-1", uint(4), codec.Value{Text: "B"}).
					Return(nil, services.ErrSessionNotEditable).Once()
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockSessionService{}
			tt.setupMocks(svc)

			w := doRequest(setupRouter(svc), http.MethodPut, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestSessionHandler_SubmitSession(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		svc := &MockSessionService{}
		svc.On("Submit", mock.Anything, "s-1", submission.Confirmed(true)).Return(&services.SubmitResponse{
			Status:       submission.StatusSubmitted,
			SubmissionID: 12,
		}, nil).Once()

		w := doRequest(setupRouter(svc), http.MethodPost, "/api/v1/sessions/s-1/submit", map[string]interface{}{"confirm": true})

		assert.Equal(t, http.StatusOK, w.Code)
		var resp services.SubmitResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, uint(12), resp.SubmissionID)
		svc.AssertExpectations(t)
	})

	t.Run("empty body is not a confirmation", func(t *testing.T) {
		svc := &MockSessionService{}
		svc.On("Submit", mock.Anything, "s-1", submission.Confirmed(false)).
			Return(&services.SubmitResponse{Status: submission.StatusCancelled}, nil).Once()

		w := doRequest(setupRouter(svc), http.MethodPost, "/api/v1/sessions/s-1/submit", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("failed submission carries the server message", func(t *testing.T) {
		svc := &MockSessionService{}
		svc.On("Submit", mock.Anything, "s-1", submission.Confirmed(true)).Return(&services.SubmitResponse{
			Status:  submission.StatusFailed,
			Message: "Deadline passed",
		}, nil).Once()

		w := doRequest(setupRouter(svc), http.MethodPost, "/api/v1/sessions/s-1/submit", map[string]interface{}{"confirm": true})

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "Deadline passed")
	})
}

func TestSessionHandler_CloseSession(t *testing.T) {
	svc := &MockSessionService{}
	svc.On("Teardown", mock.Anything, "s-1").Return(nil).Once()
	svc.On("Teardown", mock.Anything, "s-2").Return(services.ErrSessionNotFound).Once()
	router := setupRouter(svc)

	w := doRequest(router, http.MethodDelete, "/api/v1/sessions/s-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Exam session closed", resp.Message)
	assert.Equal(t, map[string]interface{}{"session_id": "s-1"}, resp.Data)

	w = doRequest(router, http.MethodDelete, "/api/v1/sessions/s-2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.AssertExpectations(t)
}

func TestReviewHandler(t *testing.T) {
	svc := &MockSessionService{}
	svc.On("OpenReview", mock.Anything, uint(3), uint(12)).
		Return(&services.SessionView{ID: "r-1", State: services.SessionReviewOnly, ReadOnly: true}, nil).Once()
	svc.On("OpenReview", mock.Anything, uint(3), uint(13)).Return(nil, services.ErrSnapshotNotFound).Once()
	svc.On("ExportReview", mock.Anything, uint(3), uint(12)).Return([]byte("xlsx"), nil).Once()
	router := setupRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/v1/papers/3/submissions/12", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"read_only":true`)

	w = doRequest(router, http.MethodGet, "/api/v1/papers/3/submissions/13", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/papers/3/submissions/12/export", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "paper-3-submission-12.xlsx")
	assert.Equal(t, "xlsx", w.Body.String())

	w = doRequest(router, http.MethodGet, "/api/v1/papers/0/submissions/12", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestTemplateHandler_ScanTemplate(t *testing.T) {
	router := setupRouter(&MockSessionService{})

	w := doRequest(router, http.MethodPost, "/api/v1/templates/scan", map[string]interface{}{
		"question_type": "gap",
		"question_text": "Complete.\nThe sky is ___ and ___.",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var tpl map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tpl))
	assert.Equal(t, "gap_fill", tpl["type"])
	assert.Equal(t, "Complete.", tpl["header"])
	assert.EqualValues(t, 2, tpl["slot_count"])

	w = doRequest(router, http.MethodPost, "/api/v1/templates/scan", map[string]interface{}{"question_type": "gap"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/templates/scan", map[string]interface{}{
		"question_type": "crossword",
		"question_text": "1 across",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "question_type")
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(&MockSessionService{})

	w := doRequest(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
