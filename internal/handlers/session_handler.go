package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/SAP-F-2025/exam-engine/internal/codec"
	"github.com/SAP-F-2025/exam-engine/internal/services"
	"github.com/SAP-F-2025/exam-engine/internal/submission"
	"github.com/SAP-F-2025/exam-engine/internal/utils"
	"github.com/SAP-F-2025/exam-engine/internal/validator"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
	validator      *validator.Validator
}

func NewSessionHandler(
	sessionService services.SessionService,
	validator *validator.Validator,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
		validator:      validator,
	}
}

// StartSession loads a paper and opens a session on it
// @Summary Start exam session
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body StartSessionRequest true "Paper to take"
// @Success 201 {object} services.SessionView
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, err)
		return
	}

	h.LogRequest(c, "Starting exam session", "paper_id", req.PaperID)

	view, err := h.sessionService.Start(c.Request.Context(), req.PaperID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Exam session started", "session_id", view.ID, "paper_id", view.PaperID)
	c.JSON(http.StatusCreated, view)
}

// GetSession renders the current state of a session
// @Summary Get exam session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionView
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	view, err := h.sessionService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SetAnswer replaces the answer of one question
// @Summary Set answer
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param question_id path uint true "Question ID"
// @Param request body SetAnswerRequest true "Answer value or slots"
// @Success 200 {object} services.QuestionView
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/answers/{question_id} [put]
func (h *SessionHandler) SetAnswer(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	questionID := ParseUintParam(c, "question_id")
	if questionID == 0 {
		return
	}

	var req SetAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, err)
		return
	}
	if req.Value == nil && req.Slots == nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", nil, "either value or slots is required")
		return
	}

	value := codec.Value{Slots: req.Slots}
	if req.Value != nil {
		value.Text = *req.Value
	}

	question, err := h.sessionService.SetAnswer(c.Request.Context(), id, questionID, value)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// SubmitSession is the learner's manual submit
// @Summary Submit exam session
// @Description Submits the session. Without "confirm": true the submit is cancelled.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body SubmitRequest false "Confirmation"
// @Success 200 {object} services.SubmitResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/submit [post]
func (h *SessionHandler) SubmitSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Submitting exam session", "confirm", req.Confirm)

	resp, err := h.sessionService.Submit(c.Request.Context(), id, submission.Confirmed(req.Confirm))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusOK
	if resp.Status == submission.StatusFailed {
		status = http.StatusBadGateway
	}
	h.LogInfo(c, "Submit finished", "status", resp.Status, "submission_id", resp.SubmissionID)
	c.JSON(status, resp)
}

// CloseSession tears the session down
// @Summary Close exam session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [delete]
func (h *SessionHandler) CloseSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.sessionService.Teardown(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Exam session closed", gin.H{"session_id": id}, "session_id", id)
}
