package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/exam-engine/internal/clients/paperapi"
	"github.com/SAP-F-2025/exam-engine/internal/services"
	"github.com/SAP-F-2025/exam-engine/internal/submission"
	"github.com/gin-gonic/gin"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := c.Param(param)
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// ParseUintParam writes a 400 and returns 0 when the parameter is not a positive integer
func ParseUintParam(c *gin.Context, param string) uint {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		details := "ID must be a positive integer"
		if err != nil {
			details = err.Error()
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: details,
		})
		return 0
	}
	return uint(id)
}

// handleServiceError maps service errors onto HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) && !services.IsLoadFailure(err) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrors)
		return
	}

	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Session not found", err)
	case errors.Is(err, services.ErrQuestionNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Question not found", err)
	case errors.Is(err, services.ErrSnapshotNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Submitted answers not found", err)
	case errors.Is(err, services.ErrAnswerShape):
		h.RespondWithError(c, http.StatusBadRequest, "Answer does not fit the question", err, err.Error())
	case services.IsLoadFailure(err) && (errors.Is(err, paperapi.ErrPaperNotFound) || errors.Is(err, services.ErrNotFound)):
		h.RespondWithError(c, http.StatusNotFound, "Paper not found", err)
	case services.IsLoadFailure(err):
		h.RespondWithError(c, http.StatusBadGateway, "Failed to load paper", err, loadFailureDetail(err))
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, "Session is not accepting this action", err, err.Error())
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, "Resource not found", err)
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, err.Error())
	case errors.Is(err, submission.ErrServiceUnavailable):
		h.RespondWithError(c, http.StatusServiceUnavailable, "Submission service unavailable", err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

func loadFailureDetail(err error) string {
	var loadErr *services.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Err.Error()
	}
	return err.Error()
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "exam-engine",
	})
}
