package handlers

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/exam-engine/internal/services"
	"github.com/SAP-F-2025/exam-engine/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReviewHandler struct {
	BaseHandler
	sessionService services.SessionService
}

func NewReviewHandler(sessionService services.SessionService, logger utils.Logger) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
	}
}

// OpenSubmission opens a read-only session from the persisted answers of a submission
// @Summary Open submitted attempt
// @Tags review
// @Produce json
// @Param paper_id path uint true "Paper ID"
// @Param submission_id path uint true "Submission ID"
// @Success 200 {object} services.SessionView
// @Failure 404 {object} ErrorResponse
// @Router /papers/{paper_id}/submissions/{submission_id} [get]
func (h *ReviewHandler) OpenSubmission(c *gin.Context) {
	paperID, submissionID, ok := h.parseSubmissionParams(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Opening submitted attempt", "paper_id", paperID, "submission_id", submissionID)

	view, err := h.sessionService.OpenReview(c.Request.Context(), paperID, submissionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ExportSubmission downloads the review of a submission as an xlsx workbook
// @Summary Export submitted attempt
// @Tags review
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param paper_id path uint true "Paper ID"
// @Param submission_id path uint true "Submission ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /papers/{paper_id}/submissions/{submission_id}/export [get]
func (h *ReviewHandler) ExportSubmission(c *gin.Context) {
	paperID, submissionID, ok := h.parseSubmissionParams(c)
	if !ok {
		return
	}

	data, err := h.sessionService.ExportReview(c.Request.Context(), paperID, submissionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("paper-%d-submission-%d.xlsx", paperID, submissionID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *ReviewHandler) parseSubmissionParams(c *gin.Context) (uint, uint, bool) {
	paperID := ParseUintParam(c, "paper_id")
	if paperID == 0 {
		return 0, 0, false
	}
	submissionID := ParseUintParam(c, "submission_id")
	if submissionID == 0 {
		return 0, 0, false
	}
	return paperID, submissionID, true
}
