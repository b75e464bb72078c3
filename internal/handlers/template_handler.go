package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exam-engine/internal/models"
	"github.com/SAP-F-2025/exam-engine/internal/scanner"
	"github.com/SAP-F-2025/exam-engine/internal/utils"
	"github.com/SAP-F-2025/exam-engine/internal/validator"
	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	BaseHandler
	validator *validator.Validator
}

func NewTemplateHandler(validator *validator.Validator, logger utils.Logger) *TemplateHandler {
	return &TemplateHandler{
		BaseHandler: NewBaseHandler(logger),
		validator:   validator,
	}
}

// ScanTemplate derives the answer template of a posted question
// @Summary Scan question template
// @Tags templates
// @Accept json
// @Produce json
// @Param request body ScanRequest true "Question"
// @Success 200 {object} scanner.Template
// @Failure 400 {object} ErrorResponse
// @Router /templates/scan [post]
func (h *TemplateHandler) ScanTemplate(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, err)
		return
	}

	c.JSON(http.StatusOK, scanner.Scan(models.Question{
		ID:      req.ID,
		RawType: req.Type,
		Text:    req.Text,
		Options: req.Options,
	}))
}
