package handlers

import (
	"github.com/SAP-F-2025/exam-engine/internal/services"
	"github.com/SAP-F-2025/exam-engine/internal/utils"
	"github.com/SAP-F-2025/exam-engine/internal/validator"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	sessionHandler  *SessionHandler
	reviewHandler   *ReviewHandler
	templateHandler *TemplateHandler
	logger          utils.Logger
}

func NewHandlerManager(
	sessionService services.SessionService,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler:  NewSessionHandler(sessionService, validator, logger),
		reviewHandler:   NewReviewHandler(sessionService, logger),
		templateHandler: NewTemplateHandler(validator, logger),
		logger:          logger,
	}
}

// NewRouter builds the gin engine with logging middlewares and all routes
func (hm *HandlerManager) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(hm.logger))
	router.Use(utils.ContextLogger(hm.logger))
	hm.SetupRoutes(router)
	return router
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.DELETE("/:id", hm.sessionHandler.CloseSession)
			sessions.PUT("/:id/answers/:question_id", hm.sessionHandler.SetAnswer)
			sessions.POST("/:id/submit", hm.sessionHandler.SubmitSession)
		}

		// Submitted attempts, opened from the submitted URL
		papers := v1.Group("/papers/:paper_id/submissions")
		{
			papers.GET("/:submission_id", hm.reviewHandler.OpenSubmission)
			papers.GET("/:submission_id/export", hm.reviewHandler.ExportSubmission)
		}

		v1.POST("/templates/scan", hm.templateHandler.ScanTemplate)
		v1.GET("/health", HealthCheck)
	}
}
