package api

import (
	"time"

	authDelivery "focusmeet-backend/internal/auth/delivery"
	"focusmeet-backend/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Router builds the gin engine with middleware and every route
func (h *Handler) Router() *gin.Engine {
	if h.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(logger.RequestID())
	r.Use(logger.Middleware(log.Logger))
	r.Use(logger.Recovery(log.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     h.config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	SetupRoutes(r, h)
	return r
}

func SetupRoutes(r *gin.Engine, h *Handler) {
	auth := authDelivery.AuthMiddleware(h.deps.Verifier)

	api := r.Group("/api")
	{
		// Health and status (no auth required)
		api.GET("/health", h.statusHandler.Health)
		api.GET("/status", h.statusHandler.Status)

		users := api.Group("/users")
		users.Use(auth)
		{
			users.POST("/ensure", h.authHandler.EnsureUser)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(auth)
		{
			fcm.POST("/register", h.authHandler.RegisterFCMToken)
			fcm.DELETE("/:token", h.authHandler.UnregisterFCMToken)
		}

		patients := api.Group("/patients")
		patients.Use(auth)
		{
			patients.POST("", h.patientHandler.CreatePatient)
			patients.GET("", h.patientHandler.GetPatients)
			patients.GET("/:id", h.patientHandler.GetPatientByID)
			patients.PATCH("/:id", h.patientHandler.UpdatePatient)
			patients.DELETE("/:id", h.patientHandler.DeletePatient)
			patients.GET("/:id/reports", h.reportHandler.GetPatientReports)
		}

		reports := api.Group("/reports")
		reports.Use(auth)
		{
			reports.POST("", h.reportHandler.CreateReport)
			reports.GET("", h.reportHandler.GetReports)
			reports.GET("/:id", h.reportHandler.GetReportByID)
			reports.PATCH("/:id", h.reportHandler.UpdateReport)
			reports.DELETE("/:id", h.reportHandler.DeleteReport)
		}

		// Transcription and analysis (protected)
		chat := api.Group("/chat")
		chat.Use(auth)
		{
			chat.POST("/transcribe", h.analysisHandler.Transcribe)
			chat.POST("/analyze", h.analysisHandler.Analyze)
		}

		tasks := api.Group("/tasks")
		tasks.Use(auth)
		{
			tasks.GET("", h.taskHandler.GetTasks)
		}

		feedback := api.Group("/feedback")
		feedback.Use(auth)
		{
			feedback.POST("", h.feedbackHandler.SubmitFeedback)
		}
	}
}
