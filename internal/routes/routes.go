package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"patient-portal-server/internal/config"
	"patient-portal-server/internal/handlers"
	"patient-portal-server/internal/live"
	"patient-portal-server/internal/middleware"
	"patient-portal-server/internal/notice"
	"patient-portal-server/internal/portal"
	"patient-portal-server/internal/store"
)

// Dependencies are the long-lived services the routes share.
type Dependencies struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Log       *zap.Logger
	Hub       *live.Hub
	Board     *notice.Board
	Lockout   *notice.Lockout
	Patients  *store.PatientStore
	Responses *store.ResponseStore
	Portal    *portal.Service
}

// NewDependencies wires the stores, live hub, notice board and portal service.
func NewDependencies(db *gorm.DB, cfg *config.Config, log *zap.Logger) *Dependencies {
	hub := live.NewHub()
	board := notice.NewBoard(cfg.NoticeTTL, hub)
	lockout := notice.NewLockout(cfg.ResubmitLockout)
	patients := store.NewPatientStore(db)
	responses := store.NewResponseStore(db, live.TopicNotifier{Hub: hub, Topic: live.ResponseTopic})

	return &Dependencies{
		DB:        db,
		Cfg:       cfg,
		Log:       log,
		Hub:       hub,
		Board:     board,
		Lockout:   lockout,
		Patients:  patients,
		Responses: responses,
		Portal:    portal.NewService(patients, responses, board, lockout, log),
	}
}

// Close stops the notice and lockout timers.
func (d *Dependencies) Close() {
	d.Board.Close()
	d.Lockout.Close()
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps *Dependencies) {
	cfg := deps.Cfg

	authHandler := handlers.NewAuthHandler(deps.DB, cfg, deps.Portal, deps.Log)
	portalHandler := handlers.NewPortalHandler(deps.Portal)
	profileHandler := handlers.NewProfileHandler(deps.Portal)
	questionnaireHandler := handlers.NewQuestionnaireHandler(deps.Portal)
	responseHandler := handlers.NewResponseHandler(deps.Responses, deps.Portal)
	streamHandler := handlers.NewStreamHandler(deps.Hub, deps.Responses, deps.Board, cfg.Origin, deps.Log)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		authRoutes.Use(middleware.RateLimit(cfg.RateLimit))
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/me", authHandler.Me)
		}

		portalRoutes := private.Group("/portal")
		{
			portalRoutes.GET("", portalHandler.GetView)
			portalRoutes.POST("/retry", portalHandler.Retry)
			portalRoutes.POST("/navigate", portalHandler.Navigate)
		}

		profileRoutes := private.Group("/profile")
		{
			profileRoutes.GET("", profileHandler.GetProfile)
			profileRoutes.PUT("", profileHandler.SaveProfile)
			profileRoutes.GET("/form", profileHandler.GetForm)
		}

		questionnaireRoutes := private.Group("/questionnaire")
		{
			questionnaireRoutes.GET("", questionnaireHandler.GetAssessment)
			questionnaireRoutes.POST("", questionnaireHandler.SubmitAssessment)
		}

		checkinRoutes := private.Group("/checkin")
		{
			checkinRoutes.GET("/questions", questionnaireHandler.GetCheckinQuestions)
			checkinRoutes.POST("/:questionId", questionnaireHandler.SubmitCheckin)
		}

		responseRoutes := private.Group("/responses")
		{
			responseRoutes.GET("", responseHandler.ListResponses)
			responseRoutes.GET("/:id", responseHandler.GetResponse)
			responseRoutes.DELETE("/:id", responseHandler.DeleteResponse)
		}
	}

	// Live streams, which may carry the access token in the query string
	stream := router.Group("/api/v1")
	stream.Use(middleware.StreamAuthMiddleware(cfg))
	{
		stream.GET("/responses/stream", streamHandler.ServeSSE)
		stream.GET("/ws", streamHandler.ServeWS)
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := deps.DB.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}
