package handlers

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/metrics"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	userHandler     *UserHandler
	quizHandler     *QuizHandler
	questionHandler *QuestionHandler
	attemptHandler  *AttemptHandler
	serviceManager  services.ServiceManager
	metrics         *metrics.Metrics
	logger          utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	m *metrics.Metrics,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		userHandler:     NewUserHandler(serviceManager.User(), logger),
		quizHandler:     NewQuizHandler(serviceManager.Quiz(), serviceManager.Export(), logger),
		questionHandler: NewQuestionHandler(serviceManager.Question(), logger),
		attemptHandler:  NewAttemptHandler(serviceManager.Attempt(), logger),
		serviceManager:  serviceManager,
		metrics:         m,
		logger:          logger,
	}
}

// SetupMiddleware installs the global middleware chain. An empty origin
// list, or one containing "*", allows every origin.
func (hm *HandlerManager) SetupMiddleware(router *gin.Engine, allowedOrigins []string) {
	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", utils.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{utils.RequestIDHeader, "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour

	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig))
	router.Use(utils.RequestID())
	router.Use(utils.LoggerMiddleware(hm.logger))
	if hm.metrics != nil {
		router.Use(hm.metrics.Middleware())
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)
	if hm.metrics != nil {
		router.GET("/metrics", gin.WrapH(hm.metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("", hm.userHandler.CreateUser)
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
		}

		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.PUT("/:id", hm.quizHandler.UpdateQuiz)

			quizzes.POST("/:id/questions", hm.questionHandler.CreateQuestion)
			quizzes.GET("/:id/questions", hm.questionHandler.ListQuestions)

			quizzes.GET("/:id/attempts", hm.attemptHandler.ListQuizAttempts)
			quizzes.GET("/:id/results/export", hm.quizHandler.ExportResults)
		}

		attempts := v1.Group("/attempts")
		{
			attempts.POST("", hm.attemptHandler.StartAttempt)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.POST("/:id/answers", hm.attemptHandler.SubmitAnswer)
			attempts.POST("/:id/complete", hm.attemptHandler.CompleteAttempt)
		}

		students := v1.Group("/students")
		{
			students.GET("/:id/attempts", hm.attemptHandler.ListStudentAttempts)
		}
	}
}

// HealthCheck reports whether the database answers within two seconds.
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{
		"status":    "healthy",
		"service":   "quiz-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := hm.serviceManager.Health(ctx); err != nil {
		hm.logger.LogError(err, "Health check failed")
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["error"] = "database unavailable"
	}

	c.JSON(status, body)
}
