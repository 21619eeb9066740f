package controller

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"evamed-backend/internal/config"
	"evamed-backend/internal/model"
	"evamed-backend/internal/service"
	"evamed-backend/pkg/middleware"
	"evamed-backend/utilities"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth           service.AuthService
	Evaluations    service.EvaluationService
	Responses      service.ResponseService
	Results        service.ResultService
	Reports        service.ReportService
	Questionnaires *service.Questionnaires
	DB             *gorm.DB
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(cfg *config.APIConfig, svc Services, tokens *utilities.TokenManager, limiter *utilities.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Context.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: !allowsAnyOrigin(cfg.Context.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))
	if cfg.RequestDump {
		r.Use(middleware.RequestDumpMiddleware())
	}

	var authorize func(roles ...string) []gin.HandlerFunc
	if cfg.Authentication.EnableTokenAuth {
		authorize = func(roles ...string) []gin.HandlerFunc {
			return []gin.HandlerFunc{utilities.AuthMiddleware(tokens), utilities.RequireRole(roles...)}
		}
	} else {
		authorize = func(...string) []gin.HandlerFunc { return nil }
	}

	RegisterRoutes(r, svc, authorize, limiter)

	static := NewStaticController(cfg.Context.StaticDir)
	if static.Enabled() {
		r.StaticFS("/assets", http.Dir(filepath.Join(cfg.Context.StaticDir, "assets")))
	}
	r.NoRoute(static.Fallback)
	return r
}

// RegisterRoutes registers all route groups and their endpoints.
func RegisterRoutes(r *gin.Engine, svc Services, authorize func(roles ...string) []gin.HandlerFunc, limiter *utilities.RateLimiter) {
	api := r.Group("/api")

	// Admin auth and user management.
	authCtrl := NewAuthController(svc.Auth)
	adminRoutes := api.Group("/admin")
	{
		adminRoutes.POST("/auth", authCtrl.Login)
		adminRoutes.POST("/refresh", authCtrl.Refresh)

		users := adminRoutes.Group("/users", authorize(model.RoleAdmin)...)
		users.GET("", authCtrl.ListUsers)
		users.POST("", authCtrl.CreateUser)
		users.DELETE("/:id", authCtrl.DeleteUser)
	}

	// Evaluations, managed by evaluators.
	evalCtrl := NewEvaluationController(svc.Evaluations)
	evaluationRoutes := api.Group("/evaluations")
	{
		staff := authorize(model.RoleAdmin, model.RoleCreator)
		evaluationRoutes.POST("", append(staff, evalCtrl.CreateEvaluation)...)
		evaluationRoutes.GET("", append(staff, evalCtrl.ListEvaluations)...)
		evaluationRoutes.GET("/:token", evalCtrl.GetEvaluation)
		evaluationRoutes.DELETE("/:token", append(authorize(model.RoleAdmin), evalCtrl.DeleteEvaluation)...)
	}

	// Candidate questionnaire.
	qCtrl := NewQuestionnaireController(svc.Responses)
	candidateRoutes := api.Group("/eval/:token")
	if limiter != nil {
		candidateRoutes.Use(limiter.Middleware())
	}
	{
		candidateRoutes.POST("/response", qCtrl.SaveResponse)
		candidateRoutes.GET("/progress", qCtrl.GetProgress)
		candidateRoutes.GET("/next-question", qCtrl.GetNextQuestion)
	}

	// Results.
	resultCtrl := NewResultController(svc.Results, svc.Reports)
	resultRoutes := api.Group("/result/:token")
	{
		resultRoutes.GET("", resultCtrl.GetResult)
		resultRoutes.GET("/pdf", resultCtrl.DownloadReport)
	}

	sysCtrl := NewSystemController(svc.Questionnaires, svc.DB)
	api.GET("/profiles", sysCtrl.ListProfiles)
	r.GET("/healthz", sysCtrl.Health)
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return len(origins) == 0
}
