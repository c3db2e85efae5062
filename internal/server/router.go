package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/skillvoice/skillvoice-backend/internal/handlers"
  "github.com/skillvoice/skillvoice-backend/internal/middleware"
)

type RouterConfig struct {
  AuthMiddleware    *middleware.AuthMiddleware
  AssessmentHandler *handlers.AssessmentHandler
  QuestionHandler   *handlers.QuestionHandler
  RoadmapHandler    *handlers.RoadmapHandler
  CatalogHandler    *handlers.CatalogHandler
  AdminHandler      *handlers.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5173",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)

// ===============
// || Protected ||
// ===============
  api := router.Group("/api")
  api.Use(cfg.AuthMiddleware.RequireAuth())
  // Catalog
  api.GET("/catalog/directions", cfg.CatalogHandler.ListDirections)
  // Assessments
  api.POST("/assessments", cfg.AssessmentHandler.Start)
  api.GET("/assessments", cfg.AssessmentHandler.List)
  api.GET("/assessments/:id", cfg.AssessmentHandler.Get)
  api.POST("/assessments/:id/complete", cfg.AssessmentHandler.Complete)
  api.DELETE("/assessments/:id", cfg.AssessmentHandler.Abandon)
  api.POST("/assessments/:id/restart", cfg.AssessmentHandler.Restart)
  // Questions
  api.POST("/assessments/:id/questions", cfg.QuestionHandler.GetQuestion)
  api.POST("/assessments/:id/answers", cfg.QuestionHandler.SubmitAnswer)
  // Legacy question routes kept for older clients
  api.POST("/questions/generate", cfg.QuestionHandler.GenerateQuestion)
  api.POST("/questions/answer", cfg.QuestionHandler.AnswerQuestion)
  // Roadmap
  api.GET("/assessments/:id/roadmap", cfg.RoadmapHandler.GetRoadmap)
  // Admin catalog management
  admin := api.Group("/admin")
  admin.POST("/directions", cfg.AdminHandler.CreateDirection)
  admin.POST("/technologies", cfg.AdminHandler.CreateTechnology)
  admin.POST("/directions/:direction_id/technologies/batch", cfg.AdminHandler.BatchLinkTechnologies)
  admin.POST("/directions/:direction_id/technologies/:technology_id", cfg.AdminHandler.LinkTechnologyToDirection)
  admin.POST("/directions/:direction_id/competencies/:competency_id", cfg.AdminHandler.LinkCompetencyToDirection)
  admin.POST("/technologies/:technology_id/competencies/:competency_id", cfg.AdminHandler.LinkCompetencyToTechnology)

  return router
}
