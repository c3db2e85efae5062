package main

import (
  "fmt"
  "os"

  "github.com/skillvoice/skillvoice-backend/internal/db"
  "github.com/skillvoice/skillvoice-backend/internal/handlers"
  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/middleware"
  "github.com/skillvoice/skillvoice-backend/internal/repos"
  "github.com/skillvoice/skillvoice-backend/internal/server"
  "github.com/skillvoice/skillvoice-backend/internal/services"
  "github.com/skillvoice/skillvoice-backend/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  port := utils.GetEnv("PORT", "8080", log)
  questionSourceMode := utils.GetEnv("QUESTION_SOURCE", "bank", log)
  maxAudioMB := utils.GetEnvAsInt("MAX_AUDIO_FILE_SIZE_MB", services.DefaultMaxAudioFileSizeMB, log)

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  directionRepo := repos.NewDirectionRepo(thePG, log)
  technologyRepo := repos.NewTechnologyRepo(thePG, log)
  competencyRepo := repos.NewCompetencyRepo(thePG, log)
  assessmentRepo := repos.NewAssessmentRepo(thePG, log)
  competencyAssessmentRepo := repos.NewCompetencyAssessmentRepo(thePG, log)
  questionHistoryRepo := repos.NewQuestionHistoryRepo(thePG, log)
  questionRepo := repos.NewQuestionRepo(thePG, log)
  roadmapRepo := repos.NewRoadmapRepo(thePG, log)

  // Services
  log.Info("Setting up Services from main...")
  openaiClient, err := services.NewOpenAIClient(log)
  if err != nil {
    log.Error("Could not init OpenAIClient", "error", err)
    os.Exit(1)
  }
  scoringService := services.NewScoringService(log, questionHistoryRepo, competencyAssessmentRepo)

  var questionSource services.QuestionSource
  if questionSourceMode == "generative" {
    questionSource = services.NewGenerativeQuestionSource(log, openaiClient)
  } else {
    questionSource = services.NewStoredQuestionSource(log, questionRepo)
  }
  log.Info("Question source configured", "mode", questionSourceMode)

  assessmentService := services.NewAssessmentService(
    log,
    thePG,
    assessmentRepo,
    competencyAssessmentRepo,
    competencyRepo,
    directionRepo,
    technologyRepo,
    questionHistoryRepo,
    questionRepo,
    openaiClient,
    scoringService,
    questionSource,
  )
  tokenVerifier := services.NewUnverifiedClaimsVerifier()
  authService := services.NewAuthService(log, tokenVerifier, userRepo)
  audioService := services.NewAudioService(log, maxAudioMB)
  roadmapService := services.NewRoadmapService(log, roadmapRepo, assessmentRepo, openaiClient)
  catalogService := services.NewCatalogService(log, directionRepo, technologyRepo)
  adminService := services.NewAdminService(log, directionRepo, technologyRepo, competencyRepo)

  // Handlers
  log.Info("Setting up handlers from main...")
  assessmentHandler := handlers.NewAssessmentHandler(log, assessmentService)
  questionHandler := handlers.NewQuestionHandler(log, assessmentService, audioService)
  roadmapHandler := handlers.NewRoadmapHandler(log, roadmapService)
  catalogHandler := handlers.NewCatalogHandler(log, catalogService)
  adminHandler := handlers.NewAdminHandler(log, adminService)

  // Middleware
  log.Info("Setting up middleware from main...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    AuthMiddleware:    authMiddleware,
    AssessmentHandler: assessmentHandler,
    QuestionHandler:   questionHandler,
    RoadmapHandler:    roadmapHandler,
    CatalogHandler:    catalogHandler,
    AdminHandler:      adminHandler,
  })

  log.Info("Starting server", "port", port)
  if err := router.Run(":" + port); err != nil {
    log.Fatal("Server exited", "error", err)
  }
}
