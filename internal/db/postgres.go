package db

import (
  "fmt"
  "gorm.io/driver/postgres"
  "gorm.io/gorm"
  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/types"
  "github.com/skillvoice/skillvoice-backend/internal/utils"
)

type PostgresService struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "skillvoice", log)

  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  serviceLog.Info("Connecting to Postgres...")
  gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
  }

  if err := gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
    return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
  }

  return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating postgres tables...")
  err := s.db.AutoMigrate(
    &types.User{},
    &types.Direction{},
    &types.Technology{},
    &types.Competency{},
    &types.DirectionCompetency{},
    &types.TechnologyCompetency{},
    &types.Assessment{},
    &types.CompetencyAssessment{},
    &types.QuestionHistory{},
    &types.Question{},
    &types.Roadmap{},
  )
  if err != nil {
    s.log.Error("Auto migration failed for postgres tables", "error", err)
    return err
  }
  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}
