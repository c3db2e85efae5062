package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/types"
)

type RoadmapRepo interface {
  Create(ctx context.Context, tx *gorm.DB, roadmap *types.Roadmap) (*types.Roadmap, error)
  GetByAssessmentID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) (*types.Roadmap, error)
}

type roadmapRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapRepo {
  return &roadmapRepo{db: db, log: baseLog.With("repo", "RoadmapRepo")}
}

func (r *roadmapRepo) Create(ctx context.Context, tx *gorm.DB, roadmap *types.Roadmap) (*types.Roadmap, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).Create(roadmap).Error; err != nil {
    return nil, err
  }
  return roadmap, nil
}

func (r *roadmapRepo) GetByAssessmentID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) (*types.Roadmap, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var roadmap types.Roadmap
  err := transaction.WithContext(ctx).
    Where("assessment_id = ?", assessmentID).
    First(&roadmap).Error
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &roadmap, nil
}
