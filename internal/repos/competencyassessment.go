package repos

import (
  "context"
  "errors"
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
  "github.com/skillvoice/skillvoice-backend/internal/apierr"
  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/types"
)

type CompetencyAssessmentRepo interface {
  Create(ctx context.Context, tx *gorm.DB, assessmentID, competencyID uuid.UUID) (*types.CompetencyAssessment, error)
  GetByAssessmentAndCompetency(ctx context.Context, tx *gorm.DB, assessmentID, competencyID uuid.UUID) (*types.CompetencyAssessment, error)
  ListByAssessmentID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) ([]*types.CompetencyAssessment, error)
  UpdateEvaluation(ctx context.Context, tx *gorm.DB, competencyAssessmentID uuid.UUID, score int, confidence string, gapAnalysis, sessionData datatypes.JSON) error
}

type competencyAssessmentRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCompetencyAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) CompetencyAssessmentRepo {
  return &competencyAssessmentRepo{db: db, log: baseLog.With("repo", "CompetencyAssessmentRepo")}
}

func (r *competencyAssessmentRepo) Create(ctx context.Context, tx *gorm.DB, assessmentID, competencyID uuid.UUID) (*types.CompetencyAssessment, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  ca := types.CompetencyAssessment{
    AssessmentID: assessmentID,
    CompetencyID: competencyID,
  }
  if err := transaction.WithContext(ctx).Create(&ca).Error; err != nil {
    return nil, err
  }
  return &ca, nil
}

func (r *competencyAssessmentRepo) GetByAssessmentAndCompetency(ctx context.Context, tx *gorm.DB, assessmentID, competencyID uuid.UUID) (*types.CompetencyAssessment, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var ca types.CompetencyAssessment
  err := transaction.WithContext(ctx).
    Preload("Competency").
    Where("assessment_id = ? AND competency_id = ?", assessmentID, competencyID).
    First(&ca).Error
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &ca, nil
}

func (r *competencyAssessmentRepo) ListByAssessmentID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) ([]*types.CompetencyAssessment, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.CompetencyAssessment
  if err := transaction.WithContext(ctx).
    Preload("Competency").
    Where("assessment_id = ?", assessmentID).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// UpdateEvaluation writes the aggregated score in one shot; completed_at is
// stamped alongside the score so a scored competency is always dated.
func (r *competencyAssessmentRepo) UpdateEvaluation(ctx context.Context, tx *gorm.DB, competencyAssessmentID uuid.UUID, score int, confidence string, gapAnalysis, sessionData datatypes.JSON) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  result := transaction.WithContext(ctx).
    Model(&types.CompetencyAssessment{}).
    Where("id = ?", competencyAssessmentID).
    Updates(map[string]any{
      "ai_assessed_score": score,
      "confidence_level":  confidence,
      "gap_analysis":      gapAnalysis,
      "test_session_data": sessionData,
      "completed_at":      time.Now().UTC(),
    })
  if result.Error != nil {
    return result.Error
  }
  if result.RowsAffected == 0 {
    return apierr.NotFound("competency assessment %s not found", competencyAssessmentID)
  }
  return nil
}
