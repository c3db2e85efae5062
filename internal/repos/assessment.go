package repos

import (
  "context"
  "errors"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/types"
)

// AssessmentFilter narrows ListByUser; nil fields match everything.
type AssessmentFilter struct {
  Status       *string
  DirectionID  *uuid.UUID
  TechnologyID *uuid.UUID
}

type AssessmentRepo interface {
  Create(ctx context.Context, tx *gorm.DB, assessment *types.Assessment) (*types.Assessment, error)
  GetByID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) (*types.Assessment, error)
  ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter AssessmentFilter) ([]*types.Assessment, error)
  UpdateStatus(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID, status string, overallScore *float64) (*types.Assessment, error)
  MaxAttemptNumber(ctx context.Context, tx *gorm.DB, userID uuid.UUID, directionID *uuid.UUID, technologyID *uuid.UUID) (int, error)
}

type assessmentRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
  return &assessmentRepo{db: db, log: baseLog.With("repo", "AssessmentRepo")}
}

func (r *assessmentRepo) Create(ctx context.Context, tx *gorm.DB, assessment *types.Assessment) (*types.Assessment, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).Create(assessment).Error; err != nil {
    return nil, err
  }
  return assessment, nil
}

func (r *assessmentRepo) GetByID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) (*types.Assessment, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var assessment types.Assessment
  err := transaction.WithContext(ctx).
    Preload("Direction").
    Preload("Technology").
    Preload("CompetencyAssessments").
    Preload("CompetencyAssessments.Competency").
    First(&assessment, "id = ?", assessmentID).Error
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &assessment, nil
}

func (r *assessmentRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter AssessmentFilter) ([]*types.Assessment, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  query := transaction.WithContext(ctx).
    Preload("Direction").
    Preload("Technology").
    Where("user_id = ?", userID)
  if filter.Status != nil {
    query = query.Where("status = ?", *filter.Status)
  }
  if filter.DirectionID != nil {
    query = query.Where("direction_id = ?", *filter.DirectionID)
  }
  if filter.TechnologyID != nil {
    query = query.Where("technology_id = ?", *filter.TechnologyID)
  }

  var assessments []*types.Assessment
  if err := query.
    Order("attempt_number DESC").
    Order("started_at DESC").
    Find(&assessments).Error; err != nil {
    return nil, err
  }
  return assessments, nil
}

func (r *assessmentRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID, status string, overallScore *float64) (*types.Assessment, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  updates := map[string]any{"status": status}
  if overallScore != nil {
    updates["overall_score"] = *overallScore
  }
  if status == types.AssessmentStatusCompleted {
    updates["completed_at"] = time.Now().UTC()
  }

  result := transaction.WithContext(ctx).
    Model(&types.Assessment{}).
    Where("id = ?", assessmentID).
    Updates(updates)
  if result.Error != nil {
    return nil, result.Error
  }
  if result.RowsAffected == 0 {
    return nil, gorm.ErrRecordNotFound
  }
  return r.GetByID(ctx, tx, assessmentID)
}

// MaxAttemptNumber returns the highest attempt_number for the user/direction/
// technology triple, 0 when none exist. Read-then-insert of max+1 races under
// concurrent starts; accepted, see the design notes.
func (r *assessmentRepo) MaxAttemptNumber(ctx context.Context, tx *gorm.DB, userID uuid.UUID, directionID *uuid.UUID, technologyID *uuid.UUID) (int, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  query := transaction.WithContext(ctx).
    Model(&types.Assessment{}).
    Where("user_id = ?", userID)
  if directionID != nil {
    query = query.Where("direction_id = ?", *directionID)
  } else {
    query = query.Where("direction_id IS NULL")
  }
  if technologyID != nil {
    query = query.Where("technology_id = ?", *technologyID)
  } else {
    query = query.Where("technology_id IS NULL")
  }

  var maxAttempt *int
  if err := query.Select("MAX(attempt_number)").Scan(&maxAttempt).Error; err != nil {
    return 0, err
  }
  if maxAttempt == nil {
    return 0, nil
  }
  return *maxAttempt, nil
}
