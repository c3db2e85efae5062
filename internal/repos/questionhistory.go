package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/skillvoice/skillvoice-backend/internal/apierr"
  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/types"
)

// AnswerUpdate carries the grading outputs written exactly once per history row.
type AnswerUpdate struct {
  Score              int
  IsCorrect          bool
  UnderstandingDepth string
  Feedback           string
  KnowledgeGaps      []string
  NextDifficulty     int
  TimeSpentSeconds   *int
}

type QuestionHistoryRepo interface {
  Create(ctx context.Context, tx *gorm.DB, entry *types.QuestionHistory) (*types.QuestionHistory, error)
  UpdateAnswer(ctx context.Context, tx *gorm.DB, historyID uuid.UUID, update AnswerUpdate) error
  ListByCompetencyAssessment(ctx context.Context, tx *gorm.DB, competencyAssessmentID uuid.UUID) ([]*types.QuestionHistory, error)
  UsedQuestionIDs(ctx context.Context, tx *gorm.DB, competencyAssessmentID uuid.UUID) ([]uuid.UUID, error)
}

type questionHistoryRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewQuestionHistoryRepo(db *gorm.DB, baseLog *logger.Logger) QuestionHistoryRepo {
  return &questionHistoryRepo{db: db, log: baseLog.With("repo", "QuestionHistoryRepo")}
}

func (r *questionHistoryRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.QuestionHistory) (*types.QuestionHistory, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
    return nil, err
  }
  return entry, nil
}

func (r *questionHistoryRepo) UpdateAnswer(ctx context.Context, tx *gorm.DB, historyID uuid.UUID, update AnswerUpdate) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  gaps, err := marshalStringList(update.KnowledgeGaps)
  if err != nil {
    return err
  }

  updates := map[string]any{
    "score":               update.Score,
    "is_correct":          update.IsCorrect,
    "understanding_depth": update.UnderstandingDepth,
    "feedback":            update.Feedback,
    "knowledge_gaps":      gaps,
    "next_difficulty":     update.NextDifficulty,
    "answered_at":         time.Now().UTC(),
  }
  if update.TimeSpentSeconds != nil {
    updates["time_spent_seconds"] = *update.TimeSpentSeconds
  }

  result := transaction.WithContext(ctx).
    Model(&types.QuestionHistory{}).
    Where("id = ?", historyID).
    Updates(updates)
  if result.Error != nil {
    return result.Error
  }
  if result.RowsAffected == 0 {
    return apierr.NotFound("question history %s not found", historyID)
  }
  return nil
}

func (r *questionHistoryRepo) ListByCompetencyAssessment(ctx context.Context, tx *gorm.DB, competencyAssessmentID uuid.UUID) ([]*types.QuestionHistory, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var entries []*types.QuestionHistory
  if err := transaction.WithContext(ctx).
    Where("competency_assessment_id = ?", competencyAssessmentID).
    Order("asked_at ASC").
    Find(&entries).Error; err != nil {
    return nil, err
  }
  return entries, nil
}

// UsedQuestionIDs collects the bank-question ids already answered in this
// competency assessment so selection never repeats them.
func (r *questionHistoryRepo) UsedQuestionIDs(ctx context.Context, tx *gorm.DB, competencyAssessmentID uuid.UUID) ([]uuid.UUID, error) {
  entries, err := r.ListByCompetencyAssessment(ctx, tx, competencyAssessmentID)
  if err != nil {
    return nil, err
  }
  used := make([]uuid.UUID, 0, len(entries))
  for _, entry := range entries {
    if entry.QuestionID != nil {
      used = append(used, *entry.QuestionID)
    }
  }
  return used, nil
}
