package repos

import (
  "context"
  "errors"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/types"
)

type QuestionRepo interface {
  // FindAvailable returns the least-used bank question matching competency and
  // difficulty, optionally pinned to an ordinal question number, excluding the
  // given ids. Returns (nil, nil) when nothing matches.
  FindAvailable(ctx context.Context, tx *gorm.DB, competencyID uuid.UUID, difficulty int, questionNumber *int, excludeIDs []uuid.UUID) (*types.Question, error)
  // FindByText matches a bank question by competency and exact text, used to
  // tie an answer back to its stored question when the client omits the id.
  // Returns (nil, nil) when no question matches.
  FindByText(ctx context.Context, tx *gorm.DB, competencyID uuid.UUID, questionText string) (*types.Question, error)
  IncrementUsage(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) error
}

type questionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
  return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

func (r *questionRepo) FindAvailable(ctx context.Context, tx *gorm.DB, competencyID uuid.UUID, difficulty int, questionNumber *int, excludeIDs []uuid.UUID) (*types.Question, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  query := transaction.WithContext(ctx).
    Where("competency_id = ? AND difficulty = ?", competencyID, difficulty)
  if questionNumber != nil {
    query = query.Where("question_number = ?", *questionNumber)
  }
  if len(excludeIDs) > 0 {
    query = query.Where("id NOT IN ?", excludeIDs)
  }

  var question types.Question
  err := query.
    Order("used_count ASC").
    Order("created_at ASC").
    First(&question).Error
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &question, nil
}

func (r *questionRepo) FindByText(ctx context.Context, tx *gorm.DB, competencyID uuid.UUID, questionText string) (*types.Question, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var question types.Question
  err := transaction.WithContext(ctx).
    Where("competency_id = ? AND question_text = ?", competencyID, questionText).
    First(&question).Error
  if err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &question, nil
}

func (r *questionRepo) IncrementUsage(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  return transaction.WithContext(ctx).
    Model(&types.Question{}).
    Where("id = ?", questionID).
    UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error
}
