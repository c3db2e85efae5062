package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/types"
)

type CompetencyRepo interface {
  GetByIDs(ctx context.Context, tx *gorm.DB, competencyIDs []uuid.UUID) ([]*types.Competency, error)
  ListByDirectionID(ctx context.Context, tx *gorm.DB, directionID uuid.UUID) ([]*types.Competency, error)
  ListByTechnologyID(ctx context.Context, tx *gorm.DB, technologyID uuid.UUID) ([]*types.Competency, error)
  // LinkToDirection and LinkToTechnology upsert the join row; re-linking an
  // already linked pair is a no-op, not an error.
  LinkToDirection(ctx context.Context, tx *gorm.DB, directionID, competencyID uuid.UUID, orderIndex int) error
  LinkToTechnology(ctx context.Context, tx *gorm.DB, technologyID, competencyID uuid.UUID, orderIndex int) error
}

type competencyRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewCompetencyRepo(db *gorm.DB, baseLog *logger.Logger) CompetencyRepo {
  return &competencyRepo{db: db, log: baseLog.With("repo", "CompetencyRepo")}
}

func (r *competencyRepo) GetByIDs(ctx context.Context, tx *gorm.DB, competencyIDs []uuid.UUID) ([]*types.Competency, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Competency
  if len(competencyIDs) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", competencyIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *competencyRepo) ListByDirectionID(ctx context.Context, tx *gorm.DB, directionID uuid.UUID) ([]*types.Competency, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var rows []*types.DirectionCompetency
  if err := transaction.WithContext(ctx).
    Preload("Competency").
    Where("direction_id = ?", directionID).
    Order("order_index ASC").
    Find(&rows).Error; err != nil {
    return nil, err
  }
  return collectCompetencies(len(rows), func(i int) *types.Competency { return rows[i].Competency }), nil
}

func (r *competencyRepo) ListByTechnologyID(ctx context.Context, tx *gorm.DB, technologyID uuid.UUID) ([]*types.Competency, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var rows []*types.TechnologyCompetency
  if err := transaction.WithContext(ctx).
    Preload("Competency").
    Where("technology_id = ?", technologyID).
    Order("order_index ASC").
    Find(&rows).Error; err != nil {
    return nil, err
  }
  return collectCompetencies(len(rows), func(i int) *types.Competency { return rows[i].Competency }), nil
}

func (r *competencyRepo) LinkToDirection(ctx context.Context, tx *gorm.DB, directionID, competencyID uuid.UUID, orderIndex int) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  row := types.DirectionCompetency{
    DirectionID:  directionID,
    CompetencyID: competencyID,
    OrderIndex:   orderIndex,
  }
  return transaction.WithContext(ctx).
    Where("direction_id = ? AND competency_id = ?", directionID, competencyID).
    FirstOrCreate(&row).Error
}

func (r *competencyRepo) LinkToTechnology(ctx context.Context, tx *gorm.DB, technologyID, competencyID uuid.UUID, orderIndex int) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  row := types.TechnologyCompetency{
    TechnologyID: technologyID,
    CompetencyID: competencyID,
    OrderIndex:   orderIndex,
  }
  return transaction.WithContext(ctx).
    Where("technology_id = ? AND competency_id = ?", technologyID, competencyID).
    FirstOrCreate(&row).Error
}

// collectCompetencies drops join rows whose competency relation failed to load,
// so callers never see half-populated entries.
func collectCompetencies(n int, at func(i int) *types.Competency) []*types.Competency {
  out := make([]*types.Competency, 0, n)
  for i := 0; i < n; i++ {
    if c := at(i); c != nil && c.ID != uuid.Nil {
      out = append(out, c)
    }
  }
  return out
}
