package repos

import (
  "context"
  "errors"
  "strings"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/skillvoice/skillvoice-backend/internal/apierr"
  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/types"
)

type TechnologyRepo interface {
  FindOrCreateByName(ctx context.Context, tx *gorm.DB, name, description string, directionID *uuid.UUID) (*types.Technology, error)
  GetByID(ctx context.Context, tx *gorm.DB, technologyID uuid.UUID) (*types.Technology, error)
  // AssignDirection points an existing technology at a direction. Returns the
  // updated row; missing technology surfaces as apierr.NotFound.
  AssignDirection(ctx context.Context, tx *gorm.DB, technologyID, directionID uuid.UUID) (*types.Technology, error)
  ListByDirectionID(ctx context.Context, tx *gorm.DB, directionID uuid.UUID) ([]*types.Technology, error)
}

type technologyRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewTechnologyRepo(db *gorm.DB, baseLog *logger.Logger) TechnologyRepo {
  return &technologyRepo{db: db, log: baseLog.With("repo", "TechnologyRepo")}
}

func (r *technologyRepo) FindOrCreateByName(ctx context.Context, tx *gorm.DB, name, description string, directionID *uuid.UUID) (*types.Technology, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  normalized := strings.ToLower(strings.TrimSpace(name))

  var technology types.Technology
  err := transaction.WithContext(ctx).First(&technology, "name = ?", normalized).Error
  if err == nil {
    return &technology, nil
  }
  if !errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, err
  }

  technology = types.Technology{
    Name:        normalized,
    Description: strings.TrimSpace(description),
    DirectionID: directionID,
  }
  if cErr := transaction.WithContext(ctx).Create(&technology).Error; cErr != nil {
    return nil, cErr
  }
  r.log.Info("Created technology", "name", normalized)
  return &technology, nil
}

func (r *technologyRepo) GetByID(ctx context.Context, tx *gorm.DB, technologyID uuid.UUID) (*types.Technology, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var technology types.Technology
  if err := transaction.WithContext(ctx).First(&technology, "id = ?", technologyID).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &technology, nil
}

func (r *technologyRepo) AssignDirection(ctx context.Context, tx *gorm.DB, technologyID, directionID uuid.UUID) (*types.Technology, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  result := transaction.WithContext(ctx).
    Model(&types.Technology{}).
    Where("id = ?", technologyID).
    Update("direction_id", directionID)
  if result.Error != nil {
    return nil, result.Error
  }
  if result.RowsAffected == 0 {
    return nil, apierr.NotFound("technology not found")
  }
  return r.GetByID(ctx, transaction, technologyID)
}

func (r *technologyRepo) ListByDirectionID(ctx context.Context, tx *gorm.DB, directionID uuid.UUID) ([]*types.Technology, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var technologies []*types.Technology
  if err := transaction.WithContext(ctx).
    Where("direction_id = ?", directionID).
    Order("name ASC").
    Find(&technologies).Error; err != nil {
    return nil, err
  }
  return technologies, nil
}
