package repos

import (
  "context"
  "errors"
  "strings"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/types"
)

type DirectionRepo interface {
  FindOrCreateByName(ctx context.Context, tx *gorm.DB, name, displayName, description string) (*types.Direction, error)
  GetByID(ctx context.Context, tx *gorm.DB, directionID uuid.UUID) (*types.Direction, error)
  ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Direction, error)
}

type directionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewDirectionRepo(db *gorm.DB, baseLog *logger.Logger) DirectionRepo {
  return &directionRepo{db: db, log: baseLog.With("repo", "DirectionRepo")}
}

// Direction names are stored lowercase; the display name keeps the caller's casing.
func (r *directionRepo) FindOrCreateByName(ctx context.Context, tx *gorm.DB, name, displayName, description string) (*types.Direction, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  normalized := strings.ToLower(strings.TrimSpace(name))

  var direction types.Direction
  err := transaction.WithContext(ctx).First(&direction, "name = ?", normalized).Error
  if err == nil {
    return &direction, nil
  }
  if !errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, err
  }

  direction = types.Direction{
    Name:        normalized,
    DisplayName: strings.TrimSpace(displayName),
    Description: strings.TrimSpace(description),
  }
  if cErr := transaction.WithContext(ctx).Create(&direction).Error; cErr != nil {
    return nil, cErr
  }
  r.log.Info("Created direction", "name", normalized)
  return &direction, nil
}

func (r *directionRepo) GetByID(ctx context.Context, tx *gorm.DB, directionID uuid.UUID) (*types.Direction, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var direction types.Direction
  if err := transaction.WithContext(ctx).First(&direction, "id = ?", directionID).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &direction, nil
}

func (r *directionRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Direction, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var directions []*types.Direction
  if err := transaction.WithContext(ctx).Order("name ASC").Find(&directions).Error; err != nil {
    return nil, err
  }
  return directions, nil
}
