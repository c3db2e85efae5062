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

type UserRepo interface {
  GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error)
  GetOrCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, email string) (*types.User, error)
}

type userRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
  return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var user types.User
  if err := transaction.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    return nil, err
  }
  return &user, nil
}

// GetOrCreate provisions unknown users on first use and stamps last_login for
// returning ones. The id comes from the caller's token subject, never generated.
func (r *userRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, email string) (*types.User, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  now := time.Now().UTC()

  var user types.User
  err := transaction.WithContext(ctx).First(&user, "id = ?", userID).Error
  if err == nil {
    if uErr := transaction.WithContext(ctx).
      Model(&types.User{}).
      Where("id = ?", userID).
      Update("last_login", now).Error; uErr != nil {
      r.log.Warn("Failed to stamp last_login", "user_id", userID, "error", uErr)
    }
    return &user, nil
  }
  if !errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, err
  }

  if email == "" {
    email = "user-" + userID.String() + "@placeholder.local"
  }
  user = types.User{
    ID:        userID,
    Email:     email,
    LastLogin: &now,
  }
  if cErr := transaction.WithContext(ctx).Create(&user).Error; cErr != nil {
    return nil, cErr
  }
  r.log.Info("Provisioned new user", "user_id", userID)
  return &user, nil
}
