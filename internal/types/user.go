package types

import (
	"time"
	"github.com/google/uuid"
)

// User rows are provisioned implicitly from the bearer token subject, so the
// primary key comes from the identity provider rather than a DB default.
type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	FullName  string     `gorm:"column:full_name" json:"full_name"`
	CreatedAt time.Time  `gorm:"not null;default:now()" json:"created_at"`
	LastLogin *time.Time `gorm:"column:last_login" json:"last_login,omitempty"`
}

func (User) TableName() string { return "user" }
