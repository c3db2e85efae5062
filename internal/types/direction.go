package types

import (
	"time"
	"github.com/google/uuid"
)

type Direction struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	DisplayName string    `gorm:"column:display_name" json:"display_name"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Direction) TableName() string { return "direction" }

type Technology struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string     `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Description string     `gorm:"column:description" json:"description"`
	DirectionID *uuid.UUID `gorm:"type:uuid;index" json:"direction_id,omitempty"`
	Direction   *Direction `gorm:"foreignKey:DirectionID;references:ID" json:"direction,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (Technology) TableName() string { return "technology" }
