package types

import (
	"time"
	"github.com/google/uuid"
)

type Competency struct {
	ID               uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name             string    `gorm:"not null;index;column:name" json:"name"`
	Description      string    `gorm:"column:description" json:"description"`
	Category         string    `gorm:"column:category" json:"category"`
	ImportanceWeight int       `gorm:"column:importance_weight;not null;default:1" json:"importance_weight"`
	OrderIndex       int       `gorm:"column:order_index;not null;default:0" json:"order_index"`
	CreatedAt        time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Competency) TableName() string { return "competency" }

// DirectionCompetency scopes a competency to a whole direction; used when an
// assessment is started without naming a technology.
type DirectionCompetency struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DirectionID  uuid.UUID   `gorm:"type:uuid;not null;index:idx_direction_competency,unique" json:"direction_id"`
	Direction    *Direction  `gorm:"constraint:OnDelete:CASCADE;foreignKey:DirectionID;references:ID" json:"direction,omitempty"`
	CompetencyID uuid.UUID   `gorm:"type:uuid;not null;index:idx_direction_competency,unique" json:"competency_id"`
	Competency   *Competency `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompetencyID;references:ID" json:"competency,omitempty"`
	OrderIndex   int         `gorm:"column:order_index;not null;default:0" json:"order_index"`
}

func (DirectionCompetency) TableName() string { return "direction_competency" }

type TechnologyCompetency struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TechnologyID uuid.UUID   `gorm:"type:uuid;not null;index:idx_technology_competency,unique" json:"technology_id"`
	Technology   *Technology `gorm:"constraint:OnDelete:CASCADE;foreignKey:TechnologyID;references:ID" json:"technology,omitempty"`
	CompetencyID uuid.UUID   `gorm:"type:uuid;not null;index:idx_technology_competency,unique" json:"competency_id"`
	Competency   *Competency `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompetencyID;references:ID" json:"competency,omitempty"`
	OrderIndex   int         `gorm:"column:order_index;not null;default:0" json:"order_index"`
}

func (TechnologyCompetency) TableName() string { return "technology_competency" }
