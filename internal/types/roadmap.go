package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Roadmap is the generated learning plan for a completed assessment. Sections
// keep the model output as one jsonb document; the backend never edits them.
type Roadmap struct {
	ID                     uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AssessmentID           uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"assessment_id"`
	Title                  string         `gorm:"column:title;not null" json:"title"`
	Description            string         `gorm:"column:description" json:"description"`
	EstimatedDurationWeeks *int           `gorm:"column:estimated_duration_weeks" json:"estimated_duration_weeks,omitempty"`
	Status                 string         `gorm:"column:status;not null;default:'active'" json:"status"`
	Sections               datatypes.JSON `gorm:"type:jsonb;column:sections" json:"sections,omitempty"`
	CreatedAt              time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (Roadmap) TableName() string { return "roadmap" }
