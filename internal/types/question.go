package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Question is a reusable bank item. UsedCount is bumped on every presentation
// so selection can load-balance reuse across all assessments.
type Question struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CompetencyID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"competency_id"`
	Competency          *Competency    `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompetencyID;references:ID" json:"competency,omitempty"`
	QuestionText        string         `gorm:"column:question_text;not null" json:"question_text"`
	Difficulty          int            `gorm:"column:difficulty;not null;default:3;index" json:"difficulty"`
	QuestionNumber      *int           `gorm:"column:question_number" json:"question_number,omitempty"`
	UsedCount           int            `gorm:"column:used_count;not null;default:0" json:"used_count"`
	ExpectedKeyPoints   datatypes.JSON `gorm:"type:jsonb;column:expected_key_points" json:"expected_key_points,omitempty"`
	EstimatedAnswerTime string         `gorm:"column:estimated_answer_time" json:"estimated_answer_time"`
	CreatedAt           time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (Question) TableName() string { return "question" }
