package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QuestionHistory is written once per answered question. Question presentation
// is ephemeral; a row exists only after the user submitted an answer, and the
// grading fields are written exactly once.
type QuestionHistory struct {
	ID                     uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CompetencyAssessmentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"competency_assessment_id"`
	QuestionID             *uuid.UUID     `gorm:"type:uuid;index" json:"question_id,omitempty"`
	QuestionText           string         `gorm:"column:question_text;not null" json:"question_text"`
	DifficultyLevel        int            `gorm:"column:difficulty_level;not null;default:3" json:"difficulty_level"`
	Score                  *int           `gorm:"column:score" json:"score,omitempty"`
	IsCorrect              *bool          `gorm:"column:is_correct" json:"is_correct,omitempty"`
	UnderstandingDepth     *string        `gorm:"column:understanding_depth" json:"understanding_depth,omitempty"`
	Feedback               string         `gorm:"column:feedback" json:"feedback"`
	KnowledgeGaps          datatypes.JSON `gorm:"type:jsonb;column:knowledge_gaps" json:"knowledge_gaps,omitempty"`
	NextDifficulty         *int           `gorm:"column:next_difficulty" json:"next_difficulty,omitempty"`
	TimeSpentSeconds       *int           `gorm:"column:time_spent_seconds" json:"time_spent_seconds,omitempty"`
	AskedAt                time.Time      `gorm:"column:asked_at;not null;default:now()" json:"asked_at"`
	AnsweredAt             *time.Time     `gorm:"column:answered_at" json:"answered_at,omitempty"`
}

func (QuestionHistory) TableName() string { return "question_history" }
