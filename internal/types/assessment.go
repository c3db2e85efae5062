package types

import (
	"time"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	AssessmentStatusInProgress = "in_progress"
	AssessmentStatusCompleted  = "completed"
	AssessmentStatusAbandoned  = "abandoned"
)

const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

const (
	DepthShallow = "shallow"
	DepthMedium  = "medium"
	DepthDeep    = "deep"
)

// Assessment is one attempt by a user to be evaluated across the competency set
// of a direction (optionally narrowed to a technology). CompletedAt is set iff
// the status is completed; completed and abandoned are both terminal.
type Assessment struct {
	ID            uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User       `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	DirectionID   *uuid.UUID  `gorm:"type:uuid;index" json:"direction_id,omitempty"`
	Direction     *Direction  `gorm:"foreignKey:DirectionID;references:ID" json:"direction,omitempty"`
	TechnologyID  *uuid.UUID  `gorm:"type:uuid;index" json:"technology_id,omitempty"`
	Technology    *Technology `gorm:"foreignKey:TechnologyID;references:ID" json:"technology,omitempty"`
	Status        string      `gorm:"column:status;not null;default:'in_progress';index" json:"status"`
	OverallScore  *float64    `gorm:"column:overall_score" json:"overall_score,omitempty"`
	AttemptNumber int         `gorm:"column:attempt_number;not null;default:1" json:"attempt_number"`
	StartedAt     time.Time   `gorm:"column:started_at;not null;default:now()" json:"started_at"`
	CompletedAt   *time.Time  `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CompetencyAssessments []*CompetencyAssessment `gorm:"foreignKey:AssessmentID;references:ID" json:"competency_assessments,omitempty"`
}

func (Assessment) TableName() string { return "assessment" }

// CompetencyAssessment is the running score for one competency inside one
// assessment. Created eagerly at start, mutated only by score aggregation.
type CompetencyAssessment struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AssessmentID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_assessment_competency,unique" json:"assessment_id"`
	CompetencyID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_assessment_competency,unique" json:"competency_id"`
	Competency      *Competency    `gorm:"foreignKey:CompetencyID;references:ID" json:"competency,omitempty"`
	AIAssessedScore *int           `gorm:"column:ai_assessed_score" json:"ai_assessed_score,omitempty"`
	ConfidenceLevel *string        `gorm:"column:confidence_level" json:"confidence_level,omitempty"`
	GapAnalysis     datatypes.JSON `gorm:"type:jsonb;column:gap_analysis" json:"gap_analysis,omitempty"`
	TestSessionData datatypes.JSON `gorm:"type:jsonb;column:test_session_data" json:"test_session_data,omitempty"`
	CompletedAt     *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (CompetencyAssessment) TableName() string { return "competency_assessment" }
