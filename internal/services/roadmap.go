package services

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/datatypes"

  "github.com/skillvoice/skillvoice-backend/internal/apierr"
  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/repos"
  "github.com/skillvoice/skillvoice-backend/internal/types"
)

type RoadmapService interface {
  // GetOrGenerate returns the assessment's roadmap, generating and persisting
  // one on first request. Only completed assessments qualify.
  GetOrGenerate(ctx context.Context, userID, assessmentID uuid.UUID) (*types.Roadmap, error)
}

type roadmapService struct {
  log            *logger.Logger
  roadmapRepo    repos.RoadmapRepo
  assessmentRepo repos.AssessmentRepo
  ai             AIClient
}

func NewRoadmapService(log *logger.Logger, roadmapRepo repos.RoadmapRepo, assessmentRepo repos.AssessmentRepo, ai AIClient) RoadmapService {
  return &roadmapService{
    log:            log.With("service", "RoadmapService"),
    roadmapRepo:    roadmapRepo,
    assessmentRepo: assessmentRepo,
    ai:             ai,
  }
}

func (s *roadmapService) GetOrGenerate(ctx context.Context, userID, assessmentID uuid.UUID) (*types.Roadmap, error) {
  assessment, err := s.assessmentRepo.GetByID(ctx, nil, assessmentID)
  if err != nil {
    return nil, err
  }
  if assessment == nil {
    return nil, apierr.NotFound("assessment not found")
  }
  if assessment.UserID != userID {
    return nil, apierr.AccessDenied("assessment belongs to another user")
  }
  if assessment.Status != types.AssessmentStatusCompleted {
    return nil, apierr.Validation("roadmap requires a completed assessment")
  }

  existing, err := s.roadmapRepo.GetByAssessmentID(ctx, nil, assessmentID)
  if err != nil {
    return nil, err
  }
  if existing != nil {
    return existing, nil
  }

  results := competencyResults(assessment)
  draft, err := s.ai.GenerateRoadmap(ctx, directionName(assessment), results)
  if err != nil {
    return nil, err
  }

  roadmap := &types.Roadmap{
    AssessmentID: assessmentID,
    Title:        draft.Title,
    Description:  draft.Description,
    Sections:     datatypes.JSON(draft.Sections),
  }
  if draft.EstimatedDurationWeeks > 0 {
    weeks := draft.EstimatedDurationWeeks
    roadmap.EstimatedDurationWeeks = &weeks
  }

  created, err := s.roadmapRepo.Create(ctx, nil, roadmap)
  if err != nil {
    return nil, err
  }
  s.log.Info("Roadmap generated", "assessment_id", assessmentID, "roadmap_id", created.ID)
  return created, nil
}

func competencyResults(assessment *types.Assessment) []CompetencyResult {
  results := make([]CompetencyResult, 0, len(assessment.CompetencyAssessments))
  for _, ca := range assessment.CompetencyAssessments {
    if ca.AIAssessedScore == nil {
      continue
    }
    result := CompetencyResult{
      Score:         *ca.AIAssessedScore,
      KnowledgeGaps: []string{},
    }
    if ca.Competency != nil {
      result.CompetencyName = ca.Competency.Name
      result.Description = ca.Competency.Description
    }
    if ca.ConfidenceLevel != nil {
      result.Confidence = *ca.ConfidenceLevel
    }
    if gaps := decodeGapAnalysis(ca.GapAnalysis); gaps != nil {
      result.KnowledgeGaps = gaps
    }
    results = append(results, result)
  }
  return results
}
