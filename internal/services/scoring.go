package services

import (
  "context"
  "encoding/json"
  "math"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/repos"
  "github.com/skillvoice/skillvoice-backend/internal/types"
)

// SessionAggregate is the fold of one competency assessment's answered history:
// rounded score, confidence tier and the deduplicated set of knowledge gaps.
type SessionAggregate struct {
  FinalScore     int
  Confidence     string
  KnowledgeGaps  []string
  QuestionsCount int
  AnsweredCount  int
  AverageScore   float64
}

// AggregateHistory folds the ordered history entries of one competency
// assessment. Only entries carrying a score count as answered. With no
// answered entries it returns score 0 and an empty confidence instead of
// failing; callers should not persist that degenerate result.
func AggregateHistory(entries []*types.QuestionHistory) SessionAggregate {
  agg := SessionAggregate{
    QuestionsCount: len(entries),
    KnowledgeGaps:  []string{},
  }

  total := 0
  seen := map[string]bool{}
  for _, entry := range entries {
    if entry == nil || entry.Score == nil {
      continue
    }
    agg.AnsweredCount++
    total += *entry.Score
    for _, gap := range decodeGaps(entry.KnowledgeGaps) {
      if gap == "" || seen[gap] {
        continue
      }
      seen[gap] = true
      agg.KnowledgeGaps = append(agg.KnowledgeGaps, gap)
    }
  }

  if agg.AnsweredCount == 0 {
    return agg
  }

  agg.AverageScore = float64(total) / float64(agg.AnsweredCount)
  agg.FinalScore = clampScore(roundHalfUp(agg.AverageScore))
  agg.Confidence = confidenceForCount(agg.AnsweredCount)
  return agg
}

// roundHalfUp rounds .5 away from zero; math.Round does the same for the
// positive score domain but the intent is spelled out here.
func roundHalfUp(v float64) int {
  return int(math.Floor(v + 0.5))
}

func clampScore(score int) int {
  if score < 1 {
    return 1
  }
  if score > 5 {
    return 5
  }
  return score
}

func confidenceForCount(answered int) string {
  switch {
  case answered >= 5:
    return types.ConfidenceHigh
  case answered >= 3:
    return types.ConfidenceMedium
  default:
    return types.ConfidenceLow
  }
}

func decodeGaps(raw datatypes.JSON) []string {
  if len(raw) == 0 {
    return nil
  }
  var gaps []string
  if err := json.Unmarshal(raw, &gaps); err != nil {
    return nil
  }
  return gaps
}

type gapAnalysisDoc struct {
  KnowledgeGaps []string `json:"knowledgeGaps"`
}

type sessionStatsDoc struct {
  QuestionsCount int     `json:"questionsCount"`
  AnsweredCount  int     `json:"answeredCount"`
  AverageScore   float64 `json:"averageScore"`
}

func decodeGapAnalysis(raw datatypes.JSON) []string {
  if len(raw) == 0 {
    return nil
  }
  var doc gapAnalysisDoc
  if err := json.Unmarshal(raw, &doc); err != nil {
    return nil
  }
  return doc.KnowledgeGaps
}

func decodeSessionStats(raw datatypes.JSON) *sessionStatsDoc {
  if len(raw) == 0 {
    return nil
  }
  var doc sessionStatsDoc
  if err := json.Unmarshal(raw, &doc); err != nil {
    return nil
  }
  return &doc
}

// ScoringService re-derives and persists a competency assessment's running
// state from its full history. Deterministic for a given history, so rerunning
// it is idempotent.
type ScoringService interface {
  RefreshCompetencyAssessment(ctx context.Context, tx *gorm.DB, competencyAssessmentID uuid.UUID) (*SessionAggregate, error)
}

type scoringService struct {
  log         *logger.Logger
  historyRepo repos.QuestionHistoryRepo
  caRepo      repos.CompetencyAssessmentRepo
}

func NewScoringService(log *logger.Logger, historyRepo repos.QuestionHistoryRepo, caRepo repos.CompetencyAssessmentRepo) ScoringService {
  return &scoringService{
    log:         log.With("service", "ScoringService"),
    historyRepo: historyRepo,
    caRepo:      caRepo,
  }
}

func (s *scoringService) RefreshCompetencyAssessment(ctx context.Context, tx *gorm.DB, competencyAssessmentID uuid.UUID) (*SessionAggregate, error) {
  entries, err := s.historyRepo.ListByCompetencyAssessment(ctx, tx, competencyAssessmentID)
  if err != nil {
    return nil, err
  }

  agg := AggregateHistory(entries)
  if agg.AnsweredCount == 0 {
    s.log.Debug("No answered entries to aggregate", "competency_assessment_id", competencyAssessmentID)
    return &agg, nil
  }

  gapAnalysis, err := json.Marshal(gapAnalysisDoc{KnowledgeGaps: agg.KnowledgeGaps})
  if err != nil {
    return nil, err
  }
  sessionData, err := json.Marshal(sessionStatsDoc{
    QuestionsCount: agg.QuestionsCount,
    AnsweredCount:  agg.AnsweredCount,
    AverageScore:   agg.AverageScore,
  })
  if err != nil {
    return nil, err
  }

  if err := s.caRepo.UpdateEvaluation(ctx, tx, competencyAssessmentID, agg.FinalScore, agg.Confidence, gapAnalysis, sessionData); err != nil {
    return nil, err
  }

  s.log.Info("Updated competency assessment",
    "competency_assessment_id", competencyAssessmentID,
    "final_score", agg.FinalScore,
    "confidence", agg.Confidence,
    "answered", agg.AnsweredCount,
    "questions", agg.QuestionsCount,
  )
  return &agg, nil
}
