package services

import (
  "context"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/skillvoice/skillvoice-backend/internal/apierr"
  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/repos"
  "github.com/skillvoice/skillvoice-backend/internal/types"
)

type StartInput struct {
  DirectionName  string
  TechnologyName string
}

// CreationReport records the per-competency outcome of assessment start.
// Competencies are independent, so one broken row is logged and skipped
// instead of aborting the whole start.
type CreationReport struct {
  Succeeded []uuid.UUID
  Failed    []CreationFailure
}

type CreationFailure struct {
  CompetencyID uuid.UUID
  Reason       string
}

type StartResult struct {
  Assessment   *types.Assessment
  Competencies []*types.Competency
  Report       CreationReport
}

// AssessmentDetail is the normalized read view. Absent relations come back as
// empty strings and empty slices, never nil pointers the caller has to check.
type AssessmentDetail struct {
  ID             uuid.UUID           `json:"id"`
  Status         string              `json:"status"`
  DirectionName  string              `json:"direction_name"`
  TechnologyName string              `json:"technology_name"`
  OverallScore   *float64            `json:"overall_score"`
  AttemptNumber  int                 `json:"attempt_number"`
  StartedAt      string              `json:"started_at"`
  CompletedAt    *string             `json:"completed_at"`
  Competencies   []CompetencyDetail  `json:"competencies"`
}

type CompetencyDetail struct {
  CompetencyID   uuid.UUID `json:"competency_id"`
  Name           string    `json:"name"`
  Category       string    `json:"category"`
  Score          *int      `json:"score"`
  Confidence     string    `json:"confidence"`
  KnowledgeGaps  []string  `json:"knowledge_gaps"`
  QuestionsCount int       `json:"questions_count"`
  AnsweredCount  int       `json:"answered_count"`
  Completed      bool      `json:"completed"`
}

type CompleteResult struct {
  Assessment       *types.Assessment
  AlreadyCompleted bool
}

type QuestionRequest struct {
  CompetencyID   uuid.UUID
  QuestionNumber int
  Difficulty     *int
}

type AnswerInput struct {
  CompetencyID uuid.UUID
  QuestionID   *uuid.UUID
  QuestionText string
  Difficulty   int
  AudioPath    string
}

type AnswerResult struct {
  Transcript              string
  Evaluation              *AnswerEvaluation
  Aggregate               *SessionAggregate
  AssessmentAutoCompleted bool
  OverallScore            *float64
}

type AssessmentService interface {
  Start(ctx context.Context, userID uuid.UUID, input StartInput) (*StartResult, error)
  List(ctx context.Context, userID uuid.UUID, filter repos.AssessmentFilter) ([]*types.Assessment, error)
  Get(ctx context.Context, userID, assessmentID uuid.UUID) (*AssessmentDetail, error)
  Complete(ctx context.Context, userID, assessmentID uuid.UUID) (*CompleteResult, error)
  Abandon(ctx context.Context, userID, assessmentID uuid.UUID) (*types.Assessment, error)
  Restart(ctx context.Context, userID, assessmentID uuid.UUID) (*StartResult, error)
  GetQuestion(ctx context.Context, userID, assessmentID uuid.UUID, req QuestionRequest) (*QuestionResult, error)
  SubmitAnswer(ctx context.Context, userID, assessmentID uuid.UUID, input AnswerInput) (*AnswerResult, error)
}

type assessmentService struct {
  log            *logger.Logger
  db             *gorm.DB
  assessmentRepo repos.AssessmentRepo
  caRepo         repos.CompetencyAssessmentRepo
  competencyRepo repos.CompetencyRepo
  directionRepo  repos.DirectionRepo
  technologyRepo repos.TechnologyRepo
  historyRepo    repos.QuestionHistoryRepo
  questionRepo   repos.QuestionRepo
  ai             AIClient
  scoring        ScoringService
  questionSource QuestionSource
}

func NewAssessmentService(
  log *logger.Logger,
  db *gorm.DB,
  assessmentRepo repos.AssessmentRepo,
  caRepo repos.CompetencyAssessmentRepo,
  competencyRepo repos.CompetencyRepo,
  directionRepo repos.DirectionRepo,
  technologyRepo repos.TechnologyRepo,
  historyRepo repos.QuestionHistoryRepo,
  questionRepo repos.QuestionRepo,
  ai AIClient,
  scoring ScoringService,
  questionSource QuestionSource,
) AssessmentService {
  return &assessmentService{
    log:            log.With("service", "AssessmentService"),
    db:             db,
    assessmentRepo: assessmentRepo,
    caRepo:         caRepo,
    competencyRepo: competencyRepo,
    directionRepo:  directionRepo,
    technologyRepo: technologyRepo,
    historyRepo:    historyRepo,
    questionRepo:   questionRepo,
    ai:             ai,
    scoring:        scoring,
    questionSource: questionSource,
  }
}

func (s *assessmentService) Start(ctx context.Context, userID uuid.UUID, input StartInput) (*StartResult, error) {
  directionName := strings.TrimSpace(input.DirectionName)
  if directionName == "" {
    return nil, apierr.Validation("direction is required")
  }

  direction, err := s.directionRepo.FindOrCreateByName(ctx, nil, directionName, directionName, "")
  if err != nil {
    return nil, err
  }

  var technology *types.Technology
  var competencies []*types.Competency
  if name := strings.TrimSpace(input.TechnologyName); name != "" {
    technology, err = s.technologyRepo.FindOrCreateByName(ctx, nil, name, "", &direction.ID)
    if err != nil {
      return nil, err
    }
    competencies, err = s.competencyRepo.ListByTechnologyID(ctx, nil, technology.ID)
  } else {
    competencies, err = s.competencyRepo.ListByDirectionID(ctx, nil, direction.ID)
  }
  if err != nil {
    return nil, err
  }
  if len(competencies) == 0 {
    return nil, apierr.Validation("no competencies configured for the requested direction")
  }

  var technologyID *uuid.UUID
  if technology != nil {
    technologyID = &technology.ID
  }

  // Read max then insert max+1. Racy under concurrent starts for the same
  // user and direction; see DESIGN.md.
  maxAttempt, err := s.assessmentRepo.MaxAttemptNumber(ctx, nil, userID, &direction.ID, technologyID)
  if err != nil {
    return nil, err
  }

  assessment, err := s.assessmentRepo.Create(ctx, nil, &types.Assessment{
    UserID:        userID,
    DirectionID:   &direction.ID,
    TechnologyID:  technologyID,
    Status:        types.AssessmentStatusInProgress,
    AttemptNumber: maxAttempt + 1,
  })
  if err != nil {
    return nil, err
  }

  report := CreationReport{Succeeded: []uuid.UUID{}, Failed: []CreationFailure{}}
  kept := make([]*types.Competency, 0, len(competencies))
  for _, competency := range competencies {
    if _, err := s.caRepo.Create(ctx, nil, assessment.ID, competency.ID); err != nil {
      s.log.Error("Failed to create competency assessment",
        "assessment_id", assessment.ID,
        "competency_id", competency.ID,
        "error", err,
      )
      report.Failed = append(report.Failed, CreationFailure{CompetencyID: competency.ID, Reason: err.Error()})
      continue
    }
    report.Succeeded = append(report.Succeeded, competency.ID)
    kept = append(kept, competency)
  }

  assessment.Direction = direction
  assessment.Technology = technology

  s.log.Info("Assessment started",
    "assessment_id", assessment.ID,
    "user_id", userID,
    "direction", direction.Name,
    "attempt_number", assessment.AttemptNumber,
    "competencies", len(report.Succeeded),
    "failed", len(report.Failed),
  )

  return &StartResult{Assessment: assessment, Competencies: kept, Report: report}, nil
}

func (s *assessmentService) List(ctx context.Context, userID uuid.UUID, filter repos.AssessmentFilter) ([]*types.Assessment, error) {
  return s.assessmentRepo.ListByUser(ctx, nil, userID, filter)
}

func (s *assessmentService) Get(ctx context.Context, userID, assessmentID uuid.UUID) (*AssessmentDetail, error) {
  assessment, err := s.getOwned(ctx, userID, assessmentID)
  if err != nil {
    return nil, err
  }
  return buildDetail(assessment), nil
}

func (s *assessmentService) Complete(ctx context.Context, userID, assessmentID uuid.UUID) (*CompleteResult, error) {
  assessment, err := s.getOwned(ctx, userID, assessmentID)
  if err != nil {
    return nil, err
  }
  return s.complete(ctx, assessment)
}

// complete assumes ownership has already been verified. Re-completion is a
// no-op success so that retries and racing auto-completions stay harmless.
func (s *assessmentService) complete(ctx context.Context, assessment *types.Assessment) (*CompleteResult, error) {
  if assessment.Status == types.AssessmentStatusCompleted {
    return &CompleteResult{Assessment: assessment, AlreadyCompleted: true}, nil
  }
  if assessment.Status == types.AssessmentStatusAbandoned {
    return nil, apierr.Validation("cannot complete an abandoned assessment")
  }

  overall := weightedOverallScore(assessment.CompetencyAssessments)
  if overall == 0 {
    s.log.Warn("Completing assessment with no scored competencies", "assessment_id", assessment.ID)
  }

  updated, err := s.assessmentRepo.UpdateStatus(ctx, nil, assessment.ID, types.AssessmentStatusCompleted, &overall)
  if err != nil {
    return nil, err
  }
  updated.Direction = assessment.Direction
  updated.Technology = assessment.Technology
  updated.CompetencyAssessments = assessment.CompetencyAssessments

  s.log.Info("Assessment completed", "assessment_id", assessment.ID, "overall_score", overall)
  return &CompleteResult{Assessment: updated}, nil
}

func (s *assessmentService) Abandon(ctx context.Context, userID, assessmentID uuid.UUID) (*types.Assessment, error) {
  assessment, err := s.getOwned(ctx, userID, assessmentID)
  if err != nil {
    return nil, err
  }
  if assessment.Status == types.AssessmentStatusCompleted {
    return nil, apierr.Validation("cannot abandon a completed assessment")
  }
  if assessment.Status == types.AssessmentStatusAbandoned {
    return assessment, nil
  }

  updated, err := s.assessmentRepo.UpdateStatus(ctx, nil, assessment.ID, types.AssessmentStatusAbandoned, nil)
  if err != nil {
    return nil, err
  }
  s.log.Info("Assessment abandoned", "assessment_id", assessment.ID)
  return updated, nil
}

func (s *assessmentService) Restart(ctx context.Context, userID, assessmentID uuid.UUID) (*StartResult, error) {
  assessment, err := s.getOwned(ctx, userID, assessmentID)
  if err != nil {
    return nil, err
  }
  if assessment.Direction == nil {
    return nil, apierr.Validation("assessment carries no direction and cannot be restarted")
  }

  input := StartInput{DirectionName: assessment.Direction.Name}
  if assessment.Technology != nil {
    input.TechnologyName = assessment.Technology.Name
  }
  return s.Start(ctx, userID, input)
}

func (s *assessmentService) GetQuestion(ctx context.Context, userID, assessmentID uuid.UUID, req QuestionRequest) (*QuestionResult, error) {
  assessment, err := s.getOwned(ctx, userID, assessmentID)
  if err != nil {
    return nil, err
  }

  ca, competency, err := s.resolveCompetency(ctx, assessment, req.CompetencyID)
  if err != nil {
    return nil, err
  }

  history, err := s.historyRepo.ListByCompetencyAssessment(ctx, nil, ca.ID)
  if err != nil {
    return nil, err
  }
  used, err := s.historyRepo.UsedQuestionIDs(ctx, nil, ca.ID)
  if err != nil {
    return nil, err
  }

  difficulty := CurrentDifficulty(history)
  if req.Difficulty != nil && *req.Difficulty >= 1 && *req.Difficulty <= 5 {
    difficulty = *req.Difficulty
  }
  questionNumber := req.QuestionNumber
  if questionNumber < 1 {
    questionNumber = len(history) + 1
  }

  return s.questionSource.Select(ctx, SelectionRequest{
    CompetencyID:          competency.ID,
    CompetencyName:        competency.Name,
    CompetencyDescription: competency.Description,
    DirectionName:         directionName(assessment),
    Difficulty:            difficulty,
    QuestionNumber:        questionNumber,
    History:               history,
    UsedQuestionIDs:       used,
  })
}

func (s *assessmentService) SubmitAnswer(ctx context.Context, userID, assessmentID uuid.UUID, input AnswerInput) (*AnswerResult, error) {
  assessment, err := s.getOwned(ctx, userID, assessmentID)
  if err != nil {
    return nil, err
  }
  if assessment.Status != types.AssessmentStatusInProgress {
    return nil, apierr.Validation("assessment is not in progress")
  }

  ca, competency, err := s.resolveCompetency(ctx, assessment, input.CompetencyID)
  if err != nil {
    return nil, err
  }

  transcription, err := s.ai.TranscribeAudio(ctx, input.AudioPath)
  if err != nil {
    return nil, err
  }

  difficulty := input.Difficulty
  if difficulty < 1 || difficulty > 5 {
    difficulty = DefaultDifficulty
  }

  evaluation, err := s.ai.EvaluateAnswer(ctx, input.QuestionText, transcription.Text, competency.Name, difficulty)
  if err != nil {
    return nil, err
  }

  questionID := s.resolveQuestionID(ctx, competency.ID, input)

  // History row first, then the evaluation update, then aggregation: the
  // aggregator reads the row this request just wrote.
  entry, err := s.historyRepo.Create(ctx, nil, &types.QuestionHistory{
    CompetencyAssessmentID: ca.ID,
    QuestionID:             questionID,
    QuestionText:           input.QuestionText,
    DifficultyLevel:        difficulty,
  })
  if err != nil {
    return nil, err
  }

  timeSpent := int(transcription.DurationSeconds)
  err = s.historyRepo.UpdateAnswer(ctx, nil, entry.ID, repos.AnswerUpdate{
    Score:              evaluation.Score,
    IsCorrect:          evaluation.IsCorrect,
    UnderstandingDepth: evaluation.UnderstandingDepth,
    Feedback:           evaluation.Feedback,
    KnowledgeGaps:      evaluation.KnowledgeGaps,
    NextDifficulty:     evaluation.NextDifficulty,
    TimeSpentSeconds:   &timeSpent,
  })
  if err != nil {
    return nil, err
  }

  aggregate, err := s.scoring.RefreshCompetencyAssessment(ctx, nil, ca.ID)
  if err != nil {
    return nil, err
  }

  result := &AnswerResult{
    Transcript: transcription.Text,
    Evaluation: evaluation,
    Aggregate:  aggregate,
  }

  s.maybeAutoComplete(ctx, assessment.ID, result)
  return result, nil
}

// resolveQuestionID ties an answer back to its bank question so exclusion on
// the next selection works. The client-supplied id wins; otherwise fall back
// to an exact-text lookup. Generated questions resolve to nil, and a failed
// lookup only costs the no-repeat guarantee, so errors are logged, not fatal.
func (s *assessmentService) resolveQuestionID(ctx context.Context, competencyID uuid.UUID, input AnswerInput) *uuid.UUID {
  if input.QuestionID != nil {
    return input.QuestionID
  }

  question, err := s.questionRepo.FindByText(ctx, nil, competencyID, input.QuestionText)
  if err != nil {
    s.log.Warn("Stored question lookup by text failed", "competency_id", competencyID, "error", err)
    return nil
  }
  if question == nil {
    return nil
  }
  questionID := question.ID
  return &questionID
}

// maybeAutoComplete completes the assessment once every competency has a
// score. Failures here are logged and swallowed: the answer itself was
// accepted and graded, and completion can still happen explicitly.
func (s *assessmentService) maybeAutoComplete(ctx context.Context, assessmentID uuid.UUID, result *AnswerResult) {
  assessment, err := s.assessmentRepo.GetByID(ctx, nil, assessmentID)
  if err != nil || assessment == nil {
    s.log.Error("Auto-completion check failed to reload assessment", "assessment_id", assessmentID, "error", err)
    return
  }
  if assessment.Status != types.AssessmentStatusInProgress {
    return
  }
  for _, ca := range assessment.CompetencyAssessments {
    if ca.AIAssessedScore == nil {
      return
    }
  }

  completed, err := s.complete(ctx, assessment)
  if err != nil {
    s.log.Error("Auto-completion failed", "assessment_id", assessmentID, "error", err)
    return
  }
  result.AssessmentAutoCompleted = true
  result.OverallScore = completed.Assessment.OverallScore
}

// getOwned fetches the assessment and enforces the uniform ownership rule:
// missing id is NotFound, someone else's assessment is AccessDenied.
func (s *assessmentService) getOwned(ctx context.Context, userID, assessmentID uuid.UUID) (*types.Assessment, error) {
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
  return assessment, nil
}

func (s *assessmentService) resolveCompetency(ctx context.Context, assessment *types.Assessment, competencyID uuid.UUID) (*types.CompetencyAssessment, *types.Competency, error) {
  ca, err := s.caRepo.GetByAssessmentAndCompetency(ctx, nil, assessment.ID, competencyID)
  if err != nil {
    return nil, nil, err
  }
  if ca == nil {
    return nil, nil, apierr.NotFound("competency is not part of this assessment")
  }

  competency := ca.Competency
  if competency == nil {
    found, err := s.competencyRepo.GetByIDs(ctx, nil, []uuid.UUID{competencyID})
    if err != nil {
      return nil, nil, err
    }
    if len(found) == 0 {
      return nil, nil, apierr.NotFound("competency not found")
    }
    competency = found[0]
  }
  return ca, competency, nil
}

func buildDetail(assessment *types.Assessment) *AssessmentDetail {
  detail := &AssessmentDetail{
    ID:             assessment.ID,
    Status:         assessment.Status,
    DirectionName:  directionName(assessment),
    TechnologyName: technologyName(assessment),
    OverallScore:   assessment.OverallScore,
    AttemptNumber:  assessment.AttemptNumber,
    StartedAt:      assessment.StartedAt.UTC().Format(time.RFC3339),
    Competencies:   []CompetencyDetail{},
  }
  if assessment.CompletedAt != nil {
    completedAt := assessment.CompletedAt.UTC().Format(time.RFC3339)
    detail.CompletedAt = &completedAt
  }

  for _, ca := range assessment.CompetencyAssessments {
    item := CompetencyDetail{
      CompetencyID:  ca.CompetencyID,
      Score:         ca.AIAssessedScore,
      KnowledgeGaps: []string{},
      Completed:     ca.CompletedAt != nil,
    }
    if ca.Competency != nil {
      item.Name = ca.Competency.Name
      item.Category = ca.Competency.Category
    }
    if ca.ConfidenceLevel != nil {
      item.Confidence = *ca.ConfidenceLevel
    }
    if gaps := decodeGapAnalysis(ca.GapAnalysis); gaps != nil {
      item.KnowledgeGaps = gaps
    }
    if stats := decodeSessionStats(ca.TestSessionData); stats != nil {
      item.QuestionsCount = stats.QuestionsCount
      item.AnsweredCount = stats.AnsweredCount
    }
    detail.Competencies = append(detail.Competencies, item)
  }
  return detail
}

// weightedOverallScore excludes unscored competencies from both sums; a
// competency the user never reached does not drag the average to zero.
func weightedOverallScore(cas []*types.CompetencyAssessment) float64 {
  var weighted, totalWeight float64
  for _, ca := range cas {
    if ca.AIAssessedScore == nil {
      continue
    }
    weight := 1.0
    if ca.Competency != nil && ca.Competency.ImportanceWeight > 0 {
      weight = float64(ca.Competency.ImportanceWeight)
    }
    weighted += float64(*ca.AIAssessedScore) * weight
    totalWeight += weight
  }
  if totalWeight == 0 {
    return 0
  }
  return weighted / totalWeight
}

func directionName(assessment *types.Assessment) string {
  if assessment.Direction == nil {
    return ""
  }
  if assessment.Direction.DisplayName != "" {
    return assessment.Direction.DisplayName
  }
  return assessment.Direction.Name
}

func technologyName(assessment *types.Assessment) string {
  if assessment.Technology == nil {
    return ""
  }
  return assessment.Technology.Name
}
