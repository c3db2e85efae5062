package services

import (
  "context"
  "encoding/json"
  "errors"
  "net/http"
  "strings"
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/skillvoice/skillvoice-backend/internal/apierr"
  "github.com/skillvoice/skillvoice-backend/internal/repos"
  "github.com/skillvoice/skillvoice-backend/internal/types"
)

// memState is the shared backing store for the in-memory repo fakes below.
type memState struct {
  directions   map[uuid.UUID]*types.Direction
  technologies map[uuid.UUID]*types.Technology
  competencies map[uuid.UUID]*types.Competency
  questions    map[uuid.UUID]*types.Question

  compsByDirection  map[uuid.UUID][]uuid.UUID
  compsByTechnology map[uuid.UUID][]uuid.UUID

  assessments map[uuid.UUID]*types.Assessment
  cas         map[uuid.UUID]*types.CompetencyAssessment
  histories   map[uuid.UUID][]*types.QuestionHistory

  failCACreateFor map[uuid.UUID]bool
}

func newMemState() *memState {
  return &memState{
    directions:        map[uuid.UUID]*types.Direction{},
    technologies:      map[uuid.UUID]*types.Technology{},
    competencies:      map[uuid.UUID]*types.Competency{},
    questions:         map[uuid.UUID]*types.Question{},
    compsByDirection:  map[uuid.UUID][]uuid.UUID{},
    compsByTechnology: map[uuid.UUID][]uuid.UUID{},
    assessments:       map[uuid.UUID]*types.Assessment{},
    cas:               map[uuid.UUID]*types.CompetencyAssessment{},
    histories:         map[uuid.UUID][]*types.QuestionHistory{},
    failCACreateFor:   map[uuid.UUID]bool{},
  }
}

func (s *memState) addDirection(name string, competencies ...*types.Competency) *types.Direction {
  direction := &types.Direction{ID: uuid.New(), Name: name, DisplayName: name}
  s.directions[direction.ID] = direction
  for _, competency := range competencies {
    s.competencies[competency.ID] = competency
    s.compsByDirection[direction.ID] = append(s.compsByDirection[direction.ID], competency.ID)
  }
  return direction
}

func newCompetency(name string, weight int) *types.Competency {
  return &types.Competency{ID: uuid.New(), Name: name, ImportanceWeight: weight}
}

type memDirectionRepo struct{ s *memState }

func (r *memDirectionRepo) FindOrCreateByName(ctx context.Context, tx *gorm.DB, name, displayName, description string) (*types.Direction, error) {
  normalized := strings.ToLower(strings.TrimSpace(name))
  for _, d := range r.s.directions {
    if d.Name == normalized {
      return d, nil
    }
  }
  direction := &types.Direction{ID: uuid.New(), Name: normalized, DisplayName: displayName, Description: description}
  r.s.directions[direction.ID] = direction
  return direction, nil
}

func (r *memDirectionRepo) GetByID(ctx context.Context, tx *gorm.DB, directionID uuid.UUID) (*types.Direction, error) {
  return r.s.directions[directionID], nil
}

func (r *memDirectionRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Direction, error) {
  out := []*types.Direction{}
  for _, d := range r.s.directions {
    out = append(out, d)
  }
  return out, nil
}

type memTechnologyRepo struct{ s *memState }

func (r *memTechnologyRepo) FindOrCreateByName(ctx context.Context, tx *gorm.DB, name, description string, directionID *uuid.UUID) (*types.Technology, error) {
  normalized := strings.ToLower(strings.TrimSpace(name))
  for _, tech := range r.s.technologies {
    if tech.Name == normalized {
      return tech, nil
    }
  }
  tech := &types.Technology{ID: uuid.New(), Name: normalized, Description: description, DirectionID: directionID}
  r.s.technologies[tech.ID] = tech
  return tech, nil
}

func (r *memTechnologyRepo) GetByID(ctx context.Context, tx *gorm.DB, technologyID uuid.UUID) (*types.Technology, error) {
  return r.s.technologies[technologyID], nil
}

func (r *memTechnologyRepo) AssignDirection(ctx context.Context, tx *gorm.DB, technologyID, directionID uuid.UUID) (*types.Technology, error) {
  tech, ok := r.s.technologies[technologyID]
  if !ok {
    return nil, apierr.NotFound("technology not found")
  }
  id := directionID
  tech.DirectionID = &id
  return tech, nil
}

func (r *memTechnologyRepo) ListByDirectionID(ctx context.Context, tx *gorm.DB, directionID uuid.UUID) ([]*types.Technology, error) {
  out := []*types.Technology{}
  for _, tech := range r.s.technologies {
    if tech.DirectionID != nil && *tech.DirectionID == directionID {
      out = append(out, tech)
    }
  }
  return out, nil
}

type memCompetencyRepo struct{ s *memState }

func (r *memCompetencyRepo) GetByIDs(ctx context.Context, tx *gorm.DB, competencyIDs []uuid.UUID) ([]*types.Competency, error) {
  out := []*types.Competency{}
  for _, id := range competencyIDs {
    if competency, ok := r.s.competencies[id]; ok {
      out = append(out, competency)
    }
  }
  return out, nil
}

func (r *memCompetencyRepo) ListByDirectionID(ctx context.Context, tx *gorm.DB, directionID uuid.UUID) ([]*types.Competency, error) {
  return r.GetByIDs(ctx, tx, r.s.compsByDirection[directionID])
}

func (r *memCompetencyRepo) ListByTechnologyID(ctx context.Context, tx *gorm.DB, technologyID uuid.UUID) ([]*types.Competency, error) {
  return r.GetByIDs(ctx, tx, r.s.compsByTechnology[technologyID])
}

func (r *memCompetencyRepo) LinkToDirection(ctx context.Context, tx *gorm.DB, directionID, competencyID uuid.UUID, orderIndex int) error {
  for _, id := range r.s.compsByDirection[directionID] {
    if id == competencyID {
      return nil
    }
  }
  r.s.compsByDirection[directionID] = append(r.s.compsByDirection[directionID], competencyID)
  return nil
}

func (r *memCompetencyRepo) LinkToTechnology(ctx context.Context, tx *gorm.DB, technologyID, competencyID uuid.UUID, orderIndex int) error {
  for _, id := range r.s.compsByTechnology[technologyID] {
    if id == competencyID {
      return nil
    }
  }
  r.s.compsByTechnology[technologyID] = append(r.s.compsByTechnology[technologyID], competencyID)
  return nil
}

type memAssessmentRepo struct{ s *memState }

func (r *memAssessmentRepo) Create(ctx context.Context, tx *gorm.DB, assessment *types.Assessment) (*types.Assessment, error) {
  assessment.ID = uuid.New()
  assessment.StartedAt = time.Now()
  r.s.assessments[assessment.ID] = assessment
  return assessment, nil
}

func (r *memAssessmentRepo) GetByID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) (*types.Assessment, error) {
  assessment, ok := r.s.assessments[assessmentID]
  if !ok {
    return nil, nil
  }
  copied := *assessment
  if assessment.DirectionID != nil {
    copied.Direction = r.s.directions[*assessment.DirectionID]
  }
  if assessment.TechnologyID != nil {
    copied.Technology = r.s.technologies[*assessment.TechnologyID]
  }
  copied.CompetencyAssessments = nil
  for _, ca := range r.s.cas {
    if ca.AssessmentID == assessmentID {
      withComp := *ca
      withComp.Competency = r.s.competencies[ca.CompetencyID]
      copied.CompetencyAssessments = append(copied.CompetencyAssessments, &withComp)
    }
  }
  return &copied, nil
}

func (r *memAssessmentRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter repos.AssessmentFilter) ([]*types.Assessment, error) {
  out := []*types.Assessment{}
  for _, assessment := range r.s.assessments {
    if assessment.UserID != userID {
      continue
    }
    if filter.Status != nil && assessment.Status != *filter.Status {
      continue
    }
    out = append(out, assessment)
  }
  return out, nil
}

func (r *memAssessmentRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID, status string, overallScore *float64) (*types.Assessment, error) {
  assessment, ok := r.s.assessments[assessmentID]
  if !ok {
    return nil, gorm.ErrRecordNotFound
  }
  assessment.Status = status
  if overallScore != nil {
    assessment.OverallScore = overallScore
  }
  if status == types.AssessmentStatusCompleted {
    now := time.Now()
    assessment.CompletedAt = &now
  }
  return assessment, nil
}

func (r *memAssessmentRepo) MaxAttemptNumber(ctx context.Context, tx *gorm.DB, userID uuid.UUID, directionID *uuid.UUID, technologyID *uuid.UUID) (int, error) {
  max := 0
  for _, assessment := range r.s.assessments {
    if assessment.UserID != userID {
      continue
    }
    if !uuidPtrEqual(assessment.DirectionID, directionID) || !uuidPtrEqual(assessment.TechnologyID, technologyID) {
      continue
    }
    if assessment.AttemptNumber > max {
      max = assessment.AttemptNumber
    }
  }
  return max, nil
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
  if a == nil || b == nil {
    return a == nil && b == nil
  }
  return *a == *b
}

type memCARepo struct{ s *memState }

func (r *memCARepo) Create(ctx context.Context, tx *gorm.DB, assessmentID, competencyID uuid.UUID) (*types.CompetencyAssessment, error) {
  if r.s.failCACreateFor[competencyID] {
    return nil, errors.New("simulated insert failure")
  }
  ca := &types.CompetencyAssessment{ID: uuid.New(), AssessmentID: assessmentID, CompetencyID: competencyID}
  r.s.cas[ca.ID] = ca
  return ca, nil
}

func (r *memCARepo) GetByAssessmentAndCompetency(ctx context.Context, tx *gorm.DB, assessmentID, competencyID uuid.UUID) (*types.CompetencyAssessment, error) {
  for _, ca := range r.s.cas {
    if ca.AssessmentID == assessmentID && ca.CompetencyID == competencyID {
      withComp := *ca
      withComp.Competency = r.s.competencies[ca.CompetencyID]
      return &withComp, nil
    }
  }
  return nil, nil
}

func (r *memCARepo) ListByAssessmentID(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) ([]*types.CompetencyAssessment, error) {
  out := []*types.CompetencyAssessment{}
  for _, ca := range r.s.cas {
    if ca.AssessmentID == assessmentID {
      out = append(out, ca)
    }
  }
  return out, nil
}

func (r *memCARepo) UpdateEvaluation(ctx context.Context, tx *gorm.DB, competencyAssessmentID uuid.UUID, score int, confidence string, gapAnalysis, sessionData datatypes.JSON) error {
  ca, ok := r.s.cas[competencyAssessmentID]
  if !ok {
    return apierr.NotFound("competency assessment %s not found", competencyAssessmentID)
  }
  ca.AIAssessedScore = &score
  ca.ConfidenceLevel = &confidence
  ca.GapAnalysis = gapAnalysis
  ca.TestSessionData = sessionData
  now := time.Now()
  ca.CompletedAt = &now
  return nil
}

type memHistoryRepo struct{ s *memState }

func (r *memHistoryRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.QuestionHistory) (*types.QuestionHistory, error) {
  entry.ID = uuid.New()
  entry.AskedAt = time.Now()
  r.s.histories[entry.CompetencyAssessmentID] = append(r.s.histories[entry.CompetencyAssessmentID], entry)
  return entry, nil
}

func (r *memHistoryRepo) UpdateAnswer(ctx context.Context, tx *gorm.DB, historyID uuid.UUID, update repos.AnswerUpdate) error {
  for _, entries := range r.s.histories {
    for _, entry := range entries {
      if entry.ID != historyID {
        continue
      }
      entry.Score = &update.Score
      entry.IsCorrect = &update.IsCorrect
      entry.UnderstandingDepth = &update.UnderstandingDepth
      entry.Feedback = update.Feedback
      entry.NextDifficulty = &update.NextDifficulty
      entry.TimeSpentSeconds = update.TimeSpentSeconds
      if len(update.KnowledgeGaps) > 0 {
        raw, err := json.Marshal(update.KnowledgeGaps)
        if err != nil {
          return err
        }
        entry.KnowledgeGaps = datatypes.JSON(raw)
      }
      now := time.Now()
      entry.AnsweredAt = &now
      return nil
    }
  }
  return apierr.NotFound("history entry %s not found", historyID)
}

func (r *memHistoryRepo) ListByCompetencyAssessment(ctx context.Context, tx *gorm.DB, competencyAssessmentID uuid.UUID) ([]*types.QuestionHistory, error) {
  return r.s.histories[competencyAssessmentID], nil
}

func (r *memHistoryRepo) UsedQuestionIDs(ctx context.Context, tx *gorm.DB, competencyAssessmentID uuid.UUID) ([]uuid.UUID, error) {
  out := []uuid.UUID{}
  for _, entry := range r.s.histories[competencyAssessmentID] {
    if entry.QuestionID != nil {
      out = append(out, *entry.QuestionID)
    }
  }
  return out, nil
}

type memQuestionRepo struct{ s *memState }

func (r *memQuestionRepo) FindAvailable(ctx context.Context, tx *gorm.DB, competencyID uuid.UUID, difficulty int, questionNumber *int, excludeIDs []uuid.UUID) (*types.Question, error) {
  excluded := map[uuid.UUID]bool{}
  for _, id := range excludeIDs {
    excluded[id] = true
  }
  var best *types.Question
  for _, q := range r.s.questions {
    if q.CompetencyID != competencyID || q.Difficulty != difficulty || excluded[q.ID] {
      continue
    }
    if questionNumber != nil && (q.QuestionNumber == nil || *q.QuestionNumber != *questionNumber) {
      continue
    }
    if best == nil || q.UsedCount < best.UsedCount {
      best = q
    }
  }
  return best, nil
}

func (r *memQuestionRepo) FindByText(ctx context.Context, tx *gorm.DB, competencyID uuid.UUID, questionText string) (*types.Question, error) {
  for _, q := range r.s.questions {
    if q.CompetencyID == competencyID && q.QuestionText == questionText {
      return q, nil
    }
  }
  return nil, nil
}

func (r *memQuestionRepo) IncrementUsage(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) error {
  if q, ok := r.s.questions[questionID]; ok {
    q.UsedCount++
  }
  return nil
}

type staticQuestionSource struct {
  result *QuestionResult
}

func (s *staticQuestionSource) Select(ctx context.Context, req SelectionRequest) (*QuestionResult, error) {
  return s.result, nil
}

func newTestAssessmentService(t *testing.T, s *memState) AssessmentService {
  t.Helper()
  return newTestAssessmentServiceWithSource(t, s, &staticQuestionSource{result: &QuestionResult{QuestionText: "stub"}})
}

func newTestAssessmentServiceWithSource(t *testing.T, s *memState, source QuestionSource) AssessmentService {
  t.Helper()
  log := testLogger(t)
  historyRepo := &memHistoryRepo{s: s}
  caRepo := &memCARepo{s: s}
  return NewAssessmentService(
    log,
    nil,
    &memAssessmentRepo{s: s},
    caRepo,
    &memCompetencyRepo{s: s},
    &memDirectionRepo{s: s},
    &memTechnologyRepo{s: s},
    historyRepo,
    &memQuestionRepo{s: s},
    &fakeAIClient{},
    NewScoringService(log, historyRepo, caRepo),
    source,
  )
}

func TestStartCreatesCompetencyAssessments(t *testing.T) {
  s := newMemState()
  s.addDirection("backend", newCompetency("sql", 1), newCompetency("http", 1), newCompetency("testing", 1))
  svc := newTestAssessmentService(t, s)
  userID := uuid.New()

  result, err := svc.Start(context.Background(), userID, StartInput{DirectionName: "Backend"})
  if err != nil {
    t.Fatalf("unexpected err: %v", err)
  }
  if result.Assessment.Status != types.AssessmentStatusInProgress {
    t.Fatalf("status = %q", result.Assessment.Status)
  }
  if result.Assessment.AttemptNumber != 1 {
    t.Fatalf("attempt_number = %d, want 1", result.Assessment.AttemptNumber)
  }
  if len(result.Report.Succeeded) != 3 || len(result.Report.Failed) != 0 {
    t.Fatalf("report = %+v", result.Report)
  }
  if len(s.cas) != 3 {
    t.Fatalf("expected 3 competency assessment rows, got %d", len(s.cas))
  }
}

func TestStartEmptyCompetencySet(t *testing.T) {
  s := newMemState()
  s.addDirection("frontend")
  svc := newTestAssessmentService(t, s)

  _, err := svc.Start(context.Background(), uuid.New(), StartInput{DirectionName: "frontend"})
  if !apierr.IsStatus(err, http.StatusBadRequest) {
    t.Fatalf("expected validation error, got %v", err)
  }
}

func TestStartAttemptNumberIncrements(t *testing.T) {
  s := newMemState()
  s.addDirection("backend", newCompetency("sql", 1))
  svc := newTestAssessmentService(t, s)
  userID := uuid.New()

  first, err := svc.Start(context.Background(), userID, StartInput{DirectionName: "backend"})
  if err != nil {
    t.Fatalf("first start: %v", err)
  }
  second, err := svc.Start(context.Background(), userID, StartInput{DirectionName: "backend"})
  if err != nil {
    t.Fatalf("second start: %v", err)
  }
  if first.Assessment.AttemptNumber != 1 || second.Assessment.AttemptNumber != 2 {
    t.Fatalf("attempt numbers = %d, %d; want 1, 2", first.Assessment.AttemptNumber, second.Assessment.AttemptNumber)
  }

  // a different user starts from 1 again
  other, err := svc.Start(context.Background(), uuid.New(), StartInput{DirectionName: "backend"})
  if err != nil {
    t.Fatalf("other user start: %v", err)
  }
  if other.Assessment.AttemptNumber != 1 {
    t.Fatalf("other user attempt = %d, want 1", other.Assessment.AttemptNumber)
  }
}

func TestStartPartialCreationReport(t *testing.T) {
  s := newMemState()
  broken := newCompetency("flaky", 1)
  s.addDirection("backend", newCompetency("sql", 1), broken, newCompetency("http", 1))
  s.failCACreateFor[broken.ID] = true
  svc := newTestAssessmentService(t, s)

  result, err := svc.Start(context.Background(), uuid.New(), StartInput{DirectionName: "backend"})
  if err != nil {
    t.Fatalf("start must survive a single row failure: %v", err)
  }
  if len(result.Report.Succeeded) != 2 {
    t.Fatalf("succeeded = %v", result.Report.Succeeded)
  }
  if len(result.Report.Failed) != 1 || result.Report.Failed[0].CompetencyID != broken.ID {
    t.Fatalf("failed = %+v", result.Report.Failed)
  }
  if len(result.Competencies) != 2 {
    t.Fatalf("competencies = %d, want 2", len(result.Competencies))
  }
}

func TestCompleteWeightedScore(t *testing.T) {
  s := newMemState()
  heavy := newCompetency("heavy", 3)
  light := newCompetency("light", 1)
  skipped := newCompetency("skipped", 5)
  s.addDirection("backend", heavy, light, skipped)
  svc := newTestAssessmentService(t, s)
  userID := uuid.New()

  started, err := svc.Start(context.Background(), userID, StartInput{DirectionName: "backend"})
  if err != nil {
    t.Fatalf("start: %v", err)
  }
  scoreCA(t, s, started.Assessment.ID, heavy.ID, 4)
  scoreCA(t, s, started.Assessment.ID, light.ID, 2)
  // skipped stays unscored and must not drag the average down

  result, err := svc.Complete(context.Background(), userID, started.Assessment.ID)
  if err != nil {
    t.Fatalf("complete: %v", err)
  }
  if result.AlreadyCompleted {
    t.Fatal("first completion flagged as already completed")
  }
  if result.Assessment.OverallScore == nil || *result.Assessment.OverallScore != 3.5 {
    t.Fatalf("overall = %v, want 3.5", result.Assessment.OverallScore)
  }
  if result.Assessment.CompletedAt == nil {
    t.Fatal("completed_at not stamped")
  }
}

func TestCompleteIdempotent(t *testing.T) {
  s := newMemState()
  comp := newCompetency("sql", 1)
  s.addDirection("backend", comp)
  svc := newTestAssessmentService(t, s)
  userID := uuid.New()

  started, _ := svc.Start(context.Background(), userID, StartInput{DirectionName: "backend"})
  scoreCA(t, s, started.Assessment.ID, comp.ID, 4)

  first, err := svc.Complete(context.Background(), userID, started.Assessment.ID)
  if err != nil {
    t.Fatalf("complete: %v", err)
  }
  second, err := svc.Complete(context.Background(), userID, started.Assessment.ID)
  if err != nil {
    t.Fatalf("repeat complete: %v", err)
  }
  if !second.AlreadyCompleted {
    t.Fatal("repeat completion must set AlreadyCompleted")
  }
  if *second.Assessment.OverallScore != *first.Assessment.OverallScore {
    t.Fatalf("overall changed on repeat: %v vs %v", *second.Assessment.OverallScore, *first.Assessment.OverallScore)
  }
}

func TestCompleteWithNoScores(t *testing.T) {
  s := newMemState()
  s.addDirection("backend", newCompetency("sql", 1))
  svc := newTestAssessmentService(t, s)
  userID := uuid.New()

  started, _ := svc.Start(context.Background(), userID, StartInput{DirectionName: "backend"})
  result, err := svc.Complete(context.Background(), userID, started.Assessment.ID)
  if err != nil {
    t.Fatalf("complete: %v", err)
  }
  if result.Assessment.OverallScore == nil || *result.Assessment.OverallScore != 0 {
    t.Fatalf("overall = %v, want 0", result.Assessment.OverallScore)
  }
}

func TestAbandonRules(t *testing.T) {
  s := newMemState()
  comp := newCompetency("sql", 1)
  s.addDirection("backend", comp)
  svc := newTestAssessmentService(t, s)
  userID := uuid.New()

  started, _ := svc.Start(context.Background(), userID, StartInput{DirectionName: "backend"})
  abandoned, err := svc.Abandon(context.Background(), userID, started.Assessment.ID)
  if err != nil {
    t.Fatalf("abandon: %v", err)
  }
  if abandoned.Status != types.AssessmentStatusAbandoned {
    t.Fatalf("status = %q", abandoned.Status)
  }
  if abandoned.OverallScore != nil {
    t.Fatal("abandoned assessment must stay unscored")
  }

  second, _ := svc.Start(context.Background(), userID, StartInput{DirectionName: "backend"})
  scoreCA(t, s, second.Assessment.ID, comp.ID, 3)
  if _, err := svc.Complete(context.Background(), userID, second.Assessment.ID); err != nil {
    t.Fatalf("complete: %v", err)
  }
  if _, err := svc.Abandon(context.Background(), userID, second.Assessment.ID); !apierr.IsStatus(err, http.StatusBadRequest) {
    t.Fatalf("abandoning a completed assessment must fail with 400, got %v", err)
  }
}

func TestRestartRequiresDirection(t *testing.T) {
  s := newMemState()
  svc := newTestAssessmentService(t, s)
  userID := uuid.New()

  orphan := &types.Assessment{ID: uuid.New(), UserID: userID, Status: types.AssessmentStatusInProgress, AttemptNumber: 1}
  s.assessments[orphan.ID] = orphan

  if _, err := svc.Restart(context.Background(), userID, orphan.ID); !apierr.IsStatus(err, http.StatusBadRequest) {
    t.Fatalf("expected validation error, got %v", err)
  }
}

func TestRestartIncrementsAttempt(t *testing.T) {
  s := newMemState()
  s.addDirection("backend", newCompetency("sql", 1))
  svc := newTestAssessmentService(t, s)
  userID := uuid.New()

  started, _ := svc.Start(context.Background(), userID, StartInput{DirectionName: "backend"})
  restarted, err := svc.Restart(context.Background(), userID, started.Assessment.ID)
  if err != nil {
    t.Fatalf("restart: %v", err)
  }
  if restarted.Assessment.AttemptNumber != 2 {
    t.Fatalf("attempt = %d, want 2", restarted.Assessment.AttemptNumber)
  }
  if restarted.Assessment.ID == started.Assessment.ID {
    t.Fatal("restart must create a new assessment")
  }
}

func TestOwnershipChecks(t *testing.T) {
  s := newMemState()
  s.addDirection("backend", newCompetency("sql", 1))
  svc := newTestAssessmentService(t, s)
  owner := uuid.New()

  started, _ := svc.Start(context.Background(), owner, StartInput{DirectionName: "backend"})

  if _, err := svc.Get(context.Background(), uuid.New(), started.Assessment.ID); !apierr.IsStatus(err, http.StatusForbidden) {
    t.Fatalf("expected access denied, got %v", err)
  }
  if _, err := svc.Get(context.Background(), owner, uuid.New()); !apierr.IsStatus(err, http.StatusNotFound) {
    t.Fatalf("expected not found, got %v", err)
  }
  if _, err := svc.Get(context.Background(), owner, started.Assessment.ID); err != nil {
    t.Fatalf("owner access failed: %v", err)
  }
}

func TestSubmitAnswerAutoCompletes(t *testing.T) {
  s := newMemState()
  comp := newCompetency("sql", 2)
  s.addDirection("backend", comp)
  svc := newTestAssessmentService(t, s)
  userID := uuid.New()

  started, _ := svc.Start(context.Background(), userID, StartInput{DirectionName: "backend"})

  result, err := svc.SubmitAnswer(context.Background(), userID, started.Assessment.ID, AnswerInput{
    CompetencyID: comp.ID,
    QuestionText: "describe indexes",
    Difficulty:   3,
  })
  if err != nil {
    t.Fatalf("submit: %v", err)
  }
  if result.Transcript != "transcript" {
    t.Fatalf("transcript = %q", result.Transcript)
  }
  if result.Aggregate == nil || result.Aggregate.AnsweredCount != 1 {
    t.Fatalf("aggregate = %+v", result.Aggregate)
  }
  if !result.AssessmentAutoCompleted {
    t.Fatal("single-competency assessment must auto-complete after its one score")
  }
  if result.OverallScore == nil || *result.OverallScore != 3 {
    t.Fatalf("overall = %v, want 3", result.OverallScore)
  }

  stored := s.assessments[started.Assessment.ID]
  if stored.Status != types.AssessmentStatusCompleted {
    t.Fatalf("stored status = %q", stored.Status)
  }
}

func TestSubmitAnswerDoesNotCompleteEarly(t *testing.T) {
  s := newMemState()
  answered := newCompetency("sql", 1)
  pending := newCompetency("http", 1)
  s.addDirection("backend", answered, pending)
  svc := newTestAssessmentService(t, s)
  userID := uuid.New()

  started, _ := svc.Start(context.Background(), userID, StartInput{DirectionName: "backend"})
  result, err := svc.SubmitAnswer(context.Background(), userID, started.Assessment.ID, AnswerInput{
    CompetencyID: answered.ID,
    QuestionText: "describe indexes",
    Difficulty:   3,
  })
  if err != nil {
    t.Fatalf("submit: %v", err)
  }
  if result.AssessmentAutoCompleted {
    t.Fatal("must not auto-complete while a competency is unscored")
  }
  if s.assessments[started.Assessment.ID].Status != types.AssessmentStatusInProgress {
    t.Fatal("assessment left in_progress state early")
  }
}

func TestAnsweredBankQuestionNotRepeated(t *testing.T) {
  s := newMemState()
  comp := newCompetency("sql", 1)
  s.addDirection("backend", comp)
  question := &types.Question{ID: uuid.New(), CompetencyID: comp.ID, QuestionText: "describe indexes", Difficulty: 3}
  s.questions[question.ID] = question

  source := NewStoredQuestionSource(testLogger(t), &memQuestionRepo{s: s})
  svc := newTestAssessmentServiceWithSource(t, s, source)
  userID := uuid.New()

  started, err := svc.Start(context.Background(), userID, StartInput{DirectionName: "backend"})
  if err != nil {
    t.Fatalf("start: %v", err)
  }

  first, err := svc.GetQuestion(context.Background(), userID, started.Assessment.ID, QuestionRequest{CompetencyID: comp.ID})
  if err != nil {
    t.Fatalf("get question: %v", err)
  }
  if first.QuestionID == nil || *first.QuestionID != question.ID {
    t.Fatalf("question_id = %v, want %s", first.QuestionID, question.ID)
  }

  _, err = svc.SubmitAnswer(context.Background(), userID, started.Assessment.ID, AnswerInput{
    CompetencyID: comp.ID,
    QuestionID:   first.QuestionID,
    QuestionText: first.QuestionText,
    Difficulty:   first.Difficulty,
  })
  if err != nil {
    t.Fatalf("submit: %v", err)
  }

  second, err := svc.GetQuestion(context.Background(), userID, started.Assessment.ID, QuestionRequest{CompetencyID: comp.ID})
  if err != nil {
    t.Fatalf("second get question: %v", err)
  }
  if !second.Exhausted {
    t.Fatalf("answered question served again: %v", second.QuestionID)
  }
}

func TestSubmitAnswerLinksQuestionByText(t *testing.T) {
  s := newMemState()
  comp := newCompetency("sql", 1)
  s.addDirection("backend", comp)
  question := &types.Question{ID: uuid.New(), CompetencyID: comp.ID, QuestionText: "describe indexes", Difficulty: 3}
  s.questions[question.ID] = question
  svc := newTestAssessmentService(t, s)
  userID := uuid.New()

  started, _ := svc.Start(context.Background(), userID, StartInput{DirectionName: "backend"})

  // No question_id supplied; the exact text still ties the answer to the bank row.
  _, err := svc.SubmitAnswer(context.Background(), userID, started.Assessment.ID, AnswerInput{
    CompetencyID: comp.ID,
    QuestionText: "describe indexes",
    Difficulty:   3,
  })
  if err != nil {
    t.Fatalf("submit: %v", err)
  }

  var entries []*types.QuestionHistory
  for _, list := range s.histories {
    entries = append(entries, list...)
  }
  if len(entries) != 1 {
    t.Fatalf("history entries = %d, want 1", len(entries))
  }
  if entries[0].QuestionID == nil || *entries[0].QuestionID != question.ID {
    t.Fatalf("history question_id = %v, want %s", entries[0].QuestionID, question.ID)
  }
}

// scoreCA persists a score directly through the fake store, standing in for a
// full answer round-trip.
func scoreCA(t *testing.T, s *memState, assessmentID, competencyID uuid.UUID, score int) {
  t.Helper()
  for _, ca := range s.cas {
    if ca.AssessmentID == assessmentID && ca.CompetencyID == competencyID {
      value := score
      confidence := types.ConfidenceLow
      ca.AIAssessedScore = &value
      ca.ConfidenceLevel = &confidence
      return
    }
  }
  t.Fatalf("competency assessment for %s not found", competencyID)
}
