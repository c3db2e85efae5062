package services

import (
  "context"
  "encoding/json"

  "github.com/google/uuid"

  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/repos"
  "github.com/skillvoice/skillvoice-backend/internal/types"
)

const DefaultDifficulty = 3

// QuestionResult is the shape both selection modes share. Exhausted is a
// normal terminal signal, not an error: the bank has no unused question left
// for this competency and difficulty.
type QuestionResult struct {
  QuestionID          *uuid.UUID
  QuestionText        string
  Difficulty          int
  EstimatedAnswerTime string
  ExpectedKeyPoints   []string
  Exhausted           bool
}

// SelectionRequest carries everything a source needs to pick the next
// question; History is the competency assessment's full ordered history and
// UsedQuestionIDs the bank questions it has already consumed.
type SelectionRequest struct {
  CompetencyID          uuid.UUID
  CompetencyName        string
  CompetencyDescription string
  DirectionName         string
  Difficulty            int
  QuestionNumber        int
  History               []*types.QuestionHistory
  UsedQuestionIDs       []uuid.UUID
}

// QuestionSource picks the next question for a competency. Two
// implementations exist: bank-backed selection from stored questions and
// on-the-fly generation through the AI collaborator; configuration decides
// which one serves requests.
type QuestionSource interface {
  Select(ctx context.Context, req SelectionRequest) (*QuestionResult, error)
}

type storedQuestionSource struct {
  log          *logger.Logger
  questionRepo repos.QuestionRepo
}

func NewStoredQuestionSource(log *logger.Logger, questionRepo repos.QuestionRepo) QuestionSource {
  return &storedQuestionSource{
    log:          log.With("service", "StoredQuestionSource"),
    questionRepo: questionRepo,
  }
}

func (s *storedQuestionSource) Select(ctx context.Context, req SelectionRequest) (*QuestionResult, error) {
  used := req.UsedQuestionIDs

  questionNumber := req.QuestionNumber
  question, err := s.questionRepo.FindAvailable(ctx, nil, req.CompetencyID, req.Difficulty, &questionNumber, used)
  if err != nil {
    return nil, err
  }
  if question == nil {
    // Relax the ordinal constraint before giving up.
    question, err = s.questionRepo.FindAvailable(ctx, nil, req.CompetencyID, req.Difficulty, nil, used)
    if err != nil {
      return nil, err
    }
  }
  if question == nil {
    s.log.Info("Question bank exhausted",
      "competency_id", req.CompetencyID,
      "difficulty", req.Difficulty,
      "used", len(used),
    )
    return &QuestionResult{Exhausted: true}, nil
  }

  // Presentation, not completion, is the usage trigger for bank questions.
  if err := s.questionRepo.IncrementUsage(ctx, nil, question.ID); err != nil {
    s.log.Warn("Failed to increment question usage", "question_id", question.ID, "error", err)
  }

  questionID := question.ID
  return &QuestionResult{
    QuestionID:          &questionID,
    QuestionText:        question.QuestionText,
    Difficulty:          req.Difficulty,
    EstimatedAnswerTime: estimatedTimeOrDefault(question.EstimatedAnswerTime),
    ExpectedKeyPoints:   decodeKeyPoints(question.ExpectedKeyPoints),
  }, nil
}

type generativeQuestionSource struct {
  log *logger.Logger
  ai  AIClient
}

func NewGenerativeQuestionSource(log *logger.Logger, ai AIClient) QuestionSource {
  return &generativeQuestionSource{
    log: log.With("service", "GenerativeQuestionSource"),
    ai:  ai,
  }
}

func (s *generativeQuestionSource) Select(ctx context.Context, req SelectionRequest) (*QuestionResult, error) {
  previous, gaps := answerContext(req.History)

  generated, err := s.ai.GenerateQuestion(ctx, QuestionPrompt{
    DirectionName:         req.DirectionName,
    CompetencyName:        req.CompetencyName,
    CompetencyDescription: req.CompetencyDescription,
    QuestionNumber:        req.QuestionNumber,
    Difficulty:            req.Difficulty,
    PreviousAnswers:       previous,
    KnowledgeGaps:         gaps,
  })
  if err != nil {
    return nil, err
  }

  // Generated questions get no persistent id; history records them once the
  // user actually answers.
  return &QuestionResult{
    QuestionText:        generated.Question,
    Difficulty:          generated.Difficulty,
    EstimatedAnswerTime: estimatedTimeOrDefault(generated.EstimatedAnswerTime),
    ExpectedKeyPoints:   generated.ExpectedKeyPoints,
  }, nil
}

// answerContext extracts graded prior answers and still-open knowledge gaps
// from history, feeding adaptive generation.
func answerContext(history []*types.QuestionHistory) ([]PriorAnswer, []string) {
  previous := make([]PriorAnswer, 0, len(history))
  gaps := []string{}
  seen := map[string]bool{}
  for _, entry := range history {
    if entry == nil || entry.Score == nil {
      continue
    }
    previous = append(previous, PriorAnswer{
      Question: entry.QuestionText,
      Answer:   entry.Feedback,
      Score:    *entry.Score,
    })
    for _, gap := range decodeGaps(entry.KnowledgeGaps) {
      if gap == "" || seen[gap] {
        continue
      }
      seen[gap] = true
      gaps = append(gaps, gap)
    }
  }
  return previous, gaps
}

// CurrentDifficulty derives the target difficulty from history: the grader's
// last nextDifficulty wins, then the last question's own level, then the
// default mid level.
func CurrentDifficulty(history []*types.QuestionHistory) int {
  if len(history) == 0 {
    return DefaultDifficulty
  }
  last := history[len(history)-1]
  if last.NextDifficulty != nil && *last.NextDifficulty >= 1 && *last.NextDifficulty <= 5 {
    return *last.NextDifficulty
  }
  if last.DifficultyLevel >= 1 && last.DifficultyLevel <= 5 {
    return last.DifficultyLevel
  }
  return DefaultDifficulty
}

func estimatedTimeOrDefault(v string) string {
  if v == "" {
    return "1-2 minutes"
  }
  return v
}

func decodeKeyPoints(raw []byte) []string {
  if len(raw) == 0 {
    return []string{}
  }
  var points []string
  if err := json.Unmarshal(raw, &points); err != nil {
    return []string{}
  }
  return points
}
