package services

import (
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "net"
  "net/http"
  "strings"
  "time"

  openai "github.com/sashabaranov/go-openai"

  "github.com/skillvoice/skillvoice-backend/internal/apierr"
  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/utils"
)

type Transcription struct {
  Text            string  `json:"text"`
  Language        string  `json:"language"`
  DurationSeconds float64 `json:"duration_seconds"`
}

type AnswerEvaluation struct {
  Score              int      `json:"score"`
  UnderstandingDepth string   `json:"understandingDepth"`
  IsCorrect          bool     `json:"isCorrect"`
  Feedback           string   `json:"feedback"`
  KnowledgeGaps      []string `json:"knowledgeGaps"`
  NextDifficulty     int      `json:"nextDifficulty"`
  Reasoning          string   `json:"reasoning,omitempty"`
  CorrectAnswer      string   `json:"correctAnswer"`
  ExpectedKeyPoints  []string `json:"expectedKeyPoints"`
}

type GeneratedQuestion struct {
  Question            string   `json:"question"`
  Difficulty          int      `json:"difficulty"`
  ExpectedKeyPoints   []string `json:"expectedKeyPoints"`
  EstimatedAnswerTime string   `json:"estimatedAnswerTime"`
}

type PriorAnswer struct {
  Question string
  Answer   string
  Score    int
}

type QuestionPrompt struct {
  DirectionName         string
  CompetencyName        string
  CompetencyDescription string
  QuestionNumber        int
  Difficulty            int
  PreviousAnswers       []PriorAnswer
  KnowledgeGaps         []string
}

type CompetencyResult struct {
  CompetencyName string   `json:"competency_name"`
  Description    string   `json:"description"`
  Score          int      `json:"score"`
  Confidence     string   `json:"confidence_level"`
  KnowledgeGaps  []string `json:"knowledge_gaps"`
}

type RoadmapDraft struct {
  Title                  string          `json:"title"`
  Description            string          `json:"description"`
  EstimatedDurationWeeks int             `json:"estimatedDurationWeeks"`
  Sections               json.RawMessage `json:"sections"`
}

// AIClient is the external grading/generation collaborator. Every method may
// block for multiple seconds; callers pass a context and get classified errors
// (402 quota, 504 timeout) back for the boundary to map.
type AIClient interface {
  TranscribeAudio(ctx context.Context, audioPath string) (*Transcription, error)
  EvaluateAnswer(ctx context.Context, questionText, transcript, competencyName string, difficulty int) (*AnswerEvaluation, error)
  GenerateQuestion(ctx context.Context, prompt QuestionPrompt) (*GeneratedQuestion, error)
  GenerateRoadmap(ctx context.Context, directionName string, results []CompetencyResult) (*RoadmapDraft, error)
}

type openAIClient struct {
  log    *logger.Logger
  client *openai.Client
  model  string
}

// NewOpenAIClient builds the collaborator with distinct connect/read/pool
// timeouts. Reads get the longest allowance since grading and generation are
// the slow path.
func NewOpenAIClient(log *logger.Logger) (AIClient, error) {
  apiKey := utils.GetEnv("OPENAI_API_KEY", "", log)
  if apiKey == "" {
    return nil, fmt.Errorf("missing OPENAI_API_KEY")
  }
  model := utils.GetEnv("OPENAI_MODEL", openai.GPT4Turbo, log)
  readTimeout := utils.GetEnvAsInt("OPENAI_TIMEOUT_SECONDS", 180, log)

  cfg := openai.DefaultConfig(apiKey)
  if baseURL := utils.GetEnv("OPENAI_BASE_URL", "", log); baseURL != "" {
    cfg.BaseURL = baseURL
  }
  cfg.HTTPClient = &http.Client{
    Timeout: time.Duration(readTimeout) * time.Second,
    Transport: &http.Transport{
      DialContext:         (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
      TLSHandshakeTimeout: 10 * time.Second,
      MaxIdleConns:        10,
      IdleConnTimeout:     90 * time.Second,
    },
  }

  return &openAIClient{
    log:    log.With("service", "OpenAIClient"),
    client: openai.NewClientWithConfig(cfg),
    model:  model,
  }, nil
}

func (c *openAIClient) TranscribeAudio(ctx context.Context, audioPath string) (*Transcription, error) {
  resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
    Model:       openai.Whisper1,
    FilePath:    audioPath,
    Format:      openai.AudioResponseFormatVerboseJSON,
    Temperature: 0,
  })
  if err != nil {
    c.log.Error("Whisper transcription failed", "error", err)
    return nil, classifyAIError(err)
  }
  return &Transcription{
    Text:            resp.Text,
    Language:        resp.Language,
    DurationSeconds: resp.Duration,
  }, nil
}

const evaluateSystemPrompt = `You are an expert interviewer grading spoken technical answers that were transcribed to text.

Scoring criteria:
1. Correctness (score 1-5): 1 = wrong or irrelevant, 3 = mostly correct with gaps, 5 = excellent answer covering the key points with examples.
2. Understanding depth: "shallow" (generic phrases, no specifics), "medium" (knows the basics, no detail), "deep" (nuance and practical examples).
3. Knowledge gaps: concrete topics the candidate does not know or confuses.
4. Adaptivity: good answer (4-5) -> raise difficulty, average (3) -> keep it, weak (1-2) -> lower it.
5. correctAnswer: a full reference answer, 3-7 sentences, written like teaching material.
6. expectedKeyPoints: 3-7 short phrases naming what a correct answer must contain.

Remember this is a speech transcript: tolerate filler words, repetition and imperfect grammar.

Always reply with JSON only.`

func (c *openAIClient) EvaluateAnswer(ctx context.Context, questionText, transcript, competencyName string, difficulty int) (*AnswerEvaluation, error) {
  userPrompt := fmt.Sprintf(`Competency: %s
Question difficulty: %d/5

Question: %s

Candidate answer (transcribed from voice):
%s

Grade the answer and return JSON with ALL of these fields:
{
  "score": 1-5,
  "understandingDepth": "shallow|medium|deep",
  "isCorrect": true|false,
  "feedback": "short constructive feedback for the candidate (2-3 sentences)",
  "knowledgeGaps": ["gap 1", "gap 2"],
  "nextDifficulty": 1-5,
  "reasoning": "why this score",
  "correctAnswer": "full reference answer, at least 3-5 sentences",
  "expectedKeyPoints": ["key point 1", "key point 2", "key point 3"]
}`, competencyName, difficulty, questionText, transcript)

  raw, err := c.completeJSON(ctx, evaluateSystemPrompt, userPrompt, 0.3, 2000)
  if err != nil {
    return nil, err
  }

  var evaluation AnswerEvaluation
  if uErr := json.Unmarshal(raw, &evaluation); uErr != nil {
    return nil, fmt.Errorf("invalid evaluation JSON from model: %w", uErr)
  }
  normalizeEvaluation(c.log, &evaluation)
  return &evaluation, nil
}

// normalizeEvaluation clamps and defaults model output so downstream code
// never sees out-of-domain values.
func normalizeEvaluation(log *logger.Logger, e *AnswerEvaluation) {
  if e.Score < 1 || e.Score > 5 {
    log.Warn("Model returned out-of-range score, defaulting", "score", e.Score)
    e.Score = 3
  }
  switch e.UnderstandingDepth {
  case "shallow", "medium", "deep":
  default:
    log.Warn("Model returned unknown understanding depth, defaulting", "depth", e.UnderstandingDepth)
    e.UnderstandingDepth = "medium"
  }
  if e.NextDifficulty < 1 || e.NextDifficulty > 5 {
    e.NextDifficulty = 3
  }
  if e.KnowledgeGaps == nil {
    e.KnowledgeGaps = []string{}
  }
  if e.ExpectedKeyPoints == nil {
    e.ExpectedKeyPoints = []string{}
  }
  if e.CorrectAnswer == "" {
    e.CorrectAnswer = "No reference answer was generated."
  }
}

const generateSystemPrompt = `You are an expert at assessing technical competencies in spoken interviews.
Generate questions that test UNDERSTANDING, not memorized facts. The candidate answers by voice,
so every question must invite a 1-3 minute spoken answer; never yes/no or multiple choice.

Difficulty scale:
- 1/5: basic concepts and definitions
- 2/5: understanding of fundamentals, simple examples
- 3/5: practical application, typical cases
- 4/5: deep understanding, edge cases, optimization
- 5/5: expert level, architecture decisions, trade-offs

Always reply with JSON only.`

func (c *openAIClient) GenerateQuestion(ctx context.Context, prompt QuestionPrompt) (*GeneratedQuestion, error) {
  var sb strings.Builder
  if len(prompt.PreviousAnswers) == 0 {
    sb.WriteString("This is the first question for this competency.")
  } else {
    for i, ans := range prompt.PreviousAnswers {
      answer := truncateRunes(ans.Answer, 200)
      fmt.Fprintf(&sb, "Question %d: %s\nAnswer: %s\nScore: %d/5\n", i+1, ans.Question, answer, ans.Score)
    }
  }
  gapsText := ""
  if len(prompt.KnowledgeGaps) > 0 {
    gapsText = "\nKnown knowledge gaps: " + strings.Join(prompt.KnowledgeGaps, ", ")
  }

  userPrompt := fmt.Sprintf(`Direction: %s
Competency: %s
Description: %s
Question %d of 5, difficulty %d/5

Previous answers:
%s%s

Generate ONE question for a spoken answer at difficulty %d/5 probing the depth of "%s".

Return JSON:
{
  "question": "question text",
  "difficulty": %d,
  "expectedKeyPoints": ["key point 1", "key point 2", "key point 3"],
  "estimatedAnswerTime": "1-2 minutes"
}`, prompt.DirectionName, prompt.CompetencyName, prompt.CompetencyDescription,
    prompt.QuestionNumber, prompt.Difficulty, sb.String(), gapsText,
    prompt.Difficulty, prompt.CompetencyName, prompt.Difficulty)

  raw, err := c.completeJSON(ctx, generateSystemPrompt, userPrompt, 0.7, 500)
  if err != nil {
    return nil, err
  }

  var question GeneratedQuestion
  if uErr := json.Unmarshal(raw, &question); uErr != nil {
    return nil, fmt.Errorf("invalid question JSON from model: %w", uErr)
  }
  if question.Question == "" {
    return nil, fmt.Errorf("model returned an empty question")
  }
  if question.Difficulty < 1 || question.Difficulty > 5 {
    question.Difficulty = prompt.Difficulty
  }
  if question.EstimatedAnswerTime == "" {
    question.EstimatedAnswerTime = "1-2 minutes"
  }
  return &question, nil
}

// truncateRunes shortens s to at most max runes. Byte slicing would split
// multi-byte characters, and transcripts are routinely non-ASCII.
func truncateRunes(s string, max int) string {
  runes := []rune(s)
  if len(runes) <= max {
    return s
  }
  return string(runes[:max]) + "..."
}

const roadmapSystemPrompt = `You are an expert at building personal learning plans for software engineers.
Build a roadmap from assessment results: prioritize critical gaps first, balance theory with practice,
progress from simple to complex, and reference real learning materials.

Always reply with JSON only.`

func (c *openAIClient) GenerateRoadmap(ctx context.Context, directionName string, results []CompetencyResult) (*RoadmapDraft, error) {
  resultsJSON, err := json.MarshalIndent(results, "", "  ")
  if err != nil {
    return nil, err
  }

  userPrompt := fmt.Sprintf(`Direction: %s

Assessment results:
%s

Build a detailed personal roadmap as JSON:
{
  "title": "Learning plan for %s",
  "description": "short plan summary",
  "estimatedDurationWeeks": 8,
  "sections": [
    {
      "competency": "competency name",
      "currentScore": 2,
      "targetScore": 5,
      "priority": "high|medium|low",
      "description": "what to learn and why",
      "topics": ["topic 1", "topic 2"],
      "estimatedHours": 20,
      "learningMaterials": [{"type": "article|video|book|course|documentation", "title": "...", "url": "https://...", "isFree": true}],
      "practiceTasks": [{"title": "...", "description": "...", "taskType": "coding|quiz|project", "difficulty": 3}],
      "selfCheckQuestions": [{"question": "...", "correctAnswer": "...", "explanation": "..."}]
    }
  ]
}

Order sections so the lowest-scoring competencies come first.`, directionName, string(resultsJSON), directionName)

  raw, err := c.completeJSON(ctx, roadmapSystemPrompt, userPrompt, 0.5, 4000)
  if err != nil {
    return nil, err
  }

  var draft RoadmapDraft
  if uErr := json.Unmarshal(raw, &draft); uErr != nil {
    return nil, fmt.Errorf("invalid roadmap JSON from model: %w", uErr)
  }
  return &draft, nil
}

func (c *openAIClient) completeJSON(ctx context.Context, system, user string, temperature float32, maxTokens int) (json.RawMessage, error) {
  resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
    Model: c.model,
    Messages: []openai.ChatCompletionMessage{
      {Role: openai.ChatMessageRoleSystem, Content: system},
      {Role: openai.ChatMessageRoleUser, Content: user},
    },
    ResponseFormat: &openai.ChatCompletionResponseFormat{
      Type: openai.ChatCompletionResponseFormatTypeJSONObject,
    },
    Temperature: temperature,
    MaxTokens:   maxTokens,
  })
  if err != nil {
    c.log.Error("Chat completion failed", "error", err)
    return nil, classifyAIError(err)
  }
  if len(resp.Choices) == 0 {
    return nil, fmt.Errorf("no choices in model response")
  }
  return json.RawMessage(resp.Choices[0].Message.Content), nil
}

// classifyAIError maps provider failures onto the error taxonomy so the HTTP
// boundary can pick 402 for quota and 504 for deadline misses.
func classifyAIError(err error) error {
  if err == nil {
    return nil
  }

  var apiErr *openai.APIError
  if errors.As(err, &apiErr) {
    if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode == http.StatusPaymentRequired {
      return apierr.QuotaExceeded(err)
    }
    if msg := strings.ToLower(apiErr.Message); strings.Contains(msg, "insufficient_quota") || strings.Contains(msg, "quota") {
      return apierr.QuotaExceeded(err)
    }
  }

  if errors.Is(err, context.DeadlineExceeded) {
    return apierr.UpstreamTimeout(err)
  }
  var netErr net.Error
  if errors.As(err, &netErr) && netErr.Timeout() {
    return apierr.UpstreamTimeout(err)
  }

  return err
}
