package handlers

import (
  "net/http"
  "strconv"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/services"
)

type QuestionHandler struct {
  log           *logger.Logger
  assessmentSvc services.AssessmentService
  audioSvc      services.AudioService
}

func NewQuestionHandler(log *logger.Logger, assessmentSvc services.AssessmentService, audioSvc services.AudioService) *QuestionHandler {
  return &QuestionHandler{
    log:           log.With("handler", "QuestionHandler"),
    assessmentSvc: assessmentSvc,
    audioSvc:      audioSvc,
  }
}

type questionRequest struct {
  AssessmentID   string `json:"assessment_id" form:"assessment_id"`
  CompetencyID   string `json:"competency_id" form:"competency_id" binding:"required"`
  QuestionNumber int    `json:"question_number" form:"question_number"`
  Difficulty     *int   `json:"difficulty" form:"difficulty"`
}

// POST /api/assessments/:id/questions
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
  assessmentID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  h.serveQuestion(c, assessmentID)
}

// POST /api/questions/generate
// Legacy route: assessment id travels in the body instead of the path.
func (h *QuestionHandler) GenerateQuestion(c *gin.Context) {
  var req questionRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "validation_error", "message": "competency_id is required"}})
    return
  }
  assessmentID, err := uuid.Parse(req.AssessmentID)
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "validation_error", "message": "invalid assessment_id"}})
    return
  }
  h.serveParsedQuestion(c, assessmentID, req)
}

func (h *QuestionHandler) serveQuestion(c *gin.Context, assessmentID uuid.UUID) {
  var req questionRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "validation_error", "message": "competency_id is required"}})
    return
  }
  h.serveParsedQuestion(c, assessmentID, req)
}

func (h *QuestionHandler) serveParsedQuestion(c *gin.Context, assessmentID uuid.UUID, req questionRequest) {
  userID, ok := callerID(c)
  if !ok {
    return
  }
  competencyID, err := uuid.Parse(req.CompetencyID)
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "validation_error", "message": "invalid competency_id"}})
    return
  }

  result, err := h.assessmentSvc.GetQuestion(c.Request.Context(), userID, assessmentID, services.QuestionRequest{
    CompetencyID:   competencyID,
    QuestionNumber: req.QuestionNumber,
    Difficulty:     req.Difficulty,
  })
  if err != nil {
    respondError(c, err)
    return
  }

  c.JSON(http.StatusOK, gin.H{
    "question_id":           result.QuestionID,
    "question_text":         result.QuestionText,
    "difficulty":            result.Difficulty,
    "expected_key_points":   result.ExpectedKeyPoints,
    "estimated_answer_time": result.EstimatedAnswerTime,
    "no_more_questions":     result.Exhausted,
  })
}

// POST /api/assessments/:id/answers
func (h *QuestionHandler) SubmitAnswer(c *gin.Context) {
  assessmentID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  h.serveAnswer(c, assessmentID)
}

// POST /api/questions/answer
// Legacy multipart route with assessment_id as a form field.
func (h *QuestionHandler) AnswerQuestion(c *gin.Context) {
  assessmentID, err := uuid.Parse(c.PostForm("assessment_id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "validation_error", "message": "invalid assessment_id"}})
    return
  }
  h.serveAnswer(c, assessmentID)
}

func (h *QuestionHandler) serveAnswer(c *gin.Context, assessmentID uuid.UUID) {
  userID, ok := callerID(c)
  if !ok {
    return
  }

  competencyID, err := uuid.Parse(c.PostForm("competency_id"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "validation_error", "message": "invalid competency_id"}})
    return
  }
  questionText := c.PostForm("question_text")
  if questionText == "" {
    c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "validation_error", "message": "question_text is required"}})
    return
  }

  // Optional: present when the client answered a bank question.
  var questionID *uuid.UUID
  if raw := c.PostForm("question_id"); raw != "" {
    parsed, err := uuid.Parse(raw)
    if err != nil {
      c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "validation_error", "message": "invalid question_id"}})
      return
    }
    questionID = &parsed
  }

  difficulty, _ := strconv.Atoi(c.PostForm("difficulty"))

  file, err := c.FormFile("audio")
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "validation_error", "message": "audio file is required"}})
    return
  }

  audioPath, cleanup, err := h.audioSvc.Store(file)
  if err != nil {
    respondError(c, err)
    return
  }
  defer cleanup()

  result, err := h.assessmentSvc.SubmitAnswer(c.Request.Context(), userID, assessmentID, services.AnswerInput{
    CompetencyID: competencyID,
    QuestionID:   questionID,
    QuestionText: questionText,
    Difficulty:   difficulty,
    AudioPath:    audioPath,
  })
  if err != nil {
    respondError(c, err)
    return
  }

  body := gin.H{
    "transcript": result.Transcript,
    "evaluation": result.Evaluation,
    "competency_state": gin.H{
      "final_score":     result.Aggregate.FinalScore,
      "confidence":      result.Aggregate.Confidence,
      "knowledge_gaps":  result.Aggregate.KnowledgeGaps,
      "questions_count": result.Aggregate.QuestionsCount,
      "answered_count":  result.Aggregate.AnsweredCount,
    },
    "assessment_auto_completed": result.AssessmentAutoCompleted,
  }
  if result.AssessmentAutoCompleted {
    body["overall_score"] = result.OverallScore
  }
  c.JSON(http.StatusOK, body)
}
