package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/repos"
  "github.com/skillvoice/skillvoice-backend/internal/services"
  "github.com/skillvoice/skillvoice-backend/internal/types"
)

type AssessmentHandler struct {
  log           *logger.Logger
  assessmentSvc services.AssessmentService
}

func NewAssessmentHandler(log *logger.Logger, assessmentSvc services.AssessmentService) *AssessmentHandler {
  return &AssessmentHandler{
    log:           log.With("handler", "AssessmentHandler"),
    assessmentSvc: assessmentSvc,
  }
}

type startAssessmentRequest struct {
  Direction  string `json:"direction" binding:"required"`
  Technology string `json:"technology"`
}

// POST /api/assessments
func (h *AssessmentHandler) Start(c *gin.Context) {
  userID, ok := callerID(c)
  if !ok {
    return
  }

  var req startAssessmentRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "validation_error", "message": "direction is required"}})
    return
  }

  result, err := h.assessmentSvc.Start(c.Request.Context(), userID, services.StartInput{
    DirectionName:  req.Direction,
    TechnologyName: req.Technology,
  })
  if err != nil {
    respondError(c, err)
    return
  }

  c.JSON(http.StatusCreated, gin.H{
    "assessment_id":  result.Assessment.ID,
    "status":         result.Assessment.Status,
    "attempt_number": result.Assessment.AttemptNumber,
    "competencies":   result.Competencies,
    "creation_report": gin.H{
      "succeeded": result.Report.Succeeded,
      "failed":    result.Report.Failed,
    },
  })
}

// GET /api/assessments
func (h *AssessmentHandler) List(c *gin.Context) {
  userID, ok := callerID(c)
  if !ok {
    return
  }

  filter := repos.AssessmentFilter{}
  if status := c.Query("status"); status != "" {
    filter.Status = &status
  }
  if raw := c.Query("direction_id"); raw != "" {
    id, err := uuid.Parse(raw)
    if err != nil {
      c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "validation_error", "message": "invalid direction_id"}})
      return
    }
    filter.DirectionID = &id
  }
  if raw := c.Query("technology_id"); raw != "" {
    id, err := uuid.Parse(raw)
    if err != nil {
      c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "validation_error", "message": "invalid technology_id"}})
      return
    }
    filter.TechnologyID = &id
  }

  assessments, err := h.assessmentSvc.List(c.Request.Context(), userID, filter)
  if err != nil {
    respondError(c, err)
    return
  }

  summaries := make([]gin.H, 0, len(assessments))
  for _, a := range assessments {
    summaries = append(summaries, assessmentSummary(a))
  }
  c.JSON(http.StatusOK, summaries)
}

// GET /api/assessments/:id
func (h *AssessmentHandler) Get(c *gin.Context) {
  userID, ok := callerID(c)
  if !ok {
    return
  }
  assessmentID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }

  detail, err := h.assessmentSvc.Get(c.Request.Context(), userID, assessmentID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, detail)
}

// POST /api/assessments/:id/complete
func (h *AssessmentHandler) Complete(c *gin.Context) {
  userID, ok := callerID(c)
  if !ok {
    return
  }
  assessmentID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }

  result, err := h.assessmentSvc.Complete(c.Request.Context(), userID, assessmentID)
  if err != nil {
    respondError(c, err)
    return
  }

  body := assessmentSummary(result.Assessment)
  body["already_completed"] = result.AlreadyCompleted
  c.JSON(http.StatusOK, body)
}

// DELETE /api/assessments/:id
func (h *AssessmentHandler) Abandon(c *gin.Context) {
  userID, ok := callerID(c)
  if !ok {
    return
  }
  assessmentID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }

  assessment, err := h.assessmentSvc.Abandon(c.Request.Context(), userID, assessmentID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, assessmentSummary(assessment))
}

// POST /api/assessments/:id/restart
func (h *AssessmentHandler) Restart(c *gin.Context) {
  userID, ok := callerID(c)
  if !ok {
    return
  }
  assessmentID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }

  result, err := h.assessmentSvc.Restart(c.Request.Context(), userID, assessmentID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{
    "assessment_id":  result.Assessment.ID,
    "status":         result.Assessment.Status,
    "attempt_number": result.Assessment.AttemptNumber,
    "competencies":   result.Competencies,
    "creation_report": gin.H{
      "succeeded": result.Report.Succeeded,
      "failed":    result.Report.Failed,
    },
  })
}

func assessmentSummary(a *types.Assessment) gin.H {
  summary := gin.H{
    "id":             a.ID,
    "status":         a.Status,
    "attempt_number": a.AttemptNumber,
    "overall_score":  a.OverallScore,
    "started_at":     a.StartedAt,
    "completed_at":   a.CompletedAt,
  }
  if a.Direction != nil {
    summary["direction"] = gin.H{"id": a.Direction.ID, "name": a.Direction.Name, "display_name": a.Direction.DisplayName}
  }
  if a.Technology != nil {
    summary["technology"] = gin.H{"id": a.Technology.ID, "name": a.Technology.Name}
  }
  return summary
}
