package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/services"
)

type RoadmapHandler struct {
  log        *logger.Logger
  roadmapSvc services.RoadmapService
}

func NewRoadmapHandler(log *logger.Logger, roadmapSvc services.RoadmapService) *RoadmapHandler {
  return &RoadmapHandler{
    log:        log.With("handler", "RoadmapHandler"),
    roadmapSvc: roadmapSvc,
  }
}

// GET /api/assessments/:id/roadmap
// Generates on first request, returns the stored roadmap afterwards.
func (h *RoadmapHandler) GetRoadmap(c *gin.Context) {
  userID, ok := callerID(c)
  if !ok {
    return
  }
  assessmentID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }

  roadmap, err := h.roadmapSvc.GetOrGenerate(c.Request.Context(), userID, assessmentID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, roadmap)
}
