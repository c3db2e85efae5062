package handlers

import (
  "net/http"
  "strconv"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/services"
)

type AdminHandler struct {
  log      *logger.Logger
  adminSvc services.AdminService
}

func NewAdminHandler(log *logger.Logger, adminSvc services.AdminService) *AdminHandler {
  return &AdminHandler{
    log:      log.With("handler", "AdminHandler"),
    adminSvc: adminSvc,
  }
}

type createDirectionRequest struct {
  Name         string   `json:"name" binding:"required"`
  DisplayName  string   `json:"display_name"`
  Description  string   `json:"description"`
  Technologies []string `json:"technologies"`
}

type createTechnologyRequest struct {
  Name        string `json:"name" binding:"required"`
  Description string `json:"description"`
}

type batchTechnologyLinkRequest struct {
  TechnologyIDs []uuid.UUID `json:"technology_ids" binding:"required"`
}

// POST /api/admin/directions
func (h *AdminHandler) CreateDirection(c *gin.Context) {
  var req createDirectionRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "validation_error", "message": "name is required"}})
    return
  }

  direction, err := h.adminSvc.CreateDirection(c.Request.Context(), services.DirectionInput{
    Name:         req.Name,
    DisplayName:  req.DisplayName,
    Description:  req.Description,
    Technologies: req.Technologies,
  })
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{"direction": direction, "message": "direction created"})
}

// POST /api/admin/technologies
func (h *AdminHandler) CreateTechnology(c *gin.Context) {
  var req createTechnologyRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "validation_error", "message": "name is required"}})
    return
  }

  technology, err := h.adminSvc.CreateTechnology(c.Request.Context(), services.TechnologyInput{
    Name:        req.Name,
    Description: req.Description,
  })
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{"technology": technology, "message": "technology created"})
}

// POST /api/admin/directions/:direction_id/technologies/:technology_id
func (h *AdminHandler) LinkTechnologyToDirection(c *gin.Context) {
  directionID, ok := parseIDParam(c, "direction_id")
  if !ok {
    return
  }
  technologyID, ok := parseIDParam(c, "technology_id")
  if !ok {
    return
  }

  technology, err := h.adminSvc.LinkTechnologyToDirection(c.Request.Context(), directionID, technologyID)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"technology": technology, "message": "technology linked to direction"})
}

// POST /api/admin/directions/:direction_id/competencies/:competency_id
func (h *AdminHandler) LinkCompetencyToDirection(c *gin.Context) {
  directionID, ok := parseIDParam(c, "direction_id")
  if !ok {
    return
  }
  competencyID, ok := parseIDParam(c, "competency_id")
  if !ok {
    return
  }

  err := h.adminSvc.LinkCompetencyToDirection(c.Request.Context(), directionID, competencyID, orderIndexQuery(c))
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"message": "competency linked to direction"})
}

// POST /api/admin/technologies/:technology_id/competencies/:competency_id
func (h *AdminHandler) LinkCompetencyToTechnology(c *gin.Context) {
  technologyID, ok := parseIDParam(c, "technology_id")
  if !ok {
    return
  }
  competencyID, ok := parseIDParam(c, "competency_id")
  if !ok {
    return
  }

  err := h.adminSvc.LinkCompetencyToTechnology(c.Request.Context(), technologyID, competencyID, orderIndexQuery(c))
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"message": "competency linked to technology"})
}

// POST /api/admin/directions/:direction_id/technologies/batch
func (h *AdminHandler) BatchLinkTechnologies(c *gin.Context) {
  directionID, ok := parseIDParam(c, "direction_id")
  if !ok {
    return
  }

  var req batchTechnologyLinkRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "validation_error", "message": "technology_ids is required"}})
    return
  }

  linked, err := h.adminSvc.BatchLinkTechnologies(c.Request.Context(), directionID, req.TechnologyIDs)
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"linked": linked, "message": "technologies linked to direction"})
}

func orderIndexQuery(c *gin.Context) int {
  orderIndex, _ := strconv.Atoi(c.Query("order_index"))
  return orderIndex
}
