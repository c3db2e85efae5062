package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/services"
)

type CatalogHandler struct {
  log        *logger.Logger
  catalogSvc services.CatalogService
}

func NewCatalogHandler(log *logger.Logger, catalogSvc services.CatalogService) *CatalogHandler {
  return &CatalogHandler{
    log:        log.With("handler", "CatalogHandler"),
    catalogSvc: catalogSvc,
  }
}

// GET /api/catalog/directions
func (h *CatalogHandler) ListDirections(c *gin.Context) {
  directions, err := h.catalogSvc.ListDirections(c.Request.Context())
  if err != nil {
    respondError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"directions": directions})
}
