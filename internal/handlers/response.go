package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/skillvoice/skillvoice-backend/internal/apierr"
  "github.com/skillvoice/skillvoice-backend/internal/requestdata"
)

// respondError maps any error through the apierr taxonomy. Unknown errors
// become opaque 500s so internals never leak to clients.
func respondError(c *gin.Context, err error) {
  apiErr := apierr.FromError(err)
  body := gin.H{"error": gin.H{"code": apiErr.Code, "message": apiErr.Error()}}
  if apiErr.Status == http.StatusInternalServerError {
    body = gin.H{"error": gin.H{"code": apiErr.Code, "message": "internal server error"}}
  }
  c.JSON(apiErr.Status, body)
}

// callerID reads the authenticated user id placed in the request context by
// the auth middleware.
func callerID(c *gin.Context) (uuid.UUID, bool) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "unauthorized", "message": "missing authentication"}})
    return uuid.Nil, false
  }
  return rd.UserID, true
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
  id, err := uuid.Parse(c.Param(name))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "validation_error", "message": "invalid " + name}})
    return uuid.Nil, false
  }
  return id, true
}
