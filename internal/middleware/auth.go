package middleware

import (
  "net/http"
  "strings"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/requestdata"
  "github.com/skillvoice/skillvoice-backend/internal/services"
)

type AuthMiddleware struct {
  log         *logger.Logger
  authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
  return &AuthMiddleware{
    log:         log.With("middleware", "AuthMiddleware"),
    authService: authService,
  }
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
  return func(c *gin.Context) {
    tokenString := extractBearerToken(c)
    if tokenString == "" {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "unauthorized", "message": "missing or invalid token"}})
      return
    }

    user, err := am.authService.Authenticate(c.Request.Context(), tokenString)
    if err != nil {
      am.log.Debug("Authentication failed", "error", err)
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "unauthorized", "message": "invalid token"}})
      return
    }
    if user.ID == uuid.Nil {
      c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": gin.H{"code": "access_denied", "message": "forbidden"}})
      return
    }

    ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{
      TokenString: tokenString,
      UserID:      user.ID,
    })
    c.Request = c.Request.WithContext(ctx)
    c.Next()
  }
}

func extractBearerToken(c *gin.Context) string {
  authHeader := c.GetHeader("Authorization")
  if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
    return authHeader[7:]
  }
  return c.Query("token")
}
