package handlers

import (
  "context"
  "encoding/json"
  "net/http"
  "net/http/httptest"
  "testing"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/repos"
  "github.com/skillvoice/skillvoice-backend/internal/requestdata"
  "github.com/skillvoice/skillvoice-backend/internal/services"
  "github.com/skillvoice/skillvoice-backend/internal/types"
)

// stubAssessmentService embeds the interface so only the methods a test
// exercises need real bodies.
type stubAssessmentService struct {
  services.AssessmentService
  assessments []*types.Assessment
}

func (s *stubAssessmentService) List(ctx context.Context, userID uuid.UUID, filter repos.AssessmentFilter) ([]*types.Assessment, error) {
  return s.assessments, nil
}

func newListRouter(t *testing.T, svc services.AssessmentService) *gin.Engine {
  t.Helper()
  gin.SetMode(gin.TestMode)
  log, err := logger.New("development")
  if err != nil {
    t.Fatalf("logger init: %v", err)
  }
  handler := NewAssessmentHandler(log, svc)

  router := gin.New()
  userID := uuid.New()
  router.Use(func(c *gin.Context) {
    c.Request = c.Request.WithContext(requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{UserID: userID}))
  })
  router.GET("/api/assessments", handler.List)
  return router
}

func TestListRespondsWithBareArray(t *testing.T) {
  svc := &stubAssessmentService{assessments: []*types.Assessment{
    {ID: uuid.New(), Status: types.AssessmentStatusInProgress, AttemptNumber: 1},
    {ID: uuid.New(), Status: types.AssessmentStatusCompleted, AttemptNumber: 2},
  }}
  router := newListRouter(t, svc)

  w := httptest.NewRecorder()
  router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/assessments", nil))

  if w.Code != http.StatusOK {
    t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
  }
  var got []map[string]any
  if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
    t.Fatalf("body is not a JSON array: %v (body %s)", err, w.Body.String())
  }
  if len(got) != 2 {
    t.Fatalf("summaries = %d, want 2", len(got))
  }
}

func TestListEmptyStaysArray(t *testing.T) {
  router := newListRouter(t, &stubAssessmentService{})

  w := httptest.NewRecorder()
  router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/assessments", nil))

  if w.Code != http.StatusOK {
    t.Fatalf("status = %d", w.Code)
  }
  if w.Body.String() != "[]" {
    t.Fatalf("body = %s, want []", w.Body.String())
  }
}
