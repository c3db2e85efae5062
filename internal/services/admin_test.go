package services

import (
  "context"
  "net/http"
  "testing"

  "github.com/google/uuid"

  "github.com/skillvoice/skillvoice-backend/internal/apierr"
  "github.com/skillvoice/skillvoice-backend/internal/types"
)

func newTestAdminService(t *testing.T, s *memState) AdminService {
  t.Helper()
  return NewAdminService(
    testLogger(t),
    &memDirectionRepo{s: s},
    &memTechnologyRepo{s: s},
    &memCompetencyRepo{s: s},
  )
}

func TestCreateDirectionWithTechnologies(t *testing.T) {
  s := newMemState()
  svc := newTestAdminService(t, s)

  direction, err := svc.CreateDirection(context.Background(), DirectionInput{
    Name:         "Backend",
    Description:  "server-side development",
    Technologies: []string{"Go", "PostgreSQL", ""},
  })
  if err != nil {
    t.Fatalf("create direction: %v", err)
  }
  if direction.Name != "backend" {
    t.Fatalf("name = %q, want lowercase %q", direction.Name, "backend")
  }
  if direction.DisplayName != "Backend" {
    t.Fatalf("display_name = %q", direction.DisplayName)
  }

  linked := 0
  for _, tech := range s.technologies {
    if tech.DirectionID != nil && *tech.DirectionID == direction.ID {
      linked++
    }
  }
  if linked != 2 {
    t.Fatalf("technologies linked = %d, want 2 (empty name skipped)", linked)
  }
}

func TestCreateDirectionRequiresName(t *testing.T) {
  svc := newTestAdminService(t, newMemState())
  if _, err := svc.CreateDirection(context.Background(), DirectionInput{Name: "  "}); !apierr.IsStatus(err, http.StatusBadRequest) {
    t.Fatalf("expected validation error, got %v", err)
  }
}

func TestCreateTechnologyIdempotent(t *testing.T) {
  s := newMemState()
  svc := newTestAdminService(t, s)

  first, err := svc.CreateTechnology(context.Background(), TechnologyInput{Name: "Go"})
  if err != nil {
    t.Fatalf("create: %v", err)
  }
  second, err := svc.CreateTechnology(context.Background(), TechnologyInput{Name: "go"})
  if err != nil {
    t.Fatalf("repeat create: %v", err)
  }
  if first.ID != second.ID {
    t.Fatal("same name must resolve to the same technology")
  }
}

func TestLinkTechnologyToDirection(t *testing.T) {
  s := newMemState()
  direction := s.addDirection("backend")
  tech := &types.Technology{ID: uuid.New(), Name: "go"}
  s.technologies[tech.ID] = tech
  svc := newTestAdminService(t, s)

  updated, err := svc.LinkTechnologyToDirection(context.Background(), direction.ID, tech.ID)
  if err != nil {
    t.Fatalf("link: %v", err)
  }
  if updated.DirectionID == nil || *updated.DirectionID != direction.ID {
    t.Fatalf("direction_id = %v, want %s", updated.DirectionID, direction.ID)
  }

  if _, err := svc.LinkTechnologyToDirection(context.Background(), uuid.New(), tech.ID); !apierr.IsStatus(err, http.StatusNotFound) {
    t.Fatalf("missing direction must 404, got %v", err)
  }
  if _, err := svc.LinkTechnologyToDirection(context.Background(), direction.ID, uuid.New()); !apierr.IsStatus(err, http.StatusNotFound) {
    t.Fatalf("missing technology must 404, got %v", err)
  }
}

func TestLinkCompetencyToTechnology(t *testing.T) {
  s := newMemState()
  comp := newCompetency("sql", 1)
  s.competencies[comp.ID] = comp
  tech := &types.Technology{ID: uuid.New(), Name: "postgresql"}
  s.technologies[tech.ID] = tech
  svc := newTestAdminService(t, s)

  if err := svc.LinkCompetencyToTechnology(context.Background(), tech.ID, comp.ID, 1); err != nil {
    t.Fatalf("link: %v", err)
  }
  // relinking the same pair stays a no-op
  if err := svc.LinkCompetencyToTechnology(context.Background(), tech.ID, comp.ID, 2); err != nil {
    t.Fatalf("repeat link: %v", err)
  }
  if got := s.compsByTechnology[tech.ID]; len(got) != 1 || got[0] != comp.ID {
    t.Fatalf("linked competencies = %v", got)
  }

  if err := svc.LinkCompetencyToTechnology(context.Background(), tech.ID, uuid.New(), 0); !apierr.IsStatus(err, http.StatusNotFound) {
    t.Fatalf("missing competency must 404, got %v", err)
  }
}

func TestLinkCompetencyToDirection(t *testing.T) {
  s := newMemState()
  direction := s.addDirection("backend")
  comp := newCompetency("http", 1)
  s.competencies[comp.ID] = comp
  svc := newTestAdminService(t, s)

  if err := svc.LinkCompetencyToDirection(context.Background(), direction.ID, comp.ID, 0); err != nil {
    t.Fatalf("link: %v", err)
  }
  if got := s.compsByDirection[direction.ID]; len(got) != 1 || got[0] != comp.ID {
    t.Fatalf("linked competencies = %v", got)
  }
}

func TestBatchLinkTechnologiesSkipsMissing(t *testing.T) {
  s := newMemState()
  direction := s.addDirection("backend")
  first := &types.Technology{ID: uuid.New(), Name: "go"}
  second := &types.Technology{ID: uuid.New(), Name: "postgresql"}
  s.technologies[first.ID] = first
  s.technologies[second.ID] = second
  svc := newTestAdminService(t, s)

  linked, err := svc.BatchLinkTechnologies(context.Background(), direction.ID, []uuid.UUID{first.ID, uuid.New(), second.ID})
  if err != nil {
    t.Fatalf("batch link: %v", err)
  }
  if linked != 2 {
    t.Fatalf("linked = %d, want 2", linked)
  }
  if first.DirectionID == nil || second.DirectionID == nil {
    t.Fatal("surviving technologies must point at the direction")
  }

  if _, err := svc.BatchLinkTechnologies(context.Background(), uuid.New(), []uuid.UUID{first.ID}); !apierr.IsStatus(err, http.StatusNotFound) {
    t.Fatalf("missing direction must 404, got %v", err)
  }
}
