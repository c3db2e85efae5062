package services

import (
  "context"
  "strings"

  "github.com/google/uuid"

  "github.com/skillvoice/skillvoice-backend/internal/apierr"
  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/repos"
  "github.com/skillvoice/skillvoice-backend/internal/types"
)

type DirectionInput struct {
  Name         string
  DisplayName  string
  Description  string
  Technologies []string
}

type TechnologyInput struct {
  Name        string
  Description string
}

// AdminService manages the catalog: directions, technologies, and the links
// that decide which competencies an assessment covers.
type AdminService interface {
  CreateDirection(ctx context.Context, input DirectionInput) (*types.Direction, error)
  CreateTechnology(ctx context.Context, input TechnologyInput) (*types.Technology, error)
  LinkTechnologyToDirection(ctx context.Context, directionID, technologyID uuid.UUID) (*types.Technology, error)
  LinkCompetencyToDirection(ctx context.Context, directionID, competencyID uuid.UUID, orderIndex int) error
  LinkCompetencyToTechnology(ctx context.Context, technologyID, competencyID uuid.UUID, orderIndex int) error
  BatchLinkTechnologies(ctx context.Context, directionID uuid.UUID, technologyIDs []uuid.UUID) (int, error)
}

type adminService struct {
  log            *logger.Logger
  directionRepo  repos.DirectionRepo
  technologyRepo repos.TechnologyRepo
  competencyRepo repos.CompetencyRepo
}

func NewAdminService(
  log *logger.Logger,
  directionRepo repos.DirectionRepo,
  technologyRepo repos.TechnologyRepo,
  competencyRepo repos.CompetencyRepo,
) AdminService {
  return &adminService{
    log:            log.With("service", "AdminService"),
    directionRepo:  directionRepo,
    technologyRepo: technologyRepo,
    competencyRepo: competencyRepo,
  }
}

func (s *adminService) CreateDirection(ctx context.Context, input DirectionInput) (*types.Direction, error) {
  name := strings.TrimSpace(input.Name)
  if name == "" {
    return nil, apierr.Validation("name is required")
  }
  displayName := strings.TrimSpace(input.DisplayName)
  if displayName == "" {
    displayName = name
  }

  direction, err := s.directionRepo.FindOrCreateByName(ctx, nil, name, displayName, input.Description)
  if err != nil {
    return nil, err
  }

  for _, techName := range input.Technologies {
    techName = strings.TrimSpace(techName)
    if techName == "" {
      continue
    }
    if _, err := s.technologyRepo.FindOrCreateByName(ctx, nil, techName, "", &direction.ID); err != nil {
      s.log.Error("Failed to create technology for direction",
        "direction", direction.Name,
        "technology", techName,
        "error", err,
      )
      return nil, err
    }
  }

  s.log.Info("Direction created", "direction_id", direction.ID, "name", direction.Name)
  return direction, nil
}

func (s *adminService) CreateTechnology(ctx context.Context, input TechnologyInput) (*types.Technology, error) {
  name := strings.TrimSpace(input.Name)
  if name == "" {
    return nil, apierr.Validation("name is required")
  }

  technology, err := s.technologyRepo.FindOrCreateByName(ctx, nil, name, input.Description, nil)
  if err != nil {
    return nil, err
  }
  s.log.Info("Technology created", "technology_id", technology.ID, "name", technology.Name)
  return technology, nil
}

func (s *adminService) LinkTechnologyToDirection(ctx context.Context, directionID, technologyID uuid.UUID) (*types.Technology, error) {
  if _, err := s.requireDirection(ctx, directionID); err != nil {
    return nil, err
  }
  technology, err := s.technologyRepo.GetByID(ctx, nil, technologyID)
  if err != nil {
    return nil, err
  }
  if technology == nil {
    return nil, apierr.NotFound("technology not found")
  }

  updated, err := s.technologyRepo.AssignDirection(ctx, nil, technologyID, directionID)
  if err != nil {
    return nil, err
  }
  s.log.Info("Technology linked to direction", "direction_id", directionID, "technology_id", technologyID)
  return updated, nil
}

func (s *adminService) LinkCompetencyToDirection(ctx context.Context, directionID, competencyID uuid.UUID, orderIndex int) error {
  if _, err := s.requireDirection(ctx, directionID); err != nil {
    return err
  }
  if err := s.requireCompetency(ctx, competencyID); err != nil {
    return err
  }
  if err := s.competencyRepo.LinkToDirection(ctx, nil, directionID, competencyID, orderIndex); err != nil {
    return err
  }
  s.log.Info("Competency linked to direction", "direction_id", directionID, "competency_id", competencyID)
  return nil
}

func (s *adminService) LinkCompetencyToTechnology(ctx context.Context, technologyID, competencyID uuid.UUID, orderIndex int) error {
  technology, err := s.technologyRepo.GetByID(ctx, nil, technologyID)
  if err != nil {
    return err
  }
  if technology == nil {
    return apierr.NotFound("technology not found")
  }
  if err := s.requireCompetency(ctx, competencyID); err != nil {
    return err
  }
  if err := s.competencyRepo.LinkToTechnology(ctx, nil, technologyID, competencyID, orderIndex); err != nil {
    return err
  }
  s.log.Info("Competency linked to technology", "technology_id", technologyID, "competency_id", competencyID)
  return nil
}

// BatchLinkTechnologies attaches several technologies to a direction at once.
// Individual failures are logged and skipped; the count of successful links
// comes back to the caller.
func (s *adminService) BatchLinkTechnologies(ctx context.Context, directionID uuid.UUID, technologyIDs []uuid.UUID) (int, error) {
  if _, err := s.requireDirection(ctx, directionID); err != nil {
    return 0, err
  }

  linked := 0
  for _, technologyID := range technologyIDs {
    if _, err := s.technologyRepo.AssignDirection(ctx, nil, technologyID, directionID); err != nil {
      s.log.Warn("Skipping technology in batch link",
        "direction_id", directionID,
        "technology_id", technologyID,
        "error", err,
      )
      continue
    }
    linked++
  }
  return linked, nil
}

func (s *adminService) requireDirection(ctx context.Context, directionID uuid.UUID) (*types.Direction, error) {
  direction, err := s.directionRepo.GetByID(ctx, nil, directionID)
  if err != nil {
    return nil, err
  }
  if direction == nil {
    return nil, apierr.NotFound("direction not found")
  }
  return direction, nil
}

func (s *adminService) requireCompetency(ctx context.Context, competencyID uuid.UUID) error {
  found, err := s.competencyRepo.GetByIDs(ctx, nil, []uuid.UUID{competencyID})
  if err != nil {
    return err
  }
  if len(found) == 0 {
    return apierr.NotFound("competency not found")
  }
  return nil
}
