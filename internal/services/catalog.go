package services

import (
  "context"

  "github.com/google/uuid"

  "github.com/skillvoice/skillvoice-backend/internal/logger"
  "github.com/skillvoice/skillvoice-backend/internal/repos"
)

type DirectionView struct {
  ID           uuid.UUID        `json:"id"`
  Name         string           `json:"name"`
  DisplayName  string           `json:"display_name"`
  Description  string           `json:"description"`
  Technologies []TechnologyView `json:"technologies"`
}

type TechnologyView struct {
  ID          uuid.UUID `json:"id"`
  Name        string    `json:"name"`
  Description string    `json:"description"`
}

type CatalogService interface {
  ListDirections(ctx context.Context) ([]DirectionView, error)
}

type catalogService struct {
  log            *logger.Logger
  directionRepo  repos.DirectionRepo
  technologyRepo repos.TechnologyRepo
}

func NewCatalogService(log *logger.Logger, directionRepo repos.DirectionRepo, technologyRepo repos.TechnologyRepo) CatalogService {
  return &catalogService{
    log:            log.With("service", "CatalogService"),
    directionRepo:  directionRepo,
    technologyRepo: technologyRepo,
  }
}

func (s *catalogService) ListDirections(ctx context.Context) ([]DirectionView, error) {
  directions, err := s.directionRepo.ListAll(ctx, nil)
  if err != nil {
    return nil, err
  }

  views := make([]DirectionView, 0, len(directions))
  for _, direction := range directions {
    view := DirectionView{
      ID:           direction.ID,
      Name:         direction.Name,
      DisplayName:  direction.DisplayName,
      Description:  direction.Description,
      Technologies: []TechnologyView{},
    }
    technologies, err := s.technologyRepo.ListByDirectionID(ctx, nil, direction.ID)
    if err != nil {
      return nil, err
    }
    for _, tech := range technologies {
      view.Technologies = append(view.Technologies, TechnologyView{
        ID:          tech.ID,
        Name:        tech.Name,
        Description: tech.Description,
      })
    }
    views = append(views, view)
  }
  return views, nil
}
