package services

import (
	"MucosaView/models"
	"MucosaView/repositories"
	"context"
)

type VisitService struct {
	repository *repositories.VisitRepository
}

func NewVisitService(repository *repositories.VisitRepository) *VisitService {
	return &VisitService{repository: repository}
}

func (s *VisitService) GetByID(ctx context.Context, id string) (*models.Visit, error) {
	return s.repository.GetByID(ctx, id)
}

// UpsertByID performs the conditional update, or creates the visit when the
// id is unknown.
func (s *VisitService) UpsertByID(ctx context.Context, id, token string, payload *models.VisitUpdate) (*models.Visit, bool, error) {
	return s.repository.UpsertByID(ctx, id, token, payload)
}
