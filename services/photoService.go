package services

import (
	"MucosaView/models"
	"MucosaView/repositories"
	"context"
)

type PhotoService struct {
	repository *repositories.PhotoRepository
}

func NewPhotoService(repository *repositories.PhotoRepository) *PhotoService {
	return &PhotoService{repository: repository}
}

// ExistsByHash backs the HEAD-by-hash dedup probe.
func (s *PhotoService) ExistsByHash(ctx context.Context, sha256 string) (bool, error) {
	return s.repository.ExistsByHash(ctx, sha256)
}

func (s *PhotoService) ListByVisit(ctx context.Context, visitID string) ([]models.Photo, error) {
	return s.repository.ListByVisit(ctx, visitID)
}
