package services

import (
	"MucosaView/models"
	"MucosaView/repositories"
	"context"
)

type PatientService struct {
	repository *repositories.PatientRepository
}

func NewPatientService(repository *repositories.PatientRepository) *PatientService {
	return &PatientService{repository: repository}
}

func (s *PatientService) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	return s.repository.GetByID(ctx, id)
}

func (s *PatientService) GetAll(ctx context.Context) ([]models.Patient, error) {
	return s.repository.GetAll(ctx)
}

func (s *PatientService) Replace(ctx context.Context, id string, payload *models.PatientReplace) (*models.Patient, bool, error) {
	return s.repository.Replace(ctx, id, payload)
}
