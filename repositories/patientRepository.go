package repositories

import (
	"MucosaView/cache"
	"MucosaView/models"
	"MucosaView/utils"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	PatientCacheExpiry  = 7 * 24 * time.Hour
	patientListCacheKey = "patients_cache"
)

type PatientRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewPatientRepository(db *gorm.DB, cache *cache.Cache) *PatientRepository {
	return &PatientRepository{db: db, cache: cache}
}

// Upsert resolves the intake payload against existing patients and applies a
// partial merge. Resolution order: candidate id, then DNI, else create. It
// must run inside the caller's transaction so the whole intake operation
// stays atomic. Returns the persisted patient and whether a row was created.
func (r *PatientRepository) Upsert(ctx context.Context, tx *gorm.DB, candidateID string, payload *models.PersonalData) (*models.Patient, bool, error) {
	var patient models.Patient
	found := false

	if candidateID != "" {
		err := tx.First(&patient, "id = ?", candidateID).Error
		switch {
		case err == nil:
			found = true
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, false, fmt.Errorf("failed to resolve patient by id: %w", err)
		}
	}

	dni := payload.DNIValue()
	if !found && dni != "" {
		err := tx.First(&patient, "dni = ?", dni).Error
		switch {
		case err == nil:
			found = true
			logrus.Infof("intake upsert: reusing patient with dni=%s", dni)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, false, fmt.Errorf("failed to resolve patient by dni: %w", err)
		}
	}

	if found {
		if dni != "" && dni != patient.DNI {
			// Moving a DNI onto another identity is an integrity violation,
			// never a silent merge.
			var count int64
			if err := tx.Model(&models.Patient{}).Where("dni = ? AND id <> ?", dni, patient.ID).Count(&count).Error; err != nil {
				return nil, false, fmt.Errorf("failed to check dni uniqueness: %w", err)
			}
			if count > 0 {
				return nil, false, ErrDNIConflict
			}
		}
		payload.ApplyTo(&patient)
		if err := utils.ValidatePatient(&patient); err != nil {
			return nil, false, err
		}
		if err := tx.Save(&patient).Error; err != nil {
			if isUniqueViolation(err) {
				return nil, false, ErrDNIConflict
			}
			return nil, false, fmt.Errorf("failed to update patient: %w", err)
		}
		r.invalidate(ctx, patient.ID)
		return &patient, false, nil
	}

	patient = models.Patient{ID: candidateID}
	if patient.ID == "" {
		patient.ID = uuid.New().String()
	}
	payload.ApplyTo(&patient)
	if err := utils.ValidatePatient(&patient); err != nil {
		return nil, false, err
	}
	if err := tx.Create(&patient).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, false, ErrDNIConflict
		}
		return nil, false, fmt.Errorf("failed to create patient: %w", err)
	}
	r.invalidate(ctx, patient.ID)
	return &patient, true, nil
}

// Replace implements PUT semantics: full update when the id exists, create
// with that id otherwise.
func (r *PatientRepository) Replace(ctx context.Context, id string, payload *models.PatientReplace) (*models.Patient, bool, error) {
	var result models.Patient
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var patient models.Patient
		err := tx.First(&patient, "id = ?", id).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load patient: %w", err)
		}

		if errors.Is(err, gorm.ErrRecordNotFound) {
			patient = models.Patient{ID: id}
			created = true
		}

		payload.ApplyTo(&patient)
		if err := utils.ValidatePatient(&patient); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Patient{}).Where("dni = ? AND id <> ?", patient.DNI, id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check dni uniqueness: %w", err)
		}
		if count > 0 {
			return ErrDNIConflict
		}

		if created {
			if err := tx.Create(&patient).Error; err != nil {
				if isUniqueViolation(err) {
					return ErrDNIConflict
				}
				return fmt.Errorf("failed to create patient: %w", err)
			}
		} else if err := tx.Save(&patient).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDNIConflict
			}
			return fmt.Errorf("failed to update patient: %w", err)
		}

		result = patient
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	r.invalidate(ctx, id)
	return &result, created, nil
}

// GetByDNI loads a patient by natural key inside the given transaction.
func (r *PatientRepository) GetByDNI(tx *gorm.DB, dni string) (*models.Patient, error) {
	var patient models.Patient
	if err := tx.First(&patient, "dni = ?", dni).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to get patient by dni: %w", err)
	}
	return &patient, nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := r.patientCacheKey(id)
	if cached, err := r.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		var patient models.Patient
		if err := json.Unmarshal([]byte(cached), &patient); err == nil {
			return &patient, nil
		}
	}

	var patient models.Patient
	if err := r.db.WithContext(ctx).First(&patient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	if payload, err := json.Marshal(patient); err == nil {
		if err := r.cache.Set(ctx, cacheKey, payload, PatientCacheExpiry); err != nil {
			logrus.Warnf("failed to set patient in cache: %v", err)
		}
	}

	return &patient, nil
}

func (r *PatientRepository) GetAll(ctx context.Context) ([]models.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if cached, err := r.cache.Get(ctx, patientListCacheKey); err == nil && cached != "" {
		var patients []models.Patient
		if err := json.Unmarshal([]byte(cached), &patients); err == nil {
			return patients, nil
		}
	}

	var patients []models.Patient
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("failed to get all patients: %w", err)
	}

	if payload, err := json.Marshal(patients); err == nil {
		if err := r.cache.Set(ctx, patientListCacheKey, payload, PatientCacheExpiry); err != nil {
			logrus.Warnf("failed to set patients in cache: %v", err)
		}
	}

	return patients, nil
}

func (r *PatientRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, r.patientCacheKey(id)); err != nil {
		logrus.Warnf("failed to delete patient cache: %v", err)
	}
	if err := r.cache.Delete(ctx, patientListCacheKey); err != nil {
		logrus.Warnf("failed to delete patient list cache: %v", err)
	}
}

func (r *PatientRepository) patientCacheKey(id string) string {
	return fmt.Sprintf("patient_cache:%s", id)
}
