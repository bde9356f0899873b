package repositories

import (
	"MucosaView/models"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VisitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

// nextVisitNumber assigns the per-patient sequence. It must run inside the
// enclosing transaction: it locks the patient's existing visit rows before
// reading the current maximum, so two racing visit creations for the same
// patient serialize instead of both observing the same max. An unknown
// patient id yields 1 without locking.
func (r *VisitRepository) nextVisitNumber(tx *gorm.DB, patientID string) (int, error) {
	if patientID == "" {
		return 1, nil
	}

	// SELECT ... FOR UPDATE is postgres syntax; sqlite's single writer lock
	// already serializes and rejects the clause.
	if tx.Dialector.Name() == "postgres" {
		var ids []string
		err := tx.Model(&models.Visit{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("patient_id = ?", patientID).
			Pluck("id", &ids).Error
		if err != nil {
			return 0, fmt.Errorf("failed to lock visit rows: %w", err)
		}
	}

	var maxNumber int
	err := tx.Model(&models.Visit{}).
		Where("patient_id = ?", patientID).
		Select("COALESCE(MAX(visit_number), 0)").
		Scan(&maxNumber).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read max visit number: %w", err)
	}
	return maxNumber + 1, nil
}

// Create persists a new visit inside the caller's transaction, assigning id,
// version and the per-patient sequence number when not already set. A unique
// violation on (patient, visit_number) means a racing creation won; the
// enclosing transaction rolls back so no partially numbered visit survives.
func (r *VisitRepository) Create(tx *gorm.DB, visit *models.Visit) error {
	if visit.ID == "" {
		visit.ID = uuid.New().String()
	}
	if visit.Version == 0 {
		visit.Version = 1
	}
	if visit.VisitNumber == 0 {
		n, err := r.nextVisitNumber(tx, visit.PatientID)
		if err != nil {
			return err
		}
		visit.VisitNumber = n
	}
	if err := tx.Create(visit).Error; err != nil {
		return fmt.Errorf("failed to create visit: %w", err)
	}
	return nil
}

func (r *VisitRepository) GetByID(ctx context.Context, id string) (*models.Visit, error) {
	var visit models.Visit
	if err := r.db.WithContext(ctx).First(&visit, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitNotFound
		}
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}
	return &visit, nil
}

// LatestByPatient returns the most recently created visit, the attachment
// target for incoming photos.
func (r *VisitRepository) LatestByPatient(tx *gorm.DB, patientID string) (*models.Visit, error) {
	var visit models.Visit
	err := tx.Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Order("visit_number DESC").
		First(&visit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoVisits
		}
		return nil, fmt.Errorf("failed to get latest visit: %w", err)
	}
	return &visit, nil
}

// UpsertByID implements PUT /api/visits/:id. When the visit exists the update
// is conditional: an If-Match token must equal the stored version token (an
// absent token is accepted), the supplied fields replace the stored ones and
// the version increments by exactly one. The read-compare-mutate-increment
// sequence runs in a single transaction holding a row lock, so two racing
// conditional updates cannot both observe the same stale version. When the id
// is unknown a new visit is created with that id and a server-assigned
// sequence number.
func (r *VisitRepository) UpsertByID(ctx context.Context, id, token string, payload *models.VisitUpdate) (*models.Visit, bool, error) {
	var result models.Visit
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var visit models.Visit
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		err := q.First(&visit, "id = ?", id).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load visit: %w", err)
		}

		if errors.Is(err, gorm.ErrRecordNotFound) {
			if payload.PatientID == "" {
				return ErrVisitPatientRequired
			}
			visit = models.Visit{ID: id, PatientID: payload.PatientID}
			payload.ApplyTo(&visit)
			if err := r.Create(tx, &visit); err != nil {
				return err
			}
			created = true
			result = visit
			return nil
		}

		if token != "" && token != visit.VersionToken() {
			return ErrVersionMismatch
		}

		payload.ApplyTo(&visit)
		visit.Version++
		if err := tx.Save(&visit).Error; err != nil {
			return fmt.Errorf("failed to update visit: %w", err)
		}
		result = visit
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &result, created, nil
}
