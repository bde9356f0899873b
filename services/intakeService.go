package services

import (
	"MucosaView/models"
	"MucosaView/repositories"
	"MucosaView/storage"
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// IntakeService composes the upsert resolver, the visit sequencing and the
// content-addressed photo store into the three public intake operations. Each
// operation runs in a single transaction: any failure rolls back everything
// written by that operation.
type IntakeService struct {
	db       *gorm.DB
	patients *repositories.PatientRepository
	visits   *repositories.VisitRepository
	photos   *repositories.PhotoRepository
	blobs    storage.BlobStore
}

func NewIntakeService(
	db *gorm.DB,
	patients *repositories.PatientRepository,
	visits *repositories.VisitRepository,
	photos *repositories.PhotoRepository,
	blobs storage.BlobStore,
) *IntakeService {
	return &IntakeService{db: db, patients: patients, visits: visits, photos: photos, blobs: blobs}
}

// VisitResult is the response shape shared by Register and AddVisit.
type VisitResult struct {
	PatientID        string `json:"patient_id"`
	VisitID          string `json:"visit_id"`
	VisitNumber      int    `json:"visit_number"`
	GestationalWeeks *int   `json:"gestational_weeks"`
	PatientCreated   bool   `json:"-"`
}

// Register upserts the patient from the intake payload and creates the first
// visit of this intake event.
func (s *IntakeService) Register(ctx context.Context, req *models.RegisterRequest) (*VisitResult, error) {
	var result VisitResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		patient, created, err := s.patients.Upsert(ctx, tx, req.ClientID, &req.Personal)
		if err != nil {
			return err
		}
		if created {
			logrus.Infof("patient created: id=%s dni=%s", patient.ID, patient.DNI)
		} else {
			logrus.Infof("patient updated: id=%s dni=%s", patient.ID, patient.DNI)
		}

		visit := req.Obstetric.ToVisit(patient.ID)
		if err := s.visits.Create(tx, visit); err != nil {
			return err
		}
		logrus.Infof("visit created: id=%s visit_number=%d", visit.ID, visit.VisitNumber)

		result = VisitResult{
			PatientID:        patient.ID,
			VisitID:          visit.ID,
			VisitNumber:      visit.VisitNumber,
			GestationalWeeks: visit.GestationalWeeks(time.Now()),
			PatientCreated:   created,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AddVisit creates a follow-up visit for the patient with the given DNI. The
// sequence number is server-assigned; any client-suggested number is ignored.
func (s *IntakeService) AddVisit(ctx context.Context, dni string, vitals *models.ObstetricData) (*VisitResult, error) {
	var result VisitResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		patient, err := s.patients.GetByDNI(tx, dni)
		if err != nil {
			return err
		}

		visit := vitals.ToVisit(patient.ID)
		if err := s.visits.Create(tx, visit); err != nil {
			return err
		}

		result = VisitResult{
			PatientID:        patient.ID,
			VisitID:          visit.ID,
			VisitNumber:      visit.VisitNumber,
			GestationalWeeks: visit.GestationalWeeks(time.Now()),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// PhotoUpload carries an incoming photo stream and its metadata.
type PhotoUpload struct {
	File         io.Reader
	DeclaredSize int64
	Type         string
	Index        int
	OriginalName string
	ContentType  string
	// SHA256, when supplied by the client, skips digest computation
	// (pre-computed-hash workflows). The stored size still comes from the
	// blob store, never from declared metadata.
	SHA256 string
}

// PhotoResult is the response shape of AttachPhoto.
type PhotoResult struct {
	PhotoID  string `json:"photo_id"`
	VisitID  string `json:"visit_id"`
	StoredAs string `json:"stored_as"`
}

// AttachPhoto ingests a photo for the latest visit of the patient with the
// given DNI. The storage key is a pure function of the patient's DNI, the
// photo type label, the visit sequence number, the photo index and the file
// extension, so it is reconstructible without a lookup.
func (s *IntakeService) AttachPhoto(ctx context.Context, dni string, upload *PhotoUpload) (*PhotoResult, error) {
	var result PhotoResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		patient, err := s.patients.GetByDNI(tx, dni)
		if err != nil {
			return err
		}

		visit, err := s.visits.LatestByPatient(tx, patient.ID)
		if err != nil {
			return err
		}

		taken, err := s.photos.SlotTaken(tx, visit.ID, upload.Type, upload.Index)
		if err != nil {
			return err
		}
		if taken {
			return repositories.ErrDuplicatePhoto
		}

		key := models.PhotoStorageKey(patient.DNI, upload.Type, visit.VisitNumber, upload.Index, upload.OriginalName)

		// Reserve the slot before touching the blob store: the row insert
		// holds the (visit, type, index) unique index, so a racing attach for
		// the same slot fails here before it can write over the winner's
		// object under the same deterministic key.
		photo := &models.Photo{
			VisitID:      visit.ID,
			Type:         upload.Type,
			Index:        upload.Index,
			StorageKey:   key,
			OriginalName: upload.OriginalName,
			ContentType:  upload.ContentType,
		}
		if err := s.photos.Create(ctx, tx, photo); err != nil {
			return err
		}

		hash := upload.SHA256
		var size int64
		if hash != "" {
			size, err = s.blobs.Put(ctx, key, upload.File, upload.DeclaredSize, upload.ContentType)
			if err != nil {
				return err
			}
		} else {
			hash, size, err = storage.Ingest(ctx, s.blobs, key, upload.File, upload.DeclaredSize, upload.ContentType)
			if err != nil {
				return err
			}
		}

		photo.SHA256 = hash
		photo.Size = size
		if err := s.photos.SetContent(ctx, tx, photo); err != nil {
			return err
		}
		logrus.Infof("photo stored: id=%s visit=%s key=%s sha256=%s", photo.ID, visit.ID, key, hash)

		result = PhotoResult{PhotoID: photo.ID, VisitID: visit.ID, StoredAs: key}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
