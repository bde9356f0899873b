package repositories

import (
	"MucosaView/models"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database for repository tests. The
// connection pool is capped at one so concurrent goroutines serialize on the
// single sqlite writer the same way postgres transactions serialize on row
// locks.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Patient{}, &models.Visit{}, &models.Photo{}))
	return db
}

func createTestPatient(t *testing.T, db *gorm.DB, dni string) *models.Patient {
	t.Helper()

	patient := &models.Patient{
		ID:        uuid.New().String(),
		DNI:       dni,
		FirstName: "Maria",
		LastName:  "Quispe",
		Age:       27,
		Region:    "Cusco",
		Province:  "Cusco",
		District:  "Wanchaq",
		Address:   "Av. El Sol 120",
	}
	require.NoError(t, db.Create(patient).Error)
	return patient
}

func createTestVisit(t *testing.T, db *gorm.DB, patientID string) *models.Visit {
	t.Helper()

	repo := NewVisitRepository(db)
	visit := &models.Visit{PatientID: patientID}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.Create(tx, visit)
	}))
	return visit
}

func strp(s string) *string { return &s }
func i16p(v int16) *int16   { return &v }
