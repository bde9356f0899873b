package utils

import (
	"MucosaView/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePatient(t *testing.T) {
	valid := models.Patient{
		DNI: "12345678", FirstName: "Maria", LastName: "Quispe", Age: 27,
		Region: "Cusco", Province: "Cusco", District: "Wanchaq", Address: "Av. El Sol 120",
	}
	assert.NoError(t, ValidatePatient(&valid))

	missingNames := valid
	missingNames.FirstName = ""
	err := ValidatePatient(&missingNames)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nombre")

	// Age and the location fields are required, not optional extras.
	noAge := valid
	noAge.Age = 0
	assert.Error(t, ValidatePatient(&noAge))

	noRegion := valid
	noRegion.Region = ""
	assert.Error(t, ValidatePatient(&noRegion))

	noAddress := valid
	noAddress.Address = ""
	assert.Error(t, ValidatePatient(&noAddress))

	longDNI := valid
	longDNI.DNI = "1234567890123"
	assert.Error(t, ValidatePatient(&longDNI))

	badURL := valid
	badURL.MapsURL = "not a url"
	assert.Error(t, ValidatePatient(&badURL))
}

func TestValidateVitals(t *testing.T) {
	// All fields optional.
	assert.NoError(t, ValidateVitals(&models.ObstetricData{}))

	hr := int16(82)
	spo2 := int16(97)
	hb := 11.5
	assert.NoError(t, ValidateVitals(&models.ObstetricData{HeartRate: &hr, SpO2: &spo2, Hemoglobin: &hb}))

	tooFast := int16(301)
	assert.Error(t, ValidateVitals(&models.ObstetricData{HeartRate: &tooFast}))

	overSaturated := int16(101)
	assert.Error(t, ValidateVitals(&models.ObstetricData{SpO2: &overSaturated}))

	tooMuchHb := 100.0
	assert.Error(t, ValidateVitals(&models.ObstetricData{Hemoglobin: &tooMuchHb}))
}

func TestValidatePhotoUpload(t *testing.T) {
	assert.NoError(t, ValidatePhotoUpload(models.PhotoTypeConjunctiva, 1))
	assert.NoError(t, ValidatePhotoUpload(models.PhotoTypeIndexFinger, 3))

	assert.Error(t, ValidatePhotoUpload("", 1))
	assert.Error(t, ValidatePhotoUpload("SELFIE", 1))
	assert.Error(t, ValidatePhotoUpload(models.PhotoTypeLip, 0))
}
