package utils

import (
	"MucosaView/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ValidatePatient validates the fully resolved patient entity right before it
// is persisted, so merge results are checked, not just raw payloads.
func ValidatePatient(p *models.Patient) error {
	return validation.ValidateStruct(p,
		validation.Field(&p.DNI, validation.Required, validation.Length(1, 12)),
		validation.Field(&p.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.Age, validation.Required, validation.Min(int16(1)), validation.Max(int16(120))),
		validation.Field(&p.Region, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.Province, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.District, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.Address, validation.Required, validation.Length(1, 255)),
		validation.Field(&p.MapsURL, is.URL),
	)
}

// ValidateVitals checks the optional vital signs of an intake payload.
// Absent fields are fine; supplied ones must be in range.
func ValidateVitals(o *models.ObstetricData) error {
	return validation.ValidateStruct(o,
		validation.Field(&o.HeartRate, validation.Min(int16(0)), validation.Max(int16(300))),
		validation.Field(&o.Hemoglobin, validation.Min(0.0), validation.Max(99.9)),
		validation.Field(&o.SpO2, validation.Min(int16(0)), validation.Max(int16(100))),
	)
}

// ValidateVisitUpdate checks the field set of PUT /api/visits/:id.
func ValidateVisitUpdate(u *models.VisitUpdate) error {
	return validation.ValidateStruct(u,
		validation.Field(&u.HeartRate, validation.Min(int16(0)), validation.Max(int16(300))),
		validation.Field(&u.Hemoglobin, validation.Min(0.0), validation.Max(99.9)),
		validation.Field(&u.SpO2, validation.Min(int16(0)), validation.Max(int16(100))),
	)
}

// ValidatePhotoUpload checks the type tag and index of a photo upload.
func ValidatePhotoUpload(photoType string, index int) error {
	return validation.Errors{
		"type": validation.Validate(photoType,
			validation.Required,
			validation.In(models.PhotoTypeConjunctiva, models.PhotoTypeLip, models.PhotoTypeIndexFinger),
		),
		"index": validation.Validate(index, validation.Required, validation.Min(1)),
	}.Filter()
}
