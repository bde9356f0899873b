package models

import "strings"

// Payload types for the intake API. Optional fields are pointers so a merge
// can tell "absent" apart from "supplied": nil leaves the stored value
// untouched, and a supplied blank string is suppressed the same way so an
// empty form field never clobbers previously recorded data.

// present reports whether an optional string field carries a usable value.
func present(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return "", false
	}
	return t, true
}

// presentDate suppresses the zero Date a blank JSON string decodes into, so
// `"fechaUltimoPeriodo": ""` behaves exactly like an absent field.
func presentDate(d *Date) *Date {
	if d == nil || d.IsZero() {
		return nil
	}
	return d
}

// PersonalData is the patient block of an intake request.
type PersonalData struct {
	DNI       *string `json:"dni"`
	FirstName *string `json:"nombre"`
	LastName  *string `json:"apellido"`
	Age       *int16  `json:"edad"`
	Region    *string `json:"region"`
	Province  *string `json:"provincia"`
	District  *string `json:"distrito"`
	Address   *string `json:"direccion"`
	MapsURL   *string `json:"mapsUrl"`
}

// DNIValue returns the trimmed DNI, or "" when absent or blank.
func (p *PersonalData) DNIValue() string {
	v, _ := present(p.DNI)
	return v
}

// ApplyTo merges the supplied fields into patient. Absent and blank fields
// leave the stored values unchanged.
func (p *PersonalData) ApplyTo(patient *Patient) {
	if v, ok := present(p.DNI); ok {
		patient.DNI = v
	}
	if v, ok := present(p.FirstName); ok {
		patient.FirstName = v
	}
	if v, ok := present(p.LastName); ok {
		patient.LastName = v
	}
	if p.Age != nil {
		patient.Age = *p.Age
	}
	if v, ok := present(p.Region); ok {
		patient.Region = v
	}
	if v, ok := present(p.Province); ok {
		patient.Province = v
	}
	if v, ok := present(p.District); ok {
		patient.District = v
	}
	if v, ok := present(p.Address); ok {
		patient.Address = v
	}
	if v, ok := present(p.MapsURL); ok {
		patient.MapsURL = v
	}
}

// ObstetricData is the vitals block of an intake request.
type ObstetricData struct {
	HeartRate  *int16   `json:"pulsaciones"`
	Hemoglobin *float64 `json:"hemoglobina"`
	SpO2       *int16   `json:"oxigeno"`
	LMPDate    *Date    `json:"fechaUltimoPeriodo"`
}

// ToVisit builds an unsaved Visit for the patient. The visit number and
// version are assigned by the repository at creation time.
func (o *ObstetricData) ToVisit(patientID string) *Visit {
	return &Visit{
		PatientID:  patientID,
		HeartRate:  o.HeartRate,
		Hemoglobin: o.Hemoglobin,
		SpO2:       o.SpO2,
		LMPDate:    presentDate(o.LMPDate),
	}
}

// RegisterRequest is the body of POST /api/mucosa/registro.
type RegisterRequest struct {
	ClientID  string        `json:"client_uuid"`
	Personal  PersonalData  `json:"datos_personales"`
	Obstetric ObstetricData `json:"datos_obstetricos"`
}

// AddVisitRequest is the body of POST /api/mucosa/registro/:dni/visita.
// VisitNumber is informational only; the server assigns the real sequence.
type AddVisitRequest struct {
	Obstetric   ObstetricData `json:"datos_obstetricos"`
	VisitNumber *int          `json:"nro_visita"`
}

// PatientReplace is the full attribute set for PUT /api/patients/:id.
type PatientReplace struct {
	DNI       string `json:"dni"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Age       int16  `json:"edad"`
	Region    string `json:"region"`
	Province  string `json:"provincia"`
	District  string `json:"distrito"`
	Address   string `json:"direccion"`
	MapsURL   string `json:"maps_url"`
}

// ApplyTo overwrites every attribute; PUT is a full replace, not a merge.
func (p *PatientReplace) ApplyTo(patient *Patient) {
	patient.DNI = strings.TrimSpace(p.DNI)
	patient.FirstName = strings.TrimSpace(p.FirstName)
	patient.LastName = strings.TrimSpace(p.LastName)
	patient.Age = p.Age
	patient.Region = strings.TrimSpace(p.Region)
	patient.Province = strings.TrimSpace(p.Province)
	patient.District = strings.TrimSpace(p.District)
	patient.Address = strings.TrimSpace(p.Address)
	patient.MapsURL = strings.TrimSpace(p.MapsURL)
}

// VisitUpdate is the field set for PUT /api/visits/:id. On update every
// vital is replaced with the supplied value (nil clears); the owning patient
// is only consulted when the PUT creates a missing visit.
type VisitUpdate struct {
	PatientID  string   `json:"patient"`
	HeartRate  *int16   `json:"bpm"`
	Hemoglobin *float64 `json:"hemoglobina"`
	SpO2       *int16   `json:"spo2"`
	LMPDate    *Date    `json:"lmp_date"`
}

// ApplyTo performs the full field replacement on an existing visit.
func (u *VisitUpdate) ApplyTo(v *Visit) {
	v.HeartRate = u.HeartRate
	v.Hemoglobin = u.Hemoglobin
	v.SpO2 = u.SpO2
	v.LMPDate = presentDate(u.LMPDate)
}
