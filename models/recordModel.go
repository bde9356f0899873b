package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Patient model
type Patient struct {
	ID        string    `gorm:"primaryKey;column:id" json:"id"`
	DNI       string    `gorm:"column:dni;size:12;not null;unique" json:"dni"`
	FirstName string    `gorm:"column:first_name;size:100;not null" json:"nombre"`
	LastName  string    `gorm:"column:last_name;size:100;not null;index" json:"apellido"`
	Age       int16     `gorm:"column:age;not null" json:"edad"`
	Region    string    `gorm:"column:region;size:100" json:"region"`
	Province  string    `gorm:"column:province;size:100" json:"provincia"`
	District  string    `gorm:"column:district;size:100" json:"distrito"`
	Address   string    `gorm:"column:address;size:255" json:"direccion"`
	MapsURL   string    `gorm:"column:maps_url" json:"maps_url"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	Visits    []Visit   `gorm:"foreignKey:PatientID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Patient) TableName() string {
	return "patient"
}

// Visit model. VisitNumber is assigned exactly once at creation and never
// recomputed; Version backs the If-Match conditional update flow.
type Visit struct {
	ID          string    `gorm:"primaryKey;column:id" json:"id"`
	PatientID   string    `gorm:"column:patient_id;not null;index;uniqueIndex:idx_patient_visitnumber" json:"patient"`
	HeartRate   *int16    `gorm:"column:heart_rate" json:"bpm"`
	Hemoglobin  *float64  `gorm:"column:hemoglobin;type:decimal(4,1)" json:"hemoglobina"`
	SpO2        *int16    `gorm:"column:spo2" json:"spo2"`
	LMPDate     *Date     `gorm:"column:lmp_date;type:date" json:"lmp_date"`
	Version     int       `gorm:"column:version;not null;default:1" json:"version"`
	VisitNumber int       `gorm:"column:visit_number;not null;uniqueIndex:idx_patient_visitnumber" json:"visit_number"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	Patient     Patient   `gorm:"foreignKey:PatientID;references:ID" json:"-"`
	Photos      []Photo   `gorm:"foreignKey:VisitID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Visit) TableName() string {
	return "visit"
}

// GestationalWeeks derives whole weeks since the last menstrual period,
// relative to now. Returns nil when no LMP date is recorded. The value is
// time-relative on purpose: two reads on different days may differ.
func (v *Visit) GestationalWeeks(now time.Time) *int {
	if v.LMPDate == nil {
		return nil
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	ly, lm, ld := v.LMPDate.Date()
	lmp := time.Date(ly, lm, ld, 0, 0, 0, 0, time.UTC)
	weeks := int(today.Sub(lmp).Hours()/24) / 7
	if weeks < 0 {
		weeks = 0
	}
	return &weeks
}

// VersionToken renders the version as the quoted ETag clients must echo back
// in If-Match to make a conditional update.
func (v *Visit) VersionToken() string {
	return fmt.Sprintf("\"v%d\"", v.Version)
}

// Photo type tags
const (
	PhotoTypeConjunctiva = "CONJ"
	PhotoTypeLip         = "LAB"
	PhotoTypeIndexFinger = "IND"
)

// PhotoTypes is the closed set of accepted photo type tags.
var PhotoTypes = []string{PhotoTypeConjunctiva, PhotoTypeLip, PhotoTypeIndexFinger}

// PhotoTypeLabel maps a type tag to the human-readable label embedded in
// storage keys.
func PhotoTypeLabel(photoType string) string {
	switch photoType {
	case PhotoTypeConjunctiva:
		return "Conjuntiva"
	case PhotoTypeLip:
		return "Labio"
	default:
		return "Indice"
	}
}

// Photo model. SHA256 is the hex digest of the full byte stream, computed at
// ingest time; StorageKey is derived via PhotoStorageKey and never changes.
type Photo struct {
	ID           string    `gorm:"primaryKey;column:id" json:"id"`
	VisitID      string    `gorm:"column:visit_id;not null;index;uniqueIndex:idx_visit_type_index" json:"visit"`
	Type         string    `gorm:"column:type;size:4;check:type IN ('CONJ','LAB','IND');not null;uniqueIndex:idx_visit_type_index" json:"type"`
	Index        int       `gorm:"column:photo_index;not null;default:1;uniqueIndex:idx_visit_type_index" json:"index"`
	StorageKey   string    `gorm:"column:storage_key;size:255;not null" json:"storage_key"`
	OriginalName string    `gorm:"column:original_name;size:255" json:"original_name"`
	ContentType  string    `gorm:"column:content_type;size:100" json:"content_type"`
	Size         int64     `gorm:"column:size;not null;default:0" json:"size"`
	SHA256       string    `gorm:"column:sha256;size:64;index" json:"sha256"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Visit        Visit     `gorm:"foreignKey:VisitID;references:ID" json:"-"`
}

func (Photo) TableName() string {
	return "photo"
}

// PhotoStorageKey derives the blob key for a photo. It is a pure function of
// its inputs so the key can be reconstructed without a database lookup:
// photos/{dni}/{dni}_{Label}_{visitNumber}_{index}{ext}, extension lowercased.
func PhotoStorageKey(dni, photoType string, visitNumber, index int, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	base := fmt.Sprintf("%s_%s_%d_%d%s", dni, PhotoTypeLabel(photoType), visitNumber, index, ext)
	return fmt.Sprintf("photos/%s/%s", dni, base)
}
