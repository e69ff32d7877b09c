package models

import (
	"strings"
	"time"

	"backend-triage/internal/apperr"
	"backend-triage/internal/validate"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gender values accepted for a patient.
const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderOther   = "other"
	GenderUnknown = "unknown"
)

// Patient defines the structure for patient records. The binding rules are
// checked on requests and again before every write.
type Patient struct {
	ID                  string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	FirstName           string    `json:"firstName" gorm:"size:100;not null;index:idx_patients_name,priority:2" binding:"required,min=1,max=100"`
	LastName            string    `json:"lastName" gorm:"size:100;not null;index:idx_patients_name,priority:1" binding:"required,min=1,max=100"`
	DateOfBirth         time.Time `json:"dateOfBirth" gorm:"not null" binding:"required"`
	Gender              string    `json:"gender" gorm:"size:16;not null" binding:"omitempty,oneof=male female other unknown"`
	ContactNumber       *string   `json:"contactNumber,omitempty"`
	Address             *string   `json:"address,omitempty" gorm:"size:500" binding:"omitempty,max=500"`
	MedicalRecordNumber *string   `json:"medicalRecordNumber,omitempty" gorm:"size:50;uniqueIndex" binding:"omitempty,max=50"` // NULLs do not collide
	CreatedAt           time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// BeforeSave assigns the id and defaults, then enforces the binding rules.
func (p *Patient) BeforeSave(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Gender == "" {
		p.Gender = GenderUnknown
	}
	if failures := validate.Struct(p); len(failures) > 0 {
		return apperr.Validation("models.Patient.BeforeSave", failures...)
	}
	return nil
}

// AfterFind reports stored times in UTC whatever the driver returns.
func (p *Patient) AfterFind(tx *gorm.DB) error {
	p.DateOfBirth = p.DateOfBirth.UTC()
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return nil
}

// PatientPatch carries the fields present in a create or update request.
// A nil field was not supplied and is left untouched. Strings are trimmed
// when applied.
type PatientPatch struct {
	FirstName           *string `json:"firstName"`
	LastName            *string `json:"lastName"`
	DateOfBirth         *string `json:"dateOfBirth" binding:"omitempty,iso8601"`
	Gender              *string `json:"gender"`
	ContactNumber       *string `json:"contactNumber"`
	Address             *string `json:"address"`
	MedicalRecordNumber *string `json:"medicalRecordNumber"`
}

// Check applies the patch to an empty record and validates it. When partial
// is set only the supplied fields are checked, as for an update.
func (pp PatientPatch) Check(partial bool) []apperr.FieldError {
	var p Patient
	pp.Apply(&p)
	if partial {
		return validate.Partial(&p, pp.Columns()...)
	}
	return validate.Struct(&p)
}

// Apply merges the supplied fields into p.
func (pp PatientPatch) Apply(p *Patient) {
	if pp.FirstName != nil {
		p.FirstName = strings.TrimSpace(*pp.FirstName)
	}
	if pp.LastName != nil {
		p.LastName = strings.TrimSpace(*pp.LastName)
	}
	if pp.DateOfBirth != nil {
		// An unparsable date leaves the zero time for the required rule.
		p.DateOfBirth, _ = validate.ParseDate(*pp.DateOfBirth)
	}
	if pp.Gender != nil {
		p.Gender = strings.TrimSpace(*pp.Gender)
	}
	if pp.ContactNumber != nil {
		p.ContactNumber = optionalString(*pp.ContactNumber)
	}
	if pp.Address != nil {
		p.Address = optionalString(*pp.Address)
	}
	if pp.MedicalRecordNumber != nil {
		p.MedicalRecordNumber = optionalString(*pp.MedicalRecordNumber)
	}
}

// Columns lists the struct fields changed by the patch.
func (pp PatientPatch) Columns() []string {
	var cols []string
	if pp.FirstName != nil {
		cols = append(cols, "FirstName")
	}
	if pp.LastName != nil {
		cols = append(cols, "LastName")
	}
	if pp.DateOfBirth != nil {
		cols = append(cols, "DateOfBirth")
	}
	if pp.Gender != nil {
		cols = append(cols, "Gender")
	}
	if pp.ContactNumber != nil {
		cols = append(cols, "ContactNumber")
	}
	if pp.Address != nil {
		cols = append(cols, "Address")
	}
	if pp.MedicalRecordNumber != nil {
		cols = append(cols, "MedicalRecordNumber")
	}
	return cols
}

// optionalString trims s and maps an empty value to absent.
func optionalString(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
