package models

import (
	"encoding/json"
	"strings"
	"time"

	"backend-triage/internal/apperr"
	"backend-triage/internal/validate"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Severity values accepted for a triage.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Status values of a triage.
const (
	StatusWaiting     = "waiting"
	StatusInTreatment = "in_treatment"
	StatusDischarged  = "discharged"
)

// Severities lists the severity values from least to most severe.
var Severities = []string{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Vitals is the optional group of measurements taken at triage.
type Vitals struct {
	HeartRate              *float64 `json:"heartRate,omitempty" binding:"omitempty,min=0,max=400"`
	BloodPressureSystolic  *float64 `json:"bloodPressureSystolic,omitempty" binding:"omitempty,min=0,max=400"`
	BloodPressureDiastolic *float64 `json:"bloodPressureDiastolic,omitempty" binding:"omitempty,min=0,max=300"`
	RespiratoryRate        *float64 `json:"respiratoryRate,omitempty" binding:"omitempty,min=0,max=200"`
	TemperatureC           *float64 `json:"temperatureC,omitempty" binding:"omitempty,min=25,max=45"`
	OxygenSaturation       *float64 `json:"oxygenSaturation,omitempty" binding:"omitempty,min=0,max=100"`
}

// Triage is one triage event of a patient. PatientID is a non-owning
// reference; Patient is only set when the reference was resolved.
type Triage struct {
	ID         string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	PatientID  string    `json:"patient" gorm:"type:varchar(36);not null;index" binding:"required,uuid"`
	Patient    *Patient  `json:"-" gorm:"foreignKey:PatientID;references:ID" binding:"-"`
	Severity   string    `json:"severity" gorm:"size:16;not null" binding:"required,oneof=low medium high critical"`
	Reason     string    `json:"reason" gorm:"size:1000;not null" binding:"required,max=1000"`
	Notes      *string   `json:"notes,omitempty" gorm:"size:2000" binding:"omitempty,max=2000"`
	Vitals     *Vitals   `json:"vitals,omitempty" gorm:"type:text;serializer:json"`
	Status     string    `json:"status" gorm:"size:16;not null;index:idx_triages_status_triaged_at,priority:1" binding:"omitempty,oneof=waiting in_treatment discharged"`
	AttendedBy *string   `json:"attendedBy,omitempty" gorm:"size:100" binding:"omitempty,max=100"`
	TriagedAt  time.Time `json:"triagedAt" gorm:"not null;index;index:idx_triages_status_triaged_at,priority:2"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// MarshalJSON writes "patient" as the embedded record when it was resolved
// and as the raw id otherwise. The outer field shadows PatientID.
func (t Triage) MarshalJSON() ([]byte, error) {
	type triage Triage
	var patient any = t.PatientID
	if t.Patient != nil {
		patient = t.Patient
	}
	return json.Marshal(struct {
		triage
		Patient any `json:"patient"`
	}{triage(t), patient})
}

// BeforeSave assigns the id and defaults, then enforces the binding rules.
func (t *Triage) BeforeSave(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = StatusWaiting
	}
	if t.TriagedAt.IsZero() {
		t.TriagedAt = tx.NowFunc()
	}
	if failures := validate.Struct(t); len(failures) > 0 {
		return apperr.Validation("models.Triage.BeforeSave", failures...)
	}
	return nil
}

// AfterFind reports stored times in UTC whatever the driver returns.
func (t *Triage) AfterFind(tx *gorm.DB) error {
	t.TriagedAt = t.TriagedAt.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return nil
}

// VitalsPatch carries the vitals present in a request.
type VitalsPatch struct {
	HeartRate              *float64 `json:"heartRate"`
	BloodPressureSystolic  *float64 `json:"bloodPressureSystolic"`
	BloodPressureDiastolic *float64 `json:"bloodPressureDiastolic"`
	RespiratoryRate        *float64 `json:"respiratoryRate"`
	TemperatureC           *float64 `json:"temperatureC"`
	OxygenSaturation       *float64 `json:"oxygenSaturation"`
}

func (vp VitalsPatch) apply(v *Vitals) {
	if vp.HeartRate != nil {
		v.HeartRate = vp.HeartRate
	}
	if vp.BloodPressureSystolic != nil {
		v.BloodPressureSystolic = vp.BloodPressureSystolic
	}
	if vp.BloodPressureDiastolic != nil {
		v.BloodPressureDiastolic = vp.BloodPressureDiastolic
	}
	if vp.RespiratoryRate != nil {
		v.RespiratoryRate = vp.RespiratoryRate
	}
	if vp.TemperatureC != nil {
		v.TemperatureC = vp.TemperatureC
	}
	if vp.OxygenSaturation != nil {
		v.OxygenSaturation = vp.OxygenSaturation
	}
}

// fields names the supplied vitals for a partial check.
func (vp VitalsPatch) fields() []string {
	var out []string
	for name, v := range map[string]*float64{
		"Vitals.HeartRate":              vp.HeartRate,
		"Vitals.BloodPressureSystolic":  vp.BloodPressureSystolic,
		"Vitals.BloodPressureDiastolic": vp.BloodPressureDiastolic,
		"Vitals.RespiratoryRate":        vp.RespiratoryRate,
		"Vitals.TemperatureC":           vp.TemperatureC,
		"Vitals.OxygenSaturation":       vp.OxygenSaturation,
	} {
		if v != nil {
			out = append(out, name)
		}
	}
	return out
}

// TriagePatch carries the fields present in a create or update request.
// Vitals merge per key into the stored group.
type TriagePatch struct {
	Patient    *string      `json:"patient"`
	Severity   *string      `json:"severity"`
	Reason     *string      `json:"reason"`
	Notes      *string      `json:"notes"`
	Vitals     *VitalsPatch `json:"vitals"`
	Status     *string      `json:"status"`
	AttendedBy *string      `json:"attendedBy"`
	TriagedAt  *string      `json:"triagedAt" binding:"omitempty,iso8601"`
}

// Check applies the patch to an empty triage and validates it. When partial
// is set only the supplied fields are checked, as for an update.
func (tp TriagePatch) Check(partial bool) []apperr.FieldError {
	var t Triage
	tp.Apply(&t)
	if !partial {
		return validate.Struct(&t)
	}
	fields := tp.Columns()
	if tp.Vitals != nil {
		fields = append(fields, tp.Vitals.fields()...)
	}
	return validate.Partial(&t, fields...)
}

// Apply merges the supplied fields into t.
func (tp TriagePatch) Apply(t *Triage) {
	if tp.Patient != nil {
		t.PatientID = strings.ToLower(strings.TrimSpace(*tp.Patient))
		t.Patient = nil
	}
	if tp.Severity != nil {
		t.Severity = strings.TrimSpace(*tp.Severity)
	}
	if tp.Reason != nil {
		t.Reason = strings.TrimSpace(*tp.Reason)
	}
	if tp.Notes != nil {
		t.Notes = optionalString(*tp.Notes)
	}
	if tp.Vitals != nil {
		if t.Vitals == nil {
			t.Vitals = &Vitals{}
		}
		tp.Vitals.apply(t.Vitals)
	}
	if tp.Status != nil {
		t.Status = strings.TrimSpace(*tp.Status)
	}
	if tp.AttendedBy != nil {
		t.AttendedBy = optionalString(*tp.AttendedBy)
	}
	if tp.TriagedAt != nil {
		if at, ok := validate.ParseDate(*tp.TriagedAt); ok {
			t.TriagedAt = at
		}
	}
}

// Columns lists the struct fields changed by the patch.
func (tp TriagePatch) Columns() []string {
	var cols []string
	if tp.Patient != nil {
		cols = append(cols, "PatientID")
	}
	if tp.Severity != nil {
		cols = append(cols, "Severity")
	}
	if tp.Reason != nil {
		cols = append(cols, "Reason")
	}
	if tp.Notes != nil {
		cols = append(cols, "Notes")
	}
	if tp.Vitals != nil {
		cols = append(cols, "Vitals")
	}
	if tp.Status != nil {
		cols = append(cols, "Status")
	}
	if tp.AttendedBy != nil {
		cols = append(cols, "AttendedBy")
	}
	if tp.TriagedAt != nil {
		cols = append(cols, "TriagedAt")
	}
	return cols
}
