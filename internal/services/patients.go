// Package services implements the data access operations of each resource.
package services

import (
	"context"
	"errors"
	"strings"

	"backend-triage/internal/apperr"
	"backend-triage/internal/database"
	"backend-triage/internal/models"

	"gorm.io/gorm"
)

// PatientSort lists the sortable patient fields.
var PatientSort = SortOrder{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"lastName":    "last_name",
	"firstName":   "first_name",
	"dateOfBirth": "date_of_birth",
}

const defaultPatientSort = "-createdAt"

// PatientFilter narrows a patient list. Search matches a case-insensitive
// substring of the first name, last name or medical record number.
type PatientFilter struct {
	Search string
}

// PatientService stores patients.
type PatientService struct {
	db    *gorm.DB
	state *database.State
}

// NewPatientService creates a PatientService over db. Calls fail fast while
// state reports the database as disconnected.
func NewPatientService(db *gorm.DB, state *database.State) *PatientService {
	return &PatientService{db: db, state: state}
}

func (s *PatientService) conn(ctx context.Context, op string) (*gorm.DB, error) {
	if !s.state.Connected() {
		return nil, apperr.Unavailable(op)
	}
	return s.db.WithContext(ctx), nil
}

// List returns one page of patients matching filter.
func (s *PatientService) List(ctx context.Context, filter PatientFilter, page Pagination) (*Result[models.Patient], error) {
	const op = "services.PatientService.List"
	page, order, err := page.resolve(op, defaultPatientSort, PatientSort)
	if err != nil {
		return nil, err
	}
	db, err := s.conn(ctx, op)
	if err != nil {
		return nil, err
	}

	where := func(db *gorm.DB) *gorm.DB {
		if search := strings.TrimSpace(filter.Search); search != "" {
			pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
			db = db.Where(
				`LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\' OR LOWER(medical_record_number) LIKE ? ESCAPE '\'`,
				pattern, pattern, pattern,
			)
		}
		return db
	}

	var total int64
	if err := db.Model(&models.Patient{}).Scopes(where).Count(&total).Error; err != nil {
		return nil, storeError(op, err)
	}
	var items []models.Patient
	if err := db.Scopes(where, page.scope(order)).Find(&items).Error; err != nil {
		return nil, storeError(op, err)
	}
	return newResult(items, total, page), nil
}

// Create stores a new patient built from the supplied fields.
func (s *PatientService) Create(ctx context.Context, patch models.PatientPatch) (*models.Patient, error) {
	const op = "services.PatientService.Create"
	db, err := s.conn(ctx, op)
	if err != nil {
		return nil, err
	}

	var p models.Patient
	patch.Apply(&p)
	if err := s.checkUnique(db, op, &p); err != nil {
		return nil, err
	}
	if err := db.Create(&p).Error; err != nil {
		if isDuplicate(err) {
			return nil, duplicateMRN(op)
		}
		return nil, storeError(op, err)
	}
	return &p, nil
}

// GetByID returns the patient with the given id.
func (s *PatientService) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	const op = "services.PatientService.GetByID"
	id, err := parseID(op, id)
	if err != nil {
		return nil, err
	}
	db, err := s.conn(ctx, op)
	if err != nil {
		return nil, err
	}
	return s.find(db, op, id)
}

// UpdateByID changes the supplied fields of a patient and returns the
// updated record. Fields absent from patch keep their value.
func (s *PatientService) UpdateByID(ctx context.Context, id string, patch models.PatientPatch) (*models.Patient, error) {
	const op = "services.PatientService.UpdateByID"
	id, err := parseID(op, id)
	if err != nil {
		return nil, err
	}
	db, err := s.conn(ctx, op)
	if err != nil {
		return nil, err
	}

	p, err := s.find(db, op, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(p)
	if patch.MedicalRecordNumber != nil {
		if err := s.checkUnique(db, op, p); err != nil {
			return nil, err
		}
	}

	res := db.Model(p).Select(append(patch.Columns(), "UpdatedAt")).Updates(p)
	if err := res.Error; err != nil {
		if isDuplicate(err) {
			return nil, duplicateMRN(op)
		}
		return nil, storeError(op, err)
	}
	if res.RowsAffected == 0 {
		return nil, patientNotFound(op)
	}
	return s.find(db, op, id)
}

// DeleteByID removes a patient and returns the removed record. Triages that
// reference the patient are kept.
func (s *PatientService) DeleteByID(ctx context.Context, id string) (*models.Patient, error) {
	const op = "services.PatientService.DeleteByID"
	id, err := parseID(op, id)
	if err != nil {
		return nil, err
	}
	db, err := s.conn(ctx, op)
	if err != nil {
		return nil, err
	}

	p, err := s.find(db, op, id)
	if err != nil {
		return nil, err
	}
	res := db.Delete(p)
	if err := res.Error; err != nil {
		return nil, storeError(op, err)
	}
	if res.RowsAffected == 0 {
		return nil, patientNotFound(op)
	}
	return p, nil
}

func (s *PatientService) find(db *gorm.DB, op, id string) (*models.Patient, error) {
	var p models.Patient
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patientNotFound(op)
		}
		return nil, storeError(op, err)
	}
	return &p, nil
}

// checkUnique rejects a medical record number already held by another
// patient. The unique index still guards against concurrent writers.
func (s *PatientService) checkUnique(db *gorm.DB, op string, p *models.Patient) error {
	if p.MedicalRecordNumber == nil {
		return nil
	}
	q := db.Model(&models.Patient{}).Where("medical_record_number = ?", *p.MedicalRecordNumber)
	if p.ID != "" {
		q = q.Where("id <> ?", p.ID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return storeError(op, err)
	}
	if n > 0 {
		return duplicateMRN(op)
	}
	return nil
}

func patientNotFound(op string) error {
	return apperr.NotFound(op, "Patient not found")
}

func duplicateMRN(op string) error {
	return apperr.Validation(op, apperr.FieldError{
		Field:   "medicalRecordNumber",
		Message: "medicalRecordNumber already exists",
	})
}
