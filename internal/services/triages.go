package services

import (
	"context"
	"errors"

	"backend-triage/internal/apperr"
	"backend-triage/internal/database"
	"backend-triage/internal/models"

	"gorm.io/gorm"
)

// TriageSort lists the sortable triage fields. Severity sorts from low to
// critical rather than alphabetically.
var TriageSort = SortOrder{
	"triagedAt": "triaged_at",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"severity":  rank("severity", models.Severities),
	"status":    "status",
}

const defaultTriageSort = "-triagedAt"

// TriageFilter narrows a triage list to exact matches. Empty fields match
// everything.
type TriageFilter struct {
	PatientID string
	Status    string
}

// TriageService stores triages. Reads resolve the referenced patient.
type TriageService struct {
	db    *gorm.DB
	state *database.State
}

func NewTriageService(db *gorm.DB, state *database.State) *TriageService {
	return &TriageService{db: db, state: state}
}

func (s *TriageService) conn(ctx context.Context, op string) (*gorm.DB, error) {
	if !s.state.Connected() {
		return nil, apperr.Unavailable(op)
	}
	return s.db.WithContext(ctx), nil
}

// List returns one page of triages matching filter, newest first by default.
func (s *TriageService) List(ctx context.Context, filter TriageFilter, page Pagination) (*Result[models.Triage], error) {
	const op = "services.TriageService.List"
	page, order, err := page.resolve(op, defaultTriageSort, TriageSort)
	if err != nil {
		return nil, err
	}
	db, err := s.conn(ctx, op)
	if err != nil {
		return nil, err
	}

	where := func(db *gorm.DB) *gorm.DB {
		if filter.PatientID != "" {
			db = db.Where("patient_id = ?", filter.PatientID)
		}
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		return db
	}

	var total int64
	if err := db.Model(&models.Triage{}).Scopes(where).Count(&total).Error; err != nil {
		return nil, storeError(op, err)
	}
	var items []models.Triage
	if err := db.Preload("Patient").Scopes(where, page.scope(order)).Find(&items).Error; err != nil {
		return nil, storeError(op, err)
	}
	return newResult(items, total, page), nil
}

// Create stores a new triage built from the supplied fields. The patient
// reference is stored as given.
func (s *TriageService) Create(ctx context.Context, patch models.TriagePatch) (*models.Triage, error) {
	const op = "services.TriageService.Create"
	db, err := s.conn(ctx, op)
	if err != nil {
		return nil, err
	}

	var t models.Triage
	patch.Apply(&t)
	if err := db.Omit("Patient").Create(&t).Error; err != nil {
		return nil, storeError(op, err)
	}
	return &t, nil
}

// GetByID returns the triage with the given id.
func (s *TriageService) GetByID(ctx context.Context, id string) (*models.Triage, error) {
	const op = "services.TriageService.GetByID"
	id, err := parseID(op, id)
	if err != nil {
		return nil, err
	}
	db, err := s.conn(ctx, op)
	if err != nil {
		return nil, err
	}
	return s.find(db.Preload("Patient"), op, id)
}

// UpdateByID changes the supplied fields of a triage and returns the updated
// record. Vitals merge per measurement.
func (s *TriageService) UpdateByID(ctx context.Context, id string, patch models.TriagePatch) (*models.Triage, error) {
	const op = "services.TriageService.UpdateByID"
	id, err := parseID(op, id)
	if err != nil {
		return nil, err
	}
	db, err := s.conn(ctx, op)
	if err != nil {
		return nil, err
	}

	t, err := s.find(db, op, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(t)

	res := db.Model(t).Select(append(patch.Columns(), "UpdatedAt")).Updates(t)
	if err := res.Error; err != nil {
		return nil, storeError(op, err)
	}
	if res.RowsAffected == 0 {
		return nil, triageNotFound(op)
	}
	return s.find(db.Preload("Patient"), op, id)
}

// DeleteByID removes a triage and returns the removed record.
func (s *TriageService) DeleteByID(ctx context.Context, id string) (*models.Triage, error) {
	const op = "services.TriageService.DeleteByID"
	id, err := parseID(op, id)
	if err != nil {
		return nil, err
	}
	db, err := s.conn(ctx, op)
	if err != nil {
		return nil, err
	}

	t, err := s.find(db, op, id)
	if err != nil {
		return nil, err
	}
	res := db.Delete(t)
	if err := res.Error; err != nil {
		return nil, storeError(op, err)
	}
	if res.RowsAffected == 0 {
		return nil, triageNotFound(op)
	}
	return t, nil
}

func (s *TriageService) find(db *gorm.DB, op, id string) (*models.Triage, error) {
	var t models.Triage
	if err := db.First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, triageNotFound(op)
		}
		return nil, storeError(op, err)
	}
	return &t, nil
}

func triageNotFound(op string) error {
	return apperr.NotFound(op, "Triage not found")
}
