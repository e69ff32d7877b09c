package handlers

import (
	"context"
	"net/http"

	"backend-triage/internal/models"
	"backend-triage/internal/services"
	"backend-triage/internal/validate"

	"github.com/gin-gonic/gin"
)

// PatientService is the storage used by PatientHandler.
type PatientService interface {
	List(ctx context.Context, filter services.PatientFilter, page services.Pagination) (*services.Result[models.Patient], error)
	Create(ctx context.Context, patch models.PatientPatch) (*models.Patient, error)
	GetByID(ctx context.Context, id string) (*models.Patient, error)
	UpdateByID(ctx context.Context, id string, patch models.PatientPatch) (*models.Patient, error)
	DeleteByID(ctx context.Context, id string) (*models.Patient, error)
}

// PatientHandler serves the patient endpoints.
type PatientHandler struct {
	service PatientService
}

func NewPatientHandler(service PatientService) *PatientHandler {
	return &PatientHandler{service: service}
}

// --- Handler Functions ---

func (h *PatientHandler) List(c *gin.Context) {
	const op = "handlers.PatientHandler.List"
	var q listPatientsQuery
	req := validate.New(c)
	req.Query(&q)
	if err := req.Err(op); err != nil {
		c.Error(err)
		return
	}

	filter := services.PatientFilter{Search: q.Search}
	res, err := h.service.List(c.Request.Context(), filter, pagination(q.Page, q.Limit, q.Sort))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, listBody(res))
}

func (h *PatientHandler) Create(c *gin.Context) {
	const op = "handlers.PatientHandler.Create"
	var patch models.PatientPatch
	req := validate.New(c)
	if req.JSON(&patch) {
		req.Check(patch.Check(false))
	}
	if err := req.Err(op); err != nil {
		c.Error(err)
		return
	}

	p, err := h.service.Create(c.Request.Context(), patch)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, itemBody(p))
}

func (h *PatientHandler) Get(c *gin.Context) {
	const op = "handlers.PatientHandler.Get"
	var uri patientURI
	req := validate.New(c)
	req.URI(&uri)
	if err := req.Err(op); err != nil {
		c.Error(err)
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, itemBody(p))
}

func (h *PatientHandler) Update(c *gin.Context) {
	const op = "handlers.PatientHandler.Update"
	var (
		uri   patientURI
		patch models.PatientPatch
	)
	req := validate.New(c)
	req.URI(&uri)
	if req.JSON(&patch) {
		req.Check(patch.Check(true))
	}
	if err := req.Err(op); err != nil {
		c.Error(err)
		return
	}

	p, err := h.service.UpdateByID(c.Request.Context(), uri.ID, patch)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, itemBody(p))
}

func (h *PatientHandler) Delete(c *gin.Context) {
	const op = "handlers.PatientHandler.Delete"
	var uri patientURI
	req := validate.New(c)
	req.URI(&uri)
	if err := req.Err(op); err != nil {
		c.Error(err)
		return
	}

	p, err := h.service.DeleteByID(c.Request.Context(), uri.ID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, itemBody(p))
}
