package handlers

import (
	"context"
	"net/http"
	"strings"

	"backend-triage/internal/models"
	"backend-triage/internal/services"
	"backend-triage/internal/validate"

	"github.com/gin-gonic/gin"
)

// TriageService is the storage used by TriageHandler.
type TriageService interface {
	List(ctx context.Context, filter services.TriageFilter, page services.Pagination) (*services.Result[models.Triage], error)
	Create(ctx context.Context, patch models.TriagePatch) (*models.Triage, error)
	GetByID(ctx context.Context, id string) (*models.Triage, error)
	UpdateByID(ctx context.Context, id string, patch models.TriagePatch) (*models.Triage, error)
	DeleteByID(ctx context.Context, id string) (*models.Triage, error)
}

// TriageHandler serves the triage endpoints.
type TriageHandler struct {
	service TriageService
}

func NewTriageHandler(service TriageService) *TriageHandler {
	return &TriageHandler{service: service}
}

func (h *TriageHandler) List(c *gin.Context) {
	const op = "handlers.TriageHandler.List"
	var q listTriagesQuery
	req := validate.New(c)
	req.Query(&q)
	if err := req.Err(op); err != nil {
		c.Error(err)
		return
	}

	filter := services.TriageFilter{
		PatientID: strings.ToLower(q.Patient),
		Status:    q.Status,
	}
	res, err := h.service.List(c.Request.Context(), filter, pagination(q.Page, q.Limit, q.Sort))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, listBody(res))
}

func (h *TriageHandler) Create(c *gin.Context) {
	const op = "handlers.TriageHandler.Create"
	var patch models.TriagePatch
	req := validate.New(c)
	if req.JSON(&patch) {
		req.Check(patch.Check(false))
	}
	if err := req.Err(op); err != nil {
		c.Error(err)
		return
	}

	t, err := h.service.Create(c.Request.Context(), patch)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, itemBody(t))
}

func (h *TriageHandler) Get(c *gin.Context) {
	const op = "handlers.TriageHandler.Get"
	var uri triageURI
	req := validate.New(c)
	req.URI(&uri)
	if err := req.Err(op); err != nil {
		c.Error(err)
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, itemBody(t))
}

func (h *TriageHandler) Update(c *gin.Context) {
	const op = "handlers.TriageHandler.Update"
	var (
		uri   triageURI
		patch models.TriagePatch
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

	t, err := h.service.UpdateByID(c.Request.Context(), uri.ID, patch)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, itemBody(t))
}

func (h *TriageHandler) Delete(c *gin.Context) {
	const op = "handlers.TriageHandler.Delete"
	var uri triageURI
	req := validate.New(c)
	req.URI(&uri)
	if err := req.Err(op); err != nil {
		c.Error(err)
		return
	}

	t, err := h.service.DeleteByID(c.Request.Context(), uri.ID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, itemBody(t))
}
