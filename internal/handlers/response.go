package handlers

import (
	"backend-triage/internal/services"

	"github.com/gin-gonic/gin"
)

// --- Request shapes ---

type patientURI struct {
	ID string `uri:"id" binding:"required,uuid_rfc4122" msg:"Invalid patient id"`
}

type triageURI struct {
	ID string `uri:"id" binding:"required,uuid_rfc4122" msg:"Invalid triage id"`
}

type listPatientsQuery struct {
	Page   *int   `form:"page" binding:"omitempty,min=1" msg:"page must be a positive integer"`
	Limit  *int   `form:"limit" binding:"omitempty,min=1,max=100" msg:"limit must be between 1 and 100"`
	Sort   string `form:"sort"`
	Search string `form:"search" binding:"max=100"`
}

type listTriagesQuery struct {
	Page    *int   `form:"page" binding:"omitempty,min=1" msg:"page must be a positive integer"`
	Limit   *int   `form:"limit" binding:"omitempty,min=1,max=100" msg:"limit must be between 1 and 100"`
	Sort    string `form:"sort"`
	Patient string `form:"patient" binding:"omitempty,uuid_rfc4122"`
	Status  string `form:"status" binding:"omitempty,oneof=waiting in_treatment discharged"`
}

func pagination(page, limit *int, sort string) services.Pagination {
	p := services.Pagination{Sort: sort}
	if page != nil {
		p.Page = *page
	}
	if limit != nil {
		p.Limit = *limit
	}
	return p
}

// --- Response bodies ---

func itemBody(item any) gin.H {
	return gin.H{"status": "ok", "item": item}
}

func listBody[T any](res *services.Result[T]) gin.H {
	return gin.H{
		"status": "ok",
		"items":  res.Items,
		"total":  res.Total,
		"page":   res.Page,
		"limit":  res.Limit,
		"pages":  res.Pages,
	}
}
