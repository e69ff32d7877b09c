package handlers

import (
	"strings"

	"backend-triage/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig holds the collaborators of the HTTP API.
type RouterConfig struct {
	Environment string
	APIRoot     string
	CORSOrigins []string
	Patients    PatientService
	Triages     TriageService
	Verifier    *auth.Verifier
	State       ConnectionState
	Log         *zap.Logger
}

// NewRouter builds the gin engine serving the API. Reads authenticate in
// advisory mode; every mutation requires a valid token.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(RequestLogger(log), ErrorResponder(), Recovery(), CORS(cfg.CORSOrigins))
	r.NoRoute(noRoute)

	root := "/" + strings.Trim(cfg.APIRoot, "/")
	health := Health(cfg.Environment, cfg.State)
	api := r.Group(root)
	api.GET("/", health)
	if root != "/" {
		// Answer the bare mount point without a trailing slash redirect.
		r.GET(root, health)
	}

	read := cfg.Verifier.Gate(auth.Advisory)
	write := cfg.Verifier.Gate(auth.Enforced)

	patients := NewPatientHandler(cfg.Patients)
	p := api.Group("/patients")
	{
		p.GET("", read, patients.List)
		p.POST("", write, patients.Create)
		p.GET("/:id", read, patients.Get)
		p.PUT("/:id", write, patients.Update)
		p.DELETE("/:id", write, patients.Delete)
	}

	triages := NewTriageHandler(cfg.Triages)
	t := api.Group("/triages")
	{
		t.GET("", read, triages.List)
		t.POST("", write, triages.Create)
		t.GET("/:id", read, triages.Get)
		t.PUT("/:id", write, triages.Update)
		t.DELETE("/:id", write, triages.Delete)
	}

	return r
}
