package validate_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"backend-triage/internal/apperr"
	"backend-triage/internal/models"
	"backend-triage/internal/validate"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type itemURI struct {
	ID string `uri:"id" binding:"required,uuid_rfc4122" msg:"Invalid item id"`
}

type itemQuery struct {
	Page   *int   `form:"page" binding:"omitempty,min=1" msg:"page must be a positive integer"`
	Limit  *int   `form:"limit" binding:"omitempty,min=1,max=100"`
	Search string `form:"search" binding:"max=5"`
}

type result struct {
	status int
	env    apperr.Envelope
}

// serve runs handler behind a route with an id parameter and decodes the
// error envelope of a failed request.
func serve(t *testing.T, method, target, body string, handler func(c *gin.Context, req *validate.Request)) result {
	t.Helper()

	r := gin.New()
	r.Handle(method, "/items/:id", func(c *gin.Context) {
		req := validate.New(c)
		handler(c, req)
		if err := req.Err("test"); err != nil {
			status, env := apperr.Normalize(err)
			c.JSON(status, env)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	res := result{status: w.Code}
	if w.Code != http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res.env), w.Body.String())
	}
	return res
}

func createPatient(c *gin.Context, req *validate.Request) {
	var (
		uri   itemURI
		query itemQuery
		patch models.PatientPatch
	)
	req.URI(&uri)
	req.Query(&query)
	if req.JSON(&patch) {
		req.Check(patch.Check(false))
	}
}

func updateTriage(c *gin.Context, req *validate.Request) {
	var patch models.TriagePatch
	if req.JSON(&patch) {
		req.Check(patch.Check(true))
	}
}

const itemPath = "/items/6f9619ff-8b86-d011-b42d-00c04fc964ff"

func TestRequest_CollectsEveryFailure(t *testing.T) {
	res := serve(t, http.MethodPost, "/items/nope?page=0&limit=500&search=toolong",
		`{"firstName":"  ","dateOfBirth":"yesterday","gender":"robot"}`, createPatient)

	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Validation failed", res.env.Message)
	assert.Equal(t, []apperr.FieldError{
		{Field: "id", Message: "Invalid item id"},
		{Field: "page", Message: "page must be a positive integer"},
		{Field: "limit", Message: "limit must be between 1 and 100"},
		{Field: "search", Message: "search must be at most 5 characters"},
		{Field: "dateOfBirth", Message: "dateOfBirth must be a valid ISO 8601 date"},
		{Field: "firstName", Message: "firstName is required"},
		{Field: "lastName", Message: "lastName is required"},
		{Field: "gender", Message: "gender must be one of: male, female, other, unknown"},
	}, res.env.Errors)
}

func TestRequest_Valid(t *testing.T) {
	res := serve(t, http.MethodPost, "/items/6F9619FF-8B86-D011-B42D-00C04FC964FF?page=2&search=doe",
		`{"firstName":" Jane ","lastName":"Doe","dateOfBirth":"1990-01-01","unknown":true,"address":null}`, createPatient)
	assert.Equal(t, http.StatusOK, res.status)
}

func TestRequest_UnparsableQuery(t *testing.T) {
	res := serve(t, http.MethodPost, itemPath+"?page=abc&limit=0",
		`{"firstName":"Jane","lastName":"Doe","dateOfBirth":"1990-01-01"}`, createPatient)

	require.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, []apperr.FieldError{
		{Field: "page", Message: "page must be a positive integer"},
		{Field: "limit", Message: "limit must be between 1 and 100"},
	}, res.env.Errors)
}

func TestRequest_NestedVitals(t *testing.T) {
	res := serve(t, http.MethodPut, itemPath, `{"vitals":{"oxygenSaturation":0,"heartRate":72,"extra":1}}`, updateTriage)
	require.Equal(t, http.StatusOK, res.status)

	res = serve(t, http.MethodPut, itemPath, `{"vitals":{"oxygenSaturation":100,"temperatureC":50}}`, updateTriage)
	require.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, []apperr.FieldError{
		{Field: "vitals.temperatureC", Message: "vitals.temperatureC must be between 25 and 45"},
	}, res.env.Errors)

	res = serve(t, http.MethodPut, itemPath, `{"vitals":[1],"severity":"urgent"}`, updateTriage)
	require.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, []apperr.FieldError{
		{Field: "vitals", Message: "vitals must be an object"},
		{Field: "severity", Message: "severity must be one of: low, medium, high, critical"},
	}, res.env.Errors)

	res = serve(t, http.MethodPut, itemPath, `{"vitals":{"heartRate":"fast"}}`, updateTriage)
	require.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, []apperr.FieldError{
		{Field: "vitals.heartRate", Message: "vitals.heartRate must be a number"},
	}, res.env.Errors)
}

func TestRequest_MalformedBody(t *testing.T) {
	res := serve(t, http.MethodPut, itemPath, `{"reason":`, updateTriage)
	require.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, []apperr.FieldError{{Field: "body", Message: "body must be valid JSON"}}, res.env.Errors)

	res = serve(t, http.MethodPut, itemPath, `[]`, updateTriage)
	require.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, []apperr.FieldError{{Field: "body", Message: "body must be a JSON object"}}, res.env.Errors)
}

func TestRequest_EmptyBody(t *testing.T) {
	res := serve(t, http.MethodPut, itemPath, "", updateTriage)
	assert.Equal(t, http.StatusOK, res.status)

	res = serve(t, http.MethodPost, itemPath, "", createPatient)
	require.Equal(t, http.StatusBadRequest, res.status)
	assert.Len(t, res.env.Errors, 3)
}

func TestRequest_BodyTooLarge(t *testing.T) {
	body := `{"reason":"` + strings.Repeat("a", validate.MaxBodyBytes) + `"}`

	res := serve(t, http.MethodPut, itemPath, body, updateTriage)
	assert.Equal(t, http.StatusRequestEntityTooLarge, res.status)
	assert.Equal(t, "Request body too large", res.env.Message)
	assert.Empty(t, res.env.Errors)
}

func TestStruct_Messages(t *testing.T) {
	type sample struct {
		Name  string   `json:"name" binding:"required,min=2,max=5"`
		Code  string   `json:"code" binding:"omitempty,min=3"`
		Score *float64 `json:"score" binding:"omitempty,max=10"`
		Ref   string   `json:"ref" binding:"omitempty,uuid" msg:"ref is not a reference"`
		When  string   `json:"when" binding:"omitempty,iso8601"`
	}
	score := 11.0

	failures := validate.Struct(&sample{Name: "x", Code: "ab", Score: &score, Ref: "r", When: "01/01/1990"})
	assert.Equal(t, []apperr.FieldError{
		{Field: "name", Message: "name must be between 2 and 5 characters"},
		{Field: "code", Message: "code must be at least 3 characters"},
		{Field: "score", Message: "score must be at most 10"},
		{Field: "ref", Message: "ref is not a reference"},
		{Field: "when", Message: "when must be a valid ISO 8601 date"},
	}, failures)

	assert.Empty(t, validate.Struct(&sample{Name: "abc"}))
	assert.Empty(t, validate.Partial(&sample{}, "Code"))
	assert.Equal(t, []apperr.FieldError{{Field: "name", Message: "name is required"}}, validate.Partial(&sample{}, "Name"))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{in: "1990-01-01", want: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), ok: true},
		{in: "1990-01-01T02:00:00+02:00", want: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), ok: true},
		{in: " 2024-05-01T12:30 ", want: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC), ok: true},
		{in: "01/01/1990"},
		{in: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := validate.ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %v", got)
				assert.Equal(t, time.UTC, got.Location())
			}
		})
	}
}
