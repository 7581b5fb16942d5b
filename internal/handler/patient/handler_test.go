package patient

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisdesk/practice-api/internal/middleware"
	"github.com/praxisdesk/practice-api/internal/model"
	"github.com/praxisdesk/practice-api/internal/repository/memory"
	"github.com/praxisdesk/practice-api/internal/service/patient"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidators()

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.ErrorHandler())
	api := router.Group("/api/v1")
	NewHandler(patient.NewService(memory.NewPatientRepository())).RegisterRoutes(api)
	return router
}

func do(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createPatient(t *testing.T, router *gin.Engine, name string) *model.Patient {
	t.Helper()
	w := do(t, router, http.MethodPost, "/api/v1/patients", gin.H{
		"name":      name,
		"email":     "paciente@example.com",
		"gender":    "F",
		"age":       34,
		"condition": "ansiedade",
		"tags":      []string{"terapia"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var p model.Patient
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return &p
}

func TestCreateAndGetPatient(t *testing.T) {
	router := newRouter()

	p := createPatient(t, router, "Marina Alves")
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, model.PatientStatusActive, p.Status)

	w := do(t, router, http.MethodGet, "/api/v1/patients/"+p.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var got model.Patient
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Marina Alves", got.Name)
}

func TestCreatePatientValidation(t *testing.T) {
	router := newRouter()

	w := do(t, router, http.MethodPost, "/api/v1/patients", gin.H{
		"name":   "Sem Email",
		"gender": "F",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/patients", gin.H{
		"name":   "Genero Errado",
		"email":  "x@example.com",
		"gender": "X",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatePatient(t *testing.T) {
	router := newRouter()
	p := createPatient(t, router, "Marina Alves")

	w := do(t, router, http.MethodPatch, "/api/v1/patients/"+p.ID.String(), gin.H{
		"name": "Marina A. Souza",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var got model.Patient
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Marina A. Souza", got.Name)
	assert.Equal(t, p.Email, got.Email)
}

func TestUpdatePatientNotFound(t *testing.T) {
	router := newRouter()

	w := do(t, router, http.MethodPatch, "/api/v1/patients/"+uuid.NewString(), gin.H{
		"name": "Ninguem",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeactivatePatient(t *testing.T) {
	router := newRouter()
	p := createPatient(t, router, "Marina Alves")

	w := do(t, router, http.MethodDelete, "/api/v1/patients/"+p.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/patients/"+p.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var got model.Patient
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, model.PatientStatusInactive, got.Status)

	// Deactivating twice is a no-op, not an error.
	w = do(t, router, http.MethodDelete, "/api/v1/patients/"+p.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListPatientsWithSearch(t *testing.T) {
	router := newRouter()
	createPatient(t, router, "Marina Alves")

	w := do(t, router, http.MethodPost, "/api/v1/patients", gin.H{
		"name":   "Pedro Santos",
		"email":  "pedro@example.com",
		"gender": "M",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/patients?search=marina", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var list []*model.Patient
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Marina Alves", list[0].Name)
}
