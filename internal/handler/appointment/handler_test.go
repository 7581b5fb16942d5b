package appointment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisdesk/practice-api/internal/middleware"
	"github.com/praxisdesk/practice-api/internal/model"
	"github.com/praxisdesk/practice-api/internal/repository/memory"
	"github.com/praxisdesk/practice-api/internal/service/appointment"
	"github.com/praxisdesk/practice-api/pkg/metrics"
)

// Requests go through the real middleware chain so status mapping is
// exercised end to end, not just at the service boundary.

var testClock = func() time.Time {
	return time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
}

type fixture struct {
	router  *gin.Engine
	patient *model.Patient
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidators()

	patients := memory.NewPatientRepository()
	appointments := memory.NewAppointmentRepository()
	logger := zerolog.Nop()
	svc := appointment.NewService(
		appointments,
		patients,
		nil,
		metrics.NewMetricsWith(prometheus.NewRegistry(), "test"),
		&logger,
	).WithClock(testClock)

	p := &model.Patient{
		Base:   model.Base{ID: uuid.New()},
		Name:   "Helena Souza",
		Email:  "helena@example.com",
		Gender: model.GenderFemale,
		Status: model.PatientStatusActive,
	}
	require.NoError(t, patients.Create(context.Background(), p))

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.ErrorHandler())
	api := router.Group("/api/v1")
	NewHandler(svc).WithClock(testClock).RegisterRoutes(api)

	return &fixture{router: router, patient: p}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
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
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) create(t *testing.T, date, at string) *model.Appointment {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/v1/appointments", gin.H{
		"patient_id": f.patient.ID.String(),
		"date":       date,
		"time":       at,
		"type":       "consulta",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var apt model.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &apt))
	return &apt
}

func TestCreateAppointment(t *testing.T) {
	f := newFixture(t)

	apt := f.create(t, "2025-06-20", "09:00")
	assert.NotEqual(t, uuid.Nil, apt.ID)
	assert.Equal(t, f.patient.ID, apt.PatientID)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)

	w := f.do(t, http.MethodGet, "/api/v1/appointments/"+apt.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateAppointmentValidation(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/appointments", gin.H{
		"patient_id": f.patient.ID.String(),
		"time":       "09:00",
		"type":       "consulta",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "error", env.Status)
}

func TestCreateAppointmentUnknownPatient(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/appointments", gin.H{
		"patient_id": uuid.NewString(),
		"date":       "2025-06-20",
		"time":       "09:00",
		"type":       "consulta",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAppointmentSlotTaken(t *testing.T) {
	f := newFixture(t)
	f.create(t, "2025-06-20", "09:00")

	w := f.do(t, http.MethodPost, "/api/v1/appointments", gin.H{
		"patient_id": f.patient.ID.String(),
		"date":       "2025-06-20",
		"time":       "09:00",
		"type":       "retorno",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.NotEmpty(t, resp.RequestID)
}

func TestGetAppointmentNotFound(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/appointments/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetAppointmentBadID(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/appointments/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelCompletedAppointment(t *testing.T) {
	f := newFixture(t)
	apt := f.create(t, "2025-06-20", "09:00")

	w := f.do(t, http.MethodPost, "/api/v1/appointments/"+apt.ID.String()+"/complete", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/appointments/"+apt.ID.String()+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTodayAndUpcoming(t *testing.T) {
	f := newFixture(t)
	f.create(t, "2025-06-18", "14:00")
	f.create(t, "2025-06-18", "09:00")
	f.create(t, "2025-06-20", "11:00")

	w := f.do(t, http.MethodGet, "/api/v1/appointments/today", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var today []*model.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &today))
	require.Len(t, today, 2)
	assert.Equal(t, model.HourMinute("09:00"), today[0].Time)

	w = f.do(t, http.MethodGet, "/api/v1/appointments/upcoming?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var upcoming []*model.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &upcoming))
	assert.Len(t, upcoming, 2)
}

func TestTodayExplicitDate(t *testing.T) {
	f := newFixture(t)
	f.create(t, "2025-06-20", "11:00")

	w := f.do(t, http.MethodGet, "/api/v1/appointments/today?date=2025-06-20", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var today []*model.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &today))
	assert.Len(t, today, 1)

	w = f.do(t, http.MethodGet, "/api/v1/appointments/today?date=20-06-2025", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpcomingInvalidLimit(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/appointments/upcoming?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatientAppointments(t *testing.T) {
	f := newFixture(t)
	f.create(t, "2025-06-18", "14:00")
	f.create(t, "2025-06-20", "09:00")

	w := f.do(t, http.MethodGet, "/api/v1/patients/"+f.patient.ID.String()+"/appointments", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var list []*model.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 2)
}

func TestScheduleStats(t *testing.T) {
	f := newFixture(t)
	apt := f.create(t, "2025-06-18", "09:00")
	f.create(t, "2025-06-20", "11:00")

	w := f.do(t, http.MethodPost, "/api/v1/appointments/"+apt.ID.String()+"/complete", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/schedule/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var stats model.ScheduleStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.TotalPatients)
	assert.Equal(t, 1, stats.CompletedAppointments)
}
