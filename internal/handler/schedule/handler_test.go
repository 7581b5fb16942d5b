package schedule

import (
	"context"
	"encoding/json"
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
	"github.com/praxisdesk/practice-api/internal/repository"
	"github.com/praxisdesk/practice-api/internal/repository/memory"
	aptsvc "github.com/praxisdesk/practice-api/internal/service/appointment"
	"github.com/praxisdesk/practice-api/internal/service/calendar"
	"github.com/praxisdesk/practice-api/pkg/metrics"
)

var testClock = func() time.Time {
	return time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
}

type fixture struct {
	router   *gin.Engine
	patients repository.PatientRepository
	patient  *model.Patient
	svc      *aptsvc.Service
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type calendarResponse struct {
	View  string          `json:"view"`
	Ref   model.ISODate   `json:"ref"`
	Days  []*DayView      `json:"days"`
	Slots []*HourSlotView `json:"slots"`
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	patients := memory.NewPatientRepository()
	appointments := memory.NewAppointmentRepository()
	logger := zerolog.Nop()
	svc := aptsvc.NewService(
		appointments,
		patients,
		nil,
		metrics.NewMetricsWith(prometheus.NewRegistry(), "test"),
		&logger,
	).WithClock(testClock)

	p := &model.Patient{
		Base:   model.Base{ID: uuid.New()},
		Name:   "Carlos Lima",
		Email:  "carlos@example.com",
		Gender: model.GenderMale,
		Status: model.PatientStatusActive,
	}
	require.NoError(t, patients.Create(context.Background(), p))

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.ErrorHandler())
	api := router.Group("/api/v1")
	NewHandler(calendar.NewService(time.Monday), svc, patients).
		WithClock(testClock).
		RegisterRoutes(api)

	return &fixture{router: router, patients: patients, patient: p, svc: svc}
}

func (f *fixture) book(t *testing.T, date, at string) *model.Appointment {
	t.Helper()
	apt, err := f.svc.Create(context.Background(), &model.CreateAppointmentRequest{
		PatientID: f.patient.ID.String(),
		Date:      date,
		Time:      at,
		Type:      "consulta",
	})
	require.NoError(t, err)
	return apt
}

func (f *fixture) get(t *testing.T, path string) (*httptest.ResponseRecorder, *calendarResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		return w, nil
	}
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var resp calendarResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	return w, &resp
}

func TestMonthView(t *testing.T) {
	f := newFixture(t)
	f.book(t, "2025-06-18", "09:00")

	w, resp := f.get(t, "/api/v1/schedule/calendar?view=month&date=2025-06-15")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.Days, 42)

	// June 2025 on a Monday-start grid opens on May 26.
	assert.Equal(t, model.ISODate("2025-05-26"), resp.Days[0].Date)
	assert.False(t, resp.Days[0].InMonth)

	var found bool
	for _, day := range resp.Days {
		for _, apt := range day.Appointments {
			found = true
			assert.Equal(t, model.ISODate("2025-06-18"), day.Date)
			assert.Equal(t, "Carlos Lima", apt.PatientName)
		}
	}
	assert.True(t, found, "booked appointment missing from month grid")
}

func TestWeekViewSundayStart(t *testing.T) {
	f := newFixture(t)
	f.book(t, "2025-06-18", "09:00")

	w, resp := f.get(t, "/api/v1/schedule/calendar?view=week")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.Days, 7)
	assert.Equal(t, model.ISODate("2025-06-15"), resp.Days[0].Date)
	assert.Equal(t, model.ISODate("2025-06-21"), resp.Days[6].Date)
	assert.Len(t, resp.Days[3].Appointments, 1)
}

func TestWeekViewMondayStart(t *testing.T) {
	f := newFixture(t)

	w, resp := f.get(t, "/api/v1/schedule/calendar?view=week&week_start=monday")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.Days, 7)
	assert.Equal(t, model.ISODate("2025-06-16"), resp.Days[0].Date)
}

func TestDayView(t *testing.T) {
	f := newFixture(t)
	f.book(t, "2025-06-18", "09:30")

	w, resp := f.get(t, "/api/v1/schedule/calendar?view=day")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.Slots, 15)
	assert.Equal(t, model.HourMinute("08:00"), resp.Slots[0].Hour)
	assert.Equal(t, model.HourMinute("22:00"), resp.Slots[14].Hour)

	var placed int
	for _, slot := range resp.Slots {
		if len(slot.Appointments) > 0 {
			placed++
			assert.Equal(t, model.HourMinute("09:00"), slot.Hour)
		}
	}
	assert.Equal(t, 1, placed)
}

func TestPatientRenameShowsInCalendar(t *testing.T) {
	f := newFixture(t)
	f.book(t, "2025-06-18", "09:00")

	renamed := *f.patient
	renamed.Name = "Carlos A. Lima"
	require.NoError(t, f.patients.Update(context.Background(), &renamed))

	_, resp := f.get(t, "/api/v1/schedule/calendar?view=day")
	for _, slot := range resp.Slots {
		for _, apt := range slot.Appointments {
			assert.Equal(t, "Carlos A. Lima", apt.PatientName)
		}
	}
}

func TestCalendarBadInput(t *testing.T) {
	f := newFixture(t)

	w, _ := f.get(t, "/api/v1/schedule/calendar?view=year")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.get(t, "/api/v1/schedule/calendar?date=June+18")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
