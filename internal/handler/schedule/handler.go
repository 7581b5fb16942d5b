package schedule

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/praxisdesk/practice-api/internal/handler"
	"github.com/praxisdesk/practice-api/internal/middleware"
	"github.com/praxisdesk/practice-api/internal/model"
	"github.com/praxisdesk/practice-api/internal/repository"
	"github.com/praxisdesk/practice-api/internal/service/appointment"
	"github.com/praxisdesk/practice-api/internal/service/calendar"
)

type Handler struct {
	calendars    *calendar.Service
	appointments *appointment.Service
	patients     repository.PatientRepository
	weekStart    time.Weekday
	now          func() time.Time
}

func NewHandler(calendars *calendar.Service, appointments *appointment.Service, patients repository.PatientRepository) *Handler {
	return &Handler{
		calendars:    calendars,
		appointments: appointments,
		patients:     patients,
		weekStart:    time.Sunday,
		now:          time.Now,
	}
}

func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// WithWeekStart sets the default first day for the week view. A
// ?week_start= query still overrides it per request.
func (h *Handler) WithWeekStart(day time.Weekday) *Handler {
	h.weekStart = day
	return h
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/schedule/calendar", middleware.Cache(middleware.DefaultCacheConfig()), h.Calendar)
}

// AppointmentView is an appointment rendered for the calendar, with
// the patient name resolved at render time so renames always show.
type AppointmentView struct {
	*model.Appointment
	PatientName string `json:"patient_name"`
}

type DayView struct {
	Date         model.ISODate      `json:"date"`
	InMonth      bool               `json:"in_month"`
	Appointments []*AppointmentView `json:"appointments"`
}

type HourSlotView struct {
	Hour         model.HourMinute   `json:"hour"`
	Appointments []*AppointmentView `json:"appointments"`
}

// Calendar renders the month, week or day view around a reference
// date. Defaults: view=month, date=today.
func (h *Handler) Calendar(c *gin.Context) {
	ref := model.NewISODate(h.now())
	if raw := c.Query("date"); raw != "" {
		d, err := model.ParseISODate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date"))
			return
		}
		ref = d
	}

	view := c.DefaultQuery("view", "month")
	switch view {
	case "month":
		h.month(c, ref)
	case "week":
		h.week(c, ref)
	case "day":
		h.day(c, ref)
	default:
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("view must be month, week or day"))
	}
}

func (h *Handler) month(c *gin.Context, ref model.ISODate) {
	cells := h.calendars.MonthGrid(ref)
	appointments, err := h.appointments.List(c.Request.Context(), &model.AppointmentFilters{
		From: cells[0].Date,
	})
	if err != nil {
		c.Error(err)
		return
	}

	names, err := h.patientNames(c.Request.Context(), appointments)
	if err != nil {
		c.Error(err)
		return
	}

	days := make([]*DayView, len(cells))
	for i, cell := range cells {
		days[i] = &DayView{
			Date:         cell.Date,
			InMonth:      cell.InMonth,
			Appointments: render(calendar.AppointmentsOn(appointments, cell.Date), names),
		}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"view": "month",
		"ref":  ref,
		"days": days,
	}))
}

func (h *Handler) week(c *gin.Context, ref model.ISODate) {
	weekStart := h.weekStart
	switch c.Query("week_start") {
	case "sunday":
		weekStart = time.Sunday
	case "monday":
		weekStart = time.Monday
	}

	cells := h.calendars.WeekGrid(ref, weekStart)
	appointments, err := h.appointments.List(c.Request.Context(), &model.AppointmentFilters{
		From: cells[0].Date,
	})
	if err != nil {
		c.Error(err)
		return
	}

	names, err := h.patientNames(c.Request.Context(), appointments)
	if err != nil {
		c.Error(err)
		return
	}

	days := make([]*DayView, len(cells))
	for i, cell := range cells {
		days[i] = &DayView{
			Date:         cell.Date,
			InMonth:      true,
			Appointments: render(calendar.AppointmentsOn(appointments, cell.Date), names),
		}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"view": "week",
		"ref":  ref,
		"days": days,
	}))
}

func (h *Handler) day(c *gin.Context, ref model.ISODate) {
	appointments, err := h.appointments.List(c.Request.Context(), &model.AppointmentFilters{
		On: ref,
	})
	if err != nil {
		c.Error(err)
		return
	}

	names, err := h.patientNames(c.Request.Context(), appointments)
	if err != nil {
		c.Error(err)
		return
	}

	hours := h.calendars.DayHours()
	slots := make([]*HourSlotView, len(hours))
	for i, hour := range hours {
		slots[i] = &HourSlotView{
			Hour:         hour,
			Appointments: render(calendar.AppointmentsAt(appointments, ref, hour), names),
		}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"view":  "day",
		"ref":   ref,
		"slots": slots,
	}))
}

// patientNames resolves the names of every patient referenced by the
// appointments, one lookup per distinct patient.
func (h *Handler) patientNames(ctx context.Context, appointments []*model.Appointment) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string)
	for _, apt := range appointments {
		if _, ok := names[apt.PatientID]; ok {
			continue
		}
		p, err := h.patients.Get(ctx, apt.PatientID)
		if err != nil {
			return nil, err
		}
		names[apt.PatientID] = p.Name
	}
	return names, nil
}

func render(appointments []*model.Appointment, names map[uuid.UUID]string) []*AppointmentView {
	out := make([]*AppointmentView, len(appointments))
	for i, apt := range appointments {
		out[i] = &AppointmentView{
			Appointment: apt,
			PatientName: names[apt.PatientID],
		}
	}
	return out
}
