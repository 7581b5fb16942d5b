package appointment

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/praxisdesk/practice-api/internal/handler"
	"github.com/praxisdesk/practice-api/internal/model"
	"github.com/praxisdesk/practice-api/internal/service/appointment"
)

const defaultUpcomingLimit = 20

type Handler struct {
	service *appointment.Service
	now     func() time.Time
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PATCH("/:id", h.UpdateAppointment)
		appointments.POST("/:id/cancel", h.CancelAppointment)
		appointments.POST("/:id/complete", h.CompleteAppointment)
		appointments.GET("/today", h.TodayAppointments)
		appointments.GET("/upcoming", h.UpcomingAppointments)
	}
	r.GET("/patients/:id/appointments", h.PatientAppointments)
	r.GET("/schedule/stats", h.ScheduleStats)
}

// refDate resolves the reference date for "today"-style queries: an
// explicit ?date=YYYY-MM-DD wins, otherwise the server clock.
func (h *Handler) refDate(c *gin.Context) (model.ISODate, bool) {
	if raw := c.Query("date"); raw != "" {
		d, err := model.ParseISODate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date"))
			return "", false
		}
		return d, true
	}
	return model.NewISODate(h.now()), true
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(apt))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	apt, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) CompleteAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	apt, err := h.service.Complete(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) TodayAppointments(c *gin.Context) {
	ref, ok := h.refDate(c)
	if !ok {
		return
	}

	appointments, err := h.service.TodayScheduled(c.Request.Context(), ref)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) UpcomingAppointments(c *gin.Context) {
	ref, ok := h.refDate(c)
	if !ok {
		return
	}

	limit := defaultUpcomingLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid limit"))
			return
		}
		limit = n
	}

	appointments, err := h.service.UpcomingScheduled(c.Request.Context(), ref, limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) PatientAppointments(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	var appointments []*model.Appointment
	if c.Query("upcoming") == "true" {
		ref, ok := h.refDate(c)
		if !ok {
			return
		}
		appointments, err = h.service.UpcomingForPatient(c.Request.Context(), patientID, ref)
	} else {
		appointments, err = h.service.ListForPatient(c.Request.Context(), patientID)
	}
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) ScheduleStats(c *gin.Context) {
	ref, ok := h.refDate(c)
	if !ok {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), ref)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}
