package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/praxisdesk/practice-api/internal/model"
	apperrors "github.com/praxisdesk/practice-api/pkg/errors"
)

type appointmentRepository struct {
	mu           sync.RWMutex
	appointments []*model.Appointment
	byID         map[uuid.UUID]*model.Appointment
}

func NewAppointmentRepository() *appointmentRepository {
	return &appointmentRepository{
		byID: make(map[uuid.UUID]*model.Appointment),
	}
}

func (r *appointmentRepository) Create(_ context.Context, appointment *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[appointment.ID]; ok {
		return apperrors.Conflict("appointment already exists", nil)
	}

	stored := cloneAppointment(appointment)
	r.appointments = append(r.appointments, stored)
	r.byID[stored.ID] = stored
	return nil
}

func (r *appointmentRepository) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appointment, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return cloneAppointment(appointment), nil
}

func (r *appointmentRepository) Update(_ context.Context, appointment *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[appointment.ID]
	if !ok {
		return apperrors.NotFound("appointment", nil)
	}
	*stored = *cloneAppointment(appointment)
	return nil
}

func (r *appointmentRepository) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if filters == nil {
		filters = &model.AppointmentFilters{}
	}

	out := make([]*model.Appointment, 0, len(r.appointments))
	for _, apt := range r.appointments {
		if filters.PatientID != uuid.Nil && apt.PatientID != filters.PatientID {
			continue
		}
		if filters.Status != "" && apt.Status != filters.Status {
			continue
		}
		if !filters.On.IsZero() && apt.Date != filters.On {
			continue
		}
		if !filters.From.IsZero() && !apt.Date.OnOrAfter(filters.From) {
			continue
		}
		out = append(out, cloneAppointment(apt))
	}

	// Date-ranged queries come back in calendar order; plain listings
	// keep insertion order.
	if !filters.On.IsZero() || !filters.From.IsZero() {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Date != out[j].Date {
				return out[i].Date < out[j].Date
			}
			return out[i].Time < out[j].Time
		})
	}

	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (r *appointmentRepository) ExistsAt(_ context.Context, date model.ISODate, at model.HourMinute, excludeID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, apt := range r.appointments {
		if apt.ID == excludeID {
			continue
		}
		if apt.Status != model.AppointmentStatusScheduled {
			continue
		}
		if apt.Date == date && apt.Time == at {
			return true, nil
		}
	}
	return false, nil
}

func cloneAppointment(a *model.Appointment) *model.Appointment {
	c := *a
	return &c
}
