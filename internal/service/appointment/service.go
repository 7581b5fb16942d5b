package appointment

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/praxisdesk/practice-api/internal/model"
	"github.com/praxisdesk/practice-api/internal/repository"
	apperrors "github.com/praxisdesk/practice-api/pkg/errors"
	"github.com/praxisdesk/practice-api/pkg/messaging"
	"github.com/praxisdesk/practice-api/pkg/metrics"
)

const (
	statsCacheKey = "schedule_stats"
	statsCacheTTL = 30 * time.Second
)

type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	broker   messaging.Broker
	metrics  *metrics.Metrics
	cache    *gocache.Cache
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewService(repo repository.AppointmentRepository, patients repository.PatientRepository, broker messaging.Broker, m *metrics.Metrics, logger *zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		broker:   broker,
		metrics:  m,
		cache:    gocache.New(statsCacheTTL, 2*statsCacheTTL),
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the service clock. Tests pin it to a fixed
// instant.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create books a new appointment. The patient must exist and the slot
// must be free of other scheduled appointments, otherwise ErrConflict.
func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid patient id", err)
	}
	date, err := model.ParseISODate(req.Date)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid date", err)
	}
	at, err := model.ParseHourMinute(req.Time)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid time", err)
	}

	if _, err := s.patients.Get(ctx, patientID); err != nil {
		return nil, err
	}

	taken, err := s.repo.ExistsAt(ctx, date, at, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check slot availability: %w", err)
	}
	if taken {
		s.metrics.BookingConflicts.Inc()
		return nil, apperrors.Conflict(fmt.Sprintf("slot %s %s already booked", date, at), nil)
	}

	now := s.now()
	apt := &model.Appointment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PatientID: patientID,
		Date:      date,
		Time:      at,
		Type:      req.Type,
		Status:    model.AppointmentStatusScheduled,
		Notes:     req.Notes,
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.metrics.AppointmentsCreated.Inc()
	s.afterMutation(ctx, apt, messaging.EventAppointmentCreated)
	return apt, nil
}

// Get returns a single appointment or ErrNotFound.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

// Update applies a partial update to an appointment. Moving a
// scheduled appointment into an occupied slot is a conflict.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		date, err := model.ParseISODate(*req.Date)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid date", err)
		}
		apt.Date = date
	}
	if req.Time != nil {
		at, err := model.ParseHourMinute(*req.Time)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid time", err)
		}
		apt.Time = at
	}
	if req.Type != nil {
		apt.Type = *req.Type
	}
	if req.Status != nil {
		status := *req.Status
		if !status.Valid() {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q", *req.Status), nil)
		}
		apt.Status = status
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}

	if apt.Status == model.AppointmentStatusScheduled && (req.Date != nil || req.Time != nil) {
		taken, err := s.repo.ExistsAt(ctx, apt.Date, apt.Time, apt.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check slot availability: %w", err)
		}
		if taken {
			s.metrics.BookingConflicts.Inc()
			return nil, apperrors.Conflict(fmt.Sprintf("slot %s %s already booked", apt.Date, apt.Time), nil)
		}
	}

	apt.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	s.afterMutation(ctx, apt, messaging.EventAppointmentUpdated)
	return apt, nil
}

// Cancel marks a scheduled appointment cancelled. Cancelling an
// already completed or cancelled appointment is rejected.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.transition(ctx, id, model.AppointmentStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.metrics.AppointmentsCancelled.Inc()
	s.afterMutation(ctx, apt, messaging.EventAppointmentCancelled)
	return apt, nil
}

// Complete marks a scheduled appointment completed.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.transition(ctx, id, model.AppointmentStatusCompleted)
	if err != nil {
		return nil, err
	}
	s.metrics.AppointmentsCompleted.Inc()
	s.afterMutation(ctx, apt, messaging.EventAppointmentCompleted)
	return apt, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to model.AppointmentStatus) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if apt.Status != model.AppointmentStatusScheduled {
		return nil, apperrors.Conflict(fmt.Sprintf("appointment is %s, only scheduled appointments can be %s", apt.Status, to), nil)
	}
	apt.Status = to
	apt.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return apt, nil
}

// ListForPatient returns every appointment of a patient regardless of
// status, in booking order.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, &model.AppointmentFilters{PatientID: patientID})
}

// List returns appointments matching arbitrary filters.
func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.repo.List(ctx, filters)
}

// TodayScheduled returns scheduled appointments on the asOf date,
// ordered by time.
func (s *Service) TodayScheduled(ctx context.Context, asOf model.ISODate) ([]*model.Appointment, error) {
	return s.repo.List(ctx, &model.AppointmentFilters{
		Status: model.AppointmentStatusScheduled,
		On:     asOf,
	})
}

// UpcomingScheduled returns scheduled appointments on or after asOf,
// ordered by date then time, capped at limit when positive.
func (s *Service) UpcomingScheduled(ctx context.Context, asOf model.ISODate, limit int) ([]*model.Appointment, error) {
	return s.repo.List(ctx, &model.AppointmentFilters{
		Status: model.AppointmentStatusScheduled,
		From:   asOf,
		Limit:  limit,
	})
}

// UpcomingForPatient lists a patient's scheduled appointments on or
// after asOf, earliest first.
func (s *Service) UpcomingForPatient(ctx context.Context, patientID uuid.UUID, asOf model.ISODate) ([]*model.Appointment, error) {
	return s.repo.List(ctx, &model.AppointmentFilters{
		PatientID: patientID,
		Status:    model.AppointmentStatusScheduled,
		From:      asOf,
	})
}

// SyncNextAppointment recomputes the patient's next_appointment field
// from their earliest scheduled appointment on or after asOf. The
// field is cleared when no such appointment exists.
func (s *Service) SyncNextAppointment(ctx context.Context, patientID uuid.UUID, asOf model.ISODate) error {
	start := time.Now()
	defer func() {
		s.metrics.NextVisitSyncLatency.Observe(time.Since(start).Seconds())
	}()

	upcoming, err := s.repo.List(ctx, &model.AppointmentFilters{
		PatientID: patientID,
		Status:    model.AppointmentStatusScheduled,
		From:      asOf,
		Limit:     1,
	})
	if err != nil {
		return fmt.Errorf("failed to list upcoming appointments: %w", err)
	}

	var next *model.ISODate
	if len(upcoming) > 0 {
		next = &upcoming[0].Date
	}
	if err := s.patients.SetNextVisit(ctx, patientID, next); err != nil {
		return fmt.Errorf("failed to set next visit: %w", err)
	}
	return nil
}

// SyncAllNextAppointments recomputes next_appointment for every
// patient. Runs at startup so seeded or restored stores report
// correct next visits before the first mutation.
func (s *Service) SyncAllNextAppointments(ctx context.Context, asOf model.ISODate) error {
	patients, err := s.patients.List(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to list patients: %w", err)
	}
	for _, p := range patients {
		if err := s.SyncNextAppointment(ctx, p.ID, asOf); err != nil {
			return err
		}
	}
	return nil
}

// Stats aggregates schedule statistics as of a reference date. Results
// are cached briefly; mutations invalidate the cache.
func (s *Service) Stats(ctx context.Context, asOf model.ISODate) (*model.ScheduleStats, error) {
	cacheKey := statsCacheKey + ":" + asOf.String()
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(*model.ScheduleStats), nil
	}

	patients, err := s.patients.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	appointments, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	stats := &model.ScheduleStats{}
	hasUpcoming := map[uuid.UUID]bool{}
	for _, a := range appointments {
		switch a.Status {
		case model.AppointmentStatusScheduled:
			if a.Date == asOf {
				stats.TodayAppointments++
			}
			if !a.Date.Before(asOf) {
				hasUpcoming[a.PatientID] = true
			}
		case model.AppointmentStatusCompleted:
			stats.CompletedAppointments++
		}
	}

	// A patient counts as active while they have a scheduled
	// appointment on or after the reference date.
	for _, p := range patients {
		stats.TotalPatients++
		if hasUpcoming[p.ID] {
			stats.ActivePatients++
		}
	}
	if stats.TotalPatients > 0 {
		stats.ReturnRate = int(math.Round(float64(stats.ActivePatients) / float64(stats.TotalPatients) * 100))
	}

	s.cache.Set(cacheKey, stats, statsCacheTTL)
	return stats, nil
}

// afterMutation keeps derived state consistent after any write: the
// patient's next_appointment is resynced, the stats cache dropped and
// an event published for the reminder worker.
func (s *Service) afterMutation(ctx context.Context, apt *model.Appointment, eventType string) {
	if err := s.SyncNextAppointment(ctx, apt.PatientID, model.NewISODate(s.now())); err != nil {
		s.logger.Error().Err(err).
			Str("patient_id", apt.PatientID.String()).
			Msg("failed to sync next appointment")
	}

	s.cache.Flush()

	if s.broker != nil {
		event := messaging.AppointmentEvent{
			Type:          eventType,
			AppointmentID: apt.ID.String(),
			PatientID:     apt.PatientID.String(),
			Date:          apt.Date.String(),
			Time:          apt.Time.String(),
		}
		if err := s.broker.Publish(ctx, messaging.ChannelAppointments, event); err != nil {
			s.logger.Warn().Err(err).
				Str("event", eventType).
				Msg("failed to publish appointment event")
		}
	}
}
