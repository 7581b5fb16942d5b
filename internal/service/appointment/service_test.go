package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisdesk/practice-api/internal/model"
	"github.com/praxisdesk/practice-api/internal/repository"
	"github.com/praxisdesk/practice-api/internal/repository/memory"
	apperrors "github.com/praxisdesk/practice-api/pkg/errors"
	"github.com/praxisdesk/practice-api/pkg/messaging"
	"github.com/praxisdesk/practice-api/pkg/metrics"
)

// fakeBroker records published events in memory.
type fakeBroker struct {
	mu     sync.Mutex
	events []messaging.AppointmentEvent
}

func (b *fakeBroker) Publish(_ context.Context, _ string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if evt, ok := message.(messaging.AppointmentEvent); ok {
		b.events = append(b.events, evt)
	}
	return nil
}

func (b *fakeBroker) Subscribe(context.Context, string) (<-chan []byte, error) { return nil, nil }
func (b *fakeBroker) Close() error                                            { return nil }

func (b *fakeBroker) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	svc      *Service
	patients repository.PatientRepository
	broker   *fakeBroker
	today    model.ISODate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	patients := memory.NewPatientRepository()
	appointments := memory.NewAppointmentRepository()
	broker := &fakeBroker{}
	m := metrics.NewMetricsWith(prometheus.NewRegistry(), "test")
	logger := zerolog.Nop()

	clock := func() time.Time {
		return time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
	}
	svc := NewService(appointments, patients, broker, m, &logger).WithClock(clock)

	return &fixture{
		svc:      svc,
		patients: patients,
		broker:   broker,
		today:    "2025-06-18",
	}
}

func (f *fixture) addPatient(t *testing.T, name string) *model.Patient {
	t.Helper()
	p := &model.Patient{
		Base:   model.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Name:   name,
		Status: model.PatientStatusActive,
	}
	require.NoError(t, f.patients.Create(context.Background(), p))
	return p
}

func (f *fixture) book(t *testing.T, patientID uuid.UUID, date, at string) *model.Appointment {
	t.Helper()
	apt, err := f.svc.Create(context.Background(), &model.CreateAppointmentRequest{
		PatientID: patientID.String(),
		Date:      date,
		Time:      at,
		Type:      "Consulta",
	})
	require.NoError(t, err)
	return apt
}

func TestCreate_RoundTrip(t *testing.T) {
	f := newFixture(t)
	p := f.addPatient(t, "Maria Silva")

	apt := f.book(t, p.ID, "2025-06-20", "09:00")
	assert.NotEqual(t, uuid.Nil, apt.ID)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)

	got, err := f.svc.Get(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, apt.ID, got.ID)
	assert.Equal(t, model.ISODate("2025-06-20"), got.Date)
	assert.Equal(t, model.HourMinute("09:00"), got.Time)

	list, err := f.svc.ListForPatient(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, apt.ID, list[0].ID)
}

func TestCreate_UnknownPatient(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), &model.CreateAppointmentRequest{
		PatientID: uuid.New().String(),
		Date:      "2025-06-20",
		Time:      "09:00",
		Type:      "Consulta",
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreate_InvalidDate(t *testing.T) {
	f := newFixture(t)
	p := f.addPatient(t, "Maria Silva")

	_, err := f.svc.Create(context.Background(), &model.CreateAppointmentRequest{
		PatientID: p.ID.String(),
		Date:      "20/06/2025",
		Time:      "09:00",
		Type:      "Consulta",
	})
	require.Error(t, err)
	assert.False(t, apperrors.IsNotFound(err))
}

func TestCreate_DoubleBooking(t *testing.T) {
	f := newFixture(t)
	a := f.addPatient(t, "Maria Silva")
	b := f.addPatient(t, "João Pedro")

	f.book(t, a.ID, "2025-06-20", "09:00")

	_, err := f.svc.Create(context.Background(), &model.CreateAppointmentRequest{
		PatientID: b.ID.String(),
		Date:      "2025-06-20",
		Time:      "09:00",
		Type:      "Consulta",
	})
	assert.True(t, apperrors.IsConflict(err))

	// A different time the same day is fine.
	f.book(t, b.ID, "2025-06-20", "09:30")
}

func TestCancel_FreesSlot(t *testing.T) {
	f := newFixture(t)
	a := f.addPatient(t, "Maria Silva")
	b := f.addPatient(t, "João Pedro")

	apt := f.book(t, a.ID, "2025-06-20", "09:00")
	_, err := f.svc.Cancel(context.Background(), apt.ID)
	require.NoError(t, err)

	// Cancelled appointments no longer block the slot.
	f.book(t, b.ID, "2025-06-20", "09:00")
}

func TestTransitions_ScheduledOnly(t *testing.T) {
	f := newFixture(t)
	p := f.addPatient(t, "Maria Silva")

	apt := f.book(t, p.ID, "2025-06-20", "09:00")

	done, err := f.svc.Complete(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, done.Status)

	_, err = f.svc.Cancel(context.Background(), apt.ID)
	assert.True(t, apperrors.IsConflict(err))
	_, err = f.svc.Complete(context.Background(), apt.ID)
	assert.True(t, apperrors.IsConflict(err))
}

func TestCancel_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Cancel(context.Background(), uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdate_MergesPatch(t *testing.T) {
	f := newFixture(t)
	p := f.addPatient(t, "Maria Silva")
	apt := f.book(t, p.ID, "2025-06-20", "09:00")

	newNotes := "retorno"
	updated, err := f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
		Notes: &newNotes,
	})
	require.NoError(t, err)
	assert.Equal(t, "retorno", updated.Notes)
	assert.Equal(t, model.ISODate("2025-06-20"), updated.Date)
	assert.Equal(t, model.HourMinute("09:00"), updated.Time)
}

func TestUpdate_RescheduleIntoTakenSlot(t *testing.T) {
	f := newFixture(t)
	a := f.addPatient(t, "Maria Silva")
	b := f.addPatient(t, "João Pedro")

	f.book(t, a.ID, "2025-06-20", "09:00")
	apt := f.book(t, b.ID, "2025-06-20", "10:00")

	taken := "09:00"
	_, err := f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
		Time: &taken,
	})
	assert.True(t, apperrors.IsConflict(err))

	// Keeping its own slot while editing notes is not a conflict.
	same := "10:00"
	notes := "confirmado"
	_, err = f.svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
		Time:  &same,
		Notes: &notes,
	})
	assert.NoError(t, err)
}

func TestTodayAndUpcoming(t *testing.T) {
	f := newFixture(t)
	p := f.addPatient(t, "Maria Silva")

	f.book(t, p.ID, f.today.String(), "14:00")
	f.book(t, p.ID, f.today.String(), "09:00")
	f.book(t, p.ID, "2025-06-25", "10:00")
	yesterday := f.book(t, p.ID, "2025-06-17", "10:00")
	cancelled := f.book(t, p.ID, f.today.String(), "16:00")
	_, err := f.svc.Cancel(context.Background(), cancelled.ID)
	require.NoError(t, err)

	today, err := f.svc.TodayScheduled(context.Background(), f.today)
	require.NoError(t, err)
	require.Len(t, today, 2)
	assert.Equal(t, model.HourMinute("09:00"), today[0].Time)
	assert.Equal(t, model.HourMinute("14:00"), today[1].Time)

	upcoming, err := f.svc.UpcomingScheduled(context.Background(), f.today, 0)
	require.NoError(t, err)
	require.Len(t, upcoming, 3)
	for i := 1; i < len(upcoming); i++ {
		prev, cur := upcoming[i-1], upcoming[i]
		ok := prev.Date.Before(cur.Date) || (prev.Date == cur.Date && prev.Time < cur.Time)
		assert.True(t, ok, "upcoming not ordered at %d", i)
	}
	for _, a := range upcoming {
		assert.NotEqual(t, yesterday.ID, a.ID)
	}

	capped, err := f.svc.UpcomingScheduled(context.Background(), f.today, 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}

func TestNextAppointmentSync(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addPatient(t, "Maria Silva")

	later := f.book(t, p.ID, "2025-06-25", "10:00")
	sooner := f.book(t, p.ID, "2025-06-20", "09:00")

	got, err := f.patients.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.NextVisit)
	assert.Equal(t, sooner.Date, *got.NextVisit)

	// Cancelling the sooner visit promotes the later one.
	_, err = f.svc.Cancel(ctx, sooner.ID)
	require.NoError(t, err)
	got, err = f.patients.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.NextVisit)
	assert.Equal(t, later.Date, *got.NextVisit)

	// With nothing scheduled left the field clears.
	_, err = f.svc.Cancel(ctx, later.ID)
	require.NoError(t, err)
	got, err = f.patients.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.NextVisit)
}

func TestSyncNextAppointment_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addPatient(t, "Maria Silva")
	f.book(t, p.ID, "2025-06-20", "09:00")

	require.NoError(t, f.svc.SyncNextAppointment(ctx, p.ID, f.today))
	first, err := f.patients.Get(ctx, p.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.SyncNextAppointment(ctx, p.ID, f.today))
	second, err := f.patients.Get(ctx, p.ID)
	require.NoError(t, err)

	require.NotNil(t, first.NextVisit)
	require.NotNil(t, second.NextVisit)
	assert.Equal(t, *first.NextVisit, *second.NextVisit)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addPatient(t, "Maria Silva")
	b := f.addPatient(t, "João Pedro")
	f.addPatient(t, "Clara Nunes")

	// a has upcoming scheduled appointments, b only a completed visit,
	// the third patient nothing at all.
	f.book(t, a.ID, f.today.String(), "09:00")
	f.book(t, a.ID, "2025-06-25", "11:00")

	apt := f.book(t, b.ID, f.today.String(), "16:00")
	_, err := f.svc.Complete(ctx, apt.ID)
	require.NoError(t, err)

	stats, err := f.svc.Stats(ctx, f.today)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalPatients)
	assert.Equal(t, 1, stats.ActivePatients)
	assert.Equal(t, 1, stats.TodayAppointments)
	assert.Equal(t, 1, stats.CompletedAppointments)
	assert.Equal(t, 33, stats.ReturnRate)
}

func TestStats_NoPatients(t *testing.T) {
	f := newFixture(t)

	stats, err := f.svc.Stats(context.Background(), f.today)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalPatients)
	assert.Equal(t, 0, stats.ReturnRate)
}

func TestStats_CacheInvalidatedByMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addPatient(t, "Maria Silva")

	stats, err := f.svc.Stats(ctx, f.today)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TodayAppointments)

	f.book(t, p.ID, f.today.String(), "09:00")

	stats, err = f.svc.Stats(ctx, f.today)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TodayAppointments)
}

func TestMutationsPublishEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addPatient(t, "Maria Silva")

	apt := f.book(t, p.ID, "2025-06-20", "09:00")
	_, err := f.svc.Complete(ctx, apt.ID)
	require.NoError(t, err)

	types := f.broker.types()
	require.Len(t, types, 2)
	assert.Equal(t, messaging.EventAppointmentCreated, types[0])
	assert.Equal(t, messaging.EventAppointmentCompleted, types[1])
}

func TestUpcomingForPatient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addPatient(t, "Maria Silva")

	f.book(t, p.ID, "2025-06-10", "09:00")
	kept := f.book(t, p.ID, "2025-06-20", "09:00")
	cancelled := f.book(t, p.ID, "2025-06-19", "09:00")
	_, err := f.svc.Cancel(ctx, cancelled.ID)
	require.NoError(t, err)

	upcoming, err := f.svc.UpcomingForPatient(ctx, p.ID, f.today)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, kept.ID, upcoming[0].ID)
}

func TestSyncAllNextAppointmentsAfterSeed(t *testing.T) {
	ctx := context.Background()
	patients := memory.NewPatientRepository()
	appointments := memory.NewAppointmentRepository()
	asOf := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
	require.NoError(t, memory.Seed(ctx, patients, appointments, memory.NewTemplateRepository(), asOf))

	m := metrics.NewMetricsWith(prometheus.NewRegistry(), "test")
	logger := zerolog.Nop()
	svc := NewService(appointments, patients, nil, m, &logger).
		WithClock(func() time.Time { return asOf })

	today := model.NewISODate(asOf)
	require.NoError(t, svc.SyncAllNextAppointments(ctx, today))

	all, err := patients.List(ctx, nil)
	require.NoError(t, err)
	require.NotEmpty(t, all)

	stale := 0
	for _, p := range all {
		upcoming, err := svc.UpcomingForPatient(ctx, p.ID, today)
		require.NoError(t, err)
		if len(upcoming) == 0 {
			assert.Nil(t, p.NextVisit, p.Name)
			continue
		}
		if p.NextVisit == nil {
			stale++
			continue
		}
		assert.Equal(t, upcoming[0].Date, *p.NextVisit, p.Name)
	}
	assert.Zero(t, stale, "patients with upcoming visits but no next_appointment")
}
