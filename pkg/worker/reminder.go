package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/praxisdesk/practice-api/internal/email"
	"github.com/praxisdesk/practice-api/internal/model"
	"github.com/praxisdesk/practice-api/internal/repository"
	"github.com/praxisdesk/practice-api/pkg/logger"
	"github.com/praxisdesk/practice-api/pkg/messaging"
	"github.com/praxisdesk/practice-api/pkg/metrics"
)

type ReminderConfig struct {
	PollInterval time.Duration
	// LeadDays is how many days ahead to remind: 1 means tomorrow's
	// appointments.
	LeadDays int
}

// ReminderProcessor emails patients about upcoming appointments. It
// polls the store on an interval and also wakes on broker events so a
// same-day booking still gets its reminder.
type ReminderProcessor struct {
	appointments repository.AppointmentRepository
	patients     repository.PatientRepository
	sender       email.Sender
	broker       messaging.Broker
	config       ReminderConfig
	logger       *logger.Logger
	metrics      *metrics.Metrics
	now          func() time.Time

	// sent dedupes reminders per appointment per day.
	sent map[string]struct{}
}

func NewReminderProcessor(
	appointments repository.AppointmentRepository,
	patients repository.PatientRepository,
	sender email.Sender,
	broker messaging.Broker,
	config ReminderConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *ReminderProcessor {
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.LeadDays <= 0 {
		config.LeadDays = 1
	}

	return &ReminderProcessor{
		appointments: appointments,
		patients:     patients,
		sender:       sender,
		broker:       broker,
		config:       config,
		logger:       logger,
		metrics:      metrics,
		now:          time.Now,
		sent:         make(map[string]struct{}),
	}
}

func (p *ReminderProcessor) WithClock(now func() time.Time) *ReminderProcessor {
	p.now = now
	return p
}

func (p *ReminderProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("Starting reminder processor")

	var events <-chan []byte
	if p.broker != nil {
		ch, err := p.broker.Subscribe(ctx, messaging.ChannelAppointments)
		if err != nil {
			p.logger.Error(err, "Failed to subscribe to appointment events, falling back to polling only")
		} else {
			events = ch
		}
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down reminder processor")
			return
		case <-ticker.C:
			if err := p.ProcessDue(ctx); err != nil {
				p.logger.Error(err, "Failed to process reminders")
			}
		case raw, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			var event messaging.AppointmentEvent
			if err := json.Unmarshal(raw, &event); err != nil {
				p.logger.Error(err, "Failed to decode appointment event")
				continue
			}
			if err := p.ProcessDue(ctx); err != nil {
				p.logger.Error(err, "Failed to process reminders after event")
			}
		}
	}
}

// ProcessDue sends reminders for scheduled appointments LeadDays
// ahead. Safe to call repeatedly; each appointment is reminded once
// per target date.
func (p *ReminderProcessor) ProcessDue(ctx context.Context) error {
	target := model.NewISODate(p.now()).AddDays(p.config.LeadDays)

	due, err := p.appointments.List(ctx, &model.AppointmentFilters{
		Status: model.AppointmentStatusScheduled,
		On:     target,
	})
	if err != nil {
		return err
	}

	for _, apt := range due {
		key := apt.ID.String() + ":" + target.String()
		if _, done := p.sent[key]; done {
			continue
		}

		patient, err := p.patients.Get(ctx, apt.PatientID)
		if err != nil {
			p.logger.Error(err, "Failed to load patient for reminder")
			p.metrics.RemindersFailed.WithLabelValues("appointment").Inc()
			continue
		}
		if patient.Email == "" {
			continue
		}

		if err := p.sender.SendAppointmentReminder(patient.Email, patient.Name, apt); err != nil {
			p.logger.Error(err, "Failed to send reminder")
			p.metrics.RemindersFailed.WithLabelValues("appointment").Inc()
			continue
		}

		p.sent[key] = struct{}{}
		p.metrics.RemindersSent.WithLabelValues("appointment").Inc()
	}
	return nil
}
