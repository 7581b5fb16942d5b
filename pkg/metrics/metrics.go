package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Scheduling metrics
	AppointmentsCreated   prometheus.Counter
	AppointmentsCancelled prometheus.Counter
	AppointmentsCompleted prometheus.Counter
	BookingConflicts      prometheus.Counter
	NextVisitSyncLatency  prometheus.Histogram

	// Reminder metrics
	RemindersSent   *prometheus.CounterVec
	RemindersFailed *prometheus.CounterVec

	// Assistant metrics
	AssistantRequests *prometheus.CounterVec
	AssistantLatency  prometheus.Histogram
}

// NewMetrics creates and registers all application metrics on the
// default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith registers the metrics on a caller-supplied registry.
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AppointmentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_created_total",
			Help:      "Total number of appointments booked",
		}),
		AppointmentsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_cancelled_total",
			Help:      "Total number of appointments cancelled",
		}),
		AppointmentsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_completed_total",
			Help:      "Total number of appointments marked completed",
		}),
		BookingConflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Total number of bookings rejected for slot conflicts",
		}),
		NextVisitSyncLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "next_visit_sync_duration_seconds",
			Help:      "Time spent recomputing patient next-visit caches",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}),
		RemindersSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Total number of reminder emails delivered",
		}, []string{"kind"}),
		RemindersFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_failed_total",
			Help:      "Total number of reminder deliveries that failed",
		}, []string{"kind"}),
		AssistantRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistant_requests_total",
			Help:      "Total number of assistant completions requested",
		}, []string{"status"}),
		AssistantLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assistant_request_duration_seconds",
			Help:      "Duration of assistant completions",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
	}
}
