package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Channel names used by the scheduling pipeline.
const (
	ChannelAppointments = "appointments"
)

// Event types carried on ChannelAppointments.
const (
	EventAppointmentCreated   = "appointment_created"
	EventAppointmentUpdated   = "appointment_updated"
	EventAppointmentCancelled = "appointment_cancelled"
	EventAppointmentCompleted = "appointment_completed"
)

// AppointmentEvent is published on every appointment mutation so the
// reminder worker can react without polling.
type AppointmentEvent struct {
	Type          string `json:"type"` // created | updated | cancelled | completed
	AppointmentID string `json:"appointment_id"`
	PatientID     string `json:"patient_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}
