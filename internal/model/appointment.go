package model

import (
	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// Appointment is a booked visit. The patient name is intentionally not
// denormalized here; callers resolve it through the patient record so a
// renamed patient never drifts out of sync.
type Appointment struct {
	Base
	PatientID uuid.UUID         `db:"patient_id" json:"patient_id"`
	Date      ISODate           `db:"visit_date" json:"date"`
	Time      HourMinute        `db:"visit_time" json:"time"`
	Type      string            `db:"visit_type" json:"type"`
	Status    AppointmentStatus `db:"status" json:"status"`
	Notes     string            `db:"notes" json:"notes,omitempty"`
}

type CreateAppointmentRequest struct {
	PatientID string `json:"patient_id" binding:"required,uuid"`
	Date      string `json:"date" binding:"required,isodate"`
	Time      string `json:"time" binding:"required,hourminute"`
	Type      string `json:"type" binding:"required,max=100"`
	Notes     string `json:"notes" binding:"max=1000"`
}

type UpdateAppointmentRequest struct {
	Date   *string            `json:"date" binding:"omitempty,isodate"`
	Time   *string            `json:"time" binding:"omitempty,hourminute"`
	Type   *string            `json:"type" binding:"omitempty,max=100"`
	Status *AppointmentStatus `json:"status"`
	Notes  *string            `json:"notes" binding:"omitempty,max=1000"`
}

// AppointmentFilters narrows appointment listings. Zero values mean
// "no constraint". Date-ranged listings (On or From set) come back
// ordered by date then time; unranged listings keep insertion order.
type AppointmentFilters struct {
	PatientID uuid.UUID
	Status    AppointmentStatus
	From      ISODate // date >= From
	On        ISODate // date == On
	Limit     int
}

// ScheduleStats is the dashboard aggregate over patients and
// appointments as of a reference date.
type ScheduleStats struct {
	TotalPatients         int `json:"total_patients"`
	ActivePatients        int `json:"active_patients"`
	TodayAppointments     int `json:"today_appointments"`
	CompletedAppointments int `json:"completed_appointments"`
	ReturnRate            int `json:"return_rate"`
}
