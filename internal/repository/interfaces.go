package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/praxisdesk/practice-api/internal/model"
)

// All repository interfaces in one file
type (
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
		// SetNextVisit updates only the derived next-visit cache;
		// nil clears it.
		SetNextVisit(ctx context.Context, id uuid.UUID, date *model.ISODate) error
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		// List returns appointments matching filters, ordered by
		// date then time; a zero filter returns everything in
		// insertion order.
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// ExistsAt reports whether another scheduled appointment
		// already occupies the date+time slot.
		ExistsAt(ctx context.Context, date model.ISODate, at model.HourMinute, excludeID uuid.UUID) (bool, error)
	}

	DocumentRepository interface {
		Create(ctx context.Context, doc *model.Document) error
		Get(ctx context.Context, id uuid.UUID) (*model.Document, error)
		ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Document, error)
		Delete(ctx context.Context, id uuid.UUID) error
	}

	TemplateRepository interface {
		Create(ctx context.Context, tmpl *model.AnamnesisTemplate) error
		Get(ctx context.Context, id uuid.UUID) (*model.AnamnesisTemplate, error)
		List(ctx context.Context, specialty string) ([]*model.AnamnesisTemplate, error)
		Delete(ctx context.Context, id uuid.UUID) error
	}

	ChatRepository interface {
		Append(ctx context.Context, msg *model.ChatMessage) error
		ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ChatMessage, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
	}
)
