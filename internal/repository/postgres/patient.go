package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/praxisdesk/practice-api/internal/model"
	apperrors "github.com/praxisdesk/practice-api/pkg/errors"
)

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) *patientRepository {
	return &patientRepository{db: db}
}

// patientRow mirrors the patients table; tags are a jsonb column.
type patientRow struct {
	model.Patient
	TagsJSON []byte `db:"tags"`
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	tags, err := json.Marshal(patient.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		INSERT INTO patients (
			id, name, email, phone, condition, age, gender, tags,
			last_visit, next_visit, anamnesis, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.db.ExecContext(ctx, query,
		patient.ID,
		patient.Name,
		patient.Email,
		patient.Phone,
		patient.Condition,
		patient.Age,
		patient.Gender,
		tags,
		nullableDate(patient.LastVisit),
		patient.NextVisit,
		patient.Anamnesis,
		patient.Status,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT id, name, email, phone, condition, age, gender, tags,
			   COALESCE(last_visit, '') AS last_visit, next_visit,
			   anamnesis, status, created_at, updated_at
		FROM patients
		WHERE id = $1
	`
	var row patientRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return row.toModel()
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	tags, err := json.Marshal(patient.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		UPDATE patients
		SET name = $1, email = $2, phone = $3, condition = $4, age = $5,
			gender = $6, tags = $7, last_visit = $8, next_visit = $9,
			anamnesis = $10, status = $11, updated_at = $12
		WHERE id = $13
	`
	result, err := r.db.ExecContext(ctx, query,
		patient.Name,
		patient.Email,
		patient.Phone,
		patient.Condition,
		patient.Age,
		patient.Gender,
		tags,
		nullableDate(patient.LastVisit),
		patient.NextVisit,
		patient.Anamnesis,
		patient.Status,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient", nil)
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := `
		SELECT id, name, email, phone, condition, age, gender, tags,
			   COALESCE(last_visit, '') AS last_visit, next_visit,
			   anamnesis, status, created_at, updated_at
		FROM patients
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if filters.Search != "" {
			query += fmt.Sprintf(" AND (name ILIKE $%d OR condition ILIKE $%d OR tags::text ILIKE $%d)", argCount, argCount, argCount)
			args = append(args, "%"+filters.Search+"%")
			argCount++
		}
	}

	query += " ORDER BY created_at ASC"

	var rows []patientRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	patients := make([]*model.Patient, 0, len(rows))
	for i := range rows {
		patient, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		patients = append(patients, patient)
	}
	return patients, nil
}

func (r *patientRepository) SetNextVisit(ctx context.Context, id uuid.UUID, date *model.ISODate) error {
	query := `UPDATE patients SET next_visit = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, date, id)
	if err != nil {
		return fmt.Errorf("failed to set next visit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient", nil)
	}
	return nil
}

func (row *patientRow) toModel() (*model.Patient, error) {
	patient := row.Patient
	if len(row.TagsJSON) > 0 {
		if err := json.Unmarshal(row.TagsJSON, &patient.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags for patient %s: %w", patient.ID, err)
		}
	}
	return &patient, nil
}

func nullableDate(d model.ISODate) interface{} {
	if d.IsZero() {
		return nil
	}
	return d
}
