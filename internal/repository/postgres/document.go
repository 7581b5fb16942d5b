package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/praxisdesk/practice-api/internal/model"
	apperrors "github.com/praxisdesk/practice-api/pkg/errors"
)

type documentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) *documentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) error {
	query := `
		INSERT INTO documents (id, patient_id, name, doc_type, url, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.PatientID, doc.Name, doc.Type, doc.URL, doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *documentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	query := `
		SELECT id, patient_id, name, doc_type, url, uploaded_at
		FROM documents
		WHERE id = $1
	`
	var doc model.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("document", err)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

func (r *documentRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Document, error) {
	query := `
		SELECT id, patient_id, name, doc_type, url, uploaded_at
		FROM documents
		WHERE patient_id = $1
		ORDER BY uploaded_at DESC
	`
	var docs []*model.Document
	if err := r.db.SelectContext(ctx, &docs, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("document", nil)
	}
	return nil
}

type templateRepository struct {
	db *sqlx.DB
}

func NewTemplateRepository(db *sqlx.DB) *templateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, tpl *model.AnamnesisTemplate) error {
	query := `
		INSERT INTO anamnesis_templates (id, specialty, name, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		tpl.ID, tpl.Specialty, tpl.Name, tpl.Content, tpl.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

func (r *templateRepository) Get(ctx context.Context, id uuid.UUID) (*model.AnamnesisTemplate, error) {
	query := `
		SELECT id, specialty, name, content, created_at
		FROM anamnesis_templates
		WHERE id = $1
	`
	var tpl model.AnamnesisTemplate
	if err := r.db.GetContext(ctx, &tpl, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("template", err)
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &tpl, nil
}

func (r *templateRepository) List(ctx context.Context, specialty string) ([]*model.AnamnesisTemplate, error) {
	query := `
		SELECT id, specialty, name, content, created_at
		FROM anamnesis_templates
		WHERE 1=1
	`
	args := []interface{}{}
	if specialty != "" {
		query += " AND specialty = $1"
		args = append(args, specialty)
	}
	query += " ORDER BY name ASC"

	var tpls []*model.AnamnesisTemplate
	if err := r.db.SelectContext(ctx, &tpls, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return tpls, nil
}

func (r *templateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM anamnesis_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("template", nil)
	}
	return nil
}
