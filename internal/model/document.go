package model

import (
	"time"

	"github.com/google/uuid"
)

// Document is stored metadata for an uploaded patient file; the blob
// itself lives wherever URL points.
type Document struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	Name       string    `db:"name" json:"name"`
	Type       string    `db:"doc_type" json:"type"`
	URL        string    `db:"url" json:"url"`
	UploadedAt time.Time `db:"uploaded_at" json:"upload_date"`
}

type CreateDocumentRequest struct {
	Name string `json:"name" binding:"required,max=200"`
	Type string `json:"type" binding:"required,max=50"`
	URL  string `json:"url" binding:"required,url"`
}

// AnamnesisTemplate is a specialty-keyed boilerplate for intake notes.
type AnamnesisTemplate struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Specialty string    `db:"specialty" json:"specialty"`
	Name      string    `db:"name" json:"name"`
	Content   string    `db:"content" json:"template"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CreateTemplateRequest struct {
	Specialty string `json:"specialty" binding:"required,max=100"`
	Name      string `json:"name" binding:"required,max=200"`
	Content   string `json:"template" binding:"required"`
}
