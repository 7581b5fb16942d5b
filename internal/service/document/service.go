package document

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/praxisdesk/practice-api/internal/model"
	"github.com/praxisdesk/practice-api/internal/repository"
)

type Service struct {
	docs      repository.DocumentRepository
	templates repository.TemplateRepository
	patients  repository.PatientRepository
	now       func() time.Time
}

func NewService(docs repository.DocumentRepository, templates repository.TemplateRepository, patients repository.PatientRepository) *Service {
	return &Service{docs: docs, templates: templates, patients: patients, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Attach(ctx context.Context, patientID uuid.UUID, req *model.CreateDocumentRequest) (*model.Document, error) {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		return nil, err
	}

	doc := &model.Document{
		ID:         uuid.New(),
		PatientID:  patientID,
		Name:       req.Name,
		Type:       req.Type,
		URL:        req.URL,
		UploadedAt: s.now(),
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to attach document: %w", err)
	}
	return doc, nil
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Document, error) {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		return nil, err
	}
	return s.docs.ListForPatient(ctx, patientID)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.docs.Delete(ctx, id)
}

func (s *Service) CreateTemplate(ctx context.Context, req *model.CreateTemplateRequest) (*model.AnamnesisTemplate, error) {
	tpl := &model.AnamnesisTemplate{
		ID:        uuid.New(),
		Specialty: req.Specialty,
		Name:      req.Name,
		Content:   req.Content,
		CreatedAt: s.now(),
	}
	if err := s.templates.Create(ctx, tpl); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return tpl, nil
}

func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID) (*model.AnamnesisTemplate, error) {
	return s.templates.Get(ctx, id)
}

func (s *Service) ListTemplates(ctx context.Context, specialty string) ([]*model.AnamnesisTemplate, error) {
	return s.templates.List(ctx, specialty)
}

func (s *Service) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	return s.templates.Delete(ctx, id)
}
