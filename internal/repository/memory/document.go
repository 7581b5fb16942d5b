package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/praxisdesk/practice-api/internal/model"
	apperrors "github.com/praxisdesk/practice-api/pkg/errors"
)

type documentRepository struct {
	mu   sync.RWMutex
	docs []*model.Document
	byID map[uuid.UUID]*model.Document
}

func NewDocumentRepository() *documentRepository {
	return &documentRepository{
		byID: make(map[uuid.UUID]*model.Document),
	}
}

func (r *documentRepository) Create(_ context.Context, doc *model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *doc
	r.docs = append(r.docs, &stored)
	r.byID[stored.ID] = &stored
	return nil
}

func (r *documentRepository) Get(_ context.Context, id uuid.UUID) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound("document", nil)
	}
	c := *doc
	return &c, nil
}

func (r *documentRepository) ListForPatient(_ context.Context, patientID uuid.UUID) ([]*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Document, 0)
	for _, doc := range r.docs {
		if doc.PatientID == patientID {
			c := *doc
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *documentRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return apperrors.NotFound("document", nil)
	}
	delete(r.byID, id)
	for i, doc := range r.docs {
		if doc.ID == id {
			r.docs = append(r.docs[:i], r.docs[i+1:]...)
			break
		}
	}
	return nil
}

type templateRepository struct {
	mu        sync.RWMutex
	templates []*model.AnamnesisTemplate
	byID      map[uuid.UUID]*model.AnamnesisTemplate
}

func NewTemplateRepository() *templateRepository {
	return &templateRepository{
		byID: make(map[uuid.UUID]*model.AnamnesisTemplate),
	}
}

func (r *templateRepository) Create(_ context.Context, tmpl *model.AnamnesisTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *tmpl
	r.templates = append(r.templates, &stored)
	r.byID[stored.ID] = &stored
	return nil
}

func (r *templateRepository) Get(_ context.Context, id uuid.UUID) (*model.AnamnesisTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tmpl, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound("template", nil)
	}
	c := *tmpl
	return &c, nil
}

func (r *templateRepository) List(_ context.Context, specialty string) ([]*model.AnamnesisTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.AnamnesisTemplate, 0)
	for _, tmpl := range r.templates {
		if specialty != "" && tmpl.Specialty != specialty {
			continue
		}
		c := *tmpl
		out = append(out, &c)
	}
	return out, nil
}

func (r *templateRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return apperrors.NotFound("template", nil)
	}
	delete(r.byID, id)
	for i, tmpl := range r.templates {
		if tmpl.ID == id {
			r.templates = append(r.templates[:i], r.templates[i+1:]...)
			break
		}
	}
	return nil
}
