package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/praxisdesk/practice-api/internal/model"
	"github.com/praxisdesk/practice-api/internal/repository"
	apperrors "github.com/praxisdesk/practice-api/pkg/errors"
)

type Service struct {
	repo repository.PatientRepository
	now  func() time.Time
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	if !req.Gender.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid gender %q", req.Gender), nil)
	}

	now := s.now()
	p := &model.Patient{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Condition: req.Condition,
		Age:       req.Age,
		Gender:    req.Gender,
		Tags:      req.Tags,
		Anamnesis: req.Anamnesis,
		Status:    model.PatientStatusActive,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.Condition != nil {
		p.Condition = *req.Condition
	}
	if req.Age != nil {
		p.Age = *req.Age
	}
	if req.Gender != nil {
		if !req.Gender.Valid() {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid gender %q", *req.Gender), nil)
		}
		p.Gender = *req.Gender
	}
	if req.Tags != nil {
		p.Tags = *req.Tags
	}
	if req.Anamnesis != nil {
		p.Anamnesis = *req.Anamnesis
	}
	if req.LastVisit != nil {
		d, err := model.ParseISODate(*req.LastVisit)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid last_visit date", err)
		}
		p.LastVisit = d
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return p, nil
}

// Deactivate soft-deletes a patient. Their history stays queryable.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.Status == model.PatientStatusInactive {
		return nil
	}
	p.Status = model.PatientStatusInactive
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to deactivate patient: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	return s.repo.List(ctx, filters)
}

// Search matches the query against name, condition and tags,
// case-insensitively.
func (s *Service) Search(ctx context.Context, query string) ([]*model.Patient, error) {
	return s.repo.List(ctx, &model.PatientFilters{Search: query})
}
