package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/praxisdesk/practice-api/internal/model"
	apperrors "github.com/praxisdesk/practice-api/pkg/errors"
)

// patientRepository keeps patients in insertion order behind a RWMutex.
// The HTTP layer serializes nothing, so the repository itself is the
// mutual-exclusion boundary.
type patientRepository struct {
	mu       sync.RWMutex
	patients []*model.Patient
	byID     map[uuid.UUID]*model.Patient
}

func NewPatientRepository() *patientRepository {
	return &patientRepository{
		byID: make(map[uuid.UUID]*model.Patient),
	}
}

func (r *patientRepository) Create(_ context.Context, patient *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[patient.ID]; ok {
		return apperrors.Conflict("patient already exists", nil)
	}

	stored := clonePatient(patient)
	r.patients = append(r.patients, stored)
	r.byID[stored.ID] = stored
	return nil
}

func (r *patientRepository) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patient, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	return clonePatient(patient), nil
}

func (r *patientRepository) Update(_ context.Context, patient *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[patient.ID]
	if !ok {
		return apperrors.NotFound("patient", nil)
	}
	*stored = *clonePatient(patient)
	return nil
}

func (r *patientRepository) List(_ context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		if filters != nil {
			if filters.Status != "" && p.Status != filters.Status {
				continue
			}
			if filters.Search != "" && !patientMatches(p, filters.Search) {
				continue
			}
		}
		out = append(out, clonePatient(p))
	}
	return out, nil
}

func (r *patientRepository) SetNextVisit(_ context.Context, id uuid.UUID, date *model.ISODate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return apperrors.NotFound("patient", nil)
	}
	if date == nil {
		stored.NextVisit = nil
		return nil
	}
	d := *date
	stored.NextVisit = &d
	return nil
}

func patientMatches(p *model.Patient, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(p.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Condition), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func clonePatient(p *model.Patient) *model.Patient {
	c := *p
	c.Tags = append([]string(nil), p.Tags...)
	if p.NextVisit != nil {
		d := *p.NextVisit
		c.NextVisit = &d
	}
	return &c
}

// sortPatientsByName is used by the seed loader for stable listings.
func sortPatientsByName(patients []*model.Patient) {
	sort.Slice(patients, func(i, j int) bool {
		return patients[i].Name < patients[j].Name
	})
}
