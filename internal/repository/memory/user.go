package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/praxisdesk/practice-api/internal/model"
	apperrors "github.com/praxisdesk/practice-api/pkg/errors"
)

type userRepository struct {
	mu    sync.RWMutex
	users []*model.User
	byID  map[uuid.UUID]*model.User
}

func NewUserRepository() *userRepository {
	return &userRepository{
		byID: make(map[uuid.UUID]*model.User),
	}
}

func (r *userRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperrors.Conflict("email already registered", nil)
		}
	}

	stored := *user
	r.users = append(r.users, &stored)
	r.byID[stored.ID] = &stored
	return nil
}

func (r *userRepository) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	c := *user
	return &c, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			c := *user
			return &c, nil
		}
	}
	return nil, apperrors.NotFound("user", nil)
}

func (r *userRepository) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[user.ID]
	if !ok {
		return apperrors.NotFound("user", nil)
	}
	*stored = *user
	return nil
}
