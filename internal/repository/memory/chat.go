package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/praxisdesk/practice-api/internal/model"
)

type chatRepository struct {
	mu       sync.RWMutex
	messages []*model.ChatMessage
}

func NewChatRepository() *chatRepository {
	return &chatRepository{}
}

func (r *chatRepository) Append(_ context.Context, msg *model.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *msg
	r.messages = append(r.messages, &stored)
	return nil
}

func (r *chatRepository) ListForPatient(_ context.Context, patientID uuid.UUID) ([]*model.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.ChatMessage, 0)
	for _, msg := range r.messages {
		if msg.PatientID == patientID {
			c := *msg
			out = append(out, &c)
		}
	}
	return out, nil
}
