package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/praxisdesk/practice-api/internal/model"
)

type chatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) *chatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Append(ctx context.Context, msg *model.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, patient_id, sender, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.PatientID, msg.Sender, msg.Content, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}
	return nil
}

func (r *chatRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ChatMessage, error) {
	query := `
		SELECT id, patient_id, sender, content, created_at
		FROM chat_messages
		WHERE patient_id = $1
		ORDER BY created_at ASC
	`
	var msgs []*model.ChatMessage
	if err := r.db.SelectContext(ctx, &msgs, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return msgs, nil
}
