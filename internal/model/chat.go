package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatSender string

const (
	ChatSenderUser      ChatSender = "user"
	ChatSenderAssistant ChatSender = "ai"
)

// ChatMessage is one turn of a per-patient assistant conversation.
type ChatMessage struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	PatientID uuid.UUID  `db:"patient_id" json:"patient_id"`
	Sender    ChatSender `db:"sender" json:"sender"`
	Content   string     `db:"content" json:"content"`
	CreatedAt time.Time  `db:"created_at" json:"timestamp"`
}

type SendChatMessageRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}
