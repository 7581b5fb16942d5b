package assistant

import (
	"context"
	"errors"
)

// Message is one turn of an assistant conversation.
type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Client generates assistant replies. Implementations wrap a concrete
// LLM provider; tests substitute a stub.
type Client interface {
	// Complete returns a reply to the last message, given the system
	// instruction and prior turns.
	Complete(ctx context.Context, system string, history []Message) (string, error)
	Close() error
}

type unavailable struct{}

// Unavailable returns a client that always errors. Used when no
// provider is configured; callers degrade to their fallback replies.
func Unavailable() Client {
	return unavailable{}
}

func (unavailable) Complete(context.Context, string, []Message) (string, error) {
	return "", errors.New("assistant: no provider configured")
}

func (unavailable) Close() error { return nil }
