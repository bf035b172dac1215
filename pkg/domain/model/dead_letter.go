package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
)

// DeadLetterID represents a unique identifier for an undelivered notification
type DeadLetterID string

// DeadLetter records a notification that could not be delivered
type DeadLetter struct {
	ID        DeadLetterID
	ChatID    types.ChatID
	Text      string
	Reason    string
	Attempts  int
	CreatedAt time.Time
}

// NewDeadLetter creates a DeadLetter with a fresh ID
func NewDeadLetter(chatID types.ChatID, text, reason string, attempts int) *DeadLetter {
	return &DeadLetter{
		ID:        DeadLetterID(uuid.NewString()),
		ChatID:    chatID,
		Text:      text,
		Reason:    reason,
		Attempts:  attempts,
		CreatedAt: time.Now().UTC(),
	}
}
