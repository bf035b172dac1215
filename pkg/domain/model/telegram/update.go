package telegram

import (
	"strings"
	"time"

	"github.com/secmon-lab/fieldlink/pkg/domain/types"
)

// Update is the subset of a Telegram Bot API Update consumed by the webhook
type Update struct {
	UpdateID int64            `json:"update_id"`
	Message  *IncomingMessage `json:"message"`
}

// IncomingMessage is the "message" envelope of an Update
type IncomingMessage struct {
	MessageID int64  `json:"message_id"`
	Date      int64  `json:"date"`
	Chat      *Chat  `json:"chat"`
	From      *User  `json:"from"`
	Text      string `json:"text"`
}

// Chat identifies the conversation a message belongs to
type Chat struct {
	ID   types.ChatID `json:"id"`
	Type string       `json:"type"`
}

// User is the sender of a message
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Message represents one inbound chat message. It lives only for the duration of a request.
type Message struct {
	chatID     types.ChatID
	text       string
	username   string
	receivedAt time.Time
}

// NewMessage extracts the message from an Update. It returns nil when the update has no message.
func NewMessage(u *Update) *Message {
	if u == nil || u.Message == nil {
		return nil
	}

	msg := &Message{
		text:       strings.TrimSpace(u.Message.Text),
		receivedAt: time.Now().UTC(),
	}
	if u.Message.Chat != nil {
		msg.chatID = u.Message.Chat.ID
	}
	if u.Message.From != nil {
		msg.username = u.Message.From.Username
	}
	if u.Message.Date > 0 {
		msg.receivedAt = time.Unix(u.Message.Date, 0).UTC()
	}
	return msg
}

// NewMessageFromData creates a Message from raw values
func NewMessageFromData(chatID types.ChatID, text string) *Message {
	return &Message{
		chatID:     chatID,
		text:       strings.TrimSpace(text),
		receivedAt: time.Now().UTC(),
	}
}

func (m *Message) ChatID() types.ChatID  { return m.chatID }
func (m *Message) Text() string          { return m.text }
func (m *Message) Username() string      { return m.username }
func (m *Message) ReceivedAt() time.Time { return m.receivedAt }

// IsComplete reports whether both the chat and the text are present
func (m *Message) IsComplete() bool {
	return !m.chatID.IsEmpty() && m.text != ""
}
