// File: internal/domain/message.go
package domain

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// PartTypeText is the only part kind that carries plain text.
const PartTypeText = "text"

// Part is one typed fragment of a message. Non-text kinds keep their
// payload in Data and are passed through untouched.
type Part struct {
	Type string          `json:"type"`
	Text string          `json:"text,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Message is a single entry in a conversation.
type Message struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// NewTextMessage builds a message with a fresh ID and a single text part.
func NewTextMessage(role Role, text string) Message {
	return Message{
		ID:    uuid.NewString(),
		Role:  role,
		Parts: []Part{{Type: PartTypeText, Text: text}},
	}
}

// Text concatenates the message's text parts in order.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if p.Type == PartTypeText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// AppendText extends the trailing text part, adding one if needed.
func (m *Message) AppendText(delta string) {
	if n := len(m.Parts); n > 0 && m.Parts[n-1].Type == PartTypeText {
		m.Parts[n-1].Text += delta
		return
	}
	m.Parts = append(m.Parts, Part{Type: PartTypeText, Text: delta})
}

// Clone returns a deep copy so callers can hand messages across goroutines.
func (m Message) Clone() Message {
	out := Message{ID: m.ID, Role: m.Role}
	if m.Parts != nil {
		out.Parts = make([]Part, len(m.Parts))
		for i, p := range m.Parts {
			out.Parts[i] = p
			if p.Data != nil {
				out.Parts[i].Data = append(json.RawMessage(nil), p.Data...)
			}
		}
	}
	return out
}

// CloneMessages deep-copies a message slice.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}
