// File: internal/domain/chat.go
package domain

import "time"

// DefaultTitle is used when no message carries any text.
const DefaultTitle = "New Chat"

// ChatSession is one persisted conversation.
// CreatedAt is refreshed on every save, so it reads as "last modified".
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
}

// DeriveTitle returns the text of the first message that has any,
// or DefaultTitle.
func DeriveTitle(messages []Message) string {
	for _, m := range messages {
		if text := m.Text(); text != "" {
			return text
		}
	}
	return DefaultTitle
}
