package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-chatfront/internal/domain"
)

func TestHTML(t *testing.T) {
	s := domain.ChatSession{
		ID:    "abc",
		Title: "Go <generics>",
		Messages: []domain.Message{
			domain.NewTextMessage(domain.RoleUser, "How do **generics** work?"),
			domain.NewTextMessage(domain.RoleAssistant, "Like this:\n\n```go\nfunc Map[T any](xs []T) {}\n```\n\n<script>alert(1)</script>"),
		},
		CreatedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	var b strings.Builder
	require.NoError(t, HTML(&b, s))
	out := b.String()

	assert.Contains(t, out, "<title>Go &lt;generics&gt;</title>")
	assert.Contains(t, out, "<strong>generics</strong>")
	assert.Contains(t, out, `<code class="language-go">`)
	assert.Contains(t, out, `class="msg user"`)
	assert.Contains(t, out, `class="msg assistant"`)
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "Saved ")
}

func TestMarkdown_Table(t *testing.T) {
	out, err := Markdown("| a | b |\n|---|---|\n| 1 | 2 |")
	require.NoError(t, err)
	assert.Contains(t, string(out), "<table>")
}
