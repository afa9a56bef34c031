package cli

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/iyunix/go-chatfront/internal/client"
	"github.com/iyunix/go-chatfront/internal/domain"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)
)

// truncate shortens s to width runes, marking the cut with "…".
func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}

func roleLabel(r domain.Role) string {
	switch r {
	case domain.RoleUser:
		return userStyle.Render("you")
	case domain.RoleAssistant:
		return assistantStyle.Render("assistant")
	default:
		return mutedStyle.Render(string(r))
	}
}

func relativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case t.IsZero():
		return "never"
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Local().Format("2006-01-02 15:04")
	}
}

// renderSessionList prints sessions newest first, marking current.
func renderSessionList(w io.Writer, sessions []domain.ChatSession, current string) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No saved chats."))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Chats (%d)", len(sessions))))
	now := time.Now()
	for _, s := range sessions {
		marker := "  "
		if s.ID == current {
			marker = promptStyle.Render("▸ ")
		}
		fmt.Fprintf(w, "%s%s  %s  %s\n",
			marker,
			titleStyle.Render(truncate(s.Title, 48)),
			dateStyle.Render(relativeTime(s.CreatedAt, now)),
			idStyle.Render(s.ID),
		)
	}
}

// renderConversation prints every message with its role label.
func renderConversation(w io.Writer, messages []domain.Message) {
	for _, m := range messages {
		fmt.Fprintf(w, "%s\n%s\n\n", roleLabel(m.Role), m.Text())
	}
}

// renderModels prints the server's registry, marking the default and the
// model currently selected.
func renderModels(w io.Writer, models []client.ModelInfo, def, current string) {
	if len(models) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("The server lists no models."))
		return
	}
	fmt.Fprintln(w, headerStyle.Render("Models"))
	for _, m := range models {
		marker := "  "
		if m.ID == current {
			marker = promptStyle.Render("▸ ")
		}
		line := fmt.Sprintf("%s%s  %s", marker, titleStyle.Render(m.ID), m.Label)
		if m.ID == def {
			line += mutedStyle.Render("  (default)")
		}
		if !m.Available {
			line += warningStyle.Render("  unavailable")
		}
		fmt.Fprintln(w, line)
	}
}
