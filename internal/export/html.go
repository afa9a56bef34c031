// Package export renders stored sessions as standalone HTML pages.
package export

import (
	"bytes"
	"html/template"
	"io"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/iyunix/go-chatfront/internal/domain"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

var page = template.Must(template.New("session").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
.msg { margin: 1.5rem 0; }
.role { font-weight: 600; text-transform: capitalize; color: #555; }
.user .role { color: #2563eb; }
pre { background: #f4f4f5; padding: .75rem; overflow-x: auto; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p><small>{{.Saved}}</small></p>
{{range .Messages}}<div class="msg {{.Role}}">
<div class="role">{{.Role}}</div>
{{.Body}}
</div>
{{end}}</body>
</html>
`))

type renderedMessage struct {
	Role string
	Body template.HTML
}

// Markdown converts one message's text to HTML. Raw HTML in the source is
// not passed through.
func Markdown(text string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// HTML writes s as a complete HTML document.
func HTML(w io.Writer, s domain.ChatSession) error {
	messages := make([]renderedMessage, 0, len(s.Messages))
	for _, m := range s.Messages {
		body, err := Markdown(m.Text())
		if err != nil {
			return err
		}
		messages = append(messages, renderedMessage{Role: string(m.Role), Body: body})
	}

	saved := ""
	if !s.CreatedAt.IsZero() {
		saved = "Saved " + s.CreatedAt.Local().Format(time.RFC1123)
	}
	return page.Execute(w, map[string]interface{}{
		"Title":    s.Title,
		"Saved":    saved,
		"Messages": messages,
	})
}
