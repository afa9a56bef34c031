package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/iyunix/go-chatfront/internal/domain"
	"github.com/iyunix/go-chatfront/internal/export"
	"github.com/iyunix/go-chatfront/internal/repository/session"
)

const storeTimeout = 5 * time.Second

const helpText = `Commands:
  /new               start a new chat
  /open <id>         open a saved chat
  /list              list saved chats
  /rename <title>    rename the current chat
  /delete [id]       delete a chat (default: the current one)
  /clear             delete every saved chat
  /model [id]        show or switch the model
  /models            list the server's models
  /export [file]     write the current chat as HTML
  /history           print the current chat
  /login, /logout    manage the server login
  /help              show this help
  /quit              exit
Ctrl-C cancels a reply in progress.`

func isDurable(app *App) bool { return session.IsAvailable(app.Store) }

// command runs one slash command. It reports true when the REPL should exit.
func (r *repl) command(ctx context.Context, input string) bool {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/quit", "/q", "/exit":
		return true
	case "/help", "/h", "/?":
		r.println(helpText)
	case "/new", "/n":
		r.app.Chat.New()
		r.println(mutedStyle.Render("Started a new chat."))
	case "/open", "/o":
		r.open(ctx, arg)
	case "/list", "/ls":
		r.list(ctx)
	case "/rename":
		r.rename(ctx, arg)
	case "/delete", "/rm":
		r.remove(ctx, arg)
	case "/clear":
		r.clear(ctx)
	case "/model", "/m":
		if arg == "" {
			r.println("Model: " + r.app.Chat.Model())
			break
		}
		r.app.Chat.SetModel(arg)
		r.println(mutedStyle.Render("Switched to " + r.app.Chat.Model()))
	case "/models":
		r.models(ctx)
	case "/export":
		r.export(arg)
	case "/history":
		r.outMu.Lock()
		renderConversation(r.out, r.app.Chat.Messages())
		r.outMu.Unlock()
	case "/login":
		r.login(ctx)
	case "/logout":
		if err := r.app.Gate.Logout(ctx); err != nil {
			r.println(warningStyle.Render("Logged out locally; the server did not confirm: " + err.Error()))
			break
		}
		r.println(mutedStyle.Render("Logged out."))
	default:
		r.println(warningStyle.Render("Unknown command " + name + ". Type /help."))
	}
	return false
}

func (r *repl) open(ctx context.Context, id string) {
	if id == "" {
		r.println(warningStyle.Render("Usage: /open <id>"))
		return
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := r.app.Chat.Load(ctx, id); err != nil {
		r.println(errorStyle.Render(err.Error()))
		return
	}
	msgs := r.app.Chat.Messages()
	if len(msgs) == 0 {
		r.println(mutedStyle.Render("Empty chat " + id))
		return
	}
	r.outMu.Lock()
	renderConversation(r.out, msgs)
	r.outMu.Unlock()
}

func (r *repl) list(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	sessions, err := r.app.Store.List(ctx)
	if err != nil {
		r.println(errorStyle.Render(err.Error()))
		return
	}
	current := ""
	if r.app.Chat.Surfaced() {
		current = r.app.Chat.ID()
	}
	r.outMu.Lock()
	renderSessionList(r.out, sessions, current)
	r.outMu.Unlock()
}

func (r *repl) rename(ctx context.Context, title string) {
	if title == "" {
		r.println(warningStyle.Render("Usage: /rename <title>"))
		return
	}
	if !r.app.Chat.Surfaced() {
		r.println(warningStyle.Render("This chat has not been saved yet."))
		return
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := r.app.Store.Rename(ctx, r.app.Chat.ID(), title); err != nil {
		r.println(errorStyle.Render(err.Error()))
		return
	}
	r.println(mutedStyle.Render("Renamed."))
}

func (r *repl) remove(ctx context.Context, id string) {
	current := r.app.Chat.ID()
	if id == "" {
		id = current
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := r.app.Store.Delete(ctx, id); err != nil {
		r.println(errorStyle.Render(err.Error()))
		return
	}
	if id == current {
		r.app.Chat.New()
	}
	r.println(mutedStyle.Render("Deleted " + id))
}

func (r *repl) clear(ctx context.Context) {
	answer, err := r.in.Prompt("Delete every saved chat? [y/N] ")
	if err != nil || !strings.EqualFold(strings.TrimSpace(answer), "y") {
		r.println(mutedStyle.Render("Kept."))
		return
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := r.app.Store.Clear(ctx); err != nil {
		r.println(errorStyle.Render(err.Error()))
		return
	}
	r.app.Chat.New()
	r.println(mutedStyle.Render("All chats deleted."))
}

func (r *repl) models(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	models, def, err := r.app.Client.Models(ctx)
	if err != nil {
		r.println(errorStyle.Render(err.Error()))
		return
	}
	r.outMu.Lock()
	renderModels(r.out, models, def, r.app.Chat.Model())
	r.outMu.Unlock()
}

func (r *repl) export(path string) {
	msgs := r.app.Chat.Messages()
	if len(msgs) == 0 {
		r.println(warningStyle.Render("Nothing to export."))
		return
	}
	if path == "" {
		path = r.app.Chat.ID() + ".html"
	}
	s := domain.ChatSession{
		ID:        r.app.Chat.ID(),
		Title:     domain.DeriveTitle(msgs),
		Messages:  msgs,
		CreatedAt: time.Now(),
	}
	if r.app.Chat.Surfaced() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		if stored, err := r.app.Store.GetByID(ctx, s.ID); err == nil {
			s.Title = stored.Title
		}
		cancel()
	}
	if err := writeExport(path, s); err != nil {
		r.println(errorStyle.Render(err.Error()))
		return
	}
	r.println(mutedStyle.Render("Wrote " + path))
}

func writeExport(path string, s domain.ChatSession) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := export.HTML(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
