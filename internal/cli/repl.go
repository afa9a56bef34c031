package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/peterh/liner"

	"github.com/iyunix/go-chatfront/internal/client"
	"github.com/iyunix/go-chatfront/internal/config"
	"github.com/iyunix/go-chatfront/internal/events"
	"github.com/iyunix/go-chatfront/internal/services/chat"
)

// prompter is the line editor surface the REPL needs. *liner.State
// satisfies it.
type prompter interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
	AppendHistory(item string)
}

type repl struct {
	app *App
	out io.Writer
	in  prompter

	// outMu serialises writes from the stream listener and the prompt loop.
	outMu sync.Mutex

	// changed is set by foreign writes and reported before the next prompt.
	changed atomic.Bool

	// interrupts delivers Ctrl-C while a reply is streaming.
	interrupts <-chan os.Signal
}

func newREPL(app *App, out io.Writer) *repl {
	return &repl{app: app, out: out}
}

func (r *repl) printf(format string, args ...interface{}) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

func (r *repl) println(s string) { r.printf("%s\n", s) }

func historyPath() string {
	return filepath.Join(config.DataDir(), "history")
}

// Run starts the interactive loop. It returns when the user quits or
// input ends.
func (r *repl) Run(ctx context.Context, openID string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if r.in == nil {
		line := liner.NewLiner()
		line.SetCtrlCAborts(true)
		if f, err := os.Open(historyPath()); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if err := os.MkdirAll(filepath.Dir(historyPath()), 0o700); err == nil {
				if f, err := os.OpenFile(historyPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
					_, _ = line.WriteHistory(f)
					f.Close()
				}
			}
			line.Close()
		}()
		r.in = line
	}

	if r.interrupts == nil {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		defer signal.Stop(sig)
		r.interrupts = sig
	}

	if err := r.app.StartWatcher(); err != nil {
		r.app.Logger.Warn("database watcher unavailable", "error", err)
	}
	unsubscribe := r.app.Bus.Subscribe(r.onStoreChange)
	defer unsubscribe()
	r.app.Chat.SetListener(r.onUpdate)
	defer r.app.Chat.SetListener(nil)

	if err := r.app.InitAuth(ctx); err != nil {
		r.println(warningStyle.Render("Could not reach the server: " + err.Error()))
	}
	if openID != "" {
		if err := r.app.Chat.Load(ctx, openID); err != nil {
			r.println(errorStyle.Render(err.Error()))
		}
	}

	r.banner()
	if msgs := r.app.Chat.Messages(); len(msgs) > 0 {
		r.outMu.Lock()
		renderConversation(r.out, msgs)
		r.outMu.Unlock()
	}

	for {
		if r.changed.Swap(false) {
			r.println(mutedStyle.Render("(chat history changed in another window)"))
		}

		input, err := r.in.Prompt("> ")
		if errors.Is(err, liner.ErrPromptAborted) {
			r.println(mutedStyle.Render("Use /quit or Ctrl-D to exit."))
			continue
		}
		if errors.Is(err, io.EOF) {
			r.println("")
			return nil
		}
		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		r.in.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := r.command(ctx, input); quit {
				return nil
			}
			continue
		}
		r.send(ctx, input)
	}
}

func (r *repl) banner() {
	r.println(headerStyle.Render("chatfront"))
	auth := "not logged in"
	if r.app.Gate.Authenticated() {
		auth = "logged in"
	}
	history := "history on"
	if !isDurable(r.app) {
		history = "history off"
	}
	r.println(mutedStyle.Render(fmt.Sprintf("%s · %s · %s · model %s · /help for commands",
		r.app.Config.ServerURL, auth, history, r.app.Chat.Model())))
}

// onStoreChange reacts to writes from other processes. Local writes are
// already reflected in memory.
func (r *repl) onStoreChange(c events.Change) {
	if c.Origin != events.OriginForeign {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.app.Chat.Reload(ctx); err != nil {
		r.app.Logger.Warn("reload after foreign change failed", "error", err)
	}
	r.changed.Store(true)
}

func (r *repl) onUpdate(u chat.Update) {
	if u.Delta != "" {
		r.printf("%s", u.Delta)
	}
}

// ensureLogin opens the login prompt when the gate refuses a submit. It
// reports whether the user is now allowed to send.
func (r *repl) ensureLogin(ctx context.Context) bool {
	if r.app.Gate.CanSubmit() {
		return true
	}
	r.println(warningStyle.Render("You need to log in first."))
	return r.login(ctx)
}

func (r *repl) login(ctx context.Context) bool {
	r.app.Gate.OpenLogin()
	secret, err := r.in.PasswordPrompt("Password: ")
	if err != nil && !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
		// Terminals without raw mode cannot hide input.
		secret, err = r.in.Prompt("Password: ")
	}
	if err != nil || secret == "" {
		r.app.Gate.CloseLogin()
		r.println(mutedStyle.Render("Login cancelled."))
		return false
	}

	if !r.app.Gate.Login(ctx, secret) {
		r.println(errorStyle.Render("Login failed."))
		return false
	}
	r.println(assistantStyle.Render("Logged in."))
	return true
}

func (r *repl) send(ctx context.Context, text string) {
	if !r.ensureLogin(ctx) {
		return
	}

	wasSurfaced := r.app.Chat.Surfaced()
	done, err := r.app.Chat.Submit(ctx, text)
	if err != nil {
		r.println(errorStyle.Render(err.Error()))
		return
	}
	r.println(assistantStyle.Render("assistant"))

	var result error
wait:
	for {
		select {
		case <-r.interrupts:
			r.app.Chat.Cancel()
		case result = <-done:
			break wait
		}
	}
	r.println("")
	r.report(ctx, result, wasSurfaced)
}

// report prints the outcome of one send.
func (r *repl) report(ctx context.Context, err error, wasSurfaced bool) {
	switch {
	case err == nil:
		if !wasSurfaced && r.app.Chat.Surfaced() && isDurable(r.app) {
			r.println(mutedStyle.Render("saved as " + r.app.Chat.ID()))
		}
	case errors.Is(err, chat.ErrCancelled):
		r.println(mutedStyle.Render("[cancelled]"))
	case errors.Is(err, client.ErrUnauthorized):
		r.app.Gate.Invalidate()
		r.println(warningStyle.Render("Your login expired. Use /login and try again."))
	case chat.IsType(err, chat.ErrTypeStorage):
		r.println(warningStyle.Render("Reply received but not saved: " + err.Error()))
	default:
		r.println(errorStyle.Render("Error: " + err.Error()))
		if rerr := r.app.Client.ReportLog(ctx, "error", "chat stream failed", map[string]interface{}{
			"session_id": r.app.Chat.ID(),
			"model":      r.app.Chat.Model(),
			"error":      err.Error(),
		}); rerr != nil {
			r.app.Logger.Debug("report log failed", "error", rerr)
		}
	}
}
