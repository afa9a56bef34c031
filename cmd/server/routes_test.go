package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-chatfront/internal/auth"
	"github.com/iyunix/go-chatfront/internal/client"
	"github.com/iyunix/go-chatfront/internal/domain"
	"github.com/iyunix/go-chatfront/internal/logging"
	"github.com/iyunix/go-chatfront/internal/ratelimit"
	"github.com/iyunix/go-chatfront/internal/services/ai"
	"github.com/iyunix/go-chatfront/internal/services/chat"
)

type echoAI struct{}

func (echoAI) StreamConversation(_ context.Context, modelID string, messages []domain.Message, onDelta func(string) error) (ai.Model, error) {
	m := ai.Resolve(modelID, ai.FallbackModel)
	last := messages[len(messages)-1].Text()
	for _, chunk := range []string{"echo: ", last} {
		if err := onDelta(chunk); err != nil {
			return m, err
		}
	}
	return m, nil
}

func (echoAI) Models() []ai.ModelStatus {
	var out []ai.ModelStatus
	for _, m := range ai.Models() {
		out = append(out, ai.ModelStatus{Model: m, Available: true})
	}
	return out
}

func newTestServer(t *testing.T, maxAttempts int) *httptest.Server {
	t.Helper()
	verifier, err := auth.NewVerifier("hunter2")
	require.NoError(t, err)
	limiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultLoginConfig(maxAttempts))
	t.Cleanup(limiter.Close)

	srv := httptest.NewServer(newRouter(routerDeps{
		Logger:       &logging.NoOpLogger{},
		Verifier:     verifier,
		SecretKey:    []byte("routes-test-key"),
		CookieTTL:    time.Hour,
		AI:           echoAI{},
		DefaultModel: "deepseek-chat",
		LoginLimiter: limiter,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string) *client.Client {
	t.Helper()
	c, err := client.New(baseURL, filepath.Join(t.TempDir(), "cookies.json"), &logging.NoOpLogger{})
	require.NoError(t, err)
	return c
}

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t, 5)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_ChatRequiresLogin(t *testing.T) {
	srv := newTestServer(t, 5)
	resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(`{"messages":[]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_ClientRoundTrip(t *testing.T) {
	srv := newTestServer(t, 5)
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	ok, err := c.Check(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.Login(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.Login(ctx, "hunter2")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.Check(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	var reply strings.Builder
	err = c.Stream(ctx, chat.StreamRequest{
		Model:    "deepseek-chat",
		Messages: []domain.Message{domain.NewTextMessage(domain.RoleUser, "ping")},
	}, func(delta string) error {
		reply.WriteString(delta)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "echo: ping", reply.String())

	models, def, err := c.Models(ctx)
	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", def)
	assert.Len(t, models, len(ai.Models()))

	require.NoError(t, c.Logout(ctx))
	err = c.Stream(ctx, chat.StreamRequest{
		Messages: []domain.Message{domain.NewTextMessage(domain.RoleUser, "ping")},
	}, func(string) error { return nil })
	assert.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestRouter_LoginRateLimited(t *testing.T) {
	srv := newTestServer(t, 2)
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := c.Login(ctx, "wrong")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	_, err := c.Login(ctx, "hunter2")
	assert.ErrorIs(t, err, client.ErrRateLimited)
}

func TestRouter_ClientLogReport(t *testing.T) {
	srv := newTestServer(t, 5)
	c := newTestClient(t, srv.URL)
	assert.NoError(t, c.ReportLog(context.Background(), "warn", "client event", map[string]interface{}{"k": "v"}))
}
