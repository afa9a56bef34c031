package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-chatfront/internal/auth"
	"github.com/iyunix/go-chatfront/internal/domain"
	"github.com/iyunix/go-chatfront/internal/logging"
	"github.com/iyunix/go-chatfront/internal/services/ai"
)

var testKey = []byte("handler-test-key")

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	v, err := auth.NewVerifier("open sesame")
	require.NoError(t, err)
	return NewAuthHandler(v, testKey, 7*24*time.Hour, false, &logging.NoOpLogger{})
}

func TestAuthHandler_StatusWithoutCookie(t *testing.T) {
	h := newAuthHandler(t)
	rec := httptest.NewRecorder()

	h.Status(rec, httptest.NewRequest(http.MethodGet, "/api/auth", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
}

func TestAuthHandler_LoginFlow(t *testing.T) {
	h := newAuthHandler(t)

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader(`{"password":"wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid password"}`, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader(`{"password":"open sesame"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "auth", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	req := httptest.NewRequest(http.MethodGet, "/api/auth", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.Status(rec, req)
	assert.JSONEq(t, `{"authenticated":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodDelete, "/api/auth", nil))
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, "auth", cleared[0].Name)
	assert.Empty(t, cleared[0].Value)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestAuthHandler_LoginBadBody(t *testing.T) {
	h := newAuthHandler(t)
	rec := httptest.NewRecorder()

	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader(`{`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeAI struct {
	chunks []string
	err    error
	got    []domain.Message
	model  string
}

func (f *fakeAI) StreamConversation(_ context.Context, modelID string, messages []domain.Message, onDelta func(string) error) (ai.Model, error) {
	f.got, f.model = messages, modelID
	m := ai.Resolve(modelID, ai.FallbackModel)
	for _, c := range f.chunks {
		if err := onDelta(c); err != nil {
			return m, err
		}
	}
	return m, f.err
}

func (f *fakeAI) Models() []ai.ModelStatus {
	var out []ai.ModelStatus
	for _, m := range ai.Models() {
		out = append(out, ai.ModelStatus{Model: m, Available: m.Provider == ai.ProviderDeepSeek})
	}
	return out
}

func chatBody(t *testing.T, model string) *strings.Reader {
	t.Helper()
	body, err := json.Marshal(ChatRequest{
		Messages: []domain.Message{domain.NewTextMessage(domain.RoleUser, "Hi")},
		Model:    model,
	})
	require.NoError(t, err)
	return strings.NewReader(string(body))
}

func TestChatHandler_StreamsDeltas(t *testing.T) {
	svc := &fakeAI{chunks: []string{"Hello", " there"}}
	h := NewChatHandler(svc, &logging.NoOpLogger{})
	rec := httptest.NewRecorder()

	h.Stream(rec, httptest.NewRequest(http.MethodPost, "/api/chat", chatBody(t, "unknown-model")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t,
		"event: delta\ndata: {\"text\":\"Hello\"}\n\n"+
			"event: delta\ndata: {\"text\":\" there\"}\n\n"+
			"event: done\ndata: {\"model\":\"gpt-5-mini\"}\n\n",
		rec.Body.String())
	assert.Equal(t, "unknown-model", svc.model)
	require.Len(t, svc.got, 1)
	assert.Equal(t, "Hi", svc.got[0].Text())
}

func TestChatHandler_StreamError(t *testing.T) {
	svc := &fakeAI{chunks: []string{"Par"}, err: ai.NewProviderError("streaming", "boom", errors.New("502"))}
	h := NewChatHandler(svc, &logging.NoOpLogger{})
	rec := httptest.NewRecorder()

	h.Stream(rec, httptest.NewRequest(http.MethodPost, "/api/chat", chatBody(t, "deepseek-chat")))

	body := rec.Body.String()
	assert.Contains(t, body, "event: delta\ndata: {\"text\":\"Par\"}\n\n")
	assert.Contains(t, body, "event: error\ndata: {\"error\":\"The model failed to respond. Please try again.\"}\n\n")
	assert.NotContains(t, body, "502")
	assert.NotContains(t, body, "event: done")
}

func TestChatHandler_RejectsEmptyConversation(t *testing.T) {
	h := NewChatHandler(&fakeAI{}, &logging.NoOpLogger{})

	rec := httptest.NewRecorder()
	h.Stream(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"messages":[]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Stream(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClientMessage(t *testing.T) {
	assert.Equal(t, "The selected model is not available on this server.", clientMessage(ai.NewConfigError("no key")))
	assert.Equal(t, "The model failed to respond. Please try again.", clientMessage(errors.New("x")))
}

func TestModelsHandler(t *testing.T) {
	h := &ModelsHandler{AIService: &fakeAI{}, DefaultModel: "deepseek-chat"}
	rec := httptest.NewRecorder()

	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/models", nil))

	var resp struct {
		Models []struct {
			ID        string `json:"id"`
			Label     string `json:"label"`
			Available bool   `json:"available"`
		} `json:"models"`
		Default string `json:"default"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "deepseek-chat", resp.Default)
	require.Len(t, resp.Models, 3)
	assert.Equal(t, "DeepSeek V3.2", resp.Models[1].Label)
	assert.True(t, resp.Models[1].Available)
	assert.False(t, resp.Models[0].Available)
}

func TestLogFrontendEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	LogFrontendEvent(rec, httptest.NewRequest(http.MethodPost, "/api/log",
		strings.NewReader(`{"level":"error","message":"stream failed","context":{"model":"x"}}`)))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	LogFrontendEvent(rec, httptest.NewRequest(http.MethodPost, "/api/log", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
