// Package client is the terminal client's side of the HTTP boundary: auth
// check, login, logout, the streaming transport and log reporting.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/iyunix/go-chatfront/internal/logging"
	"github.com/iyunix/go-chatfront/internal/services/chat"
)

// Client talks to the chat server.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	cookies cookieFile
	retry   retryPolicy
	logger  logging.Logger
}

// New creates a client for baseURL, restoring a saved auth cookie from
// cookiePath when present.
func New(baseURL, cookiePath string, logger logging.Logger) (*Client, error) {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: u,
		// No client timeout: streams are bounded by the caller's context.
		http:    &http.Client{Jar: jar},
		cookies: cookieFile{path: cookiePath},
		retry:   defaultRetryPolicy(logger),
		logger:  logger,
	}
	if err := c.cookies.load(jar, u); err != nil {
		logger.Warn("ignoring unreadable cookie file", "path", cookiePath, "error", err)
	}
	return c, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + path
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

// get issues an idempotent GET under the retry policy.
func (c *Client) get(ctx context.Context, op, path string) (*http.Response, error) {
	return c.retry.do(ctx, op, func(ctx context.Context) (*http.Response, error) {
		return c.do(ctx, http.MethodGet, path, nil)
	})
}

func readError(op string, resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	_ = json.Unmarshal(data, &payload)
	return &StatusError{Operation: op, StatusCode: resp.StatusCode, Message: payload.Error}
}

// Check asks the server whether the saved cookie is still valid.
func (c *Client) Check(ctx context.Context) (bool, error) {
	resp, err := c.get(ctx, "auth check", "/api/auth")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, readError("auth check", resp)
	}

	var out struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("auth check: %w", err)
	}
	return out.Authenticated, nil
}

// Login sends the shared secret. A wrong secret is (false, nil).
func (c *Client) Login(ctx context.Context, secret string) (bool, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/auth", map[string]string{"password": secret})
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := c.cookies.save(resp.Cookies()); err != nil {
			c.logger.Warn("could not save auth cookie", "error", err)
		}
		return true, nil
	case http.StatusUnauthorized:
		return false, nil
	case http.StatusTooManyRequests:
		return false, fmt.Errorf("%w: %v", ErrRateLimited, readError("login", resp))
	default:
		return false, readError("login", resp)
	}
}

// Logout clears the cookie on the server and on disk.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodDelete, "/api/auth", nil)
	if err != nil {
		_ = c.cookies.clear()
		return err
	}
	defer resp.Body.Close()

	if err := c.cookies.clear(); err != nil {
		c.logger.Warn("could not remove cookie file", "error", err)
	}
	if resp.StatusCode != http.StatusOK {
		return readError("logout", resp)
	}
	return nil
}

// Stream posts the conversation and feeds each delta event to onDelta.
func (c *Client) Stream(ctx context.Context, req chat.StreamRequest, onDelta func(string) error) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/chat", map[string]interface{}{
		"messages": req.Messages,
		"model":    req.Model,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return readError("chat", resp)
	}

	reader := newSSEReader(resp.Body)
	for {
		event, data, err := reader.next()
		if errors.Is(err, io.EOF) {
			return ErrStreamTruncated
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		switch event {
		case "delta":
			var chunk struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal(data, &chunk); err != nil {
				c.logger.Debug("skipping malformed delta", "error", err)
				continue
			}
			if err := onDelta(chunk.Text); err != nil {
				return err
			}
		case "done":
			return nil
		case "error":
			var payload struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(data, &payload)
			if payload.Error == "" {
				payload.Error = "the server reported a stream error"
			}
			return &RemoteStreamError{Message: payload.Error}
		}
	}
}

// ModelInfo is one entry of GET /api/models.
type ModelInfo struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Provider  string `json:"provider"`
	Available bool   `json:"available"`
}

// Models lists the server's model registry and its default model.
func (c *Client) Models(ctx context.Context) ([]ModelInfo, string, error) {
	resp, err := c.get(ctx, "models", "/api/models")
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", readError("models", resp)
	}

	var out struct {
		Models  []ModelInfo `json:"models"`
		Default string      `json:"default"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, "", fmt.Errorf("models: %w", err)
	}
	return out.Models, out.Default, nil
}

// ReportLog sends a client event to the server log. It never blocks the
// caller for long.
func (c *Client) ReportLog(ctx context.Context, level, message string, fields map[string]interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	resp, err := c.do(ctx, http.MethodPost, "/api/log", map[string]interface{}{
		"level":   level,
		"message": message,
		"context": fields,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return readError("log", resp)
	}
	return nil
}
