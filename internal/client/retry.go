package client

import (
	"context"
	"net/http"
	"time"

	"github.com/iyunix/go-chatfront/internal/logging"
)

// retryPolicy retries idempotent requests that failed in transit or with a
// 5xx answer. Streams and logins are never retried.
type retryPolicy struct {
	MaxRetries int
	RetryDelay time.Duration
	logger     logging.Logger
}

func defaultRetryPolicy(logger logging.Logger) retryPolicy {
	return retryPolicy{MaxRetries: 2, RetryDelay: 300 * time.Millisecond, logger: logger}
}

func retryable(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp.StatusCode >= 500
}

// do runs call until it succeeds, answers below 500, or the attempts or
// ctx run out. The last response is returned with its body open.
func (p retryPolicy) do(ctx context.Context, op string, call func(ctx context.Context) (*http.Response, error)) (*http.Response, error) {
	var (
		resp *http.Response
		err  error
	)
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Debug("retrying request", "operation", op, "attempt", attempt, "max_retries", p.MaxRetries)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.RetryDelay * time.Duration(attempt)):
			}
		}

		resp, err = call(ctx)
		if ctx.Err() != nil {
			if resp != nil {
				resp.Body.Close()
			}
			return nil, ctx.Err()
		}
		if !retryable(resp, err) {
			if attempt > 0 {
				p.logger.Info("request succeeded after retry", "operation", op, "attempts", attempt+1)
			}
			return resp, nil
		}
		if attempt < p.MaxRetries {
			if resp != nil {
				resp.Body.Close()
			}
			p.logger.Warn("request failed, retrying", "operation", op, "attempt", attempt+1, "error", err)
		}
	}

	if err != nil {
		p.logger.Error("request failed after all retries", "operation", op, "attempts", p.MaxRetries+1, "error", err)
	}
	return resp, err
}
