package reviewboard

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type NotFoundError struct {
	ReviewRequest string
}

func (e NotFoundError) Error() string {
	if e.ReviewRequest == "" {
		return "reviewboard: not found"
	}
	return fmt.Sprintf("reviewboard: review request %s not found", e.ReviewRequest)
}

// APIError is a non-successful response from the server. Code and Message
// come from the server's error payload when it sent one.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("reviewboard: API error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	if e.Message == "" {
		return fmt.Sprintf("reviewboard: API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("reviewboard: API error (status %d): %s", e.StatusCode, e.Message)
}

func (e *APIError) retryable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

type AuthError struct {
	*APIError
}

func (e *AuthError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return "reviewboard: authentication failed: " + msg
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return "reviewboard: request failed: " + e.err.Error() }

func (e *transportError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	switch e := err.(type) {
	case *APIError:
		return e.retryable()
	case *transportError:
		return true
	}
	return false
}

func retryWithBackoff(ctx context.Context, maxRetries int, backoff time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) || ctx.Err() != nil {
			return lastErr
		}

		if attempt < maxRetries {
			wait := backoff * time.Duration(1<<uint(attempt))
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(wait):
			}
		}
	}
	return lastErr
}
