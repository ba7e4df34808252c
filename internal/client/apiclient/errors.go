package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable   = errors.New("server unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrServer        = errors.New("server error")
	ErrRequest       = errors.New("request rejected")
	ErrBadPayload    = errors.New("unexpected response payload")
	ErrInvalidPeriod = errors.New("invalid analytics period")
)

// HTTPError is a response with status >= 400.
type HTTPError struct {
	StatusCode int
	Method     string
	URL        string
	Message    string
	RequestID  string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, e.Message)
}

// Unwrap maps the status code to its sentinel.
func (e *HTTPError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode >= 500:
		return ErrServer
	default:
		return ErrRequest
	}
}

// Message returns the human-readable part of err, suitable for a notice.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var herr *HTTPError
	if errors.As(err, &herr) && herr.Message != "" {
		return herr.Message
	}
	if errors.Is(err, ErrUnavailable) {
		return "Network error. Please check your connection."
	}
	return err.Error()
}

// errorMessage pulls a message out of a JSON error body. FastAPI uses
// "detail", which is either a string or a list of validation errors.
func errorMessage(body []byte, status int) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if len(payload.Detail) > 0 {
			var s string
			if json.Unmarshal(payload.Detail, &s) == nil && s != "" {
				return s
			}
			var list []struct {
				Msg string `json:"msg"`
			}
			if json.Unmarshal(payload.Detail, &list) == nil && len(list) > 0 {
				msgs := make([]string, 0, len(list))
				for _, it := range list {
					msgs = append(msgs, it.Msg)
				}
				return strings.Join(msgs, "; ")
			}
		}
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return http.StatusText(status)
}
