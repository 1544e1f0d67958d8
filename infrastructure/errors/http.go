// Package errors turns non-2xx upstream HTTP responses into typed errors.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much of an error response body is read.
const maxErrorBody = 64 << 10

// HTTPError is a non-2xx response from an upstream API.
type HTTPError struct {
	StatusCode int
	Status     string
	// Body is the raw (possibly truncated) response body.
	Body string
	// Message is the most specific error text found in Body.
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// ParseHTTPError returns nil for responses below 400. Otherwise it reads
// the body and extracts a message from the common JSON error shapes:
//
//	{"error": "text"}                           generic
//	{"message": "text", "details": "..."}       PostgREST
//	{"error": {"message": "text", "type": ...}} OpenAI and Anthropic
//
// Falling back to the trimmed body text. The caller still closes resp.Body.
func ParseHTTPError(resp *http.Response) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	herr := &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		herr.Message = "read error body: " + err.Error()
		return herr
	}

	herr.Body = string(raw)
	herr.Message = messageFrom(raw)
	return herr
}

func messageFrom(raw []byte) string {
	var shape struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Details string          `json:"details"`
		Hint    string          `json:"hint"`
	}

	if json.Unmarshal(raw, &shape) != nil {
		return strings.TrimSpace(string(raw))
	}

	if len(shape.Error) > 0 {
		var text string
		if json.Unmarshal(shape.Error, &text) == nil && text != "" {
			return text
		}
		var nested struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		}
		if json.Unmarshal(shape.Error, &nested) == nil && nested.Message != "" {
			if nested.Type != "" {
				return nested.Type + ": " + nested.Message
			}
			return nested.Message
		}
	}

	if shape.Message != "" {
		parts := []string{shape.Message}
		if shape.Details != "" {
			parts = append(parts, shape.Details)
		}
		if shape.Hint != "" {
			parts = append(parts, shape.Hint)
		}
		return strings.Join(parts, " ")
	}

	return strings.TrimSpace(string(raw))
}

// StatusCode returns the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var herr *HTTPError
	if errors.As(err, &herr) {
		return herr.StatusCode, true
	}
	return 0, false
}
