package forge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Sentinel errors for every failure class the client can surface.
// Callers branch with errors.Is; the wrapped text carries the API message.
var (
	ErrNetwork            = errors.New("network error")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrMalformedResponse  = errors.New("malformed response")
)

// apiMessage is the error envelope GitHub returns on non-2xx statuses.
type apiMessage struct {
	Message string `json:"message"`
}

// statusError maps an HTTP status to the matching sentinel, keeping the
// API's own message for display. A stale revision token comes back as 409
// from the contents endpoint and 422 when the sha field is missing or wrong.
func statusError(resp *http.Response) error {
	var msg apiMessage
	if body, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil {
		_ = json.Unmarshal(body, &msg)
	}
	detail := msg.Message
	if detail == "" {
		detail = resp.Status
	}

	var kind error
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		kind = ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		kind = ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		kind = ErrNotFound
	case resp.StatusCode == http.StatusConflict,
		resp.StatusCode == http.StatusUnprocessableEntity:
		kind = ErrConflict
	case resp.StatusCode >= 500:
		kind = ErrServiceUnavailable
	default:
		kind = ErrMalformedResponse
	}
	return fmt.Errorf("%w: %s", kind, detail)
}
