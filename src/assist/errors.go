package assist

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"google.golang.org/api/googleapi"
)

var (
	ErrMissingCredential  = errors.New("no completion API key configured")
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrRateLimited        = errors.New("rate limited")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrNetwork            = errors.New("network error")
)

// mapError translates a completion API failure into the taxonomy callers
// branch on. Rate limiting is reported for the user to retry later; nothing
// is retried here.
func mapError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusBadRequest:
			return fmt.Errorf("%w: %s", ErrBadRequest, gerr.Message)
		case gerr.Code == http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrUnauthorized, gerr.Message)
		case gerr.Code == http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrForbidden, gerr.Message)
		case gerr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimited, gerr.Message)
		case gerr.Code >= 500:
			return fmt.Errorf("%w: %s", ErrServiceUnavailable, gerr.Message)
		}
		return err
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return err
}
