package llmclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("llmclient: empty response from LLM")

// ErrNoAPIKey is returned by factories when the provider key is not configured.
var ErrNoAPIKey = errors.New("llmclient: API key is not set")

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// statusError builds the error for a non-2xx HTTP response. Client errors
// other than timeouts and rate limiting are permanent.
func statusError(provider string, resp *http.Response, body []byte) error {
	const max = 2048
	if len(body) > max {
		body = body[:max]
	}
	err := fmt.Errorf("%s: unexpected status %s: %s", provider, resp.Status, string(body))
	switch {
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode == http.StatusRequestTimeout:
		return err
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return NewPermanentError(err)
	}
	return err
}
