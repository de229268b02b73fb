package clickup

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrBadRequest matches any *APIError carrying HTTP 400. It is the only
// failure the status-filter fallback reacts to.
var ErrBadRequest = errors.New("clickup: bad request")

// APIError is a non-2xx response from the ClickUp API.
type APIError struct {
	StatusCode int
	// Code is ClickUp's ECODE, e.g. "PUBAPITASK_039".
	Code     string
	Message  string
	Method   string
	Endpoint string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("clickup %s %s: %d %s (%s)", e.Method, e.Endpoint, e.StatusCode, msg, e.Code)
	}
	return fmt.Sprintf("clickup %s %s: %d %s", e.Method, e.Endpoint, e.StatusCode, msg)
}

// Is lets errors.Is(err, ErrBadRequest) select 400 responses only.
func (e *APIError) Is(target error) bool {
	return target == ErrBadRequest && e.StatusCode == http.StatusBadRequest
}

// StatusCode extracts the HTTP status from err, or 0 when err is not an
// API error.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
