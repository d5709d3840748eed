package authclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrDecode     = errors.New("cannot decode response")
	ErrRequest    = errors.New("cannot send request")
	ErrUnexpected = errors.New("unexpected")
)

// An APIError is the payload of a non-2xx response from the auth server.
type APIError struct {
	Code       string `json:"code,omitempty"`
	Message    string `json:"message,omitempty"`
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%d %s: %s", e.Status, e.StatusText, e.Message)
	case e.Code != "":
		return fmt.Sprintf("%d %s: %s", e.Status, e.StatusText, e.Code)
	default:
		return fmt.Sprintf("%d %s", e.Status, e.StatusText)
	}
}

func newAPIError(status int) *APIError {
	return &APIError{Status: status, StatusText: http.StatusText(status)}
}
