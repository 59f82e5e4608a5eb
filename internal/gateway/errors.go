package gateway

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// APIError is a non-2xx answer from the remote store.
type APIError struct {
	Status  int
	Message string
	err     error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote store returned status %d: %s", e.Status, e.Message)
}

// Unwrap exposes the sentinel (if any) for errors.Is.
func (e *APIError) Unwrap() error {
	return e.err
}

// newAPIError prefers the server's "detail" field and falls back to the raw body.
func newAPIError(status int, body []byte, sentinel error) *APIError {
	msg := strings.TrimSpace(string(body))
	if gjson.ValidBytes(body) {
		if detail := gjson.GetBytes(body, "detail"); detail.Exists() {
			if detail.Type == gjson.String {
				msg = detail.String()
			} else {
				msg = detail.Raw
			}
		}
	}
	return &APIError{Status: status, Message: msg, err: sentinel}
}
