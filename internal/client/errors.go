package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yildizm/CodeLens/internal/api"
)

// StatusError is returned by typed calls when the server answers non-2xx
type StatusError struct {
	StatusCode int
	Detail     string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Detail)
}

func newStatusError(status int, body []byte) *StatusError {
	var payload api.ErrorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return &StatusError{StatusCode: status, Detail: payload.Detail}
	}
	return &StatusError{StatusCode: status, Detail: strings.TrimSpace(string(body))}
}
