package engine

import (
	"errors"
	"fmt"

	httpClient "github.com/Alias1177/BacktestView/internal/platform/http"
)

// EngineError is a failure the engine reported with a readable {error} body.
type EngineError struct {
	StatusCode int
	Message    string
}

func (e *EngineError) Error() string {
	return e.Message
}

// TransportError is a network failure or a failed status without a readable body.
type TransportError struct {
	StatusCode int // zero when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	var statusErr *httpClient.HTTPStatusError
	switch {
	case e.StatusCode != 0 && errors.As(e.Err, &statusErr):
		return fmt.Sprintf("server error: %d", e.StatusCode)
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("server error: %d: %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("server error: %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("network error: %v", e.Err)
	}
	return "network error"
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
