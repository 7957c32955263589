package model

import "fmt"

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	Stage      string // "login" or "listing"
	StatusCode int
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Stage, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Stage, e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
