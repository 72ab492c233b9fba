package entity

import (
	"errors"
	"fmt"
)

// ErrNoPortfolioData is returned when a balance provider answers without usable portfolio data.
var ErrNoPortfolioData = errors.New("no portfolio data available")

// TransportError is a network or HTTP failure that persisted through every retry attempt.
type TransportError struct {
	URL        string
	Attempts   int
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request to %s failed after %d attempts (last status %d): %v", e.URL, e.Attempts, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("request to %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamDataError reports a response that arrived but lacked the expected fields.
// It is never retried.
type UpstreamDataError struct {
	Source string
	Err    error
}

func (e *UpstreamDataError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *UpstreamDataError) Unwrap() error { return e.Err }

// ConfigurationError reports a required setting that is missing.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("setting %s is not configured", e.Setting)
	}
	return fmt.Sprintf("setting %s is not configured: %s", e.Setting, e.Reason)
}

// StatusError carries a non-success HTTP status for a single attempt.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d, message: %s", e.StatusCode, e.Body)
}
