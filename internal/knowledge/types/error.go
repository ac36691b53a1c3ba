package types

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrInvalidProviderID   = errors.New("invalid provider ID")
	ErrInvalidProviderName = errors.New("invalid provider name")
	ErrInvalidAPIHost      = errors.New("invalid API host")
	ErrMissingAPIKey       = errors.New("missing API key")
	ErrInvalidRelevance    = errors.New("relevance threshold must be within [0, 1]")

	ErrProviderNotFound = errors.New("provider not found")
)

// ProviderError reports a transport level failure: the request could not be sent or the
// provider answered with a non-success HTTP status and no parseable failure payload.
type ProviderError struct {
	Provider ProviderID
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Provider, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Provider, e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ParseError reports a response body whose shape does not match the provider schema
type ParseError struct {
	Provider ProviderID
	Field    string // gjson path of the offending value
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unexpected %s response: %s %s", e.Provider, e.Field, e.Reason)
}
