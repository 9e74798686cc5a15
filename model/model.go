package model

import (
	"context"
	"errors"
)

// Response is one provider's answer to a dispatched prompt.
type Response struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
	// Detail keeps the underlying cause of a failure; Error stays generic.
	Detail string `json:"detail,omitempty"`
}

// Failed reports whether the record describes a failed call.
func (r Response) Failed() bool {
	return r.Error != ""
}

// Provider is one chat-completion service reachable through a uniform query
// function. Implementations must be safe for concurrent use.
type Provider interface {
	ID() string
	Name() string
	Invoke(ctx context.Context, prompt string) (Response, error)
}

var (
	ErrDuplicateID = errors.New("duplicate model id")
	ErrEmptyID     = errors.New("model id is empty")
)

// UnknownName is reported for ids that are not in the registry.
const UnknownName = "Unknown"
