// Package llm holds the chat-completion clients used by the assistant and the
// insight generator.
package llm

import (
	"context"
	"errors"
)

// ErrUnauthorized marks a provider rejecting the configured credentials.
var ErrUnauthorized = errors.New("llm provider rejected credentials")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a prior conversation turn.
type Message struct {
	Role    string
	Content string
}

// Request is a single completion call. Messages end with the user's prompt.
type Request struct {
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Completer returns the assistant's reply for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// IsUnauthorized reports whether err came from rejected provider credentials.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
