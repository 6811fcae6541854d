// Package llm is the boundary to the remote language model.
package llm

import (
	"context"
	"errors"
)

// ErrTransport marks a remote call failure (network, auth, service error).
// Transport failures are never retried by the core.
var ErrTransport = errors.New("llm transport failure")

// Message is one turn of role-tagged text.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// AssistantMessage builds an assistant-role message.
func AssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// Client sends one completion request and returns the response text.
type Client interface {
	Complete(ctx context.Context, systemPrompt string, msgs []Message) (string, error)
}
