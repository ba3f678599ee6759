// Package llm holds the text generation backends used to answer free-form
// client questions.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a backend answers without any text.
var ErrEmptyResponse = errors.New("empty response from model")

// Generator produces a reply for a system prompt and a user message.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
	// Ping checks that the backend is reachable and the credentials work.
	Ping(ctx context.Context) error
	Name() string
}
