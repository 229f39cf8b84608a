// Package ai wraps the generative-text collaborator: prompt in, text out.
package ai

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by the disabled generator when no API key
// was provided at startup.
var ErrNotConfigured = errors.New("no generative API key configured")

// Generator is the external generative-text call. Implementations either
// return generated text or an error; callers must not write partial content
// anywhere on the error path.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Disabled is a Generator that always fails. Used when the server starts
// without an API key so every other feature keeps working.
type Disabled struct{}

func (Disabled) Generate(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}
