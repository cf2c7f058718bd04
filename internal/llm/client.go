// Package llm abstracts the language-model completion backend.
package llm

import "context"

// Client submits a prompt and returns the raw completion text. Implementations
// must bound the call with their configured timeout.
type Client interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}
