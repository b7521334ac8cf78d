package ai

import "context"

// Completer is the inference service: given a prompt, it returns a text completion.
// Implementations must be thread-safe for concurrent use.
type Completer interface {
	// Complete sends a single prompt and returns the raw completion text.
	// The text is not guaranteed to be well-formed in any way; callers must
	// treat malformed content as a soft failure.
	// Returns an error only for transport or service failures.
	Complete(ctx context.Context, prompt string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Completer returns the text completion service.
	// The returned Completer is safe for concurrent use.
	Completer() Completer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}

// CompleterFunc adapts an ordinary function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f(ctx, prompt).
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
