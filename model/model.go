// Package model defines the invocation interface for language models.
package model

import "context"

// Invoker is the narrow contract the pipeline places on a language model:
// prompt text in, raw text out. Implementations may block on network I/O and
// should honor ctx. Any returned error is treated as a stage failure by the
// caller's error boundary.
type Invoker interface {
	// Invoke sends the prompt and returns the model's raw text response.
	Invoke(ctx context.Context, prompt string) (string, error)

	// Info returns basic information about the model.
	Info() Info
}

// Info contains basic information about an Invoker.
type Info struct {
	// Name is the caller-facing name, e.g. "claude_creative".
	Name string
	// Model is the provider-side model identifier.
	Model string
	// Temperature is the sampling temperature the invoker is fixed to.
	Temperature float64
}
