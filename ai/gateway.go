package ai

import (
	"context"
)

// Options bound a single completion call.
type Options struct {
	// Temperature in [0,1]; higher values produce more varied dialogue.
	Temperature float32
	// MaxOutputTokens caps the length of the generated text.
	MaxOutputTokens int
}

// TextGenerator is the boundary to the external text-completion capability.
// Implementations block for network latency, so callers bound every call with
// a context. Failures come back as GENERATION_ERROR application errors; retry
// policy, if any, lives behind this interface.
type TextGenerator interface {
	Complete(ctx context.Context, systemInstructions, userContent string, opts Options) (string, error)
}
