// Package completion wraps the remote text-completion service behind a
// small provider-agnostic interface. The engine treats the service as
// an opaque remote procedure: transport failures, bad statuses and
// malformed replies all surface as plain errors for callers to recover
// from.
package completion

import "context"

// Options bound a single completion call. Suggestion calls use a small
// token budget; execution calls use a larger one.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Client is the minimal surface every provider implements.
type Client interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// Default budgets for the two call shapes the engine makes.
var (
	SuggestOptions = Options{MaxTokens: 512, Temperature: 0.7}
	ExecuteOptions = Options{MaxTokens: 2048, Temperature: 0.4}
)
