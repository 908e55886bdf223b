// Package textgen defines the generative text service port (interface).
package textgen

import "context"

// Generator is the port interface for a single-shot generative text call.
//
// One prompt in, one text payload out; no streaming, no multi-turn state.
// The caller bounds the call with ctx; implementations must honor
// cancellation and deadlines.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
