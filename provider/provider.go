package provider

import "context"

// ChunkFunc receives incremental response text. It may be invoked zero or
// more times before Submit returns; chunks arrive in the order the
// backend emits them.
type ChunkFunc func(text string)

// Request is the per-provider view of one batch dispatch.
type Request struct {
	// ID is the sub-request id, unique per provider per batch. The
	// lifecycle controller addresses cancellation and cleanup by it.
	ID string

	// BatchID is the id of the batch this request belongs to.
	BatchID string

	// Prompt is the user prompt to answer.
	Prompt string

	// Metadata carries caller-supplied per-provider metadata merged with
	// engine extras, including the prompt echoed under api.MetaPrompt.
	Metadata map[string]any
}

// RawResult is what a provider reports before normalization. OK false
// with an ErrorCode is a provider-categorized failure; a Submit error
// return is an uncategorized one.
type RawResult struct {
	OK         bool
	ResultID   string
	Text       string
	TokensUsed int
	ErrorCode  string
	Metadata   map[string]any
}

// Provider is an independent responder backend.
type Provider interface {
	// ID identifies the provider in registries, results, and events.
	ID() string

	// CanSynthesize reports whether this provider is eligible to be
	// chosen as the default synthesis target.
	CanSynthesize() bool

	// Submit sends one request and blocks until the backend settles or
	// ctx is done. onChunk may be nil.
	Submit(ctx context.Context, req Request, onChunk ChunkFunc) (RawResult, error)
}
