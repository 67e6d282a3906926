package api

import (
	json "github.com/goccy/go-json"
)

// Error codes assigned by the engine when normalizing provider outcomes.
// Providers may report their own opaque codes; those pass through
// untouched.
const (
	// CodeTimeout marks a provider whose own per-call deadline fired
	// before it settled.
	CodeTimeout = "timeout"

	// CodeGlobalTimeout marks a provider that had not settled when the
	// whole-batch deadline fired.
	CodeGlobalTimeout = "global_timeout"

	// CodeSynthesisProviderMissing is returned without any network
	// attempt when the synthesis target id does not resolve.
	CodeSynthesisProviderMissing = "synthesis_provider_missing"

	// CodeSynthesisFailed is the generic synthesis-phase failure code,
	// used when the underlying error carries no provider-specific code.
	CodeSynthesisFailed = "synthesis_failed"

	// CodeUnknown covers uncategorized failures.
	CodeUnknown = "unknown"
)

// MetaRawError is the metadata key under which a normalized failure
// carries the string form of the underlying error, for diagnostics.
const MetaRawError = "_rawError"

// MetaPrompt is the metadata key under which the dispatcher echoes the
// original prompt to providers that need it for context.
const MetaPrompt = "prompt"

// BatchRequest describes one caller invocation. It is created once per
// batch and never mutated; RequestID is a fresh unique token from which
// per-provider sub-request ids are derived (RequestID + "-" + providerID)
// so downstream cancellation and cleanup can be addressed individually.
type BatchRequest struct {
	RequestID string         `json:"request_id"`
	Prompt    string         `json:"prompt"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// SubRequestID derives the per-provider request id for the given provider.
func (r BatchRequest) SubRequestID(providerID string) string {
	return r.RequestID + "-" + providerID
}

// ProviderResult is the uniform record every provider outcome normalizes
// into: success, thrown error, or timeout. Exactly one exists per provider
// selected for dispatch, even when the underlying call is still running in
// the background at batch return. Immutable once placed into a batch's
// result collection.
type ProviderResult struct {
	ProviderID string         `json:"provider_id"`
	OK         bool           `json:"ok"`
	ResultID   string         `json:"result_id,omitempty"`
	Text       string         `json:"text,omitempty"`
	IsPartial  bool           `json:"is_partial,omitempty"`
	TokensUsed int            `json:"tokens_used,omitempty"`
	LatencyMS  int64          `json:"latency_ms,omitempty"`
	ErrorCode  string         `json:"error_code,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// BatchResult is what one orchestration call returns. Results preserves
// provider-selection order, not completion order. Synthesis is non-nil iff
// a SynthesisConfig was supplied and a target provider was resolvable.
// DidTimeOut reports that the whole-batch deadline fired before every
// provider call settled; per-provider deadlines show up only in each
// entry's ErrorCode.
type BatchResult struct {
	Results    []ProviderResult `json:"results"`
	Synthesis  *ProviderResult  `json:"synthesis,omitempty"`
	DidTimeOut bool             `json:"did_time_out"`
}

// Succeeded returns the subset of Results with OK set, preserving order.
func (b BatchResult) Succeeded() []ProviderResult {
	var out []ProviderResult
	for _, r := range b.Results {
		if r.OK {
			out = append(out, r)
		}
	}
	return out
}

// MarshalJSON renders a BatchResult with goccy/go-json. The method exists
// so callers serializing through encoding/json still get the faster
// encoder for these potentially large payloads.
func (b BatchResult) MarshalJSON() ([]byte, error) {
	type alias BatchResult
	return json.Marshal(alias(b))
}
