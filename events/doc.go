// Package events defines the orchestrator's side-channel event types and
// the Hook interface that receives them.
//
// Events exist because a batch call returns before every provider has
// necessarily settled: a timed-out provider keeps running under the
// cooperative-cleanup policy, and when it finally settles its result is
// delivered here, not to the already-returned batch. Anything that wants
// late answers (a UI, a broker bridging to one) subscribes through a Hook.
//
// The event hierarchy is a sealed union:
//   - PartialChunk: one increment of streamed text from one provider
//   - ProviderComplete: a normalized per-provider result, possibly late
//   - SynthesisStarted: the synthesis phase began for a batch
//   - SynthesisCompleted: the synthesis result settled
//
// Every event carries the batch id and a timestamp. Events marshal to
// type-tagged JSON (a "type" discriminator plus the payload) so they can
// travel over a broker and be decoded back into the same union with
// FromJSON.
package events
