package quorum

import (
	"github.com/stitchmind/quorum/api"
	"github.com/stitchmind/quorum/provider"
)

// SynthesisPicker chooses the synthesis target when the caller's
// SynthesisConfig names none. It receives the phase-1 results and a
// registry lookup, and returns the chosen provider id or "" when nothing
// qualifies.
type SynthesisPicker func(results []api.ProviderResult, lookup func(id string) (provider.Provider, bool)) string

// DefaultSynthesisPicker prefers a successful responder whose provider is
// flagged CanSynthesize, then falls back to the first successful
// responder of any kind. The flag-versus-latency priority is a heuristic;
// swap it with WithSynthesisPicker if a deployment wants a different one.
func DefaultSynthesisPicker(results []api.ProviderResult, lookup func(id string) (provider.Provider, bool)) string {
	for _, r := range results {
		if !r.OK {
			continue
		}
		if p, ok := lookup(r.ProviderID); ok && p.CanSynthesize() {
			return r.ProviderID
		}
	}
	for _, r := range results {
		if r.OK {
			return r.ProviderID
		}
	}
	return ""
}
