package quorum

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/stitchmind/quorum/api"
	"github.com/stitchmind/quorum/events"
	"github.com/stitchmind/quorum/internal/fanout"
	"github.com/stitchmind/quorum/lifecycle"
	"github.com/stitchmind/quorum/pkg/slogx"
	"github.com/stitchmind/quorum/pkg/uuidx"
	"github.com/stitchmind/quorum/provider"
)

const (
	// DefaultProviderTimeout bounds each individual provider call.
	DefaultProviderTimeout = 60 * time.Second

	// DefaultGlobalTimeout bounds the whole batch. Larger than the
	// per-provider budget so a full house of slow-but-in-budget
	// providers is not cut short, though callers may invert that.
	DefaultGlobalTimeout = 120 * time.Second

	// DefaultMaxProviders caps implicit selection when the caller does
	// not name providers explicitly.
	DefaultMaxProviders = 6
)

// PartialFunc is the caller's streaming callback: one incremental chunk
// of text, tagged with the provider that produced it.
type PartialFunc func(providerID, chunk string)

// Orchestrator owns the provider registry and default configuration, and
// composes the fan-out, collection, and synthesis machinery behind one
// entry point. Construct it with New; the zero value is not usable.
type Orchestrator struct {
	mu    sync.RWMutex
	order *orderedmap.OrderedMap[string, provider.Provider]

	lifecycle       lifecycle.Controller
	hooks           []events.Hook
	policy          TimeoutPolicy
	policySet       bool
	providerTimeout time.Duration
	globalTimeout   time.Duration
	maxProviders    int
	picker          SynthesisPicker

	dispatcher *fanout.Dispatcher
}

// Register adds or replaces a provider. Registration may happen while a
// batch is in flight; dispatched batches work on a snapshot taken at
// dispatch time and are unaffected.
func (o *Orchestrator) Register(p provider.Provider) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.order.Set(p.ID(), p)
}

// Deregister removes a provider. In-flight batches keep their snapshot.
func (o *Orchestrator) Deregister(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.order.Delete(id)
}

// Provider looks up a registered provider by id.
func (o *Orchestrator) Provider(id string) (provider.Provider, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	p, ok := o.order.Get(id)
	return p, ok
}

// ProviderIDs lists the registered provider ids in registration order.
func (o *Orchestrator) ProviderIDs() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	ids := make([]string, 0, o.order.Len())
	for pair := o.order.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}

// snapshot resolves the dispatch set. An explicit include list is deduped
// preserving first occurrence, with unknown ids skipped; otherwise all
// registered providers up to max, in registration order.
func (o *Orchestrator) snapshot(include []string, explicit bool) []provider.Provider {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if explicit {
		seen := orderedmap.New[string, provider.Provider]()
		for _, id := range include {
			p, ok := o.order.Get(id)
			if !ok {
				slog.Warn("skipping unregistered provider", slogx.LoggerName("quorum"), slog.String("provider_id", id))
				continue
			}
			seen.Set(id, p)
		}
		out := make([]provider.Provider, 0, seen.Len())
		for pair := seen.Oldest(); pair != nil; pair = pair.Next() {
			out = append(out, pair.Value)
		}
		return out
	}

	out := make([]provider.Provider, 0, o.order.Len())
	for pair := o.order.Oldest(); pair != nil; pair = pair.Next() {
		if len(out) == o.maxProviders {
			break
		}
		out = append(out, pair.Value)
	}
	return out
}

// DispatchBatch sends prompt to the selected providers concurrently and
// returns one normalized result per provider in selection order, plus the
// optional synthesis record. It errors only for malformed caller input;
// provider failures and timeouts are folded into the results.
func (o *Orchestrator) DispatchBatch(ctx context.Context, prompt string, options ...BatchOption) (api.BatchResult, error) {
	if prompt == "" {
		return api.BatchResult{}, errors.New("quorum: prompt is required")
	}

	bo, err := newBatchOptions(options)
	if err != nil {
		return api.BatchResult{}, err
	}

	req := api.BatchRequest{
		RequestID: uuidx.NewString(),
		Prompt:    prompt,
		Metadata:  bo.metadata,
	}

	var selected []provider.Provider
	if bo.synthesis == nil || !bo.synthesis.Only {
		selected = o.snapshot(bo.includeProviders, bo.includeSet)
	}

	slog.DebugContext(ctx, "dispatching batch",
		slogx.LoggerName("quorum"),
		slog.String("batch_id", req.RequestID),
		slog.Int("providers", len(selected)),
		slogx.Millis("provider_budget_ms", o.providerTimeout),
	)

	promises := o.dispatcher.Dispatch(ctx, req, selected, o.providerTimeout, fanout.PartialFunc(bo.onPartial), bo.providerMetadata)

	globalBudget := o.globalTimeout
	if bo.globalSet {
		globalBudget = bo.globalTimeout
	}
	results, didTimeOut := fanout.Collect(ctx, promises, globalBudget)

	out := api.BatchResult{Results: results, DidTimeOut: didTimeOut}
	if bo.synthesis != nil {
		out.Synthesis = o.synthesize(ctx, req, *bo.synthesis, results)
	}
	return out, nil
}

// synthesize resolves the target and runs the second phase. When the
// config names no provider, the configured picker chooses one from the
// phase-1 results.
func (o *Orchestrator) synthesize(ctx context.Context, req api.BatchRequest, cfg api.SynthesisConfig, results []api.ProviderResult) *api.ProviderResult {
	targetID := cfg.ProviderID
	if targetID == "" {
		targetID = o.picker(results, o.Provider)
	}

	var target provider.Provider
	if targetID != "" {
		target, _ = o.Provider(targetID)
	}

	res := o.dispatcher.Synthesize(ctx, fanout.SynthesisCall{
		Target:   target,
		TargetID: targetID,
		Request:  req,
		Phase1:   results,
		Override: cfg.Results,
		Builder:  cfg.PromptBuilder,
		Metadata: cfg.Metadata,
		Budget:   fanout.SynthesisBudget(o.providerTimeout),
	})
	return &res
}
