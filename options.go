package quorum

import (
	"time"

	"github.com/fogfish/opts"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/stitchmind/quorum/api"
	"github.com/stitchmind/quorum/events"
	"github.com/stitchmind/quorum/internal/deadline"
	"github.com/stitchmind/quorum/internal/fanout"
	"github.com/stitchmind/quorum/lifecycle"
	"github.com/stitchmind/quorum/provider"
)

// TimeoutPolicy selects what a per-provider deadline does to the
// underlying call when it fires.
type TimeoutPolicy int

const (
	// CooperativeCleanup releases only the orchestration bookkeeping at
	// expiry; the provider call keeps running and may still deliver a
	// late answer through the event hooks. This is the default when a
	// lifecycle controller is supplied.
	CooperativeCleanup TimeoutPolicy = iota

	// CancelOnTimeout hard-cancels the provider call at expiry. This is
	// the default when no lifecycle controller is supplied, since the
	// fallback tokens cannot be re-addressed by anyone else anyway.
	CancelOnTimeout
)

// Orchestrator construction options.
var (
	// WithProviderTimeout sets the per-provider budget. Zero or negative
	// means no limit.
	WithProviderTimeout = opts.ForName[Orchestrator, time.Duration]("providerTimeout")

	// WithGlobalTimeout sets the default whole-batch budget. Zero or
	// negative means no limit.
	WithGlobalTimeout = opts.ForName[Orchestrator, time.Duration]("globalTimeout")

	// WithMaxProviders caps implicit provider selection.
	WithMaxProviders = opts.ForName[Orchestrator, int]("maxProviders")

	// WithLifecycle supplies the external request-lifecycle controller.
	WithLifecycle = opts.ForName[Orchestrator, lifecycle.Controller]("lifecycle")

	// WithSynthesisPicker replaces the default synthesis-target picker.
	WithSynthesisPicker = opts.ForName[Orchestrator, SynthesisPicker]("picker")
)

// WithProviders registers providers at construction time.
func WithProviders(p provider.Provider, extra ...provider.Provider) opts.Option[Orchestrator] {
	return opts.Type[Orchestrator](func(o *Orchestrator) error {
		o.order.Set(p.ID(), p)
		for _, e := range extra {
			o.order.Set(e.ID(), e)
		}
		return nil
	})
}

// WithHook attaches a side-channel event hook. May be given several
// times; hooks fire in attachment order.
func WithHook(h events.Hook) opts.Option[Orchestrator] {
	return opts.Type[Orchestrator](func(o *Orchestrator) error {
		o.hooks = append(o.hooks, h)
		return nil
	})
}

// WithTimeoutPolicy pins the per-provider expiry policy instead of
// letting it follow the lifecycle controller's presence.
func WithTimeoutPolicy(p TimeoutPolicy) opts.Option[Orchestrator] {
	return opts.Type[Orchestrator](func(o *Orchestrator) error {
		o.policy = p
		o.policySet = true
		return nil
	})
}

// New builds an Orchestrator. It panics on invalid options; construction
// is programmer configuration, not request input.
func New(options ...opts.Option[Orchestrator]) *Orchestrator {
	o := &Orchestrator{
		order:           orderedmap.New[string, provider.Provider](),
		providerTimeout: DefaultProviderTimeout,
		globalTimeout:   DefaultGlobalTimeout,
		maxProviders:    DefaultMaxProviders,
		picker:          DefaultSynthesisPicker,
	}
	if err := opts.Apply(o, options); err != nil {
		panic(err)
	}

	if o.lifecycle == nil {
		o.lifecycle = lifecycle.NewLocal()
		if !o.policySet {
			o.policy = CancelOnTimeout
		}
	}

	policy := deadline.PolicyCooperative
	if o.policy == CancelOnTimeout {
		policy = deadline.PolicyCancel
	}
	o.dispatcher = fanout.NewDispatcher(o.lifecycle, events.Composite(o.hooks...), policy)
	return o
}

// BatchOptions holds the per-call knobs for DispatchBatch.
type BatchOptions struct {
	includeProviders []string
	includeSet       bool
	globalTimeout    time.Duration
	globalSet        bool
	onPartial        PartialFunc
	providerMetadata map[string]map[string]any
	synthesis        *api.SynthesisConfig
	metadata         map[string]any
}

// BatchOption configures one DispatchBatch call.
type BatchOption = opts.Option[BatchOptions]

// IncludeProviders names the exact providers to dispatch to, in order.
// An empty list dispatches to none; omitting the option selects all
// registered providers up to the orchestrator's maximum. Duplicates keep
// their first position; unregistered ids are skipped.
func IncludeProviders(ids ...string) BatchOption {
	return opts.Type[BatchOptions](func(b *BatchOptions) error {
		b.includeProviders = append([]string(nil), ids...)
		b.includeSet = true
		return nil
	})
}

// GlobalTimeout overrides the whole-batch budget for this call.
func GlobalTimeout(d time.Duration) BatchOption {
	return opts.Type[BatchOptions](func(b *BatchOptions) error {
		b.globalTimeout = d
		b.globalSet = true
		return nil
	})
}

// OnPartial receives every streamed chunk, tagged with its provider.
func OnPartial(fn PartialFunc) BatchOption {
	return opts.Type[BatchOptions](func(b *BatchOptions) error {
		b.onPartial = fn
		return nil
	})
}

// ProviderMetadata supplies per-provider metadata, keyed by provider id.
func ProviderMetadata(meta map[string]map[string]any) BatchOption {
	return opts.Type[BatchOptions](func(b *BatchOptions) error {
		b.providerMetadata = meta
		return nil
	})
}

// WithSynthesis enables the second phase for this call.
func WithSynthesis(cfg api.SynthesisConfig) BatchOption {
	return opts.Type[BatchOptions](func(b *BatchOptions) error {
		b.synthesis = &cfg
		return nil
	})
}

// WithBatchMetadata attaches metadata to the batch request itself; it is
// layered underneath per-provider metadata.
func WithBatchMetadata(meta map[string]any) BatchOption {
	return opts.Type[BatchOptions](func(b *BatchOptions) error {
		b.metadata = meta
		return nil
	})
}

func newBatchOptions(options []BatchOption) (*BatchOptions, error) {
	bo := &BatchOptions{}
	if err := opts.Apply(bo, options); err != nil {
		return nil, err
	}
	return bo, nil
}
