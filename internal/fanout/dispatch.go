package fanout

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/stitchmind/quorum/api"
	"github.com/stitchmind/quorum/events"
	"github.com/stitchmind/quorum/internal/deadline"
	"github.com/stitchmind/quorum/lifecycle"
	"github.com/stitchmind/quorum/pkg/jsonx"
	"github.com/stitchmind/quorum/pkg/slogx"
	"github.com/stitchmind/quorum/provider"
)

// PartialFunc is the caller's partial-chunk callback, tagged with the
// originating provider id.
type PartialFunc func(providerID, chunk string)

// Dispatcher issues one concurrent call per selected provider, each
// bounded by the per-provider budget, and always yields one promise per
// provider regardless of individual failure.
type Dispatcher struct {
	lifecycle lifecycle.Controller
	hook      events.Hook
	policy    deadline.Policy
}

// NewDispatcher wires the engine to its collaborators. A nil controller
// falls back to local cancellation tokens; a nil hook discards events.
func NewDispatcher(ctl lifecycle.Controller, hook events.Hook, policy deadline.Policy) *Dispatcher {
	if ctl == nil {
		ctl = lifecycle.NewLocal()
	}
	if hook == nil {
		hook = events.NoopHook{}
	}
	return &Dispatcher{lifecycle: ctl, hook: hook, policy: policy}
}

// Dispatch fans req out to every provider in provs, in order. The
// returned promises line up with provs; each settles by its own budget at
// the latest. meta holds caller-supplied per-provider metadata keyed by
// provider id.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	req api.BatchRequest,
	provs []provider.Provider,
	budget time.Duration,
	onPartial PartialFunc,
	meta map[string]map[string]any,
) []*Promise {
	promises := make([]*Promise, len(provs))
	for i, prov := range provs {
		promises[i] = d.dispatchOne(ctx, req, prov, budget, onPartial, meta[prov.ID()])
	}
	return promises
}

// dispatchOne runs one provider call to settlement. The promise settles
// with the normalized outcome or, if the budget fires first, a timeout
// record; either way the underlying call is left to finish and its real
// outcome still reaches the provider-complete hook, flagged late.
func (d *Dispatcher) dispatchOne(
	ctx context.Context,
	req api.BatchRequest,
	prov provider.Provider,
	budget time.Duration,
	onPartial PartialFunc,
	callerMeta map[string]any,
) *Promise {
	pid := prov.ID()
	subID := req.SubRequestID(pid)
	promise := NewPromise(pid)
	handle := d.lifecycle.Acquire(ctx, subID)
	start := time.Now()

	acc := &accumulator{}
	onChunk := func(text string) {
		acc.append(text)
		if onPartial != nil {
			onPartial(pid, text)
		}
		d.hook.OnPartial(ctx, events.PartialChunk{
			BatchID:      req.RequestID,
			ProviderID:   pid,
			SubRequestID: subID,
			Text:         text,
			Timestamp:    strfmt.DateTime(time.Now()),
		})
	}

	subReq := provider.Request{
		ID:       subID,
		BatchID:  req.RequestID,
		Prompt:   req.Prompt,
		Metadata: mergeMetadata(req, callerMeta),
	}

	go func() {
		raw, err := prov.Submit(handle.Context(), subReq, onChunk)
		res := Normalize(pid, raw, err, acc.text(), time.Since(start))

		// release is idempotent; the watcher may have beaten us to it
		d.lifecycle.Cleanup(subID)

		late := !promise.Complete(res)
		d.hook.OnProviderComplete(ctx, events.ProviderComplete{
			BatchID:   req.RequestID,
			Result:    res,
			Late:      late,
			Timestamp: strfmt.DateTime(time.Now()),
		})
		if late {
			slog.DebugContext(ctx, "late provider settlement",
				slogx.LoggerName("fanout"),
				slog.String("sub_request_id", subID),
				slog.Bool("ok", res.OK),
			)
		}
	}()

	deadline.Watch(budget, promise.Done(), func() {
		switch d.policy {
		case deadline.PolicyCancel:
			d.lifecycle.ForceCancel(subID)
		default:
			// cooperative cleanup: drop the bookkeeping, let the call run
			d.lifecycle.Cleanup(subID)
		}
		promise.Complete(timeoutResult(pid, subID, acc.text(), time.Since(start)))
	})

	return promise
}

// mergeMetadata layers the caller's per-provider metadata over the batch
// metadata and echoes the prompt for providers that need it for context.
func mergeMetadata(req api.BatchRequest, callerMeta map[string]any) map[string]any {
	merged := jsonx.MergeMaps(req.Metadata, callerMeta)
	merged[api.MetaPrompt] = req.Prompt
	return merged
}

// accumulator gathers streamed text so a missing final body can fall back
// to whatever was already received. It is read by the deadline watcher
// while the submit goroutine appends, hence the lock.
type accumulator struct {
	mu sync.Mutex
	b  strings.Builder
}

func (a *accumulator) append(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.b.WriteString(text)
}

func (a *accumulator) text() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.b.String()
}
