package fanout

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stitchmind/quorum/events"
	"github.com/stitchmind/quorum/provider"
)

// fakeProvider scripts one backend: optional streamed chunks, an optional
// settle delay or an explicit release gate, then a fixed outcome.
type fakeProvider struct {
	id       string
	canSynth bool

	chunks     []string
	lateChunks []string // emitted after the gate opens
	delay      time.Duration
	gate       chan struct{} // when non-nil, Submit blocks until closed

	raw provider.RawResult
	err error

	calls atomic.Int32

	mu      sync.Mutex
	lastReq provider.Request
	ctxErr  error // ctx.Err() observed at settle time
}

func (f *fakeProvider) ID() string          { return f.id }
func (f *fakeProvider) CanSynthesize() bool { return f.canSynth }

func (f *fakeProvider) Submit(ctx context.Context, req provider.Request, onChunk provider.ChunkFunc) (provider.RawResult, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastReq = req
	f.mu.Unlock()

	for _, c := range f.chunks {
		if onChunk != nil {
			onChunk(c)
		}
	}

	if f.gate != nil {
		select {
		case <-f.gate:
			for _, c := range f.lateChunks {
				if onChunk != nil {
					onChunk(c)
				}
			}
		case <-ctx.Done():
			f.recordCtx(ctx)
			return provider.RawResult{}, ctx.Err()
		}
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			f.recordCtx(ctx)
			return provider.RawResult{}, ctx.Err()
		}
	}

	f.recordCtx(ctx)
	return f.raw, f.err
}

func (f *fakeProvider) recordCtx(ctx context.Context) {
	f.mu.Lock()
	f.ctxErr = ctx.Err()
	f.mu.Unlock()
}

func (f *fakeProvider) observedCtxErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ctxErr
}

func (f *fakeProvider) request() provider.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

// testHook records every event; callbacks arrive from several goroutines.
type testHook struct {
	mu        sync.Mutex
	partials  []events.PartialChunk
	completes []events.ProviderComplete
	started   []events.SynthesisStarted
	completed []events.SynthesisCompleted
}

func (h *testHook) OnPartial(_ context.Context, c events.PartialChunk) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.partials = append(h.partials, c)
}

func (h *testHook) OnProviderComplete(_ context.Context, d events.ProviderComplete) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completes = append(h.completes, d)
}

func (h *testHook) OnSynthesisStarted(_ context.Context, s events.SynthesisStarted) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, s)
}

func (h *testHook) OnSynthesisCompleted(_ context.Context, s events.SynthesisCompleted) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed = append(h.completed, s)
}

func (h *testHook) partialCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.partials)
}

func (h *testHook) completions() []events.ProviderComplete {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]events.ProviderComplete(nil), h.completes...)
}

func (h *testHook) synthesisCompletions() []events.SynthesisCompleted {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]events.SynthesisCompleted(nil), h.completed...)
}

// testWait bounds every polling assertion; generous so slow CI machines
// do not flake.
const testWait = 2 * time.Second

// waitFor polls cond until it holds or the deadline lapses.
func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
