package quorum

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stitchmind/quorum/events"
	"github.com/stitchmind/quorum/provider"
)

// stubProvider scripts one backend for facade-level tests.
type stubProvider struct {
	id       string
	canSynth bool
	delay    time.Duration
	gate     chan struct{}
	chunks   []string
	raw      provider.RawResult
	err      error

	calls atomic.Int32

	mu      sync.Mutex
	lastReq provider.Request
}

func (s *stubProvider) ID() string          { return s.id }
func (s *stubProvider) CanSynthesize() bool { return s.canSynth }

func (s *stubProvider) Submit(ctx context.Context, req provider.Request, onChunk provider.ChunkFunc) (provider.RawResult, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.lastReq = req
	s.mu.Unlock()

	for _, c := range s.chunks {
		if onChunk != nil {
			onChunk(c)
		}
	}

	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return provider.RawResult{}, ctx.Err()
		}
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return provider.RawResult{}, ctx.Err()
		}
	}
	return s.raw, s.err
}

func (s *stubProvider) request() provider.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReq
}

func okProvider(id, text string) *stubProvider {
	return &stubProvider{id: id, raw: provider.RawResult{OK: true, ResultID: "r-" + id, Text: text}}
}

// recorderHook captures side-channel events for assertions.
type recorderHook struct {
	events.NoopHook
	mu        sync.Mutex
	partials  []events.PartialChunk
	completes []events.ProviderComplete
	started   []events.SynthesisStarted
	completed []events.SynthesisCompleted
}

func (r *recorderHook) OnPartial(_ context.Context, c events.PartialChunk) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.partials = append(r.partials, c)
}

func (r *recorderHook) OnProviderComplete(_ context.Context, d events.ProviderComplete) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completes = append(r.completes, d)
}

func (r *recorderHook) OnSynthesisStarted(_ context.Context, s events.SynthesisStarted) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, s)
}

func (r *recorderHook) OnSynthesisCompleted(_ context.Context, s events.SynthesisCompleted) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, s)
}

func (r *recorderHook) providerCompletions() []events.ProviderComplete {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.ProviderComplete(nil), r.completes...)
}

func (r *recorderHook) synthesisStarts() []events.SynthesisStarted {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.SynthesisStarted(nil), r.started...)
}
