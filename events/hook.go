package events

import (
	"context"
	"log/slog"

	"github.com/stitchmind/quorum/pkg/slogx"
)

// Hook receives the orchestrator's side-channel notifications. Callbacks
// run on the dispatching goroutines, so implementations should return
// quickly or hand off to their own workers.
type Hook interface {
	OnPartial(ctx context.Context, chunk PartialChunk)
	OnProviderComplete(ctx context.Context, done ProviderComplete)
	OnSynthesisStarted(ctx context.Context, started SynthesisStarted)
	OnSynthesisCompleted(ctx context.Context, completed SynthesisCompleted)
}

// NoopHook discards every event. Embed it to implement only the callbacks
// you care about.
type NoopHook struct{}

var _ Hook = NoopHook{}

func (NoopHook) OnPartial(context.Context, PartialChunk)                  {}
func (NoopHook) OnProviderComplete(context.Context, ProviderComplete)     {}
func (NoopHook) OnSynthesisStarted(context.Context, SynthesisStarted)     {}
func (NoopHook) OnSynthesisCompleted(context.Context, SynthesisCompleted) {}

// Composite fans every event out to each of the given hooks in order.
// Nil entries are skipped.
func Composite(hooks ...Hook) Hook {
	filtered := make([]Hook, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			filtered = append(filtered, h)
		}
	}
	return compositeHook(filtered)
}

type compositeHook []Hook

func (c compositeHook) OnPartial(ctx context.Context, chunk PartialChunk) {
	for _, h := range c {
		h.OnPartial(ctx, chunk)
	}
}

func (c compositeHook) OnProviderComplete(ctx context.Context, done ProviderComplete) {
	for _, h := range c {
		h.OnProviderComplete(ctx, done)
	}
}

func (c compositeHook) OnSynthesisStarted(ctx context.Context, started SynthesisStarted) {
	for _, h := range c {
		h.OnSynthesisStarted(ctx, started)
	}
}

func (c compositeHook) OnSynthesisCompleted(ctx context.Context, completed SynthesisCompleted) {
	for _, h := range c {
		h.OnSynthesisCompleted(ctx, completed)
	}
}

// Logging returns a hook that logs every event at debug level through the
// default slog logger.
func Logging() Hook {
	return logHook{}
}

type logHook struct{}

func (logHook) OnPartial(ctx context.Context, chunk PartialChunk) {
	slog.DebugContext(ctx, "partial chunk",
		slogx.LoggerName("events"),
		slog.String("batch_id", chunk.BatchID),
		slog.String("provider_id", chunk.ProviderID),
		slog.Int("len", len(chunk.Text)),
	)
}

func (logHook) OnProviderComplete(ctx context.Context, done ProviderComplete) {
	slog.DebugContext(ctx, "provider complete",
		slogx.LoggerName("events"),
		slog.String("batch_id", done.BatchID),
		slog.String("provider_id", done.Result.ProviderID),
		slog.Bool("ok", done.Result.OK),
		slog.Bool("late", done.Late),
		slog.String("error_code", done.Result.ErrorCode),
		slog.Int64("latency_ms", done.Result.LatencyMS),
	)
}

func (logHook) OnSynthesisStarted(ctx context.Context, started SynthesisStarted) {
	slog.DebugContext(ctx, "synthesis started",
		slogx.LoggerName("events"),
		slog.String("batch_id", started.BatchID),
		slog.String("provider_id", started.ProviderID),
	)
}

func (logHook) OnSynthesisCompleted(ctx context.Context, completed SynthesisCompleted) {
	slog.DebugContext(ctx, "synthesis completed",
		slogx.LoggerName("events"),
		slog.String("batch_id", completed.BatchID),
		slog.Bool("ok", completed.Result.OK),
		slog.String("error_code", completed.Result.ErrorCode),
	)
}
