package pubsub

import (
	"context"
	"log/slog"

	"github.com/stitchmind/quorum/events"
	"github.com/stitchmind/quorum/pkg/slogx"
)

// Hook adapts a topic into an events.Hook, so the orchestrator's side
// channel can be pointed straight at a broker. Publish failures are
// logged, not propagated; the batch must never fail because a listener's
// transport did.
func Hook(topic Topic) events.Hook {
	return publishHook{topic: topic}
}

type publishHook struct {
	topic Topic
}

func (h publishHook) OnPartial(ctx context.Context, chunk events.PartialChunk) {
	h.publish(ctx, chunk)
}

func (h publishHook) OnProviderComplete(ctx context.Context, done events.ProviderComplete) {
	h.publish(ctx, done)
}

func (h publishHook) OnSynthesisStarted(ctx context.Context, started events.SynthesisStarted) {
	h.publish(ctx, started)
}

func (h publishHook) OnSynthesisCompleted(ctx context.Context, completed events.SynthesisCompleted) {
	h.publish(ctx, completed)
}

func (h publishHook) publish(ctx context.Context, event events.Event) {
	if err := h.topic.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish event", slogx.LoggerName("pubsub"), slogx.Error(err))
	}
}
