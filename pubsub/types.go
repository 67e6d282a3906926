// Package pubsub carries the orchestrator's side-channel events to
// detached listeners. The batch call returns synchronously; anything that
// wants partial chunks or the late results of timed-out providers (a UI,
// another process) subscribes to a topic here instead of holding the
// batch open. Two brokers exist: an in-process one and a NATS-backed one
// for listeners in other processes.
package pubsub

import (
	"context"

	"github.com/stitchmind/quorum/events"
)

// Broker hands out named topics.
type Broker interface {
	Topic(ctx context.Context, id string) Topic
}

// Topic is one event stream, usually one per batch or per conversation.
type Topic interface {
	Publish(ctx context.Context, event events.Event) error
	Subscribe(ctx context.Context, hook events.Hook) (Subscription, error)
}

// Subscription is a handle on an active subscriber.
type Subscription interface {
	ID() string
	Unsubscribe()
}

// forwardToHook drains a subscription channel into hook callbacks.
func forwardToHook(ctx context.Context, ch <-chan events.Event, hook events.Hook) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			switch e := event.(type) {
			case events.PartialChunk:
				hook.OnPartial(ctx, e)
			case events.ProviderComplete:
				hook.OnProviderComplete(ctx, e)
			case events.SynthesisStarted:
				hook.OnSynthesisStarted(ctx, e)
			case events.SynthesisCompleted:
				hook.OnSynthesisCompleted(ctx, e)
			}
		}
	}
}
