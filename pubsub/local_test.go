package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitchmind/quorum/api"
	"github.com/stitchmind/quorum/events"
)

type collectingHook struct {
	events.NoopHook
	mu        sync.Mutex
	partials  []events.PartialChunk
	completes []events.ProviderComplete
}

func (c *collectingHook) OnPartial(_ context.Context, chunk events.PartialChunk) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.partials = append(c.partials, chunk)
}

func (c *collectingHook) OnProviderComplete(_ context.Context, done events.ProviderComplete) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completes = append(c.completes, done)
}

func (c *collectingHook) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.partials), len(c.completes)
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.True(t, cond())
}

func TestLocalBroker_PublishReachesSubscriber(t *testing.T) {
	ctx := context.Background()
	topic := Local().Topic(ctx, "batch-1")

	hook := &collectingHook{}
	sub, err := topic.Subscribe(ctx, hook)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, topic.Publish(ctx, events.PartialChunk{BatchID: "batch-1", ProviderID: "p", Text: "hi"}))
	require.NoError(t, topic.Publish(ctx, events.ProviderComplete{
		BatchID: "batch-1",
		Late:    true,
		Result:  api.ProviderResult{ProviderID: "p", OK: true},
	}))

	eventually(t, func() bool {
		p, c := hook.counts()
		return p == 1 && c == 1
	})
}

func TestLocalBroker_TopicIdentityIsStable(t *testing.T) {
	ctx := context.Background()
	b := Local()

	assert.Same(t, b.Topic(ctx, "x"), b.Topic(ctx, "x"))
	assert.NotSame(t, b.Topic(ctx, "x"), b.Topic(ctx, "y"))
}

func TestLocalBroker_SubscribeRequiresHook(t *testing.T) {
	topic := Local().Topic(context.Background(), "x")
	_, err := topic.Subscribe(context.Background(), nil)
	assert.Error(t, err)
}

func TestLocalBroker_UnsubscribeStopsDelivery(t *testing.T) {
	ctx := context.Background()
	topic := Local().Topic(ctx, "batch-2")

	hook := &collectingHook{}
	sub, err := topic.Subscribe(ctx, hook)
	require.NoError(t, err)

	require.NoError(t, topic.Publish(ctx, events.PartialChunk{BatchID: "batch-2", Text: "one"}))
	eventually(t, func() bool { p, _ := hook.counts(); return p == 1 })

	sub.Unsubscribe()
	sub.Unsubscribe() // safe to repeat

	require.NoError(t, topic.Publish(ctx, events.PartialChunk{BatchID: "batch-2", Text: "two"}))
	time.Sleep(50 * time.Millisecond)
	p, _ := hook.counts()
	assert.Equal(t, 1, p)
}

func TestHook_PublishesThroughTopic(t *testing.T) {
	ctx := context.Background()
	topic := Local().Topic(ctx, "batch-3")

	listener := &collectingHook{}
	sub, err := topic.Subscribe(ctx, listener)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	// the orchestrator-facing side of the bridge
	hook := Hook(topic)
	hook.OnPartial(ctx, events.PartialChunk{BatchID: "batch-3", ProviderID: "p", Text: "chunk"})
	hook.OnProviderComplete(ctx, events.ProviderComplete{BatchID: "batch-3", Result: api.ProviderResult{ProviderID: "p"}})

	eventually(t, func() bool {
		p, c := listener.counts()
		return p == 1 && c == 1
	})
}
