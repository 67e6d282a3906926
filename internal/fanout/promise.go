package fanout

import (
	"sync"

	"github.com/stitchmind/quorum/api"
)

// Promise is the single-assignment slot for one provider's normalized
// result. It is settled exactly once by whichever of the real outcome or
// the deadline watcher gets there first; a later Complete is a no-op and
// reports that it lost.
type Promise struct {
	providerID string
	done       chan struct{}
	once       sync.Once
	result     api.ProviderResult
}

// NewPromise allocates the unsettled slot for the given provider.
func NewPromise(providerID string) *Promise {
	return &Promise{
		providerID: providerID,
		done:       make(chan struct{}),
	}
}

// ProviderID names the provider this slot belongs to.
func (p *Promise) ProviderID() string {
	return p.providerID
}

// Complete settles the promise with res. It returns true when this call
// won the slot, false when the promise had already settled.
func (p *Promise) Complete(res api.ProviderResult) bool {
	won := false
	p.once.Do(func() {
		p.result = res
		won = true
		close(p.done)
	})
	return won
}

// Done closes when the promise settles.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Poll returns the settled result without blocking. The second return is
// false while the promise is still open; this is the salvage primitive,
// so it must never wait.
func (p *Promise) Poll() (api.ProviderResult, bool) {
	select {
	case <-p.done:
		return p.result, true
	default:
		return api.ProviderResult{}, false
	}
}

// Wait blocks until the promise settles and returns the result.
func (p *Promise) Wait() api.ProviderResult {
	<-p.done
	return p.result
}

// join returns a channel that closes once every promise has settled.
func join(promises []*Promise) <-chan struct{} {
	all := make(chan struct{})
	go func() {
		for _, p := range promises {
			<-p.done
		}
		close(all)
	}()
	return all
}
