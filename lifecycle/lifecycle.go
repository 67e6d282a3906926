package lifecycle

import (
	"context"

	"github.com/stitchmind/quorum/internal/registry"
)

// Handle is the cancellation record for one sub-request. Its context is
// the cancel signal the provider call observes.
type Handle interface {
	ID() string
	Context() context.Context
}

// Controller owns cancellation bookkeeping for in-flight sub-requests.
// The engine acquires one handle per provider per batch and releases it
// through exactly one of Cleanup or ForceCancel.
//
// Cleanup releases the bookkeeping without cancelling the underlying
// work: the sub-request's context stays live, so a slow provider keeps
// running and can still surface a late answer through the orchestrator's
// side-channel hooks. ForceCancel cancels the context. Both are
// idempotent and safe for unknown ids.
type Controller interface {
	Acquire(ctx context.Context, subRequestID string) Handle
	Cleanup(subRequestID string)
	ForceCancel(subRequestID string)
}

type token struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
}

func (t *token) ID() string               { return t.id }
func (t *token) Context() context.Context { return t.ctx }

type localController struct {
	tokens registry.Registry[*token]
}

// NewLocal returns the fallback controller used when the caller supplies
// none. It hands out plain derived contexts; because nothing outside the
// engine can re-address these tokens, the orchestrator pairs it with the
// direct-cancel timeout policy by default.
func NewLocal() Controller {
	return &localController{tokens: registry.New[*token]()}
}

func (c *localController) Acquire(ctx context.Context, subRequestID string) Handle {
	cctx, cancel := context.WithCancel(ctx)
	tok := &token{id: subRequestID, ctx: cctx, cancel: cancel}
	c.tokens.Add(subRequestID, tok)
	return tok
}

func (c *localController) Cleanup(subRequestID string) {
	// Drop the entry only. The token's context is left live on purpose:
	// a call that outlived its deadline may still finish and report.
	c.tokens.Del(subRequestID)
}

func (c *localController) ForceCancel(subRequestID string) {
	tok, ok := c.tokens.Get(subRequestID)
	if !ok {
		return
	}
	tok.cancel()
	c.tokens.Del(subRequestID)
}
