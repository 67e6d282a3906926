package fanout

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/stitchmind/quorum/api"
	"github.com/stitchmind/quorum/internal/deadline"
	"github.com/stitchmind/quorum/pkg/slogx"
)

// Collect joins the per-provider promises under the whole-batch budget
// and returns the results in selection order. When the budget fires
// first, it switches to salvage: every promise that already settled keeps
// its result, every still-open promise gets a synthetic global_timeout
// record, and the second return reports the batch-level timeout. Each
// promise is independently time-bounded by its own watcher, so salvage
// never waits.
func Collect(ctx context.Context, promises []*Promise, budget time.Duration) ([]api.ProviderResult, bool) {
	results := make([]api.ProviderResult, 0, len(promises))
	if len(promises) == 0 {
		return results, false
	}

	err := deadline.Await(ctx, budget, join(promises))
	if err == nil {
		for _, p := range promises {
			// every promise has settled; Wait returns immediately
			results = append(results, p.Wait())
		}
		return results, false
	}

	salvaged := 0
	for _, p := range promises {
		res, settled := p.Poll()
		if !settled {
			res = globalTimeoutResult(p.ProviderID())
		} else {
			salvaged++
		}
		results = append(results, res)
	}

	slog.DebugContext(ctx, "batch deadline fired, salvaged settled results",
		slogx.LoggerName("fanout"),
		slog.Int("salvaged", salvaged),
		slog.Int("selected", len(promises)),
		slogx.Millis("budget_ms", budget),
	)

	// a cancelled caller context also abandons the join; report it the
	// same way so the batch still comes back well formed
	if !errors.Is(err, deadline.ErrExpired) {
		slog.DebugContext(ctx, "batch join abandoned by caller context",
			slogx.LoggerName("fanout"), slogx.Error(err))
	}
	return results, true
}
