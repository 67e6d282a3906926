// Package quorum sends one prompt to many responder backends at once,
// collects their answers under per-provider and whole-batch deadlines,
// and optionally runs a second pass that asks one designated provider to
// combine the first round's answers into a single composite response.
//
// The Orchestrator is the public entry point. Providers register on it,
// and DispatchBatch fans one prompt out to a snapshot of them:
//
//	orc := quorum.New(
//	    quorum.WithProviders(openaiProvider, claudeProvider),
//	    quorum.WithProviderTimeout(45*time.Second),
//	)
//	result, err := orc.DispatchBatch(ctx, "explain raft in two paragraphs",
//	    quorum.OnPartial(func(providerID, chunk string) { render(providerID, chunk) }),
//	    quorum.WithSynthesis(api.SynthesisConfig{ProviderID: "openai"}),
//	)
//
// Timeouts are two-tier. Every provider call races its own budget; the
// whole batch races a second, independent budget. When the batch budget
// fires, already-settled answers are salvaged rather than discarded, and
// the stragglers come back marked global_timeout. A provider that blows
// only its own budget comes back marked timeout — and, under the default
// cooperative-cleanup policy, the underlying call is not cancelled: it
// keeps running in the background and its eventual answer is delivered
// through the event hooks (and optionally a pubsub broker) for any
// listener that still cares. Deployments that prefer reclaiming the
// resources can opt into hard cancellation with WithTimeoutPolicy.
//
// Failures never surface as errors from DispatchBatch; every provider
// outcome is folded into one uniform result record and the batch always
// comes back with exactly one record per selected provider. Only
// malformed caller input errors before dispatch begins.
package quorum
