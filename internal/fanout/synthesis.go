package fanout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/stitchmind/quorum/api"
	"github.com/stitchmind/quorum/events"
	"github.com/stitchmind/quorum/provider"
)

// synthesisBudgetScale stretches the per-provider budget for the
// synthesis call: combining several answers takes more reasoning and more
// output tokens than producing one.
const synthesisBudgetScale = 1.5

// SynthesisBudget returns the synthesis-phase budget derived from the
// standard per-provider budget. A no-limit budget stays no-limit.
func SynthesisBudget(providerBudget time.Duration) time.Duration {
	if providerBudget <= 0 {
		return providerBudget
	}
	return time.Duration(float64(providerBudget) * synthesisBudgetScale)
}

// SynthesisCall carries everything the second phase needs. Target is nil
// when the configured provider id did not resolve; TargetID still names
// it for the failure record.
type SynthesisCall struct {
	Target   provider.Provider
	TargetID string
	Request  api.BatchRequest
	Phase1   []api.ProviderResult
	Override []api.ProviderResult
	Builder  api.PromptBuilder
	Metadata map[string]any
	Budget   time.Duration
}

// Synthesize runs the dependent second phase: build the composite prompt
// from the phase-1 results and send it to the designated provider exactly
// like a phase-1 call, under the extended budget. A missing target fails
// immediately with synthesis_provider_missing and no submit attempt.
func (d *Dispatcher) Synthesize(ctx context.Context, call SynthesisCall) api.ProviderResult {
	if call.Target == nil {
		res := api.ProviderResult{
			ProviderID: call.TargetID,
			ErrorCode:  api.CodeSynthesisProviderMissing,
		}
		d.hook.OnSynthesisCompleted(ctx, events.SynthesisCompleted{
			BatchID:   call.Request.RequestID,
			Result:    res,
			Timestamp: strfmt.DateTime(time.Now()),
		})
		return res
	}

	others := call.Override
	if others == nil {
		others = excludeProvider(call.Phase1, call.Target.ID())
	}

	build := call.Builder
	if build == nil {
		build = DefaultSynthesisPrompt
	}
	prompt := build(call.Request.Prompt, others)

	d.hook.OnSynthesisStarted(ctx, events.SynthesisStarted{
		BatchID:    call.Request.RequestID,
		ProviderID: call.Target.ID(),
		Prompt:     prompt,
		Timestamp:  strfmt.DateTime(time.Now()),
	})

	subBatch := api.BatchRequest{
		RequestID: call.Request.RequestID + "-synthesis",
		Prompt:    prompt,
		Metadata:  call.Metadata,
	}
	res := d.dispatchOne(ctx, subBatch, call.Target, call.Budget, nil, nil).Wait()
	if !res.OK && res.ErrorCode == api.CodeUnknown {
		res.ErrorCode = api.CodeSynthesisFailed
	}

	d.hook.OnSynthesisCompleted(ctx, events.SynthesisCompleted{
		BatchID:   call.Request.RequestID,
		Result:    res,
		Timestamp: strfmt.DateTime(time.Now()),
	})
	return res
}

// excludeProvider filters out the synthesis target's own phase-1 entry so
// it never synthesizes over its own answer.
func excludeProvider(results []api.ProviderResult, providerID string) []api.ProviderResult {
	out := make([]api.ProviderResult, 0, len(results))
	for _, r := range results {
		if r.ProviderID != providerID {
			out = append(out, r)
		}
	}
	return out
}

// DefaultSynthesisPrompt is the built-in composite prompt template. It
// lists every other provider's raw text under a delimited block, echoes
// the original user prompt verbatim in quotes, and ends with the
// "Begin Synthesis:" marker.
func DefaultSynthesisPrompt(prompt string, others []api.ProviderResult) string {
	var b strings.Builder
	b.WriteString("Your task is to combine the following model outputs into a single, best-of-breed answer. ")
	b.WriteString("Keep the strongest points of each, resolve contradictions, and write one coherent response.\n\n")
	b.WriteString("--- Other Model Outputs ---\n")
	for _, r := range others {
		if r.Text == "" {
			continue
		}
		fmt.Fprintf(&b, "[%s]:\n%s\n\n", r.ProviderID, r.Text)
	}
	b.WriteString("--- End Other Model Outputs ---\n\n")
	b.WriteString("The original user prompt was: \"")
	b.WriteString(prompt)
	b.WriteString("\"\n\nBegin Synthesis:")
	return b.String()
}
