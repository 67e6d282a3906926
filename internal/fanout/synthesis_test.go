package fanout

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitchmind/quorum/api"
	"github.com/stitchmind/quorum/internal/deadline"
	"github.com/stitchmind/quorum/provider"
)

func phase1Results() []api.ProviderResult {
	return []api.ProviderResult{
		{ProviderID: "alpha", OK: true, Text: "alpha says X"},
		{ProviderID: "beta", OK: true, Text: "beta says Y"},
		{ProviderID: "synth", OK: true, Text: "synth's own take"},
	}
}

func TestSynthesize_MissingTargetMakesNoCall(t *testing.T) {
	hook := &testHook{}
	d := NewDispatcher(nil, hook, deadline.PolicyCooperative)

	res := d.Synthesize(context.Background(), SynthesisCall{
		TargetID: "ghost",
		Request:  testRequest(),
		Phase1:   phase1Results(),
		Budget:   time.Second,
	})

	assert.False(t, res.OK)
	assert.Equal(t, "ghost", res.ProviderID)
	assert.Equal(t, api.CodeSynthesisProviderMissing, res.ErrorCode)

	require.Len(t, hook.synthesisCompletions(), 1)
	assert.Empty(t, hook.completions(), "no provider call may be attempted")
}

func TestSynthesize_DefaultPromptExcludesOwnOutput(t *testing.T) {
	d := NewDispatcher(nil, nil, deadline.PolicyCooperative)
	target := &fakeProvider{id: "synth", canSynth: true, raw: provider.RawResult{OK: true, Text: "combined"}}

	res := d.Synthesize(context.Background(), SynthesisCall{
		Target:   target,
		TargetID: "synth",
		Request:  testRequest(),
		Phase1:   phase1Results(),
		Budget:   time.Second,
	})

	require.True(t, res.OK)
	assert.Equal(t, "combined", res.Text)

	prompt := target.request().Prompt
	assert.Contains(t, prompt, "Other Model Outputs")
	assert.Contains(t, prompt, "alpha says X")
	assert.Contains(t, prompt, "beta says Y")
	assert.NotContains(t, prompt, "synth's own take", "the target's phase-1 output must never feed its own synthesis")
	assert.Contains(t, prompt, `"`+testRequest().Prompt+`"`, "the original prompt is echoed verbatim in quotes")
	assert.True(t, strings.HasSuffix(prompt, "Begin Synthesis:"))
}

func TestSynthesize_OverrideResults(t *testing.T) {
	d := NewDispatcher(nil, nil, deadline.PolicyCooperative)
	target := &fakeProvider{id: "synth", raw: provider.RawResult{OK: true, Text: "combined"}}

	override := []api.ProviderResult{{ProviderID: "historic", OK: true, Text: "from a previous batch"}}
	d.Synthesize(context.Background(), SynthesisCall{
		Target:   target,
		TargetID: "synth",
		Request:  testRequest(),
		Phase1:   phase1Results(),
		Override: override,
		Budget:   time.Second,
	})

	prompt := target.request().Prompt
	assert.Contains(t, prompt, "from a previous batch")
	assert.NotContains(t, prompt, "alpha says X", "override replaces the phase-1 inputs entirely")
}

func TestSynthesize_CustomBuilder(t *testing.T) {
	d := NewDispatcher(nil, nil, deadline.PolicyCooperative)
	target := &fakeProvider{id: "synth", raw: provider.RawResult{OK: true}}

	d.Synthesize(context.Background(), SynthesisCall{
		Target:   target,
		TargetID: "synth",
		Request:  testRequest(),
		Phase1:   phase1Results(),
		Builder: func(prompt string, others []api.ProviderResult) string {
			return "custom: " + prompt
		},
		Budget: time.Second,
	})

	assert.Equal(t, "custom: "+testRequest().Prompt, target.request().Prompt)
}

func TestSynthesize_GenericFailureCode(t *testing.T) {
	d := NewDispatcher(nil, nil, deadline.PolicyCooperative)
	target := &fakeProvider{id: "synth", err: errors.New("wire broke")}

	res := d.Synthesize(context.Background(), SynthesisCall{
		Target:   target,
		TargetID: "synth",
		Request:  testRequest(),
		Budget:   time.Second,
	})

	assert.False(t, res.OK)
	assert.Equal(t, api.CodeSynthesisFailed, res.ErrorCode)
	assert.Contains(t, res.Metadata[api.MetaRawError], "wire broke")
}

func TestSynthesize_ProviderCodeBeatsGenericFallback(t *testing.T) {
	d := NewDispatcher(nil, nil, deadline.PolicyCooperative)
	target := &fakeProvider{id: "synth", err: &provider.Error{Code: "overloaded"}}

	res := d.Synthesize(context.Background(), SynthesisCall{
		Target:   target,
		TargetID: "synth",
		Request:  testRequest(),
		Budget:   time.Second,
	})

	assert.Equal(t, "overloaded", res.ErrorCode)
}

func TestSynthesize_TimeoutKeepsTimeoutCode(t *testing.T) {
	hook := &testHook{}
	d := NewDispatcher(nil, hook, deadline.PolicyCooperative)

	gate := make(chan struct{})
	defer close(gate)
	target := &fakeProvider{id: "synth", gate: gate}

	res := d.Synthesize(context.Background(), SynthesisCall{
		Target:   target,
		TargetID: "synth",
		Request:  testRequest(),
		Budget:   30 * time.Millisecond,
	})

	assert.Equal(t, api.CodeTimeout, res.ErrorCode)
	require.Len(t, hook.synthesisCompletions(), 1)
	assert.Equal(t, api.CodeTimeout, hook.synthesisCompletions()[0].Result.ErrorCode)
}

func TestSynthesisBudget(t *testing.T) {
	assert.Equal(t, 3*time.Second, SynthesisBudget(2*time.Second))
	assert.Equal(t, time.Duration(0), SynthesisBudget(0), "no limit stays no limit")
	assert.Equal(t, -time.Second, SynthesisBudget(-time.Second))
}

func TestDefaultSynthesisPrompt_SkipsEmptyTexts(t *testing.T) {
	prompt := DefaultSynthesisPrompt("q", []api.ProviderResult{
		{ProviderID: "a", OK: true, Text: "body"},
		{ProviderID: "b", ErrorCode: api.CodeTimeout},
	})

	assert.Contains(t, prompt, "[a]:")
	assert.NotContains(t, prompt, "[b]:")
}
