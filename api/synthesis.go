package api

// PromptBuilder produces the synthesis prompt from the original user
// prompt and the phase-1 results chosen as synthesis input. The engine
// supplies a default template when nil.
type PromptBuilder func(prompt string, others []ProviderResult) string

// SynthesisConfig asks for the optional second phase that combines
// phase-1 answers into one composite answer produced by a designated
// provider.
type SynthesisConfig struct {
	// Only skips phase 1 entirely: no providers are fanned out and the
	// batch carries an empty Results list alongside the synthesis record.
	Only bool

	// ProviderID names the synthesis target. When empty, the
	// orchestrator's picker chooses one from the phase-1 results.
	ProviderID string

	// Results overrides the phase-1 results as synthesis input, which
	// lets callers synthesize across historical batches. When nil, the
	// current batch's results are used, minus the target's own entry.
	Results []ProviderResult

	// PromptBuilder overrides the default synthesis prompt template.
	PromptBuilder PromptBuilder

	// Metadata is merged into the synthesis provider call's metadata.
	Metadata map[string]any
}
