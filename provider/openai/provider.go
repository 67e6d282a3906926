package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/stitchmind/quorum/provider"
)

// Metadata keys the adapter understands on an incoming request.
const (
	// MetaInstructions sets the system message for this call.
	MetaInstructions = "instructions"

	// MetaTemperature overrides the sampling temperature (float64).
	MetaTemperature = "temperature"

	// MetaModel overrides the configured model for this call.
	MetaModel = "model"
)

// Opaque error codes this adapter attaches to categorized failures. They
// pass through normalization into ProviderResult.ErrorCode unchanged.
const (
	CodeStreamFailure   = "openai_stream_failure"
	CodeEmptyCompletion = "openai_empty_completion"
)

var _ provider.Provider = (*Provider)(nil)

// Provider answers requests with streaming chat completions against the
// OpenAI API. It is safe for concurrent use.
type Provider struct {
	id         string
	model      string
	synthesize bool
	client     *openai.Client
}

// New builds a provider with the given registry id and chat model.
// Request options configure the underlying client (API key, base URL,
// timeouts).
func New(id, model string, options ...option.RequestOption) *Provider {
	return &Provider{
		id:         id,
		model:      model,
		synthesize: true,
		client:     openai.NewClient(options...),
	}
}

// NoSynthesis marks the provider ineligible as a default synthesis
// target. Returns the receiver for chaining.
func (p *Provider) NoSynthesis() *Provider {
	p.synthesize = false
	return p
}

func (p *Provider) ID() string          { return p.id }
func (p *Provider) CanSynthesize() bool { return p.synthesize }

func (p *Provider) buildRequest(req provider.Request) openai.ChatCompletionNewParams {
	var msgs []openai.ChatCompletionMessageParamUnion
	if instr, ok := req.Metadata[MetaInstructions].(string); ok && strings.TrimSpace(instr) != "" {
		msgs = append(msgs, openai.SystemMessage(instr))
	}
	msgs = append(msgs, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Messages: openai.F(msgs),
		Model:    openai.F(p.model),
		N:        openai.Int(1),
		StreamOptions: openai.F(openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		}),
	}
	if temp, ok := req.Metadata[MetaTemperature].(float64); ok {
		params.Temperature = openai.Float(temp)
	}
	if model, ok := req.Metadata[MetaModel].(string); ok && model != "" {
		params.Model = openai.F(model)
	}
	return params
}

// Submit streams one chat completion, forwarding content deltas to
// onChunk as they arrive.
func (p *Provider) Submit(ctx context.Context, req provider.Request, onChunk provider.ChunkFunc) (provider.RawResult, error) {
	strm := p.client.Chat.Completions.NewStreaming(ctx, p.buildRequest(req))
	defer strm.Close()

	if err := strm.Err(); err != nil {
		return provider.RawResult{}, &provider.Error{Code: CodeStreamFailure, Err: err}
	}

	var acc openai.ChatCompletionAccumulator
	var buf strings.Builder
	for strm.Next() {
		if err := ctx.Err(); err != nil {
			return provider.RawResult{}, err
		}

		chunk := strm.Current()
		acc.AddChunk(chunk)

		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		buf.WriteString(delta)
		if onChunk != nil {
			onChunk(delta)
		}
	}
	if err := strm.Err(); err != nil {
		return provider.RawResult{}, &provider.Error{Code: CodeStreamFailure, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return provider.RawResult{}, err
	}

	compl := acc.ChatCompletion
	if len(compl.Choices) == 0 && buf.Len() == 0 {
		return provider.RawResult{}, &provider.Error{
			Code: CodeEmptyCompletion,
			Err:  errors.New("stream ended without a completion"),
		}
	}

	text := buf.String()
	meta := map[string]any{"model": compl.Model}
	if len(compl.Choices) > 0 {
		choice := compl.Choices[0]
		if choice.Message.Content != "" {
			text = choice.Message.Content
		}
		meta["finish_reason"] = string(choice.FinishReason)
	}

	return provider.RawResult{
		OK:         true,
		ResultID:   compl.ID,
		Text:       text,
		TokensUsed: int(compl.Usage.TotalTokens),
		Metadata:   meta,
	}, nil
}
