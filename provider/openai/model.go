package openai

import (
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Preset constructors for common chat models. The registry id defaults
// to the model name; use New directly when several providers share a
// model.

func GPT4oMini(opts ...option.RequestOption) *Provider {
	return New(openai.ChatModelGPT4oMini, openai.ChatModelGPT4oMini, opts...)
}

func GPT4o(opts ...option.RequestOption) *Provider {
	return New(openai.ChatModelChatgpt4oLatest, openai.ChatModelChatgpt4oLatest, opts...)
}

func O1Mini(opts ...option.RequestOption) *Provider {
	return New(openai.ChatModelO1Mini, openai.ChatModelO1Mini, opts...)
}

func O1(opts ...option.RequestOption) *Provider {
	return New(openai.ChatModelO1, openai.ChatModelO1, opts...)
}
