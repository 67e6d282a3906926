/*
Package openai adapts OpenAI chat models to the provider interface.

Responses always stream; content deltas are forwarded to the caller's
chunk callback as they arrive and accumulated into the final result, so
a timed-out call still leaves partial text behind.

	resp := openai.GPT4oMini(option.WithAPIKey(os.Getenv("OPENAI_API_KEY")))

Per-request metadata can set a system message ("instructions"), override
the sampling temperature ("temperature"), or swap the model for one call
("model").
*/
package openai
