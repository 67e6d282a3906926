package fanout

import (
	"errors"
	"time"

	"github.com/stitchmind/quorum/api"
	"github.com/stitchmind/quorum/provider"
)

// Normalize folds every provider outcome into the uniform result record:
// a raw result, an error return, or both absent data entirely. Timeout
// records are built by the deadline watcher, not here.
func Normalize(providerID string, raw provider.RawResult, err error, accumulated string, elapsed time.Duration) api.ProviderResult {
	res := api.ProviderResult{
		ProviderID: providerID,
		LatencyMS:  elapsed.Milliseconds(),
		Metadata:   raw.Metadata,
	}

	if err != nil {
		res.ErrorCode = errorCode(err)
		res.Text = accumulated
		res.IsPartial = accumulated != ""
		if res.Metadata == nil {
			res.Metadata = make(map[string]any, 1)
		}
		res.Metadata[api.MetaRawError] = err.Error()
		return res
	}

	if !raw.OK {
		res.ErrorCode = raw.ErrorCode
		if res.ErrorCode == "" {
			res.ErrorCode = api.CodeUnknown
		}
		res.ResultID = raw.ResultID
		res.Text = firstNonEmpty(raw.Text, accumulated)
		res.IsPartial = raw.Text == "" && accumulated != ""
		res.TokensUsed = raw.TokensUsed
		return res
	}

	res.OK = true
	res.ResultID = raw.ResultID
	res.TokensUsed = raw.TokensUsed
	res.Text = raw.Text
	if res.Text == "" && accumulated != "" {
		// the backend streamed everything and sent an empty final body
		res.Text = accumulated
		res.IsPartial = true
	}
	return res
}

// errorCode maps an error return to the taxonomy: the provider's own code
// when it attached one, else "unknown".
func errorCode(err error) string {
	var perr *provider.Error
	if errors.As(err, &perr) && perr.Code != "" {
		return perr.Code
	}
	return api.CodeUnknown
}

// timeoutResult is the record the deadline watcher installs when a
// provider's own budget fires before it settles.
func timeoutResult(providerID, subRequestID string, accumulated string, elapsed time.Duration) api.ProviderResult {
	return api.ProviderResult{
		ProviderID: providerID,
		ErrorCode:  api.CodeTimeout,
		Text:       accumulated,
		IsPartial:  accumulated != "",
		LatencyMS:  elapsed.Milliseconds(),
		Metadata:   map[string]any{"sub_request_id": subRequestID},
	}
}

// globalTimeoutResult is the synthetic record assigned during salvage to a
// provider that never settled before the whole-batch deadline.
func globalTimeoutResult(providerID string) api.ProviderResult {
	return api.ProviderResult{
		ProviderID: providerID,
		ErrorCode:  api.CodeGlobalTimeout,
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
