package events

import (
	"fmt"

	"github.com/go-openapi/strfmt"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/stitchmind/quorum/api"
)

var (
	partialJSON            = []byte(`{"type":"partial_chunk"}`)
	providerCompleteJSON   = []byte(`{"type":"provider_complete"}`)
	synthesisStartedJSON   = []byte(`{"type":"synthesis_started"}`)
	synthesisCompletedJSON = []byte(`{"type":"synthesis_completed"}`)
)

// Event is the sealed union of side-channel notifications.
type Event interface {
	event()
}

// PartialChunk carries one increment of streamed text from one provider.
// Chunks preserve per-provider emission order; across providers there is
// no ordering guarantee.
type PartialChunk struct {
	BatchID      string          `json:"batch_id"`
	ProviderID   string          `json:"provider_id"`
	SubRequestID string          `json:"sub_request_id"`
	Text         string          `json:"text"`
	Timestamp    strfmt.DateTime `json:"timestamp,omitempty"`
}

func (PartialChunk) event() {}

// ProviderComplete carries a normalized provider result. Late is set when
// the batch had already moved on (the provider's slot settled as a
// timeout) and this is the background call finally reporting.
type ProviderComplete struct {
	BatchID   string             `json:"batch_id"`
	Result    api.ProviderResult `json:"result"`
	Late      bool               `json:"late,omitempty"`
	Timestamp strfmt.DateTime    `json:"timestamp,omitempty"`
}

func (ProviderComplete) event() {}

// SynthesisStarted announces the second phase for a batch.
type SynthesisStarted struct {
	BatchID    string          `json:"batch_id"`
	ProviderID string          `json:"provider_id"`
	Prompt     string          `json:"prompt"`
	Timestamp  strfmt.DateTime `json:"timestamp,omitempty"`
}

func (SynthesisStarted) event() {}

// SynthesisCompleted carries the settled synthesis result.
type SynthesisCompleted struct {
	BatchID   string             `json:"batch_id"`
	Result    api.ProviderResult `json:"result"`
	Timestamp strfmt.DateTime    `json:"timestamp,omitempty"`
}

func (SynthesisCompleted) event() {}

// MarshalJSON implements type-tagged JSON marshaling for PartialChunk.
func (p PartialChunk) MarshalJSON() ([]byte, error) {
	result := partialJSON

	var err error
	result, err = sjson.SetBytes(result, "batch_id", p.BatchID)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "provider_id", p.ProviderID)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "sub_request_id", p.SubRequestID)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "text", p.Text)
	if err != nil {
		return nil, err
	}
	return setTimestamp(result, p.Timestamp)
}

// UnmarshalJSON implements type-tagged JSON unmarshaling for PartialChunk.
func (p *PartialChunk) UnmarshalJSON(data []byte) error {
	if err := checkType(data, "partial_chunk"); err != nil {
		return err
	}
	p.BatchID = gjson.GetBytes(data, "batch_id").String()
	p.ProviderID = gjson.GetBytes(data, "provider_id").String()
	p.SubRequestID = gjson.GetBytes(data, "sub_request_id").String()
	p.Text = gjson.GetBytes(data, "text").String()
	return getTimestamp(data, &p.Timestamp)
}

// MarshalJSON implements type-tagged JSON marshaling for ProviderComplete.
func (p ProviderComplete) MarshalJSON() ([]byte, error) {
	result := providerCompleteJSON

	var err error
	result, err = sjson.SetBytes(result, "batch_id", p.BatchID)
	if err != nil {
		return nil, err
	}
	result, err = setResult(result, p.Result)
	if err != nil {
		return nil, err
	}
	if p.Late {
		result, err = sjson.SetBytes(result, "late", true)
		if err != nil {
			return nil, err
		}
	}
	return setTimestamp(result, p.Timestamp)
}

// UnmarshalJSON implements type-tagged JSON unmarshaling for ProviderComplete.
func (p *ProviderComplete) UnmarshalJSON(data []byte) error {
	if err := checkType(data, "provider_complete"); err != nil {
		return err
	}
	p.BatchID = gjson.GetBytes(data, "batch_id").String()
	p.Late = gjson.GetBytes(data, "late").Bool()
	if err := getResult(data, &p.Result); err != nil {
		return err
	}
	return getTimestamp(data, &p.Timestamp)
}

// MarshalJSON implements type-tagged JSON marshaling for SynthesisStarted.
func (s SynthesisStarted) MarshalJSON() ([]byte, error) {
	result := synthesisStartedJSON

	var err error
	result, err = sjson.SetBytes(result, "batch_id", s.BatchID)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "provider_id", s.ProviderID)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "prompt", s.Prompt)
	if err != nil {
		return nil, err
	}
	return setTimestamp(result, s.Timestamp)
}

// UnmarshalJSON implements type-tagged JSON unmarshaling for SynthesisStarted.
func (s *SynthesisStarted) UnmarshalJSON(data []byte) error {
	if err := checkType(data, "synthesis_started"); err != nil {
		return err
	}
	s.BatchID = gjson.GetBytes(data, "batch_id").String()
	s.ProviderID = gjson.GetBytes(data, "provider_id").String()
	s.Prompt = gjson.GetBytes(data, "prompt").String()
	return getTimestamp(data, &s.Timestamp)
}

// MarshalJSON implements type-tagged JSON marshaling for SynthesisCompleted.
func (s SynthesisCompleted) MarshalJSON() ([]byte, error) {
	result := synthesisCompletedJSON

	var err error
	result, err = sjson.SetBytes(result, "batch_id", s.BatchID)
	if err != nil {
		return nil, err
	}
	result, err = setResult(result, s.Result)
	if err != nil {
		return nil, err
	}
	return setTimestamp(result, s.Timestamp)
}

// UnmarshalJSON implements type-tagged JSON unmarshaling for SynthesisCompleted.
func (s *SynthesisCompleted) UnmarshalJSON(data []byte) error {
	if err := checkType(data, "synthesis_completed"); err != nil {
		return err
	}
	s.BatchID = gjson.GetBytes(data, "batch_id").String()
	if err := getResult(data, &s.Result); err != nil {
		return err
	}
	return getTimestamp(data, &s.Timestamp)
}

func checkType(data []byte, want string) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}
	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != want {
		return fmt.Errorf("missing or invalid type, expected %q", want)
	}
	if !gjson.GetBytes(data, "batch_id").Exists() {
		return fmt.Errorf("missing required field 'batch_id'")
	}
	return nil
}

func setResult(data []byte, res api.ProviderResult) ([]byte, error) {
	rb, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(data, "result", rb)
}

func getResult(data []byte, res *api.ProviderResult) error {
	raw := gjson.GetBytes(data, "result")
	if !raw.Exists() {
		return fmt.Errorf("missing required field 'result'")
	}
	return json.Unmarshal([]byte(raw.Raw), res)
}

func setTimestamp(data []byte, ts strfmt.DateTime) ([]byte, error) {
	if ts.Equal(strfmt.DateTime{}) {
		return data, nil
	}
	return sjson.SetBytes(data, "timestamp", ts.String())
}

func getTimestamp(data []byte, ts *strfmt.DateTime) error {
	raw := gjson.GetBytes(data, "timestamp")
	if !raw.Exists() {
		return nil
	}
	return ts.UnmarshalText([]byte(raw.String()))
}

// ToJSON marshals any event of the union with its type tag.
func ToJSON(event Event) ([]byte, error) {
	switch e := event.(type) {
	case PartialChunk:
		return e.MarshalJSON()
	case ProviderComplete:
		return e.MarshalJSON()
	case SynthesisStarted:
		return e.MarshalJSON()
	case SynthesisCompleted:
		return e.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown event type: %T", event)
	}
}

// FromJSON decodes a type-tagged payload back into the event union.
func FromJSON(data []byte) (Event, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json: %s", data)
	}

	switch tag := gjson.GetBytes(data, "type").String(); tag {
	case "partial_chunk":
		var e PartialChunk
		if err := e.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return e, nil
	case "provider_complete":
		var e ProviderComplete
		if err := e.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return e, nil
	case "synthesis_started":
		var e SynthesisStarted
		if err := e.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return e, nil
	case "synthesis_completed":
		var e SynthesisCompleted
		if err := e.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown event type tag: %q", tag)
	}
}
