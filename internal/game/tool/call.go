package tool

import (
	"encoding/json"
	"fmt"
)

// Call is one tool invocation issued by a generator.
type Call struct {
	ID   string         `json:"id"`
	Name Name           `json:"name"`
	Args map[string]any `json:"args"`
}

// Normalize returns the arguments re-encoded through JSON so that numbers are
// float64 and nested values are plain maps and slices.
func (c Call) Normalize() (map[string]any, error) {
	if c.Args == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(c.Args)
	if err != nil {
		return nil, fmt.Errorf("encoding %s arguments: %w", c.Name, err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding %s arguments: %w", c.Name, err)
	}
	return out, nil
}

// Decode unmarshals the arguments into v.
func (c Call) Decode(v any) error {
	raw, err := json.Marshal(c.Args)
	if err != nil {
		return fmt.Errorf("encoding %s arguments: %w", c.Name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding %s arguments: %w", c.Name, err)
	}
	return nil
}

// Result is the acknowledgment of one Call.
type Result struct {
	CallID  string `json:"callId"`
	Name    Name   `json:"name"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	// Ignored marks calls to unknown tools, acknowledged without effect.
	Ignored bool `json:"ignored,omitempty"`
	Data    any  `json:"data,omitempty"`
}

// OK returns a successful result for c carrying data.
func OK(c Call, data any) Result {
	return Result{CallID: c.ID, Name: c.Name, Success: true, Data: data}
}

// Fail returns a failed result for c.
func Fail(c Call, err error) Result {
	return Result{CallID: c.ID, Name: c.Name, Success: false, Error: err.Error()}
}

// Payload is the response object sent back to the generator:
// {success, result} or {success, error}.
func (r Result) Payload() map[string]any {
	if !r.Success {
		return map[string]any{"success": false, "error": r.Error}
	}
	p := map[string]any{"success": true}
	if r.Data != nil {
		p["result"] = r.Data
	}
	return p
}
