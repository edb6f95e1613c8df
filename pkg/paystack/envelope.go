package paystack

import (
	"bytes"
	"encoding/json"
)

// Envelope is the outer object every Paystack response is wrapped in.
type Envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// HasData reports whether the envelope carries a usable data payload.
func (e Envelope) HasData() bool {
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Normalize returns the data payload when the envelope carries one, and
// the envelope itself otherwise. Paystack omits data on simple state
// toggles, so callers always receive an object holding at least
// status and message. Absence of data is expected, not an error.
func (e Envelope) Normalize() json.RawMessage {
	if e.HasData() {
		return e.Data
	}
	raw, _ := json.Marshal(e)
	return raw
}
