// Package timeutil holds the timestamp formats shared by API payloads and logs.
package timeutil

import (
	"encoding/json"
	"time"

	"github.com/fxamacker/cbor/v2"
)

const (
	// RFC3339Millis is the API timestamp layout, always UTC with three
	// fractional digits.
	RFC3339Millis = "2006-01-02T15:04:05.000Z"

	// RFC3339Micros is the log timestamp layout.
	RFC3339Micros = "2006-01-02T15:04:05.000000Z"
)

// rfc3339Tag is the CBOR tag for a standard date/time string.
const rfc3339Tag = 0

// Time is a time.Time that serializes as an RFC3339Millis string in both
// JSON and CBOR responses. Decoding accepts any RFC 3339 precision.
type Time struct {
	time.Time
}

// NewTime wraps t.
func NewTime(t time.Time) Time {
	return Time{Time: t}
}

// String formats t with RFC3339Millis.
func (t Time) String() string {
	return t.UTC().Format(RFC3339Millis)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON leaves t untouched for a JSON null.
func (t *Time) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Time) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{Number: rfc3339Tag, Content: t.String()})
}

// UnmarshalCBOR accepts tagged or untagged date/time strings and epoch values.
func (t *Time) UnmarshalCBOR(data []byte) error {
	var parsed time.Time
	if err := cbor.Unmarshal(data, &parsed); err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
