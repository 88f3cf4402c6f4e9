package shared

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// MarshalJSON encodes v, indenting with two spaces when pretty is set.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// DecodeJSON reads a single JSON value from r into v, rejecting unknown fields.
func DecodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON: %v", ErrInvalidInput, err)
	}
	return nil
}

// UnmarshalJSON is a thin wrapper around the package JSON decoder.
func UnmarshalJSON(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
