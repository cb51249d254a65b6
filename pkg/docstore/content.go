package docstore

import (
	"encoding/json"
	"fmt"

	"github.com/Ratio1/docstore_sdk_go/internal/httpx"
)

// Content is a value to be written to the store. It is either already-encoded
// JSON text (RawJSON) or a native value encoded on send (Value).
type Content interface {
	encode() ([]byte, error)
}

// RawJSON is JSON text forwarded to the store unchanged.
type RawJSON string

func (r RawJSON) encode() ([]byte, error) {
	if !json.Valid([]byte(r)) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidJSON, string(r))
	}
	return []byte(r), nil
}

type nativeValue struct {
	v any
}

// Value wraps a native Go value that is JSON-encoded before sending.
func Value(v any) Content {
	return nativeValue{v: v}
}

func (n nativeValue) encode() ([]byte, error) {
	return httpx.MarshalJSON(n.v)
}

// ParseContent interprets s as JSON text when it parses, and otherwise as a
// plain string value. A command-line argument such as '{"a":1}' is therefore
// sent as an object while hello is sent as "hello".
func ParseContent(s string) Content {
	if json.Valid([]byte(s)) {
		return RawJSON(s)
	}
	return Value(s)
}
