// Package restapi interprets the bodies returned by the document store's REST
// surface.
package restapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ErrorText returns the human-readable message carried by an error response.
// The store reports failures as {"error": "..."}; anything else is returned as
// the trimmed raw body.
func ErrorText(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil || envelope.Error == nil {
		return string(trimmed)
	}

	var asString string
	if err := json.Unmarshal(envelope.Error, &asString); err == nil {
		return asString
	}
	// Non-string error payloads are kept in their JSON form.
	return string(envelope.Error)
}

// DecodeValue decodes a response body into out. An empty body is treated as a
// JSON null, which is what the store returns for an empty location.
func DecodeValue(body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		trimmed = []byte("null")
	}
	return json.Unmarshal(trimmed, out)
}

// PushName extracts the generated child key from an append response
// ({"name": "<key>"}).
func PushName(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", nil
	}
	var payload struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return "", fmt.Errorf("restapi: decode push response: %w", err)
	}
	return payload.Name, nil
}
