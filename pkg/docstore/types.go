package docstore

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOperation signals a write dispatched with an operation outside
	// the supported set. It indicates a programming error; no request is sent.
	ErrUnknownOperation = errors.New("docstore: unknown operation")
	// ErrInvalidJSON is returned when RawJSON content does not parse.
	ErrInvalidJSON = errors.New("docstore: invalid JSON content")
)

// RequestError reports a request the remote store did not accept.
type RequestError struct {
	// Op describes the attempted operation ("reading", "appending", ...).
	Op       string
	Location string
	// Content is the JSON body that was sent, empty for reads and deletes.
	Content string
	// StatusCode is zero when no response was received.
	StatusCode int
	// Text is the trimmed response body as returned by the store, or the
	// transport error text when no response was received.
	Text string
	// Message is the "error" member of the response body when present.
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Content == "" {
		if e.Op == "reading" {
			return fmt.Sprintf("docstore: error %s when trying to access %s", e.Text, e.Location)
		}
		return fmt.Sprintf("docstore: error %s when %s %s", e.Text, e.Op, e.Location)
	}
	return fmt.Sprintf("docstore: error %s when %s %s at %s", e.Text, e.Op, e.Content, e.Location)
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
