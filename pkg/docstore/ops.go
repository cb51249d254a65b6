package docstore

import "net/http"

// writeOp enumerates the body-carrying write requests.
type writeOp int

const (
	opAppend writeOp = iota + 1
	opUpdate
	opSet
)

// resolve returns the HTTP method and the description used in error messages.
// ok is false for values outside the enumeration.
func (op writeOp) resolve() (method, description string, ok bool) {
	switch op {
	case opAppend:
		return http.MethodPost, "appending", true
	case opUpdate:
		return http.MethodPatch, "updating", true
	case opSet:
		return http.MethodPut, "setting", true
	default:
		return "", "", false
	}
}

func (op writeOp) String() string {
	switch op {
	case opAppend:
		return "append"
	case opUpdate:
		return "update"
	case opSet:
		return "set"
	default:
		return "unknown"
	}
}
