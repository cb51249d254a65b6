package mock

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrPermissionDenied is returned when a request does not carry the
	// configured auth token.
	ErrPermissionDenied = errors.New("mock docstore: permission denied")
	// ErrInvalidData is returned when a payload is not valid JSON, or when a
	// merge payload is not an object.
	ErrInvalidData = errors.New("mock docstore: invalid data")
)

// Store is an in-memory hierarchical JSON document tree that mirrors the
// read/overwrite/append/merge semantics of the remote store.
type Store struct {
	mu     sync.RWMutex
	root   any
	token  string
	newKey func() string
}

// Option configures the mock instance.
type Option func(*Store)

// WithToken requires every request to present the given auth token.
func WithToken(token string) Option {
	return func(s *Store) {
		s.token = token
	}
}

// WithKeyGenerator overrides the generator used for appended child keys
// (useful in tests).
func WithKeyGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newKey = fn
		}
	}
}

// New creates an empty mock store.
func New(opts ...Option) *Store {
	s := &Store{newKey: timeOrderedKey}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timeOrderedKey returns UUIDv7 strings, which sort in creation order like
// the remote service's push keys.
func timeOrderedKey() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Authorize checks token against the configured auth token.
func (s *Store) Authorize(token string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token != "" && token != s.token {
		return ErrPermissionDenied
	}
	return nil
}

// Seed replaces the whole tree with the supplied JSON document.
func (s *Store) Seed(doc []byte) error {
	value, err := decode(doc)
	if err != nil {
		return fmt.Errorf("mock docstore: seed: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = normalize(value)
	return nil
}

// Get returns the JSON encoding of the node at location, or null when the
// location is empty.
func (s *Store) Get(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(lookup(s.root, segments(location)))
}

// Set overwrites the node at location. A null payload deletes it.
func (s *Store) Set(ctx context.Context, location string, raw []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := decode(raw)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = assign(s.root, segments(location), normalize(value))
	return nil
}

// Push stores raw under a newly generated child key of location and returns
// that key.
func (s *Store) Push(ctx context.Context, location string, raw []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	value, err := decode(raw)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.newKey()
	segs := append(segments(location), key)
	s.root = assign(s.root, segs, normalize(value))
	return key, nil
}

// Update merges the children of the raw object into the node at location.
// Children not named in raw are left untouched; null children are removed.
func (s *Store) Update(ctx context.Context, location string, raw []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := decode(raw)
	if err != nil {
		return err
	}
	fields, ok := value.(map[string]any)
	if !ok {
		return ErrInvalidData
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	base := segments(location)
	for key, child := range fields {
		// Keys may themselves be multi-segment paths relative to location.
		segs := append(append([]string(nil), base...), segments(key)...)
		s.root = assign(s.root, segs, normalize(child))
	}
	return nil
}

// Delete removes the node at location.
func (s *Store) Delete(ctx context.Context, location string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = assign(s.root, segments(location), nil)
	return nil
}

func decode(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimSpace(raw)))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, ErrInvalidData
	}
	if dec.More() {
		return nil, ErrInvalidData
	}
	return value, nil
}

func segments(location string) []string {
	parts := strings.Split(location, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func lookup(node any, segs []string) any {
	for _, seg := range segs {
		switch n := node.(type) {
		case map[string]any:
			node = n[seg]
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(n) {
				return nil
			}
			node = n[idx]
		default:
			return nil
		}
	}
	return node
}

// assign writes value at segs below node and returns the replacement node.
// Empty objects collapse to nil so deleted branches disappear.
func assign(node any, segs []string, value any) any {
	if value == nil && lookup(node, segs) == nil {
		return node
	}
	if len(segs) == 0 {
		return value
	}
	m := asObject(node)
	child := assign(m[segs[0]], segs[1:], value)
	if child == nil {
		delete(m, segs[0])
	} else {
		m[segs[0]] = child
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func asObject(node any) map[string]any {
	switch n := node.(type) {
	case map[string]any:
		return n
	case []any:
		m := make(map[string]any, len(n))
		for i, v := range n {
			if v != nil {
				m[strconv.Itoa(i)] = v
			}
		}
		return m
	default:
		return make(map[string]any)
	}
}

// normalize drops null members and empty containers, matching how the store
// never persists empty nodes.
func normalize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for k, child := range v {
			if c := normalize(child); c == nil {
				delete(v, k)
			} else {
				v[k] = c
			}
		}
		if len(v) == 0 {
			return nil
		}
		return v
	case []any:
		if len(v) == 0 {
			return nil
		}
		empty := true
		for i, child := range v {
			v[i] = normalize(child)
			if v[i] != nil {
				empty = false
			}
		}
		if empty {
			return nil
		}
		return v
	default:
		return v
	}
}
