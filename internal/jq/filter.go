// Package jq applies jq expressions to documents read from the store.
package jq

import (
	"context"
	"fmt"

	"github.com/itchyny/gojq"
)

// Filter compiles a jq expression once so it can be applied to many inputs.
type Filter struct {
	code *gojq.Code
}

// Compile parses and compiles expression.
func Compile(expression string) (*Filter, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("jq: parse %q: %w", expression, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("jq: compile %q: %w", expression, err)
	}
	return &Filter{code: code}, nil
}

// Apply runs the filter against data and returns every emitted value.
func (f *Filter) Apply(ctx context.Context, data any) ([]any, error) {
	iter := f.code.RunWithContext(ctx, data)
	var results []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			if haltErr, ok := err.(*gojq.HaltError); ok && haltErr.Value() == nil {
				break
			}
			return nil, fmt.Errorf("jq: %w", err)
		}
		results = append(results, v)
	}
	return results, nil
}
