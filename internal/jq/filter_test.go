package jq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterApply(t *testing.T) {
	doc := map[string]any{
		"feedback": map[string]any{
			"a": map[string]any{"score": float64(5)},
			"b": map[string]any{"score": float64(3)},
		},
	}

	f, err := Compile(`[.feedback[].score] | add`)
	require.NoError(t, err)
	got, err := f.Apply(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, []any{float64(8)}, got)

	f, err = Compile(`.feedback | keys[]`)
	require.NoError(t, err)
	got, err = f.Apply(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, got)
}

func TestFilterEmptyResult(t *testing.T) {
	f, err := Compile(`empty`)
	require.NoError(t, err)
	got, err := f.Apply(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilterErrors(t *testing.T) {
	_, err := Compile(`.[`)
	assert.Error(t, err)

	_, err = Compile(`undefined_fn(1)`)
	assert.Error(t, err)

	f, err := Compile(`.foo + 1`)
	require.NoError(t, err)
	_, err = f.Apply(context.Background(), map[string]any{"foo": "text"})
	assert.Error(t, err)
}
