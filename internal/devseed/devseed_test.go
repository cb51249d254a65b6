package devseed

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/seed.json", []byte(`{"users":{"1":{"name":"ada"}}}`), 0o644))

	data, err := Load(fs, "/seed.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"users":{"1":{"name":"ada"}}}`, string(data))
}

func TestLoadYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed := "feedback:\n  first:\n    score: 5\n    tags: [fast, clear]\n"
	require.NoError(t, afero.WriteFile(fs, "/seed.yaml", []byte(seed), 0o644))

	data, err := Load(fs, "/seed.yaml")
	require.NoError(t, err)
	assert.JSONEq(t, `{"feedback":{"first":{"score":5,"tags":["fast","clear"]}}}`, string(data))
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := Load(fs, "/missing.json")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/bad.json", []byte(`{nope`), 0o644))
	_, err = Load(fs, "/bad.json")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/bad.yml", []byte("a: [unterminated"), 0o644))
	_, err = Load(fs, "/bad.yml")
	assert.Error(t, err)
}
