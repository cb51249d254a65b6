package docstore_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ratio1/docstore_sdk_go/pkg/docstore"
)

func TestNewFromEnvHTTP(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, "null")

	t.Setenv("DOCSTORE_RUNTIME_MODE", "")
	t.Setenv("DOCSTORE_URL", srv.URL)
	t.Setenv("DOCSTORE_TOKEN", "envtoken")

	client, mode, err := docstore.NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, docstore.ModeHTTP, mode)

	got, err := client.Get(context.Background(), "/missing")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, "envtoken", srv.last(t).Auth)
}

func TestNewFromEnvHTTPModeRequiresURL(t *testing.T) {
	t.Setenv("DOCSTORE_RUNTIME_MODE", "http")
	t.Setenv("DOCSTORE_URL", "")

	_, _, err := docstore.NewFromEnv()
	assert.Error(t, err)
}

func TestNewFromEnvInvalidURL(t *testing.T) {
	t.Setenv("DOCSTORE_RUNTIME_MODE", "http")
	t.Setenv("DOCSTORE_URL", "://not-a-url")

	_, _, err := docstore.NewFromEnv()
	assert.Error(t, err)
}

func TestNewFromEnvUnknownMode(t *testing.T) {
	t.Setenv("DOCSTORE_RUNTIME_MODE", "offline")

	_, _, err := docstore.NewFromEnv()
	assert.Error(t, err)
}

func TestOpenMockRoundTrip(t *testing.T) {
	client, mode, err := docstore.Open(docstore.Settings{})
	require.NoError(t, err)
	assert.Equal(t, docstore.ModeMock, mode)
	ctx := context.Background()

	name, err := client.Append(ctx, "/test", docstore.Value(map[string]any{"foo": "bar"}))
	require.NoError(t, err)
	require.NotEmpty(t, name)

	require.NoError(t, client.Update(ctx, "/test/"+name, docstore.RawJSON(`{"seen":true}`)))

	got, err := client.Get(ctx, "/test")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{name: map[string]any{"foo": "bar", "seen": true}}, got)

	require.NoError(t, client.Delete(ctx, "/test"))
	got, err = client.Get(ctx, "/test")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOpenMockWithSeedAndToken(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/seed.yaml", []byte("settings:\n  theme: light\n"), 0o644))

	client, mode, err := docstore.Open(docstore.Settings{
		Mode:         docstore.ModeMock,
		MockSeedPath: "/seed.yaml",
		Token:        "ignored-by-mock",
		Fs:           fs,
	})
	require.NoError(t, err)
	assert.Equal(t, docstore.ModeMock, mode)
	assert.Equal(t, "ignored-by-mock", client.Token())

	got, err := client.Get(context.Background(), "/settings/theme")
	require.NoError(t, err)
	assert.Equal(t, "light", got)
}

func TestOpenMockMissingSeed(t *testing.T) {
	_, _, err := docstore.Open(docstore.Settings{
		Mode:         docstore.ModeMock,
		MockSeedPath: "/nope.json",
		Fs:           afero.NewMemMapFs(),
	})
	assert.Error(t, err)
}
