package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ratio1/docstore_sdk_go/pkg/docstore/mock"
)

func TestParseFailConfig(t *testing.T) {
	cases := []struct {
		raw     string
		want    failConfig
		wantErr bool
	}{
		{raw: "", want: failConfig{}},
		{raw: "rate=0.5", want: failConfig{rate: 0.5, code: http.StatusInternalServerError}},
		{raw: " rate=1 , code=503 ", want: failConfig{rate: 1, code: 503}},
		{raw: "rate", wantErr: true},
		{raw: "rate=abc", wantErr: true},
		{raw: "rate=2", wantErr: true},
		{raw: "code=200", wantErr: true},
		{raw: "speed=1", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseFailConfig(tc.raw)
		if tc.wantErr {
			assert.Error(t, err, tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestMiddlewareInjectsFailures(t *testing.T) {
	store := mock.New()
	h := withMiddleware(zap.NewNop(), 0, failConfig{rate: 1, code: http.StatusServiceUnavailable}, store.Handler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x.json", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"failure injected"}`, rec.Body.String())
}

func TestMiddlewarePassesThrough(t *testing.T) {
	store := mock.New()
	h := withMiddleware(zap.NewNop(), 0, failConfig{}, store.Handler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/a.json", strings.NewReader(`{"b":1}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a/b.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `1`, rec.Body.String())
}

func TestSandboxRejectsBadFlags(t *testing.T) {
	cmd := newSandboxCommand(nil)
	cmd.SetArgs([]string{"--fail", "rate=x"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse fail flag")
}
