package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	_, err := NewClient("   ")
	require.Error(t, err)

	_, err = NewClient("://not-a-url")
	require.Error(t, err)

	_, err = NewClient("/relative/only")
	require.Error(t, err)

	_, err = NewClient("https://example.com/?x=1")
	require.Error(t, err)

	c, err := NewClient("https://example.com/base/")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/base/x.json", c.buildURL("/x.json", nil))
}

func TestBuildURL(t *testing.T) {
	c, err := NewClient("https://example.com/")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/users/42.json", c.buildURL("/users/42.json", nil))
	assert.Equal(t, "https://example.com/users.json", c.buildURL("users.json", nil))
	assert.Equal(t, "https://example.com/a%3Fb.json", c.buildURL("/a?b.json", nil))
	assert.Equal(t, "https://example.com/x.json?auth=tok", c.buildURL("/x.json", url.Values{"auth": {"tok"}}))
}

func TestDoSingleAttemptOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"error":"try later"}`)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x.json"})
	require.Nil(t, resp)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
	assert.Equal(t, `{"error":"try later"}`, string(httpErr.Body))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestDoSendsHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "docstore-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		data, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"a":1}`, string(data))
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithHeaders(http.Header{"User-Agent": {"docstore-test"}}))
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), &Request{
		Method: http.MethodPatch,
		Path:   "/a.json",
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   strings.NewReader(`{"a":1}`),
	})
	require.NoError(t, err)
	data, err := ReadAllAndClose(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}

func TestDoRejectsMissingMethod(t *testing.T) {
	c, err := NewClient("https://example.com")
	require.NoError(t, err)

	_, err = c.Do(context.Background(), &Request{Path: "/x.json"})
	require.Error(t, err)

	_, err = c.Do(context.Background(), nil)
	require.Error(t, err)
}

func TestLoggingTransportRedactsAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("auth"))
		io.WriteString(w, "null")
	}))
	defer srv.Close()

	core, logs := observer.New(zap.DebugLevel)
	c, err := NewClient(srv.URL, WithLogger(zap.New(core)))
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), &Request{
		Method: http.MethodGet,
		Path:   "/x.json",
		Query:  url.Values{"auth": {"secret"}},
	})
	require.NoError(t, err)
	_, _ = ReadAllAndClose(resp.Body)

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	logged := entries[0].ContextMap()["url"].(string)
	assert.NotContains(t, logged, "secret")
	assert.Contains(t, logged, "REDACTED")
}

func TestSanitizeURL(t *testing.T) {
	u, err := url.Parse("https://example.com/a.json?auth=abc&orderBy=%22%24key%22&Access_Token=xyz")
	require.NoError(t, err)

	got := sanitizeURL(u)
	assert.NotContains(t, got, "abc")
	assert.NotContains(t, got, "xyz")
	assert.Contains(t, got, "orderBy=")
	assert.Equal(t, "", sanitizeURL(nil))
}

func TestHTTPErrorUnauthorized(t *testing.T) {
	assert.True(t, (&HTTPError{StatusCode: http.StatusUnauthorized}).Unauthorized())
	assert.False(t, (&HTTPError{StatusCode: http.StatusBadRequest}).Unauthorized())
	var nilErr *HTTPError
	assert.False(t, nilErr.Unauthorized())
	assert.Equal(t, "<nil>", nilErr.Error())
}
