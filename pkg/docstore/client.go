package docstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Ratio1/docstore_sdk_go/internal/httpx"
	"github.com/Ratio1/docstore_sdk_go/internal/restapi"
)

const (
	resourceSuffix = ".json"
	authParam      = "auth"
	userAgent      = "docstore_sdk_go"
)

// Client provides access to the remote document store.
type Client struct {
	backend Backend
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	httpClient *http.Client
}

// WithLogger sets the logger used by the client and its transport.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(o *options) {
		if h != nil {
			o.httpClient = h
		}
	}
}

func buildOptions(opts []Option) *options {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// New constructs a Client bound to the provided base URL, for example
// https://give-me-feedback.firebaseio.com.
func New(baseURL string, opts ...Option) (*Client, error) {
	o := buildOptions(opts)
	httpOpts := []httpx.Option{
		httpx.WithLogger(o.logger),
		httpx.WithHeaders(http.Header{"User-Agent": {userAgent}}),
	}
	if o.httpClient != nil {
		httpOpts = append(httpOpts, httpx.WithHTTPClient(o.httpClient))
	}
	cl, err := httpx.NewClient(baseURL, httpOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{backend: &httpBackend{client: cl}, logger: o.logger}, nil
}

// NewWithBackend allows callers to supply a custom backend (e.g., fakes).
func NewWithBackend(b Backend, opts ...Option) *Client {
	o := buildOptions(opts)
	return &Client{backend: b, logger: o.logger}
}

// SetToken stores the credential attached as the auth query parameter to
// every subsequent request. An empty token clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current auth token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Get returns the decoded JSON stored at location: a map, slice, string,
// float64, bool, or nil when the location is empty.
func (c *Client) Get(ctx context.Context, location string) (any, error) {
	var out any
	if err := c.GetInto(ctx, location, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetInto decodes the JSON stored at location into out.
func (c *Client) GetInto(ctx context.Context, location string, out any) error {
	body, err := c.send(ctx, http.MethodGet, location, nil)
	if err != nil {
		return c.failure(err, "reading", location, nil)
	}
	if err := restapi.DecodeValue(body, out); err != nil {
		return fmt.Errorf("docstore: decode %s: %w", location, err)
	}
	return nil
}

// Append creates a new child of location under a server-generated key and
// returns that key. The key is empty when the store accepted the write but its
// response did not carry one.
func (c *Client) Append(ctx context.Context, location string, content Content) (string, error) {
	body, err := c.write(ctx, opAppend, location, content)
	if err != nil {
		return "", err
	}
	name, err := restapi.PushName(body)
	if err != nil {
		// The write was accepted; only the generated key is unknown.
		c.logger.Debug("docstore append: unrecognised response",
			zap.String("location", location),
			zap.Error(err),
		)
		return "", nil
	}
	return name, nil
}

// Update merges the members of content into the node at location, leaving
// siblings untouched.
func (c *Client) Update(ctx context.Context, location string, content Content) error {
	_, err := c.write(ctx, opUpdate, location, content)
	return err
}

// Set overwrites the node at location with content.
func (c *Client) Set(ctx context.Context, location string, content Content) error {
	_, err := c.write(ctx, opSet, location, content)
	return err
}

// Delete removes the node at location.
func (c *Client) Delete(ctx context.Context, location string) error {
	if _, err := c.send(ctx, http.MethodDelete, location, nil); err != nil {
		return c.failure(err, "deleting", location, nil)
	}
	return nil
}

// write is the single dispatch point for body-carrying requests.
func (c *Client) write(ctx context.Context, op writeOp, location string, content Content) ([]byte, error) {
	method, description, ok := op.resolve()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperation, int(op))
	}
	if content == nil {
		return nil, fmt.Errorf("docstore: %s %s: content is required", op, location)
	}
	body, err := content.encode()
	if err != nil {
		return nil, fmt.Errorf("docstore: %s %s: %w", op, location, err)
	}

	resp, err := c.send(ctx, method, location, body)
	if err != nil {
		return nil, c.failure(err, description, location, body)
	}
	c.logger.Debug("docstore write",
		zap.String("op", op.String()),
		zap.String("location", location),
		zap.Int("bytes", len(body)),
	)
	return resp, nil
}

func (c *Client) send(ctx context.Context, method, location string, body []byte) ([]byte, error) {
	if c == nil || c.backend == nil {
		return nil, errors.New("docstore: client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	req := &Request{
		Method: method,
		Path:   ResourcePath(location),
		Body:   body,
	}
	if token := c.Token(); token != "" {
		req.Query = url.Values{authParam: {token}}
	}
	return c.backend.Do(ctx, req)
}

func (c *Client) failure(err error, op, location string, content []byte) error {
	reqErr := &RequestError{
		Op:       op,
		Location: location,
		Content:  string(content),
		Text:     err.Error(),
		Err:      err,
	}
	var httpErr *httpx.HTTPError
	if errors.As(err, &httpErr) {
		reqErr.StatusCode = httpErr.StatusCode
		reqErr.Text = string(bytes.TrimSpace(httpErr.Body))
		reqErr.Message = restapi.ErrorText(httpErr.Body)
		if reqErr.Text == "" {
			reqErr.Text = http.StatusText(httpErr.StatusCode)
		}
	}
	return reqErr
}

// ResourcePath maps a store location to the request path: a single leading
// slash followed by the location and the ".json" suffix. The root location
// ("" or "/") maps to "/.json".
func ResourcePath(location string) string {
	return "/" + strings.TrimLeft(location, "/") + resourceSuffix
}

// Request is a single call against the store's REST surface.
type Request struct {
	Method string
	// Path is the resource path produced by ResourcePath.
	Path  string
	Query url.Values
	Body  []byte
}

// Backend performs requests against the store and returns the response body.
// Rejections are reported as *httpx.HTTPError by the HTTP backend.
type Backend interface {
	Do(ctx context.Context, req *Request) ([]byte, error)
}

type httpBackend struct {
	client *httpx.Client
}

func (b *httpBackend) Do(ctx context.Context, req *Request) ([]byte, error) {
	if b == nil || b.client == nil {
		return nil, fmt.Errorf("docstore: http backend not configured")
	}
	hreq := &httpx.Request{
		Method: req.Method,
		Path:   req.Path,
		Query:  req.Query,
	}
	if req.Body != nil {
		hreq.Header = http.Header{"Content-Type": []string{"application/json"}}
		hreq.Body = bytes.NewReader(req.Body)
	}
	resp, err := b.client.Do(ctx, hreq)
	if err != nil {
		return nil, err
	}
	return httpx.ReadAllAndClose(resp.Body)
}
