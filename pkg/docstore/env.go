package docstore

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/Ratio1/docstore_sdk_go/internal/devseed"
	"github.com/Ratio1/docstore_sdk_go/pkg/docstore/mock"
)

const (
	envMode     = "DOCSTORE_RUNTIME_MODE"
	envURL      = "DOCSTORE_URL"
	envToken    = "DOCSTORE_TOKEN"
	envMockSeed = "DOCSTORE_MOCK_SEED"

	// ModeAuto selects HTTP when a base URL is configured, mock otherwise.
	ModeAuto = "auto"
	// ModeHTTP talks to the remote store.
	ModeHTTP = "http"
	// ModeMock serves requests from an in-process mock.Store.
	ModeMock = "mock"

	mockBaseURL = "http://docstore.mock"
)

// Settings selects and configures the backend used by Open.
type Settings struct {
	Mode         string
	BaseURL      string
	Token        string
	MockSeedPath string
	// Fs is used to read MockSeedPath. Defaults to the OS filesystem.
	Fs afero.Fs
}

// NewFromEnv initialises a Client from DOCSTORE_* environment variables and
// returns the resolved mode ("http" or "mock").
func NewFromEnv(opts ...Option) (client *Client, mode string, err error) {
	return Open(Settings{
		Mode:         os.Getenv(envMode),
		BaseURL:      os.Getenv(envURL),
		Token:        os.Getenv(envToken),
		MockSeedPath: os.Getenv(envMockSeed),
	}, opts...)
}

// Open builds a Client for the given settings and returns the resolved mode.
// The token, when set, is applied before the client is returned.
func Open(s Settings, opts ...Option) (client *Client, mode string, err error) {
	mode = strings.ToLower(strings.TrimSpace(s.Mode))
	baseURL := strings.TrimSpace(s.BaseURL)

	switch mode {
	case "", ModeAuto:
		if baseURL != "" {
			client, mode, err = newHTTPClient(baseURL, opts)
		} else {
			client, mode, err = newMockClient(s, opts)
		}
	case ModeHTTP:
		if baseURL == "" {
			return nil, "", fmt.Errorf("docstore: HTTP mode requires %s", envURL)
		}
		client, mode, err = newHTTPClient(baseURL, opts)
	case ModeMock:
		client, mode, err = newMockClient(s, opts)
	default:
		return nil, "", fmt.Errorf("docstore: unsupported %s value %q", envMode, mode)
	}
	if err != nil {
		return nil, "", err
	}
	if s.Token != "" {
		client.SetToken(s.Token)
	}
	return client, mode, nil
}

func newHTTPClient(baseURL string, opts []Option) (*Client, string, error) {
	client, err := New(baseURL, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("docstore: init HTTP client: %w", err)
	}
	return client, ModeHTTP, nil
}

func newMockClient(s Settings, opts []Option) (*Client, string, error) {
	store := mock.New()
	if path := strings.TrimSpace(s.MockSeedPath); path != "" {
		fs := s.Fs
		if fs == nil {
			fs = afero.NewOsFs()
		}
		doc, err := devseed.Load(fs, path)
		if err != nil {
			return nil, "", fmt.Errorf("docstore: load mock seed: %w", err)
		}
		if err := store.Seed(doc); err != nil {
			return nil, "", fmt.Errorf("docstore: apply mock seed: %w", err)
		}
	}

	opts = append(append([]Option(nil), opts...), WithHTTPClient(&http.Client{Transport: store.Transport()}))
	client, err := New(mockBaseURL, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("docstore: init mock client: %w", err)
	}
	return client, ModeMock, nil
}
