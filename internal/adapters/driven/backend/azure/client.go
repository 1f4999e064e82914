package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driven"
	"github.com/custodia-labs/mbsearch/internal/logger"
)

// Ensure Backend implements the interface.
var _ driven.SearchBackend = (*Backend)(nil)

const (
	// DefaultAuthority is the Microsoft Entra token authority.
	DefaultAuthority = "https://login.microsoftonline.com"

	// Scope is the OAuth scope of Azure Cognitive Search.
	Scope = "https://search.azure.com/.default"

	// HeaderAPIKey carries the query key.
	HeaderAPIKey = "api-key"

	// maxErrorBody bounds how much of an error body is read.
	maxErrorBody = 64 << 10
)

// Option configures a Backend.
type Option func(*Backend)

// WithHTTPClient sets the base HTTP client. Token requests use it too.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Backend) { b.base = c }
}

// WithAuthority overrides the Entra token authority.
func WithAuthority(authority string) Option {
	return func(b *Backend) { b.authority = strings.TrimRight(authority, "/") }
}

// Backend sends search requests to Azure Cognitive Search.
type Backend struct {
	base      *http.Client
	authority string
	limiter   *RateLimiter

	mu     sync.RWMutex
	cfg    domain.ServiceSettings
	client *http.Client
}

// New creates a backend for cfg. An unconfigured backend fails every
// request with domain.ErrNotConfigured until Configure is called.
func New(cfg domain.ServiceSettings, opts ...Option) *Backend {
	b := &Backend{
		base:      &http.Client{},
		authority: DefaultAuthority,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.limiter = NewRateLimiter(cfg.RequestsPerSecond)
	b.Configure(cfg)
	return b
}

// Configure replaces the connection settings.
func (b *Backend) Configure(cfg domain.ServiceSettings) {
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	if cfg.APIVersion == "" {
		cfg.APIVersion = domain.DefaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultRequestTimeout
	}

	client := &http.Client{
		Transport: b.base.Transport,
		Timeout:   cfg.Timeout,
	}
	if cfg.Auth == domain.AuthEntra {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", b.authority, url.PathEscape(cfg.TenantID)),
			Scopes:       []string{Scope},
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, b.base)
		client = cc.Client(ctx)
		client.Timeout = cfg.Timeout
	}

	b.mu.Lock()
	b.cfg = cfg
	b.client = client
	b.mu.Unlock()

	b.limiter.SetRate(cfg.RequestsPerSecond)
	logger.Debug("Search backend: endpoint=%s index=%s auth=%s", cfg.Endpoint, cfg.Index, cfg.Auth)
}

// Search sends req and decodes the response.
func (b *Backend) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	b.mu.RLock()
	cfg, client := b.cfg, b.client
	b.mu.RUnlock()

	if !cfg.IsConfigured() {
		return nil, domain.ErrNotConfigured
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	if err := b.limiter.Wait(ctx); err != nil {
		return nil, &domain.TransportError{Op: "wait", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, searchURL(cfg), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if cfg.Auth != domain.AuthEntra {
		httpReq.Header.Set(HeaderAPIKey, cfg.APIKey)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &domain.TransportError{Op: "send", Err: err}
	}
	defer resp.Body.Close()

	b.limiter.UpdateFromResponse(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Op: "read", Err: err}
	}

	var wire searchResponse
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, &domain.TransportError{Op: "decode", Err: err}
	}

	out := wire.toDomain()
	logger.Debug("Search backend: %d documents, status %d", len(out.Documents), resp.StatusCode)
	return out, nil
}

// searchURL returns the docs/search endpoint of the configured index.
func searchURL(cfg domain.ServiceSettings) string {
	return fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s",
		cfg.Endpoint, url.PathEscape(cfg.Index), url.QueryEscape(cfg.APIVersion))
}

// parseError converts a non-2xx response into a BackendError.
func parseError(resp *http.Response) error {
	backendErr := &domain.BackendError{
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return backendErr
	}

	var body errorResponse
	if err := json.Unmarshal(data, &body); err == nil && body.Error != nil {
		backendErr.Code = body.Error.Code
		backendErr.Message = body.Error.Message
	}
	return backendErr
}
