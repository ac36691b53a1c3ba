package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/lk2023060901/knowcast-backend/internal/knowledge/types"
)

const (
	// maxBodySize bounds how much of a provider response is read
	maxBodySize = 8 << 20
	// maxErrorBody bounds how much of a raw error body ends up in a message
	maxErrorBody = 512
)

// Provider answers a free text question with synthesized content and cited sources
type Provider interface {
	// Answer sends query once. A provider-reported failure comes back as an Answer with
	// Success false; the error return is reserved for transport and parse failures.
	Answer(ctx context.Context, query string) (*types.Answer, error)

	// Search returns ranked raw results without answer synthesis. Failure reporting
	// follows Answer.
	Search(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error)

	GetID() types.ProviderID

	GetName() string

	Validate() error
}

// BaseProvider provides common functionality for all providers
type BaseProvider struct {
	config     *types.ProviderConfig
	httpClient *http.Client
	apiKeys    []string
	keyIndex   atomic.Uint64
}

// NewBaseProvider creates a new base provider
func NewBaseProvider(config *types.ProviderConfig) *BaseProvider {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	var apiKeys []string
	for _, k := range strings.Split(config.APIKey, ",") {
		if k = strings.TrimSpace(k); k != "" {
			apiKeys = append(apiKeys, k)
		}
	}

	return &BaseProvider{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		apiKeys: apiKeys,
	}
}

// GetID returns the provider ID
func (b *BaseProvider) GetID() types.ProviderID {
	return b.config.ID
}

// GetName returns the provider name
func (b *BaseProvider) GetName() string {
	return b.config.Name
}

// GetAPIKey returns the next API key in rotation; safe for concurrent use
func (b *BaseProvider) GetAPIKey() string {
	if len(b.apiKeys) == 0 {
		return ""
	}
	i := b.keyIndex.Add(1) - 1
	return b.apiKeys[i%uint64(len(b.apiKeys))]
}

// Validate validates the provider configuration
func (b *BaseProvider) Validate() error {
	return b.config.Validate()
}

// PostJSON marshals payload, sends it once and returns the status code and body.
// Extraction never retries, so neither does this.
func (b *BaseProvider) PostJSON(ctx context.Context, path string, payload interface{}, headers map[string]string) (int, []byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimRight(b.config.APIHost, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "KnowCast-Backend/1.0")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return 0, nil, &types.ProviderError{
			Provider: b.GetID(),
			Code:     "REQUEST_FAILED",
			Message:  "failed to execute request",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, &types.ProviderError{
			Provider: b.GetID(),
			Code:     "READ_FAILED",
			Message:  "failed to read response body",
			Err:      err,
		}
	}
	return resp.StatusCode, body, nil
}

// statusError builds the error for a non-2xx response that carried no failure message
func (b *BaseProvider) statusError(status int, body []byte) error {
	msg := truncate(strings.TrimSpace(string(body)), maxErrorBody)
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &types.ProviderError{
		Provider: b.GetID(),
		Code:     fmt.Sprintf("HTTP_%d", status),
		Message:  msg,
	}
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
