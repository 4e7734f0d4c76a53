// Package telematics is the client for the upstream vehicle-telematics REST
// API. Responses are shaped {result: [...], errors: [...]}; the client
// unwraps the result payload, classifies failures, retries transient ones
// with a fixed backoff, and optionally caches GET payloads.
package telematics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fleet-tracker/internal/logger"

	"go.uber.org/zap"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultCacheTTL = 5 * time.Minute

	maxAttempts  = 3
	retryBackoff = time.Second
)

// Config carries the settings required to talk to the upstream platform.
type Config struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Client is the upstream API client. It is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	cache   *responseCache
}

// NewClient validates the configuration and builds a client. A missing token
// is a configuration error, not something to retry.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrTokenMissing
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://flespi.io"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}

	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		cache:   newResponseCache(cfg.CacheTTL),
	}, nil
}

// Get performs a GET request. When useCache is set, a fresh cached payload is
// returned without a round trip and the response is stored for later calls.
func (c *Client) Get(ctx context.Context, path string, params url.Values, useCache bool) ([]Document, error) {
	key := cacheKey(http.MethodGet, path, params)
	if useCache {
		if payload, ok := c.cache.get(key); ok {
			logger.Debug("telematics cache hit", zap.String("path", path))
			return payload, nil
		}
	}

	payload, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}

	if useCache {
		c.cache.put(key, payload)
	}
	return payload, nil
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) ([]Document, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) ([]Document, error) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) ([]Document, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Invalidate drops cached GET payloads for the given paths. Mutating
// operations call this for the listings they make stale.
func (c *Client) Invalidate(paths ...string) {
	for _, path := range paths {
		c.cache.invalidate(path)
	}
}

type envelope struct {
	Result []json.RawMessage `json:"result"`
	Errors []any             `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any) ([]Document, error) {
	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("telematics: encode request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		payload, err := c.roundTrip(ctx, method, path, params, encoded)
		if err == nil {
			return payload, nil
		}
		lastErr = err

		if !retryable(err) || attempt == maxAttempts {
			break
		}

		logger.Warn("telematics request failed, retrying",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		select {
		case <-time.After(retryBackoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	logger.Error("telematics request failed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Error(lastErr),
	)
	return nil, lastErr
}

func (c *Client) roundTrip(ctx context.Context, method, path string, params url.Values, body []byte) ([]Document, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("telematics: build request: %w", err)
	}
	req.Header.Set("Authorization", "FlespiToken "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telematics: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("telematics: read response: %w", err)
	}

	var env envelope
	// Non-JSON error bodies still classify by status below.
	_ = json.Unmarshal(raw, &env)

	if err := classifyStatus(resp.StatusCode, env.Errors); err != nil {
		return nil, err
	}

	// A 200 with errors in the body is still a failure.
	if len(env.Errors) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, env.Errors)
	}

	payload := make([]Document, 0, len(env.Result))
	for _, item := range env.Result {
		var doc map[string]any
		if err := json.Unmarshal(item, &doc); err != nil {
			continue
		}
		payload = append(payload, Document(doc))
	}
	return payload, nil
}
