package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/unionretail/promosync/internal/config"
)

const (
	defaultMaxAttempts    = 4
	defaultRetryBaseDelay = 1200 * time.Millisecond
	defaultRetryStep      = 1 * time.Second

	// PageSize is the fixed page size for cursor-based listing queries
	PageSize = 250
)

type Client struct {
	shopDomain  string
	accessToken string
	apiVersion  string
	baseURL     string
	httpClient  *http.Client
	logger      *zap.Logger

	maxAttempts    int
	retryBaseDelay time.Duration
	retryStep      time.Duration
	sleep          func(time.Duration)
}

// NewClient creates a new Shopify Admin API client with retry on transient
// failures
func NewClient(cfg config.ShopifyConfig, logger *zap.Logger) *Client {
	// Normalize shop domain - remove https://, http://, and trailing slashes
	shopDomain := cfg.ShopDomain
	shopDomain = strings.TrimPrefix(shopDomain, "https://")
	shopDomain = strings.TrimPrefix(shopDomain, "http://")
	shopDomain = strings.TrimSuffix(shopDomain, "/")

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		shopDomain:  shopDomain,
		accessToken: cfg.AccessToken,
		apiVersion:  cfg.APIVersion,
		baseURL:     fmt.Sprintf("https://%s/admin/api/%s", shopDomain, cfg.APIVersion),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:         logger,
		maxAttempts:    defaultMaxAttempts,
		retryBaseDelay: defaultRetryBaseDelay,
		retryStep:      defaultRetryStep,
		sleep:          time.Sleep,
	}
}

// GraphQLRequest represents a GraphQL request
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// GraphQLResponse represents a GraphQL response
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message string        `json:"message"`
	Path    []interface{} `json:"path,omitempty"`
}

// transientStatus reports whether an HTTP status is worth retrying
func transientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Execute runs a GraphQL query/mutation against the Admin API. Transport
// failures and transient HTTP statuses are retried with a linearly increasing
// delay; after exhausting attempts the last error is surfaced. A GraphQL
// error payload on a successful HTTP response is a semantic error and is
// returned immediately without retry.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]interface{}) (*GraphQLResponse, error) {
	url := c.baseURL + "/graphql.json"

	reqBody := GraphQLRequest{
		Query:     query,
		Variables: variables,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			c.sleep(c.retryBaseDelay + time.Duration(attempt-1)*c.retryStep)
		}
		if ctx.Err() != nil {
			break
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Shopify-Access-Token", c.accessToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to execute request: %w", err)
			c.logger.Warn("Shopify request failed, will retry", zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if transientStatus(resp.StatusCode) {
			lastErr = fmt.Errorf("temporary shopify error %d: %s", resp.StatusCode, string(body))
			c.logger.Warn("Transient Shopify status, will retry",
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("shopify API error: status %d, body: %s", resp.StatusCode, string(body))
		}

		var graphQLResp GraphQLResponse
		if err := json.Unmarshal(body, &graphQLResp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
		}

		// Schema/validation errors are not transient, never retry them
		if len(graphQLResp.Errors) > 0 {
			errorMessages := make([]string, len(graphQLResp.Errors))
			for i, gerr := range graphQLResp.Errors {
				errorMessages[i] = gerr.Message
			}
			return nil, fmt.Errorf("graphQL errors: %s", strings.Join(errorMessages, "; "))
		}

		return &graphQLResp, nil
	}

	return nil, fmt.Errorf("shopify GraphQL failed after %d attempts: %w", c.maxAttempts, lastErr)
}

// ToCollectionGID converts a numeric collection id to its GID form; a value
// already in GID form passes through unchanged
func ToCollectionGID(collectionID string) string {
	cid := strings.TrimSpace(collectionID)
	if strings.HasPrefix(cid, "gid://") {
		return cid
	}
	return "gid://shopify/Collection/" + cid
}

// NumericID extracts the trailing numeric id from a GID
// (gid://shopify/Collection/123 -> 123). Non-GID input is returned as-is.
func NumericID(gid string) string {
	if !strings.HasPrefix(gid, "gid://") {
		return gid
	}
	if idx := strings.LastIndex(gid, "/"); idx >= 0 {
		return gid[idx+1:]
	}
	return gid
}
