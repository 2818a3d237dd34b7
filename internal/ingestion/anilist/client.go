package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultAPIURL = "https://graphql.anilist.co"

	// AniList allows ~90 requests per minute
	defaultRatePerSec = 1
	rateBurst         = 5

	// Retry configuration
	defaultMaxRetries = 3
	initialDelay      = 1 * time.Second
	maxDelay          = 16 * time.Second
)

// ErrMediaNotFound is returned when AniList has no media with the given id.
var ErrMediaNotFound = errors.New("anilist media not found")

// Client handles GraphQL API requests with rate limiting
type Client struct {
	apiURL       string
	httpClient   *http.Client
	rateLimiter  *rate.Limiter
	maxRetries   int
	initialDelay time.Duration
	logger       *slog.Logger
}

type Option func(*Client)

func WithAPIURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.apiURL = url
		}
	}
}

// WithRateLimit sets the sustained request rate. Non-positive values keep the default.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.rateLimiter = rate.NewLimiter(rate.Limit(perSecond), rateBurst)
		}
	}
}

func WithRetry(maxRetries int, initial time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.initialDelay = initial
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new AniList API client
func NewClient(opts ...Option) *Client {
	c := &Client{
		apiURL:       DefaultAPIURL,
		rateLimiter:  rate.NewLimiter(rate.Limit(defaultRatePerSec), rateBurst),
		maxRetries:   defaultMaxRetries,
		initialDelay: initialDelay,
		logger:       slog.Default(),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GraphQLRequest represents a GraphQL query request
type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// GraphQLResponse represents a GraphQL response
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

const mediaQuery = `
query ($id: Int, $type: MediaType) {
    Media(id: $id, type: $type) {
        id
        type
        title {
            english
            romaji
            native
        }
        description
        episodes
        duration
        chapters
        volumes
        isAdult
        coverImage {
            large
            medium
        }
    }
}
`

// GetMediaByID fetches one anime or manga entry.
func (c *Client) GetMediaByID(ctx context.Context, id int, mediaType MediaType) (*MediaData, error) {
	variables := map[string]any{
		"id":   id,
		"type": string(mediaType),
	}

	var result MediaResponse
	if err := c.doRequest(ctx, mediaQuery, variables, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch media %d: %w", id, err)
	}
	if result.Media == nil {
		return nil, ErrMediaNotFound
	}
	return result.Media, nil
}

// doRequest performs a GraphQL request with rate limiting and retry logic
func (c *Client) doRequest(ctx context.Context, query string, variables map[string]any, result any) error {
	bodyJSON, err := json.Marshal(GraphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	delay := c.initialDelay

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		status, respBody, retryAfter, err := c.post(ctx, bodyJSON)
		switch {
		case err != nil:
			lastErr = err
		case status == http.StatusNotFound:
			return ErrMediaNotFound
		case status != http.StatusOK:
			lastErr = fmt.Errorf("HTTP %d: %s", status, truncate(respBody, 200))
			if !shouldRetry(status) {
				return lastErr
			}
			if retryAfter > 0 {
				delay = retryAfter
			}
		default:
			return decodeResponse(respBody, result)
		}

		if attempt == c.maxRetries {
			break
		}
		c.logger.Warn("anilist_request_retry",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"delay", delay,
			"error", lastErr,
		)
		if err := sleep(ctx, delay); err != nil {
			return err
		}
		delay = minDuration(delay*2, maxDelay)
	}

	return fmt.Errorf("request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) post(ctx context.Context, body []byte) (int, []byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return 0, nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("failed to read response: %w", err)
	}

	var retryAfter time.Duration
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			retryAfter = time.Duration(secs) * time.Second
		}
	}
	return resp.StatusCode, respBody, retryAfter, nil
}

func decodeResponse(body []byte, result any) error {
	var gqlResp GraphQLResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return fmt.Errorf("failed to parse GraphQL response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		for _, e := range gqlResp.Errors {
			if e.Status == http.StatusNotFound {
				return ErrMediaNotFound
			}
		}
		errMsgs := make([]string, len(gqlResp.Errors))
		for i, e := range gqlResp.Errors {
			errMsgs[i] = e.Message
		}
		return fmt.Errorf("GraphQL errors: %v", errMsgs)
	}

	if err := json.Unmarshal(gqlResp.Data, result); err != nil {
		return fmt.Errorf("failed to parse data: %w", err)
	}
	return nil
}

// shouldRetry determines if an HTTP status code warrants a retry
func shouldRetry(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// minDuration returns the smaller of two durations
func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
