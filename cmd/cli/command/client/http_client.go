package client

// http_client.go = typed access to the immersionhub HTTP API for immersionctl.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"immersionhub/internal/immersion"
	"immersionhub/internal/microservices/http-api/dto"
)

// ErrUnauthorized is returned for 401 responses.
var ErrUnauthorized = errors.New("not authenticated, run: immersionctl auth login --token <jwt>")

// APIError is a non-2xx response with the server's {"error": ...} message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.StatusCode)
}

// RowError is one rejected import row.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"error"`
}

type ImportResult struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`
}

// LogQuery filters ListLogs. Empty fields are omitted.
type LogQuery struct {
	From  string
	To    string
	Type  string
	Limit int
	TZ    string
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// Goals

func (c *HTTPClient) GetDailyGoals(ctx context.Context, tz string) (*dto.DailyGoalsResponse, error) {
	var result dto.DailyGoalsResponse
	if err := c.do(ctx, http.MethodGet, "/api/goals/daily", tzQuery(tz), nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) CreateGoal(ctx context.Context, request *dto.CreateGoalRequest) (*dto.GoalResponse, error) {
	var result dto.GoalResponse
	if err := c.do(ctx, http.MethodPost, "/api/goals/daily", nil, request, http.StatusCreated, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) UpdateGoal(ctx context.Context, id string, request *dto.UpdateGoalRequest) (*dto.GoalResponse, error) {
	var result dto.GoalResponse
	if err := c.do(ctx, http.MethodPatch, "/api/goals/daily/"+url.PathEscape(id), nil, request, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) DeleteGoal(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/goals/daily/"+url.PathEscape(id), nil, nil, http.StatusNoContent, nil)
}

// Statistics

func (c *HTTPClient) GetStats(ctx context.Context, timeRange, logType, tz string) (*immersion.PeriodStatistics, error) {
	query := tzQuery(tz)
	if timeRange != "" {
		query.Set("timeRange", timeRange)
	}
	if logType != "" {
		query.Set("type", logType)
	}

	var result immersion.PeriodStatistics
	if err := c.do(ctx, http.MethodGet, "/api/stats", query, nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logs

func (c *HTTPClient) ListLogs(ctx context.Context, q LogQuery) (*dto.LogListResponse, error) {
	query := tzQuery(q.TZ)
	if q.From != "" {
		query.Set("from", q.From)
	}
	if q.To != "" {
		query.Set("to", q.To)
	}
	if q.Type != "" {
		query.Set("type", q.Type)
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	var result dto.LogListResponse
	if err := c.do(ctx, http.MethodGet, "/api/logs", query, nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) CreateLog(ctx context.Context, request *dto.LogRequest) (*dto.LogResponse, error) {
	var result dto.LogResponse
	if err := c.do(ctx, http.MethodPost, "/api/logs", nil, request, http.StatusCreated, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) DeleteLog(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/logs/"+url.PathEscape(id), nil, nil, http.StatusNoContent, nil)
}

func (c *HTTPClient) AssignMedia(ctx context.Context, logID string, request *dto.AssignMediaRequest) (*dto.LogResponse, error) {
	var result dto.LogResponse
	path := "/api/logs/" + url.PathEscape(logID) + "/media"
	if err := c.do(ctx, http.MethodPut, path, nil, request, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ImportLogs uploads a CSV or XLSX file. The server picks the parser from filename.
func (c *HTTPClient) ImportLogs(ctx context.Context, filename string, content io.Reader, tz string) (*ImportResult, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/logs/import", tzQuery(tz), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result ImportResult
	if err := c.send(req, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, payload any, want int, out any) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, want, out)
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *HTTPClient) send(req *http.Request, want int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode != want {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload); err == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func tzQuery(tz string) url.Values {
	query := url.Values{}
	if tz != "" {
		query.Set("tz", tz)
	}
	return query
}
