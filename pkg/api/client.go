package api

// API CLIENT

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type CalculateRequest struct {
	Volume      float64 `json:"volume"`
	Density     float64 `json:"density"`
	Temperature float64 `json:"temperature"`
}

// Calculation is one stored calculation, as returned by POST /api/calculate
// and in history pages.
type Calculation struct {
	ID          int64   `json:"id"`
	Volume      float64 `json:"volume"`
	Density     float64 `json:"density"`
	Temperature float64 `json:"temperature"`
	VCF         float64 `json:"vcf"`
	UsedDensity float64 `json:"usedDensity"`
	UsedTemp    float64 `json:"usedTemp"`
	Tonnage     float64 `json:"tonnage"`
	Timestamp   string  `json:"timestamp"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type HistoryPage struct {
	Data       []Calculation `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// HistoryQuery mirrors the query parameters of GET /api/calculations.
// Zero values are omitted.
type HistoryQuery struct {
	Page   int
	Limit  int
	Search string
	Sort   string
	Order  string
}

// Error is a non-2xx answer from the API.
type Error struct {
	StatusCode int      `json:"-"`
	Title      string   `json:"error"`
	Message    string   `json:"message"`
	Details    []string `json:"details"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s: %s", e.StatusCode, e.Title, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Title)
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) Calculate(ctx context.Context, req CalculateRequest) (Calculation, error) {
	var result struct {
		Data Calculation `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/calculate", req, &result); err != nil {
		return Calculation{}, err
	}
	return result.Data, nil
}

func (c *Client) ListCalculations(ctx context.Context, q HistoryQuery) (HistoryPage, error) {
	var page HistoryPage
	if err := c.do(ctx, http.MethodGet, "/api/calculations"+q.encode(), nil, &page); err != nil {
		return HistoryPage{}, err
	}
	return page, nil
}

func (c *Client) DeleteCalculation(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/calculations/%d", id), nil, nil)
}

func (c *Client) ClearCalculations(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/calculations", nil, nil)
}

// ExportCalculations streams the XLSX export into w.
func (c *Client) ExportCalculations(ctx context.Context, w io.Writer, q HistoryQuery) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/calculations/export"+q.encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	return nil
}

// Health reports nil when the service answers ok with a connected database.
func (c *Client) Health(ctx context.Context) error {
	var status struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &status); err != nil {
		return err
	}
	if status.Status != "ok" {
		return fmt.Errorf("service unhealthy: database %s", status.Database)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := decodeError(resp)
		c.logger.Debug("API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(apiErr))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Title == "" {
		apiErr.Title = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func (q HistoryQuery) encode() string {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.Sort != "" {
		values.Set("sort", q.Sort)
	}
	if q.Order != "" {
		values.Set("order", q.Order)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}
