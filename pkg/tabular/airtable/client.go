// Package airtable implements tabular.Store over the Airtable REST API.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
	"github.com/Ezzyro/Airtable-Test/pkg/logging"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular"
)

// DefaultAPIURL is the public Airtable REST endpoint.
const DefaultAPIURL = "https://api.airtable.com/v0"

// Config holds configuration for creating an Airtable client.
type Config struct {
	APIKey  string        // Personal access token
	BaseID  string        // e.g. "appXXXXXXXXXXXXXX"
	APIURL  string        // Defaults to DefaultAPIURL
	Timeout time.Duration // Per-request timeout, defaults to 30s
}

// Client is a tabular.Store backed by one Airtable base.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	baseID     string
	logger     *zap.Logger
}

// New creates an Airtable client. It fails with apperrors.ErrConfiguration when
// the token or base ID is missing.
func New(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" || cfg.BaseID == "" {
		return nil, fmt.Errorf("airtable api key and base id are required: %w", apperrors.ErrConfiguration)
	}

	apiURL := strings.TrimSuffix(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     apiURL,
		apiKey:     cfg.APIKey,
		baseID:     cfg.BaseID,
		logger:     logger.Named("airtable"),
	}, nil
}

// APIError is a non-2xx response from Airtable.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("airtable HTTP %d %s: %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("airtable HTTP %d %s", e.StatusCode, e.Type)
}

// Unwrap maps status codes onto application errors.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.ErrConfiguration
	default:
		return nil
	}
}

type recordJSON struct {
	ID          string         `json:"id"`
	CreatedTime time.Time      `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

type listResponse struct {
	Records []recordJSON `json:"records"`
	Offset  string       `json:"offset"`
}

type writeRequest struct {
	Fields   map[string]any `json:"fields"`
	Typecast bool           `json:"typecast"`
}

func (r recordJSON) toRecord() tabular.Record {
	fields := tabular.Fields(r.Fields)
	if fields == nil {
		fields = tabular.Fields{}
	}
	return tabular.Record{ID: r.ID, CreatedTime: r.CreatedTime, Fields: fields}
}

// Select lists records. Only the first page is returned unless q.AllPages is set.
func (c *Client) Select(ctx context.Context, table string, q tabular.Query) ([]tabular.Record, error) {
	params := url.Values{}
	if q.Filter != nil {
		params.Set("filterByFormula", q.Filter.Formula())
	}
	for _, f := range q.Fields {
		params.Add("fields[]", f)
	}

	var out []tabular.Record
	for {
		var page listResponse
		if err := c.do(ctx, http.MethodGet, c.tableURL(table)+"?"+params.Encode(), nil, &page); err != nil {
			return nil, fmt.Errorf("select from %q: %w", table, err)
		}
		for _, r := range page.Records {
			out = append(out, r.toRecord())
		}
		if !q.AllPages || page.Offset == "" {
			break
		}
		params.Set("offset", page.Offset)
	}

	c.logger.Debug("Selected records",
		zap.String("table", table),
		zap.Int("count", len(out)))
	return out, nil
}

// Update patches the given fields on one record.
func (c *Client) Update(ctx context.Context, table, recordID string, fields tabular.Fields) error {
	body := writeRequest{Fields: encodeFields(fields), Typecast: true}
	endpoint := c.tableURL(table) + "/" + url.PathEscape(recordID)
	if err := c.do(ctx, http.MethodPatch, endpoint, body, nil); err != nil {
		return fmt.Errorf("update %s in %q: %w", recordID, table, err)
	}
	return nil
}

// Create inserts one record. Select options and linked records given by name are
// resolved by Airtable (typecast).
func (c *Client) Create(ctx context.Context, table string, fields tabular.Fields) (*tabular.Record, error) {
	body := writeRequest{Fields: encodeFields(fields), Typecast: true}
	var created recordJSON
	if err := c.do(ctx, http.MethodPost, c.tableURL(table), body, &created); err != nil {
		return nil, fmt.Errorf("create in %q: %w", table, err)
	}
	rec := created.toRecord()
	return &rec, nil
}

func (c *Client) tableURL(table string) string {
	return c.apiURL + "/" + url.PathEscape(c.baseID) + "/" + url.PathEscape(table)
}

// encodeFields converts link values to the REST shape: record IDs when known,
// otherwise names for typecast resolution.
func encodeFields(fields tabular.Fields) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case tabular.LinkValue:
			out[k] = []string{linkRef(val)}
		case []tabular.LinkValue:
			refs := make([]string, 0, len(val))
			for _, l := range val {
				refs = append(refs, linkRef(l))
			}
			out[k] = refs
		default:
			out[k] = v
		}
	}
	return out
}

func linkRef(l tabular.LinkValue) string {
	if l.RecordID != "" {
		return l.RecordID
	}
	return l.Name
}

// do sends exactly one request. Nothing is replayed on failure: Airtable may
// have committed a write whose response was lost.
func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Airtable request failed",
			zap.String("method", method),
			zap.String("error", logging.SanitizeError(err)))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp)
		c.logger.Warn("Airtable request rejected",
			zap.String("method", method),
			zap.Int("status", resp.StatusCode),
			zap.String("type", apiErr.Type))
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	// Airtable returns either {"error": {"type": .., "message": ..}} or {"error": "NOT_FOUND"}.
	var structured struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &structured); err != nil || len(structured.Error) == 0 {
		apiErr.Message = strings.TrimSpace(string(raw))
		return apiErr
	}
	var detail struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(structured.Error, &detail); err == nil {
		apiErr.Type, apiErr.Message = detail.Type, detail.Message
		return apiErr
	}
	_ = json.Unmarshal(structured.Error, &apiErr.Type)
	return apiErr
}

var _ tabular.Store = (*Client)(nil)
