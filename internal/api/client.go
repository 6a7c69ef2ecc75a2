package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultPrefix  = "/api"

	defaultHTTPTimeout = 5 * time.Minute
	maxErrorBodyBytes  = 64 << 10
)

// Config describes how to reach the critique service.
type Config struct {
	BaseURL    string
	Prefix     string
	HTTPClient *http.Client
}

// Client talks to the analysis and report-rendering endpoints.
type Client interface {
	Analyze(ctx context.Context, req Request) (*AnalyzeResponse, error)
	GenerateReport(ctx context.Context, req ReportRequest) (*Report, error)
	Health(ctx context.Context) error
	Endpoint() string
}

type httpClient struct {
	base   string
	client *http.Client
}

// New validates cfg and returns an HTTP backed Client.
func New(cfg Config) (Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid service url %q: %w", base, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("invalid service url %q: want http(s)://host", base)
	}
	prefix := cfg.Prefix
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return &httpClient{
		base:   strings.TrimRight(base, "/") + strings.TrimRight(prefix, "/"),
		client: pickHTTPClient(cfg.HTTPClient),
	}, nil
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// Per-call deadlines come from the caller's context; this is only a backstop.
	return &http.Client{Timeout: defaultHTTPTimeout}
}

func (c *httpClient) Endpoint() string {
	return c.base
}

func (c *httpClient) Analyze(ctx context.Context, req Request) (*AnalyzeResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/analyze", bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", req.ContentType)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError("analyze", resp)
	}

	var parsed AnalyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if parsed.Analysis == nil {
		return nil, fmt.Errorf("%w: missing analysis object", ErrMalformedResponse)
	}
	return &parsed, nil
}

func (c *httpClient) GenerateReport(ctx context.Context, req ReportRequest) (*Report, error) {
	buf, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/generate-pdf", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/pdf")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError("generate-pdf", resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty report body", ErrMalformedResponse)
	}
	return &Report{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		Filename:    attachmentName(resp.Header.Get("Content-Disposition")),
	}, nil
}

func (c *httpClient) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError("health", resp)
	}
	var body healthBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if body.Status != StatusOK {
		return fmt.Errorf("service reported status %q", body.Status)
	}
	return nil
}

// statusError decodes an optional {"detail": "..."} body. Anything else is
// ignored; the caller falls back to a generic message.
func statusError(endpoint string, resp *http.Response) error {
	out := &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Status: resp.Status}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil || len(raw) == 0 {
		return out
	}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return out
	}
	if detail, ok := body.Detail.(string); ok {
		out.Detail = detail
	}
	return out
}

func attachmentName(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// IsTimeout reports whether err came from an expired deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
