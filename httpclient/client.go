package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxResponseBytes caps how much of a response body is kept.
const maxResponseBytes = 32 << 20

// Request is one call to the upstream.
type Request struct {
	Method string
	// Path is joined to the client's BaseURL.
	Path    string
	Headers map[string]string
	// Form, when set, is streamed as the multipart/form-data body.
	Form *MultipartBody
}

// Response holds a fully read response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client sends requests to a single base URL and classifies failures as *Error.
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates a Client. See Config for the timeout rules.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		http: &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
			Timeout:   max(cfg.Timeout, 0),
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// BaseURL returns the upstream address.
func (c *Client) BaseURL() string { return c.baseURL }

// CloseIdleConnections releases pooled connections.
func (c *Client) CloseIdleConnections() { c.http.CloseIdleConnections() }

// Do sends req and reads the whole response. A status of 400 or above is
// returned as *Error together with the response. Requests are never
// replayed: a streamed form can only be read once.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+"/"+strings.TrimLeft(req.Path, "/"), nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: build request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.Form != nil {
		body, contentType := req.Form.encode()
		httpReq.Body = body
		httpReq.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, transportError(ctx, fmt.Errorf("read response body: %w", err))
	}
	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
	if e := statusError(resp.StatusCode, body); e != nil {
		return out, e
	}
	return out, nil
}
