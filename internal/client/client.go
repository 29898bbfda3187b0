// Package client wraps the funding-research backend HTTP API. Calls are
// single-attempt JSON requests: no retry, no timeout, no backoff — failures
// surface directly to the caller.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// RequestError is a non-2xx response. The message carries the response body
// verbatim when the server sent one.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("status %d", e.Status)
}

// Client talks to one backend base URL.
type Client struct {
	http *resty.Client
}

// New builds a client for the given base URL, e.g. "http://localhost:8000".
func New(baseURL string) *Client {
	c := resty.New()
	c.SetBaseURL(strings.TrimRight(baseURL, "/"))
	c.SetHeader("Content-Type", "application/json")
	return &Client{http: c}
}

// doJSON performs one request and decodes the JSON response into out when
// out is non-nil. The response shape is asserted by the caller's out type.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !resp.IsSuccess() {
		return &RequestError{Status: resp.StatusCode(), Body: strings.TrimSpace(string(resp.Body()))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}
