package backend

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
)

// maxErrorBody caps how much of a failed response is kept for messages.
const maxErrorBody = 4096

// HTTPError is returned for any non-2xx backend response.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s - %s", e.StatusCode, e.Status, strings.TrimSpace(string(e.Body)))
}

// Detail extracts the server-provided message from a JSON error body
// (detail or error), falling back to the status code.
func (e *HTTPError) Detail() string {
	var body struct {
		Detail any `json:"detail"`
		Error  any `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &body); err == nil {
		for _, v := range []any{body.Detail, body.Error} {
			switch t := v.(type) {
			case string:
				if t != "" {
					return t
				}
			case nil:
			default:
				if b, err := json.Marshal(t); err == nil {
					return string(b)
				}
			}
		}
	}
	return fmt.Sprintf("status %d", e.StatusCode)
}

// Client talks to the SerendiGo backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with a pooled transport and the given timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}
	return NewClientWithHTTP(baseURL, &http.Client{
		Transport: transport,
		Timeout:   timeout,
	})
}

// NewClientWithHTTP creates a client on top of an existing http.Client.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// BaseURL returns the backend origin without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) joinURL(path string, query url.Values) string {
	u := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		u = c.baseURL + path
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do sends one request. body is JSON-encoded when non-nil; out, when
// non-nil, receives the decoded JSON response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.joinURL(path, query), reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       text,
		}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
