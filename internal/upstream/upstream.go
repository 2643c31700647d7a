// Package upstream is the shared HTTP plumbing for the external
// medicine API. Every response from that service follows the
// {success, data?, message?} envelope; domain clients decode into
// their own envelope structs and use Failure to turn a refusal into an
// error.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	http    *http.Client
	token   func() string
}

// NewClient wires a client against baseURL. token, when non-nil, is
// consulted per request for a bearer token; an empty result sends the
// request unauthenticated.
func NewClient(baseURL string, token func() string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base url is empty")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   token,
	}, nil
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if t := c.token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	// The upstream reports refusals inside the envelope, so the body
	// is decoded regardless of status; only an undecodable error
	// response falls back to the status code.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("upstream returned status %d for %s", resp.StatusCode, path)
		}
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// Failure builds the error for an envelope with success=false, using
// the upstream message when one was provided.
func Failure(op, message string) error {
	if message == "" {
		message = "upstream request failed"
	}
	return fmt.Errorf("%s: %s", op, message)
}
