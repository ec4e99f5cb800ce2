// Package shortlink calls a URL shortening service of the
// "GET <endpoint>?url=<long>" kind that answers with the short URL as plain
// text.
package shortlink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnavailable is returned when no endpoint is configured.
var ErrUnavailable = errors.New("shortlink: service not configured")

const defaultTimeout = 5 * time.Second

// Client shortens URLs through Endpoint.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

func New(endpoint string) *Client {
	return &Client{
		Endpoint: strings.TrimSpace(endpoint),
		HTTP:     &http.Client{Timeout: defaultTimeout},
	}
}

// Shorten returns the short URL for longURL.
func (c *Client) Shorten(ctx context.Context, longURL string) (string, error) {
	if c == nil || c.Endpoint == "" {
		return "", ErrUnavailable
	}
	endpoint, err := url.Parse(c.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse shortlink endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("url", longURL)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build shortlink request: %w", err)
	}
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("shorten url: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("shorten url: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if err != nil {
		return "", fmt.Errorf("read shortlink response: %w", err)
	}
	short := strings.TrimSpace(string(body))
	if _, err := url.ParseRequestURI(short); err != nil {
		return "", fmt.Errorf("shortlink response is not a url: %q", short)
	}
	return short, nil
}
