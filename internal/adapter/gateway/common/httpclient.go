package common

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

type Client struct {
	Base    string
	HC      *http.Client
	Opts    Options
	Headers http.Header // applied to every request
}

func New(base string) *Client {
	return NewWith(base, DefaultOptionsFromEnv())
}

func NewWith(base string, o Options) *Client {
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	return &Client{
		Base: base,
		Opts: o,
		HC: &http.Client{
			Timeout: o.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
				MaxIdleConns: 100, IdleConnTimeout: 90 * time.Second,
			},
		},
		Headers: http.Header{},
	}
}

// GetJSON fetches Base+path and decodes the body into v, retrying transient
// failures per Opts (429/5xx/network errors, honoring Retry-After).
func (c *Client) GetJSON(ctx context.Context, path string, h http.Header, v any) error {
	var lastErr error
	retryAfter := ""
	for attempt := 0; attempt <= c.Opts.Retries; attempt++ {
		if attempt > 0 {
			d := computeBackoff(c.Opts.BackoffMin, c.Opts.BackoffMax, attempt-1, retryAfter)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
			}
		}
		status, ra, err := c.getOnce(ctx, path, h, v)
		if err == nil {
			return nil
		}
		lastErr = err
		retryAfter = ra
		if !shouldRetry(status, errUnlessHTTP(status, err)) {
			return err
		}
	}
	return lastErr
}

// errUnlessHTTP: a non-2xx response is a status-driven retry decision,
// not a transport error.
func errUnlessHTTP(status int, err error) error {
	if status != 0 {
		return nil
	}
	return err
}

func (c *Client) getOnce(ctx context.Context, path string, h http.Header, v any) (status int, retryAfter string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+path, nil)
	if err != nil {
		return 0, "", err
	}
	for k, vals := range c.Headers {
		for _, hv := range vals {
			req.Header.Add(k, hv)
		}
	}
	for k, vals := range h {
		for _, hv := range vals {
			req.Header.Set(k, hv)
		}
	}
	if c.Opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.Opts.UserAgent)
	}

	res, err := c.HC.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return res.StatusCode, headerRetryAfter(res.Header), fmt.Errorf("http %d: %s", res.StatusCode, string(b))
	}
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return 0, "", fmt.Errorf("decode: %w", err)
	}
	return res.StatusCode, "", nil
}
