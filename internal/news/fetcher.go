// Package news fetches articles from the content API and parses them into models.
package news

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"localnews/internal/request"
	"localnews/pkg/utils"
)

// Default transport settings.
const (
	DefaultConnectTimeout = 15000 * time.Millisecond
	DefaultReadTimeout    = 10000 * time.Millisecond
	DefaultMaxBodyKb      = 4096
)

// FetchOptions configures a Fetcher.
type FetchOptions struct {
	UserAgent      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	MaxBodyKb      int
}

// DefaultFetchOptions returns the standard timeouts and limits.
func DefaultFetchOptions() FetchOptions {
	return FetchOptions{
		UserAgent:      utils.DefaultUserAgent,
		ConnectTimeout: DefaultConnectTimeout,
		ReadTimeout:    DefaultReadTimeout,
		MaxBodyKb:      DefaultMaxBodyKb,
	}
}

// Fetcher performs single-attempt GET requests against the content API.
type Fetcher struct {
	client       *http.Client
	headers      *utils.HTTPHelper
	maxBodyBytes int64
}

// NewFetcher creates a fetcher with default options.
func NewFetcher() *Fetcher {
	return NewFetcherWithOptions(DefaultFetchOptions())
}

// NewFetcherWithOptions creates a fetcher with custom timeouts and limits.
// Zero values fall back to the defaults.
func NewFetcherWithOptions(opts FetchOptions) *Fetcher {
	defaults := DefaultFetchOptions()
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaults.ConnectTimeout
	}

	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaults.ReadTimeout
	}

	if opts.MaxBodyKb <= 0 {
		opts.MaxBodyKb = defaults.MaxBodyKb
	}

	dialer := &net.Dialer{
		Timeout:   opts.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	readTimeout := opts.ReadTimeout

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}

			return &readDeadlineConn{Conn: conn, timeout: readTimeout}, nil
		},
		ForceAttemptHTTP2:     true,
		TLSHandshakeTimeout:   opts.ConnectTimeout,
		ResponseHeaderTimeout: opts.ReadTimeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          10,
	}

	return &Fetcher{
		client: &http.Client{
			Transport: transport,
		},
		headers:      utils.NewHTTPHelper(opts.UserAgent),
		maxBodyBytes: int64(opts.MaxBodyKb) * 1024,
	}
}

// FetchWithMetrics returns (body, statusCode, duration, error).
func (f *Fetcher) FetchWithMetrics(ctx context.Context, rawURL string) (string, int, time.Duration, error) {
	if rawURL == "" {
		return "", 0, 0, ErrInvalidRequest
	}

	if !f.headers.IsValidURL(rawURL) {
		return "", 0, 0, fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrInvalidRequest, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	req.Header = f.headers.BuildHeaders(nil)

	startTime := time.Now()

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, time.Since(startTime), &NetworkError{Cause: redactURLError(err, req.URL)}
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		return "", resp.StatusCode, time.Since(startTime), &HTTPError{StatusCode: resp.StatusCode}
	}

	// Read one byte past the limit to detect oversized bodies.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	duration := time.Since(startTime)

	if err != nil {
		return "", resp.StatusCode, duration, &NetworkError{Cause: fmt.Errorf("failed to read response body: %w", redactURLError(err, req.URL))}
	}

	if int64(len(body)) > f.maxBodyBytes {
		return "", resp.StatusCode, duration, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, f.maxBodyBytes)
	}

	return string(body), resp.StatusCode, duration, nil
}

// Fetch returns the body of a 200 response from rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	body, _, _, err := f.FetchWithMetrics(ctx, rawURL)

	return body, err
}

// redactURLError masks the api key in the URL that net/http embeds in its errors.
func redactURLError(err error, u *url.URL) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = request.Redact(u)
	}

	return err
}

// readDeadlineConn applies a fresh read deadline before every read, so a
// stalled response fails after the read timeout instead of hanging.
type readDeadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *readDeadlineConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}

	return c.Conn.Read(p)
}
