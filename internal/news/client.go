package news

import (
	"context"
	"errors"
	"fmt"
	"time"

	"localnews/internal/logger"
	"localnews/internal/models"
	"localnews/internal/request"
)

// Failure classifies why a pipeline run produced no articles.
type Failure string

// Failure classifications.
const (
	FailureNone         Failure = "none"
	FailureNoConnection Failure = "no-connection"
	FailureHTTPError    Failure = "http-error"
	FailureParseError   Failure = "parse-error"
	FailureEmpty        Failure = "empty"
)

// BodyFetcher retrieves the raw body for a request URL.
type BodyFetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Result is the outcome of one pipeline run.
type Result struct {
	// Err holds the fetch or parse failure behind Failure, for logging.
	Err error
	// RequestURL is the request URL with the API key redacted.
	RequestURL string
	Failure    Failure
	Articles   []models.Article
	Page       Page
	Duration   time.Duration
}

// OK reports whether the run produced articles.
func (r Result) OK() bool {
	return r.Failure == FailureNone
}

// Outcome is delivered by asynchronous runs.
type Outcome struct {
	Err    error
	Result Result
}

// Client runs the build, fetch and parse pipeline.
type Client struct {
	fetcher BodyFetcher
	parser  *Parser
	log     *logger.Logger
}

// NewClient creates a pipeline client with default dependencies.
func NewClient(log *logger.Logger) *Client {
	return NewClientWithDeps(NewFetcher(), NewParser(), log)
}

// NewClientWithDeps creates a pipeline client with injected dependencies.
func NewClientWithDeps(fetcher BodyFetcher, parser *Parser, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}

	return &Client{
		fetcher: fetcher,
		parser:  parser,
		log:     log,
	}
}

// FetchArticles builds the request URL, fetches it and parses the body.
// Only configuration errors are returned as errors; fetch and parse failures
// are reported through Result.Failure with an empty article list.
func (c *Client) FetchArticles(ctx context.Context, baseEndpoint string, cfg request.Config) (Result, error) {
	result := Result{Articles: []models.Article{}}

	u, err := request.Build(baseEndpoint, cfg)
	if err != nil {
		return result, fmt.Errorf("failed to build request: %w", err)
	}

	result.RequestURL = request.Redact(u)
	log := c.log.With("url", result.RequestURL)

	startTime := time.Now()
	body, err := c.fetcher.Fetch(ctx, u.String())
	result.Duration = time.Since(startTime)

	if err != nil {
		result.Failure = classifyFetchError(err)
		result.Err = err
		log.Warn("Fetch failed", "failure", result.Failure, "error", err, "duration", result.Duration)

		return result, nil
	}

	log.Debug("Fetched response", "bytes", len(body), "duration", result.Duration)

	page, err := c.parser.ParsePage(body)
	result.Page = page
	result.Articles = page.Articles

	if err != nil {
		result.Failure = FailureParseError
		result.Err = err
		log.Error("Problem parsing the article JSON results", "error", err)

		return result, nil
	}

	if page.Skipped > 0 {
		log.Warn("Skipped malformed result elements", "skipped", page.Skipped)
	}

	if len(result.Articles) == 0 {
		result.Failure = FailureEmpty
		log.Info("No articles found")

		return result, nil
	}

	result.Failure = FailureNone
	log.Info("Fetched articles", "count", len(result.Articles), "total", page.Total)

	return result, nil
}

// FetchAsync runs FetchArticles on a new goroutine and delivers exactly one
// Outcome on the returned channel.
func (c *Client) FetchAsync(ctx context.Context, baseEndpoint string, cfg request.Config) <-chan Outcome {
	out := make(chan Outcome, 1)

	go func() {
		defer close(out)

		result, err := c.FetchArticles(ctx, baseEndpoint, cfg)
		out <- Outcome{Result: result, Err: err}
	}()

	return out
}

func classifyFetchError(err error) Failure {
	var netErr *NetworkError

	var httpErr *HTTPError

	switch {
	case errors.As(err, &netErr):
		return FailureNoConnection
	case errors.As(err, &httpErr):
		return FailureHTTPError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureNoConnection
	default:
		// ErrResponseTooLarge and anything unrecognised: the service answered
		// but not with something usable.
		return FailureHTTPError
	}
}
