package news

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"localnews/internal/logger"
	"localnews/internal/request"
)

const singleArticleBody = `{"response":{"results":[{"webTitle":"T1","sectionName":"S1","webUrl":"http://x","webPublicationDate":"2023-01-02T03:04:05Z","tags":[{"webTitle":"A1"}]}]}}`

// MockFetcher implements BodyFetcher for testing.
type MockFetcher struct {
	FetchFunc func(ctx context.Context, rawURL string) (string, error)
	calls     atomic.Int32
}

func (m *MockFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	m.calls.Add(1)

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, rawURL)
	}

	return "", nil
}

func newTestClient(fetcher BodyFetcher) *Client {
	return NewClientWithDeps(fetcher, NewParser(), nil)
}

func TestClient_FetchArticles_Success(t *testing.T) {
	var requested string

	mock := &MockFetcher{
		FetchFunc: func(ctx context.Context, rawURL string) (string, error) {
			requested = rawURL

			return singleArticleBody, nil
		},
	}

	result, err := newTestClient(mock).FetchArticles(context.Background(), request.DefaultEndpoint, request.NewConfig("news", request.OrderNewest, "secret"))
	if err != nil {
		t.Fatalf("FetchArticles failed: %v", err)
	}

	if !result.OK() || result.Failure != FailureNone {
		t.Fatalf("Expected success, got failure %s (%v)", result.Failure, result.Err)
	}

	if len(result.Articles) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(result.Articles))
	}

	a := result.Articles[0]
	if a.Title != "T1" || a.Author != "A1" || a.Section != "S1" || a.URL != "http://x" {
		t.Errorf("Unexpected article: %+v", a)
	}

	if a.DisplayDate() != "Jan 02, 2023" {
		t.Errorf("Expected 'Jan 02, 2023', got '%s'", a.DisplayDate())
	}

	if !strings.Contains(requested, "api-key=secret") {
		t.Errorf("Expected the real key in the request, got %s", requested)
	}

	if strings.Contains(result.RequestURL, "secret") {
		t.Errorf("Result URL must be redacted, got %s", result.RequestURL)
	}
}

func TestClient_FetchArticles_InvalidConfiguration(t *testing.T) {
	mock := &MockFetcher{}

	result, err := newTestClient(mock).FetchArticles(context.Background(), "not-a-url", request.NewConfig("", request.OrderNewest, "k"))
	if !errors.Is(err, request.ErrInvalidConfiguration) {
		t.Fatalf("Expected ErrInvalidConfiguration, got %v", err)
	}

	if mock.calls.Load() != 0 {
		t.Error("No network attempt expected for invalid configuration")
	}

	if result.Articles == nil || len(result.Articles) != 0 {
		t.Errorf("Expected empty article list, got %v", result.Articles)
	}
}

func TestClient_FetchArticles_Failures(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		fetchErr    error
		wantFailure Failure
		wantErr     bool
	}{
		{name: "network", fetchErr: &NetworkError{Cause: errors.New("connection reset")}, wantFailure: FailureNoConnection, wantErr: true},
		{name: "http", fetchErr: &HTTPError{StatusCode: 500}, wantFailure: FailureHTTPError, wantErr: true},
		{name: "too large", fetchErr: ErrResponseTooLarge, wantFailure: FailureHTTPError, wantErr: true},
		{name: "cancelled", fetchErr: context.Canceled, wantFailure: FailureNoConnection, wantErr: true},
		{name: "malformed", body: "{", wantFailure: FailureParseError, wantErr: true},
		{name: "missing results", body: `{"response":{}}`, wantFailure: FailureParseError, wantErr: true},
		{name: "empty results", body: `{"response":{"results":[]}}`, wantFailure: FailureEmpty},
		{name: "empty body", body: "", wantFailure: FailureEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockFetcher{
				FetchFunc: func(ctx context.Context, rawURL string) (string, error) {
					return tt.body, tt.fetchErr
				},
			}

			result, err := newTestClient(mock).FetchArticles(context.Background(), request.DefaultEndpoint, request.NewConfig("", request.OrderNewest, "k"))
			if err != nil {
				t.Fatalf("Expected failure to be classified, got error %v", err)
			}

			if result.Failure != tt.wantFailure {
				t.Errorf("Expected failure %s, got %s", tt.wantFailure, result.Failure)
			}

			if (result.Err != nil) != tt.wantErr {
				t.Errorf("Expected Err present=%v, got %v", tt.wantErr, result.Err)
			}

			if result.Articles == nil || len(result.Articles) != 0 {
				t.Errorf("Expected empty article list, got %v", result.Articles)
			}

			if result.OK() {
				t.Error("Expected OK() to be false")
			}
		})
	}
}

func TestClient_FetchArticles_HTTP404(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := NewClientWithDeps(NewFetcher(), NewParser(), nil)

	result, err := client.FetchArticles(context.Background(), server.URL+"/search", request.NewConfig("x", request.OrderNewest, "k"))
	if err != nil {
		t.Fatalf("FetchArticles failed: %v", err)
	}

	if result.Failure != FailureHTTPError {
		t.Errorf("Expected http-error, got %s", result.Failure)
	}

	var httpErr *HTTPError
	if !errors.As(result.Err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected HTTPError{404}, got %v", result.Err)
	}

	if len(result.Articles) != 0 {
		t.Errorf("Expected no articles, got %d", len(result.Articles))
	}
}

func TestClient_FetchAsync(t *testing.T) {
	mock := &MockFetcher{
		FetchFunc: func(ctx context.Context, rawURL string) (string, error) {
			return singleArticleBody, nil
		},
	}

	outcomes := newTestClient(mock).FetchAsync(context.Background(), request.DefaultEndpoint, request.NewConfig("", request.OrderNewest, "k"))

	outcome, ok := <-outcomes
	if !ok {
		t.Fatal("Expected one outcome")
	}

	if outcome.Err != nil || len(outcome.Result.Articles) != 1 {
		t.Errorf("Unexpected outcome: %+v", outcome)
	}

	if _, ok := <-outcomes; ok {
		t.Error("Expected channel to be closed after one outcome")
	}
}

func TestClient_FetchArticles_NetworkErrorHidesAPIKey(t *testing.T) {
	const apiKey = "TOPSECRETKEY"

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to reserve port: %v", err)
	}

	addr := listener.Addr().String()
	_ = listener.Close()

	var buf bytes.Buffer

	client := NewClientWithDeps(NewFetcher(), NewParser(), logger.NewLoggerWithWriter("debug", &buf))

	result, err := client.FetchArticles(context.Background(), "http://"+addr+"/search", request.NewConfig("news", request.OrderNewest, apiKey))
	if err != nil {
		t.Fatalf("FetchArticles failed: %v", err)
	}

	if result.Failure != FailureNoConnection {
		t.Fatalf("Expected no-connection, got %s (%v)", result.Failure, result.Err)
	}

	if result.Err == nil {
		t.Fatal("Expected the fetch error to be reported")
	}

	if strings.Contains(result.Err.Error(), apiKey) {
		t.Errorf("API key leaked into Result.Err: %v", result.Err)
	}

	if !strings.Contains(result.Err.Error(), "api-key=REDACTED") {
		t.Errorf("Expected redacted URL in error, got: %v", result.Err)
	}

	if strings.Contains(buf.String(), apiKey) {
		t.Errorf("API key leaked into logs:\n%s", buf.String())
	}

	if !strings.Contains(buf.String(), "Fetch failed") {
		t.Errorf("Expected fetch failure to be logged, got:\n%s", buf.String())
	}
}
