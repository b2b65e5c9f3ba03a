package news

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetcher_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}

		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Expected JSON accept header, got %s", r.Header.Get("Accept"))
		}

		if r.URL.Query().Get("q") != "climate" {
			t.Errorf("Expected query to be forwarded, got %s", r.URL.RawQuery)
		}

		_, _ = w.Write([]byte(`{"response":{"results":[]}}`))
	}))
	defer server.Close()

	body, status, _, err := NewFetcher().FetchWithMetrics(context.Background(), server.URL+"/search?q=climate")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if status != http.StatusOK {
		t.Errorf("Expected status 200, got %d", status)
	}

	if body != `{"response":{"results":[]}}` {
		t.Errorf("Unexpected body: %s", body)
	}
}

func TestFetcher_Fetch_HTTPError(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusUnauthorized, http.StatusInternalServerError, http.StatusNoContent} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"message":"nope"}`))
		}))

		body, err := NewFetcher().Fetch(context.Background(), server.URL)
		server.Close()

		var httpErr *HTTPError
		if !errors.As(err, &httpErr) {
			t.Fatalf("Status %d: expected *HTTPError, got %v", code, err)
		}

		if httpErr.StatusCode != code {
			t.Errorf("Expected status %d, got %d", code, httpErr.StatusCode)
		}

		if !errors.Is(err, ErrUnexpectedStatusCode) {
			t.Error("Expected HTTPError to match ErrUnexpectedStatusCode")
		}

		if body != "" {
			t.Errorf("Expected no body on status %d, got %q", code, body)
		}
	}
}

func TestFetcher_Fetch_InvalidRequest(t *testing.T) {
	fetcher := NewFetcher()

	for _, input := range []string{"", "not a url", "relative/path", "/search", "http://", "ftp://example.com/x", "mailto:news@example.com"} {
		_, err := fetcher.Fetch(context.Background(), input)
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("Fetch(%q): expected ErrInvalidRequest, got %v", input, err)
		}
	}
}

func TestFetcher_Fetch_ConnectionRefused(t *testing.T) {
	// Reserve a port, then close the listener so nothing is listening on it.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to reserve port: %v", err)
	}

	addr := listener.Addr().String()
	_ = listener.Close()

	_, err = NewFetcher().Fetch(context.Background(), "http://"+addr+"/search")

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Expected *NetworkError, got %v", err)
	}

	if netErr.Cause == nil {
		t.Error("Expected underlying cause to be retained")
	}
}

func TestFetcher_Fetch_ReadTimeout(t *testing.T) {
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"response":`))
		w.(http.Flusher).Flush()
		<-release
	}))
	defer server.Close()
	defer close(release)

	fetcher := NewFetcherWithOptions(FetchOptions{ReadTimeout: 100 * time.Millisecond})

	start := time.Now()
	_, err := fetcher.Fetch(context.Background(), server.URL)

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Expected *NetworkError, got %v", err)
	}

	if !netErr.Timeout() {
		t.Errorf("Expected a timeout, got %v", netErr.Cause)
	}

	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Read timeout not applied, took %v", elapsed)
	}
}

func TestFetcher_Fetch_HeaderTimeout(t *testing.T) {
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	fetcher := NewFetcherWithOptions(FetchOptions{ReadTimeout: 100 * time.Millisecond})

	_, err := fetcher.Fetch(context.Background(), server.URL)

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Expected *NetworkError, got %v", err)
	}
}

func TestFetcher_Fetch_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer server.Close()

	fetcher := NewFetcherWithOptions(FetchOptions{MaxBodyKb: 1})

	_, err := fetcher.Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("Expected ErrResponseTooLarge, got %v", err)
	}
}

func TestFetcher_Fetch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFetcher().Fetch(ctx, server.URL)

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Expected *NetworkError, got %v", err)
	}

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled cause, got %v", err)
	}
}
