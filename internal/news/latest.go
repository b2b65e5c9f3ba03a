package news

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"localnews/internal/logger"
	"localnews/internal/request"
)

// Loader runs queries so that only the newest one reaches the display.
// Submitting a query supersedes the previous one: its context is cancelled
// and, should it still complete, its outcome is dropped.
type Loader struct {
	client     *Client
	log        *logger.Logger
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	generation atomic.Uint64
	dropped    atomic.Int64
	mu         sync.Mutex
	deliverMu  sync.Mutex
}

// NewLoader creates a loader around client.
func NewLoader(client *Client, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Discard()
	}

	return &Loader{
		client: client,
		log:    log,
	}
}

// Submit starts a query and returns its ID. deliver is called at most once,
// from the query's goroutine, and only if no newer query was submitted before
// this one completed. deliver may call Submit.
func (l *Loader) Submit(ctx context.Context, baseEndpoint string, cfg request.Config, deliver func(Outcome)) string {
	queryID := uuid.NewString()

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	gen := l.generation.Add(1)
	l.wg.Add(1)
	l.mu.Unlock()

	log := l.log.With("query_id", queryID)
	log.Debug("Query submitted", "search_term", cfg.SearchTerm, "order_by", cfg.OrderBy)

	go func() {
		defer l.wg.Done()
		defer cancel()

		result, err := l.client.FetchArticles(runCtx, baseEndpoint, cfg)

		l.deliverMu.Lock()
		defer l.deliverMu.Unlock()

		if l.generation.Load() != gen {
			l.dropped.Add(1)
			log.Debug("Discarding stale result", "failure", result.Failure)

			return
		}

		deliver(Outcome{Result: result, Err: err})
	}()

	return queryID
}

// Dropped returns how many stale outcomes have been discarded.
func (l *Loader) Dropped() int64 {
	return l.dropped.Load()
}

// Stop cancels the in-flight query, if any, and supersedes it.
func (l *Loader) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.generation.Add(1)

	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// Wait blocks until every submitted query has finished.
func (l *Loader) Wait() {
	l.wg.Wait()
}
