package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/paychain/internal/logging"
	"github.com/google/uuid"
)

const (
	DefaultReportQueue = 64

	logErrorPath  = "/api/log-error"
	reportTimeout = 5 * time.Second
)

// ErrorReport is one failed request as forwarded to the backend.
type ErrorReport struct {
	ID        string    `json:"id"`
	Status    int       `json:"status"`
	Method    string    `json:"method"`
	URL       string    `json:"url"`
	Message   string    `json:"message,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ReportStats struct {
	Sent    int64
	Failed  int64
	Dropped int64
}

// Reporter forwards error reports on a single background worker. Reports
// that do not fit in the queue are dropped; delivery failures are counted
// and logged, never returned.
type Reporter struct {
	url  string
	http *http.Client
	log  logging.Logger

	queue chan ErrorReport
	done  chan struct{}

	mu     sync.RWMutex
	closed bool

	sent, failed, dropped atomic.Int64
}

func NewReporter(baseURL string, hc *http.Client, l logging.Logger, size int) *Reporter {
	if size <= 0 {
		size = DefaultReportQueue
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	r := &Reporter{
		url:   baseURL + logErrorPath,
		http:  hc,
		log:   l,
		queue: make(chan ErrorReport, size),
		done:  make(chan struct{}),
	}
	go r.run()
	return r
}

// Report enqueues rep without blocking.
func (r *Reporter) Report(rep ErrorReport) {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.dropped.Add(1)
		return
	}
	select {
	case r.queue <- rep:
	default:
		r.dropped.Add(1)
	}
}

func (r *Reporter) run() {
	defer close(r.done)
	for rep := range r.queue {
		if err := r.send(rep); err != nil {
			r.failed.Add(1)
			r.log.Debug(context.Background(), "error report not delivered", "id", rep.ID, "error", err)
			continue
		}
		r.sent.Add(1)
	}
}

func (r *Reporter) send(rep ErrorReport) error {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	b, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("log-error returned %d", resp.StatusCode)
	}
	return nil
}

func (r *Reporter) Stats() ReportStats {
	return ReportStats{
		Sent:    r.sent.Load(),
		Failed:  r.failed.Load(),
		Dropped: r.dropped.Load(),
	}
}

// Close stops accepting reports and waits for the queue to drain.
func (r *Reporter) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	<-r.done
}
