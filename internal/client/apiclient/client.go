package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/paychain/internal/logging"
	"github.com/google/uuid"
)

const (
	DefaultBaseURL = "http://localhost:8000"

	headerRequestID = "X-Request-ID"
	maxErrorBody    = 64 << 10
)

// CredentialStore is where the bearer token lives.
type CredentialStore interface {
	Token(ctx context.Context) (string, error)
	ClearToken(ctx context.Context) error
}

// ErrorSink receives error reports. Report must not block.
type ErrorSink interface {
	Report(r ErrorReport)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCredentials sets where the bearer token is read from and cleared.
func WithCredentials(cs CredentialStore) Option {
	return func(c *Client) { c.creds = cs }
}

// WithLogger sets the logger for request failures. The default discards.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithErrorSink replaces the built-in Reporter. The client will not close it.
func WithErrorSink(s ErrorSink) Option {
	return func(c *Client) { c.sink = s }
}

// WithUnauthorizedHandler sets the hook run after a 401 has cleared the
// credential, typically sending the user back to the login prompt.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithReportQueue sizes the built-in Reporter's queue.
func WithReportQueue(n int) Option {
	return func(c *Client) { c.reportQueue = n }
}

// Client talks to the PayChain REST backend. It is safe for concurrent use.
type Client struct {
	baseURL        string
	http           *http.Client
	creds          CredentialStore
	log            logging.Logger
	sink           ErrorSink
	reporter       *Reporter
	reportQueue    int
	onUnauthorized func(ctx context.Context)
}

// New builds a Client for baseURL ("" means DefaultBaseURL). Unless an
// ErrorSink is supplied, a Reporter is started; release it with Close.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        http.DefaultClient,
		log:         logging.NewNop(),
		reportQueue: DefaultReportQueue,
	}
	for _, o := range opts {
		o(c)
	}
	if c.sink == nil {
		c.reporter = NewReporter(c.baseURL, c.http, c.log, c.reportQueue)
		c.sink = c.reporter
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Reporter returns the built-in reporter, or nil when an ErrorSink was given.
func (c *Client) Reporter() *Reporter { return c.reporter }

// Close drains and stops the built-in reporter.
func (c *Client) Close() error {
	if c.reporter != nil {
		c.reporter.Close()
	}
	return nil
}

func (c *Client) token(ctx context.Context) string {
	if c.creds == nil {
		return ""
	}
	tok, err := c.creds.Token(ctx)
	if err != nil {
		c.log.Warn(ctx, "credential unreadable, sending request without it", "error", err)
		return ""
	}
	return tok
}

// do performs one request. body is JSON-encoded when non-nil; out receives
// the decoded response when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	rid := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, rid)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		c.log.Warn(ctx, "api request failed", "method", method, "url", u, "error", err)
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.fail(ctx, req, resp, rid)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %s %s: %v", ErrBadPayload, method, path, err)
	}
	return nil
}

func (c *Client) fail(ctx context.Context, req *http.Request, resp *http.Response, rid string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	herr := &HTTPError{
		StatusCode: resp.StatusCode,
		Method:     req.Method,
		URL:        req.URL.Path,
		Message:    errorMessage(raw, resp.StatusCode),
		RequestID:  rid,
	}

	c.log.Error(ctx, "api error response",
		"status", herr.StatusCode, "method", herr.Method, "url", herr.URL, "request_id", rid)
	c.sink.Report(ErrorReport{
		Status:    herr.StatusCode,
		Method:    herr.Method,
		URL:       herr.URL,
		Message:   herr.Message,
		RequestID: rid,
		Timestamp: time.Now().UTC(),
	})

	if resp.StatusCode == http.StatusUnauthorized {
		c.unauthorized(ctx)
	}
	return herr
}

// unauthorized ignores cancellation of ctx; the credential must be cleared.
func (c *Client) unauthorized(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if c.creds != nil {
		if err := c.creds.ClearToken(ctx); err != nil {
			c.log.Error(ctx, "failed to clear credential after 401", "error", err)
		}
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func escape(id fmt.Stringer) string { return url.PathEscape(id.String()) }
