// Package rest implements ledger.Store against the /api/transactions REST
// resource.
package rest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"cashbook/internal/core"
	"cashbook/internal/ledger"
	"cashbook/internal/log"
)

// maxBody caps how much of a response is read into memory.
const maxBody = 8 << 20

// StatusError reports a non-2xx response from the store.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is makes a 404 match ledger.ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ledger.ErrNotFound && e.Code == http.StatusNotFound
}

// Client talks to a transaction store over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// NewClient creates a client for the collection URL, e.g.
// http://localhost:8080/api/transactions.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  log.New(log.DefaultConfig()).WithComponent(log.ComponentLedger),
	}
}

// WithLogger replaces the logger used for skipped records and call timings.
func (c *Client) WithLogger(logger *log.Logger) *Client {
	c.logger = logger
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// List fetches every transaction. Records the dashboard cannot display
// faithfully (negative amounts, unknown types, bad dates) are dropped and
// logged instead of being shown with a wrong sign.
func (c *Client) List(ctx context.Context) ([]core.Transaction, error) {
	body, err := c.do(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}
	records, err := ledger.DecodeRecords(body)
	if err != nil {
		return nil, err
	}

	out := make([]core.Transaction, 0, len(records))
	for _, rec := range records {
		t, err := rec.Transaction()
		if err == nil {
			err = t.CheckStored()
		}
		if err != nil {
			c.logger.WarnContext(ctx, "Skipping invalid transaction record", "id", rec.ID, log.FieldError, err)
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = ""
	return c.write(ctx, http.MethodPost, c.baseURL, t)
}

func (c *Client) Update(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	t.ID = ""
	updated, err := c.write(ctx, http.MethodPut, c.itemURL(id), t)
	if err != nil {
		return core.Transaction{}, err
	}
	if updated.ID == "" {
		updated.ID = id
	}
	return updated, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.itemURL(id), nil)
	return err
}

// Exists looks the id up in the collection; the REST surface has no
// dedicated existence endpoint.
func (c *Client) Exists(ctx context.Context, id string) (bool, error) {
	items, err := c.List(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range items {
		if t.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// Ping issues a HEAD on the collection; any 2xx means the store is up.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodHead, c.baseURL, nil)
	return err
}

func (c *Client) write(ctx context.Context, method, target string, t core.Transaction) (core.Transaction, error) {
	payload, err := json.Marshal(ledger.FromTransaction(t))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("encode transaction: %w", err)
	}
	body, err := c.do(ctx, method, target, payload)
	if err != nil {
		return core.Transaction{}, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return t, nil
	}
	var rec ledger.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return core.Transaction{}, fmt.Errorf("decode %s response: %w", method, err)
	}
	return rec.Transaction()
}

func (c *Client) do(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", method, err)
	}
	c.logger.DebugContext(ctx, "Store call completed",
		"method", method,
		"url", target,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method: method,
			URL:    target,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}
	return body, nil
}

func (c *Client) itemURL(id string) string {
	return c.baseURL + "/" + url.PathEscape(id)
}

// IsUnavailable reports whether err comes from the transport rather than
// from a response of the store.
func IsUnavailable(err error) bool {
	var se *StatusError
	return err != nil && !errors.As(err, &se)
}
