// Package hours is the client for the remote hours service: bulk week
// fetches plus the create/update/delete/reassign calls the reconciliation
// engine issues for individual grid edits.
package hours

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/hourdeck/hourdeck/internal/domain"
)

// Client provides access to the remote hours service.
type Client interface {
	// FetchWeek retrieves the catalogs and entries for the week starting at
	// weekStart.
	FetchWeek(ctx context.Context, weekStart time.Time) (*WeekPayload, error)

	// SaveEntry creates (empty req.ID) or updates an entry and returns the
	// stored record.
	SaveEntry(ctx context.Context, req EntryRequest) (*EntryRecord, error)

	// DeleteEntry removes the entry with the given id.
	DeleteEntry(ctx context.Context, id string) error

	// ReassignOwner rebinds every entry owned by one entity to another.
	ReassignOwner(ctx context.Context, req ReassignRequest) error

	// Available checks whether the hours service is reachable.
	Available(ctx context.Context) bool
}

// httpClient implements Client over the service's HTTP API.
type httpClient struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewClient creates a Client that talks to the configured hours service.
func NewClient(cfg Config, observer Observer) Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &httpClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

func (c *httpClient) FetchWeek(ctx context.Context, weekStart time.Time) (*WeekPayload, error) {
	var payload WeekPayload
	target := fmt.Sprintf("%s/?week_start=%s",
		c.cfg.Endpoint, url.QueryEscape(weekStart.Format(domain.DateLayout)))

	err := c.call(ctx, OpFetch, http.MethodGet, target, nil, &payload)
	if err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *httpClient) SaveEntry(ctx context.Context, req EntryRequest) (*EntryRecord, error) {
	op := OpCreate
	if req.ID != "" {
		op = OpUpdate
	}

	var stored EntryRecord
	if err := c.call(ctx, op, http.MethodPost, c.cfg.Endpoint+"/", req, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (c *httpClient) DeleteEntry(ctx context.Context, id string) error {
	target := fmt.Sprintf("%s/%s/", c.cfg.Endpoint, url.PathEscape(id))
	return c.call(ctx, OpDelete, http.MethodDelete, target, nil, nil)
}

func (c *httpClient) ReassignOwner(ctx context.Context, req ReassignRequest) error {
	return c.call(ctx, OpReassign, http.MethodPost, c.cfg.Endpoint+"/reassign/", req, nil)
}

// call runs one logical operation with timeout, retries, and telemetry.
// out, when non-nil, receives the decoded JSON response body.
func (c *httpClient) call(ctx context.Context, op Op, method, target string, body any, out any) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	var lastErr error
	attempts := 1 + c.cfg.MaxRetries

	for i := 0; i < attempts; i++ {
		err := c.doRequest(ctx, method, target, body, out)
		if err == nil {
			c.observer.OnCallComplete(CallEvent{
				Op:        op,
				LatencyMs: time.Since(start).Milliseconds(),
				Success:   true,
			})
			return nil
		}
		lastErr = err

		// Client errors are the server telling us the edit is invalid.
		// Retrying cannot change that answer.
		var remote *RemoteError
		if errors.As(err, &remote) && remote.ClientError() {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	err := classify(ctx, lastErr)
	c.observer.OnCallComplete(CallEvent{
		Op:        op,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   false,
		ErrorCode: errorCode(err),
	})
	return err
}

func (c *httpClient) doRequest(ctx context.Context, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return &RemoteError{
			StatusCode: httpResp.StatusCode,
			Body:       string(bytes.TrimSpace(respBody)),
		}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func (c *httpClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"/ping/", nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ErrTimeout
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return err
	}
	if isConnectionError(err) {
		return ErrUnavailable
	}
	return fmt.Errorf("%w: %v", ErrRetryExhausted, err)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
