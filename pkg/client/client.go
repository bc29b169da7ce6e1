package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jpillora/backoff"
	"github.com/raykavin/backview/pkg/logger"
	"github.com/raykavin/backview/pkg/logger/zerolog"
	"github.com/raykavin/backview/pkg/result"
)

var ErrEmptyEndpoint = errors.New("backtest endpoint not configured")

// APIError is a non retryable answer of the backtest endpoint
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backtest endpoint returned %d: %s", e.StatusCode, e.Body)
}

// Runner runs a backtest and returns its result array
type Runner interface {
	Run(ctx context.Context, req Request) (result.Array, error)
}

type Client struct {
	endpoint   string
	httpClient *http.Client
	maxRetries int
	backoff    *backoff.Backoff
	log        logger.Logger
}

type Option func(*Client)

// WithHTTPClient sets the transport client, nil keeps the default one
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithTimeout limits each attempt. It works on a copy so a client passed
// through WithHTTPClient is left untouched.
func WithTimeout(timeout time.Duration) Option {
	return func(client *Client) {
		var c http.Client
		if client.httpClient != nil {
			c = *client.httpClient
		}
		c.Timeout = timeout
		client.httpClient = &c
	}
}

// WithRetries sets how many times a failed attempt is repeated and the
// wait bounds between attempts
func WithRetries(maxRetries int, minWait, maxWait time.Duration) Option {
	return func(client *Client) {
		client.maxRetries = maxRetries
		client.backoff = &backoff.Backoff{Min: minWait, Max: maxWait, Factor: 2, Jitter: true}
	}
}

func WithLogger(log logger.Logger) Option {
	return func(client *Client) {
		client.log = log
	}
}

func New(endpoint string, options ...Option) *Client {
	client := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		maxRetries: 3,
		backoff: &backoff.Backoff{
			Min: 500 * time.Millisecond,
			Max: 10 * time.Second,
		},
		log: zerolog.Nop(),
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// Run validates req, posts it and decodes the {"data": [...]} answer.
// Transport errors and 5xx answers are retried; other statuses are
// returned as *APIError right away.
func (c *Client) Run(ctx context.Context, req Request) (result.Array, error) {
	if c.endpoint == "" {
		return nil, ErrEmptyEndpoint
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	// each call waits on its own schedule
	wait := *c.backoff
	wait.Reset()

	for attempt := 0; ; attempt++ {
		arr, err := c.post(ctx, body)
		if err == nil {
			return arr, nil
		}

		var apiErr *APIError
		retryable := !errors.As(err, &apiErr) || apiErr.StatusCode >= http.StatusInternalServerError
		if errors.Is(err, result.ErrMalformedPayload) || ctx.Err() != nil {
			retryable = false
		}
		if !retryable || attempt >= c.maxRetries {
			return nil, err
		}

		delay := wait.Duration()
		c.log.WithError(err).WithFields(map[string]any{
			"attempt": attempt + 1,
			"delay":   delay.String(),
		}).Warn("backtest request failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *Client) post(ctx context.Context, body []byte) (result.Array, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("post backtest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		content, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(content))}
	}

	arr, err := result.Decode(resp.Body)
	if err != nil {
		return nil, err
	}

	c.log.WithField("entries", len(arr)).Debug("backtest result received")
	return arr, nil
}
