// Package httpsubmit posts validated records to an HTTP endpoint and maps the
// response onto the submission rejection contract.
package httpsubmit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formsubmit/pkg/submission"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

// DefaultTimeout bounds a single submission when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a rejection body is read.
const maxErrorBody = 1 << 20

var (
	// ErrEndpointRequired is returned by New when endpoint is empty.
	ErrEndpointRequired = errors.New("httpsubmit: endpoint is required")
	// ErrUnexpectedStatus wraps non-2xx responses whose body carried no
	// usable messages.
	ErrUnexpectedStatus = errors.New("httpsubmit: unexpected status")
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the http.Client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout bounds each submission. Zero or negative disables the bound,
// leaving only the caller's context.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(name, value string) Option {
	return func(c *Client) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		c.headers.Set(name, value)
	}
}

// Client submits records as JSON.
type Client struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
	headers  http.Header
}

// New constructs a Client posting to endpoint.
func New(endpoint string, options ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}
	c := &Client{
		endpoint: endpoint,
		http:     http.DefaultClient,
		timeout:  DefaultTimeout,
		headers:  make(http.Header),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// Func adapts the client to submission.SubmitFunc.
func (c *Client) Func() submission.SubmitFunc {
	return c.Submit
}

// Endpoint reports the URL records are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit posts record. A 2xx response resolves. Any other status, or a
// transport failure, is returned as a *submission.RejectedError so the
// controller can surface the server's validation messages.
func (c *Client) Submit(ctx context.Context, record validation.Record) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("httpsubmit: encode record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("httpsubmit: build request: %w", err)
	}
	for name, values := range c.headers {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &submission.RejectedError{Cause: fmt.Errorf("httpsubmit: post: %w", err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &submission.RejectedError{Cause: fmt.Errorf("httpsubmit: read response: %w", err)}
	}
	return decodeRejection(resp.StatusCode, data)
}

// rejectionBody is the error envelope accepted from the backend. Errors may
// map a path to a single message or to a list.
type rejectionBody struct {
	ValidationErrors []string        `json:"validationErrors"`
	Errors           json.RawMessage `json:"errors"`
	Message          string          `json:"message"`
}

func decodeRejection(status int, data []byte) *submission.RejectedError {
	rejected := &submission.RejectedError{
		Cause: fmt.Errorf("%w %d", ErrUnexpectedStatus, status),
	}

	var body rejectionBody
	if len(bytes.TrimSpace(data)) == 0 || json.Unmarshal(data, &body) != nil {
		return rejected
	}

	rejected.Messages = append(rejected.Messages, body.ValidationErrors...)
	if msg := strings.TrimSpace(body.Message); msg != "" && len(body.ValidationErrors) == 0 {
		rejected.Messages = append(rejected.Messages, msg)
	}
	rejected.Fields = decodeFieldErrors(body.Errors)
	return rejected
}

func decodeFieldErrors(raw json.RawMessage) map[string][]string {
	if len(raw) == 0 {
		return nil
	}
	var lists map[string][]string
	if err := json.Unmarshal(raw, &lists); err == nil {
		return lists
	}
	var single map[string]string
	if err := json.Unmarshal(raw, &single); err == nil {
		out := make(map[string][]string, len(single))
		for key, msg := range single {
			out[key] = []string{msg}
		}
		return out
	}
	var form []string
	if err := json.Unmarshal(raw, &form); err == nil && len(form) > 0 {
		return map[string][]string{"": form}
	}
	return nil
}
