// SPDX-License-Identifier: MIT

// Package moonraker talks to a Klipper printer through the Moonraker HTTP API.
package moonraker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ManuGH/printerchess/internal/config"
	xlog "github.com/ManuGH/printerchess/internal/log"
	"github.com/ManuGH/printerchess/internal/metrics"
	"github.com/ManuGH/printerchess/internal/resilience"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout = 15 * time.Second
	defaultRetries = 2
	defaultBackoff = 400 * time.Millisecond
	maxBodyBytes   = 1 << 20
	maxErrorBody   = 512
)

// Client is a Moonraker API client. It is safe for concurrent use.
type Client struct {
	base    string
	apiKey  string
	http    *http.Client
	retries int
	backoff time.Duration
	breaker *resilience.CircuitBreaker
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sends the key in the X-Api-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRetries sets how many times a failed attempt is repeated.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// WithRetryBackoff sets the pause between attempts.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(cb *resilience.CircuitBreaker) Option {
	return func(c *Client) { c.breaker = cb }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the Moonraker instance at base, e.g.
// "http://printer.local:7125".
func New(base string, opts ...Option) *Client {
	c := &Client{
		base:    strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		retries: defaultRetries,
		backoff: defaultBackoff,
		logger:  xlog.WithComponent("moonraker"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = resilience.NewCircuitBreaker("moonraker", 5, 30*time.Second,
			resilience.WithFailureFilter(hostFault))
	}
	return c
}

// NewFromConfig builds a client from configuration.
func NewFromConfig(cfg config.MoonrakerConfig) *Client {
	return New(cfg.URL,
		WithAPIKey(cfg.APIKey),
		WithTimeout(cfg.Timeout),
		WithRetries(cfg.Retries),
		WithRetryBackoff(cfg.RetryBackoff),
		WithBreaker(resilience.NewCircuitBreaker("moonraker", cfg.BreakerThreshold, cfg.BreakerCooldown,
			resilience.WithFailureFilter(hostFault))),
	)
}

// BaseURL returns the Moonraker address this client talks to.
func (c *Client) BaseURL() string { return c.base }

// Breaker exposes the circuit breaker for status reporting.
func (c *Client) Breaker() *resilience.CircuitBreaker { return c.breaker }

// PrinterInfo is the subset of /printer/info printerchess uses.
type PrinterInfo struct {
	State           string `json:"state"`
	StateMessage    string `json:"state_message"`
	Hostname        string `json:"hostname"`
	SoftwareVersion string `json:"software_version"`
}

// Ready reports whether Klipper is ready to accept motion.
func (p PrinterInfo) Ready() bool { return p.State == "ready" }

// ServerInfo is the subset of /server/info printerchess uses.
type ServerInfo struct {
	KlippyConnected  bool   `json:"klippy_connected"`
	KlippyState      string `json:"klippy_state"`
	MoonrakerVersion string `json:"moonraker_version"`
}

// RunGCode executes a (possibly multi-line) G-code script and blocks until
// Klipper has processed it.
func (c *Client) RunGCode(ctx context.Context, script string) error {
	body := map[string]string{"script": script}
	return c.call(ctx, "gcode_script", http.MethodPost, "/printer/gcode/script", body, nil)
}

// PrinterInfo queries Klipper's state.
func (c *Client) PrinterInfo(ctx context.Context) (PrinterInfo, error) {
	var out PrinterInfo
	err := c.call(ctx, "printer_info", http.MethodGet, "/printer/info", nil, &out)
	return out, err
}

// ServerInfo queries Moonraker's own state.
func (c *Client) ServerInfo(ctx context.Context) (ServerInfo, error) {
	var out ServerInfo
	err := c.call(ctx, "server_info", http.MethodGet, "/server/info", nil, &out)
	return out, err
}

// EmergencyStop halts the printer immediately. It bypasses the circuit
// breaker and is attempted once: an operator pressing stop must always reach
// the wire.
func (c *Client) EmergencyStop(ctx context.Context) error {
	start := time.Now()
	err := c.doOnce(ctx, "emergency_stop", http.MethodPost, "/printer/emergency_stop", nil, nil)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	metrics.ObserveMoonrakerRequest("emergency_stop", outcome, time.Since(start))
	return err
}

func (c *Client) call(ctx context.Context, op, method, path string, in, out any) error {
	err := c.breaker.Execute(func() error {
		return c.withRetry(ctx, op, method, path, in, out)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return &Error{Sentinel: ErrUpstreamUnavailable, Operation: op, Err: err}
	}
	return err
}

func (c *Client) withRetry(ctx context.Context, op, method, path string, in, out any) error {
	logger := xlog.WithContext(ctx, c.logger)
	var err error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff):
			}
		}

		start := time.Now()
		err = c.doOnce(ctx, op, method, path, in, out)
		if err == nil {
			metrics.ObserveMoonrakerRequest(op, "success", time.Since(start))
			return nil
		}

		var me *Error
		retry := errors.As(err, &me) && me.Retryable() && ctx.Err() == nil && attempt < c.retries
		if !retry {
			metrics.ObserveMoonrakerRequest(op, "failure", time.Since(start))
			return err
		}
		metrics.ObserveMoonrakerRequest(op, "retry", time.Since(start))
		logger.Warn().
			Err(err).
			Str(xlog.FieldEvent, "moonraker.retry").
			Str(xlog.FieldOperation, op).
			Int(xlog.FieldAttempt, attempt+1).
			Msg("moonraker request failed, retrying")
	}
	return err
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) doOnce(ctx context.Context, op, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return &Error{Sentinel: ErrUpstreamUnavailable, Operation: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	if rid := xlog.RequestIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	c.logger.Debug().
		Str(xlog.FieldEvent, "moonraker.request").
		Str(xlog.FieldOperation, op).
		Str("method", method).
		Str(xlog.FieldPath, path).
		Msg("calling moonraker")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Sentinel: classifyTransport(err), Operation: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &Error{Sentinel: classifyTransport(err), Operation: op, Status: resp.StatusCode, Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(data, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := truncate(strings.TrimSpace(string(data)), maxErrorBody)
		if decodeErr == nil && env.Error != nil && env.Error.Message != "" {
			msg = env.Error.Message
		}
		return &Error{Sentinel: classifyStatus(resp.StatusCode), Operation: op, Status: resp.StatusCode, Body: msg}
	}

	if decodeErr != nil {
		return &Error{Sentinel: ErrBadResponse, Operation: op, Status: resp.StatusCode, Err: decodeErr}
	}
	if out != nil {
		if len(env.Result) == 0 {
			return &Error{Sentinel: ErrBadResponse, Operation: op, Status: resp.StatusCode, Body: "missing result"}
		}
		if err := json.Unmarshal(env.Result, out); err != nil {
			return &Error{Sentinel: ErrBadResponse, Operation: op, Status: resp.StatusCode, Err: err}
		}
	}
	return nil
}

func classifyStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusBadRequest:
		// Klipper reports script errors ("Move out of range", unknown
		// command) as 400 with the message in the error envelope.
		return ErrGCodeRejected
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return ErrTimeout
	default:
		return ErrUpstreamError
	}
}

func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	return ErrUpstreamUnavailable
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
