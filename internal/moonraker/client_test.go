// SPDX-License-Identifier: MIT

package moonraker

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/ManuGH/printerchess/internal/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, m *MockServer, opts ...Option) *Client {
	t.Helper()
	base := []Option{WithRetryBackoff(time.Millisecond), WithTimeout(2 * time.Second)}
	return New(m.URL, append(base, opts...)...)
}

func TestRunGCode(t *testing.T) {
	m := NewMockServer()
	defer m.Close()
	c := newTestClient(t, m)

	require.NoError(t, c.RunGCode(context.Background(), "G28 X Y\nG0 X10.0 Y20.0"))
	assert.Equal(t, []string{"G28 X Y\nG0 X10.0 Y20.0"}, m.Scripts())
	assert.Equal(t, []string{"G28 X Y", "G0 X10.0 Y20.0"}, m.Lines())
}

func TestRunGCodeRejectedIsNotRetried(t *testing.T) {
	m := NewMockServer()
	defer m.Close()
	m.RejectContaining("X999")
	c := newTestClient(t, m)

	err := c.RunGCode(context.Background(), "G0 X999 Y0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGCodeRejected))

	var me *Error
	require.True(t, errors.As(err, &me))
	assert.Equal(t, http.StatusBadRequest, me.Status)
	assert.Contains(t, me.Body, "Move out of range")
	assert.Empty(t, m.Scripts())
	assert.Equal(t, resilience.StateClosed, c.Breaker().State())
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	m := NewMockServer()
	defer m.Close()
	m.SetFailures("/printer/gcode/script", 2)
	c := newTestClient(t, m, WithRetries(2))

	require.NoError(t, c.RunGCode(context.Background(), "M400"))
	assert.Equal(t, []string{"M400"}, m.Scripts())
}

func TestRetryExhausted(t *testing.T) {
	m := NewMockServer()
	defer m.Close()
	m.SetFailures("/printer/gcode/script", 5)
	c := newTestClient(t, m, WithRetries(1))

	err := c.RunGCode(context.Background(), "M400")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamError))
	assert.Empty(t, m.Scripts())
}

func TestAPIKey(t *testing.T) {
	m := NewMockServer()
	defer m.Close()
	m.RequireAPIKey("secret")

	_, err := newTestClient(t, m).PrinterInfo(context.Background())
	assert.True(t, errors.Is(err, ErrUnauthorized))

	info, err := newTestClient(t, m, WithAPIKey("secret")).PrinterInfo(context.Background())
	require.NoError(t, err)
	assert.True(t, info.Ready())
}

func TestPrinterAndServerInfo(t *testing.T) {
	m := NewMockServer()
	defer m.Close()
	m.SetState("startup")
	c := newTestClient(t, m)

	info, err := c.PrinterInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "startup", info.State)
	assert.False(t, info.Ready())
	assert.Equal(t, "mock-printer", info.Hostname)

	srv, err := c.ServerInfo(context.Background())
	require.NoError(t, err)
	assert.True(t, srv.KlippyConnected)
	assert.Equal(t, "startup", srv.KlippyState)
}

func TestEmergencyStop(t *testing.T) {
	m := NewMockServer()
	defer m.Close()
	c := newTestClient(t, m)

	require.NoError(t, c.EmergencyStop(context.Background()))
	assert.Equal(t, 1, m.EmergencyStops())

	info, err := c.PrinterInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "shutdown", info.State)
}

func TestEmergencyStopBypassesOpenBreaker(t *testing.T) {
	m := NewMockServer()
	defer m.Close()
	cb := resilience.NewCircuitBreaker("test", 1, time.Hour, resilience.WithFailureFilter(hostFault))
	c := newTestClient(t, m, WithBreaker(cb), WithRetries(0))

	m.SetFailures("/printer/info", 1)
	_, err := c.PrinterInfo(context.Background())
	require.Error(t, err)
	require.Equal(t, resilience.StateOpen, cb.State())

	_, err = c.PrinterInfo(context.Background())
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))

	require.NoError(t, c.EmergencyStop(context.Background()))
	assert.Equal(t, 1, m.EmergencyStops())
}

func TestTimeout(t *testing.T) {
	m := NewMockServer()
	defer m.Close()
	m.SetDelay("/printer/info", 200*time.Millisecond)
	c := newTestClient(t, m, WithTimeout(20*time.Millisecond), WithRetries(0))

	_, err := c.PrinterInfo(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestUnreachableHost(t *testing.T) {
	m := NewMockServer()
	url := m.URL
	m.Close()

	c := New(url, WithRetries(0), WithTimeout(time.Second))
	err := c.RunGCode(context.Background(), "M400")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
}

func TestContextCancelStopsRetries(t *testing.T) {
	m := NewMockServer()
	defer m.Close()
	m.SetFailures("/printer/gcode/script", 10)
	c := newTestClient(t, m, WithRetries(5), WithRetryBackoff(time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := c.RunGCode(ctx, "M400")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestErrorString(t *testing.T) {
	err := &Error{Sentinel: ErrGCodeRejected, Operation: "gcode_script", Status: 400, Body: "Unknown command"}
	assert.Equal(t, "moonraker: gcode rejected by klipper (gcode_script) (HTTP 400): Unknown command", err.Error())
	assert.False(t, err.Retryable())
	assert.True(t, (&Error{Sentinel: ErrUpstreamError, Status: 502}).Retryable())
	assert.False(t, (&Error{Sentinel: ErrUpstreamError, Status: 409}).Retryable())
}
