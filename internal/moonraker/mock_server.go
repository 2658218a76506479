// SPDX-License-Identifier: MIT

package moonraker

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// MockServer is a fake Moonraker for tests. It records every G-code script
// it receives and can be told to fail, stall or reject.
type MockServer struct {
	*httptest.Server

	mu       sync.Mutex
	scripts  []string
	estops   int
	state    string
	apiKey   string
	reject   string
	failures map[string]int
	delay    map[string]time.Duration
}

// NewMockServer starts a mock whose printer reports "ready".
func NewMockServer() *MockServer {
	m := &MockServer{
		state:    "ready",
		failures: make(map[string]int),
		delay:    make(map[string]time.Duration),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/printer/gcode/script", m.handleScript)
	mux.HandleFunc("/printer/info", m.handlePrinterInfo)
	mux.HandleFunc("/server/info", m.handleServerInfo)
	mux.HandleFunc("/printer/emergency_stop", m.handleEmergencyStop)
	m.Server = httptest.NewServer(mux)
	return m
}

// SetFailures makes the next n requests to path answer 503.
func (m *MockServer) SetFailures(path string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[path] = n
}

// SetDelay stalls every request to path by d.
func (m *MockServer) SetDelay(path string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay[path] = d
}

// SetState sets the Klipper state reported by /printer/info.
func (m *MockServer) SetState(state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
}

// RequireAPIKey makes every request without the key answer 401.
func (m *MockServer) RequireAPIKey(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiKey = key
}

// RejectContaining makes Klipper reject any script containing substr.
func (m *MockServer) RejectContaining(substr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reject = substr
}

// Scripts returns the scripts accepted so far, in order.
func (m *MockServer) Scripts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.scripts...)
}

// Lines returns every accepted script split into lines.
func (m *MockServer) Lines() []string {
	var out []string
	for _, s := range m.Scripts() {
		for _, line := range strings.Split(s, "\n") {
			if line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

// EmergencyStops returns how many emergency stops were received.
func (m *MockServer) EmergencyStops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.estops
}

// gate applies auth, delay and failure injection. It reports whether the
// handler should continue.
func (m *MockServer) gate(w http.ResponseWriter, r *http.Request) bool {
	m.mu.Lock()
	key := m.apiKey
	d := m.delay[r.URL.Path]
	fail := m.failures[r.URL.Path] > 0
	if fail {
		m.failures[r.URL.Path]--
	}
	m.mu.Unlock()

	if d > 0 {
		select {
		case <-time.After(d):
		case <-r.Context().Done():
			return false
		}
	}
	if key != "" && r.Header.Get("X-Api-Key") != key {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return false
	}
	if fail {
		writeError(w, http.StatusServiceUnavailable, "Klippy host not connected")
		return false
	}
	return true
}

func (m *MockServer) handleScript(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !m.gate(w, r) {
		return
	}
	var req struct {
		Script string `json:"script"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Script == "" {
		writeError(w, http.StatusBadRequest, "No data for argument: script")
		return
	}

	m.mu.Lock()
	reject := m.reject
	m.mu.Unlock()
	if reject != "" && strings.Contains(req.Script, reject) {
		writeError(w, http.StatusBadRequest, "Move out of range: "+reject)
		return
	}

	m.mu.Lock()
	m.scripts = append(m.scripts, req.Script)
	m.mu.Unlock()
	writeResult(w, "ok")
}

func (m *MockServer) handlePrinterInfo(w http.ResponseWriter, r *http.Request) {
	if !m.gate(w, r) {
		return
	}
	m.mu.Lock()
	state := m.state
	m.mu.Unlock()
	writeResult(w, PrinterInfo{
		State:           state,
		StateMessage:    "Printer is " + state,
		Hostname:        "mock-printer",
		SoftwareVersion: "v0.12.0-mock",
	})
}

func (m *MockServer) handleServerInfo(w http.ResponseWriter, r *http.Request) {
	if !m.gate(w, r) {
		return
	}
	m.mu.Lock()
	state := m.state
	m.mu.Unlock()
	writeResult(w, ServerInfo{
		KlippyConnected:  state != "disconnected",
		KlippyState:      state,
		MoonrakerVersion: "v0.9.0-mock",
	})
}

func (m *MockServer) handleEmergencyStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !m.gate(w, r) {
		return
	}
	m.mu.Lock()
	m.estops++
	m.state = "shutdown"
	m.mu.Unlock()
	writeResult(w, "ok")
}

func writeResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": status, "message": msg},
	})
}
