// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConfigure_ServiceAndComponent(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "svc-test", Version: "v0.0.1"})
	t.Cleanup(func() { Configure(Config{Level: "info"}) })

	l := WithComponent("motion")
	l.Info().Str(FieldEvent, "test.event").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["service"] != "svc-test" {
		t.Errorf("service = %v, want svc-test", entry["service"])
	}
	if entry["version"] != "v0.0.1" {
		t.Errorf("version = %v, want v0.0.1", entry["version"])
	}
	if entry[FieldComponent] != "motion" {
		t.Errorf("component = %v, want motion", entry[FieldComponent])
	}
}

func TestMiddleware_LogsStatus(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: "info"}) })

	h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	req = req.WithContext(ContextWithRequestID(req.Context(), "rid-1"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var found map[string]any
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			continue
		}
		if entry[FieldEvent] == "request.handled" {
			found = entry
		}
	}
	if found == nil {
		t.Fatal("expected request.handled log line")
	}
	if found[FieldStatus] != float64(http.StatusTeapot) {
		t.Errorf("status = %v, want %d", found[FieldStatus], http.StatusTeapot)
	}
	if found["bytes"] != float64(len("short and stout")) {
		t.Errorf("bytes = %v", found["bytes"])
	}
	if found[FieldRequestID] != "rid-1" {
		t.Errorf("request_id = %v, want rid-1", found[FieldRequestID])
	}
}
