// SPDX-License-Identifier: MIT

// Package problem writes RFC 7807 problem details.
package problem

import (
	"encoding/json"
	"net/http"

	"github.com/ManuGH/printerchess/internal/log"
)

// ContentType is the media type of a problem document.
const ContentType = "application/problem+json"

const typeBase = "https://printerchess.dev/problems/"

// Details is an RFC 7807 problem document.
type Details struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Instance  string `json:"instance,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Write sends a problem. slug names the problem type ("invalid-game",
// "printer-busy"); an empty slug uses "about:blank".
func Write(w http.ResponseWriter, r *http.Request, status int, slug, title, detail string) {
	typ := "about:blank"
	if slug != "" {
		typ = typeBase + slug
	}
	if title == "" {
		title = http.StatusText(status)
	}
	rid := log.RequestIDFromContext(r.Context())
	if rid == "" {
		// set by the request id middleware even when ctx predates it
		rid = w.Header().Get("X-Request-ID")
	}
	p := Details{
		Type:      typ,
		Title:     title,
		Status:    status,
		Detail:    detail,
		Instance:  r.URL.Path,
		RequestID: rid,
	}
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(p)
}
