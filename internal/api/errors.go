// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ManuGH/printerchess/internal/api/problem"
	"github.com/ManuGH/printerchess/internal/board"
	"github.com/ManuGH/printerchess/internal/chessgame"
	"github.com/ManuGH/printerchess/internal/jobs"
	xlog "github.com/ManuGH/printerchess/internal/log"
	"github.com/ManuGH/printerchess/internal/moonraker"
	"github.com/ManuGH/printerchess/internal/motion"
	"github.com/ManuGH/printerchess/internal/pathfind"
	"github.com/ManuGH/printerchess/internal/store"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, slug, title, detail string) {
	problem.Write(w, r, status, slug, title, detail)
}

// writeError maps a domain error to a problem response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		writeProblem(w, r, http.StatusRequestEntityTooLarge, "body-too-large", "Request body too large",
			fmt.Sprintf("limit is %d bytes", maxErr.Limit))

	case errors.Is(err, motion.ErrNoInput), errors.Is(err, motion.ErrAmbiguousInput),
		errors.Is(err, chessgame.ErrEmptyGame), errors.Is(err, chessgame.ErrIllegalMove),
		errors.Is(err, chessgame.ErrBadPGN),
		errors.Is(err, board.ErrBadSquare), errors.Is(err, pathfind.ErrGraveyardFull):
		writeProblem(w, r, http.StatusUnprocessableEntity, "invalid-game", "Invalid game", err.Error())

	case errors.Is(err, motion.ErrUnknownMode):
		writeProblem(w, r, http.StatusBadRequest, "bad-request", "Bad request", err.Error())

	case errors.Is(err, store.ErrNotFound):
		writeProblem(w, r, http.StatusNotFound, "job-not-found", "Job not found", err.Error())
	case errors.Is(err, jobs.ErrNotCancelable):
		writeProblem(w, r, http.StatusConflict, "job-finished", "Job already finished", err.Error())
	case errors.Is(err, jobs.ErrQueueFull):
		writeProblem(w, r, http.StatusServiceUnavailable, "queue-full", "Job queue is full", err.Error())
	case errors.Is(err, jobs.ErrPrinterBusy):
		writeProblem(w, r, http.StatusConflict, "printer-busy", "Printer is busy", err.Error())

	case errors.Is(err, moonraker.ErrGCodeRejected):
		writeProblem(w, r, http.StatusUnprocessableEntity, "gcode-rejected", "G-code rejected by printer", err.Error())
	case errors.Is(err, moonraker.ErrTimeout):
		writeProblem(w, r, http.StatusGatewayTimeout, "printer-timeout", "Printer timed out", err.Error())
	case errors.Is(err, moonraker.ErrUnauthorized), errors.Is(err, moonraker.ErrNotFound),
		errors.Is(err, moonraker.ErrUpstreamUnavailable), errors.Is(err, moonraker.ErrUpstreamError),
		errors.Is(err, moonraker.ErrBadResponse):
		writeProblem(w, r, http.StatusBadGateway, "printer-unavailable", "Printer unavailable", err.Error())

	default:
		logger := xlog.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Err(err).
			Str(xlog.FieldEvent, "api.internal_error").
			Str(xlog.FieldPath, r.URL.Path).
			Msg("unhandled error")
		writeProblem(w, r, http.StatusInternalServerError, "internal", "Internal server error", "")
	}
}

// decodeJSON decodes a single JSON object, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return errBadRequest{"request body is empty"}
		}
		return errBadRequest{"invalid JSON: " + err.Error()}
	}
	return nil
}

type errBadRequest struct{ msg string }

func (e errBadRequest) Error() string { return e.msg }

// writeDecodeError writes the problem for a decodeJSON failure.
func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var bad errBadRequest
	if errors.As(err, &bad) {
		writeProblem(w, r, http.StatusBadRequest, "bad-request", "Bad request", bad.msg)
		return
	}
	writeError(w, r, err)
}
