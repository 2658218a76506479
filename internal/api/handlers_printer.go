// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/ManuGH/printerchess/internal/board"
)

// GotoRequest moves the head to machine coordinates.
type GotoRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// MagnetRequest switches the magnet.
type MagnetRequest struct {
	On *bool `json:"on"`
}

// MoveRequest carries one piece between two squares.
type MoveRequest struct {
	From *board.Square `json:"from"`
	To   *board.Square `json:"to"`
}

type okResponse struct {
	Status string `json:"status"`
}

func (s *Server) handlePrinterStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.bridge.Status(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.bridge.Home(r.Context()))
}

func (s *Server) handleGoto(w http.ResponseWriter, r *http.Request) {
	var req GotoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	if req.X == nil || req.Y == nil {
		writeProblem(w, r, http.StatusBadRequest, "bad-request", "Bad request", "x and y are required")
		return
	}
	s.respond(w, r, s.bridge.Goto(r.Context(), *req.X, *req.Y))
}

func (s *Server) handleMagnet(w http.ResponseWriter, r *http.Request) {
	var req MagnetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	if req.On == nil {
		writeProblem(w, r, http.StatusBadRequest, "bad-request", "Bad request", "on is required")
		return
	}
	s.respond(w, r, s.bridge.Magnet(r.Context(), *req.On))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	if req.From == nil || req.To == nil {
		writeProblem(w, r, http.StatusBadRequest, "bad-request", "Bad request", "from and to are required")
		return
	}
	s.respond(w, r, s.bridge.MovePiece(r.Context(), *req.From, *req.To))
}

func (s *Server) handleEmergencyStop(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.bridge.EmergencyStop(r.Context()))
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Status: "ok"})
}
