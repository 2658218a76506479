// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"strconv"

	"github.com/ManuGH/printerchess/internal/board"
	"github.com/ManuGH/printerchess/internal/gcode"
	"github.com/ManuGH/printerchess/internal/jobs"
	xlog "github.com/ManuGH/printerchess/internal/log"
	"github.com/ManuGH/printerchess/internal/metrics"
	"github.com/ManuGH/printerchess/internal/motion"
)

// GCodeContentType is served for rendered programs.
const GCodeContentType = "text/x-gcode; charset=utf-8"

func (s *Server) compile(w http.ResponseWriter, r *http.Request) (motion.Compiled, *motion.Compiler, bool) {
	var req jobs.Request
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return motion.Compiled{}, nil, false
	}
	c := s.runner.Compiler()
	out, err := c.Compile(req.Input, req.Mode)
	if err != nil {
		writeError(w, r, err)
		return motion.Compiled{}, nil, false
	}
	metrics.RecordPlan(out.Mode, out.Fallbacks())
	logger := xlog.WithComponentFromContext(r.Context(), "api")
	logger.Debug().
		Str(xlog.FieldEvent, "game.compiled").
		Str(xlog.FieldMode, out.Mode).
		Int("plies", len(out.Plans)).
		Int(xlog.FieldCommands, out.Program.Commands()).
		Msg("game compiled")
	return out, c, true
}

// handleGCode renders a game to a G-code program.
// POST /api/v1/gcode {pgn|moves, mode}; ?download=1 adds an attachment header.
func (s *Server) handleGCode(w http.ResponseWriter, r *http.Request) {
	out, _, ok := s.compile(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", GCodeContentType)
	w.Header().Set("X-Plies", strconv.Itoa(len(out.Plans)))
	w.Header().Set("X-Commands", strconv.Itoa(out.Program.Commands()))
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="game.gcode"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = out.Program.WriteTo(w)
}

// PlansResponse is the JSON view of a compiled game.
type PlansResponse struct {
	Mode      string            `json:"mode"`
	Units     string            `json:"units"`
	Layout    string            `json:"layout"`
	Outcome   string            `json:"outcome"`
	Reason    string            `json:"reason,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`
	Fallbacks int               `json:"fallbacks"`
	Plans     []motion.Plan     `json:"plans"`
}

// handlePlans returns the magnet plans for a game.
// POST /api/v1/plans {pgn|moves}; ?units=board keeps board units instead of mm.
func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	out, c, ok := s.compile(w, r)
	if !ok {
		return
	}
	units := r.URL.Query().Get("units")
	if units == "" {
		units = "mm"
	}
	plans := out.Plans
	switch units {
	case "mm":
		plans = make([]motion.Plan, len(out.Plans))
		for i, p := range out.Plans {
			plans[i] = p.InMM(c.Layout)
		}
	case "board":
	default:
		writeProblem(w, r, http.StatusBadRequest, "bad-request", "Bad request", "units must be mm or board")
		return
	}
	writeJSON(w, http.StatusOK, PlansResponse{
		Mode:      out.Mode,
		Units:     units,
		Layout:    layoutName(c.Layout),
		Outcome:   out.Game.Outcome,
		Reason:    out.Game.Reason,
		Tags:      out.Game.Tags,
		Fallbacks: out.Fallbacks(),
		Plans:     plans,
	})
}

func layoutName(l board.Layout) string {
	if l == nil {
		return ""
	}
	return l.Name()
}

// ValidateResponse wraps a validation report.
type ValidateResponse struct {
	OK       bool         `json:"ok"`
	Errors   int          `json:"errors"`
	Warnings int          `json:"warnings"`
	Report   gcode.Report `json:"report"`
}

// handleValidate checks a G-code program for well-formedness.
// POST /api/v1/validate with the program as the body.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	rep, err := gcode.Validate(r.Body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ValidateResponse{
		OK:       rep.OK(),
		Errors:   rep.Count(gcode.SeverityError),
		Warnings: rep.Count(gcode.SeverityWarning),
		Report:   rep,
	})
}
