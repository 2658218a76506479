// SPDX-License-Identifier: MIT

package chessgame

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/ManuGH/printerchess/internal/board"
	"github.com/notnil/chess"
)

var (
	// ErrEmptyGame is returned when the input holds no moves.
	ErrEmptyGame = errors.New("game has no moves")
	// ErrIllegalMove wraps moves that are not legal in their position.
	ErrIllegalMove = errors.New("illegal move")
	// ErrBadPGN wraps PGN text the parser could not read.
	ErrBadPGN = errors.New("invalid pgn")
)

// FromPGN reads the main line of the first game in r. A movetext token the
// parser skipped, such as "Qxf9", is an error rather than a shorter game.
func FromPGN(r io.Reader) (Game, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Game{}, fmt.Errorf("%w: %v", ErrBadPGN, err)
	}
	pgn, err := chess.PGN(strings.NewReader(string(raw)))
	if err != nil {
		return Game{}, fmt.Errorf("%w: %v", ErrBadPGN, err)
	}
	src := chess.NewGame(pgn)
	tokens := moveTokens(string(raw))
	if n := len(src.Moves()); n < len(tokens) {
		return Game{}, fmt.Errorf("%w: unreadable move %q at ply %d", ErrBadPGN, tokens[n], n+1)
	}
	if len(src.Moves()) == 0 {
		return Game{}, ErrEmptyGame
	}

	tags := make(map[string]string)
	for _, tp := range src.TagPairs() {
		tags[tp.Key] = tp.Value
	}

	g, err := replay(src.Moves())
	if err != nil {
		return Game{}, err
	}
	g.Tags = tags
	if !g.Over() {
		// resignations, time forfeits and agreed draws only live in the result
		if res := string(src.Outcome()); res != "" && res != "*" {
			g.Outcome = res
			g.Reason = "result"
		}
	}
	return g, nil
}

// moveTokens returns the main-line move tokens of the movetext in pgn. Tag
// lines, {} and ; comments, () variations, NAGs, move numbers and the
// result are not moves. Reading stops at the first result token.
func moveTokens(pgn string) []string {
	var text strings.Builder
	for _, line := range strings.Split(pgn, "\n") {
		if line = strings.TrimSpace(line); !strings.HasPrefix(line, "[") {
			text.WriteString(line)
			text.WriteByte('\n')
		}
	}

	var words []string
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			words = append(words, word.String())
			word.Reset()
		}
	}
	depth := 0
	var closer rune
	for _, c := range text.String() {
		switch {
		case closer != 0:
			if c == closer {
				closer = 0
			}
		case depth > 0:
			switch c {
			case '(':
				depth++
			case ')':
				depth--
			case '{':
				closer = '}'
			}
		case c == '{':
			flush()
			closer = '}'
		case c == ';':
			flush()
			closer = '\n'
		case c == '(':
			flush()
			depth++
		case c == ')' || unicode.IsSpace(c):
			flush()
		default:
			word.WriteRune(c)
		}
	}
	flush()

	var moves []string
	for _, w := range words {
		switch w {
		case "*", "1-0", "0-1", "1/2-1/2":
			return moves
		}
		// "12." and "12...e5" carry a move number
		if i := strings.IndexFunc(w, func(c rune) bool { return c < '0' || c > '9' }); i > 0 && w[i] == '.' {
			w = strings.TrimLeft(w[i:], ".")
		}
		w = strings.TrimRight(w, "!?")
		if w == "" || w == "e.p." || strings.HasPrefix(w, "$") {
			continue
		}
		moves = append(moves, w)
	}
	return moves
}

// FromUCI builds a game from coordinate moves such as "e2e4" or "e7e8q".
// Every move must be legal in the position it is played from.
func FromUCI(moves []string) (Game, error) {
	var clean []string
	for _, m := range moves {
		for _, f := range strings.Fields(m) {
			clean = append(clean, strings.ToLower(f))
		}
	}
	if len(clean) == 0 {
		return Game{}, ErrEmptyGame
	}

	g := chess.NewGame()
	decoded := make([]*chess.Move, 0, len(clean))
	for i, s := range clean {
		m, err := chess.UCINotation{}.Decode(g.Position(), s)
		if err != nil {
			return Game{}, fmt.Errorf("%w %q at ply %d: %v", ErrIllegalMove, s, i+1, err)
		}
		if err := g.Move(m); err != nil {
			return Game{}, fmt.Errorf("%w %q at ply %d: %v", ErrIllegalMove, s, i+1, err)
		}
		decoded = append(decoded, m)
	}
	return replay(decoded)
}

// replay plays moves on a fresh game so automatic draw detection runs and
// every ply sees the position it was played from.
func replay(moves []*chess.Move) (Game, error) {
	cg := chess.NewGame()
	out := Game{
		Plies:     make([]Ply, 0, len(moves)),
		occupancy: make([]board.Occupancy, 0, len(moves)+1),
	}

	for i, m := range moves {
		pos := cg.Position()
		out.occupancy = append(out.occupancy, occupancyOf(pos))

		ply, err := describe(i, pos, m)
		if err != nil {
			return Game{}, err
		}
		if err := cg.Move(m); err != nil {
			return Game{}, fmt.Errorf("%w %s at ply %d: %v", ErrIllegalMove, ply.UCI, i+1, err)
		}
		out.Plies = append(out.Plies, ply)
	}
	out.occupancy = append(out.occupancy, occupancyOf(cg.Position()))
	out.Outcome, out.Reason = outcomeOf(cg)
	return out, nil
}

func describe(i int, pos *chess.Position, m *chess.Move) (Ply, error) {
	b := pos.Board()
	mover := b.Piece(m.S1())
	if mover == chess.NoPiece {
		return Ply{}, fmt.Errorf("%w: no piece on %s at ply %d", ErrIllegalMove, m.S1(), i+1)
	}

	from, to := toSquare(m.S1()), toSquare(m.S2())
	ply := Ply{
		Index:     i,
		From:      from,
		To:        to,
		Piece:     kindOf(mover.Type()),
		Color:     colorOf(mover.Color()),
		UCI:       chess.UCINotation{}.Encode(pos, m),
		SAN:       chess.AlgebraicNotation{}.Encode(pos, m),
		Promotion: kindOf(m.Promo()),
	}

	if target := b.Piece(m.S2()); target != chess.NoPiece {
		ply.Capture = true
		ply.CaptureSquare = to
		ply.Captured = kindOf(target.Type())
	} else if ply.Piece == Pawn && from.File != to.File {
		// diagonal pawn move onto an empty square: the victim sits beside us
		ply.Capture = true
		ply.EnPassant = true
		ply.CaptureSquare = board.Square{File: to.File, Rank: from.Rank}
		ply.Captured = Pawn
	}

	if ply.Piece == King && abs(to.File-from.File) == 2 {
		rank := from.Rank
		if to.File > from.File {
			ply.Castle = KingSide
			ply.RookFrom = board.Square{File: 7, Rank: rank}
			ply.RookTo = board.Square{File: 5, Rank: rank}
		} else {
			ply.Castle = QueenSide
			ply.RookFrom = board.Square{File: 0, Rank: rank}
			ply.RookTo = board.Square{File: 3, Rank: rank}
		}
	}
	return ply, nil
}

func occupancyOf(pos *chess.Position) board.Occupancy {
	var o board.Occupancy
	b := pos.Board()
	for i := 0; i < 64; i++ {
		if b.Piece(chess.Square(i)) != chess.NoPiece {
			o = o.With(board.Square{File: i % 8, Rank: i / 8})
		}
	}
	return o
}

func toSquare(s chess.Square) board.Square {
	return board.Square{File: int(s) % 8, Rank: int(s) / 8}
}

func kindOf(t chess.PieceType) PieceKind {
	switch t {
	case chess.King:
		return King
	case chess.Queen:
		return Queen
	case chess.Rook:
		return Rook
	case chess.Bishop:
		return Bishop
	case chess.Knight:
		return Knight
	case chess.Pawn:
		return Pawn
	default:
		return NoPiece
	}
}

func colorOf(c chess.Color) Color {
	if c == chess.Black {
		return Black
	}
	return White
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
