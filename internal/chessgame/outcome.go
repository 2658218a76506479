// SPDX-License-Identifier: MIT

package chessgame

import "github.com/notnil/chess"

func outcomeOf(g *chess.Game) (string, string) {
	if o := g.Outcome(); o != chess.NoOutcome {
		return string(o), methodName(g.Method())
	}
	for _, m := range g.EligibleDraws() {
		if m == chess.ThreefoldRepetition {
			return string(chess.Draw), methodName(m)
		}
	}
	return string(chess.NoOutcome), ""
}

func methodName(m chess.Method) string {
	switch m {
	case chess.Checkmate:
		return "checkmate"
	case chess.Stalemate:
		return "stalemate"
	case chess.InsufficientMaterial:
		return "insufficient material"
	case chess.SeventyFiveMoveRule:
		return "75-move rule"
	case chess.FivefoldRepetition:
		return "fivefold repetition"
	case chess.ThreefoldRepetition:
		return "threefold repetition"
	case chess.FiftyMoveRule:
		return "50-move rule"
	case chess.Resignation:
		return "resignation"
	case chess.DrawOffer:
		return "draw agreed"
	default:
		return ""
	}
}
