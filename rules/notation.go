package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notnil/chess"
)

// SANMoves converts a UCI move list played from startFEN into standard
// algebraic notation.
func SANMoves(startFEN string, moves []string) ([]string, error) {
	opt, err := chess.FEN(NormalizeFEN(startFEN))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	pos := chess.NewGame(opt).Position()
	out := make([]string, 0, len(moves))
	for _, uci := range moves {
		m, err := chess.UCINotation{}.Decode(pos, uci)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
		}
		out = append(out, chess.AlgebraicNotation{}.Encode(pos, m))
		pos = pos.Update(m)
	}
	return out, nil
}

// PGN renders the move list as numbered PGN movetext, e.g.
// "1. e4 e5 2. Nf3". Games starting with Black to move open with "N...".
func PGN(startFEN string, moves []string) (string, error) {
	start, err := ParseFEN(startFEN)
	if err != nil {
		return "", err
	}
	sans, err := SANMoves(startFEN, moves)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	number := start.FullmoveNumber()
	black := start.SideToMove() == Black
	for i, san := range sans {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch {
		case !black:
			sb.WriteString(strconv.Itoa(number) + ". ")
		case i == 0:
			sb.WriteString(strconv.Itoa(number) + "... ")
		}
		sb.WriteString(san)
		if black {
			number++
		}
		black = !black
	}
	return sb.String(), nil
}
