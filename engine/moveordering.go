package engine

import (
	"golang.org/x/exp/slices"

	"github.com/HA5ANT/CHESS-MASTER/rules"
)

type move struct {
	move  rules.Move
	score uint16
}

type moveList struct {
	moves []move
}

// Most Valuable Victim - Least Valuable Aggressor; used to score & sort captures
var mvvLva [7][7]uint16 = [7][7]uint16{
	{0, 0, 0, 0, 0, 0, 0},
	{0, 14, 13, 12, 11, 10, 0}, // victim Pawn
	{0, 24, 23, 22, 21, 20, 0}, // victim Knight
	{0, 34, 33, 32, 31, 30, 0}, // victim Bishop
	{0, 44, 43, 42, 41, 40, 0}, // victim Rook
	{0, 54, 53, 52, 51, 50, 0}, // victim Queen
	{0, 0, 0, 0, 0, 0, 0},      // victim King
}

// Captures always sort above promotions, promotions above quiet moves.
var captureOffset uint16 = 15000
var promotionOffset uint16 = 10000

func scoreMove(m rules.Move) uint16 {
	var score uint16
	if m.IsCapture() {
		score = captureOffset + mvvLva[m.Captured][m.Piece]
	}
	if m.IsPromotion() {
		if score == 0 {
			score = promotionOffset
		}
		score += uint16(m.Promotion)
	}
	return score
}

func scoreMovesList(moves []rules.Move) moveList {
	list := moveList{moves: make([]move, len(moves))}
	for i, m := range moves {
		list.moves[i] = move{move: m, score: scoreMove(m)}
	}
	return list
}

// OrderMoves returns moves sorted for search: captures by MVV-LVA, then
// promotions, then everything else in generator order. The sort is stable
// and the input slice is not modified.
func OrderMoves(moves []rules.Move) []rules.Move {
	list := scoreMovesList(moves)
	slices.SortStableFunc(list.moves, func(a, b move) int {
		return int(b.score) - int(a.score)
	})
	ordered := make([]rules.Move, len(list.moves))
	for i := range list.moves {
		ordered[i] = list.moves[i].move
	}
	return ordered
}

// orderCaptures keeps only the moves quiescence looks at when not in check.
func orderCaptures(moves []rules.Move) []rules.Move {
	captures := make([]rules.Move, 0, len(moves))
	for _, m := range moves {
		if m.IsCapture() {
			captures = append(captures, m)
		}
	}
	return OrderMoves(captures)
}
