package engine

import "fmt"

// Score is a centipawn evaluation. Values beyond Checkmate encode forced mates.
type Score int32

const (
	MaxScore  Score = 32500
	Checkmate Score = 20000
	DrawScore Score = 0
)

// MateIn is the score for delivering mate ply half-moves from the root.
func MateIn(ply int) Score { return MaxScore - Score(ply) }

func (s Score) IsMate() bool { return s > Checkmate || s < -Checkmate }

// Pawns converts the score to pawn units.
func (s Score) Pawns() float64 { return float64(s) / 100 }

// MatePlies returns the number of half-moves to mate, signed like the score.
func (s Score) MatePlies() int {
	if s > Checkmate {
		return int(MaxScore - s)
	}
	if s < -Checkmate {
		return -int(MaxScore + s)
	}
	return 0
}

// String renders the score the way UCI "info score" expects: "cp 35" or "mate -2".
func (s Score) String() string {
	if !s.IsMate() {
		return fmt.Sprintf("cp %d", int32(s))
	}
	plies := s.MatePlies()
	if plies > 0 {
		return fmt.Sprintf("mate %d", (plies+1)/2)
	}
	return fmt.Sprintf("mate %d", (plies-1)/2)
}
