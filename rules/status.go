package rules

import "math/bits"

// Outcome classifies a position as ongoing or as one of the game-ending states.
type Outcome uint8

const (
	Ongoing Outcome = iota
	Checkmate
	Stalemate
	InsufficientMaterial
	FiftyMoveRule
	ThreefoldRepetition
)

func (o Outcome) String() string {
	switch o {
	case Checkmate:
		return "Checkmate"
	case Stalemate:
		return "Stalemate"
	case InsufficientMaterial:
		return "Insufficient Material"
	case FiftyMoveRule:
		return "Fifty-move Rule"
	case ThreefoldRepetition:
		return "Threefold Repetition"
	}
	return "Ongoing"
}

func (o Outcome) IsDraw() bool { return o >= Stalemate }

// Outcome reports the state of the game at p. Checkmate and stalemate take
// precedence over the claimable draws.
func (p *Position) Outcome() Outcome {
	if len(p.board.GenerateLegalMoves()) == 0 {
		if p.InCheck() {
			return Checkmate
		}
		return Stalemate
	}
	switch {
	case p.IsInsufficientMaterial():
		return InsufficientMaterial
	case p.IsFiftyMoves():
		return FiftyMoveRule
	case p.IsThreefoldRepetition():
		return ThreefoldRepetition
	}
	return Ongoing
}

func (p *Position) IsCheckmate() bool {
	return p.InCheck() && len(p.board.GenerateLegalMoves()) == 0
}

func (p *Position) IsStalemate() bool {
	return !p.InCheck() && len(p.board.GenerateLegalMoves()) == 0
}

// IsDraw covers the draws that do not depend on the move list: insufficient
// material, the fifty-move rule and threefold repetition.
func (p *Position) IsDraw() bool {
	return p.IsInsufficientMaterial() || p.IsFiftyMoves() || p.IsThreefoldRepetition()
}

func (p *Position) IsFiftyMoves() bool { return p.board.Halfmoveclock >= 100 }

// IsThreefoldRepetition reports whether the current position occurred at least
// twice before since the last irreversible move.
func (p *Position) IsThreefoldRepetition() bool {
	return p.repetitions() >= 2
}

func (p *Position) repetitions() int {
	key := p.board.Hash()
	start := len(p.history) - int(p.board.Halfmoveclock)
	if start < 0 {
		start = 0
	}
	n := 0
	for i := len(p.history) - 2; i >= start; i -= 2 {
		if p.history[i] == key {
			n++
		}
	}
	return n
}

const (
	lightSquares uint64 = 0x55AA55AA55AA55AA
	darkSquares  uint64 = ^lightSquares
)

// IsInsufficientMaterial reports whether neither side can possibly mate:
// bare kings, a single minor piece, or only bishops all on one square color.
func (p *Position) IsInsufficientMaterial() bool {
	w, b := &p.board.White, &p.board.Black
	if w.Pawns|b.Pawns|w.Rooks|b.Rooks|w.Queens|b.Queens != 0 {
		return false
	}
	knights := w.Knights | b.Knights
	bishops := w.Bishops | b.Bishops
	minors := bits.OnesCount64(knights | bishops)
	if minors <= 1 {
		return true
	}
	if knights != 0 {
		return false
	}
	return bishops&lightSquares == 0 || bishops&darkSquares == 0
}
