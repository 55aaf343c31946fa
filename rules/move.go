package rules

import (
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

// MoveFlag marks the special properties of a move.
type MoveFlag uint8

const (
	FlagCapture MoveFlag = 1 << iota
	FlagEnPassant
	FlagCastle
	FlagPromotion
)

// Move is a legal move in a specific position. Besides the squares it records
// the moving piece and, for captures, the victim, so callers can order and
// filter moves without looking at the board again.
type Move struct {
	From      Square
	To        Square
	Piece     PieceType
	Captured  PieceType
	Promotion PieceType
	Flags     MoveFlag

	raw dragontoothmg.Move
}

// NoMove is the zero Move.
var NoMove Move

func (m Move) IsZero() bool { return m.From == m.To }
func (m Move) IsCapture() bool { return m.Flags&FlagCapture != 0 }
func (m Move) IsEnPassant() bool { return m.Flags&FlagEnPassant != 0 }
func (m Move) IsCastle() bool { return m.Flags&FlagCastle != 0 }
func (m Move) IsPromotion() bool { return m.Flags&FlagPromotion != 0 }
func (m Move) IsQuiet() bool { return m.Flags&(FlagCapture|FlagPromotion) == 0 }
func (m Move) Same(o Move) bool { return m.From == o.From && m.To == o.To && m.Promotion == o.Promotion }

// String returns the move in UCI long algebraic form (e2e4, e7e8q).
func (m Move) String() string {
	if m.IsZero() {
		return "0000"
	}
	return m.From.String() + m.To.String() + m.Promotion.String()
}

// FindMove returns the legal move whose UCI string equals uci.
func FindMove(moves []Move, uci string) (Move, bool) {
	uci = strings.ToLower(strings.TrimSpace(uci))
	for _, m := range moves {
		if m.String() == uci {
			return m, true
		}
	}
	return NoMove, false
}

func (p *Position) convert(raw dragontoothmg.Move) Move {
	us, them := p.sides()
	from, to := Square(raw.From()), Square(raw.To())
	m := Move{
		From:      from,
		To:        to,
		Piece:     pieceOn(us, from),
		Captured:  pieceOn(them, to),
		Promotion: PieceType(raw.Promote()),
		raw:       raw,
	}
	if m.Piece == Pawn && m.Captured == NoPiece && from.File() != to.File() {
		m.Captured = Pawn
		m.Flags |= FlagEnPassant
	}
	if m.Captured != NoPiece {
		m.Flags |= FlagCapture
	}
	if m.Promotion != NoPiece {
		m.Flags |= FlagPromotion
	}
	if m.Piece == King && (from.File()-to.File() == 2 || to.File()-from.File() == 2) {
		m.Flags |= FlagCastle
	}
	return m
}

func pieceOn(bb *dragontoothmg.Bitboards, sq Square) PieceType {
	mask := uint64(1) << sq
	switch {
	case bb.All&mask == 0:
		return NoPiece
	case bb.Pawns&mask != 0:
		return Pawn
	case bb.Knights&mask != 0:
		return Knight
	case bb.Bishops&mask != 0:
		return Bishop
	case bb.Rooks&mask != 0:
		return Rook
	case bb.Queens&mask != 0:
		return Queen
	case bb.Kings&mask != 0:
		return King
	}
	return NoPiece
}
