package rules

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/dylhunn/dragontoothmg"
	"github.com/notnil/chess"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrInvalidFEN    = errors.New("invalid FEN")
	ErrIllegalMove   = errors.New("illegal move")
	ErrInvalidSquare = errors.New("invalid square")
)

// Bitboards holds one side's piece sets.
type Bitboards = dragontoothmg.Bitboards

// Position is a board plus the hashes of every position reached before it,
// which is what repetition detection needs. A Position is not safe for
// concurrent use; Clone it to hand it to another goroutine.
type Position struct {
	board   dragontoothmg.Board
	history []uint64
	// en passant target square, NoSquare when the last move was not a double push
	ep Square
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	p, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseFEN validates fen and builds a Position from it. Four-field FENs
// (no clocks) are accepted and get "0 1".
func ParseFEN(fen string) (*Position, error) {
	fen = NormalizeFEN(fen)
	if _, err := chess.FEN(fen); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	board, err := parseBoard(fen)
	if err != nil {
		return nil, err
	}
	if bits.OnesCount64(board.White.Kings) != 1 || bits.OnesCount64(board.Black.Kings) != 1 {
		return nil, fmt.Errorf("%w: each side needs exactly one king", ErrInvalidFEN)
	}
	if (board.White.Pawns|board.Black.Pawns)&(rank1|rank8) != 0 {
		return nil, fmt.Errorf("%w: pawns on the back rank", ErrInvalidFEN)
	}
	p := &Position{board: board, ep: NoSquare}
	if fields := strings.Fields(fen); fields[3] != "-" {
		if p.ep, err = ParseSquare(fields[3]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
		}
	}
	if p.sideNotToMoveInCheck() {
		return nil, fmt.Errorf("%w: side not to move is in check", ErrInvalidFEN)
	}
	return p, nil
}

// MustParseFEN is ParseFEN for tests and fixed tables.
func MustParseFEN(fen string) *Position {
	p, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return p
}

// NormalizeFEN trims fen and fills in missing halfmove/fullmove fields.
func NormalizeFEN(fen string) string {
	fields := strings.Fields(fen)
	switch len(fields) {
	case 4:
		fields = append(fields, "0", "1")
	case 5:
		fields = append(fields, "1")
	}
	return strings.Join(fields, " ")
}

func parseBoard(fen string) (b dragontoothmg.Board, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidFEN, r)
		}
	}()
	return dragontoothmg.ParseFen(fen), nil
}

const (
	rank1 uint64 = 0xFF
	rank8 uint64 = 0xFF << 56
)

// Clone returns an independent copy, history included.
func (p *Position) Clone() *Position {
	c := &Position{board: p.board, ep: p.ep}
	c.history = append(make([]uint64, 0, len(p.history)+16), p.history...)
	return c
}

func (p *Position) FEN() string { return p.board.ToFen() }

func (p *Position) Hash() uint64 { return p.board.Hash() }

func (p *Position) SideToMove() Color {
	if p.board.Wtomove {
		return White
	}
	return Black
}

func (p *Position) HalfmoveClock() int { return int(p.board.Halfmoveclock) }
func (p *Position) FullmoveNumber() int { return int(p.board.Fullmoveno) }

// Ply is the number of half-moves played since the start of the game as
// implied by the fullmove counter and side to move.
func (p *Position) Ply() int {
	ply := (p.FullmoveNumber() - 1) * 2
	if p.SideToMove() == Black {
		ply++
	}
	if ply < 0 {
		return 0
	}
	return ply
}

// Pieces returns a copy of the bitboards for side c.
func (p *Position) Pieces(c Color) Bitboards {
	if c == White {
		return p.board.White
	}
	return p.board.Black
}

// Occupancy is the set of all occupied squares.
func (p *Position) Occupancy() uint64 { return p.board.White.All | p.board.Black.All }

// PieceAt reports the piece and its owner on sq.
func (p *Position) PieceAt(sq Square) (PieceType, Color) {
	if pt := pieceOn(&p.board.White, sq); pt != NoPiece {
		return pt, White
	}
	return pieceOn(&p.board.Black, sq), Black
}

func (p *Position) sides() (us, them *dragontoothmg.Bitboards) {
	if p.board.Wtomove {
		return &p.board.White, &p.board.Black
	}
	return &p.board.Black, &p.board.White
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool { return p.board.OurKingInCheck() }

func (p *Position) sideNotToMoveInCheck() bool {
	p.board.Wtomove = !p.board.Wtomove
	defer func() { p.board.Wtomove = !p.board.Wtomove }()
	return p.board.OurKingInCheck()
}

// LegalMoves generates every legal move for the side to move, in generator order.
func (p *Position) LegalMoves() []Move {
	raw := p.board.GenerateLegalMoves()
	moves := make([]Move, len(raw))
	for i := range raw {
		moves[i] = p.convert(raw[i])
	}
	return moves
}

// LegalMovesFrom returns the legal moves that start on sq.
func (p *Position) LegalMovesFrom(sq Square) []Move {
	var out []Move
	for _, m := range p.LegalMoves() {
		if m.From == sq {
			out = append(out, m)
		}
	}
	return out
}

// MoveCount returns the number of legal moves side c would have if it were to
// move in this position. The position is left unchanged.
func (p *Position) MoveCount(c Color) int {
	if p.SideToMove() == c {
		return len(p.board.GenerateLegalMoves())
	}
	// The generator probes en passant captures by editing the board in place,
	// and the target square belongs to the side to move. Count on a copy with
	// the target cleared.
	b := p.board
	if p.ep != NoSquare {
		b = p.boardWithoutEnPassant()
	}
	b.Wtomove = !b.Wtomove
	return len(b.GenerateLegalMoves())
}

func (p *Position) boardWithoutEnPassant() dragontoothmg.Board {
	fields := strings.Fields(p.board.ToFen())
	fields[3] = "-"
	return dragontoothmg.ParseFen(strings.Join(fields, " "))
}

// Apply plays m, which must be legal in p, and returns a closure that takes it back.
func (p *Position) Apply(m Move) (undo func()) {
	n := len(p.history)
	prevEP := p.ep
	p.history = append(p.history, p.board.Hash())
	unapply := p.board.Apply(m.raw)
	p.ep = NoSquare
	if m.Piece == Pawn && (m.To-m.From == 16 || m.From-m.To == 16) {
		p.ep = (m.From + m.To) / 2
	}
	return func() {
		unapply()
		p.history = p.history[:n]
		p.ep = prevEP
	}
}

// Play applies the legal move written in UCI notation permanently.
func (p *Position) Play(uci string) (Move, error) {
	m, ok := FindMove(p.LegalMoves(), uci)
	if !ok {
		return NoMove, fmt.Errorf("%w: %s in %s", ErrIllegalMove, uci, p.FEN())
	}
	p.Apply(m)
	return m, nil
}

// MirrorFEN flips the board vertically and swaps colors, side to move,
// castling rights and the en passant square. Evaluations of a position and its
// mirror are negatives of each other.
func MirrorFEN(fen string) (string, error) {
	fields := strings.Fields(NormalizeFEN(fen))
	if len(fields) != 6 {
		return "", fmt.Errorf("%w: %q", ErrInvalidFEN, fen)
	}
	ranks := strings.Split(fields[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	fields[0] = swapCase(strings.Join(ranks, "/"))
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	if fields[2] != "-" {
		castle := swapCase(fields[2])
		var sorted strings.Builder
		for _, c := range "KQkq" {
			if strings.ContainsRune(castle, c) {
				sorted.WriteRune(c)
			}
		}
		fields[2] = sorted.String()
	}
	if ep := fields[3]; len(ep) == 2 {
		fields[3] = string([]byte{ep[0], '1' + '8' - ep[1]})
	}
	return strings.Join(fields, " "), nil
}

func swapCase(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z':
			return r - 'A' + 'a'
		}
		return r
	}, s)
}

// Mirror returns the color-flipped position. History is not carried over.
func (p *Position) Mirror() (*Position, error) {
	fen, err := MirrorFEN(p.FEN())
	if err != nil {
		return nil, err
	}
	return ParseFEN(fen)
}
