package engine

import (
	"strings"

	"github.com/HA5ANT/CHESS-MASTER/rules"
)

// Source tells where a selected move came from.
type Source uint8

const (
	SourceSearch Source = iota
	SourceBook
	SourceThematic
)

func (s Source) String() string {
	switch s {
	case SourceBook:
		return "book"
	case SourceThematic:
		return "thematic"
	}
	return "search"
}

// BookMove is an opening book answer.
type BookMove struct {
	Move       rules.Move
	Source     Source
	Repertoire string
}

// bookNode is a trie node keyed by UCI moves. next keeps the continuations in
// the order they were added, which is the order of preference.
type bookNode struct {
	next     []string
	children map[string]*bookNode
}

func newBookNode() *bookNode {
	return &bookNode{children: make(map[string]*bookNode)}
}

// themePattern describes a move by what it does rather than by its squares:
// the moving piece and its destination, or castling.
type themePattern struct {
	piece  rules.PieceType
	to     rules.Square
	castle bool
}

func (p themePattern) matches(m rules.Move) bool {
	if p.castle {
		return m.IsCastle() && m.To.File() == p.to.File()
	}
	return !m.IsCastle() && m.Piece == p.piece && m.To == p.to
}

// Repertoire is the opening knowledge for one side: concrete lines plus a
// strategic plan used once play leaves the lines.
type Repertoire struct {
	Name  string
	Side  rules.Color
	root  *bookNode
	theme []themePattern
}

func NewRepertoire(name string, side rules.Color) *Repertoire {
	return &Repertoire{Name: name, Side: side, root: newBookNode()}
}

// AddLine adds a space separated sequence of UCI moves starting from the
// initial position.
func (r *Repertoire) AddLine(line string) *Repertoire {
	node := r.root
	for _, mv := range strings.Fields(line) {
		child, ok := node.children[mv]
		if !ok {
			child = newBookNode()
			node.children[mv] = child
			node.next = append(node.next, mv)
		}
		node = child
	}
	return r
}

// AddTheme appends a plan move: piece to the destination square.
func (r *Repertoire) AddTheme(piece rules.PieceType, to string) *Repertoire {
	r.theme = append(r.theme, themePattern{piece: piece, to: rules.MustParseSquare(to)})
	return r
}

// AddCastle appends castling towards the given king destination (g1/c1/g8/c8).
func (r *Repertoire) AddCastle(to string) *Repertoire {
	r.theme = append(r.theme, themePattern{piece: rules.King, to: rules.MustParseSquare(to), castle: true})
	return r
}

// continuations returns the book replies after history, or nil if history
// left the book.
func (r *Repertoire) continuations(history []string) []string {
	node := r.root
	for _, mv := range history {
		child, ok := node.children[mv]
		if !ok {
			return nil
		}
		node = child
	}
	return node.next
}

// OpeningBook holds one repertoire per side.
type OpeningBook struct {
	repertoires [2]*Repertoire
}

func NewOpeningBook(reps ...*Repertoire) *OpeningBook {
	b := &OpeningBook{}
	for _, r := range reps {
		b.repertoires[r.Side] = r
	}
	return b
}

// Lookup returns the book move for the side to move in pos. history is the
// UCI move list that led to pos from the initial position; if replaying it does
// not reach pos the book is skipped. Thematic moves are only
// played if the static evaluation after the move, from the mover's point of
// view, is at least threshold.
func (b *OpeningBook) Lookup(pos *rules.Position, history []string, threshold Score) (BookMove, bool) {
	if b == nil {
		return BookMove{}, false
	}
	rep := b.repertoires[pos.SideToMove()]
	if rep == nil || len(history) != pos.Ply() {
		return BookMove{}, false
	}
	next := rep.continuations(history)
	if len(next) == 0 && len(history) >= ThematicPlyLimit {
		return BookMove{}, false
	}
	if !reachedFromStart(pos, history) {
		return BookMove{}, false
	}
	legal := pos.LegalMoves()

	for _, uci := range next {
		if m, ok := rules.FindMove(legal, uci); ok {
			return BookMove{Move: m, Source: SourceBook, Repertoire: rep.Name}, true
		}
	}

	if len(history) >= ThematicPlyLimit {
		return BookMove{}, false
	}
	for _, pattern := range rep.theme {
		for _, m := range legal {
			if !pattern.matches(m) {
				continue
			}
			unapply := pos.Apply(m)
			score := -relativeEval(pos)
			unapply()
			if score >= threshold {
				return BookMove{Move: m, Source: SourceThematic, Repertoire: rep.Name}, true
			}
		}
	}
	return BookMove{}, false
}

func reachedFromStart(pos *rules.Position, history []string) bool {
	replay := rules.NewPosition()
	for _, mv := range history {
		if _, err := replay.Play(mv); err != nil {
			return false
		}
	}
	return replay.Hash() == pos.Hash()
}

// EnglishOpening is White's repertoire: 1.c4 with a kingside fianchetto.
func EnglishOpening() *Repertoire {
	return NewRepertoire("English Opening", rules.White).
		AddLine("c2c4 e7e5 b1c3 g8f6 g2g3").
		AddLine("c2c4 e7e5 b1c3 b8c6 g2g3").
		AddLine("c2c4 e7e5 g2g3 g8f6 f1g2").
		AddLine("c2c4 e7e5 g2g3 b8c6 f1g2").
		AddLine("c2c4 c7c5 b1c3 b8c6 g2g3").
		AddLine("c2c4 c7c5 b1c3 g8f6 g2g3").
		AddLine("c2c4 c7c5 g2g3 b8c6 f1g2").
		AddLine("c2c4 g8f6 b1c3 e7e5 g2g3").
		AddLine("c2c4 g8f6 b1c3 d7d5 c4d5 f6d5 g2g3").
		AddLine("c2c4 g8f6 g2g3 e7e6 f1g2").
		AddLine("c2c4 d7d5 c4d5 d8d5 b1c3").
		AddLine("c2c4 d7d5 b1c3").
		AddLine("c2c4 e7e6 b1c3").
		AddLine("c2c4 e7e6 g2g3").
		AddLine("c2c4 e7e6 g1f3").
		AddTheme(rules.Knight, "c3").
		AddTheme(rules.Pawn, "g3").
		AddTheme(rules.Bishop, "g2").
		AddTheme(rules.Knight, "f3").
		AddCastle("g1").
		AddTheme(rules.Pawn, "d3").
		AddTheme(rules.Pawn, "e4").
		AddTheme(rules.Pawn, "b3")
}

// ModernDefense is Black's repertoire: ...g6 and ...Bg7 against everything.
func ModernDefense() *Repertoire {
	return NewRepertoire("Modern Defense", rules.Black).
		AddLine("e2e4 g7g6 d2d4 f8g7 b1c3 d7d6").
		AddLine("e2e4 g7g6 d2d4 f8g7 g1f3 d7d6").
		AddLine("e2e4 g7g6 d2d4 f8g7 c2c4 d7d6").
		AddLine("e2e4 g7g6 d2d4 f8g7 c2c3 d7d6").
		AddLine("e2e4 g7g6 g1f3 f8g7 d2d4 d7d6").
		AddLine("e2e4 g7g6 g1f3 f8g7 f1c4 c7c5").
		AddLine("e2e4 g7g6 b1c3 f8g7 d2d4 d7d6").
		AddLine("e2e4 g7g6 b1c3 f8g7 f2f4 d7d6").
		AddLine("d2d4 g7g6 c2c4 f8g7 b1c3 d7d6").
		AddLine("d2d4 g7g6 e2e4 f8g7 b1c3 d7d6").
		AddLine("d2d4 g7g6 g1f3 f8g7 c2c4 d7d6").
		AddLine("g1f3 g7g6 d2d4 f8g7").
		AddLine("g1f3 g7g6 c2c4 f8g7").
		AddLine("c2c4 g7g6 b1c3 f8g7").
		AddLine("c2c4 g7g6 d2d4 f8g7").
		AddTheme(rules.Pawn, "g6").
		AddTheme(rules.Bishop, "g7").
		AddTheme(rules.Pawn, "d6").
		AddTheme(rules.Knight, "d7").
		AddTheme(rules.Pawn, "e5").
		AddTheme(rules.Pawn, "c6").
		AddTheme(rules.Pawn, "a6").
		AddTheme(rules.Pawn, "b5")
}

// DefaultBook is built once and only read afterwards.
var DefaultBook = NewOpeningBook(EnglishOpening(), ModernDefense())
