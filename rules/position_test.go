package rules_test

import (
	"errors"
	"testing"

	"github.com/HA5ANT/CHESS-MASTER/rules"
)

func TestParseFENRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":             "",
		"garbage":           "not a fen",
		"no kings":          "8/8/8/8/8/8/8/8 w - - 0 1",
		"two white kings":   "4k3/8/8/8/8/8/8/3KK3 w - - 0 1",
		"bad side":          "4k3/8/8/8/8/8/8/4K3 x - - 0 1",
		"short rank":        "4k3/8/8/8/8/8/8/4K2 w - - 0 1",
		"pawn on rank 1":    "4k3/8/8/8/8/8/8/P3K3 w - - 0 1",
		"opponent in check": "4k3/8/8/8/8/8/8/4R1K1 w - - 0 1",
	}
	for name, fen := range cases {
		if _, err := rules.ParseFEN(fen); !errors.Is(err, rules.ErrInvalidFEN) {
			t.Errorf("%s: expected ErrInvalidFEN, got %v", name, err)
		}
	}
}

func TestParseFENAcceptsFourFields(t *testing.T) {
	pos, err := rules.ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -")
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}
	if pos.FullmoveNumber() != 1 || pos.HalfmoveClock() != 0 {
		t.Fatalf("clocks not defaulted: %d %d", pos.FullmoveNumber(), pos.HalfmoveClock())
	}
	if pos.Ply() != 0 || pos.SideToMove() != rules.White {
		t.Fatalf("unexpected ply/side %d %v", pos.Ply(), pos.SideToMove())
	}
}

func TestApplyUndoRestoresPosition(t *testing.T) {
	fen := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	pos := rules.MustParseFEN(fen)
	hash := pos.Hash()
	before := pos.FEN()
	for _, m := range pos.LegalMoves() {
		undo := pos.Apply(m)
		if pos.SideToMove() != rules.Black {
			t.Fatalf("%s: side to move not switched", m)
		}
		undo()
		if pos.FEN() != before || pos.Hash() != hash {
			t.Fatalf("%s: undo did not restore position: %s", m, pos.FEN())
		}
	}
}

func TestMoveFlags(t *testing.T) {
	pos := rules.MustParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	moves := pos.LegalMoves()

	castle, ok := rules.FindMove(moves, "e1g1")
	if !ok || !castle.IsCastle() || castle.Piece != rules.King {
		t.Fatalf("expected kingside castle, got %+v", castle)
	}
	capture, ok := rules.FindMove(moves, "e5f7")
	if !ok || !capture.IsCapture() || capture.Captured != rules.Pawn || capture.Piece != rules.Knight {
		t.Fatalf("expected Nxf7 capture, got %+v", capture)
	}
	quiet, ok := rules.FindMove(moves, "a2a3")
	if !ok || !quiet.IsQuiet() {
		t.Fatalf("expected quiet a2a3, got %+v", quiet)
	}

	ep := rules.MustParseFEN("4k3/8/8/3Pp3/8/8/8/4K3 w - e6 0 1")
	m, ok := rules.FindMove(ep.LegalMoves(), "d5e6")
	if !ok || !m.IsEnPassant() || !m.IsCapture() || m.Captured != rules.Pawn {
		t.Fatalf("expected en passant capture, got %+v", m)
	}

	promo := rules.MustParseFEN("4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	m, ok = rules.FindMove(promo.LegalMoves(), "a7a8q")
	if !ok || !m.IsPromotion() || m.Promotion != rules.Queen {
		t.Fatalf("expected queen promotion, got %+v", m)
	}
	if m.String() != "a7a8q" {
		t.Fatalf("promotion string: %s", m.String())
	}
}

func TestPlayRejectsIllegalMove(t *testing.T) {
	pos := rules.NewPosition()
	if _, err := pos.Play("e2e5"); !errors.Is(err, rules.ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	if _, err := pos.Play("e2e4"); err != nil {
		t.Fatalf("play e2e4: %v", err)
	}
	if pos.Ply() != 1 {
		t.Fatalf("ply after e2e4: %d", pos.Ply())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	pos := rules.NewPosition()
	clone := pos.Clone()
	if _, err := clone.Play("d2d4"); err != nil {
		t.Fatalf("play: %v", err)
	}
	if pos.FEN() == clone.FEN() {
		t.Fatalf("clone shares state with original")
	}
}

func TestMoveCountForBothSides(t *testing.T) {
	pos := rules.NewPosition()
	if w, b := pos.MoveCount(rules.White), pos.MoveCount(rules.Black); w != 20 || b != 20 {
		t.Fatalf("start position mobility: white %d black %d", w, b)
	}
	if pos.SideToMove() != rules.White {
		t.Fatalf("MoveCount changed side to move")
	}
}

func TestMoveCountAfterDoublePush(t *testing.T) {
	pos := rules.NewPosition()
	if _, err := pos.Play("e2e4"); err != nil {
		t.Fatalf("play: %v", err)
	}
	before := pos.FEN()
	for i := 0; i < 2; i++ {
		if w, b := pos.MoveCount(rules.White), pos.MoveCount(rules.Black); w != 30 || b != 20 {
			t.Fatalf("call %d: white %d black %d", i, w, b)
		}
	}
	if after := pos.FEN(); after != before {
		t.Fatalf("MoveCount changed the board: %s -> %s", before, after)
	}
	if n := len(pos.LegalMoves()); n != 20 {
		t.Fatalf("black has %d legal moves after 1.e4", n)
	}
}

func TestMoveCountWithEnPassantFromFEN(t *testing.T) {
	pos := rules.MustParseFEN("rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 3")
	fen := pos.FEN()
	first := pos.MoveCount(rules.White)
	if second := pos.MoveCount(rules.White); first != second {
		t.Fatalf("white mobility changed between calls: %d then %d", first, second)
	}
	if pos.FEN() != fen {
		t.Fatalf("MoveCount changed the board: %s", pos.FEN())
	}
	if _, err := pos.Play("d4e3"); err != nil {
		t.Fatalf("en passant capture: %v", err)
	}
}

func TestMirrorFEN(t *testing.T) {
	got, err := rules.MirrorFEN("r3k2r/8/8/3pP3/8/8/8/R3K2R w Kq d6 0 1")
	if err != nil {
		t.Fatalf("mirror: %v", err)
	}
	want := "r3k2r/8/8/8/3Pp3/8/8/R3K2R b Qk d3 0 1"
	if got != want {
		t.Fatalf("mirror: got %q want %q", got, want)
	}
}

func TestLegalMovesFrom(t *testing.T) {
	pos := rules.NewPosition()
	moves := pos.LegalMovesFrom(rules.MustParseSquare("g1"))
	if len(moves) != 2 {
		t.Fatalf("expected 2 knight moves from g1, got %d", len(moves))
	}
	if moves := pos.LegalMovesFrom(rules.MustParseSquare("e4")); len(moves) != 0 {
		t.Fatalf("expected no moves from empty square")
	}
}
