package engine

import (
	"testing"
	"time"

	"github.com/HA5ANT/CHESS-MASTER/rules"
)

func quickConfig(depth int) Config {
	return Config{MaxDepth: depth, MaxTime: 30 * time.Second, SafetyThreshold: DefaultSafetyThreshold}
}

func TestSearchFindsMateInOne(t *testing.T) {
	cases := []struct {
		fen  string
		side rules.Color
		want string
	}{
		{"6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 30", rules.White, "a1a8"},
		{"r5k1/8/8/8/8/8/5PPP/6K1 b - - 0 30", rules.Black, "a8a1"},
	}
	sel := NewSelector()
	for depth := 1; depth <= 3; depth++ {
		for _, tc := range cases {
			res, err := sel.SelectMove(parse(t, tc.fen), nil, tc.side, quickConfig(depth))
			if err != nil {
				t.Fatalf("select: %v", err)
			}
			if res.Move.String() != tc.want {
				t.Fatalf("depth %d %s: expected %s, got %s", depth, tc.fen, tc.want, res.Move)
			}
			if !res.Score.IsMate() {
				t.Fatalf("depth %d: expected a mate score, got %d", depth, res.Score)
			}
			if (tc.side == rules.White) != (res.Score > 0) {
				t.Fatalf("depth %d: mate score has the wrong sign: %d", depth, res.Score)
			}
		}
	}
}

func TestSearchPrefersWinningMaterial(t *testing.T) {
	// Black queen hangs on d5.
	pos := parse(t, "4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 30")
	res, err := NewSelector().SelectMove(pos, nil, rules.White, quickConfig(2))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if res.Move.String() != "d2d5" {
		t.Fatalf("expected Rxd5, got %s", res.Move)
	}
}

func TestRootSearchRanksBestFirst(t *testing.T) {
	pos := parse(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 30")
	th := newTimeHandler(time.Minute)
	ranked := newSearcher(th).rootSearch(pos, 2)
	if len(ranked) != len(pos.LegalMoves()) {
		t.Fatalf("expected every root move ranked, got %d", len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Fatalf("ranking not descending at %d", i)
		}
	}
	if ranked[0].Move.String() != "a1a8" || ranked[0].Score != MateIn(1) {
		t.Fatalf("unexpected best root move %s %d", ranked[0].Move, ranked[0].Score)
	}
}

func TestQuiescenceResolvesHangingPiece(t *testing.T) {
	// White to move can win the rook on e5 with the pawn.
	pos := parse(t, "4k3/8/8/4r3/3P4/8/8/K7 w - - 0 30")
	s := newSearcher(unlimited())
	resolved := s.resolve(pos)
	if static := relativeEval(pos); resolved < static+300 {
		t.Fatalf("quiescence missed the capture: static %d resolved %d", static, resolved)
	}
}

func TestSearchDoesNotModifyPosition(t *testing.T) {
	pos := parse(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 30")
	fen, hash := pos.FEN(), pos.Hash()
	if _, err := NewSelector().SelectMove(pos, nil, rules.White, quickConfig(2)); err != nil {
		t.Fatalf("select: %v", err)
	}
	if pos.FEN() != fen || pos.Hash() != hash {
		t.Fatalf("position modified by search")
	}
}

func TestSearchHonorsDeadline(t *testing.T) {
	pos := parse(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 30")
	cfg := Config{MaxDepth: 5, MaxTime: 100 * time.Millisecond, SafetyThreshold: DefaultSafetyThreshold}
	start := time.Now()
	res, err := NewSelector().SelectMove(pos, nil, rules.White, cfg)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if elapsed := time.Since(start); elapsed > cfg.MaxTime+safetyFilterBudget+500*time.Millisecond {
		t.Fatalf("search overran its budget: %v", elapsed)
	}
	if _, ok := rules.FindMove(pos.LegalMoves(), res.Move.String()); !ok {
		t.Fatalf("timed out search returned illegal move %s", res.Move)
	}
}

func TestTimeoutBeforeFirstMoveReturnsFirstOrderedMove(t *testing.T) {
	pos := parse(t, "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 10")
	cfg := Config{MaxDepth: 4, MaxTime: time.Nanosecond, SafetyThreshold: DefaultSafetyThreshold}
	res, err := NewSelector().SelectMove(pos, nil, rules.White, cfg)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	want := OrderMoves(pos.LegalMoves())[0]
	if !res.Move.Same(want) {
		t.Fatalf("expected first ordered move %s, got %s", want, res.Move)
	}
	if !res.TimedOut {
		t.Fatalf("expected the search to report a timeout")
	}
}

func TestSearchIsDeterministic(t *testing.T) {
	fen := "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 10"
	sel := NewSelector()
	first, err := sel.SelectMove(parse(t, fen), nil, rules.White, quickConfig(3))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	for i := 0; i < 2; i++ {
		again, err := sel.SelectMove(parse(t, fen), nil, rules.White, quickConfig(3))
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if !again.Move.Same(first.Move) || again.Score != first.Score || again.Nodes != first.Nodes {
			t.Fatalf("non-deterministic result: %s/%d vs %s/%d", first.Move, first.Score, again.Move, again.Score)
		}
	}
}

func TestSelectedMoveIsLegal(t *testing.T) {
	fens := []string{
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 30",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 30",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 30",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 30",
		"8/8/8/8/8/5k2/4p3/6K1 b - - 0 60",
	}
	sel := NewSelector()
	for _, fen := range fens {
		pos := parse(t, fen)
		res, err := sel.SelectMove(pos, nil, pos.SideToMove(), quickConfig(2))
		if err != nil {
			t.Fatalf("%s: %v", fen, err)
		}
		if _, ok := rules.FindMove(pos.LegalMoves(), res.Move.String()); !ok {
			t.Fatalf("%s: illegal move %s", fen, res.Move)
		}
	}
}

func TestRootSearchScoresAreExact(t *testing.T) {
	pos := parse(t, "r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4")
	ranked := newSearcher(unlimited()).rootSearch(pos, 2)
	if len(ranked) != len(pos.LegalMoves()) {
		t.Fatalf("expected every root move ranked, got %d", len(ranked))
	}
	for _, rm := range ranked {
		unapply := pos.Apply(rm.Move)
		score, _ := newSearcher(unlimited()).alphabeta(pos, 1, -MaxScore, MaxScore, 1)
		unapply()
		if rm.Score != -score {
			t.Errorf("%s: ranked score %d, full window score %d", rm.Move, rm.Score, -score)
		}
	}
}

func TestMateOnHundredthHalfmoveIsMate(t *testing.T) {
	// Ra8 is mate and also the hundredth halfmove without a capture or pawn move.
	pos := parse(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 99 80")
	for depth := 1; depth <= 3; depth++ {
		ranked := newSearcher(unlimited()).rootSearch(pos, depth)
		if ranked[0].Move.String() != "a1a8" || ranked[0].Score != MateIn(1) {
			t.Fatalf("depth %d: expected a1a8 mating, got %s %d", depth, ranked[0].Move, ranked[0].Score)
		}
	}
	res, err := NewSelector(WithBook(nil)).SelectMove(pos, nil, rules.White, quickConfig(2))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if res.Move.String() != "a1a8" || !res.Score.IsMate() {
		t.Fatalf("expected a1a8 with a mate score, got %s %d", res.Move, res.Score)
	}
}

func TestHorizonNodesCountedOnce(t *testing.T) {
	// Neither side can capture after one move from the initial position, so a
	// one-ply search visits exactly one node per root move.
	s := newSearcher(unlimited())
	s.rootSearch(rules.NewPosition(), 1)
	if s.nodes != 20 {
		t.Fatalf("expected 20 nodes, got %d", s.nodes)
	}
}

func TestSearchAfterDoublePush(t *testing.T) {
	pos := rules.NewPosition()
	if _, err := pos.Play("e2e4"); err != nil {
		t.Fatalf("play: %v", err)
	}
	fen, hash := pos.FEN(), pos.Hash()
	sel := NewSelector(WithBook(nil))
	for depth := 1; depth <= 3; depth++ {
		res, err := sel.SelectMove(pos, []string{"e2e4"}, rules.Black, quickConfig(depth))
		if err != nil {
			t.Fatalf("depth %d: %v", depth, err)
		}
		if _, ok := rules.FindMove(pos.LegalMoves(), res.Move.String()); !ok {
			t.Fatalf("depth %d: illegal move %s", depth, res.Move)
		}
		if pos.FEN() != fen || pos.Hash() != hash {
			t.Fatalf("depth %d: position modified: %s", depth, pos.FEN())
		}
	}
}
