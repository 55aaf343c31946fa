package engine

import (
	"golang.org/x/exp/slices"

	"github.com/HA5ANT/CHESS-MASTER/rules"
)

// RootMove is a root move with its side-to-move relative search score.
type RootMove struct {
	Move  rules.Move
	Score Score
}

// searcher holds the state of one search call. Nothing in it is shared
// between calls.
type searcher struct {
	timeHandler TimeHandler
	nodes       uint64
	stopped     bool
}

func newSearcher(th TimeHandler) *searcher {
	return &searcher{timeHandler: th}
}

// The clock is read every 256 nodes, starting with the very first one.
func (s *searcher) checkTime() {
	if s.nodes&255 == 0 && s.timeHandler.TimeStatus() {
		s.stopped = true
	}
	s.nodes++
}

// rootSearch searches every legal move of pos to depth and returns them
// ranked best first. Each root move gets the full window, so every score is
// exact. Moves whose subtree was cut short by the deadline are left out,
// except that the first ordered move is always present.
func (s *searcher) rootSearch(pos *rules.Position, depth int) []RootMove {
	moves := OrderMoves(pos.LegalMoves())
	if len(moves) == 0 {
		return nil
	}

	ranked := make([]RootMove, 0, len(moves))
	for _, m := range moves {
		unapply := pos.Apply(m)
		score, _ := s.alphabeta(pos, depth-1, -MaxScore, MaxScore, 1)
		unapply()
		if s.stopped {
			break
		}
		ranked = append(ranked, RootMove{Move: m, Score: -score})
	}

	if len(ranked) == 0 {
		return []RootMove{{Move: moves[0], Score: relativeEval(pos)}}
	}
	slices.SortStableFunc(ranked, func(a, b RootMove) int {
		return int(b.Score) - int(a.Score)
	})
	return ranked
}

// alphabeta is a fail-soft negamax search. It returns the score of pos from
// the side to move's point of view and the best move found at this node.
// Horizon nodes are counted by quiescence, so each node ticks the clock once.
func (s *searcher) alphabeta(pos *rules.Position, depth int, alpha, beta Score, ply int) (Score, rules.Move) {
	if depth <= 0 {
		return s.quiescence(pos, alpha, beta, ply, 0, pos.LegalMoves()), rules.NoMove
	}
	s.checkTime()
	if s.stopped {
		return DrawScore, rules.NoMove
	}

	// Mate outranks the fifty-move rule and repetition.
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		if pos.InCheck() {
			return -MateIn(ply), rules.NoMove
		}
		return DrawScore, rules.NoMove
	}
	if pos.IsDraw() {
		return DrawScore, rules.NoMove
	}

	bestScore := -MaxScore
	bestMove := rules.NoMove
	for _, m := range OrderMoves(moves) {
		unapply := pos.Apply(m)
		score, _ := s.alphabeta(pos, depth-1, -beta, -alpha, ply+1)
		score = -score
		unapply()

		if s.stopped {
			break
		}
		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}
	return bestScore, bestMove
}

// quiescence extends the search along captures (all moves when in check) until
// the position is quiet or qdepth reaches MaxQuiescenceDepth. moves are the
// legal moves of pos, already generated by the caller.
func (s *searcher) quiescence(pos *rules.Position, alpha, beta Score, ply, qdepth int, moves []rules.Move) Score {
	s.checkTime()

	inCheck := pos.InCheck()
	if len(moves) == 0 {
		if inCheck {
			return -MateIn(ply)
		}
		return DrawScore
	}
	if pos.IsDraw() {
		return DrawScore
	}

	standpat := relativeEval(pos)
	if s.stopped || qdepth >= MaxQuiescenceDepth {
		return standpat
	}

	var bestScore Score
	if inCheck {
		// Must escape check
		bestScore = -MaxScore
		moves = OrderMoves(moves)
	} else {
		if standpat >= beta {
			return standpat
		}
		if standpat > alpha {
			alpha = standpat
		}
		bestScore = standpat
		moves = orderCaptures(moves)
	}

	for _, m := range moves {
		unapply := pos.Apply(m)
		score := -s.quiescence(pos, -beta, -alpha, ply+1, qdepth+1, pos.LegalMoves())
		unapply()

		if s.stopped {
			break
		}
		if score > bestScore {
			bestScore = score
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}
	return bestScore
}

// resolve returns the quiescence score of pos for the side to move, with a
// full window.
func (s *searcher) resolve(pos *rules.Position) Score {
	return s.quiescence(pos, -MaxScore, MaxScore, 0, 0, pos.LegalMoves())
}
