package engine

import "github.com/HA5ANT/CHESS-MASTER/rules"

// Accept reports whether playing move in pos keeps the mover's score within
// threshold of where it stood before the move. candidate and baseline are
// both from the mover's point of view. A move that mates is always accepted.
func Accept(pos *rules.Position, move rules.Move, candidate, baseline, threshold Score) bool {
	if candidate-baseline >= threshold {
		return true
	}
	unapply := pos.Apply(move)
	defer unapply()
	return pos.IsCheckmate()
}

// pickSafe walks ranked best first and returns the first move the safety
// filter accepts. Each candidate is resolved with quiescence search after the
// move and compared to the static evaluation before it. When nothing passes,
// or the filter runs out of time, it returns ranked[0] and false.
func pickSafe(pos *rules.Position, ranked []RootMove, threshold Score, th TimeHandler) (RootMove, bool) {
	if len(ranked) == 0 {
		return RootMove{}, false
	}
	baseline := relativeEval(pos)
	s := newSearcher(th)
	for _, rm := range ranked {
		if rm.Score > Checkmate {
			return rm, true
		}
		unapply := pos.Apply(rm.Move)
		candidate := -s.resolve(pos)
		unapply()
		if s.stopped {
			break
		}
		if Accept(pos, rm.Move, candidate, baseline, threshold) {
			return rm, true
		}
	}
	return ranked[0], false
}
