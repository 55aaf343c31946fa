package rules

// Perft counts the leaf nodes of the legal move tree to the given depth.
// It is the standard correctness check for move generation.
func Perft(p *Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := p.board.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		unapply := p.board.Apply(m)
		nodes += Perft(p, depth-1)
		unapply()
	}
	return nodes
}

// Divide returns the perft count below each root move, keyed by UCI string.
func Divide(p *Position, depth int) map[string]uint64 {
	out := make(map[string]uint64)
	for _, m := range p.LegalMoves() {
		undo := p.Apply(m)
		out[m.String()] = Perft(p, depth-1)
		undo()
	}
	return out
}
