package rules_test

import (
	"testing"

	"github.com/HA5ANT/CHESS-MASTER/rules"
)

func TestPerftInitialPosition(t *testing.T) {
	pos := rules.NewPosition()
	for depth, want := range []uint64{1, 20, 400, 8902} {
		if got := rules.Perft(pos, depth); got != want {
			t.Fatalf("perft depth%d: got %d want %d", depth, got, want)
		}
	}
}

func TestPerftKiwipete(t *testing.T) {
	pos := rules.MustParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if got := rules.Perft(pos, 1); got != 48 {
		t.Fatalf("Kiwipete depth1: got %d want %d", got, 48)
	}
	if got := rules.Perft(pos, 2); got != 2039 {
		t.Fatalf("Kiwipete depth2: got %d want %d", got, 2039)
	}
}

func TestDivideSumsToPerft(t *testing.T) {
	pos := rules.NewPosition()
	var total uint64
	for _, n := range rules.Divide(pos, 3) {
		total += n
	}
	if total != 8902 {
		t.Fatalf("divide total %d", total)
	}
}
