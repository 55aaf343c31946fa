package engine

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"

	"github.com/HA5ANT/CHESS-MASTER/rules"
)

// Evaluation weights.
var (
	MobilityWeight          = 5
	CheckPenalty            = 30
	PawnShieldBonus         = 10
	KingOpenFilePenalty     = 20
	KingSemiOpenFilePenalty = 10
	KingDiagonalPenalty     = 2
	KingCentralizationBonus = 10

	// Non-pawn material of both sides at or below which the endgame terms apply.
	EndgameMaterialLimit = 2600
)

// Evaluate returns a static score for pos in centipawns from White's point of view.
func Evaluate(pos *rules.Position) Score {
	white := pos.Pieces(rules.White)
	black := pos.Pieces(rules.Black)
	endgame := isEndgame(&white, &black)

	score := material(&white) - material(&black)
	score += pieceSquareScore(&white, &black, endgame)
	score += (pos.MoveCount(rules.White) - pos.MoveCount(rules.Black)) * MobilityWeight

	if endgame {
		score += kingActivity(&white, &black)
	} else {
		occupied := white.All | black.All
		score += kingSafety(&white, &black, occupied, true)
		score -= kingSafety(&black, &white, occupied, false)
	}

	if pos.InCheck() {
		if pos.SideToMove() == rules.White {
			score -= CheckPenalty
		} else {
			score += CheckPenalty
		}
	}
	return Score(score)
}

// relativeEval is Evaluate from the side to move's point of view.
func relativeEval(pos *rules.Position) Score {
	if pos.SideToMove() == rules.White {
		return Evaluate(pos)
	}
	return -Evaluate(pos)
}

func material(bb *rules.Bitboards) int {
	return bits.OnesCount64(bb.Pawns)*pieceValue[rules.Pawn] + nonPawnMaterial(bb)
}

func nonPawnMaterial(bb *rules.Bitboards) int {
	return bits.OnesCount64(bb.Knights)*pieceValue[rules.Knight] +
		bits.OnesCount64(bb.Bishops)*pieceValue[rules.Bishop] +
		bits.OnesCount64(bb.Rooks)*pieceValue[rules.Rook] +
		bits.OnesCount64(bb.Queens)*pieceValue[rules.Queen]
}

func isEndgame(white, black *rules.Bitboards) bool {
	return nonPawnMaterial(white)+nonPawnMaterial(black) <= EndgameMaterialLimit
}

func pieceSquareScore(white, black *rules.Bitboards, endgame bool) int {
	score := countPieceTable(white.Pawns, black.Pawns, &PSQT[rules.Pawn])
	score += countPieceTable(white.Knights, black.Knights, &PSQT[rules.Knight])
	score += countPieceTable(white.Bishops, black.Bishops, &PSQT[rules.Bishop])
	score += countPieceTable(white.Rooks, black.Rooks, &PSQT[rules.Rook])
	score += countPieceTable(white.Queens, black.Queens, &PSQT[rules.Queen])
	if endgame {
		score += countPieceTable(white.Kings, black.Kings, &KingEndgamePSQT)
	} else {
		score += countPieceTable(white.Kings, black.Kings, &PSQT[rules.King])
	}
	return score
}

func countPieceTable(wPieceBB, bPieceBB uint64, table *[64]int) (score int) {
	for x := wPieceBB; x != 0; x &= x - 1 {
		score += table[bits.TrailingZeros64(x)]
	}
	for x := bPieceBB; x != 0; x &= x - 1 {
		score -= table[FlipView[bits.TrailingZeros64(x)]]
	}
	return score
}

// kingSafety scores the pawn shield, open files and open diagonals around the
// king of us. forward is true when our pawns advance towards rank 8.
func kingSafety(us, them *rules.Bitboards, occupied uint64, forward bool) int {
	if us.Kings == 0 {
		return 0
	}
	kingSq := bits.TrailingZeros64(us.Kings)
	file, rank := kingSq&7, kingSq>>3
	score := 0

	shieldRank := rank + 1
	if !forward {
		shieldRank = rank - 1
	}
	for f := max(file-1, 0); f <= min(file+1, 7); f++ {
		if shieldRank >= 0 && shieldRank <= 7 && us.Pawns&(uint64(1)<<(shieldRank*8+f)) != 0 {
			score += PawnShieldBonus
		}
		switch {
		case (us.Pawns|them.Pawns)&onlyFile[f] == 0:
			score -= KingOpenFilePenalty
		case us.Pawns&onlyFile[f] == 0:
			score -= KingSemiOpenFilePenalty
		}
	}

	if them.Bishops|them.Queens != 0 {
		rays := dragontoothmg.CalculateBishopMoveBitboard(uint8(kingSq), occupied) &^ us.All
		score -= bits.OnesCount64(rays) * KingDiagonalPenalty
	}
	return score
}

// kingActivity rewards the king closer to the center in endgames.
func kingActivity(white, black *rules.Bitboards) int {
	if white.Kings == 0 || black.Kings == 0 {
		return 0
	}
	wDist := centerManhattanDistance[bits.TrailingZeros64(white.Kings)]
	bDist := centerManhattanDistance[bits.TrailingZeros64(black.Kings)]
	return (bDist - wDist) * KingCentralizationBonus
}
