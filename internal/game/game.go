package game

import (
	"errors"
	"fmt"

	"github.com/HA5ANT/CHESS-MASTER/engine"
	"github.com/HA5ANT/CHESS-MASTER/rules"
)

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrNothingToUndo = errors.New("no moves to undo")
	ErrNothingToRedo = errors.New("no moves to redo")
	ErrNoMove        = errors.New("no valid move found")
	ErrInvalidColor  = errors.New("invalid player color")
)

// Game is a session's game record. The board is never stored: it is rebuilt
// by replaying Moves from StartFEN.
type Game struct {
	StartFEN string   `json:"start_fen"`
	Moves    []string `json:"moves"`
	Redo     []string `json:"redo,omitempty"`
	AIColor  string   `json:"ai_color,omitempty"`
}

func New() *Game {
	return &Game{StartFEN: rules.StartFEN}
}

func (g *Game) Clone() *Game {
	c := *g
	c.Moves = append([]string(nil), g.Moves...)
	c.Redo = append([]string(nil), g.Redo...)
	return &c
}

// Position replays the game and returns the current board.
func (g *Game) Position() (*rules.Position, error) {
	pos, err := rules.ParseFEN(g.StartFEN)
	if err != nil {
		return nil, err
	}
	for _, mv := range g.Moves {
		if _, err := pos.Play(mv); err != nil {
			return nil, fmt.Errorf("replay %s: %w", mv, err)
		}
	}
	return pos, nil
}

// SetAIColor sets which side the engine plays; "" clears it.
func (g *Game) SetAIColor(color string) error {
	if color == "" {
		g.AIColor = ""
		return nil
	}
	c, err := rules.ParseColor(color)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}
	g.AIColor = c.String()
	return nil
}

func (g *Game) aiColor() (rules.Color, bool) {
	if g.AIColor == "" {
		return rules.White, false
	}
	c, err := rules.ParseColor(g.AIColor)
	return c, err == nil
}

// MakeMove plays uci if it is legal and clears the redo stack.
func (g *Game) MakeMove(uci string) (rules.Move, error) {
	pos, err := g.Position()
	if err != nil {
		return rules.NoMove, err
	}
	m, err := pos.Play(uci)
	if err != nil {
		return rules.NoMove, err
	}
	g.Moves = append(g.Moves, m.String())
	g.Redo = g.Redo[:0]
	return m, nil
}

func (g *Game) undoOne() string {
	last := g.Moves[len(g.Moves)-1]
	g.Moves = g.Moves[:len(g.Moves)-1]
	g.Redo = append(g.Redo, last)
	return last
}

// Undo takes back the last move. When the engine plays one side and the
// takeback leaves it on move, the move before is taken back too so the human
// is on move again.
func (g *Game) Undo() ([]string, error) {
	if len(g.Moves) == 0 {
		return nil, ErrNothingToUndo
	}
	undone := []string{g.undoOne()}
	ai, ok := g.aiColor()
	if !ok || len(g.Moves) == 0 {
		return undone, nil
	}
	pos, err := g.Position()
	if err != nil {
		return undone, err
	}
	if pos.SideToMove() == ai {
		undone = append(undone, g.undoOne())
	}
	return undone, nil
}

// RedoMove replays the most recently undone move.
func (g *Game) RedoMove() (string, error) {
	if len(g.Redo) == 0 {
		return "", ErrNothingToRedo
	}
	mv := g.Redo[len(g.Redo)-1]
	pos, err := g.Position()
	if err != nil {
		return "", err
	}
	if _, err := pos.Play(mv); err != nil {
		return "", err
	}
	g.Redo = g.Redo[:len(g.Redo)-1]
	g.Moves = append(g.Moves, mv)
	return mv, nil
}

// Result is the PGN style result of a finished game, or "" while it goes on.
func Result(pos *rules.Position) string {
	switch pos.Outcome() {
	case rules.Checkmate:
		if pos.SideToMove() == rules.Black {
			return "1-0"
		}
		return "0-1"
	case rules.Stalemate:
		return "1/2-1/2 (Stalemate)"
	case rules.InsufficientMaterial:
		return "1/2-1/2 (Insufficient material)"
	case rules.FiftyMoveRule:
		return "1/2-1/2 (Fifty-move rule)"
	case rules.ThreefoldRepetition:
		return "1/2-1/2 (Threefold repetition)"
	}
	return ""
}

// evalLimit caps the reported evaluation, in pawns.
const evalLimit = 10.0

// NormalizedEval is the evaluation in pawns from White's point of view,
// clamped to ±10 and rounded to hundredths. A mated side gets the limit.
func NormalizedEval(pos *rules.Position) float64 {
	if pos.IsCheckmate() {
		if pos.SideToMove() == rules.White {
			return -evalLimit
		}
		return evalLimit
	}
	if pos.Outcome().IsDraw() {
		return 0
	}
	return engine.Clamp(engine.Evaluate(pos).Pawns(), -evalLimit, evalLimit)
}

// State is the snapshot the web client renders.
type State struct {
	FEN           string   `json:"fen"`
	PGN           string   `json:"pgn"`
	LegalMoves    []string `json:"legal_moves"`
	IsGameOver    bool     `json:"is_game_over"`
	Result        string   `json:"result,omitempty"`
	Evaluation    float64  `json:"evaluation"`
	Turn          string   `json:"turn"`
	InCheck       bool     `json:"in_check"`
	MoveHistory   []string `json:"move_history"`
	CanUndo       bool     `json:"can_undo"`
	CanRedo       bool     `json:"can_redo"`
	AIColor       string   `json:"ai_color,omitempty"`
	AIMove        string   `json:"ai_move,omitempty"`
	SuggestedMove string   `json:"suggested_move,omitempty"`
}

// State builds the snapshot of the current position.
func (g *Game) State() (State, error) {
	pos, err := g.Position()
	if err != nil {
		return State{}, err
	}
	pgn, err := rules.PGN(g.StartFEN, g.Moves)
	if err != nil {
		return State{}, err
	}
	legal := pos.LegalMoves()
	moves := make([]string, len(legal))
	for i, m := range legal {
		moves[i] = m.String()
	}
	result := Result(pos)
	return State{
		FEN:         pos.FEN(),
		PGN:         pgn,
		LegalMoves:  moves,
		IsGameOver:  result != "",
		Result:      result,
		Evaluation:  NormalizedEval(pos),
		Turn:        pos.SideToMove().String(),
		InCheck:     pos.InCheck(),
		MoveHistory: append([]string{}, g.Moves...),
		CanUndo:     len(g.Moves) > 0,
		CanRedo:     len(g.Redo) > 0,
		AIColor:     g.AIColor,
	}, nil
}

// bookHistory is the move list the opening book may use: only games that
// start from the initial position have one.
func (g *Game) bookHistory() []string {
	if rules.NormalizeFEN(g.StartFEN) != rules.StartFEN {
		return nil
	}
	return g.Moves
}
