package game

import (
	"context"
	"errors"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/HA5ANT/CHESS-MASTER/engine"
	"github.com/HA5ANT/CHESS-MASTER/rules"
)

// Service runs the session games: it loads a game from the store, applies
// the request and writes it back. Requests on one session are serialized.
type Service struct {
	store    Store
	selector *engine.Selector
	cfg      engine.Config
	log      *zap.SugaredLogger

	locks [lockStripes]sync.Mutex
}

// Sessions share a fixed set of mutexes, picked by hashing the session id.
const lockStripes = 64

func NewService(store Store, selector *engine.Selector, cfg engine.Config, log *zap.SugaredLogger) *Service {
	return &Service{
		store:    store,
		selector: selector,
		cfg:      cfg,
		log:      log,
	}
}

func lockStripe(id string) int {
	return int(xxhash.Sum64String(id) % lockStripes)
}

func (s *Service) lock(id string) func() {
	mu := &s.locks[lockStripe(id)]
	mu.Lock()
	return mu.Unlock
}

// load returns the session's game, starting a fresh one for unknown sessions.
func (s *Service) load(ctx context.Context, id string) (*Game, error) {
	g, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrGameNotFound) {
		return New(), nil
	}
	return g, err
}

// update runs fn on the session's game and stores the result if fn succeeds.
func (s *Service) update(ctx context.Context, id string, fn func(g *Game) error) (*Game, error) {
	defer s.lock(id)()
	g, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(g); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, id, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) config(depth int) engine.Config {
	cfg := s.cfg
	cfg.MaxDepth = engine.Clamp(depth, engine.MinDepth, engine.MaxDepth)
	return cfg
}

// NewGame resets the session. playerColor is the human's side; the engine
// takes the other one.
func (s *Service) NewGame(ctx context.Context, id, playerColor string) (State, error) {
	if playerColor == "" {
		playerColor = rules.White.String()
	}
	player, err := rules.ParseColor(playerColor)
	if err != nil {
		return State{}, errors.Join(ErrInvalidColor, err)
	}
	g, err := s.update(ctx, id, func(g *Game) error {
		*g = *New()
		return g.SetAIColor(player.Other().String())
	})
	if err != nil {
		return State{}, err
	}
	return g.State()
}

func (s *Service) State(ctx context.Context, id string) (State, error) {
	defer s.lock(id)()
	g, err := s.load(ctx, id)
	if err != nil {
		return State{}, err
	}
	return g.State()
}

// Move plays the human's move.
func (s *Service) Move(ctx context.Context, id, uci string) (State, error) {
	g, err := s.update(ctx, id, func(g *Game) error {
		_, err := g.MakeMove(uci)
		return err
	})
	if err != nil {
		return State{}, err
	}
	return g.State()
}

// AIMove lets the engine move for the side to move and commits it.
func (s *Service) AIMove(ctx context.Context, id string, depth int) (State, error) {
	var played string
	g, err := s.update(ctx, id, func(g *Game) error {
		res, err := s.choose(g, depth, false)
		if err != nil {
			return err
		}
		m, err := g.MakeMove(res.Move.String())
		played = m.String()
		return err
	})
	if err != nil {
		return State{}, err
	}
	st, err := g.State()
	st.AIMove = played
	return st, err
}

// Suggest returns a hint for the side to move without playing it.
func (s *Service) Suggest(ctx context.Context, id string, depth int) (State, error) {
	defer s.lock(id)()
	g, err := s.load(ctx, id)
	if err != nil {
		return State{}, err
	}
	res, err := s.choose(g, depth, true)
	if err != nil {
		return State{}, err
	}
	st, err := g.State()
	st.SuggestedMove = res.Move.String()
	return st, err
}

func (s *Service) choose(g *Game, depth int, hint bool) (engine.Result, error) {
	pos, err := g.Position()
	if err != nil {
		return engine.Result{}, err
	}
	pick := s.selector.SelectMove
	if hint {
		pick = s.selector.SuggestMove
	}
	res, err := pick(pos, g.bookHistory(), pos.SideToMove(), s.config(depth))
	if err != nil {
		return engine.Result{}, err
	}
	if res.Terminal {
		return engine.Result{}, ErrNoMove
	}
	s.log.Debugw("engine move",
		"move", res.Move.String(),
		"source", res.Source.String(),
		"score", res.Score.String(),
		"nodes", res.Nodes,
		"elapsed", res.Elapsed)
	return res, nil
}

func (s *Service) Undo(ctx context.Context, id string) (State, error) {
	g, err := s.update(ctx, id, func(g *Game) error {
		_, err := g.Undo()
		return err
	})
	if err != nil {
		return State{}, err
	}
	return g.State()
}

func (s *Service) Redo(ctx context.Context, id string) (State, error) {
	g, err := s.update(ctx, id, func(g *Game) error {
		_, err := g.RedoMove()
		return err
	})
	if err != nil {
		return State{}, err
	}
	return g.State()
}

// LegalMovesFrom lists the destination squares of the legal moves from square.
func (s *Service) LegalMovesFrom(ctx context.Context, id, square string) ([]string, error) {
	sq, err := rules.ParseSquare(square)
	if err != nil {
		return nil, err
	}
	defer s.lock(id)()
	g, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	pos, err := g.Position()
	if err != nil {
		return nil, err
	}
	dests := []string{}
	for _, m := range pos.LegalMovesFrom(sq) {
		dests = append(dests, m.To.String())
	}
	return dests, nil
}

func (s *Service) PGN(ctx context.Context, id string) (string, error) {
	defer s.lock(id)()
	g, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	return rules.PGN(g.StartFEN, g.Moves)
}

// Evaluation is the static evaluation of a position as the client shows it.
type Evaluation struct {
	Evaluation float64 `json:"evaluation"`
	FEN        string  `json:"fen"`
	Turn       string  `json:"turn"`
	InCheck    bool    `json:"in_check"`
}

func evaluation(pos *rules.Position, fen string) Evaluation {
	return Evaluation{
		Evaluation: NormalizedEval(pos),
		FEN:        fen,
		Turn:       pos.SideToMove().String(),
		InCheck:    pos.InCheck(),
	}
}

// Evaluate reports on the session's current position.
func (s *Service) Evaluate(ctx context.Context, id string) (Evaluation, error) {
	defer s.lock(id)()
	g, err := s.load(ctx, id)
	if err != nil {
		return Evaluation{}, err
	}
	pos, err := g.Position()
	if err != nil {
		return Evaluation{}, err
	}
	return evaluation(pos, pos.FEN()), nil
}

// EvaluateFEN reports on an arbitrary position. No session is touched.
func (s *Service) EvaluateFEN(fen string) (Evaluation, error) {
	pos, err := rules.ParseFEN(fen)
	if err != nil {
		return Evaluation{}, err
	}
	return evaluation(pos, fen), nil
}

// BestMoveForFEN searches an arbitrary position. No session is touched and
// the opening book only answers for the initial position.
func (s *Service) BestMoveForFEN(fen string, depth int) (string, error) {
	pos, err := rules.ParseFEN(fen)
	if err != nil {
		return "", err
	}
	res, err := s.selector.SelectMove(pos, nil, pos.SideToMove(), s.config(depth))
	if err != nil {
		return "", err
	}
	if res.Terminal {
		return "", ErrNoMove
	}
	return res.Move.String(), nil
}
