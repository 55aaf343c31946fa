package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/HA5ANT/CHESS-MASTER/rules"
)

// The safety filter gets at most this much time on top of the search budget.
const safetyFilterBudget = 250 * time.Millisecond

// Result is the outcome of a move selection. Score is from White's point of
// view. For terminal positions Move is rules.NoMove and Outcome says why.
type Result struct {
	Move     rules.Move
	Score    Score
	Terminal bool
	Outcome  rules.Outcome
	Source   Source
	Depth    int
	Nodes    uint64
	Elapsed  time.Duration
	TimedOut bool
	// Unsafe is set when no move passed the safety filter and the best
	// scoring one was returned anyway.
	Unsafe bool
}

// Selector picks moves. It is safe for concurrent use: all per-call state
// lives in the call.
type Selector struct {
	book   *OpeningBook
	logger *zap.Logger
}

type Option func(*Selector)

func WithLogger(l *zap.Logger) Option {
	return func(s *Selector) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBook replaces the opening book. A nil book disables it.
func WithBook(b *OpeningBook) Option {
	return func(s *Selector) { s.book = b }
}

func NewSelector(opts ...Option) *Selector {
	s := &Selector{book: DefaultBook, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectMove chooses the move side should play in pos. history is the list of
// UCI moves played from the initial position, used for the opening book. pos
// is not modified.
func (s *Selector) SelectMove(pos *rules.Position, history []string, side rules.Color, cfg Config) (Result, error) {
	return s.choose(pos, history, side, cfg)
}

// SuggestMove is SelectMove for hints: the caller does not commit the move.
func (s *Selector) SuggestMove(pos *rules.Position, history []string, side rules.Color, cfg Config) (Result, error) {
	return s.choose(pos, history, side, cfg)
}

func (s *Selector) choose(pos *rules.Position, history []string, side rules.Color, cfg Config) (Result, error) {
	if pos == nil {
		return Result{}, fmt.Errorf("%w: no position", ErrInvalidPosition)
	}
	if side != pos.SideToMove() {
		return Result{}, fmt.Errorf("%w: %s is not to move", ErrInvalidPosition, side)
	}
	cfg = cfg.normalize()
	th := newTimeHandler(cfg.MaxTime)
	work := pos.Clone()

	if outcome := work.Outcome(); outcome != rules.Ongoing {
		res := Result{Terminal: true, Outcome: outcome}
		if outcome == rules.Checkmate {
			res.Score = whitePOV(-MaxScore, side)
		}
		return res, nil
	}

	if bm, ok := s.book.Lookup(work, history, cfg.SafetyThreshold); ok {
		unapply := work.Apply(bm.Move)
		score := Evaluate(work)
		unapply()
		s.logger.Debug("book move",
			zap.String("move", bm.Move.String()),
			zap.String("source", bm.Source.String()),
			zap.String("repertoire", bm.Repertoire))
		return Result{Move: bm.Move, Score: score, Source: bm.Source, Elapsed: th.Elapsed()}, nil
	}

	srch := newSearcher(th)
	ranked := srch.rootSearch(work, cfg.MaxDepth)

	filterTime := newTimeHandler(min(cfg.MaxTime, safetyFilterBudget))
	choice, safe := pickSafe(work, ranked, cfg.SafetyThreshold, filterTime)
	if !safe {
		s.logger.Warn("SafetyFilterExhausted",
			zap.String("fen", work.FEN()),
			zap.String("move", choice.Move.String()),
			zap.Int("candidates", len(ranked)))
	}

	res := Result{
		Move:     choice.Move,
		Score:    whitePOV(choice.Score, side),
		Source:   SourceSearch,
		Depth:    cfg.MaxDepth,
		Nodes:    srch.nodes,
		Elapsed:  th.Elapsed(),
		TimedOut: srch.stopped,
		Unsafe:   !safe,
	}
	s.logger.Debug("search done",
		zap.String("move", res.Move.String()),
		zap.Int("depth", res.Depth),
		zap.Uint64("nodes", res.Nodes),
		zap.Duration("elapsed", res.Elapsed),
		zap.Bool("timed_out", res.TimedOut),
		zap.Stringer("score", res.Score))
	return res, nil
}

func whitePOV(score Score, side rules.Color) Score {
	if side == rules.Black {
		return -score
	}
	return score
}
