package game

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HA5ANT/CHESS-MASTER/engine"
	"github.com/HA5ANT/CHESS-MASTER/internal/bootstrap"
	"github.com/HA5ANT/CHESS-MASTER/internal/game"
	"github.com/HA5ANT/CHESS-MASTER/internal/httpresponse"
	"github.com/HA5ANT/CHESS-MASTER/rules"
)

const sessionCookie = "session_id"

type GameHandler struct {
	cfg     bootstrap.Config
	log     *zap.SugaredLogger
	service *game.Service
}

func NewGameHandler(cfg bootstrap.Config, log *zap.SugaredLogger, service *game.Service) *GameHandler {
	return &GameHandler{
		cfg:     cfg,
		log:     log,
		service: service,
	}
}

type newGameRequest struct {
	PlayerColor string `json:"player_color"`
}

type moveRequest struct {
	Move string `json:"move"`
}

type bestMoveResponse struct {
	Move  string `json:"move"`
	FEN   string `json:"fen"`
	Depth int    `json:"depth"`
}

type legalMovesResponse struct {
	Square     string   `json:"square"`
	LegalMoves []string `json:"legal_moves"`
}

type pgnResponse struct {
	PGN string `json:"pgn"`
}

// session returns the caller's session id, issuing a cookie on first contact.
func (g *GameHandler) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(g.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// writeError maps service errors to responses. Anything unknown is a 500.
func (g *GameHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var desc string
	switch {
	case errors.Is(err, rules.ErrInvalidFEN):
		desc = "Invalid FEN string"
	case errors.Is(err, rules.ErrIllegalMove):
		desc = "Invalid move"
	case errors.Is(err, rules.ErrInvalidSquare):
		desc = "Invalid square"
	case errors.Is(err, game.ErrNothingToUndo):
		desc = "No moves to undo"
	case errors.Is(err, game.ErrNothingToRedo):
		desc = "No moves to redo"
	case errors.Is(err, game.ErrNoMove):
		desc = "No valid move found"
	case errors.Is(err, game.ErrInvalidColor), errors.Is(err, engine.ErrInvalidPosition):
		desc = err.Error()
	default:
		g.log.Errorw("request failed", "path", r.URL.Path, "error", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	g.log.Debugw("bad request", "path", r.URL.Path, "error", err)
	httpresponse.WriteErrorResponse(w, http.StatusBadRequest, desc)
}

func (g *GameHandler) depth(w http.ResponseWriter, r *http.Request) (int, bool) {
	depth, err := strconv.Atoi(chi.URLParam(r, "depth"))
	if err != nil {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "Invalid depth")
		return 0, false
	}
	return engine.Clamp(depth, engine.MinDepth, engine.MaxDepth), true
}

// fen reads the FEN from the wildcard tail of the path.
func (g *GameHandler) fen(w http.ResponseWriter, r *http.Request) (string, bool) {
	fen, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || fen == "" {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "Invalid FEN string")
		return "", false
	}
	return fen, true
}

func (g *GameHandler) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	id := g.session(w, r)
	var req newGameRequest
	body, err := io.ReadAll(r.Body)
	if err != nil {
		g.log.Error("Failed to read body:", err)
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			httpresponse.WriteErrorResponse(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc)
			return
		}
	}
	st, err := g.service.NewGame(r.Context(), id, req.PlayerColor)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, st)
}

func (g *GameHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	st, err := g.service.State(r.Context(), g.session(w, r))
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, st)
}

func (g *GameHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	id := g.session(w, r)
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Move == "" {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "No move provided")
		return
	}
	st, err := g.service.Move(r.Context(), id, req.Move)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, st)
}

func (g *GameHandler) HandleAIMove(w http.ResponseWriter, r *http.Request) {
	depth, ok := g.depth(w, r)
	if !ok {
		return
	}
	st, err := g.service.AIMove(r.Context(), g.session(w, r), depth)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, st)
}

func (g *GameHandler) HandleSuggestMove(w http.ResponseWriter, r *http.Request) {
	depth, ok := g.depth(w, r)
	if !ok {
		return
	}
	st, err := g.service.Suggest(r.Context(), g.session(w, r), depth)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, st)
}

func (g *GameHandler) HandleBestMoveForFEN(w http.ResponseWriter, r *http.Request) {
	depth, ok := g.depth(w, r)
	if !ok {
		return
	}
	fen, ok := g.fen(w, r)
	if !ok {
		return
	}
	mv, err := g.service.BestMoveForFEN(fen, depth)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, bestMoveResponse{Move: mv, FEN: fen, Depth: depth})
}

func (g *GameHandler) HandleEval(w http.ResponseWriter, r *http.Request) {
	ev, err := g.service.Evaluate(r.Context(), g.session(w, r))
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, ev)
}

func (g *GameHandler) HandleEvalFEN(w http.ResponseWriter, r *http.Request) {
	fen, ok := g.fen(w, r)
	if !ok {
		return
	}
	ev, err := g.service.EvaluateFEN(fen)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, ev)
}

func (g *GameHandler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	st, err := g.service.Undo(r.Context(), g.session(w, r))
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, st)
}

func (g *GameHandler) HandleRedo(w http.ResponseWriter, r *http.Request) {
	st, err := g.service.Redo(r.Context(), g.session(w, r))
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, st)
}

func (g *GameHandler) HandleLegalMoves(w http.ResponseWriter, r *http.Request) {
	square := chi.URLParam(r, "square")
	dests, err := g.service.LegalMovesFrom(r.Context(), g.session(w, r), square)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, legalMovesResponse{Square: square, LegalMoves: dests})
}

func (g *GameHandler) HandlePGN(w http.ResponseWriter, r *http.Request) {
	pgn, err := g.service.PGN(r.Context(), g.session(w, r))
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, pgnResponse{PGN: pgn})
}
