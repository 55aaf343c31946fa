package game

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	ownMiddleware "github.com/HA5ANT/CHESS-MASTER/internal/middleware"
)

// Router mounts the game API on a new chi router.
func (g *GameHandler) Router(isLocalCors bool) *chi.Mux {
	r := chi.NewRouter()
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/api/new-game", g.HandleNewGame)
	r.Get("/api/state", g.HandleState)
	r.Post("/api/move", g.HandleMove)
	r.Get("/api/ai-move/{depth}", g.HandleAIMove)
	r.Get("/api/suggest-move/{depth}", g.HandleSuggestMove)
	r.Post("/api/undo", g.HandleUndo)
	r.Post("/api/redo", g.HandleRedo)
	r.Get("/api/legal-moves/{square}", g.HandleLegalMoves)
	r.Get("/api/pgn", g.HandlePGN)

	r.Get("/move/{depth}/*", g.HandleBestMoveForFEN)
	r.Get("/eval", g.HandleEval)
	r.Get("/eval/*", g.HandleEvalFEN)
	return r
}
