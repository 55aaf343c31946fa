package game

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/HA5ANT/CHESS-MASTER/engine"
	"github.com/HA5ANT/CHESS-MASTER/internal/bootstrap"
	"github.com/HA5ANT/CHESS-MASTER/internal/game"
	"github.com/HA5ANT/CHESS-MASTER/internal/httpresponse"
)

type client struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func newClient(t *testing.T, cors bool) *client {
	cfg := bootstrap.Config{SessionTTL: time.Hour}
	engineCfg := engine.Config{MaxDepth: 2, MaxTime: 10 * time.Second, SafetyThreshold: engine.DefaultSafetyThreshold}
	log := zap.NewNop().Sugar()
	service := game.NewService(game.NewMemoryStore(), engine.NewSelector(), engineCfg, log)
	return &client{t: t, handler: NewGameHandler(cfg, log, service).Router(cors)}
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookie {
			c.cookie = ck
		}
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var resp httpresponse.Response[T]
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	if resp.Status != rec.Code {
		t.Fatalf("envelope status %d, HTTP status %d", resp.Status, rec.Code)
	}
	return resp.Body
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, desc string) {
	t.Helper()
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[httpresponse.ErrorResponse](t, rec).ErrorDescription; got != desc {
		t.Fatalf("error %q want %q", got, desc)
	}
}

func TestNewGameIssuesSession(t *testing.T) {
	c := newClient(t, false)
	rec := c.do(http.MethodPost, "/api/new-game", `{"player_color":"white"}`)
	if rec.Code != http.StatusOK || c.cookie == nil {
		t.Fatalf("status %d cookie %v", rec.Code, c.cookie)
	}
	st := decode[game.State](t, rec)
	if st.AIColor != "black" || st.Turn != "white" || len(st.LegalMoves) != 20 {
		t.Fatalf("state %+v", st)
	}
}

func TestPlayAgainstEngine(t *testing.T) {
	c := newClient(t, false)
	c.do(http.MethodPost, "/api/new-game", "")
	if rec := c.do(http.MethodPost, "/api/move", `{"move":"e2e4"}`); rec.Code != http.StatusOK {
		t.Fatalf("move: %d %s", rec.Code, rec.Body.String())
	}
	rec := c.do(http.MethodGet, "/api/ai-move/3", "")
	st := decode[game.State](t, rec)
	if st.AIMove != "g7g6" {
		t.Fatalf("engine reply %+v", st)
	}

	rec = c.do(http.MethodGet, "/api/pgn", "")
	if pgn := decode[pgnResponse](t, rec).PGN; pgn != "1. e4 g6" {
		t.Fatalf("pgn %q", pgn)
	}

	st = decode[game.State](t, c.do(http.MethodPost, "/api/undo", ""))
	if len(st.MoveHistory) != 0 || !st.CanRedo {
		t.Fatalf("after undo %+v", st)
	}
	st = decode[game.State](t, c.do(http.MethodPost, "/api/redo", ""))
	if len(st.MoveHistory) != 1 {
		t.Fatalf("after redo %+v", st)
	}
}

func TestSuggestMove(t *testing.T) {
	c := newClient(t, false)
	st := decode[game.State](t, c.do(http.MethodGet, "/api/suggest-move/9", ""))
	if st.SuggestedMove != "c2c4" || len(st.MoveHistory) != 0 {
		t.Fatalf("suggestion %+v", st)
	}
}

func TestBadRequests(t *testing.T) {
	c := newClient(t, false)
	expectError(t, c.do(http.MethodPost, "/api/move", `{}`), "No move provided")
	expectError(t, c.do(http.MethodPost, "/api/move", `{"move":"e2e5"}`), "Invalid move")
	expectError(t, c.do(http.MethodPost, "/api/undo", ""), "No moves to undo")
	expectError(t, c.do(http.MethodPost, "/api/redo", ""), "No moves to redo")
	expectError(t, c.do(http.MethodGet, "/api/ai-move/deep", ""), "Invalid depth")
	expectError(t, c.do(http.MethodGet, "/api/legal-moves/k9", ""), "Invalid square")
	expectError(t, c.do(http.MethodGet, "/eval/garbage", ""), "Invalid FEN string")
	expectError(t, c.do(http.MethodPost, "/api/new-game", `{"player_color":`), httpresponse.MALFORMEDJSON_errorDesc)
}

func TestBestMoveForFEN(t *testing.T) {
	c := newClient(t, false)
	rec := c.do(http.MethodGet, "/move/2/6k1/5ppp/8/8/8/8/8/R5K1%20w%20-%20-%200%2030", "")
	resp := decode[bestMoveResponse](t, rec)
	if resp.Move != "a1a8" || resp.Depth != 2 || resp.FEN != "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 30" {
		t.Fatalf("response %+v", resp)
	}
	expectError(t, c.do(http.MethodGet, "/move/2/7k/5Q2/6K1/8/8/8/8/8%20b%20-%20-%200%201", ""), "No valid move found")
}

func TestEval(t *testing.T) {
	c := newClient(t, false)
	ev := decode[game.Evaluation](t, c.do(http.MethodGet, "/eval", ""))
	if ev.Evaluation != 0 || ev.Turn != "white" || ev.InCheck {
		t.Fatalf("eval %+v", ev)
	}
	ev = decode[game.Evaluation](t, c.do(http.MethodGet, "/eval/4k3/8/8/8/8/8/8/QQQQK3%20b%20-%20-%200%2030", ""))
	if ev.Evaluation != 10 || ev.Turn != "black" {
		t.Fatalf("eval %+v", ev)
	}
}

func TestLegalMoves(t *testing.T) {
	c := newClient(t, false)
	resp := decode[legalMovesResponse](t, c.do(http.MethodGet, "/api/legal-moves/b1", ""))
	sort.Strings(resp.LegalMoves)
	if resp.Square != "b1" || strings.Join(resp.LegalMoves, ",") != "a3,c3" {
		t.Fatalf("response %+v", resp)
	}
}

func TestCORSPreflight(t *testing.T) {
	c := newClient(t, true)
	rec := c.do(http.MethodOptions, "/api/move", "")
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight: %d %v", rec.Code, rec.Header())
	}
}
