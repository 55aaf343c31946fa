package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HA5ANT/CHESS-MASTER/engine"
	"github.com/HA5ANT/CHESS-MASTER/internal/bootstrap"
	"github.com/HA5ANT/CHESS-MASTER/rules"
)

func main() {
	cfgPath := flag.String("config", "", "optional config file")
	flag.Parse()

	cfg, err := bootstrap.Setup(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger, err := bootstrap.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	u := newUCI(os.Stdout, engine.NewSelector(engine.WithLogger(logger)), cfg.EngineConfig(), logger)
	u.loop(os.Stdin)
}

// uci tracks the game the GUI sets up and answers its commands.
type uci struct {
	out      io.Writer
	selector *engine.Selector
	cfg      engine.Config
	logger   *zap.Logger

	pos     *rules.Position
	history []string
}

func newUCI(out io.Writer, selector *engine.Selector, cfg engine.Config, logger *zap.Logger) *uci {
	return &uci{
		out:      out,
		selector: selector,
		cfg:      cfg,
		logger:   logger,
		pos:      rules.NewPosition(),
	}
}

func (u *uci) println(a ...any) { fmt.Fprintln(u.out, a...) }

func (u *uci) loop(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		tokens := strings.Fields(line)
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		switch strings.ToLower(tokens[0]) {
		case "uci":
			u.println("id name CHESS-MASTER")
			u.println("id author HA5ANT")
			u.println("option name Depth type spin default", u.cfg.MaxDepth, "min", engine.MinDepth, "max", engine.MaxDepth)
			u.println("option name MoveTime type spin default", u.cfg.MaxTime.Milliseconds(), "min 1 max 600000")
			u.println("option name SafetyThreshold type spin default", int(u.cfg.SafetyThreshold), "min -2000 max 0")
			u.println("uciok")
		case "isready":
			u.println("readyok")
		case "ucinewgame":
			u.pos = rules.NewPosition()
			u.history = nil
		case "quit":
			return
		case "stop":
			// Searches run synchronously and are bounded by their deadline.
		case "eval":
			score := engine.Evaluate(u.pos)
			u.println("info string eval", score, fmt.Sprintf("(%.2f)", score.Pawns()))
		case "position":
			u.position(tokens[1:])
		case "go":
			u.goCommand(tokens[1:])
		case "setoption":
			u.setOption(tokens[1:])
		default:
			u.println("info string Unknown command:", line)
		}
	}
}

// position handles "position startpos|fen <fen> [moves m1 m2 ...]".
func (u *uci) position(args []string) {
	if len(args) == 0 {
		u.println("info string Malformed position command")
		return
	}
	var (
		pos  *rules.Position
		err  error
		rest []string
	)
	switch strings.ToLower(args[0]) {
	case "startpos":
		pos = rules.NewPosition()
		rest = args[1:]
	case "fen":
		i := 1
		for i < len(args) && strings.ToLower(args[i]) != "moves" {
			i++
		}
		pos, err = rules.ParseFEN(strings.Join(args[1:i], " "))
		if err != nil {
			u.println("info string Invalid fen position:", err)
			return
		}
		rest = args[i:]
	default:
		u.println("info string Invalid position subcommand")
		return
	}

	var history []string
	if len(rest) > 0 && strings.ToLower(rest[0]) == "moves" {
		for _, mv := range rest[1:] {
			m, err := pos.Play(mv)
			if err != nil {
				u.println("info string Move", mv, "not found for position", pos.FEN())
				break
			}
			history = append(history, m.String())
		}
	}
	u.pos, u.history = pos, history
}

// goCommand handles "go [depth N] [movetime MS] [wtime MS btime MS winc MS binc MS]".
func (u *uci) goCommand(args []string) {
	cfg := u.cfg
	var movetime, wTime, bTime, wInc, bInc int
	for i := 0; i < len(args); i++ {
		token := strings.ToLower(args[i])
		var target *int
		switch token {
		case "infinite":
			continue
		case "depth":
			target = &cfg.MaxDepth
		case "movetime":
			target = &movetime
		case "wtime":
			target = &wTime
		case "btime":
			target = &bTime
		case "winc":
			target = &wInc
		case "binc":
			target = &bInc
		default:
			u.println("info string Unknown go subcommand", token)
			continue
		}
		if i+1 >= len(args) {
			u.println("info string Malformed go command option", token)
			break
		}
		i++
		v, err := strconv.Atoi(args[i])
		if err != nil {
			u.println("info string Malformed go command option; could not convert", token)
			continue
		}
		*target = v
	}

	remaining, inc := wTime, wInc
	if u.pos.SideToMove() == rules.Black {
		remaining, inc = bTime, bInc
	}
	ms := time.Millisecond
	if budget := engine.MoveTime(time.Duration(movetime)*ms, time.Duration(remaining)*ms, time.Duration(inc)*ms); budget > 0 {
		cfg.MaxTime = budget
	}

	res, err := u.selector.SelectMove(u.pos, u.history, u.pos.SideToMove(), cfg)
	if err != nil {
		u.logger.Error("select move", zap.Error(err))
		u.println("bestmove 0000")
		return
	}
	if res.Terminal {
		u.println("info string game over:", res.Outcome)
		u.println("bestmove 0000")
		return
	}
	score := res.Score
	if u.pos.SideToMove() == rules.Black {
		score = -score
	}
	u.println(fmt.Sprintf("info depth %d score %s nodes %d time %d pv %s",
		res.Depth, score, res.Nodes, res.Elapsed.Milliseconds(), res.Move))
	u.println("bestmove", res.Move)
}

// setOption handles "setoption name <Name> value <v>".
func (u *uci) setOption(args []string) {
	if len(args) < 4 || strings.ToLower(args[0]) != "name" || strings.ToLower(args[2]) != "value" {
		u.println("info string Malformed setoption command")
		return
	}
	v, err := strconv.Atoi(args[3])
	if err != nil {
		u.println("info string Malformed setoption value", args[3])
		return
	}
	switch strings.ToLower(args[1]) {
	case "depth":
		u.cfg.MaxDepth = engine.Clamp(v, engine.MinDepth, engine.MaxDepth)
	case "movetime":
		u.cfg.MaxTime = time.Duration(v) * time.Millisecond
	case "safetythreshold":
		u.cfg.SafetyThreshold = engine.Score(v)
	default:
		u.println("info string Unknown option", args[1])
	}
}
