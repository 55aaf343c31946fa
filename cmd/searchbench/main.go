package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"go.uber.org/zap"

	"github.com/HA5ANT/CHESS-MASTER/engine"
	"github.com/HA5ANT/CHESS-MASTER/internal/bootstrap"
	"github.com/HA5ANT/CHESS-MASTER/rules"
)

func main() {
	// --- Flags ---
	depthFlag := flag.Int("depth", engine.DefaultDepth, "search depth in plies (1-5)")
	repeatFlag := flag.Int("repeat", 1, "number of searches to run")
	fenFlag := flag.String("fen", "", "FEN to search (empty = startpos)")
	movetimeFlag := flag.Duration("movetime", engine.DefaultMaxTime, "time budget per search")
	noBook := flag.Bool("nobook", false, "disable the opening book")
	logLevel := flag.String("loglevel", "warn", "log level")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile := flag.String("memprofile", "", "write memory profile (heap) to file")
	flag.Parse()

	if *depthFlag <= 0 {
		log.Fatalf("depth must be positive, got %d", *depthFlag)
	}

	logger, err := bootstrap.NewLogger(*logLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// --- Optional CPU profiling setup ---
	if *cpuProfile != "" {
		cpuFile, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatalf("could not create CPU profile: %v", err)
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			log.Fatalf("could not start CPU profile: %v", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}()
	}

	fen := rules.StartFEN
	if *fenFlag != "" {
		fen = *fenFlag
	}
	pos, err := rules.ParseFEN(fen)
	if err != nil {
		log.Fatalf("%v", err)
	}

	opts := []engine.Option{engine.WithLogger(logger)}
	if *noBook {
		opts = append(opts, engine.WithBook(nil))
	}
	selector := engine.NewSelector(opts...)
	cfg := engine.Config{MaxDepth: *depthFlag, MaxTime: *movetimeFlag, SafetyThreshold: engine.DefaultSafetyThreshold}

	fmt.Printf("searchbench: fen=%q depth=%d repeat=%d\n", fen, *depthFlag, *repeatFlag)

	var totalNodes uint64
	startAll := time.Now()
	for i := 0; i < *repeatFlag; i++ {
		res, err := selector.SelectMove(pos, nil, pos.SideToMove(), cfg)
		if err != nil {
			logger.Fatal("search failed", zap.Error(err))
		}
		totalNodes += res.Nodes
		fmt.Printf("iteration %d: bestmove %v score %v source %v nodes %d time=%v timedout=%v\n",
			i+1, res.Move, res.Score, res.Source, res.Nodes, res.Elapsed, res.TimedOut)
	}
	totalElapsed := time.Since(startAll)
	fmt.Printf("total time: %v  nodes: %d  nps: %.0f\n", totalElapsed, totalNodes, float64(totalNodes)/totalElapsed.Seconds())

	// --- Optional heap profile at the end ---
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatalf("could not create memory profile: %v", err)
		}
		defer f.Close()

		runtime.GC() // get up-to-date heap info
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatalf("could not write memory profile: %v", err)
		}
	}
}
