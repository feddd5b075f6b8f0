// Command chessplay-review searches a position or reviews a game given as
// SAN moves.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/review"
	"github.com/hailam/chessplay/internal/storage"
)

var (
	fen        = flag.String("fen", board.StartFEN, "position to search, or the start of the reviewed game")
	difficulty = flag.String("difficulty", "", "easy, medium or hard (default: saved preference, else medium)")
	moves      = flag.String("moves", "", "space separated SAN moves to review")
	limit      = flag.Int("limit", 0, "list the N best moves by static evaluation")
	explain    = flag.Bool("explain", true, "print move explanations in reviews")
	workers    = flag.Int("workers", 0, "concurrent plies in a review (0 = one per CPU)")
	hash       = flag.Int("hash", engine.DefaultTableSize, "transposition table entries per search")
	store      = flag.Bool("store", false, "save reviews and preferences to the data directory")
	list       = flag.Bool("list", false, "list stored reviews")
	show       = flag.String("show", "", "print a stored review by id")
	stats      = flag.Bool("stats", false, "print totals over stored reviews")
	asJSON     = flag.Bool("json", false, "write results as JSON")
	verbose    = flag.Bool("v", false, "debug logging")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	os.Exit(realMain())
}

// realMain returns the exit code so deferred cleanup runs before exiting.
func realMain() int {
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Error().Err(err).Msg("could not create CPU profile")
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Error().Err(err).Msg("could not start CPU profile")
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Stdout); err != nil {
		log.Error().Err(err).Msg("failed")
		return 1
	}
	return 0
}

func newEngine() *engine.Engine {
	return engine.New(engine.WithTableSize(*hash), engine.WithLogger(log.Logger))
}

func run(ctx context.Context, out io.Writer) error {
	var db *storage.Storage
	prefs := storage.DefaultPreferences()
	if *store || *list || *stats || *show != "" {
		var err error
		if db, err = storage.NewStorage(); err != nil {
			return err
		}
		defer db.Close()

		first, err := db.IsFirstLaunch()
		if err != nil {
			return err
		}
		if first {
			dir, _ := storage.GetDatabaseDir()
			log.Info().Str("dir", dir).Msg("created review database")
			if err := db.MarkFirstLaunchComplete(); err != nil {
				return err
			}
		}
		if prefs, err = db.LoadPreferences(); err != nil {
			return err
		}
	}

	d := prefs.Difficulty
	if *difficulty != "" {
		var err error
		if d, err = engine.ParseDifficulty(*difficulty); err != nil {
			return err
		}
	}

	switch {
	case *list:
		infos, err := db.ListReviews()
		if err != nil {
			return err
		}
		if *asJSON {
			return writeJSON(out, infos)
		}
		for _, info := range infos {
			fmt.Fprintf(out, "%s  %s  %-6s %3d plies  white %5.1f%%  black %5.1f%%\n",
				info.ID, info.CreatedAt.Format(time.DateTime), info.Difficulty, info.Plies,
				info.WhiteAccuracy, info.BlackAccuracy)
		}
		return nil

	case *stats:
		st, err := db.LoadStats()
		if err != nil {
			return err
		}
		if *asJSON {
			return writeJSON(out, st)
		}
		fmt.Fprintf(out, "%d games, %d moves, accuracy %.1f%%\n", st.GamesReviewed, st.MovesReviewed, st.Accuracy())
		for l := review.Best; l <= review.Great; l++ {
			if n := st.Labels[l]; n > 0 {
				fmt.Fprintf(out, "  %-10s %d\n", l, n)
			}
		}
		return nil

	case *show != "":
		gr, err := db.LoadReview(*show)
		if err != nil {
			return err
		}
		return printReview(out, gr)

	case *moves != "":
		w := *workers
		if w == 0 {
			w = prefs.Workers
		}
		r := review.NewReviewer(newEngine(), w)
		gr, err := r.ReviewGame(ctx, *fen, strings.Fields(*moves), d)
		if err != nil {
			return err
		}
		if db != nil {
			if err := db.SaveReview(gr); err != nil {
				return err
			}
			prefs.Difficulty = d
			if err := db.SavePreferences(prefs); err != nil {
				return err
			}
			log.Info().Str("id", gr.ID).Msg("review saved")
		}
		return printReview(out, gr)

	case *limit > 0:
		scored, err := newEngine().EvaluatedMoves(*fen, *limit)
		if err != nil {
			return err
		}
		if *asJSON {
			return writeJSON(out, scored)
		}
		for i, sm := range scored {
			fmt.Fprintf(out, "%2d. %-7s %s\n", i+1, sm.SAN, engine.ScoreToString(sm.Score))
		}
		return nil

	default:
		e := newEngine()
		resp := <-e.Go(ctx, engine.Request{FEN: *fen, Difficulty: d})
		if resp.Err != nil {
			return resp.Err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if *asJSON {
			return writeJSON(out, resp.BestMove)
		}
		if resp.Move == "" {
			fmt.Fprintf(out, "no legal moves (%s)\n", engine.ScoreToString(resp.Evaluation))
			return nil
		}
		fmt.Fprintf(out, "bestmove %s  eval %s  pv %s\n",
			resp.Move, engine.ScoreToString(resp.Evaluation), strings.Join(resp.PV, " "))
		return nil
	}
}

func printReview(out io.Writer, gr *review.GameReview) error {
	if *asJSON {
		return writeJSON(out, gr)
	}

	fmt.Fprintf(out, "review %s (%s)\n", gr.ID, gr.Difficulty)
	for _, m := range gr.Moves {
		prefix := fmt.Sprintf("%d.", (m.Ply+1)/2)
		if m.Side == board.Black {
			prefix += ".."
		}
		fmt.Fprintf(out, "%-6s %-7s %-10s %5.1f%%  best %-7s %s\n",
			prefix, m.SAN, m.Label, m.Accuracy, m.BestMove, engine.ScoreToString(m.EvalAfter))
		if *explain {
			fmt.Fprintf(out, "       %s\n", m.Explanation)
		}
	}
	for _, side := range []struct {
		name string
		s    review.Summary
	}{{"White", gr.White}, {"Black", gr.Black}} {
		fmt.Fprintf(out, "%s: %d moves, accuracy %.1f%%, %v\n", side.name, side.s.Moves, side.s.Accuracy, side.s.Labels)
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
