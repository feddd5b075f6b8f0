package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/review"
)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReview(id string, created time.Time, labels ...review.Label) *review.GameReview {
	gr := &review.GameReview{
		ID:         id,
		StartFEN:   board.StartFEN,
		Difficulty: engine.Hard,
		CreatedAt:  created,
	}
	for i, l := range labels {
		side := board.White
		if i%2 == 1 {
			side = board.Black
		}
		gr.Moves = append(gr.Moves, review.MoveReview{
			Ply:  i + 1,
			Side: side,
			SAN:  "e4",
			Classification: review.Classification{
				Label:    l,
				Accuracy: 90,
			},
		})
	}
	gr.White = review.Summary{Moves: 1, Accuracy: 90, Labels: map[review.Label]int{labels[0]: 1}}
	return gr
}

func TestPreferences(t *testing.T) {
	s := openTest(t)

	t.Run("Defaults", func(t *testing.T) {
		prefs, err := s.LoadPreferences()
		if err != nil {
			t.Fatal(err)
		}
		if prefs.Username != "Player" {
			t.Errorf("Expected username 'Player', got '%s'", prefs.Username)
		}
		if prefs.Difficulty != engine.Medium {
			t.Errorf("Expected medium difficulty, got %s", prefs.Difficulty)
		}
		if prefs.Workers != 0 {
			t.Errorf("Expected automatic worker count, got %d", prefs.Workers)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		prefs := DefaultPreferences()
		prefs.Username = "magnus"
		prefs.Difficulty = engine.Hard
		prefs.Workers = 3
		if err := s.SavePreferences(prefs); err != nil {
			t.Fatal(err)
		}
		got, err := s.LoadPreferences()
		if err != nil {
			t.Fatal(err)
		}
		if got.Username != "magnus" || got.Difficulty != engine.Hard || got.Workers != 3 {
			t.Errorf("loaded %+v", got)
		}
	})
}

func TestFirstLaunch(t *testing.T) {
	s := openTest(t)
	first, err := s.IsFirstLaunch()
	if err != nil || !first {
		t.Fatalf("IsFirstLaunch = %v, %v", first, err)
	}
	if err := s.MarkFirstLaunchComplete(); err != nil {
		t.Fatal(err)
	}
	if first, _ := s.IsFirstLaunch(); first {
		t.Error("still first launch after marking complete")
	}
}

func TestReviews(t *testing.T) {
	s := openTest(t)
	now := time.Now().UTC().Truncate(time.Second)

	older := sampleReview("a1", now.Add(-time.Hour), review.Best, review.Blunder)
	newer := sampleReview("b2", now, review.Brilliant)

	for _, gr := range []*review.GameReview{older, newer} {
		if err := s.SaveReview(gr); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.LoadReview("a1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "a1" || len(got.Moves) != 2 || got.Moves[1].Label != review.Blunder || got.Moves[1].Side != board.Black {
		t.Errorf("loaded %+v", got)
	}
	if got.Difficulty != engine.Hard || !got.CreatedAt.Equal(older.CreatedAt) {
		t.Errorf("loaded difficulty %s created %v", got.Difficulty, got.CreatedAt)
	}
	if got.White.Labels[review.Best] != 1 {
		t.Errorf("summary labels = %v", got.White.Labels)
	}

	list, err := s.ListReviews()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "b2" || list[1].ID != "a1" {
		t.Fatalf("ListReviews = %+v", list)
	}
	if list[1].Plies != 2 || list[0].WhiteAccuracy != 90 {
		t.Errorf("listing = %+v", list)
	}

	if _, err := s.LoadReview("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing review: error = %v", err)
	}
	if err := s.DeleteReview("a1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadReview("a1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted review: error = %v", err)
	}
	if err := s.DeleteReview("a1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: error = %v", err)
	}
	if err := s.SaveReview(&review.GameReview{}); err == nil {
		t.Error("saving a review without id should fail")
	}
}

func TestReviewStats(t *testing.T) {
	s := openTest(t)

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesReviewed != 0 || stats.Accuracy() != 0 {
		t.Errorf("empty stats = %+v", stats)
	}

	gr := sampleReview("x", time.Now(), review.Best, review.Mistake, review.Best)
	if err := s.SaveReview(gr); err != nil {
		t.Fatal(err)
	}
	// Re-saving must not double count
	if err := s.SaveReview(gr); err != nil {
		t.Fatal(err)
	}

	stats, err = s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesReviewed != 1 || stats.MovesReviewed != 3 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Labels[review.Best] != 2 || stats.Labels[review.Mistake] != 1 {
		t.Errorf("labels = %v", stats.Labels)
	}
	if stats.ByDifficulty["hard"] != 1 {
		t.Errorf("by difficulty = %v", stats.ByDifficulty)
	}
	if stats.Accuracy() != 90 {
		t.Errorf("accuracy = %.2f, want 90", stats.Accuracy())
	}
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveReview(sampleReview("disk", time.Now(), review.Good)); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := s.LoadReview("disk"); err != nil {
		t.Errorf("review lost across reopen: %v", err)
	}
}

func TestDataPaths(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv(DataDirEnv, filepath.Join(tmpDir, "data"))

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir != filepath.Join(tmpDir, "data") {
		t.Errorf("GetDataDir = %s, want the override", dataDir)
	}

	dbDir, err := GetDatabaseDir()
	if err != nil {
		t.Fatalf("GetDatabaseDir failed: %v", err)
	}
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		t.Errorf("Database directory was not created: %s", dbDir)
	}

	t.Logf("Database directory: %s", dbDir)
}
