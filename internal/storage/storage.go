package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/review"
)

// ErrNotFound is returned when a review id is unknown.
var ErrNotFound = errors.New("not found")

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyFirstLaunch = "first_launch"
	reviewPrefix   = "review/"
)

// UserPreferences stores user settings
type UserPreferences struct {
	Username   string            `json:"username"`
	Difficulty engine.Difficulty `json:"difficulty"`
	Workers    int               `json:"workers"` // 0 means one per CPU
	LastUsed   time.Time         `json:"last_used"`
}

// DefaultPreferences returns default user preferences
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{
		Username:   "Player",
		Difficulty: engine.Medium,
		LastUsed:   time.Now(),
	}
}

// ReviewStats aggregates every stored review.
type ReviewStats struct {
	GamesReviewed int                  `json:"games_reviewed"`
	MovesReviewed int                  `json:"moves_reviewed"`
	AccuracySum   float64              `json:"accuracy_sum"` // over all moves
	Labels        map[review.Label]int `json:"labels"`
	ByDifficulty  map[string]int       `json:"by_difficulty"`
}

// NewReviewStats returns empty statistics
func NewReviewStats() *ReviewStats {
	return &ReviewStats{
		Labels:       make(map[review.Label]int),
		ByDifficulty: make(map[string]int),
	}
}

// Accuracy returns the mean accuracy over every reviewed move (0-100).
func (s *ReviewStats) Accuracy() float64 {
	if s.MovesReviewed == 0 {
		return 0
	}
	return s.AccuracySum / float64(s.MovesReviewed)
}

// add folds one review into the totals.
func (s *ReviewStats) add(gr *review.GameReview) {
	s.GamesReviewed++
	s.ByDifficulty[gr.Difficulty.String()]++
	for _, m := range gr.Moves {
		s.MovesReviewed++
		s.AccuracySum += m.Accuracy
		s.Labels[m.Label]++
	}
}

// ReviewInfo is the listing entry for a stored review.
type ReviewInfo struct {
	ID            string            `json:"id"`
	CreatedAt     time.Time         `json:"created_at"`
	Difficulty    engine.Difficulty `json:"difficulty"`
	Plies         int               `json:"plies"`
	WhiteAccuracy float64           `json:"white_accuracy"`
	BlackAccuracy float64           `json:"black_accuracy"`
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the user data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens or creates a database in dir.
func Open(dir string) (*Storage, error) {
	return open(badger.DefaultOptions(dir))
}

// OpenInMemory opens a database that lives only as long as the Storage.
func OpenInMemory() (*Storage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Storage, error) {
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true if this is the first launch
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// SavePreferences saves user preferences
func (s *Storage) SavePreferences(prefs *UserPreferences) error {
	prefs.LastUsed = time.Now()
	return s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, keyPreferences, prefs)
	})
}

// LoadPreferences loads user preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*UserPreferences, error) {
	prefs := DefaultPreferences()
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := getJSON(txn, keyPreferences, prefs)
		return err
	})
	return prefs, err
}

// LoadStats loads review statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*ReviewStats, error) {
	stats := NewReviewStats()
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := getJSON(txn, keyStats, stats)
		return err
	})
	return stats, err
}

// SaveReview stores a finished review and folds it into the statistics.
// Saving the same id twice replaces the record without counting it again.
func (s *Storage) SaveReview(gr *review.GameReview) error {
	if gr.ID == "" {
		return errors.New("review has no id")
	}
	key := reviewPrefix + gr.ID

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		exists := err == nil
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := setJSON(txn, key, gr); err != nil {
			return err
		}
		if exists {
			return nil
		}

		stats := NewReviewStats()
		if _, err := getJSON(txn, keyStats, stats); err != nil {
			return err
		}
		stats.add(gr)
		return setJSON(txn, keyStats, stats)
	})
}

// LoadReview loads a review by id.
func (s *Storage) LoadReview(id string) (*review.GameReview, error) {
	gr := &review.GameReview{}
	err := s.db.View(func(txn *badger.Txn) error {
		found, err := getJSON(txn, reviewPrefix+id, gr)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("review %s: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return gr, nil
}

// DeleteReview removes a review. Statistics are kept.
func (s *Storage) DeleteReview(id string) error {
	key := []byte(reviewPrefix + id)
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("review %s: %w", id, ErrNotFound)
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// ListReviews returns every stored review, newest first.
func (s *Storage) ListReviews() ([]ReviewInfo, error) {
	var list []ReviewInfo

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(reviewPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var gr review.GameReview
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &gr)
			}); err != nil {
				return fmt.Errorf("review %s: %w", it.Item().Key(), err)
			}
			list = append(list, ReviewInfo{
				ID:            gr.ID,
				CreatedAt:     gr.CreatedAt,
				Difficulty:    gr.Difficulty,
				Plies:         len(gr.Moves),
				WhiteAccuracy: gr.White.Accuracy,
				BlackAccuracy: gr.Black.Accuracy,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(list, func(a, b ReviewInfo) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return list, nil
}

func setJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

// getJSON decodes key into v. A missing key leaves v untouched.
func getJSON(txn *badger.Txn, key string, v any) (bool, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}
