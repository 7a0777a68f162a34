// Package catalog owns the practiceable items and the collections that group
// them. Both catalogs keep their state in memory and persist every mutation
// through a fire-and-forget store.Persister.
package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/abhisek/wordspark/internal/syncledger"
)

// Difficulty grades an item.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty returns the difficulty named by s, or false.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy, true
	case DifficultyMedium:
		return DifficultyMedium, true
	case DifficultyHard:
		return DifficultyHard, true
	}
	return "", false
}

func normalizeDifficulty(d Difficulty) Difficulty {
	if v, ok := ParseDifficulty(string(d)); ok {
		return v
	}
	return DifficultyMedium
}

// Performance is the running attempt record of one item.
type Performance struct {
	Attempts        int        `json:"attempts"`
	CorrectAttempts int        `json:"correct_attempts"`
	LastPracticedAt *time.Time `json:"last_practiced_at,omitempty"`
}

// Item is a single practiceable unit: a picture and the word it shows.
type Item struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	ImageRef      string          `json:"image_ref"`
	Pronunciation string          `json:"pronunciation,omitempty"`
	Tags          []string        `json:"tags"`
	Difficulty    Difficulty      `json:"difficulty"`
	Category      string          `json:"category,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	ModifiedAt    time.Time       `json:"modified_at"`
	Performance   Performance     `json:"performance"`
	Sync          syncledger.Meta `json:"sync"`
}

// SuccessRate returns CorrectAttempts/Attempts, or 0 before any attempt.
func (it Item) SuccessRate() float64 {
	if it.Attempts() == 0 {
		return 0
	}
	return float64(it.Performance.CorrectAttempts) / float64(it.Performance.Attempts)
}

// Attempts is shorthand for Performance.Attempts.
func (it Item) Attempts() int {
	return it.Performance.Attempts
}

func (it Item) clone() Item {
	out := it
	out.Tags = append([]string(nil), it.Tags...)
	if it.Performance.LastPracticedAt != nil {
		t := *it.Performance.LastPracticedAt
		out.Performance.LastPracticedAt = &t
	}
	return out
}

// ItemInput is the caller-supplied data for a new item.
type ItemInput struct {
	Name          string
	ImageRef      string
	Pronunciation string
	Tags          []string
	Difficulty    Difficulty
	Category      string
	Notes         string
	Local         bool
}

// ItemPatch holds the fields Update changes. Nil fields are left alone.
type ItemPatch struct {
	Name          *string
	ImageRef      *string
	Pronunciation *string
	Tags          *[]string
	Difficulty    *Difficulty
	Category      *string
	Notes         *string
	Active        *bool
}

// normalizeTags trims, drops empties and returns the sorted set.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
