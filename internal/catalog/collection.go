package catalog

import (
	"strings"
	"time"

	"github.com/abhisek/wordspark/internal/syncledger"
)

// PracticeMode is a collection's preferred draw order.
type PracticeMode string

const (
	PracticeSequential PracticeMode = "sequential"
	PracticeRandom     PracticeMode = "random"
	PracticeAdaptive   PracticeMode = "adaptive"
)

// ParsePracticeMode returns the mode named by s, or false.
func ParsePracticeMode(s string) (PracticeMode, bool) {
	switch PracticeMode(strings.ToLower(strings.TrimSpace(s))) {
	case PracticeSequential:
		return PracticeSequential, true
	case PracticeRandom:
		return PracticeRandom, true
	case PracticeAdaptive:
		return PracticeAdaptive, true
	}
	return "", false
}

func normalizePracticeMode(m PracticeMode) PracticeMode {
	if v, ok := ParsePracticeMode(string(m)); ok {
		return v
	}
	return PracticeRandom
}

// DefaultCollectionID is the id of the bootstrapped default collection.
const DefaultCollectionID = "default"

// Collection is a named, ordered group of item ids. Ids are unique within
// a collection and may dangle after an item is removed.
type Collection struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Category     string          `json:"category,omitempty"`
	ItemIDs      []string        `json:"item_ids"`
	Active       bool            `json:"active"`
	Default      bool            `json:"is_default"`
	PracticeMode PracticeMode    `json:"practice_mode"`
	CreatedAt    time.Time       `json:"created_at"`
	ModifiedAt   time.Time       `json:"modified_at"`
	Sync         syncledger.Meta `json:"sync"`
}

func (c Collection) clone() Collection {
	out := c
	out.ItemIDs = append([]string(nil), c.ItemIDs...)
	return out
}

// Contains reports whether itemID is in the collection.
func (c Collection) Contains(itemID string) bool {
	for _, id := range c.ItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

// CollectionInput is the caller-supplied data for a new collection.
type CollectionInput struct {
	Name         string
	Description  string
	Category     string
	ItemIDs      []string
	Active       bool
	PracticeMode PracticeMode
	Local        bool
}

// CollectionPatch holds the fields Update changes. Nil fields are left
// alone. Item order changes go through Reorder.
type CollectionPatch struct {
	Name         *string
	Description  *string
	Category     *string
	PracticeMode *PracticeMode
	Active       *bool
}

// uniqueIDs drops empty and repeated ids, keeping first occurrences.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
