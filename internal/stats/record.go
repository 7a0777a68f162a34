// Package stats keeps the append-only session history and derives accuracy
// rollups from it.
package stats

import (
	"math"
	"time"
)

// DateLayout is the calendar date format stored on records.
const DateLayout = "2006-01-02"

// Record summarizes one finished session. Records are immutable once
// appended.
type Record struct {
	ID             string        `json:"id"`
	Mode           string        `json:"mode,omitempty"`
	CollectionIDs  []string      `json:"collection_ids,omitempty"`
	Accuracy       int           `json:"accuracy"`
	TotalAttempts  int           `json:"total_attempts"`
	CorrectAnswers int           `json:"correct_answers"`
	Timestamp      time.Time     `json:"timestamp"`
	Date           string        `json:"date"`
	Duration       time.Duration `json:"duration"`
	Items          []ItemResult  `json:"items,omitempty"`
}

// ItemResult is the per-item tally within one session.
type ItemResult struct {
	ItemID   string `json:"item_id"`
	Attempts int    `json:"attempts"`
	Correct  int    `json:"correct"`
}

// Lifetime holds the all-time counters.
type Lifetime struct {
	SessionsStarted   int `json:"sessions_started"`
	SessionsCompleted int `json:"sessions_completed"`
	TotalAttempts     int `json:"total_attempts"`
	CorrectAnswers    int `json:"correct_answers"`
}

// Accuracy returns round(100*correct/total), or 0 when total is 0.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

func (r Record) clone() Record {
	out := r
	out.CollectionIDs = append([]string(nil), r.CollectionIDs...)
	out.Items = append([]ItemResult(nil), r.Items...)
	return out
}

// Result returns the tally for itemID, if the session touched it.
func (r Record) Result(itemID string) (ItemResult, bool) {
	for _, ir := range r.Items {
		if ir.ItemID == itemID {
			return ir, true
		}
	}
	return ItemResult{}, false
}

// Tally accumulates per-item results in first-seen order.
type Tally struct {
	order []string
	byID  map[string]*ItemResult
}

// Add records one attempt on itemID.
func (t *Tally) Add(itemID string, correct bool) {
	if t.byID == nil {
		t.byID = make(map[string]*ItemResult)
	}
	ir, ok := t.byID[itemID]
	if !ok {
		ir = &ItemResult{ItemID: itemID}
		t.byID[itemID] = ir
		t.order = append(t.order, itemID)
	}
	ir.Attempts++
	if correct {
		ir.Correct++
	}
}

// Results returns the tallies in first-seen order.
func (t *Tally) Results() []ItemResult {
	out := make([]ItemResult, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.byID[id])
	}
	return out
}

// Reset clears the tally.
func (t *Tally) Reset() {
	t.order = nil
	t.byID = nil
}
