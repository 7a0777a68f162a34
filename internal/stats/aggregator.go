package stats

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/abhisek/wordspark/internal/store"
)

// Store keys.
const (
	KeyHistory  = "session_history"
	KeyLifetime = "lifetime"
)

// DayStat is one calendar day of the daily rollup.
type DayStat struct {
	Date     string `json:"date"`
	Accuracy int    `json:"accuracy"`
	Sessions int    `json:"sessions"`
}

// RangeSummary aggregates every session inside a time window.
type RangeSummary struct {
	AverageAccuracy float64 `json:"average_accuracy"`
	SessionCount    int     `json:"session_count"`
	DistinctItems   int     `json:"distinct_items"`
}

// ItemStats rolls up one item across all sessions that touched it.
type ItemStats struct {
	ItemID          string    `json:"item_id"`
	Accuracy        int       `json:"accuracy"`
	Sessions        int       `json:"sessions"`
	Attempts        int       `json:"attempts"`
	Correct         int       `json:"correct"`
	LastPracticedAt time.Time `json:"last_practiced_at"`
}

// CollectionStats rolls up sessions that drew from one collection.
type CollectionStats struct {
	CollectionID    string    `json:"collection_id"`
	AverageAccuracy float64   `json:"average_accuracy"`
	Sessions        int       `json:"sessions"`
	Attempts        int       `json:"attempts"`
	Correct         int       `json:"correct"`
	LastPracticedAt time.Time `json:"last_practiced_at"`
}

// Aggregator owns the session history and lifetime counters.
type Aggregator struct {
	mu       sync.RWMutex
	history  []Record
	lifetime Lifetime

	persist store.Persister
	now     func() time.Time
	loc     *time.Location
	logger  *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithLocation sets the zone used for calendar-day bucketing.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) { a.loc = loc }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = logger }
}

// New loads history and lifetime counters from kv.
func New(ctx context.Context, kv store.KV, p store.Persister, opts ...Option) (*Aggregator, error) {
	a := &Aggregator{
		persist: p,
		now:     time.Now,
		loc:     time.Local,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if kv != nil {
		if _, err := store.LoadJSON(ctx, kv, KeyHistory, &a.history); err != nil {
			return nil, fmt.Errorf("load session history: %w", err)
		}
		if _, err := store.LoadJSON(ctx, kv, KeyLifetime, &a.lifetime); err != nil {
			return nil, fmt.Errorf("load lifetime counters: %w", err)
		}
	}
	return a, nil
}

// CountSessionStart bumps the lifetime started-session counter.
func (a *Aggregator) CountSessionStart() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lifetime.SessionsStarted++
	a.put(KeyLifetime, a.lifetime)
}

// Append normalizes r, adds it to history and folds its totals into the
// lifetime counters. The stored record is returned.
func (a *Aggregator) Append(r Record) Record {
	a.mu.Lock()
	defer a.mu.Unlock()

	if r.Timestamp.IsZero() {
		r.Timestamp = a.now()
	}
	r.Accuracy = Accuracy(r.CorrectAnswers, r.TotalAttempts)
	r.Date = r.Timestamp.In(a.loc).Format(DateLayout)
	if r.ID == "" {
		r.ID = strconv.FormatInt(r.Timestamp.UnixMilli(), 10)
	}
	for a.hasIDLocked(r.ID) {
		r.ID += "-1"
	}
	r = r.clone()

	a.history = append(a.history, r)
	a.lifetime.SessionsCompleted++
	a.lifetime.TotalAttempts += r.TotalAttempts
	a.lifetime.CorrectAnswers += r.CorrectAnswers
	a.put(KeyHistory, a.history)
	a.put(KeyLifetime, a.lifetime)
	return r.clone()
}

func (a *Aggregator) hasIDLocked(id string) bool {
	// Ids are timestamp-derived, so a clash can only be near the end.
	for i := len(a.history) - 1; i >= 0 && i >= len(a.history)-8; i-- {
		if a.history[i].ID == id {
			return true
		}
	}
	return false
}

// History returns a copy of every record, oldest first.
func (a *Aggregator) History() []Record {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Record, len(a.history))
	for i, r := range a.history {
		out[i] = r.clone()
	}
	return out
}

// Lifetime returns the all-time counters.
func (a *Aggregator) Lifetime() Lifetime {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lifetime
}

// DailyStats returns one entry per calendar day for the last days days,
// today included, oldest first. Days without sessions report zeros.
func (a *Aggregator) DailyStats(days int) []DayStat {
	if days <= 0 {
		return nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	type bucket struct{ sum, n int }
	buckets := make(map[string]*bucket)
	for _, r := range a.history {
		key := r.Timestamp.In(a.loc).Format(DateLayout)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.sum += r.Accuracy
		b.n++
	}

	now := a.now().In(a.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.loc)
	out := make([]DayStat, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format(DateLayout)
		ds := DayStat{Date: date}
		if b, ok := buckets[date]; ok {
			ds.Sessions = b.n
			ds.Accuracy = int(math.Round(float64(b.sum) / float64(b.n)))
		}
		out = append(out, ds)
	}
	return out
}

// RangeStats aggregates sessions whose timestamp is at or after
// now - days*24h. It reports false when no session qualifies.
func (a *Aggregator) RangeStats(days int) (RangeSummary, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	cutoff := a.now().Add(-time.Duration(days) * 24 * time.Hour)
	var sum RangeSummary
	total := 0
	items := make(map[string]struct{})
	for _, r := range a.history {
		if r.Timestamp.Before(cutoff) {
			continue
		}
		sum.SessionCount++
		total += r.Accuracy
		for _, ir := range r.Items {
			items[ir.ItemID] = struct{}{}
		}
	}
	if sum.SessionCount == 0 {
		return RangeSummary{}, false
	}
	sum.AverageAccuracy = float64(total) / float64(sum.SessionCount)
	sum.DistinctItems = len(items)
	return sum, true
}

// PerItemStats rolls up every session that attempted itemID. Accuracy is
// weighted by attempts.
func (a *Aggregator) PerItemStats(itemID string) (ItemStats, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	st := ItemStats{ItemID: itemID}
	for _, r := range a.history {
		ir, ok := r.Result(itemID)
		if !ok || ir.Attempts == 0 {
			continue
		}
		st.Sessions++
		st.Attempts += ir.Attempts
		st.Correct += ir.Correct
		if r.Timestamp.After(st.LastPracticedAt) {
			st.LastPracticedAt = r.Timestamp
		}
	}
	if st.Sessions == 0 {
		return ItemStats{}, false
	}
	st.Accuracy = Accuracy(st.Correct, st.Attempts)
	return st, true
}

// PerCollectionStats rolls up every session that drew from collectionID.
func (a *Aggregator) PerCollectionStats(collectionID string) (CollectionStats, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	st := CollectionStats{CollectionID: collectionID}
	total := 0
	for _, r := range a.history {
		if !slices.Contains(r.CollectionIDs, collectionID) {
			continue
		}
		st.Sessions++
		total += r.Accuracy
		st.Attempts += r.TotalAttempts
		st.Correct += r.CorrectAnswers
		if r.Timestamp.After(st.LastPracticedAt) {
			st.LastPracticedAt = r.Timestamp
		}
	}
	if st.Sessions == 0 {
		return CollectionStats{}, false
	}
	st.AverageAccuracy = float64(total) / float64(st.Sessions)
	return st, true
}

func (a *Aggregator) put(key string, v any) {
	if a.persist == nil {
		return
	}
	if err := a.persist.Put(key, v); err != nil {
		a.logger.Warn("failed to queue stats write", "key", key, "error", err)
	}
}
