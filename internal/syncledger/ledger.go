// Package syncledger tracks per-entity version and sync status, and the
// process-wide queues of entities waiting for upload or conflict resolution.
package syncledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/abhisek/wordspark/internal/store"
)

// Key is the store key holding the pending and conflict queues.
const Key = "sync_ledger"

// Status is the sync state of one entity.
type Status string

const (
	StatusSynced   Status = "synced"
	StatusPending  Status = "pending"
	StatusConflict Status = "conflict"
	StatusLocal    Status = "local"
)

// Meta is the sync metadata attached to every synced entity.
type Meta struct {
	Version        int64     `json:"version"`
	Status         Status    `json:"sync_status"`
	LastModifiedAt time.Time `json:"last_modified_at"`
	Local          bool      `json:"is_local"`
}

// NewMeta returns metadata for a freshly created entity.
func NewMeta(now time.Time, local bool) Meta {
	m := Meta{Version: 1, Status: StatusPending, LastModifiedAt: now, Local: local}
	if local {
		m.Status = StatusLocal
	}
	return m
}

// Kind names the entity family a Ref points into.
type Kind string

const (
	KindItem       Kind = "item"
	KindCollection Kind = "collection"
)

// Ref identifies one synced entity.
type Ref struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

func (r Ref) String() string {
	return string(r.Kind) + ":" + r.ID
}

type queues struct {
	Pending   []Ref `json:"pending"`
	Conflicts []Ref `json:"conflicts"`
}

// Ledger records sync state. It never resolves conflicts itself.
type Ledger struct {
	mu        sync.Mutex
	pending   map[Ref]struct{}
	conflicts map[Ref]struct{}

	persist store.Persister
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// New loads the queues from kv and returns a ledger persisting through p.
func New(ctx context.Context, kv store.KV, p store.Persister, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		pending:   make(map[Ref]struct{}),
		conflicts: make(map[Ref]struct{}),
		persist:   p,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}

	if kv != nil {
		var q queues
		if _, err := store.LoadJSON(ctx, kv, Key, &q); err != nil {
			return nil, fmt.Errorf("load sync ledger: %w", err)
		}
		for _, r := range q.Pending {
			l.pending[r] = struct{}{}
		}
		for _, r := range q.Conflicts {
			l.conflicts[r] = struct{}{}
		}
	}
	return l, nil
}

// MarkForSync bumps the version of a shared entity and queues it for upload.
// It reports false and leaves m untouched for local entities.
func (l *Ledger) MarkForSync(ref Ref, m *Meta) bool {
	if m.Local {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	m.Status = StatusPending
	m.Version++
	m.LastModifiedAt = l.now()
	delete(l.conflicts, ref)
	l.pending[ref] = struct{}{}
	l.persistLocked()
	return true
}

// Track queues a freshly created entity without bumping its version.
func (l *Ledger) Track(ref Ref, m *Meta) {
	if m.Local {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	m.Status = StatusPending
	l.pending[ref] = struct{}{}
	l.persistLocked()
}

// MarkSynced records a successful upload.
func (l *Ledger) MarkSynced(ref Ref, m *Meta) bool {
	if m.Local {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	m.Status = StatusSynced
	delete(l.pending, ref)
	delete(l.conflicts, ref)
	l.persistLocked()
	return true
}

// MarkConflict moves the entity into the conflict queue.
func (l *Ledger) MarkConflict(ref Ref, m *Meta) bool {
	if m.Local {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	m.Status = StatusConflict
	delete(l.pending, ref)
	l.conflicts[ref] = struct{}{}
	l.persistLocked()
	return true
}

// MarkLocal makes the entity device-only and drops it from both queues.
func (l *Ledger) MarkLocal(ref Ref, m *Meta) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m.Local = true
	m.Status = StatusLocal
	m.LastModifiedAt = l.now()
	l.forgetLocked(ref)
}

// MarkShared clears the local flag and queues the entity for upload.
func (l *Ledger) MarkShared(ref Ref, m *Meta) {
	m.Local = false
	l.MarkForSync(ref, m)
}

// Forget drops a removed entity from both queues.
func (l *Ledger) Forget(ref Ref) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.forgetLocked(ref)
}

func (l *Ledger) forgetLocked(ref Ref) {
	_, p := l.pending[ref]
	_, c := l.conflicts[ref]
	if !p && !c {
		return
	}
	delete(l.pending, ref)
	delete(l.conflicts, ref)
	l.persistLocked()
}

// PendingUploads returns the refs waiting for upload, sorted.
func (l *Ledger) PendingUploads() []Ref {
	l.mu.Lock()
	defer l.mu.Unlock()
	return sortedRefs(l.pending)
}

// Conflicts returns the refs in conflict, sorted.
func (l *Ledger) Conflicts() []Ref {
	l.mu.Lock()
	defer l.mu.Unlock()
	return sortedRefs(l.conflicts)
}

// PendingCount returns the number of refs waiting for upload.
func (l *Ledger) PendingCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

func (l *Ledger) persistLocked() {
	if l.persist == nil {
		return
	}
	q := queues{Pending: sortedRefs(l.pending), Conflicts: sortedRefs(l.conflicts)}
	if err := l.persist.Put(Key, q); err != nil {
		l.logger.Warn("failed to queue sync ledger write", "error", err)
	}
}

func sortedRefs(set map[Ref]struct{}) []Ref {
	out := make([]Ref, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].ID < out[j].ID
	})
	return out
}
