package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/abhisek/wordspark/internal/store"
	"github.com/abhisek/wordspark/internal/syncledger"
)

// KeyItems is the store key holding the item list.
const KeyItems = "items"

// ItemCatalog owns the canonical item list.
type ItemCatalog struct {
	mu    sync.RWMutex
	items []Item

	persist store.Persister
	ledger  *syncledger.Ledger
	opts    options
}

// NewItemCatalog loads items from kv. On first load, when nothing has been
// persisted yet, the bundled seed set is installed.
func NewItemCatalog(ctx context.Context, kv store.KV, p store.Persister, ledger *syncledger.Ledger, opts ...Option) (*ItemCatalog, error) {
	c := &ItemCatalog{persist: p, ledger: ledger, opts: defaultOptions()}
	for _, opt := range opts {
		opt(&c.opts)
	}
	if c.ledger == nil {
		c.ledger, _ = syncledger.New(ctx, nil, nil)
	}

	found := false
	if kv != nil {
		var err error
		found, err = store.LoadJSON(ctx, kv, KeyItems, &c.items)
		if err != nil {
			return nil, fmt.Errorf("load items: %w", err)
		}
	}
	if !found {
		c.seed()
	}
	return c, nil
}

func (c *ItemCatalog) seed() {
	now := c.opts.now()
	meta := syncledger.NewMeta(now, false)
	meta.Status = syncledger.StatusSynced
	for _, s := range SeedItems {
		c.items = append(c.items, Item{
			ID:         SeedID(s.Name),
			Name:       s.Name,
			ImageRef:   s.ImageRef,
			Tags:       normalizeTags(s.Tags),
			Difficulty: normalizeDifficulty(s.Difficulty),
			Category:   s.Category,
			Active:     true,
			CreatedAt:  now,
			ModifiedAt: now,
			Sync:       meta,
		})
	}
	c.opts.logger.Info("seeded item catalog", "count", len(SeedItems))
	c.persistLocked()
}

// Add creates an item from in and returns it.
func (c *ItemCatalog) Add(in ItemInput) Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.now()
	it := Item{
		ID:            c.opts.newID(),
		Name:          strings.TrimSpace(in.Name),
		ImageRef:      in.ImageRef,
		Pronunciation: in.Pronunciation,
		Tags:          normalizeTags(in.Tags),
		Difficulty:    normalizeDifficulty(in.Difficulty),
		Category:      in.Category,
		Notes:         in.Notes,
		Active:        true,
		CreatedAt:     now,
		ModifiedAt:    now,
		Sync:          syncledger.NewMeta(now, in.Local),
	}
	c.items = append(c.items, it)
	c.ledger.Track(ref(it.ID), &c.items[len(c.items)-1].Sync)
	c.persistLocked()
	return c.items[len(c.items)-1].clone()
}

// Update merges the non-nil fields of patch into the item. An absent id is
// a no-op and reports false.
func (c *ItemCatalog) Update(id string, patch ItemPatch) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	if i < 0 {
		return false
	}
	it := &c.items[i]
	if patch.Name != nil {
		it.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.ImageRef != nil {
		it.ImageRef = *patch.ImageRef
	}
	if patch.Pronunciation != nil {
		it.Pronunciation = *patch.Pronunciation
	}
	if patch.Tags != nil {
		it.Tags = normalizeTags(*patch.Tags)
	}
	if patch.Difficulty != nil {
		it.Difficulty = normalizeDifficulty(*patch.Difficulty)
	}
	if patch.Category != nil {
		it.Category = *patch.Category
	}
	if patch.Notes != nil {
		it.Notes = *patch.Notes
	}
	if patch.Active != nil {
		it.Active = *patch.Active
	}
	it.ModifiedAt = c.opts.now()
	c.ledger.MarkForSync(ref(id), &it.Sync)
	c.persistLocked()
	return true
}

// Remove deletes the item. Collections keep their references; draws skip
// them.
func (c *ItemCatalog) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.ledger.Forget(ref(id))
	c.persistLocked()
	return true
}

// RecordAttempt folds one practice attempt into the item's performance.
func (c *ItemCatalog) RecordAttempt(id string, wasCorrect bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	if i < 0 {
		return false
	}
	it := &c.items[i]
	now := c.opts.now()
	it.Performance.Attempts++
	if wasCorrect {
		it.Performance.CorrectAttempts++
	}
	it.Performance.LastPracticedAt = &now
	c.ledger.MarkForSync(ref(id), &it.Sync)
	c.persistLocked()
	return true
}

// SetLocal marks the item device-only (or shared again).
func (c *ItemCatalog) SetLocal(id string, local bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	if i < 0 {
		return false
	}
	it := &c.items[i]
	if it.Sync.Local == local {
		return true
	}
	if local {
		c.ledger.MarkLocal(ref(id), &it.Sync)
	} else {
		c.ledger.MarkShared(ref(id), &it.Sync)
	}
	c.persistLocked()
	return true
}

// MarkSynced records a successful upload of the item.
func (c *ItemCatalog) MarkSynced(id string) bool {
	return c.withSync(id, c.ledger.MarkSynced)
}

// MarkConflict records that the remote copy of the item diverged.
func (c *ItemCatalog) MarkConflict(id string) bool {
	return c.withSync(id, c.ledger.MarkConflict)
}

func (c *ItemCatalog) withSync(id string, fn func(syncledger.Ref, *syncledger.Meta) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	if i < 0 {
		return false
	}
	if !fn(ref(id), &c.items[i].Sync) {
		return false
	}
	c.persistLocked()
	return true
}

// Get returns a copy of the item.
func (c *ItemCatalog) Get(id string) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexLocked(id)
	if i < 0 {
		return Item{}, false
	}
	return c.items[i].clone(), true
}

// Exists reports whether id is in the catalog.
func (c *ItemCatalog) Exists(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexLocked(id) >= 0
}

// FindByName returns the first item whose name matches, ignoring case.
func (c *ItemCatalog) FindByName(name string) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	name = strings.TrimSpace(name)
	for _, it := range c.items {
		if strings.EqualFold(it.Name, name) {
			return it.clone(), true
		}
	}
	return Item{}, false
}

// List returns copies of all items in catalog order.
func (c *ItemCatalog) List() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Item, len(c.items))
	for i, it := range c.items {
		out[i] = it.clone()
	}
	return out
}

// Len returns the number of items.
func (c *ItemCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *ItemCatalog) indexLocked(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *ItemCatalog) persistLocked() {
	if c.persist == nil {
		return
	}
	if err := c.persist.Put(KeyItems, c.items); err != nil {
		c.opts.logger.Warn("failed to queue item write", "error", err)
	}
}

func ref(itemID string) syncledger.Ref {
	return syncledger.Ref{Kind: syncledger.KindItem, ID: itemID}
}
