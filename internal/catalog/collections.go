package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/abhisek/wordspark/internal/store"
	"github.com/abhisek/wordspark/internal/syncledger"
)

// KeyCollections is the store key holding the collection list.
const KeyCollections = "collections"

// ItemLookup resolves item ids. *ItemCatalog satisfies it.
type ItemLookup interface {
	Get(id string) (Item, bool)
}

// CollectionCatalog owns the collection list.
type CollectionCatalog struct {
	mu          sync.RWMutex
	collections []Collection

	persist store.Persister
	ledger  *syncledger.Ledger
	opts    options
}

// NewCollectionCatalog loads collections from kv. On first load it creates
// the inactive default collection holding every seed item found in items.
func NewCollectionCatalog(ctx context.Context, kv store.KV, p store.Persister, ledger *syncledger.Ledger, items ItemLookup, opts ...Option) (*CollectionCatalog, error) {
	c := &CollectionCatalog{persist: p, ledger: ledger, opts: defaultOptions()}
	for _, opt := range opts {
		opt(&c.opts)
	}
	if c.ledger == nil {
		c.ledger, _ = syncledger.New(ctx, nil, nil)
	}

	found := false
	if kv != nil {
		var err error
		found, err = store.LoadJSON(ctx, kv, KeyCollections, &c.collections)
		if err != nil {
			return nil, fmt.Errorf("load collections: %w", err)
		}
	}
	if !found {
		c.bootstrap(items)
	}
	return c, nil
}

func (c *CollectionCatalog) bootstrap(items ItemLookup) {
	var ids []string
	for _, id := range SeedIDs() {
		if items == nil {
			break
		}
		if _, ok := items.Get(id); ok {
			ids = append(ids, id)
		}
	}

	now := c.opts.now()
	meta := syncledger.NewMeta(now, false)
	meta.Status = syncledger.StatusSynced
	c.collections = append(c.collections, Collection{
		ID:           DefaultCollectionID,
		Name:         "Starter words",
		Description:  "Every bundled picture word",
		ItemIDs:      uniqueIDs(ids),
		Active:       false,
		Default:      true,
		PracticeMode: PracticeRandom,
		CreatedAt:    now,
		ModifiedAt:   now,
		Sync:         meta,
	})
	c.opts.logger.Info("created default collection", "items", len(ids))
	c.persistLocked()
}

// Add creates a collection from in and returns it.
func (c *CollectionCatalog) Add(in CollectionInput) Collection {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.now()
	col := Collection{
		ID:           c.opts.newID(),
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Category:     in.Category,
		ItemIDs:      uniqueIDs(in.ItemIDs),
		Active:       in.Active,
		PracticeMode: normalizePracticeMode(in.PracticeMode),
		CreatedAt:    now,
		ModifiedAt:   now,
		Sync:         syncledger.NewMeta(now, in.Local),
	}
	c.collections = append(c.collections, col)
	c.ledger.Track(collectionRef(col.ID), &c.collections[len(c.collections)-1].Sync)
	c.persistLocked()
	return c.collections[len(c.collections)-1].clone()
}

// Update merges the non-nil fields of patch. An absent id reports false.
func (c *CollectionCatalog) Update(id string, patch CollectionPatch) bool {
	return c.mutate(id, func(col *Collection) bool {
		if patch.Name != nil {
			col.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			col.Description = *patch.Description
		}
		if patch.Category != nil {
			col.Category = *patch.Category
		}
		if patch.PracticeMode != nil {
			col.PracticeMode = normalizePracticeMode(*patch.PracticeMode)
		}
		if patch.Active != nil {
			col.Active = *patch.Active
		}
		return true
	})
}

// Remove deletes the collection. The default collection cannot be removed.
func (c *CollectionCatalog) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	if i < 0 || c.collections[i].Default {
		return false
	}
	c.collections = append(c.collections[:i], c.collections[i+1:]...)
	c.ledger.Forget(collectionRef(id))
	c.persistLocked()
	return true
}

// ToggleActive flips the collection's active flag.
func (c *CollectionCatalog) ToggleActive(id string) bool {
	return c.mutate(id, func(col *Collection) bool {
		col.Active = !col.Active
		return true
	})
}

// AddItem appends itemID to the collection. Adding an id already present is
// a successful no-op.
func (c *CollectionCatalog) AddItem(collectionID, itemID string) bool {
	if itemID == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(collectionID)
	if i < 0 {
		return false
	}
	col := &c.collections[i]
	if col.Contains(itemID) {
		return true
	}
	col.ItemIDs = append(col.ItemIDs, itemID)
	c.touchLocked(col)
	return true
}

// RemoveItem drops itemID from the collection.
func (c *CollectionCatalog) RemoveItem(collectionID, itemID string) bool {
	return c.mutate(collectionID, func(col *Collection) bool {
		for j, id := range col.ItemIDs {
			if id == itemID {
				col.ItemIDs = append(col.ItemIDs[:j], col.ItemIDs[j+1:]...)
				return true
			}
		}
		return false
	})
}

// Reorder replaces the stored order wholesale. An order containing
// duplicates is rejected.
func (c *CollectionCatalog) Reorder(collectionID string, ordered []string) bool {
	if len(uniqueIDs(ordered)) != len(ordered) {
		return false
	}
	return c.mutate(collectionID, func(col *Collection) bool {
		col.ItemIDs = append([]string(nil), ordered...)
		return true
	})
}

// SetLocal marks the collection device-only (or shared again).
func (c *CollectionCatalog) SetLocal(id string, local bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	if i < 0 {
		return false
	}
	col := &c.collections[i]
	if col.Sync.Local == local {
		return true
	}
	if local {
		c.ledger.MarkLocal(collectionRef(id), &col.Sync)
	} else {
		c.ledger.MarkShared(collectionRef(id), &col.Sync)
	}
	c.persistLocked()
	return true
}

// MarkSynced records a successful upload of the collection.
func (c *CollectionCatalog) MarkSynced(id string) bool {
	return c.withSync(id, c.ledger.MarkSynced)
}

// MarkConflict records that the remote copy of the collection diverged.
func (c *CollectionCatalog) MarkConflict(id string) bool {
	return c.withSync(id, c.ledger.MarkConflict)
}

func (c *CollectionCatalog) withSync(id string, fn func(syncledger.Ref, *syncledger.Meta) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	if i < 0 {
		return false
	}
	if !fn(collectionRef(id), &c.collections[i].Sync) {
		return false
	}
	c.persistLocked()
	return true
}

// Get returns a copy of the collection.
func (c *CollectionCatalog) Get(id string) (Collection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexLocked(id)
	if i < 0 {
		return Collection{}, false
	}
	return c.collections[i].clone(), true
}

// List returns copies of all collections in catalog order.
func (c *CollectionCatalog) List() []Collection {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Collection, len(c.collections))
	for i, col := range c.collections {
		out[i] = col.clone()
	}
	return out
}

// ActiveIDs returns the ids of every active collection.
func (c *CollectionCatalog) ActiveIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var ids []string
	for _, col := range c.collections {
		if col.Active {
			ids = append(ids, col.ID)
		}
	}
	return ids
}

// Referencing returns the ids of collections that contain itemID.
func (c *CollectionCatalog) Referencing(itemID string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var ids []string
	for _, col := range c.collections {
		if col.Contains(itemID) {
			ids = append(ids, col.ID)
		}
	}
	return ids
}

// mutate applies fn to the collection and, when fn reports a change, bumps
// the modification time, marks it for sync and persists.
func (c *CollectionCatalog) mutate(id string, fn func(*Collection) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	if i < 0 {
		return false
	}
	col := &c.collections[i]
	if !fn(col) {
		return false
	}
	c.touchLocked(col)
	return true
}

func (c *CollectionCatalog) touchLocked(col *Collection) {
	col.ModifiedAt = c.opts.now()
	c.ledger.MarkForSync(collectionRef(col.ID), &col.Sync)
	c.persistLocked()
}

func (c *CollectionCatalog) indexLocked(id string) int {
	for i := range c.collections {
		if c.collections[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *CollectionCatalog) persistLocked() {
	if c.persist == nil {
		return
	}
	if err := c.persist.Put(KeyCollections, c.collections); err != nil {
		c.opts.logger.Warn("failed to queue collection write", "error", err)
	}
}

func collectionRef(id string) syncledger.Ref {
	return syncledger.Ref{Kind: syncledger.KindCollection, ID: id}
}
