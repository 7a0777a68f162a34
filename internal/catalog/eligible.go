package catalog

// Eligible returns the item ids a session over collectionIDs may draw from:
// the union of items across those collections that are active, in
// first-seen order. Unknown collections, dangling item ids and inactive
// items are skipped.
func (c *CollectionCatalog) Eligible(items ItemLookup, collectionIDs []string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, cid := range collectionIDs {
		i := c.indexLocked(cid)
		if i < 0 || !c.collections[i].Active {
			continue
		}
		for _, id := range c.collections[i].ItemIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			it, ok := items.Get(id)
			if !ok || !it.Active {
				continue
			}
			out = append(out, id)
		}
	}
	return out
}

// Pool binds a collection catalog to an item lookup so a session can ask
// for eligible ids without knowing about either.
type Pool struct {
	Items       ItemLookup
	Collections *CollectionCatalog
}

// Eligible implements the session's collection source.
func (p Pool) Eligible(collectionIDs []string) []string {
	return p.Collections.Eligible(p.Items, collectionIDs)
}
