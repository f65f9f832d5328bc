package store

import "sync"

// ListCache provides the operations the sync services need on a
// JSON-array collection stored under one key: prepend, merge-by-id,
// remove-by-id, replace. Collections stay flat arrays on purpose; the
// O(n) scans are fine at personal-finance volumes.
//
// A mutex serializes the read-modify-write cycles so two near
// simultaneous writers cannot interleave on the same store.
type ListCache struct {
	mu    sync.Mutex
	local *Local
}

func NewListCache(local *Local) *ListCache {
	return &ListCache{local: local}
}

// Add prepends item to the list under key (newest first) and returns
// the new length.
func (c *ListCache) Add(key string, item any) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.loadMaps(key)
	m, ok := toMap(item)
	if !ok {
		return len(list)
	}
	list = append([]map[string]any{m}, list...)
	c.local.SaveLocal(key, list)
	return len(list)
}

// Update locates the entry whose idField equals matchID and shallow
// merges patch into it. Returns false when no entry matched, so callers
// can detect id-mismatch races instead of silently losing the write.
func (c *ListCache) Update(key, idField, matchID string, patch map[string]any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.loadMaps(key)
	for i := range list {
		if id, _ := list[i][idField].(string); id == matchID {
			for k, v := range patch {
				list[i][k] = v
			}
			c.local.SaveLocal(key, list)
			return true
		}
	}
	return false
}

// Remove filters the entry with the given id out of the list. Returns
// false when nothing was removed.
func (c *ListCache) Remove(key, idField, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.loadMaps(key)
	kept := list[:0]
	removed := false
	for _, item := range list {
		if v, _ := item[idField].(string); v == id {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if removed {
		c.local.SaveLocal(key, kept)
	}
	return removed
}

// Replace overwrites the whole list under key.
func (c *ListCache) Replace(key string, items any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.local.SaveLocal(key, items)
}

// Load decodes the list under key into dest (a pointer to a slice).
// Returns false when the key is absent.
func (c *ListCache) Load(key string, dest any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.local.GetLocal(key, dest)
}

func (c *ListCache) loadMaps(key string) []map[string]any {
	var list []map[string]any
	c.local.GetLocal(key, &list)
	if list == nil {
		list = []map[string]any{}
	}
	return list
}
