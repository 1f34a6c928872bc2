package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"storefront-backend/database"
)

// DefaultCacheTTL is how long a loaded table is served before re-reading
const DefaultCacheTTL = 5 * time.Minute

type cachedTable struct {
	table     *database.Table
	timestamp time.Time
}

// TableCache keeps parsed tables in memory for a fixed time. A write to a
// table through the store drops its entry.
type TableCache struct {
	mu      sync.RWMutex
	store   database.TableStore
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*cachedTable
}

// NewTableCache creates a cache over the store and subscribes to its writes
func NewTableCache(store database.TableStore, ttl time.Duration) *TableCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &TableCache{
		store:   store,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*cachedTable),
	}
	store.OnWrite(c.Invalidate)
	return c
}

// Store returns the underlying table store
func (c *TableCache) Store() database.TableStore {
	return c.store
}

func (c *TableCache) get(name string) (*cachedTable, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, exists := c.entries[name]
	if !exists {
		return nil, false
	}
	return cached, c.now().Sub(cached.timestamp) < c.ttl
}

// Load returns the parsed table, reading the file when the entry is
// missing or expired. The returned table is shared and must not be
// modified; use Clone before editing. When a re-read fails and a stale
// copy exists the stale copy is served.
func (c *TableCache) Load(name string) (*database.Table, error) {
	cached, fresh := c.get(name)
	if fresh {
		return cached.table, nil
	}

	table, err := c.store.ReadTable(name)
	if err != nil {
		if cached != nil {
			log.Printf("⚠️ Failed to reload %s, serving cached copy: %v", name, err)
			return cached.table, nil
		}
		if errors.Is(err, database.ErrUnauthorizedFile) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	c.mu.Lock()
	c.entries[name] = &cachedTable{table: table, timestamp: c.now()}
	c.mu.Unlock()
	return table, nil
}

// Invalidate drops one table from the cache
func (c *TableCache) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}

// Clear drops every cached table
func (c *TableCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cachedTable)
}
