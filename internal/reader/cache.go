package reader

import (
	"sync"

	"github.com/hashicorp/golang-lru/v2"

	"github.com/LeJamon/goVaultd/internal/core/vault"
)

// VaultCache keeps recently read vault records by id
type VaultCache struct {
	mu      sync.RWMutex
	records *lru.Cache[vault.ID, vault.Vault]

	// Metrics
	hits   uint64
	misses uint64
}

// CacheStats reports cache effectiveness
type CacheStats struct {
	Size   int
	Hits   uint64
	Misses uint64
}

// NewVaultCache creates a cache holding at most size records
func NewVaultCache(size int) (*VaultCache, error) {
	if size <= 0 {
		size = 1024 // Default cache size
	}

	records, err := lru.New[vault.ID, vault.Vault](size)
	if err != nil {
		return nil, err
	}

	return &VaultCache{records: records}, nil
}

// Get retrieves a vault record from cache
func (c *VaultCache) Get(id vault.ID) (vault.Vault, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, found := c.records.Get(id)
	if found {
		c.hits++
		return v, true
	}

	c.misses++
	return vault.Vault{}, false
}

// Put stores a vault record in cache
func (c *VaultCache) Put(v vault.Vault) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records.Add(v.ID, v)
}

// MarkInactive flips the cached record of id to inactive, if present
func (c *VaultCache) MarkInactive(id vault.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, found := c.records.Peek(id); found {
		v.Active = false
		c.records.Add(id, v)
	}
}

// Remove drops id from cache
func (c *VaultCache) Remove(id vault.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records.Remove(id)
}

// Stats returns a snapshot of the cache counters
func (c *VaultCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{Size: c.records.Len(), Hits: c.hits, Misses: c.misses}
}
