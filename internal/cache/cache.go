package cache

import (
	"slices"
	"sync"
	"time"

	"github.com/backyonatan-alt/coronastats/internal/model"
)

// Cache holds the latest extraction results in memory. Headline counters
// merge field by field; the country list is replaced as a whole.
type Cache struct {
	mu                 sync.RWMutex
	global             model.GlobalSnapshot
	countries          []model.CountryRecord
	globalUpdatedAt    time.Time
	countriesUpdatedAt time.Time
}

func New() *Cache {
	return &Cache{}
}

// MergeGlobal copies every non-nil counter of g into the cache. Counters
// that are nil in g keep their cached value.
func (c *Cache) MergeGlobal(g model.GlobalSnapshot) {
	if g.Empty() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if g.Cases != nil {
		c.global.Cases = model.Int64(*g.Cases)
	}
	if g.Deaths != nil {
		c.global.Deaths = model.Int64(*g.Deaths)
	}
	if g.Recovered != nil {
		c.global.Recovered = model.Int64(*g.Recovered)
	}
	c.globalUpdatedAt = time.Now()
}

// ReplaceCountries swaps in records as the new country list. A nil slice
// is stored as empty.
func (c *Cache) ReplaceCountries(records []model.CountryRecord) {
	stored := slices.Clone(records)
	if stored == nil {
		stored = []model.CountryRecord{}
	}

	c.mu.Lock()
	c.countries = stored
	c.countriesUpdatedAt = time.Now()
	c.mu.Unlock()
}

// Global returns a copy of the cached counters.
func (c *Cache) Global() model.GlobalSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyGlobal(c.global)
}

// Countries returns a copy of the cached country list, never nil.
func (c *Cache) Countries() []model.CountryRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.countries == nil {
		return []model.CountryRecord{}
	}
	return slices.Clone(c.countries)
}

// Snapshot returns a copy of everything cached.
func (c *Cache) Snapshot() model.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	countries := []model.CountryRecord{}
	if c.countries != nil {
		countries = slices.Clone(c.countries)
	}
	return model.Snapshot{
		GlobalSnapshot:     copyGlobal(c.global),
		Countries:          countries,
		GlobalUpdatedAt:    c.globalUpdatedAt,
		CountriesUpdatedAt: c.countriesUpdatedAt,
	}
}

// UpdatedAt returns the last time either category was written.
func (c *Cache) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.globalUpdatedAt.After(c.countriesUpdatedAt) {
		return c.globalUpdatedAt
	}
	return c.countriesUpdatedAt
}

func copyGlobal(g model.GlobalSnapshot) model.GlobalSnapshot {
	var out model.GlobalSnapshot
	if g.Cases != nil {
		out.Cases = model.Int64(*g.Cases)
	}
	if g.Deaths != nil {
		out.Deaths = model.Int64(*g.Deaths)
	}
	if g.Recovered != nil {
		out.Recovered = model.Int64(*g.Recovered)
	}
	return out
}
