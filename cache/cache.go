// Package cache memoizes deterministic simulation runs. Repeated
// requests for the same model and parameters, common when several
// clients plot the same scenario, skip the integration entirely.
// Stochastic runs are never cached.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sort"
	"sync"

	"github.com/outbreaklab/go-outbreak/engine"
	"github.com/outbreaklab/go-outbreak/epidemic"
)

// Key identifies one deterministic run.
type Key struct {
	Variant string
	Method  string
	Rates   map[string]float64
	Initial map[string]float64
	Days    float64
	Dt      float64
}

// NewKey builds a cache key from validated inputs.
func NewKey(variant epidemic.Variant, params epidemic.Parameters, method string) Key {
	return Key{
		Variant: variant.String(),
		Method:  method,
		Rates:   params.Rates(variant),
		Initial: params.InitialState(variant),
		Days:    params.Days,
		Dt:      params.Dt,
	}
}

// hash produces a deterministic digest of the key. Map keys are sorted
// so equal keys always hash equal.
func (k Key) hash() string {
	h := sha256.New()
	buf := make([]byte, 8)

	writeFloat := func(v float64) {
		binary.BigEndian.PutUint64(buf, math.Float64bits(v))
		h.Write(buf)
	}
	writeMap := func(m map[string]float64) {
		names := make([]string, 0, len(m))
		for name := range m {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			h.Write([]byte(name))
			writeFloat(m[name])
		}
	}

	h.Write([]byte(k.Variant))
	h.Write([]byte(k.Method))
	writeMap(k.Rates)
	writeMap(k.Initial)
	writeFloat(k.Days)
	writeFloat(k.Dt)

	return string(h.Sum(nil))
}

// RunCache caches finished time series keyed by run parameters.
type RunCache struct {
	mu        sync.Mutex
	entries   map[string]*engine.TimeSeries
	maxSize   int
	hits      int64
	misses    int64
	evictions int64
}

// NewRunCache creates a cache holding at most maxSize runs. When full,
// an arbitrary entry is evicted. Set maxSize to 0 for unlimited.
func NewRunCache(maxSize int) *RunCache {
	return &RunCache{
		entries: make(map[string]*engine.TimeSeries),
		maxSize: maxSize,
	}
}

// Get returns the cached series for the key, or nil.
func (c *RunCache) Get(key Key) *engine.TimeSeries {
	digest := key.hash()

	c.mu.Lock()
	defer c.mu.Unlock()

	if series, ok := c.entries[digest]; ok {
		c.hits++
		return series
	}
	c.misses++
	return nil
}

// Put stores a finished series under the key.
func (c *RunCache) Put(key Key, series *engine.TimeSeries) {
	digest := key.hash()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		for k := range c.entries {
			delete(c.entries, k)
			c.evictions++
			break
		}
	}

	c.entries[digest] = series
}

// GetOrCompute returns the cached series or runs compute. Results are
// cached only when compute succeeds, so unstable runs are retried.
func (c *RunCache) GetOrCompute(key Key, compute func() (*engine.TimeSeries, error)) (*engine.TimeSeries, error) {
	if series := c.Get(key); series != nil {
		return series, nil
	}

	series, err := compute()
	if err != nil {
		return series, err
	}
	c.Put(key, series)
	return series, nil
}

// Clear removes all entries.
func (c *RunCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*engine.TimeSeries)
}

// Size returns the current number of cached runs.
func (c *RunCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats describes cache effectiveness.
type Stats struct {
	Size      int     `json:"size"`
	MaxSize   int     `json:"maxSize"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hitRate"`
}

// Stats returns a snapshot of the cache counters.
func (c *RunCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return Stats{
		Size:      len(c.entries),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		HitRate:   hitRate,
	}
}
