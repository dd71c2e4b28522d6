// Package store persists decoded flights so a host doesn't have to
// re-decode the same file across runs, fronted by an in-process hot
// cache keyed by a hash of the flight's content bytes rather than a
// string concatenation.
package store

import (
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/patrickmn/go-cache"

	"jpiedm/edm"
)

// CacheKey hashes content (a caller-chosen byte representation of a
// decoded flight, e.g. its raw binary record range or its rendered
// CSV) plus the temperature unit used to decode it, so two different
// units of the same flight never collide.
func CacheKey(content []byte, unit edm.TempUnit) uint64 {
	h := xxhash.New()
	h.Write(content)
	h.Write([]byte{byte(unit)})
	return h.Sum64()
}

// HotCache is an in-process, TTL-bounded cache of decoded flights,
// playing the same role the teacher's ICAO address cache plays for
// radio contacts: avoid redoing recent, expensive work, aged by
// wall-clock time rather than "still being heard from".
type HotCache struct {
	c *cache.Cache
}

// NewHotCache builds a cache with the given TTL and cleanup interval.
func NewHotCache(ttl, cleanupInterval time.Duration) *HotCache {
	return &HotCache{c: cache.New(ttl, cleanupInterval)}
}

func (h *HotCache) Get(key uint64) (*edm.Flight, bool) {
	v, ok := h.c.Get(keyString(key))
	if !ok {
		return nil, false
	}
	f, ok := v.(*edm.Flight)
	return f, ok
}

func (h *HotCache) Set(key uint64, f *edm.Flight) {
	h.c.SetDefault(keyString(key), f)
}

func (h *HotCache) ItemCount() int { return h.c.ItemCount() }

func keyString(key uint64) string {
	return strconv.FormatUint(key, 16)
}
