package edm

import "sync"

// flightCache is the decoded-flight cache keyed by flight number
// (§3 "Lifecycle", §5 "Shared resources"). It follows the same
// single-producer, populate-on-miss discipline as the teacher's
// Sky.aircrafts map: a decoded flight is immutable once inserted and
// is never mutated afterward, so a plain mutex (no TTL — flights don't
// expire the way a radio contact does) is sufficient.
type flightCache struct {
	mu     sync.Mutex
	byNum  map[uint16]*Flight
}

func newFlightCache() *flightCache {
	return &flightCache{byNum: make(map[uint16]*Flight)}
}

func (c *flightCache) get(n uint16) (*Flight, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.byNum[n]
	return f, ok
}

func (c *flightCache) put(f *Flight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byNum[f.Number] = f
}

func (c *flightCache) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byNum)
}
