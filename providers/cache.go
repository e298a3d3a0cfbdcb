package providers

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// peerMap maps peerText to the unix-millisecond timestamp of its most
// recent provide for a single cid.
type peerMap map[string]int64

// cacheTier is a fixed-capacity LRU mapping cid text to the peer map for
// that cid. It is advisory: losing an entry never loses data, it only
// forces the next access to rebuild the entry from the backend.
//
// cacheTier is read and written from within the Serializer's worker
// goroutine, except for len, which Registry.Len calls from any goroutine.
// cacheTier does no locking of its own; the underlying lru.Cache locks
// internally.
type cacheTier struct {
	lru *lru.Cache[string, peerMap]
}

func newCacheTier(capacity int) (*cacheTier, error) {
	c, err := lru.New[string, peerMap](capacity)
	if err != nil {
		return nil, err
	}
	return &cacheTier{lru: c}, nil
}

// get returns the cached peer map for cidTxt. The bool is false when the cid
// is not cached, which is distinct from it being cached with no providers.
func (c *cacheTier) get(cidTxt string) (peerMap, bool) {
	return c.lru.Get(cidTxt)
}

// put inserts or replaces the peer map for cidTxt, evicting the least
// recently used entry if the cache is at capacity.
func (c *cacheTier) put(cidTxt string, m peerMap) {
	c.lru.Add(cidTxt, m)
}

// remove evicts cidTxt entirely, if present.
func (c *cacheTier) remove(cidTxt string) {
	c.lru.Remove(cidTxt)
}

// len returns the number of cids currently resident in the cache.
func (c *cacheTier) len() int {
	return c.lru.Len()
}
