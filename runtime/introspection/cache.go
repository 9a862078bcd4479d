package introspection

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// cacheKey identifies one aggregate result.
type cacheKey struct {
	subject Type
	stop    Type
	flags   Flags
}

// resultCache stores aggregates for the process lifetime. Each key is
// computed at most once: concurrent misses on the same key share a single
// computation and a failed computation is never stored.
//
// Type handles are compared by identity, never by name, so the singleflight
// key is built from a sequence number assigned to each handle on first use.
type resultCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]*BeanInfo
	ids     map[Type]uint64
	group   singleflight.Group
}

func newResultCache() *resultCache {
	return &resultCache{
		entries: make(map[cacheKey]*BeanInfo),
		ids:     make(map[Type]uint64),
	}
}

// flightKey renders key for singleflight, which groups calls by string.
func (c *resultCache) flightKey(key cacheKey) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	stop := "-"
	if key.stop != nil {
		stop = strconv.FormatUint(c.id(key.stop), 10)
	}
	return strconv.FormatUint(c.id(key.subject), 10) + "|" + stop + "|" + strconv.Itoa(int(key.flags))
}

// id returns the sequence number of t. Callers hold c.mu.
func (c *resultCache) id(t Type) uint64 {
	if n, ok := c.ids[t]; ok {
		return n
	}
	n := uint64(len(c.ids)) + 1
	c.ids[t] = n
	return n
}

func (c *resultCache) get(key cacheKey) (*BeanInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bi, ok := c.entries[key]
	return bi, ok
}

// getOrCompute returns the cached aggregate for key, running compute on a
// miss. hit reports whether the value came from the cache.
func (c *resultCache) getOrCompute(key cacheKey, compute func() (*BeanInfo, error)) (bi *BeanInfo, hit bool, err error) {
	if bi, ok := c.get(key); ok {
		return bi, true, nil
	}
	computed := false
	v, err, _ := c.group.Do(c.flightKey(key), func() (any, error) {
		// a call that finished between our miss and Do already stored the value
		if bi, ok := c.get(key); ok {
			return bi, nil
		}
		computed = true
		bi, err := compute()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = bi
		c.mu.Unlock()
		return bi, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*BeanInfo), !computed, nil
}

func (c *resultCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// memberCache memoizes the visible members of each type.
type memberCache struct {
	mu      sync.Mutex
	entries map[Type][]*Member
	types   TypeSystem
}

func newMemberCache(ts TypeSystem) *memberCache {
	return &memberCache{entries: make(map[Type][]*Member), types: ts}
}

// declared returns every member declared directly on t. The lock is held
// across the adapter call so each type is enumerated once.
func (mc *memberCache) declared(t Type) ([]*Member, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if members, ok := mc.entries[t]; ok {
		return members, nil
	}
	members, err := mc.types.DeclaredMembers(t)
	if err != nil {
		return nil, err
	}
	mc.entries[t] = members
	return members, nil
}

// visible filters members down to the exported, instance-bound ones
func visible(members []*Member) []*Member {
	out := make([]*Member, 0, len(members))
	for _, m := range members {
		if m.Exported && !m.Static {
			out = append(out, m)
		}
	}
	return out
}
