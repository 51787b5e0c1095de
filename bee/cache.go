package bee

import "sync"

// A Cache remembers, for each mandatory letter, which parts of an Index
// can hold answers. Entries are added on first use and never changed or
// evicted. A Cache belongs to a single Index; when the index is rebuilt,
// make a new Cache along with it.
//
// A Cache is safe for concurrent use. Concurrent misses for the same
// letter may each compute the entry, but only one is kept and every
// caller sees that one.
type Cache struct {
	idx *Index
	m   sync.Map // byte -> []wordGroup
}

// NewCache returns an empty cache for idx.
func NewCache(idx *Index) *Cache {
	return &Cache{idx: idx}
}

func (c *Cache) groups(mandatory byte) []wordGroup {
	if v, ok := c.m.Load(mandatory); ok {
		return v.([]wordGroup)
	}
	v, _ := c.m.LoadOrStore(mandatory, c.idx.groupsWith(mandatory))
	return v.([]wordGroup)
}

// Len returns the number of letters with cached entries.
func (c *Cache) Len() int {
	var n int
	c.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
