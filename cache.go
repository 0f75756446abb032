package vkrt

// cache is the structural-hash cache map described in §4.3: Add, Find
// (returning the zero value on miss), EraseByValue, Size, Clear. Keys
// are compared by Eq after bucketing by Hash — all four of our keys
// (renderpass, descriptor-set-layout, pipeline-layout,
// descriptor-set-write) own variable-length slices that Go maps cannot
// key on directly, so every cache goes through the same
// hash-bucket-then-linear-scan shape uniformly.
//
// Grounded on the teacher's CorePipeline/CoreRenderPass string-keyed
// maps (pipeline.go, renderpass.go), generalized from "string name you
// chose" keys to "structural content" keys per §4.3, with the bucketed
// hash itself following gogpu/gg's pipeline_cache_core.go (hash/fnv over
// a descriptor to avoid redundant GPU object creation).
type cache[K any, V comparable] struct {
	hash    func(K) uint64
	eq      func(K, K) bool
	buckets map[uint64][]entry[K, V]
	count   int
}

type entry[K any, V comparable] struct {
	key   K
	value V
}

func newCache[K any, V comparable](hash func(K) uint64, eq func(K, K) bool) *cache[K, V] {
	return &cache[K, V]{hash: hash, eq: eq, buckets: make(map[uint64][]entry[K, V])}
}

// Find returns the cached value for a structurally-equal key, or the
// zero value and false on miss.
func (c *cache[K, V]) Find(key K) (V, bool) {
	h := c.hash(key)
	for _, e := range c.buckets[h] {
		if c.eq(e.key, key) {
			return e.value, true
		}
	}
	var zero V
	return zero, false
}

// Add inserts key -> value. Re-adding a structurally-equal key replaces
// the stored value without changing Size.
func (c *cache[K, V]) Add(key K, value V) {
	h := c.hash(key)
	bucket := c.buckets[h]
	for i, e := range bucket {
		if c.eq(e.key, key) {
			bucket[i].value = value
			return
		}
	}
	c.buckets[h] = append(bucket, entry[K, V]{key: key, value: value})
	c.count++
}

// EraseByValue removes every key mapping to value. Returns the number of
// keys removed (the testable property only ever relies on "exactly one"
// for a deduplicated cache, but nothing prevents aliasing).
func (c *cache[K, V]) EraseByValue(value V) int {
	removed := 0
	for h, bucket := range c.buckets {
		kept := bucket[:0]
		for _, e := range bucket {
			if e.value == value {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(c.buckets, h)
		} else {
			c.buckets[h] = kept
		}
	}
	c.count -= removed
	return removed
}

func (c *cache[K, V]) Size() int {
	return c.count
}

func (c *cache[K, V]) Clear() {
	c.buckets = make(map[uint64][]entry[K, V])
	c.count = 0
}

// Each visits every entry; order is unspecified.
func (c *cache[K, V]) Each(fn func(K, V)) {
	for _, bucket := range c.buckets {
		for _, e := range bucket {
			fn(e.key, e.value)
		}
	}
}
