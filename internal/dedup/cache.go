// Package dedup holds the caches that hand out one shared content list per
// distinct query. Entries never keep a list alive: a list removes its own
// entry when it is destroyed.
package dedup

import (
	"fmt"

	xerrors "github.com/jacoelho/contentlist/errors"
)

// DefaultRecentSlots is the number of direct-mapped recent slots of a tag cache.
const DefaultRecentSlots = 31

// Tier reports where a lookup was answered.
type Tier uint8

const (
	// Miss means the key was absent.
	Miss Tier = iota
	// Recent means the key was found in the recent slots.
	Recent
	// Table means the key was found in the table.
	Table
)

func (t Tier) String() string {
	switch t {
	case Recent:
		return "recent"
	case Table:
		return "table"
	default:
		return "miss"
	}
}

type recentEntry[K comparable, V comparable] struct {
	key   K
	value V
	used  bool
}

// Cache maps keys to shared values. With recent slots configured, each key
// hashes to one slot remembering the last value looked up there; every slot
// entry is also in the table.
type Cache[K comparable, V comparable] struct {
	table  map[K]V
	hash   func(K) uint64
	recent []recentEntry[K, V]
}

// NewTagCache returns a cache with slots recent slots in front of the table.
// slots <= 0 disables the recent tier.
func NewTagCache[V comparable](slots int) *Cache[TagKey, V] {
	return newCache[TagKey, V](slots, TagKey.Hash)
}

// NewFuncCache returns a table-only cache for function-predicate lists.
func NewFuncCache[V comparable]() *Cache[FuncKey, V] {
	return newCache[FuncKey, V](0, nil)
}

func newCache[K comparable, V comparable](slots int, hash func(K) uint64) *Cache[K, V] {
	c := &Cache[K, V]{table: make(map[K]V, 16)}
	if slots > 0 && hash != nil {
		c.hash = hash
		c.recent = make([]recentEntry[K, V], slots)
	}
	return c
}

func (c *Cache[K, V]) slot(key K) *recentEntry[K, V] {
	if len(c.recent) == 0 {
		return nil
	}
	return &c.recent[c.hash(key)%uint64(len(c.recent))]
}

// Lookup returns the value for key and the tier that answered.
func (c *Cache[K, V]) Lookup(key K) (V, Tier) {
	var zero V
	if c == nil {
		return zero, Miss
	}
	slot := c.slot(key)
	if slot != nil && slot.used && slot.key == key {
		return slot.value, Recent
	}
	v, ok := c.table[key]
	if !ok {
		return zero, Miss
	}
	if slot != nil {
		*slot = recentEntry[K, V]{key: key, value: v, used: true}
	}
	return v, Table
}

// LookupOrCreate returns the cached value for key, or stores and returns
// create(). The tier is Miss when create ran.
func (c *Cache[K, V]) LookupOrCreate(key K, create func() V) (V, Tier) {
	if v, tier := c.Lookup(key); tier != Miss {
		return v, tier
	}
	v := create()
	c.Insert(key, v)
	return v, Miss
}

// Insert stores v under key. Inserting an existing key panics with a
// cache-double-register violation. Unlike the read methods, Insert needs a
// non-nil cache: a nil one panics with a cache-missing-entry violation.
func (c *Cache[K, V]) Insert(key K, v V) {
	if c == nil {
		panic(xerrors.NewViolation(xerrors.ErrCacheMissingEntry, "insert into nil cache", describe(key)))
	}
	if _, ok := c.table[key]; ok {
		panic(xerrors.NewViolation(xerrors.ErrCacheDoubleRegister, "key already registered", describe(key)))
	}
	c.table[key] = v
	if slot := c.slot(key); slot != nil {
		*slot = recentEntry[K, V]{key: key, value: v, used: true}
	}
}

// Remove deletes the entry for key, which must hold v. A missing or
// different entry panics with a cache-missing-entry violation, as does a
// nil cache, which holds no entries.
func (c *Cache[K, V]) Remove(key K, v V) {
	if c == nil {
		panic(xerrors.NewViolation(xerrors.ErrCacheMissingEntry, "remove from nil cache", describe(key)))
	}
	cur, ok := c.table[key]
	if !ok || cur != v {
		panic(xerrors.NewViolation(xerrors.ErrCacheMissingEntry, "entry not owned by caller", describe(key)))
	}
	delete(c.table, key)
	if slot := c.slot(key); slot != nil && slot.used && slot.key == key {
		*slot = recentEntry[K, V]{}
	}
}

// Contains reports whether key has an entry.
func (c *Cache[K, V]) Contains(key K) bool {
	if c == nil {
		return false
	}
	_, ok := c.table[key]
	return ok
}

// Len reports the number of entries.
func (c *Cache[K, V]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.table)
}

// RecentLen reports how many recent slots are occupied.
func (c *Cache[K, V]) RecentLen() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, e := range c.recent {
		if e.used {
			n++
		}
	}
	return n
}

// Drain empties the cache and returns the values it held.
func (c *Cache[K, V]) Drain() []V {
	if c == nil {
		return nil
	}
	out := make([]V, 0, len(c.table))
	for _, v := range c.table {
		out = append(out, v)
	}
	clear(c.table)
	clear(c.recent)
	return out
}

func describe(key any) string {
	if s, ok := key.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(key)
}
