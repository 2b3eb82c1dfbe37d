package match

import (
	"regexp"
	"sync"
	"sync/atomic"
)

// defaultPatternCacheSize bounds the compiled-pattern cache. Hover traffic
// recompiles the same handful of name/quantity patterns over and over; a
// small LRU absorbs all of it.
const defaultPatternCacheSize = 256

// patternCache is an LRU of compiled regular expressions keyed by pattern
// source. Compilation happens at most once per source until eviction.
type patternCache struct {
	mu      sync.Mutex
	entries map[string]*patternEntry
	head    *patternEntry // Most recently used.
	tail    *patternEntry // Least recently used.
	maxSize int

	// Metrics (atomic for lock-free reads).
	hits   atomic.Int64
	misses atomic.Int64
}

// patternEntry is a doubly-linked list node for LRU tracking.
type patternEntry struct {
	source   string
	compiled *regexp.Regexp
	prev     *patternEntry
	next     *patternEntry
}

//nolint:gochecknoglobals // Shared cache; patterns are process-wide.
var sharedPatterns = newPatternCache(defaultPatternCacheSize)

func newPatternCache(maxSize int) *patternCache {
	if maxSize <= 0 {
		maxSize = defaultPatternCacheSize
	}

	return &patternCache{
		entries: make(map[string]*patternEntry),
		maxSize: maxSize,
	}
}

// compileCached returns the compiled form of source, compiling on first use.
// All sources built by this package are escape-safe, so compilation cannot
// fail; a failure would be a programming error and panics.
func compileCached(source string) *regexp.Regexp {
	return sharedPatterns.get(source)
}

func (c *patternCache) get(source string) *regexp.Regexp {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[source]; ok {
		c.hits.Add(1)
		c.moveToFront(entry)

		return entry.compiled
	}

	c.misses.Add(1)

	entry := &patternEntry{source: source, compiled: regexp.MustCompile(source)}
	c.entries[source] = entry
	c.pushFront(entry)

	if len(c.entries) > c.maxSize {
		c.evictTail()
	}

	return entry.compiled
}

// Stats returns cumulative hit and miss counts.
func (c *patternCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *patternCache) moveToFront(entry *patternEntry) {
	if c.head == entry {
		return
	}

	c.unlink(entry)
	c.pushFront(entry)
}

func (c *patternCache) pushFront(entry *patternEntry) {
	entry.prev = nil
	entry.next = c.head

	if c.head != nil {
		c.head.prev = entry
	}

	c.head = entry

	if c.tail == nil {
		c.tail = entry
	}
}

func (c *patternCache) unlink(entry *patternEntry) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		c.head = entry.next
	}

	if entry.next != nil {
		entry.next.prev = entry.prev
	} else {
		c.tail = entry.prev
	}

	entry.prev = nil
	entry.next = nil
}

func (c *patternCache) evictTail() {
	victim := c.tail
	if victim == nil {
		return
	}

	c.unlink(victim)
	delete(c.entries, victim.source)
}
