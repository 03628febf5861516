package server

import (
	"math"
	"sync"

	"github.com/bastiangx/tapdict/pkg/engine"
	"github.com/charmbracelet/log"
)

type cacheEntry struct {
	handle      engine.Handle
	suggestions []Suggestion
	accessTime  int64
}

// HotCache keeps the responses of recent suggest requests, evicting the
// least recently used one when full. Entries of a dictionary are dropped
// when it is reloaded or closed.
type HotCache struct {
	entries     map[string]*cacheEntry
	generations map[engine.Handle]int
	accessCount int64
	hits        int
	misses      int
	maxEntries  int
	mu          sync.Mutex
}

func NewHotCache(maxEntries int) *HotCache {
	return &HotCache{
		entries:     make(map[string]*cacheEntry, maxEntries),
		generations: make(map[engine.Handle]int),
		maxEntries:  maxEntries,
	}
}

// Get returns the cached suggestions for key. Callers must not modify them.
func (hc *HotCache) Get(key string) ([]Suggestion, bool) {
	if hc == nil {
		return nil, false
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	entry, ok := hc.entries[key]
	if !ok {
		hc.misses++
		return nil, false
	}
	hc.hits++
	entry.accessTime = hc.nextAccessTime()
	return entry.suggestions, true
}

// Generation returns the current generation of h. Pass it to Put to have
// results computed before an Invalidate discarded.
func (hc *HotCache) Generation(h engine.Handle) int {
	if hc == nil {
		return 0
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()
	return hc.generations[h]
}

// Put stores suggestions for key, produced by the dictionary h at generation gen.
func (hc *HotCache) Put(h engine.Handle, gen int, key string, suggestions []Suggestion) {
	if hc == nil || hc.maxEntries <= 0 {
		return
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	if hc.generations[h] != gen {
		return
	}

	if _, ok := hc.entries[key]; !ok && len(hc.entries) >= hc.maxEntries {
		hc.evictLRU()
	}
	hc.entries[key] = &cacheEntry{
		handle:      h,
		suggestions: suggestions,
		accessTime:  hc.nextAccessTime(),
	}
}

// Invalidate drops every entry produced by h.
func (hc *HotCache) Invalidate(h engine.Handle) {
	if hc == nil {
		return
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	hc.generations[h]++
	dropped := 0
	for key, entry := range hc.entries {
		if entry.handle == h {
			delete(hc.entries, key)
			dropped++
		}
	}
	if dropped > 0 {
		log.Debugf("Dropped %d cached responses of dictionary %d", dropped, h)
	}
}

func (hc *HotCache) Stats() map[string]int {
	if hc == nil {
		return map[string]int{}
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	return map[string]int{
		"entries":     len(hc.entries),
		"max_entries": hc.maxEntries,
		"hits":        hc.hits,
		"misses":      hc.misses,
	}
}

func (hc *HotCache) nextAccessTime() int64 {
	hc.accessCount++
	return hc.accessCount
}

func (hc *HotCache) evictLRU() {
	var oldestKey string
	var oldestTime int64 = math.MaxInt64

	for key, entry := range hc.entries {
		if entry.accessTime < oldestTime {
			oldestTime = entry.accessTime
			oldestKey = key
		}
	}
	if oldestKey != "" {
		delete(hc.entries, oldestKey)
	}
}
