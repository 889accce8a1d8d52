package printtmpl

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// CacheConfig contains configuration options for the document cache
type CacheConfig struct {
	// MaxSize is the maximum number of documents to cache. 0 disables caching.
	MaxSize int
	// TTL is the time-to-live for cached documents. 0 means no expiration.
	TTL time.Duration
}

// DocumentCache keeps parsed documents keyed by the hash of their XML text,
// evicting the least recently used entry when full. Documents are immutable,
// so a cached document may be rendered by many goroutines at once.
type DocumentCache struct {
	mu     sync.Mutex
	cache  map[string]*cacheEntry
	lru    *list.List
	config CacheConfig
	now    func() time.Time
}

type cacheEntry struct {
	key     string
	doc     *Document
	expiry  time.Time
	element *list.Element
}

// NewDocumentCache creates a cache sized from the global configuration
func NewDocumentCache() *DocumentCache {
	config := GetGlobalConfig()
	return NewDocumentCacheWithConfig(CacheConfig{
		MaxSize: config.CacheMaxSize,
		TTL:     config.CacheTTL,
	})
}

// NewDocumentCacheWithConfig creates a cache with the given configuration
func NewDocumentCacheWithConfig(config CacheConfig) *DocumentCache {
	return &DocumentCache{
		cache:  make(map[string]*cacheEntry),
		lru:    list.New(),
		config: config,
		now:    time.Now,
	}
}

// CacheKey returns the cache key for a template source.
func CacheKey(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}

// Parse returns the cached document for src, or parses it with parse and
// caches the result. Parse failures are not cached.
func (dc *DocumentCache) Parse(src string, parse func(string) (*Document, error)) (*Document, error) {
	if dc.config.MaxSize <= 0 {
		return parse(src)
	}

	key := CacheKey(src)
	if doc, ok := dc.Get(key); ok {
		return doc, nil
	}

	doc, err := parse(src)
	if err != nil {
		return nil, err
	}
	dc.Set(key, doc)
	return doc, nil
}

// Get retrieves a document without parsing
func (dc *DocumentCache) Get(key string) (*Document, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, exists := dc.cache[key]
	if !exists {
		return nil, false
	}

	if dc.expired(entry) {
		dc.removeLocked(entry)
		return nil, false
	}

	dc.lru.MoveToFront(entry.element)
	return entry.doc, true
}

// Set adds a document to the cache
func (dc *DocumentCache) Set(key string, doc *Document) {
	if dc.config.MaxSize <= 0 {
		return
	}

	dc.mu.Lock()
	defer dc.mu.Unlock()

	expiry := time.Time{}
	if dc.config.TTL > 0 {
		expiry = dc.now().Add(dc.config.TTL)
	}

	if existing, exists := dc.cache[key]; exists {
		existing.doc = doc
		existing.expiry = expiry
		dc.lru.MoveToFront(existing.element)
		return
	}

	for dc.lru.Len() >= dc.config.MaxSize {
		oldest := dc.lru.Back()
		if oldest == nil {
			break
		}
		dc.removeLocked(oldest.Value.(*cacheEntry))
	}

	entry := &cacheEntry{
		key:    key,
		doc:    doc,
		expiry: expiry,
	}
	entry.element = dc.lru.PushFront(entry)
	dc.cache[key] = entry
}

// Remove removes a document from the cache
func (dc *DocumentCache) Remove(key string) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if entry, exists := dc.cache[key]; exists {
		dc.removeLocked(entry)
	}
}

// Clear removes all documents from the cache
func (dc *DocumentCache) Clear() {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	dc.cache = make(map[string]*cacheEntry)
	dc.lru = list.New()
}

// Size returns the current number of cached documents
func (dc *DocumentCache) Size() int {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return len(dc.cache)
}

func (dc *DocumentCache) expired(entry *cacheEntry) bool {
	return dc.config.TTL > 0 && dc.now().After(entry.expiry)
}

func (dc *DocumentCache) removeLocked(entry *cacheEntry) {
	delete(dc.cache, entry.key)
	dc.lru.Remove(entry.element)
}
