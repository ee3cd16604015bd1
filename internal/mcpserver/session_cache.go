package mcpserver

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// sessionCache keeps recently used sessions so that repeated tool calls on
// the same input share one resolver and its document and subtree caches.
// It is a bounded LRU with per-entry expiry; concurrent misses on one key
// build a single session.
type sessionCache struct {
	mu      sync.Mutex
	maxSize int
	lru     *list.List // *cacheEntry, most recently used first
	byKey   map[string]*list.Element

	builds   singleflight.Group
	sweeping atomic.Bool
}

type cacheEntry struct {
	key       string
	session   *specSession
	expiresAt time.Time
}

func newSessionCache(maxSize int) *sessionCache {
	return &sessionCache{
		maxSize: max(maxSize, 1),
		lru:     list.New(),
		byKey:   make(map[string]*list.Element),
	}
}

var specCache = newSessionCache(cfg.CacheMaxSize)

// get returns the live session stored under key and marks it recently used.
func (c *sessionCache) get(key string) *specSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.byKey[key]
	if !ok {
		return nil
	}
	e := el.Value.(*cacheEntry)
	if time.Now().After(e.expiresAt) {
		c.remove(el)
		return nil
	}
	c.lru.MoveToFront(el)
	return e.session
}

// put stores session under key for ttl, evicting least recently used
// entries beyond maxSize.
func (c *sessionCache) put(key string, session *specSession, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := &cacheEntry{key: key, session: session, expiresAt: time.Now().Add(ttl)}
	if el, ok := c.byKey[key]; ok {
		el.Value = entry
		c.lru.MoveToFront(el)
		return
	}
	c.byKey[key] = c.lru.PushFront(entry)
	for c.lru.Len() > c.maxSize {
		c.remove(c.lru.Back())
	}
}

// getOrBuild returns the cached session for key or builds, stores and
// returns a new one. A cached session whose files changed on disk is
// rebuilt. Failed builds are not stored.
func (c *sessionCache) getOrBuild(key string, ttl time.Duration, build func() (*specSession, error)) (*specSession, error) {
	if s := c.fresh(key); s != nil {
		return s, nil
	}
	v, err, _ := c.builds.Do(key, func() (any, error) {
		if s := c.fresh(key); s != nil {
			return s, nil
		}
		s, err := build()
		if err != nil {
			return nil, err
		}
		c.put(key, s, ttl)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*specSession), nil
}

// fresh is get, except that a session reporting stale files is dropped.
// Files are checked outside the lock.
func (c *sessionCache) fresh(key string) *specSession {
	s := c.get(key)
	if s == nil || !s.stale() {
		return s
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.byKey[key]; ok && el.Value.(*cacheEntry).session == s {
		c.remove(el)
	}
	return nil
}

// remove must be called with mu held.
func (c *sessionCache) remove(el *list.Element) {
	c.lru.Remove(el)
	delete(c.byKey, el.Value.(*cacheEntry).key)
}

// sweep drops every expired entry.
func (c *sessionCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for el := c.lru.Front(); el != nil; {
		next := el.Next()
		if now.After(el.Value.(*cacheEntry).expiresAt) {
			c.remove(el)
		}
		el = next
	}
}

// startSweeper sweeps every interval until ctx is done. Only one sweeper
// runs at a time; extra calls return immediately.
func (c *sessionCache) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 || !c.sweeping.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeping.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

func (c *sessionCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Init()
	c.byKey = make(map[string]*list.Element)
}

func (c *sessionCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// sessionKey identifies the session an input maps to, or "" when the input
// should not be cached. Files are keyed by absolute path and mtime, and
// edits to files the session loaded later are caught by fresh. Inline
// content is keyed by its SHA-256. Sessions that
// rebase external refs expand differently and get their own key.
func sessionKey(s specInput, rebase bool) string {
	var key string
	switch {
	case s.File != "":
		abs, err := filepath.Abs(s.File)
		if err != nil {
			return ""
		}
		info, err := os.Stat(abs)
		if err != nil {
			return ""
		}
		key = fmt.Sprintf("file:%s@%d", abs, info.ModTime().UnixNano())
	case s.URL != "":
		key = "url:" + s.URL
	case s.Content != "":
		sum := sha256.Sum256([]byte(s.Content))
		key = "content:" + hex.EncodeToString(sum[:])
	default:
		return ""
	}
	if rebase {
		key += "+rebase"
	}
	return key
}

// sessionTTL is how long a session for s stays cached.
func sessionTTL(s specInput) time.Duration {
	switch {
	case s.File != "":
		return cfg.CacheFileTTL
	case s.URL != "":
		return cfg.CacheURLTTL
	default:
		return cfg.CacheContentTTL
	}
}
