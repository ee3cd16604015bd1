package mcpserver

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newSessionCache(2)
	a, b, d := &specSession{}, &specSession{}, &specSession{}

	c.put("a", a, time.Minute)
	c.put("b", b, time.Minute)
	require.Same(t, a, c.get("a")) // a is now more recent than b
	c.put("d", d, time.Minute)

	assert.Equal(t, 2, c.len())
	assert.Nil(t, c.get("b"))
	assert.Same(t, a, c.get("a"))
	assert.Same(t, d, c.get("d"))
}

func TestSessionCache_PutReplaces(t *testing.T) {
	c := newSessionCache(2)
	first, second := &specSession{}, &specSession{}

	c.put("k", first, time.Minute)
	c.put("k", second, time.Minute)

	assert.Equal(t, 1, c.len())
	assert.Same(t, second, c.get("k"))
}

func TestSessionCache_MinimumSize(t *testing.T) {
	c := newSessionCache(0)
	s := &specSession{}
	c.put("k", s, time.Minute)
	assert.Same(t, s, c.get("k"))
}

func TestSessionCache_Expiry(t *testing.T) {
	c := newSessionCache(10)
	c.put("short", &specSession{}, time.Nanosecond)
	c.put("long", &specSession{}, time.Hour)
	time.Sleep(time.Millisecond)

	c.sweep()
	assert.Equal(t, 1, c.len())
	assert.Nil(t, c.get("short"))
	assert.NotNil(t, c.get("long"))
}

func TestSessionCache_GetDropsExpired(t *testing.T) {
	c := newSessionCache(10)
	c.put("short", &specSession{}, time.Nanosecond)
	time.Sleep(time.Millisecond)

	assert.Nil(t, c.get("short"))
	assert.Equal(t, 0, c.len())
}

func TestSessionCache_Sweeper(t *testing.T) {
	c := newSessionCache(10)
	c.put("short", &specSession{}, time.Nanosecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.startSweeper(ctx, 5*time.Millisecond)
	c.startSweeper(ctx, 5*time.Millisecond) // second call is a no-op

	assert.Eventually(t, func() bool { return c.len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSessionCache_GetOrBuildRebuildsStale(t *testing.T) {
	dir := t.TempDir()
	path := writeSpec(t, dir, "asyncapi.yaml", testSpecYAML)
	stale, err := specInput{File: path}.newSession(false)
	require.NoError(t, err)
	_, err = stale.dereference()
	require.NoError(t, err)

	c := newSessionCache(10)
	c.put("k", stale, time.Minute)
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	rebuilt := &specSession{}
	got, err := c.getOrBuild("k", time.Minute, func() (*specSession, error) { return rebuilt, nil })
	require.NoError(t, err)
	assert.Same(t, rebuilt, got)
	assert.Same(t, rebuilt, c.get("k"))
}

func TestSessionCache_GetOrBuild(t *testing.T) {
	c := newSessionCache(10)
	var builds atomic.Int32
	built := &specSession{}
	build := func() (*specSession, error) {
		builds.Add(1)
		time.Sleep(10 * time.Millisecond)
		return built, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := c.getOrBuild("k", time.Minute, build)
			assert.NoError(t, err)
			assert.Same(t, built, s)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
	assert.Equal(t, 1, c.len())
}

func TestSessionCache_GetOrBuildErrorNotCached(t *testing.T) {
	c := newSessionCache(10)
	boom := errors.New("boom")

	_, err := c.getOrBuild("k", time.Minute, func() (*specSession, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.len())

	s := &specSession{}
	got, err := c.getOrBuild("k", time.Minute, func() (*specSession, error) { return s, nil })
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestSessionKey(t *testing.T) {
	assert.Empty(t, sessionKey(specInput{}, false))
	assert.Empty(t, sessionKey(specInput{File: "/nonexistent/x.yaml"}, false))
	assert.Equal(t, "url:https://example.com/a.yaml", sessionKey(specInput{URL: "https://example.com/a.yaml"}, false))
	assert.Equal(t, "url:https://example.com/a.yaml+rebase", sessionKey(specInput{URL: "https://example.com/a.yaml"}, true))

	k1 := sessionKey(specInput{Content: "a: 1"}, false)
	k2 := sessionKey(specInput{Content: "a: 2"}, false)
	assert.NotEqual(t, k1, k2)
	assert.Contains(t, k1, "content:")

	path := writeSpec(t, t.TempDir(), "a.yaml", "a: 1\n")
	assert.Contains(t, sessionKey(specInput{File: path}, false), "file:"+path+"@")
}

func TestSessionTTL(t *testing.T) {
	withConfig(t, func(c *serverConfig) {
		c.CacheFileTTL = time.Minute
		c.CacheURLTTL = 2 * time.Minute
		c.CacheContentTTL = 3 * time.Minute
	})
	assert.Equal(t, time.Minute, sessionTTL(specInput{File: "a.yaml"}))
	assert.Equal(t, 2*time.Minute, sessionTTL(specInput{URL: "https://example.com/a.yaml"}))
	assert.Equal(t, 3*time.Minute, sessionTTL(specInput{Content: "a: 1"}))
}
