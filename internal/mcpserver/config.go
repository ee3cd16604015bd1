package mcpserver

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/G-USI/wirecrab/resolver"
)

// envPrefix namespaces every environment variable the server reads.
const envPrefix = "WIRECRAB_"

// serverConfig holds the MCP server settings. It is read once from the
// environment when the package loads.
type serverConfig struct {
	// Session cache.
	CacheEnabled       bool
	CacheMaxSize       int
	CacheFileTTL       time.Duration
	CacheURLTTL        time.Duration
	CacheContentTTL    time.Duration
	CacheSweepInterval time.Duration

	// Byte limits. Both accept plain byte counts or KB/MB/GB suffixes.
	MaxInlineSize int64
	MaxFileSize   int64

	MaxRefDepth        int
	RebaseExternalRefs bool

	// AllowPrivateIPs lets spec URLs and remote $refs reach private and
	// loopback addresses.
	AllowPrivateIPs bool
}

var cfg = loadConfig()

// loadConfig reads WIRECRAB_* variables. Unset variables take the default;
// malformed or non-positive ones log a warning and take the default too.
func loadConfig() *serverConfig {
	return &serverConfig{
		CacheEnabled:       env("CACHE_ENABLED", true, strconv.ParseBool),
		CacheMaxSize:       env("CACHE_MAX_SIZE", 10, positive(strconv.Atoi)),
		CacheFileTTL:       env("CACHE_FILE_TTL", 15*time.Minute, positive(time.ParseDuration)),
		CacheURLTTL:        env("CACHE_URL_TTL", 5*time.Minute, positive(time.ParseDuration)),
		CacheContentTTL:    env("CACHE_CONTENT_TTL", 15*time.Minute, positive(time.ParseDuration)),
		CacheSweepInterval: env("CACHE_SWEEP_INTERVAL", time.Minute, positive(time.ParseDuration)),
		MaxInlineSize:      env("MAX_INLINE_SIZE", int64(10<<20), positive(parseByteSize)),
		MaxFileSize:        env("MAX_FILE_SIZE", int64(resolver.DefaultMaxFileSize), positive(parseByteSize)),
		MaxRefDepth:        env("MAX_REF_DEPTH", resolver.DefaultMaxRefDepth, positive(strconv.Atoi)),
		RebaseExternalRefs: env("REBASE_EXTERNAL_REFS", false, strconv.ParseBool),
		AllowPrivateIPs:    env("ALLOW_PRIVATE_IPS", false, strconv.ParseBool),
	}
}

// env parses envPrefix+name with parse, falling back to def.
func env[T any](name string, def T, parse func(string) (T, error)) T {
	key := envPrefix + name
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		slog.Warn("ignoring invalid environment variable", "key", key, "value", raw, "default", def, "error", err)
		return def
	}
	return v
}

// positive wraps parse so that zero and negative results are rejected.
func positive[T int | int64 | time.Duration](parse func(string) (T, error)) func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := parse(s)
		if err != nil {
			return v, err
		}
		if v <= 0 {
			return v, fmt.Errorf("must be positive, got %v", v)
		}
		return v, nil
	}
}

// parseByteSize accepts "4096", "512KB", "10MB" or "1GB" (binary multiples,
// case-insensitive, optional space before the unit).
func parseByteSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	mult := int64(1)
	for _, u := range []struct {
		suffix string
		mult   int64
	}{{"GB", 1 << 30}, {"MB", 1 << 20}, {"KB", 1 << 10}, {"B", 1}} {
		if strings.HasSuffix(s, u.suffix) {
			s, mult = strings.TrimSpace(strings.TrimSuffix(s, u.suffix)), u.mult
			break
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size: %w", err)
	}
	return n * mult, nil
}
