package mcpserver

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/G-USI/wirecrab/ast"
	"github.com/G-USI/wirecrab/internal/options"
	"github.com/G-USI/wirecrab/resolver"
)

// inlineBase is the location inline content is registered under. It is not
// an http(s) URL, so relative references inside inline content cannot reach
// the local filesystem.
const inlineBase = "inline:content"

// specInput represents the three ways a document can be provided to a tool.
// Exactly one of File, URL, or Content must be set.
type specInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a YAML or JSON document on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"URL to fetch a YAML or JSON document from"`
	Content string `json:"content,omitempty" jsonschema:"Inline document content (JSON or YAML)"`
}

// specSession is a loaded root document with the resolver that owns its
// caches. Tools share a session across calls so repeated lookups against the
// same input hit the resolver's document and subtree caches.
type specSession struct {
	resolver *resolver.Resolver
	// base is the current-file argument for references in the root document.
	base string
	// format is "json" or "yaml", guessed from the input.
	format string

	once        sync.Once
	expanded    ast.Value
	expandedErr error
}

// dereference expands the root document once and returns the memoized result.
func (s *specSession) dereference() (ast.Value, error) {
	s.once.Do(func() {
		root, err := s.resolver.Document(resolver.ParseLocation(s.base))
		if err != nil {
			s.expandedErr = err
			return
		}
		s.expanded, s.expandedErr = s.resolver.Expand(root, s.base)
	})
	return s.expanded, s.expandedErr
}

// stale reports whether a local file the session has read changed on disk.
func (s *specSession) stale() bool {
	return s.resolver != nil && s.resolver.Stale()
}

// resolveRef resolves ref relative to the root document.
func (s *specSession) resolveRef(ref string) (ast.Value, error) {
	return s.resolver.ResolveRef(s.base, ref)
}

// detectFormat guesses whether the input is JSON or YAML from its file
// extension or, for inline content, its first non-space character.
func detectFormat(s specInput) string {
	name := s.File
	if name == "" {
		name = s.URL
	}
	if name != "" {
		if i := strings.IndexAny(name, "?#"); i >= 0 {
			name = name[:i]
		}
		if strings.EqualFold(filepath.Ext(name), ".json") {
			return "json"
		}
		return "yaml"
	}
	trimmed := strings.TrimSpace(s.Content)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return "json"
	}
	return "yaml"
}

// resolve returns the session for whichever input was provided, loading the
// root document on a cache miss.
func (s specInput) resolve(rebase bool) (*specSession, error) {
	if err := options.ExactlyOne(
		options.Source{Name: "file", Set: s.File != ""},
		options.Source{Name: "url", Set: s.URL != ""},
		options.Source{Name: "content", Set: s.Content != ""},
	); err != nil {
		return nil, err
	}

	if s.Content != "" && int64(len(s.Content)) > cfg.MaxInlineSize {
		return nil, fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set WIRECRAB_MAX_INLINE_SIZE to increase",
			len(s.Content), cfg.MaxInlineSize)
	}

	if !cfg.CacheEnabled {
		return s.newSession(rebase)
	}
	key := sessionKey(s, rebase)
	if key == "" {
		return s.newSession(rebase)
	}
	return specCache.getOrBuild(key, sessionTTL(s), func() (*specSession, error) {
		return s.newSession(rebase)
	})
}

func (s specInput) newSession(rebase bool) (*specSession, error) {
	opts := []resolver.Option{
		resolver.WithMaxRefDepth(cfg.MaxRefDepth),
		resolver.WithMaxFileSize(cfg.MaxFileSize),
		resolver.WithRebaseExternalRefs(rebase),
	}
	// Inject SSRF-safe HTTP client for URL resolution unless private IPs are allowed.
	if !cfg.AllowPrivateIPs {
		opts = append(opts, resolver.WithHTTPClient(newSafeHTTPClient()))
	}
	r, err := resolver.New(opts...)
	if err != nil {
		return nil, err
	}

	session := &specSession{resolver: r, format: detectFormat(s)}
	switch {
	case s.File != "":
		session.base = s.File
	case s.URL != "":
		session.base = s.URL
	default:
		doc, err := ast.ParseSource("content", []byte(s.Content))
		if err != nil {
			return nil, err
		}
		session.base = inlineBase
		r.AddDocument(resolver.ParseLocation(inlineBase), doc)
	}

	// Load the root now so unreadable input fails here and is not cached.
	if _, err := r.Document(resolver.ParseLocation(session.base)); err != nil {
		return nil, err
	}
	return session, nil
}
