// Package resolver loads YAML/JSON documents and dereferences the $ref
// pointers inside them.
//
// A [Resolver] owns two caches that live as long as it does: a document
// cache keyed by [Location] so each file or URL is read once, and a subtree
// cache keyed by location and pointer so repeated references skip traversal.
// Cached values are shared and must be treated as read-only.
//
//	r, err := resolver.New(resolver.WithLogger(resolver.NewSlogAdapter(nil)))
//	if err != nil {
//		return err
//	}
//	doc, err := r.ExpandFile("asyncapi.yaml")
//
// A Resolver is safe for concurrent use.
package resolver

import (
	"strings"
	"sync"
	"time"

	"github.com/G-USI/wirecrab/ast"
	"github.com/G-USI/wirecrab/pointer"
	"github.com/G-USI/wirecrab/wcerrors"
	"golang.org/x/sync/singleflight"
)

// DocumentRef addresses a value inside a document.
type DocumentRef struct {
	Location Location
	Address  pointer.Address
}

// String returns the reference in "<location>#/<pointer>" form.
func (d DocumentRef) String() string {
	return d.Location.String() + d.Address.String()
}

// refKey is the subtree cache key. The pointer is kept in canonical text form
// so the key stays comparable.
type refKey struct {
	loc Location
	ptr string
}

// Resolver resolves references and expands documents, caching every
// document it loads and every subtree it reaches.
type Resolver struct {
	cfg   *config
	log   Logger
	fetch Fetcher

	// loads collapses concurrent loads of one location into a single read.
	loads singleflight.Group

	mu       sync.Mutex
	docs     map[Location]ast.Value
	subtrees map[refKey]ast.Value
	// modTimes holds the mtime of each local file at the time it was read.
	modTimes map[string]time.Time
	stats    Stats
}

// New creates a Resolver with empty caches.
func New(opts ...Option) (*Resolver, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}
	fetch := cfg.fetcher
	if fetch == nil {
		fetch = NewHTTPFetcher(cfg.httpClient, cfg.userAgent, cfg.maxFileSize)
	}
	return &Resolver{
		cfg:      cfg,
		log:      cfg.logger,
		fetch:    fetch,
		docs:     make(map[Location]ast.Value),
		subtrees: make(map[refKey]ast.Value),
		modTimes: make(map[string]time.Time),
	}, nil
}

// Resolve returns the value ref points to. A cached subtree is returned
// without I/O or traversal; otherwise the document is taken from the
// document cache (loading it first if needed), traversed, and the result
// cached under ref.
func (r *Resolver) Resolve(ref DocumentRef) (ast.Value, error) {
	key := refKey{loc: ref.Location, ptr: ref.Address.String()}

	r.mu.Lock()
	if v, ok := r.subtrees[key]; ok {
		r.stats.SubtreeCacheHits++
		r.mu.Unlock()
		return v, nil
	}
	r.stats.SubtreeCacheMisses++
	r.mu.Unlock()

	doc, err := r.Document(ref.Location)
	if err != nil {
		return nil, err
	}
	v, err := Traverse(doc, ref.Address)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.subtrees[key]; ok {
		return existing, nil
	}
	r.subtrees[key] = v
	return v, nil
}

// ResolveRef resolves a raw reference string of the form
// "[location]#[pointer]" relative to currentFile.
//
// An empty location means currentFile itself. A relative location is taken
// relative to currentFile's directory (or URL). An empty pointer, a bare "#",
// or a ref with no "#" at all addresses the whole target document.
func (r *Resolver) ResolveRef(currentFile, ref string) (ast.Value, error) {
	target, err := r.refTarget(currentFile, ref)
	if err != nil {
		return nil, err
	}
	return r.Resolve(target)
}

// refTarget splits ref into the document it names and the address inside it.
func (r *Resolver) refTarget(currentFile, ref string) (DocumentRef, error) {
	if ref == "" {
		return DocumentRef{}, &wcerrors.ReferenceError{Base: currentFile, Message: "empty reference"}
	}

	locPart, fragment, _ := strings.Cut(ref, "#")
	if locPart == "" && currentFile == "" {
		return DocumentRef{}, &wcerrors.ReferenceError{Ref: ref, Message: "local reference without a current document"}
	}

	var loc Location
	switch {
	case currentFile == "":
		loc = ParseLocation(locPart)
	case locPart == "":
		loc = ParseLocation(currentFile)
	default:
		loc = ParseLocation(currentFile).Join(locPart)
	}

	addr := pointer.Root()
	if fragment != "" {
		var err error
		addr, err = pointer.Parse("#" + fragment)
		if err != nil {
			return DocumentRef{}, err
		}
	}
	return DocumentRef{Location: loc, Address: addr}, nil
}

// Document returns the parsed document at loc, loading it on first use.
// Concurrent first uses of one location share a single load.
func (r *Resolver) Document(loc Location) (ast.Value, error) {
	r.mu.Lock()
	if doc, ok := r.docs[loc]; ok {
		r.stats.DocumentCacheHits++
		r.mu.Unlock()
		return doc, nil
	}
	r.mu.Unlock()

	v, err, _ := r.loads.Do(loc.cacheKey(), func() (any, error) {
		r.mu.Lock()
		if doc, ok := r.docs[loc]; ok {
			r.mu.Unlock()
			return doc, nil
		}
		r.mu.Unlock()

		doc, err := r.load(loc)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if existing, ok := r.docs[loc]; ok {
			return existing, nil
		}
		r.docs[loc] = doc
		r.stats.DocumentsLoaded++
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(ast.Value), nil
}

// AddDocument seeds the document cache with doc under loc, as if it had been
// loaded from there. It reports false and leaves the cache unchanged when loc
// is already cached.
func (r *Resolver) AddDocument(loc Location, doc ast.Value) bool {
	if doc == nil {
		doc = ast.Null{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[loc]; ok {
		return false
	}
	r.docs[loc] = doc
	return true
}

// Stats returns a snapshot of cache activity.
func (r *Resolver) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stats
	s.CachedDocuments = len(r.docs)
	s.CachedSubtrees = len(r.subtrees)
	return s
}

func (r *Resolver) countExpanded() {
	r.mu.Lock()
	r.stats.RefsExpanded++
	r.mu.Unlock()
}
