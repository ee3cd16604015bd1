package resolver

import (
	"errors"
	"maps"
	"net/http"
	"os"

	"github.com/G-USI/wirecrab/ast"
	"github.com/G-USI/wirecrab/internal/httputil"
	"github.com/G-USI/wirecrab/wcerrors"
)

// Fetcher retrieves the document at url and returns its body and
// Content-Type. Errors should be *wcerrors.TransportError so callers can
// match wcerrors.ErrTransport.
type Fetcher func(url string) ([]byte, string, error)

// NewHTTPFetcher returns the Fetcher used when none is configured: a single
// GET with the given client and User-Agent, failing on any non-2xx status and
// on bodies larger than maxSize bytes.
func NewHTTPFetcher(client *http.Client, userAgent string, maxSize int64) Fetcher {
	return func(url string) ([]byte, string, error) {
		return httputil.Get(client, url, userAgent, maxSize)
	}
}

var errIsDirectory = errors.New("is a directory")

// readLocation returns the raw bytes of the document at loc.
func (r *Resolver) readLocation(loc Location) ([]byte, error) {
	if loc.IsURL() {
		data, _, err := r.fetch(loc.URL())
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > r.cfg.maxFileSize {
			return nil, &wcerrors.ResourceLimitError{
				ResourceType: "file_size",
				Limit:        r.cfg.maxFileSize,
				Actual:       int64(len(data)),
				Message:      "document " + loc.URL() + " is too large",
			}
		}
		return data, nil
	}

	path := loc.Path()
	info, err := os.Stat(path)
	if err != nil {
		return nil, &wcerrors.IOError{Path: path, Cause: err}
	}
	if info.IsDir() {
		return nil, &wcerrors.IOError{Path: path, Cause: errIsDirectory}
	}
	if info.Size() > r.cfg.maxFileSize {
		return nil, &wcerrors.ResourceLimitError{
			ResourceType: "file_size",
			Limit:        r.cfg.maxFileSize,
			Actual:       info.Size(),
			Message:      "document " + path + " is too large",
		}
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304 - reading user-referenced documents is the point
	if err != nil {
		return nil, &wcerrors.IOError{Path: path, Cause: err}
	}
	r.mu.Lock()
	r.modTimes[path] = info.ModTime()
	r.mu.Unlock()
	return data, nil
}

// Stale reports whether any local file r has read was modified or removed
// since it was read. URL documents are not checked.
func (r *Resolver) Stale() bool {
	r.mu.Lock()
	seen := maps.Clone(r.modTimes)
	r.mu.Unlock()
	for path, modTime := range seen {
		info, err := os.Stat(path)
		if err != nil || !info.ModTime().Equal(modTime) {
			return true
		}
	}
	return false
}

// load reads and parses the document at loc without consulting the cache.
func (r *Resolver) load(loc Location) (ast.Value, error) {
	data, err := r.readLocation(loc)
	if err != nil {
		return nil, err
	}
	doc, err := ast.ParseSource(loc.String(), data)
	if err != nil {
		return nil, err
	}
	r.log.Debug("loaded document", "location", loc.String(), "kind", loc.Kind().String(), "bytes", len(data))
	return doc, nil
}
