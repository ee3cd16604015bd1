package resolver

import (
	"cmp"
	"net/url"
	"path/filepath"
	"strings"
)

// LocationKind distinguishes filesystem documents from remote ones.
type LocationKind uint8

const (
	// LocationFile is a document on the local filesystem.
	LocationFile LocationKind = iota + 1
	// LocationURL is a document fetched over the network.
	LocationURL
)

// String returns "file" or "url".
func (k LocationKind) String() string {
	switch k {
	case LocationFile:
		return "file"
	case LocationURL:
		return "url"
	default:
		return "unknown"
	}
}

// Location identifies a document. It is comparable, so it can be used
// directly as a map key; two locations are equal only when both the kind and
// the path or URL match.
type Location struct {
	kind  LocationKind
	value string
}

// FileLocation returns the location of the file at path. The path is cleaned
// but not made absolute.
func FileLocation(path string) Location {
	return Location{kind: LocationFile, value: filepath.Clean(path)}
}

// URLLocation returns the location of a remote document. The URL is kept
// verbatim.
func URLLocation(rawURL string) Location {
	return Location{kind: LocationURL, value: rawURL}
}

// ParseLocation classifies raw as a URL or a file path. Absolute URLs become
// URL locations, except file:// URLs which map to their path; anything else
// is a file path. Schemes must be at least two characters long so Windows
// drive letters stay paths. No I/O is performed.
func ParseLocation(raw string) Location {
	if u, err := url.Parse(raw); err == nil && len(u.Scheme) >= 2 {
		if strings.EqualFold(u.Scheme, "file") {
			return FileLocation(filepath.FromSlash(u.Path))
		}
		return URLLocation(raw)
	}
	return FileLocation(raw)
}

// Kind reports whether the location is a file or a URL.
func (l Location) Kind() LocationKind { return l.kind }

// IsURL reports whether the location is remote.
func (l Location) IsURL() bool { return l.kind == LocationURL }

// IsZero reports whether l is the zero Location.
func (l Location) IsZero() bool { return l.kind == 0 }

// Path returns the filesystem path, or "" for URL locations.
func (l Location) Path() string {
	if l.kind != LocationFile {
		return ""
	}
	return l.value
}

// URL returns the URL, or "" for file locations.
func (l Location) URL() string {
	if l.kind != LocationURL {
		return ""
	}
	return l.value
}

// String returns the path or URL.
func (l Location) String() string { return l.value }

// Join resolves rel against l. Relative file paths are taken relative to the
// directory containing l; relative URLs follow RFC 3986 reference
// resolution. Absolute paths and URLs are returned as parsed by
// ParseLocation.
func (l Location) Join(rel string) Location {
	target := ParseLocation(rel)
	if l.IsZero() || target.IsURL() {
		return target
	}

	if l.IsURL() {
		base, err := url.Parse(l.value)
		if err != nil {
			return target
		}
		ref, err := url.Parse(filepath.ToSlash(rel))
		if err != nil {
			return target
		}
		return URLLocation(base.ResolveReference(ref).String())
	}

	if filepath.IsAbs(target.value) {
		return target
	}
	return FileLocation(filepath.Join(filepath.Dir(l.value), target.value))
}

// CompareLocations orders locations by kind, then by path or URL.
func CompareLocations(a, b Location) int {
	if c := cmp.Compare(a.kind, b.kind); c != 0 {
		return c
	}
	return strings.Compare(a.value, b.value)
}

// cacheKey returns a string key unique per location, for keyed groups that
// need strings.
func (l Location) cacheKey() string {
	return l.kind.String() + ":" + l.value
}
