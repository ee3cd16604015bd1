package wcerrors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinels for errors.Is. Each error type below matches exactly one of
// these, except TraversalError and ReferenceError which also match a more
// specific sentinel.
var (
	ErrInvalidPointer = errors.New("invalid pointer")
	ErrIO             = errors.New("i/o error")
	ErrParse          = errors.New("parse error")
	ErrTransport      = errors.New("transport error")

	ErrTraversal        = errors.New("traversal error")
	ErrKeyNotFound      = errors.New("key not found")
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	ErrInvalidIndex     = errors.New("invalid index")
	ErrNotTraversable   = errors.New("not traversable")

	ErrReference         = errors.New("reference error")
	ErrCircularReference = errors.New("circular reference")

	ErrResourceLimit = errors.New("resource limit exceeded")
	ErrConfig        = errors.New("configuration error")
)

// message builds an error string from a fixed head and optional parts.
// Empty parts are skipped.
type message struct {
	b strings.Builder
}

func newMessage(head string) *message {
	m := &message{}
	m.b.WriteString(head)
	return m
}

func (m *message) part(prefix, s string) *message {
	if s != "" {
		m.b.WriteString(prefix)
		m.b.WriteString(s)
	}
	return m
}

func (m *message) detail(s string) *message { return m.part(": ", s) }

func (m *message) cause(err error) *message {
	if err != nil {
		m.detail(err.Error())
	}
	return m
}

func (m *message) String() string { return m.b.String() }

// PointerError is a JSON Pointer that does not follow RFC 6901 syntax.
type PointerError struct {
	Pointer string
	Message string // which rule was broken
}

func (e *PointerError) Error() string {
	return newMessage("invalid pointer " + strconv.Quote(e.Pointer)).detail(e.Message).String()
}

func (e *PointerError) Is(target error) bool { return target == ErrInvalidPointer }

// IOError is a local document that could not be read.
type IOError struct {
	Path  string
	Cause error
}

func (e *IOError) Error() string {
	return newMessage("failed to read file").part(" ", e.Path).cause(e.Cause).String()
}

func (e *IOError) Unwrap() error        { return e.Cause }
func (e *IOError) Is(target error) bool { return target == ErrIO }

// ParseError is YAML or JSON text that could not be decoded into a value
// tree. Path names the file, URL or other source; Line and Column are 1-based
// and zero when unknown.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	m := newMessage("parse error").part(" in ", e.Path)
	if e.Line > 0 {
		m.part(" at line ", strconv.Itoa(e.Line))
		if e.Column > 0 {
			m.part(", column ", strconv.Itoa(e.Column))
		}
	}
	return m.detail(e.Message).cause(e.Cause).String()
}

func (e *ParseError) Unwrap() error        { return e.Cause }
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// TransportError is a remote document that could not be fetched. StatusCode
// is zero when no response arrived.
type TransportError struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *TransportError) Error() string {
	m := newMessage("HTTP request failed").part(" for ", e.URL)
	if e.StatusCode > 0 {
		m.part(" ", fmt.Sprintf("(status %d)", e.StatusCode))
	}
	return m.detail(e.Message).cause(e.Cause).String()
}

func (e *TransportError) Unwrap() error        { return e.Cause }
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// TraversalKind identifies why a pointer could not be followed.
type TraversalKind int

const (
	// KeyNotFound means an object had no member with the segment's name.
	KeyNotFound TraversalKind = iota + 1
	// IndexOutOfBounds means an array index was >= the array length.
	IndexOutOfBounds
	// InvalidIndex means an array was addressed with a non-numeric segment.
	InvalidIndex
	// NotTraversable means a scalar was reached before the pointer ended.
	NotTraversable
)

var traversalKinds = map[TraversalKind]struct {
	name     string
	sentinel error
}{
	KeyNotFound:      {"key not found", ErrKeyNotFound},
	IndexOutOfBounds: {"index out of bounds", ErrIndexOutOfBounds},
	InvalidIndex:     {"invalid index", ErrInvalidIndex},
	NotTraversable:   {"cannot traverse into scalar", ErrNotTraversable},
}

func (k TraversalKind) String() string {
	if info, ok := traversalKinds[k]; ok {
		return info.name
	}
	return "unknown traversal error"
}

// TraversalError is a well-formed pointer that does not lead anywhere in a
// document. Segment is the unescaped segment that failed; Message carries
// extra context such as the array length.
type TraversalError struct {
	Kind    TraversalKind
	Pointer string
	Segment string
	Message string
}

func (e *TraversalError) Error() string {
	m := newMessage(e.Kind.String())
	if e.Segment != "" {
		m.detail(strconv.Quote(e.Segment))
	}
	m.part(" in ", e.Pointer)
	if e.Message != "" {
		m.part(" ", "("+e.Message+")")
	}
	return m.String()
}

// Is matches ErrTraversal and the sentinel of e.Kind.
func (e *TraversalError) Is(target error) bool {
	if target == ErrTraversal {
		return true
	}
	info, ok := traversalKinds[e.Kind]
	return ok && target == info.sentinel
}

// ReferenceError is a $ref that could not be resolved. Base is the document
// the reference was read from. A failed load or traversal behind the
// reference is kept as Cause.
type ReferenceError struct {
	Ref        string
	Base       string
	IsCircular bool
	Message    string
	Cause      error
}

func (e *ReferenceError) Error() string {
	head := "reference error"
	if e.IsCircular {
		head = "circular reference"
	}
	m := newMessage(head).detail(e.Ref)
	if e.Base != "" {
		m.part(" ", "(in "+e.Base+")")
	}
	return m.detail(e.Message).cause(e.Cause).String()
}

func (e *ReferenceError) Unwrap() error { return e.Cause }

// Is matches ErrReference, and ErrCircularReference when IsCircular is set.
func (e *ReferenceError) Is(target error) bool {
	return target == ErrReference || (target == ErrCircularReference && e.IsCircular)
}

// ResourceLimitError reports that a configured bound was exceeded.
// ResourceType is "ref_depth", "file_size" or "alias_expansion"; Actual is
// zero when unknown.
type ResourceLimitError struct {
	ResourceType string
	Limit        int64
	Actual       int64
	Message      string
}

func (e *ResourceLimitError) Error() string {
	m := newMessage("resource limit exceeded").detail(e.ResourceType)
	if e.Limit > 0 {
		bounds := fmt.Sprintf("limit: %d", e.Limit)
		if e.Actual > 0 {
			bounds += fmt.Sprintf(", actual: %d", e.Actual)
		}
		m.part(" ", "("+bounds+")")
	}
	return m.detail(e.Message).String()
}

func (e *ResourceLimitError) Is(target error) bool { return target == ErrResourceLimit }

// ConfigError is an option given an unusable value.
type ConfigError struct {
	Option  string
	Value   any
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	m := newMessage("configuration error").part(" for ", e.Option)
	if e.Value != nil {
		m.part(" ", fmt.Sprintf("(value: %v)", e.Value))
	}
	return m.detail(e.Message).cause(e.Cause).String()
}

func (e *ConfigError) Unwrap() error        { return e.Cause }
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }
