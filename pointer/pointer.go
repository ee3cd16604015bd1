// Package pointer implements the JSON Pointer fragments used by $ref values.
//
// A pointer is written as a URI fragment starting with "#/", followed by
// "/"-separated segments in which "~1" stands for "/" and "~0" for "~"
// (RFC 6901). "#/" alone addresses the document root.
//
//	addr, err := pointer.Parse("#/components/schemas/a~1b")
//	// addr.Segments() == []string{"components", "schemas", "a/b"}
package pointer

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/G-USI/wirecrab/wcerrors"
)

// Prefix is the required start of every pointer accepted by Parse.
const Prefix = "#/"

// Address is a parsed JSON Pointer: an ordered list of unescaped segments.
// The zero value is the root pointer. Addresses are immutable.
type Address struct {
	tokens []string
}

// Root returns the pointer to the whole document.
func Root() Address {
	return Address{}
}

// Parse parses a pointer of the form "#/seg/seg...".
//
// Parse fails with a *wcerrors.PointerError when the text does not start with
// "#/", when any segment is empty (other than the bare root "#/"), or when a
// "~" is not followed by "0" or "1".
func Parse(text string) (Address, error) {
	if !strings.HasPrefix(text, Prefix) {
		return Address{}, &wcerrors.PointerError{Pointer: text, Message: `must start with "#/"`}
	}
	rest := text[len(Prefix):]
	if rest == "" {
		return Root(), nil
	}

	parts := strings.Split(rest, "/")
	tokens := make([]string, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			return Address{}, &wcerrors.PointerError{
				Pointer: text,
				Message: fmt.Sprintf("empty segment at position %d", i+1),
			}
		}
		tok, ok := unescape(part)
		if !ok {
			return Address{}, &wcerrors.PointerError{
				Pointer: text,
				Message: fmt.Sprintf("invalid escape in segment %q", part),
			}
		}
		tokens = append(tokens, tok)
	}
	return Address{tokens: tokens}, nil
}

// MustParse is like Parse but panics on error. Intended for constants in tests
// and package-level variables.
func MustParse(text string) Address {
	addr, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return addr
}

// FromSegments builds an address from already unescaped segments.
func FromSegments(segments ...string) Address {
	if len(segments) == 0 {
		return Root()
	}
	return Address{tokens: slices.Clone(segments)}
}

// Len returns the number of segments.
func (a Address) Len() int {
	return len(a.tokens)
}

// IsRoot reports whether the address has no segments.
func (a Address) IsRoot() bool {
	return len(a.tokens) == 0
}

// Tokens iterates over the unescaped segments in order.
func (a Address) Tokens() iter.Seq[string] {
	return slices.Values(a.tokens)
}

// Segments returns a copy of the unescaped segments.
func (a Address) Segments() []string {
	return slices.Clone(a.tokens)
}

// Child returns a new address with segment appended.
func (a Address) Child(segment string) Address {
	tokens := make([]string, len(a.tokens), len(a.tokens)+1)
	copy(tokens, a.tokens)
	return Address{tokens: append(tokens, segment)}
}

// Prefix returns the address made of the first n segments.
func (a Address) Prefix(n int) Address {
	if n <= 0 {
		return Root()
	}
	if n >= len(a.tokens) {
		return a
	}
	return Address{tokens: a.tokens[:n:n]}
}

// String returns the canonical escaped form, e.g. "#/a~1b/0".
func (a Address) String() string {
	if len(a.tokens) == 0 {
		return Prefix
	}
	var b strings.Builder
	b.WriteString("#")
	for _, tok := range a.tokens {
		b.WriteByte('/')
		b.WriteString(EscapeToken(tok))
	}
	return b.String()
}

// Equal reports whether both addresses have the same segments.
func (a Address) Equal(b Address) bool {
	return slices.Equal(a.tokens, b.tokens)
}

// Compare orders addresses segment by segment; a prefix sorts first.
func (a Address) Compare(b Address) int {
	return slices.Compare(a.tokens, b.tokens)
}

var escaper = strings.NewReplacer("~", "~0", "/", "~1")

// EscapeToken escapes a raw segment for use inside a pointer.
func EscapeToken(segment string) string {
	return escaper.Replace(segment)
}

// UnescapeToken reverses EscapeToken. It fails with a *wcerrors.PointerError
// when a "~" is not followed by "0" or "1".
func UnescapeToken(token string) (string, error) {
	s, ok := unescape(token)
	if !ok {
		return "", &wcerrors.PointerError{Pointer: token, Message: `"~" must be followed by "0" or "1"`}
	}
	return s, nil
}

// unescape decodes ~0 and ~1 in a single left-to-right pass, so "~01"
// becomes "~1" rather than "/".
func unescape(token string) (string, bool) {
	if !strings.Contains(token, "~") {
		return token, true
	}
	var b strings.Builder
	b.Grow(len(token))
	for i := 0; i < len(token); i++ {
		c := token[i]
		if c != '~' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(token) {
			return "", false
		}
		switch token[i+1] {
		case '0':
			b.WriteByte('~')
		case '1':
			b.WriteByte('/')
		default:
			return "", false
		}
		i++
	}
	return b.String(), true
}
