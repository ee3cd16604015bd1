// Package options holds small validation helpers shared by the command-line
// and MCP front ends.
package options

import (
	"fmt"
	"strings"
)

// Source names one way of supplying a document and whether it was used.
type Source struct {
	Name string
	Set  bool
}

// ExactlyOne reports an error unless exactly one of sources is set. The error
// message lists every source name so callers can surface it directly.
func ExactlyOne(sources ...Source) error {
	names := make([]string, 0, len(sources))
	var set []string
	for _, s := range sources {
		names = append(names, s.Name)
		if s.Set {
			set = append(set, s.Name)
		}
	}

	switch len(set) {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("exactly one of %s must be provided (got none)", joinNames(names))
	default:
		return fmt.Errorf("exactly one of %s must be provided (got %s)", joinNames(names), strings.Join(set, " and "))
	}
}

// joinNames renders names as "a", "a or b", or "a, b, or c".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return "<nothing>"
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
}
