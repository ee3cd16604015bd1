package resolver

import (
	"fmt"
	"strconv"

	"github.com/G-USI/wirecrab/ast"
	"github.com/G-USI/wirecrab/pointer"
	"github.com/G-USI/wirecrab/wcerrors"
)

// Traverse follows addr from the root of doc and returns the value it
// reaches. Object segments are keys; array segments must be base-10 unsigned
// indexes. The target may be any kind of value.
//
// Failures are *wcerrors.TraversalError values whose Kind says which rule
// stopped the walk.
func Traverse(doc ast.Value, addr pointer.Address) (ast.Value, error) {
	current := doc
	for seg := range addr.Tokens() {
		switch node := current.(type) {
		case *ast.Object:
			next, ok := node.Get(seg)
			if !ok {
				return nil, traversalError(wcerrors.KeyNotFound, addr, seg, "")
			}
			current = next

		case ast.Array:
			idx, err := strconv.ParseUint(seg, 10, 64)
			if err != nil {
				return nil, traversalError(wcerrors.InvalidIndex, addr, seg, "array index must be an unsigned integer")
			}
			if idx >= uint64(len(node)) {
				return nil, traversalError(wcerrors.IndexOutOfBounds, addr, seg, fmt.Sprintf("array length %d", len(node)))
			}
			current = node[idx]

		default:
			return nil, traversalError(wcerrors.NotTraversable, addr, seg, "found "+ast.KindOf(current).String())
		}
	}
	return current, nil
}

func traversalError(kind wcerrors.TraversalKind, addr pointer.Address, seg, msg string) error {
	return &wcerrors.TraversalError{
		Kind:    kind,
		Pointer: addr.String(),
		Segment: seg,
		Message: msg,
	}
}
