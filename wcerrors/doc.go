// Package wcerrors provides structured error types for wirecrab.
//
// Import path: github.com/G-USI/wirecrab/wcerrors
//
// Every failure surfaced by the pointer and resolver packages is one of the
// types below, so callers can branch with [errors.Is] and [errors.As] instead
// of matching message text.
//
// # Error Types
//
//   - [PointerError]: malformed JSON Pointer (missing "#/", bad "~" escape, empty segment)
//   - [IOError]: a referenced file could not be read
//   - [ParseError]: YAML/JSON text could not be decoded
//   - [TransportError]: an HTTP(S) fetch failed or returned a non-success status
//   - [TraversalError]: a pointer could not be followed (see [TraversalKind])
//   - [ReferenceError]: a $ref could not be resolved, or is circular
//   - [ResourceLimitError]: a size or depth limit was exceeded
//   - [ConfigError]: an invalid option was supplied
//
// # Sentinel Errors
//
//   - [ErrInvalidPointer], [ErrIO], [ErrParse], [ErrTransport]
//   - [ErrTraversal] plus [ErrKeyNotFound], [ErrIndexOutOfBounds],
//     [ErrInvalidIndex], [ErrNotTraversable] for the specific kind
//   - [ErrReference] and [ErrCircularReference]
//   - [ErrResourceLimit], [ErrConfig]
//
// # Error Chaining
//
// The resolver wraps the failure that stopped an expansion in a
// [ReferenceError] naming the $ref being expanded. The original error stays
// reachable through Unwrap:
//
//	_, err := resolver.DereferenceFile("asyncapi.yaml")
//	if errors.Is(err, wcerrors.ErrKeyNotFound) {
//	    var refErr *wcerrors.ReferenceError
//	    if errors.As(err, &refErr) {
//	        fmt.Printf("dangling reference: %s\n", refErr.Ref)
//	    }
//	}
package wcerrors
