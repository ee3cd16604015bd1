// Package wirecrab dereferences $ref pointers in YAML and JSON specification documents.
//
// AsyncAPI and OpenAPI documents split reusable definitions across components
// and external files and link them together with JSON Reference objects:
//
//	payload:
//	  $ref: "./schemas.yaml#/components/schemas/Light"
//
// wirecrab loads the root document, follows every $ref (local, file, or
// HTTP/HTTPS), and produces one self-contained tree with each reference
// replaced by the value it points to. Circular references are reported as
// errors rather than expanded.
//
// # Packages
//
//   - ast: the generic tree value (object, array, string, number, bool, null)
//     with YAML/JSON decoding and order-preserving encoding
//   - pointer: RFC 6901 JSON Pointer parsing and escaping
//   - resolver: document locations, loading and caching, pointer traversal,
//     single-reference resolution, and recursive expansion
//   - wcerrors: structured error types for errors.Is and errors.As
//
// # Quick Start
//
//	doc, err := resolver.DereferenceFile("asyncapi.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	out, err := ast.MarshalYAML(doc)
//
// For repeated lookups against the same set of documents, create a
// [resolver.Resolver] once and reuse it so loaded documents and resolved
// subtrees are cached:
//
//	r, err := resolver.New(resolver.WithLogger(resolver.NewSlogAdapter(nil)))
//	if err != nil {
//		log.Fatal(err)
//	}
//	light, err := r.ResolveRef("asyncapi.yaml", "#/components/schemas/Light")
//
// # Command Line
//
// The wirecrab command wraps the library:
//
//	wirecrab dereference asyncapi.yaml
//	wirecrab resolve asyncapi.yaml '#/channels/lightMeasured'
//	wirecrab mcp
package wirecrab
