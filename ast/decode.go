package ast

import (
	"fmt"
	"os"

	"github.com/G-USI/wirecrab/wcerrors"
	"go.yaml.in/yaml/v4"
)

// Parse decodes YAML or JSON text into a Value. JSON is accepted because it
// is a subset of YAML. Only the first document of a multi-document stream is
// read; empty input decodes to Null.
//
// Mapping keys that are not strings (e.g. 200 in a responses object) are
// kept as their source text. A key repeated within one mapping is an error.
func Parse(data []byte) (Value, error) {
	return ParseSource("", data)
}

// ParseSource is like Parse but records source (a path or URL) in any
// *wcerrors.ParseError it returns.
func ParseSource(source string, data []byte) (Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &wcerrors.ParseError{Path: source, Cause: err}
	}
	d := &decoder{
		source:  source,
		aliases: make(map[*yaml.Node]Value),
		sizes:   make(map[*yaml.Node]int),
		active:  make(map[*yaml.Node]bool),
	}
	return d.decode(&root)
}

// ParseFile reads and decodes the file at path.
func ParseFile(path string) (Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &wcerrors.IOError{Path: path, Cause: err}
	}
	return ParseSource(path, data)
}

type decoder struct {
	source string
	// aliases memoizes anchored nodes so repeated aliases share one Value.
	aliases map[*yaml.Node]Value
	// sizes records how many nodes an anchored node stands for once every
	// alias inside it is expanded.
	sizes map[*yaml.Node]int
	// active holds anchored nodes currently being decoded, to reject
	// self-referencing aliases.
	active map[*yaml.Node]bool

	// expandedNodes counts the document as if every alias were copied in
	// place, which is what Expand and the encoders walk. expandedAliases is
	// the share of those nodes produced by aliases.
	expandedNodes   int
	expandedAliases int
}

// allowedAliasRatio follows yaml's own rule: small documents may be almost
// entirely aliases, and the permitted share shrinks linearly to 10% between
// 400k and 4M expanded nodes.
func allowedAliasRatio(nodes int) float64 {
	switch {
	case nodes <= 400_000:
		return 0.99
	case nodes >= 4_000_000:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(nodes-400_000)/3_600_000)
	}
}

func (d *decoder) checkAliasing() error {
	if d.expandedAliases > 100 && d.expandedNodes > 1000 && float64(d.expandedAliases)/float64(d.expandedNodes) > allowedAliasRatio(d.expandedNodes) {
		return &wcerrors.ResourceLimitError{
			ResourceType: "alias_expansion",
			Actual:       int64(d.expandedNodes),
			Message:      "document contains excessive aliasing",
		}
	}
	return nil
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...any) error {
	return &wcerrors.ParseError{
		Path:    d.source,
		Line:    n.Line,
		Column:  n.Column,
		Message: fmt.Sprintf(format, args...),
	}
}

func (d *decoder) decode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case 0:
		// Empty input yields a zero node.
		return Null{}, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null{}, nil
		}
		return d.decode(n.Content[0])
	case yaml.AliasNode:
		return d.decodeAlias(n)
	}
	d.expandedNodes++
	switch n.Kind {
	case yaml.MappingNode:
		return d.decodeAnchored(n, d.decodeMapping)
	case yaml.SequenceNode:
		return d.decodeAnchored(n, d.decodeSequence)
	case yaml.ScalarNode:
		return d.decodeScalar(n)
	default:
		return nil, d.errorf(n, "unsupported node kind %v", n.Kind)
	}
}

func (d *decoder) decodeAnchored(n *yaml.Node, fn func(*yaml.Node) (Value, error)) (Value, error) {
	if n.Anchor == "" {
		return fn(n)
	}
	if v, ok := d.aliases[n]; ok {
		return v, nil
	}
	start := d.expandedNodes
	d.active[n] = true
	v, err := fn(n)
	delete(d.active, n)
	if err != nil {
		return nil, err
	}
	d.aliases[n] = v
	// The node itself was counted by decode before fn ran.
	d.sizes[n] = d.expandedNodes - start + 1
	return v, nil
}

func (d *decoder) decodeAlias(n *yaml.Node) (Value, error) {
	target := n.Alias
	if target == nil {
		return nil, d.errorf(n, "unknown alias %q", n.Value)
	}
	if d.active[target] {
		return nil, d.errorf(n, "alias %q refers to an enclosing node", n.Value)
	}
	v, ok := d.aliases[target]
	if !ok {
		var err error
		if v, err = d.decode(target); err != nil {
			return nil, err
		}
	}
	size := d.sizes[target]
	d.expandedNodes += 1 + size
	d.expandedAliases += size
	if err := d.checkAliasing(); err != nil {
		return nil, err
	}
	return v, nil
}

func (d *decoder) decodeSequence(n *yaml.Node) (Value, error) {
	arr := make(Array, 0, len(n.Content))
	for _, child := range n.Content {
		v, err := d.decode(child)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	return arr, nil
}

func (d *decoder) decodeMapping(n *yaml.Node) (Value, error) {
	obj := &Object{
		members: make([]Member, 0, len(n.Content)/2),
		index:   make(map[string]int, len(n.Content)/2),
	}
	var merged []*Object
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.ShortTag() == "!!merge" {
			srcs, err := d.mergeSources(valNode)
			if err != nil {
				return nil, err
			}
			merged = append(merged, srcs...)
			continue
		}

		key, err := d.keyString(keyNode)
		if err != nil {
			return nil, err
		}
		if obj.Has(key) {
			return nil, d.errorf(keyNode, "mapping key %q already defined", key)
		}
		v, err := d.decode(valNode)
		if err != nil {
			return nil, err
		}
		obj.set(key, v)
	}

	// Explicit keys win over merged ones; earlier merge sources win over later.
	for _, src := range merged {
		for k, v := range src.All() {
			if !obj.Has(k) {
				obj.set(k, v)
			}
		}
	}
	return obj, nil
}

func (d *decoder) mergeSources(n *yaml.Node) ([]*Object, error) {
	v, err := d.decode(n)
	if err != nil {
		return nil, err
	}
	switch tv := v.(type) {
	case *Object:
		return []*Object{tv}, nil
	case Array:
		out := make([]*Object, 0, len(tv))
		for _, item := range tv {
			obj, ok := item.(*Object)
			if !ok {
				return nil, d.errorf(n, "merge sequence must contain only mappings, found %s", KindOf(item))
			}
			out = append(out, obj)
		}
		return out, nil
	default:
		return nil, d.errorf(n, "merge value must be a mapping or sequence of mappings, found %s", KindOf(v))
	}
}

func (d *decoder) keyString(n *yaml.Node) (string, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return "", d.errorf(n, "mapping keys must be scalars")
	}
	return n.Value, nil
}

func (d *decoder) decodeScalar(n *yaml.Node) (Value, error) {
	var v Value
	switch n.ShortTag() {
	case "!!null":
		v = Null{}
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, d.errorf(n, "invalid bool %q", n.Value)
		}
		v = Bool(b)
	case "!!int", "!!float":
		num, err := d.decodeNumber(n)
		if err != nil {
			return nil, err
		}
		v = num
	default:
		// !!str, !!timestamp, !!binary and custom tags keep their text.
		v = String(n.Value)
	}
	if n.Anchor != "" {
		d.aliases[n] = v
		d.sizes[n] = 1
	}
	return v, nil
}

func (d *decoder) decodeNumber(n *yaml.Node) (Value, error) {
	var x any
	if err := n.Decode(&x); err != nil {
		return nil, d.errorf(n, "invalid number %q", n.Value)
	}
	switch num := x.(type) {
	case int:
		return Int(int64(num)), nil
	case int64:
		return Int(num), nil
	case uint64:
		return Uint(num), nil
	case float64:
		return Float(num), nil
	default:
		return nil, d.errorf(n, "invalid number %q", n.Value)
	}
}
