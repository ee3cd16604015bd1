package ast

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v4"
)

// MarshalJSON encodes v as compact JSON with object members in insertion
// order. Non-finite numbers (.inf, .nan) cannot be represented and return an
// error.
func MarshalJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalJSONIndent is like MarshalJSON but indents the output.
func MarshalJSONIndent(v Value, prefix, indent string) ([]byte, error) {
	data, err := MarshalJSON(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalYAML encodes v as a YAML document with object members in insertion order.
func MarshalYAML(v Value) ([]byte, error) {
	return yaml.Marshal(ToNode(v))
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch tv := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case Bool:
		if tv {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		if !tv.IsFinite() {
			return fmt.Errorf("ast: cannot encode non-finite number %s as JSON", tv)
		}
		buf.WriteString(tv.String())
	case String:
		return writeJSONString(buf, string(tv))
	case Array:
		buf.WriteByte('[')
		for i, item := range tv {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *Object:
		buf.WriteByte('{')
		first := true
		for k, item := range tv.All() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := writeJSONString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("ast: cannot encode %T", v)
	}
	return nil
}

// writeJSONString writes s as a JSON string without HTML escaping, so
// descriptions containing markup stay readable.
func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
	return nil
}

// ToNode converts v into a yaml.Node tree, preserving object member order.
func ToNode(v Value) *yaml.Node {
	switch tv := v.(type) {
	case nil, Null:
		return scalarNode("!!null", "null")
	case Bool:
		if tv {
			return scalarNode("!!bool", "true")
		}
		return scalarNode("!!bool", "false")
	case Number:
		if _, ok := tv.Int64(); ok {
			return scalarNode("!!int", tv.String())
		}
		return scalarNode("!!float", yamlFloat(tv))
	case String:
		return scalarNode("!!str", string(tv))
	case Array:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: make([]*yaml.Node, 0, len(tv))}
		for _, item := range tv {
			n.Content = append(n.Content, ToNode(item))
		}
		return n
	case *Object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: make([]*yaml.Node, 0, 2*tv.Len())}
		for k, item := range tv.All() {
			n.Content = append(n.Content, scalarNode("!!str", k), ToNode(item))
		}
		return n
	default:
		return scalarNode("!!null", "null")
	}
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

// yamlFloat spells non-finite numbers the YAML way.
func yamlFloat(n Number) string {
	switch s := n.String(); s {
	case "+Inf":
		return ".inf"
	case "-Inf":
		return "-.inf"
	case "NaN":
		return ".nan"
	default:
		return s
	}
}
