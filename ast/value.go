// Package ast provides the generic tree value that YAML and JSON documents
// decode into.
//
// A [Value] is one of a closed set of variants:
//
//   - [Null]
//   - [Bool]
//   - [Number]
//   - [String]
//   - [Array]
//   - [*Object] (members keep their source order)
//
// Code that walks a tree uses a type switch over these variants. Values are
// treated as immutable once built: documents are decoded once and then shared
// read-only across every lookup against them.
package ast

import (
	"iter"
	"math"
	"strconv"
)

// Kind identifies the variant of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a node of a decoded document.
type Value interface {
	// Kind reports which variant the value is.
	Kind() Kind

	isValue()
}

// Null is the null value.
type Null struct{}

// Bool is a boolean value.
type Bool bool

// String is a string value.
type String string

// Array is an ordered sequence of values.
type Array []Value

// Number is a numeric value kept in canonical decimal form so integers
// beyond float64 precision survive a round trip.
type Number struct {
	literal string
}

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// Object is a mapping from string keys to values that remembers insertion order.
type Object struct {
	members []Member
	index   map[string]int
}

func (Null) Kind() Kind    { return KindNull }
func (Bool) Kind() Kind    { return KindBool }
func (Number) Kind() Kind  { return KindNumber }
func (String) Kind() Kind  { return KindString }
func (Array) Kind() Kind   { return KindArray }
func (*Object) Kind() Kind { return KindObject }

func (Null) isValue()    {}
func (Bool) isValue()    {}
func (Number) isValue()  {}
func (String) isValue()  {}
func (Array) isValue()   {}
func (*Object) isValue() {}

// Int returns an integer Number.
func Int(n int64) Number {
	return Number{literal: strconv.FormatInt(n, 10)}
}

// Uint returns an unsigned integer Number.
func Uint(n uint64) Number {
	return Number{literal: strconv.FormatUint(n, 10)}
}

// Float returns a floating point Number. Whole values print without a
// fraction, so Float(1) and Int(1) are equal.
func Float(f float64) Number {
	return Number{literal: strconv.FormatFloat(f, 'g', -1, 64)}
}

// String returns the canonical decimal text of the number.
func (n Number) String() string {
	if n.literal == "" {
		return "0"
	}
	return n.literal
}

// Int64 returns the number as an int64 when it is an integer in range.
func (n Number) Int64() (int64, bool) {
	i, err := strconv.ParseInt(n.String(), 10, 64)
	return i, err == nil
}

// Float64 returns the number as a float64.
func (n Number) Float64() float64 {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// IsFinite reports whether the number can be represented in JSON.
func (n Number) IsFinite() bool {
	f := n.Float64()
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// NewObject builds an Object from members in order. A repeated key keeps the
// position of its first occurrence and the value of its last.
func NewObject(members ...Member) *Object {
	o := &Object{
		members: make([]Member, 0, len(members)),
		index:   make(map[string]int, len(members)),
	}
	for _, m := range members {
		o.set(m.Key, m.Value)
	}
	return o
}

func (o *Object) set(key string, v Value) {
	if i, ok := o.index[key]; ok {
		o.members[i].Value = v
		return
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, Member{Key: key, Value: v})
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.members[i].Value, true
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.Key
	}
	return keys
}

// All iterates over the members in insertion order.
func (o *Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if o == nil {
			return
		}
		for _, m := range o.members {
			if !yield(m.Key, m.Value) {
				return
			}
		}
	}
}

// KindOf returns the kind of v, treating a nil Value as null.
func KindOf(v Value) Kind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}

// Equal reports whether a and b are structurally equal. Object member order
// is not significant; array element order is. Numbers compare by their
// canonical text, so 1 and 1.0 are equal.
func Equal(a, b Value) bool {
	if KindOf(a) != KindOf(b) {
		return false
	}
	switch av := a.(type) {
	case nil, Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Number:
		return av.String() == b.(Number).String()
	case String:
		return av == b.(String)
	case Array:
		bv := b.(Array)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv := b.(*Object)
		if av.Len() != bv.Len() {
			return false
		}
		for k, v := range av.All() {
			other, ok := bv.Get(k)
			if !ok || !Equal(v, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ToAny converts v into plain Go values: map[string]any, []any, string,
// bool, nil, int64 for integers and float64 otherwise.
func ToAny(v Value) any {
	switch tv := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(tv)
	case Number:
		if i, ok := tv.Int64(); ok {
			return i
		}
		return tv.Float64()
	case String:
		return string(tv)
	case Array:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = ToAny(item)
		}
		return out
	case *Object:
		out := make(map[string]any, tv.Len())
		for k, item := range tv.All() {
			out[k] = ToAny(item)
		}
		return out
	default:
		return nil
	}
}
