// Package query provides the ordered parameter set and the canonical form encoding
// used both for the request payload and as the request-signing input.
package query

import (
	"encoding/json"
	"reflect"
	"slices"
	"sort"
	"strings"
)

// Param is a single named request parameter.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered parameter set. Encoding preserves insertion order.
type Params []Param

// FromMap builds Params from a map. Keys are sorted so the result is deterministic.
func FromMap(m map[string]any) Params {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p := make(Params, 0, len(m))
	for _, k := range keys {
		p = append(p, Param{Key: k, Value: m[k]})
	}
	return p
}

// Set replaces the value of an existing key in place, or appends a new parameter.
func (p Params) Set(key string, value any) Params {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = value
			return p
		}
	}
	return append(p, Param{Key: key, Value: value})
}

// Get returns the value stored under key.
func (p Params) Get(key string) (any, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return nil, false
}

// Clone returns a shallow copy of the parameter set.
func (p Params) Clone() Params {
	return slices.Clone(p)
}

// Signable returns the parameters that take part in the request signature: scalars and
// lists of scalars. Objects and lists of objects are dropped.
func (p Params) Signable() Params {
	out := make(Params, 0, len(p))
	for _, param := range p {
		if classify(param.Value) != kindObject {
			out = append(out, param)
		}
	}
	return out
}

// Sorted returns a copy ordered by key using byte-wise comparison. The sort is stable.
func (p Params) Sorted() Params {
	out := p.Clone()
	slices.SortStableFunc(out, func(a, b Param) int {
		return strings.Compare(a.Key, b.Key)
	})
	return out
}

type kind int

const (
	kindNil kind = iota
	kindScalar
	kindList
	kindObject
)

func classify(v any) kind {
	switch v.(type) {
	case nil:
		return kindNil
	case Params:
		return kindObject
	case string, bool, json.Number:
		return kindScalar
	}

	rv, ok := indirect(reflect.ValueOf(v))
	if !ok {
		return kindNil
	}
	switch rv.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return kindScalar
	case reflect.Slice, reflect.Array:
		if isBytes(rv) {
			return kindScalar
		}
		for i := 0; i < rv.Len(); i++ {
			switch classify(rv.Index(i).Interface()) {
			case kindList, kindObject:
				return kindObject
			}
		}
		return kindList
	default:
		return kindObject
	}
}

// indirect follows pointers and interfaces. It reports false for nil.
func indirect(rv reflect.Value) (reflect.Value, bool) {
	if !rv.IsValid() {
		return rv, false
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return rv, false
		}
		rv = rv.Elem()
	}
	return rv, true
}

func isBytes(rv reflect.Value) bool {
	return rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8
}
