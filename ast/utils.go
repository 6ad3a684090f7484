// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"fmt"
	"slices"
	"sort"
)

// Path traverses a sequential path through the structure of a value starting
// at v, where path elements are either strings (denoting object keys) or
// integers (denoting offsets into arrays).  If the path is valid, the element
// reached is returned. In case of error, the input v is returned along with
// the error.
//
// Negative array indices count backward from the end of the array (-1 is
// last, -2 second last, etc.).
func Path(v Value, path ...any) (Value, error) {
	cur := v
	for _, elt := range path {
		switch t := elt.(type) {
		case string:
			o, ok := cur.(*Object)
			if !ok {
				return v, fmt.Errorf("cannot traverse %T with %q", cur, elt)
			}
			next, ok := o.Get(t)
			if !ok {
				return v, fmt.Errorf("key %q not found", t)
			}
			cur = next
		case int:
			a, ok := cur.(*Array)
			if !ok {
				return v, fmt.Errorf("cannot traverse %T with %v", cur, elt)
			}
			i, ok := fixArrayBound(len(a.Values), t)
			if !ok {
				return v, fmt.Errorf("array index %d out of bounds (n=%d)", i, len(a.Values))
			}
			cur = a.Values[i]
		default:
			return nil, fmt.Errorf("invalid path element %T", elt)
		}
	}
	return cur, nil
}

func fixArrayBound(n, i int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}

// ToValue converts a Go value into a Value. The input must be nil, a bool,
// an integer, a float, a string, a Value, a slice of supported values, or a
// map from strings to supported values. Map keys are added in sorted order.
// ToValue panics if v does not have one of those types.
func ToValue(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null{}
	case Value:
		return t
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float64:
		return Float(t)
	case string:
		return String(t)
	case []any:
		a := &Array{Values: make([]Value, len(t))}
		for i, elt := range t {
			a.Values[i] = ToValue(elt)
		}
		return a
	case map[string]any:
		keys := make([]string, 0, len(t))
		for key := range t {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		o := new(Object)
		for _, key := range keys {
			o.Set(key, ToValue(t[key]))
		}
		return o
	default:
		panic(fmt.Sprintf("unsupported value type %T", v))
	}
}

// Equal reports whether a and b are structurally equal. Objects are equal if
// they have the same keys with equal values, regardless of member order.
// Integers and floating-point numbers are never equal to each other.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch t := a.(type) {
	case *Array:
		u, ok := b.(*Array)
		return ok && slices.EqualFunc(t.Values, u.Values, Equal)
	case *Object:
		u, ok := b.(*Object)
		if !ok || t.Len() != u.Len() {
			return false
		}
		for _, m := range t.Members {
			w, ok := u.Get(m.Key)
			if !ok || !Equal(m.Value, w) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
