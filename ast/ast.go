// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package ast defines the value tree produced by parsing JSON text.
//
// A Value has exactly one concrete type, one of Null, Bool, Number, String,
// *Array, or *Object. The Kind method reports which variant is active.
package ast

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/creachadair/jfilter/internal/escape"
	"go4.org/mem"
)

// Kind is the discriminant tag of a Value.
type Kind byte

// Constants defining the valid Kind values.
const (
	Invalid    Kind = iota // no value
	KindNull               // null
	KindBool               // true, false
	KindNumber             // integer or floating-point number
	KindString             // string
	KindArray              // [ ... ]
	KindObject             // { ... }
)

var kindStr = [...]string{
	Invalid:    "invalid",
	KindNull:   "null",
	KindBool:   "bool",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

func (k Kind) String() string {
	if int(k) >= len(kindStr) {
		return kindStr[Invalid]
	}
	return kindStr[k]
}

// A Value is an arbitrary JSON value.
type Value interface {
	// Kind reports the variant of the value.
	Kind() Kind

	// JSON renders the value as compact JSON text.
	JSON() string
}

// KindOf reports the kind of v, or Invalid if v == nil.
func KindOf(v Value) Kind {
	if v == nil {
		return Invalid
	}
	return v.Kind()
}

// Null represents the null constant.
type Null struct{}

func (Null) Kind() Kind { return KindNull }

func (Null) JSON() string { return "null" }

// A Bool is a Boolean constant, true or false.
type Bool bool

func (Bool) Kind() Kind { return KindBool }

func (b Bool) JSON() string {
	if b {
		return "true"
	}
	return "false"
}

// A Number is a numeric value, either a 64-bit integer or a 64-bit
// floating-point value. The zero Number is the integer 0.
type Number struct {
	isFloat bool
	i       int64
	f       float64
}

// Int constructs an integer Number.
func Int(z int64) Number { return Number{i: z} }

// Float constructs a floating-point Number.
func Float(f float64) Number { return Number{isFloat: true, f: f} }

func (Number) Kind() Kind { return KindNumber }

// IsInt reports whether n is an integer.
func (n Number) IsInt() bool { return !n.isFloat }

// Int64 returns the value of an integer n. It panics if n is not an integer.
func (n Number) Int64() int64 {
	if n.isFloat {
		panic(fmt.Sprintf("number %v is not an integer", n.f))
	}
	return n.i
}

// Float64 returns the value of n as a float64. Integers are converted.
func (n Number) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

// JSON renders n as JSON text. Floating-point values always include a
// decimal point or an exponent, so that they read back as floating-point.
func (n Number) JSON() string {
	if !n.isFloat {
		return strconv.FormatInt(n.i, 10)
	}
	if math.IsInf(n.f, 0) || math.IsNaN(n.f) {
		panic(fmt.Sprintf("number %v has no JSON representation", n.f))
	}
	s := strconv.FormatFloat(n.f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func (n Number) String() string {
	if n.isFloat {
		return fmt.Sprintf("Float(%v)", n.f)
	}
	return fmt.Sprintf("Int(%d)", n.i)
}

// A String is a string value. Its contents are the decoded text, without
// quotation marks or escapes.
type String string

func (String) Kind() Kind { return KindString }

// JSON renders s as a quoted, escaped JSON string.
func (s String) JSON() string { return Quote(string(s)) }

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string {
	q := escape.Quote(mem.S(src))
	buf := make([]byte, 0, len(q)+2)
	buf = append(buf, '"')
	buf = append(buf, q...)
	return string(append(buf, '"'))
}

// An Array is a sequence of values.
type Array struct {
	Values []Value
}

func (*Array) Kind() Kind { return KindArray }

// Append adds v to the end of a.
func (a *Array) Append(v Value) { a.Values = append(a.Values, v) }

// Len reports the number of elements in a.
func (a *Array) Len() int { return len(a.Values) }

func (a *Array) JSON() string {
	if len(a.Values) == 0 {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	sb.WriteString(a.Values[0].JSON())
	for _, elt := range a.Values[1:] {
		sb.WriteByte(',')
		sb.WriteString(elt.JSON())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (a *Array) String() string { return fmt.Sprintf("Array(len=%d)", len(a.Values)) }

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	Key   string
	Value Value
}

func (m Member) JSON() string { return Quote(m.Key) + ":" + m.Value.JSON() }

// An Object is a collection of key-value members. Keys are unique; members
// are kept in the order their keys were first set.
type Object struct {
	Members []*Member

	pos map[string]int // key → offset in Members
}

func (*Object) Kind() Kind { return KindObject }

// Set assigns v to key in o. If o already has a member with that key, its
// value is replaced in place; otherwise a new member is added at the end.
func (o *Object) Set(key string, v Value) {
	if i, ok := o.lookup(key); ok {
		o.Members[i].Value = v
		return
	}
	o.pos[key] = len(o.Members)
	o.Members = append(o.Members, &Member{Key: key, Value: v})
}

// Find returns the member of o with the given key, or nil.
func (o *Object) Find(key string) *Member {
	if i, ok := o.lookup(key); ok {
		return o.Members[i]
	}
	return nil
}

// Get returns the value of the member of o with the given key, and reports
// whether such a member exists.
func (o *Object) Get(key string) (Value, bool) {
	if m := o.Find(key); m != nil {
		return m.Value, true
	}
	return nil, false
}

// Keys returns the keys of o in member order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.Members))
	for i, m := range o.Members {
		keys[i] = m.Key
	}
	return keys
}

// Len reports the number of members in o.
func (o *Object) Len() int { return len(o.Members) }

// lookup returns the offset of key in o.Members, if present. The offset
// recorded in the index is checked against Members, and the index is rebuilt
// if the member found there has a different key.
//
// A member whose key was changed in place, in an object whose length has not
// changed since the last rebuild, is found under its new key only after some
// lookup lands on its slot.
func (o *Object) lookup(key string) (int, bool) {
	i, ok := o.index()[key]
	if !ok {
		return 0, false
	} else if i < len(o.Members) && o.Members[i].Key == key {
		return i, true
	}
	o.pos = nil
	i, ok = o.index()[key]
	return i, ok
}

// index returns the key index of o, rebuilding it if Members was constructed
// or resized directly. If Members has duplicate keys, the last one wins.
func (o *Object) index() map[string]int {
	if o.pos == nil || len(o.pos) != len(o.Members) {
		o.pos = make(map[string]int, len(o.Members))
		for i, m := range o.Members {
			o.pos[m.Key] = i
		}
	}
	return o.pos
}

func (o *Object) JSON() string {
	if len(o.Members) == 0 {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteByte('{')
	sb.WriteString(o.Members[0].JSON())
	for _, elt := range o.Members[1:] {
		sb.WriteByte(',')
		sb.WriteString(elt.JSON())
	}
	sb.WriteByte('}')
	return sb.String()
}

func (o *Object) String() string { return fmt.Sprintf("Object(len=%d)", len(o.Members)) }
