// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package filter defines decision trees that control which parts of a JSON
// document are materialized by a parser.
//
// A Filter mirrors the expected shape of a document. At each value the parser
// asks the filter for its Decision: Keep the value whole, Discard it without
// building any of its contents, or Continue into it and consult the child
// filters for each object member (Key) or array element (Index).
//
// There are four variants:
//
//	Variant      | Constructor | Decision                       | Children
//	------------ | ----------- | ------------------------------ | ----------------------------
//	Identity     | Identity    | Keep                           | none
//	Collector    | Collect     | Continue arrays, else Discard  | one filter for every index
//	ObjectFilter | Object      | Continue objects, else Discard | per key
//	ArrayFilter  | Array       | Continue arrays, else Discard  | per index or span of indices
//
// A key or index with no child filter is discarded. A nil *Filter means "no
// filter", and keeps everything.
//
// Filters are immutable once constructed, and may be shared among any number
// of concurrent parsers.
package filter

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/creachadair/jfilter/ast"
)

// Decision is the outcome of evaluating a filter against a value.
type Decision byte

// Constants defining the valid Decision values.
const (
	Discard  Decision = iota // skip the value without materializing it
	Keep                     // materialize the value and all its contents
	Continue                 // materialize the container, filter its contents
)

var decisionStr = [...]string{
	Discard:  "discard",
	Keep:     "keep",
	Continue: "continue",
}

func (d Decision) String() string {
	if int(d) >= len(decisionStr) {
		return fmt.Sprintf("Decision(%d)", d)
	}
	return decisionStr[d]
}

// Kind identifies the variant of a Filter.
type Kind byte

// Constants defining the valid Kind values.
const (
	KindIdentity  Kind = iota // keep everything
	KindCollector             // apply one filter to every array element
	KindObject                // per-key filters for an object
	KindArray                 // per-index filters for an array
)

var kindStr = [...]string{
	KindIdentity:  "identity",
	KindCollector: "collector",
	KindObject:    "object",
	KindArray:     "array",
}

func (k Kind) String() string {
	if int(k) >= len(kindStr) {
		return fmt.Sprintf("Kind(%d)", k)
	}
	return kindStr[k]
}

// A Filter is a node of a filter tree. The zero Filter is an Identity.
type Filter struct {
	kind  Kind
	elem  *Filter            // KindCollector
	keys  map[string]*Filter // KindObject
	index map[int]*Filter    // KindArray
	spans []Span             // KindArray, ordered by Lo
}

// A Span selects a half-open range of array offsets [Lo, Hi) and gives the
// filter applied to each element in that range.
type Span struct {
	Lo, Hi int
	Filter *Filter
}

var identity = &Filter{kind: KindIdentity}

// Identity returns a filter that keeps any value.
func Identity() *Filter { return identity }

// Collect returns a filter that applies elem to each element of an array.
// The filtered array contains only the elements elem does not discard.
// If elem == nil, every element is kept.
func Collect(elem *Filter) *Filter {
	if elem == nil {
		elem = identity
	}
	return &Filter{kind: KindCollector, elem: elem}
}

// Object returns a filter for an object that applies the specified filter to
// the value of each listed key. Members whose keys are not listed are
// discarded. A nil entry in keys keeps the corresponding value.
func Object(keys map[string]*Filter) *Filter {
	f := &Filter{kind: KindObject, keys: make(map[string]*Filter, len(keys))}
	for key, sub := range keys {
		f.keys[key] = orIdentity(sub)
	}
	return f
}

// Array returns a filter for an array that applies the specified filter to
// the element at each listed index, and to each element whose offset falls
// within one of the given spans. Elements not selected are discarded, and the
// filtered array contains only the kept elements. A nil entry in index, or a
// span with a nil Filter, keeps the corresponding elements.
//
// An offset listed in index takes precedence over the spans. Among spans that
// overlap, the one with the lowest Lo is used. Empty spans are ignored.
func Array(index map[int]*Filter, spans ...Span) *Filter {
	f := &Filter{kind: KindArray, index: make(map[int]*Filter, len(index))}
	for i, sub := range index {
		f.index[i] = orIdentity(sub)
	}
	for _, sp := range spans {
		if sp.Lo < sp.Hi {
			f.spans = append(f.spans, Span{Lo: sp.Lo, Hi: sp.Hi, Filter: orIdentity(sp.Filter)})
		}
	}
	slices.SortStableFunc(f.spans, func(a, b Span) int { return a.Lo - b.Lo })
	return f
}
func orIdentity(f *Filter) *Filter {
	if f == nil {
		return identity
	}
	return f
}

// Kind reports the variant of f. A nil filter is an Identity.
func (f *Filter) Kind() Kind {
	if f == nil {
		return KindIdentity
	}
	return f.kind
}

// Evaluate reports the decision of f for a value of kind k.
// A nil filter keeps every value.
func (f *Filter) Evaluate(k ast.Kind) Decision {
	switch f.Kind() {
	case KindIdentity:
		return Keep
	case KindCollector, KindArray:
		if k == ast.KindArray {
			return Continue
		}
	case KindObject:
		if k == ast.KindObject {
			return Continue
		}
	}
	return Discard
}

// Key returns the child filter for the member of an object with the given
// key, or nil if f has no filter for that key.
func (f *Filter) Key(key string) *Filter {
	if f.Kind() != KindObject {
		return nil
	}
	return f.keys[key]
}

// Index returns the child filter for the element of an array at offset i,
// or nil if f has no filter for that offset.
func (f *Filter) Index(i int) *Filter {
	switch f.Kind() {
	case KindCollector:
		return f.elem
	case KindArray:
		if sub, ok := f.index[i]; ok {
			return sub
		}
		for _, sp := range f.spans {
			if i < sp.Lo {
				break
			} else if i < sp.Hi {
				return sp.Filter
			}
		}
	}
	return nil
}

// String renders f in a compact notation: "*" for an identity, "[*]:f" for a
// collector, "{k:f,...}" for an object filter and "[i:f,...,lo..hi:f]" for an
// array filter. Keys and indices are listed in sorted order, followed by spans.
func (f *Filter) String() string {
	var sb strings.Builder
	f.render(&sb)
	return sb.String()
}

func (f *Filter) render(sb *strings.Builder) {
	switch f.Kind() {
	case KindIdentity:
		sb.WriteString("*")
	case KindCollector:
		sb.WriteString("[*]:")
		f.elem.render(sb)
	case KindObject:
		sb.WriteByte('{')
		for i, key := range slices.Sorted(maps.Keys(f.keys)) {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(ast.Quote(key))
			sb.WriteByte(':')
			f.keys[key].render(sb)
		}
		sb.WriteByte('}')
	case KindArray:
		sb.WriteByte('[')
		for i, pos := range slices.Sorted(maps.Keys(f.index)) {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Itoa(pos))
			sb.WriteByte(':')
			f.index[pos].render(sb)
		}
		for i, sp := range f.spans {
			if i > 0 || len(f.index) != 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(sb, "%d..%d:", sp.Lo, sp.Hi)
			sp.Filter.render(sb)
		}
		sb.WriteByte(']')
	}
}
