// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package filter

import (
	"fmt"
	"maps"
	"slices"

	"github.com/creachadair/jfilter/jpath"
)

// Compile constructs a filter that keeps the values selected by each of the
// given path expressions, and discards everything else. Each expression has
// the syntax accepted by jpath.Parse:
//
//	$.name, $['name']   select an object member
//	$[2], $[0,3]        select array elements by offset
//	$[1:4]              select a range of array elements
//	$[*]                select every element of an array
//
// The value at the end of each path is kept whole. Paths are merged, so
// "$.a.b" and "$.a.c" keep both members of "a"; a path that keeps a value
// whole subsumes any longer path through it. Compile with no expressions
// returns a nil filter, which keeps everything.
func Compile(exprs ...string) (*Filter, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	root := new(node)
	for _, s := range exprs {
		e, err := jpath.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", s, err)
		}
		if err := root.add(e); err != nil {
			return nil, fmt.Errorf("compile %q: %w", s, err)
		}
	}
	f, err := root.build()
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return f, nil
}

// MustCompile is as Compile, but panics if the expressions are invalid.
func MustCompile(exprs ...string) *Filter {
	f, err := Compile(exprs...)
	if err != nil {
		panic(err)
	}
	return f
}

// A node is a mutable filter under construction.
type node struct {
	keep  bool  // the value is kept whole
	kind  Kind  // valid if set
	set   bool  // kind has been assigned
	elem  *node // KindCollector
	keys  map[string]*node
	index map[int]*node
	spans []*span // in order of first use
}

// A span is a slice selector [lo, hi) under construction.
type span struct {
	lo, hi int
	node   *node
}

func (n *node) setKind(k Kind) error {
	if n.set && n.kind != k {
		return fmt.Errorf("conflicting selectors: %v and %v", n.kind, k)
	}
	n.kind, n.set = k, true
	return nil
}

func (n *node) add(steps []jpath.Step) error {
	if len(steps) == 0 {
		n.keep = true
		return nil
	}
	step, rest := steps[0], steps[1:]
	switch step.Op {
	case jpath.Member, jpath.Name, jpath.QName:
		if step.Op == jpath.Member && step.Arg2 == jpath.Wildcard.String() {
			return fmt.Errorf("wildcard members are not supported")
		}
		if err := n.setKind(KindObject); err != nil {
			return err
		}
		if n.keys == nil {
			n.keys = make(map[string]*node)
		}
		return child(n.keys, step.Arg1).add(rest)

	case jpath.Wildcard:
		if err := n.setKind(KindCollector); err != nil {
			return err
		}
		if n.elem == nil {
			n.elem = new(node)
		}
		return n.elem.add(rest)

	case jpath.Index:
		offsets, err := step.Offsets()
		if err != nil {
			return err
		}
		if err := n.setKind(KindArray); err != nil {
			return err
		}
		if n.index == nil {
			n.index = make(map[int]*node)
		}
		for _, i := range offsets {
			if err := child(n.index, i).add(rest); err != nil {
				return err
			}
		}
		return nil

	case jpath.Slice:
		lo, hi, err := step.Bounds()
		if err != nil {
			return err
		}
		if err := n.setKind(KindArray); err != nil {
			return err
		}
		if lo == hi {
			return nil
		}
		return n.span(lo, hi).add(rest)

	default:
		return fmt.Errorf("unsupported step %v", step.Op)
	}
}

func child[K comparable](m map[K]*node, key K) *node {
	c, ok := m[key]
	if !ok {
		c = new(node)
		m[key] = c
	}
	return c
}

// span returns the node for the slice [lo, hi) of n, creating it if needed.
func (n *node) span(lo, hi int) *node {
	for _, sp := range n.spans {
		if sp.lo == lo && sp.hi == hi {
			return sp.node
		}
	}
	sp := &span{lo: lo, hi: hi, node: new(node)}
	n.spans = append(n.spans, sp)
	return sp.node
}

// merge adds the selections of src to n. Nodes reachable from src are copied,
// never shared.
func (n *node) merge(src *node) error {
	if src.keep {
		n.keep = true
	}
	if !src.set {
		return nil
	}
	if err := n.setKind(src.kind); err != nil {
		return err
	}
	switch src.kind {
	case KindCollector:
		if n.elem == nil {
			n.elem = new(node)
		}
		return n.elem.merge(src.elem)
	case KindObject:
		if n.keys == nil {
			n.keys = make(map[string]*node)
		}
		for key, c := range src.keys {
			if err := child(n.keys, key).merge(c); err != nil {
				return err
			}
		}
	case KindArray:
		if n.index == nil && len(src.index) != 0 {
			n.index = make(map[int]*node)
		}
		for i, c := range src.index {
			if err := child(n.index, i).merge(c); err != nil {
				return err
			}
		}
		for _, sp := range src.spans {
			if err := n.span(sp.lo, sp.hi).merge(sp.node); err != nil {
				return err
			}
		}
	}
	return nil
}

// segments splits the spans of n into disjoint ranges, each carrying the
// merged selections of every span that covers it.
func (n *node) segments() ([]*span, error) {
	var cuts []int
	for _, sp := range n.spans {
		cuts = append(cuts, sp.lo, sp.hi)
	}
	slices.Sort(cuts)
	cuts = slices.Compact(cuts)

	var out []*span
	for i := 0; i+1 < len(cuts); i++ {
		lo, hi := cuts[i], cuts[i+1]
		var seg *node
		for _, sp := range n.spans {
			if sp.lo <= lo && hi <= sp.hi {
				if seg == nil {
					seg = new(node)
				}
				if err := seg.merge(sp.node); err != nil {
					return nil, err
				}
			}
		}
		if seg == nil {
			continue
		}
		// Join with the previous segment if they select the same values.
		if m := len(out); m > 0 && out[m-1].hi == lo && equalNodes(out[m-1].node, seg) {
			out[m-1].hi = hi
		} else {
			out = append(out, &span{lo: lo, hi: hi, node: seg})
		}
	}
	return out, nil
}

func equalNodes(a, b *node) bool {
	if a.keep != b.keep || a.set != b.set || (a.set && a.kind != b.kind) {
		return false
	}
	if (a.elem == nil) != (b.elem == nil) || (a.elem != nil && !equalNodes(a.elem, b.elem)) {
		return false
	}
	if !maps.EqualFunc(a.keys, b.keys, equalNodes) || !maps.EqualFunc(a.index, b.index, equalNodes) {
		return false
	}
	return slices.EqualFunc(a.spans, b.spans, func(x, y *span) bool {
		return x.lo == y.lo && x.hi == y.hi && equalNodes(x.node, y.node)
	})
}

// build freezes n into an immutable filter.
func (n *node) build() (*Filter, error) {
	if n.keep || !n.set {
		return Identity(), nil
	}
	switch n.kind {
	case KindCollector:
		elem, err := n.elem.build()
		if err != nil {
			return nil, err
		}
		return Collect(elem), nil

	case KindObject:
		keys := make(map[string]*Filter, len(n.keys))
		for key, c := range n.keys {
			f, err := c.build()
			if err != nil {
				return nil, err
			}
			keys[key] = f
		}
		return Object(keys), nil

	case KindArray:
		segs, err := n.segments()
		if err != nil {
			return nil, err
		}
		index := make(map[int]*Filter, len(n.index))
		for i, c := range n.index {
			// An offset also selected by a slice gets the selections of both.
			for _, seg := range segs {
				if seg.lo <= i && i < seg.hi {
					if err := c.merge(seg.node); err != nil {
						return nil, err
					}
				}
			}
			f, err := c.build()
			if err != nil {
				return nil, err
			}
			index[i] = f
		}
		spans := make([]Span, len(segs))
		for j, seg := range segs {
			f, err := seg.node.build()
			if err != nil {
				return nil, err
			}
			spans[j] = Span{Lo: seg.lo, Hi: seg.hi, Filter: f}
		}
		return Array(index, spans...), nil
	}
	panic(fmt.Sprintf("unknown filter kind %v", n.kind))
}
