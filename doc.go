// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package jfilter implements an incremental JSON parser that applies a filter
// while it parses, so that unwanted parts of a document are never built.
//
// # Parsing
//
// A Parser consumes its input in chunks of any size. Construct a parser with
// New and call its Feed method with each chunk as it arrives. Feed never
// blocks and never needs more than the chunk it was given: a chunk may end in
// the middle of a string, an escape sequence, a number, or a literal, and the
// parser resumes where it left off on the next call.
//
//	p := jfilter.New()
//	for chunk := range chunks {
//	   if err := p.Feed(chunk); err != nil {
//	      log.Fatalf("Parse failed: %v", err)
//	   }
//	}
//	if err := p.Finish(); err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//	v, _ := p.Value()
//
// Finish marks the end of the input. It is required only to complete a root
// value that is a bare number, since a number has no terminator of its own;
// IsComplete reports whether a value is already available.
//
// Malformed input is reported as an error of concrete type *SyntaxError,
// which wraps ErrMalformed. Errors are permanent: after an error, Feed has no
// further effect and the parser must be Reset or discarded.
//
// # Filtering
//
// Attach a filter.Filter with SetFilter before feeding any input. As each
// value begins, the parser asks the filter whether to keep it, to discard it,
// or to continue into it and filter each of its members or elements in turn.
// A discarded value is still checked for syntax, but none of its contents
// are stored:
//
//	f := filter.MustCompile("$.items[*].name")
//	p := jfilter.New()
//	p.SetFilter(f)
//	p.FeedString(`{"items": [{"name": "a", "blob": [1, 2, 3]}], "meta": {}}`)
//	v, _ := p.Value() // {"items":[{"name":"a"}]}
//
// The parsed value is an ast.Value, see package ast.
package jfilter
