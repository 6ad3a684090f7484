// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jfilter

import (
	"errors"
	"io"

	"github.com/creachadair/jfilter/ast"
	"github.com/creachadair/jfilter/filter"
)

// DefaultChunkSize is the size of the chunks Parse reads from its input.
const DefaultChunkSize = 16384

// Parse parses a single JSON value from r, applying f (which may be nil).
// It reads r in chunks of DefaultChunkSize bytes until the input is exhausted.
// Only whitespace may follow the value.
func Parse(r io.Reader, f *filter.Filter) (ast.Value, error) {
	p := New()
	if err := p.SetFilter(f); err != nil {
		return nil, err
	}
	buf := make([]byte, DefaultChunkSize)
	for {
		nr, err := r.Read(buf)
		if nr > 0 {
			if perr := p.Feed(buf[:nr]); perr != nil {
				return nil, perr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return p.Value()
}

// ParseString parses a single JSON value from s, applying f (which may be nil).
func ParseString(s string, f *filter.Filter) (ast.Value, error) {
	p := New()
	if err := p.SetFilter(f); err != nil {
		return nil, err
	}
	if err := p.FeedString(s); err != nil {
		return nil, err
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return p.Value()
}
