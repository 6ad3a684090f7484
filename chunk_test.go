// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jfilter_test

import (
	"errors"
	"testing"

	"github.com/creachadair/jfilter"
	"github.com/creachadair/jfilter/ast"
	"github.com/creachadair/jfilter/filter"
	"github.com/google/go-cmp/cmp"
	jsoniter "github.com/json-iterator/go"
)

var testDocs = []string{
	`null`,
	`true`,
	`-12.5e+3`,
	`"a\nb\"c\\d\/e"`,
	`"日本語 ünïcödé"`,
	`[]`,
	`{}`,
	`[1,"a",[2,3]]`,
	`{"a":1,"b":[true,false,null],"c":{"d":"e"}}`,
	`  { "items" : [ { "name" : "x" , "v" : 1 } , { "name" : "y" , "v" : 2.25 } ] , "meta" : { "n" : 2 } }  `,
	"[\n  0,\n  -0.5,\n  1E-2,\n  123456789\n]\n",
	`{"a":{"a":{"a":{"a":[[[["deep"]]]]}}}}`,
	`{"k":"v","k":"w","j":[{"k":[]}]}`,
}

var testFilters = []string{
	"",
	"$",
	"$.a",
	"$.items[*].name",
	"$[1]",
	"$[0:2]",
	"$.c.d",
	"$.a.a.a.a[0][0]",
	"$.j[*].k",
	"$.k",
}

// compileOrNil compiles expr, or returns nil if expr == "".
func compileOrNil(t testing.TB, expr string) *filter.Filter {
	t.Helper()
	if expr == "" {
		return nil
	}
	f, err := filter.Compile(expr)
	if err != nil {
		t.Fatalf("Compile %q: %v", expr, err)
	}
	return f
}

// parseChunks feeds each chunk to a new parser with filter f, and returns the
// resulting value.
func parseChunks(f *filter.Filter, chunks ...string) (ast.Value, error) {
	p := jfilter.New()
	if err := p.SetFilter(f); err != nil {
		return nil, err
	}
	for _, c := range chunks {
		if err := p.FeedString(c); err != nil {
			return nil, err
		}
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return p.Value()
}

func TestChunkSplits(t *testing.T) {
	for _, expr := range testFilters {
		f := compileOrNil(t, expr)
		for _, doc := range testDocs {
			want, err := parseChunks(f, doc)
			if err != nil {
				t.Fatalf("Parse %#q: unexpected error: %v", doc, err)
			}

			// Every division into two chunks.
			for i := 0; i <= len(doc); i++ {
				got, err := parseChunks(f, doc[:i], doc[i:])
				if err != nil {
					t.Errorf("Parse %#q split at %d: unexpected error: %v", doc, i, err)
					continue
				}
				if diff := cmp.Diff(jsonOf(want), jsonOf(got)); diff != "" {
					t.Errorf("Filter %q, split at %d (-whole, +split):\n%s", expr, i, diff)
				}
			}

			// One byte at a time.
			bytes := make([]string, len(doc))
			for i := range len(doc) {
				bytes[i] = doc[i : i+1]
			}
			got, err := parseChunks(f, bytes...)
			if err != nil {
				t.Errorf("Parse %#q bytewise: unexpected error: %v", doc, err)
			} else if diff := cmp.Diff(jsonOf(want), jsonOf(got)); diff != "" {
				t.Errorf("Filter %q, bytewise (-whole, +split):\n%s", expr, diff)
			}
		}
	}
}

func TestChunkSplitErrors(t *testing.T) {
	tests := []string{
		`[1,]`, `{"a" 1}`, `1e1e1`, `"\u0041"`, `123   456`, `[tru]`, `{"a":[}`,
	}
	for _, doc := range tests {
		_, want := parseChunks(nil, doc)
		if want == nil {
			t.Fatalf("Parse %#q: got nil, want error", doc)
		}
		for i := 0; i <= len(doc); i++ {
			_, got := parseChunks(nil, doc[:i], doc[i:])
			if got == nil || got.Error() != want.Error() {
				t.Errorf("Parse %#q split at %d: got error %v, want %v", doc, i, got, want)
			}
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, doc := range testDocs {
		v := mustParse(t, doc, nil)
		for _, text := range []string{ast.Compact(v), ast.Indent(v, 2), ast.Indent(v, 0)} {
			w, err := jfilter.ParseString(text, nil)
			if err != nil {
				t.Errorf("Reparse %#q: unexpected error: %v", text, err)
				continue
			}
			if !ast.Equal(v, w) {
				t.Errorf("Round trip mismatch:\n input: %s\nreparsed: %s", doc, w.JSON())
			}
		}
	}
}

// toAny converts v into the generic representation used by encoding/json.
func toAny(v ast.Value) any {
	switch t := v.(type) {
	case ast.Null:
		return nil
	case ast.Bool:
		return bool(t)
	case ast.Number:
		return t.Float64()
	case ast.String:
		return string(t)
	case *ast.Array:
		out := make([]any, len(t.Values))
		for i, elt := range t.Values {
			out[i] = toAny(elt)
		}
		return out
	case *ast.Object:
		out := make(map[string]any, t.Len())
		for _, m := range t.Members {
			out[m.Key] = toAny(m.Value)
		}
		return out
	}
	panic("unexpected value type")
}

// Check that unfiltered results agree with a conventional decoder.
func TestReferenceDecoder(t *testing.T) {
	json := jsoniter.ConfigCompatibleWithStandardLibrary
	for _, doc := range testDocs {
		var want any
		if err := json.UnmarshalFromString(doc, &want); err != nil {
			t.Fatalf("Reference decode %#q: %v", doc, err)
		}
		got := toAny(mustParse(t, doc, nil))
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Decode %#q (-want, +got):\n%s", doc, diff)
		}

		// Our encoding must be accepted by the reference decoder too.
		var back any
		if err := json.UnmarshalFromString(ast.Indent(mustParse(t, doc, nil), 1), &back); err != nil {
			t.Errorf("Reference decode of output: %v", err)
		} else if diff := cmp.Diff(want, back); diff != "" {
			t.Errorf("Re-decode %#q (-want, +got):\n%s", doc, diff)
		}
	}
}

func FuzzChunks(f *testing.F) {
	for _, doc := range testDocs {
		f.Add(doc, uint(len(doc)/2))
	}
	f.Add(`{"a":[1,2,{"b":null}]}`, uint(7))
	f.Add(`[1,]`, uint(2))
	f.Add(`"\u0041"`, uint(3))
	f.Fuzz(func(t *testing.T, doc string, split uint) {
		i := int(split % uint(len(doc)+1))
		want, werr := parseChunks(nil, doc)
		got, gerr := parseChunks(nil, doc[:i], doc[i:])
		if (werr == nil) != (gerr == nil) {
			t.Fatalf("Split at %d: whole error %v, split error %v", i, werr, gerr)
		}
		if werr != nil {
			if !errors.Is(werr, jfilter.ErrMalformed) {
				t.Fatalf("Error %v does not wrap ErrMalformed", werr)
			}
			if werr.Error() != gerr.Error() {
				t.Fatalf("Split at %d: got error %v, want %v", i, gerr, werr)
			}
			return
		}
		if !ast.Equal(want, got) {
			t.Fatalf("Split at %d: got %s, want %s", i, jsonOf(got), jsonOf(want))
		}

		// A successful parse must survive a round trip.
		back, err := jfilter.ParseString(want.JSON(), nil)
		if err != nil {
			t.Fatalf("Reparse %#q: %v", want.JSON(), err)
		}
		if !ast.Equal(want, back) {
			t.Fatalf("Round trip: got %s, want %s", back.JSON(), want.JSON())
		}
	})
}
