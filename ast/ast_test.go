// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package ast_test

import (
	"math"
	"strings"
	"testing"

	"github.com/creachadair/jfilter/ast"
	"github.com/creachadair/mds/mtest"
	"github.com/google/go-cmp/cmp"
)

func TestKind(t *testing.T) {
	tests := []struct {
		v    ast.Value
		want ast.Kind
		str  string
	}{
		{nil, ast.Invalid, "invalid"},
		{ast.Null{}, ast.KindNull, "null"},
		{ast.Bool(true), ast.KindBool, "bool"},
		{ast.Int(1), ast.KindNumber, "number"},
		{ast.Float(1), ast.KindNumber, "number"},
		{ast.String("x"), ast.KindString, "string"},
		{new(ast.Array), ast.KindArray, "array"},
		{new(ast.Object), ast.KindObject, "object"},
	}
	for _, tc := range tests {
		got := ast.KindOf(tc.v)
		if got != tc.want {
			t.Errorf("KindOf(%v): got %v, want %v", tc.v, got, tc.want)
		}
		if s := got.String(); s != tc.str {
			t.Errorf("Kind %d: got %q, want %q", got, s, tc.str)
		}
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		n    ast.Number
		json string
		str  string
	}{
		{ast.Int(0), "0", "Int(0)"},
		{ast.Int(-25), "-25", "Int(-25)"},
		{ast.Float(0), "0.0", "Float(0)"},
		{ast.Float(100), "100.0", "Float(100)"},
		{ast.Float(-1.5), "-1.5", "Float(-1.5)"},
		{ast.Float(1e21), "1e+21", "Float(1e+21)"},
		{ast.Float(0.12), "0.12", "Float(0.12)"},
	}
	for _, tc := range tests {
		if got := tc.n.JSON(); got != tc.json {
			t.Errorf("JSON %v: got %q, want %q", tc.n, got, tc.json)
		}
		if got := tc.n.String(); got != tc.str {
			t.Errorf("String: got %q, want %q", got, tc.str)
		}
	}

	if v := ast.Int(7).Int64(); v != 7 {
		t.Errorf("Int64: got %d, want 7", v)
	}
	if v := ast.Int(7).Float64(); v != 7 {
		t.Errorf("Float64: got %v, want 7", v)
	}
	mtest.MustPanic(t, func() { ast.Float(7).Int64() })
	mtest.MustPanic(t, func() { ast.Float(math.Inf(1)).JSON() })
	mtest.MustPanic(t, func() { ast.Float(math.NaN()).JSON() })
}

func TestQuote(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", `""`},
		{"abc", `"abc"`},
		{"a\"b\\c", `"a\"b\\c"`},
		{"\b\f\n\r\t", `"\b\f\n\r\t"`},
		{"\x00\x1f", `"\u0000\u001f"`},
		{"</tag>", `"</tag>"`},
		{"π≠3", `"π≠3"`},
	}
	for _, tc := range tests {
		if got := ast.Quote(tc.input); got != tc.want {
			t.Errorf("Quote(%q): got %#q, want %#q", tc.input, got, tc.want)
		}
	}
}

func TestObject(t *testing.T) {
	o := new(ast.Object)
	o.Set("b", ast.Int(1))
	o.Set("a", ast.String("x"))
	o.Set("b", ast.Bool(false))
	o.Set("c", ast.Null{})

	if diff := cmp.Diff([]string{"b", "a", "c"}, o.Keys()); diff != "" {
		t.Errorf("Keys (-want, +got):\n%s", diff)
	}
	if got, want := o.JSON(), `{"b":false,"a":"x","c":null}`; got != want {
		t.Errorf("JSON: got %#q, want %#q", got, want)
	}
	if m := o.Find("a"); m == nil || m.Value != ast.String("x") {
		t.Errorf("Find(a): got %+v, want x", m)
	}
	if m := o.Find("nonesuch"); m != nil {
		t.Errorf("Find(nonesuch): got %+v, want nil", m)
	}
	if v, ok := o.Get("b"); !ok || v != ast.Bool(false) {
		t.Errorf("Get(b): got %v, %v; want false, true", v, ok)
	}
	if v, ok := o.Get("d"); ok {
		t.Errorf("Get(d): got %v, want none", v)
	}

	// Members assigned directly are indexed on demand.
	p := &ast.Object{Members: []*ast.Member{
		{Key: "x", Value: ast.Int(1)},
		{Key: "y", Value: ast.Int(2)},
	}}
	if v, ok := p.Get("y"); !ok || v != ast.Int(2) {
		t.Errorf("Get(y): got %v, %v; want 2, true", v, ok)
	}
	p.Set("x", ast.Int(3))
	p.Set("z", ast.Int(4))
	if got, want := p.JSON(), `{"x":3,"y":2,"z":4}`; got != want {
		t.Errorf("JSON: got %#q, want %#q", got, want)
	}
	if n := p.Len(); n != 3 {
		t.Errorf("Len: got %d, want 3", n)
	}
}

func TestObjectEditMembers(t *testing.T) {
	o := &ast.Object{Members: []*ast.Member{
		{Key: "x", Value: ast.Int(1)},
		{Key: "y", Value: ast.Int(2)},
	}}
	if v, ok := o.Get("x"); !ok || v != ast.Int(1) {
		t.Fatalf("Get(x): got %v, %v; want 1, true", v, ok)
	}

	// Reordering members does not change the length of Members.
	o.Members[0], o.Members[1] = o.Members[1], o.Members[0]
	if v, ok := o.Get("x"); !ok || v != ast.Int(1) {
		t.Errorf("Get(x) after swap: got %v, %v; want 1, true", v, ok)
	}
	if v, ok := o.Get("y"); !ok || v != ast.Int(2) {
		t.Errorf("Get(y) after swap: got %v, %v; want 2, true", v, ok)
	}

	// Rename x to z in place.
	o.Members[1].Key = "z"
	if v, ok := o.Get("x"); ok {
		t.Errorf("Get(x) after rename: got %v, want none", v)
	}
	if v, ok := o.Get("z"); !ok || v != ast.Int(1) {
		t.Errorf("Get(z) after rename: got %v, %v; want 1, true", v, ok)
	}

	// Replace a member with a different one.
	o.Members[0] = &ast.Member{Key: "w", Value: ast.Int(3)}
	if m := o.Find("y"); m != nil {
		t.Errorf("Find(y) after replace: got %+v, want nil", m)
	}
	if m := o.Find("w"); m == nil || m.Value != ast.Int(3) {
		t.Errorf("Find(w) after replace: got %+v, want 3", m)
	}

	o.Set("z", ast.Int(4))
	o.Set("x", ast.Int(5))
	if got, want := o.JSON(), `{"w":3,"z":4,"x":5}`; got != want {
		t.Errorf("JSON: got %#q, want %#q", got, want)
	}
}

func TestFormat(t *testing.T) {
	v := ast.ToValue(map[string]any{
		"list":  []any{1, "two", 3.5, []any{}, map[string]any{}},
		"empty": nil,
		"obj":   map[string]any{"ok": true},
	})

	const compact = `{"empty":null,"list":[1,"two",3.5,[],{}],"obj":{"ok":true}}`
	if got := ast.Compact(v); got != compact {
		t.Errorf("Compact: got %#q, want %#q", got, compact)
	}
	if got := ast.Indent(v, 0); got != compact {
		t.Errorf("Indent(0): got %#q, want %#q", got, compact)
	}

	want := strings.TrimSpace(`
{
  "empty": null,
  "list": [
    1,
    "two",
    3.5,
    [],
    {}
  ],
  "obj": {
    "ok": true
  }
}`)
	if diff := cmp.Diff(want, ast.Indent(v, 2)); diff != "" {
		t.Errorf("Indent (-want, +got):\n%s", diff)
	}

	var sb strings.Builder
	if err := (ast.Formatter{Indent: 1}).Format(&sb, ast.String("s")); err != nil {
		t.Errorf("Format: unexpected error: %v", err)
	} else if got := sb.String(); got != `"s"` {
		t.Errorf("Format: got %#q, want %#q", got, `"s"`)
	}
	if err := (ast.Formatter{}).Format(&sb, nil); err == nil {
		t.Error("Format(nil): got nil, want error")
	}
}

func TestPath(t *testing.T) {
	v := ast.ToValue(map[string]any{
		"a": []any{10, map[string]any{"b": "found"}, 30},
	})
	tests := []struct {
		path []any
		want string
		ok   bool
	}{
		{nil, v.JSON(), true},
		{[]any{"a", 0}, "10", true},
		{[]any{"a", 1, "b"}, `"found"`, true},
		{[]any{"a", -1}, "30", true},
		{[]any{"a", -3}, "10", true},
		{[]any{"a", 3}, "", false},
		{[]any{"a", -4}, "", false},
		{[]any{"nonesuch"}, "", false},
		{[]any{0}, "", false},
		{[]any{"a", "b"}, "", false},
		{[]any{"a", 2.5}, "", false},
	}
	for _, tc := range tests {
		got, err := ast.Path(v, tc.path...)
		if !tc.ok {
			if err == nil {
				t.Errorf("Path %v: got %v, want error", tc.path, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Path %v: unexpected error: %v", tc.path, err)
		} else if got.JSON() != tc.want {
			t.Errorf("Path %v: got %s, want %s", tc.path, got.JSON(), tc.want)
		}
	}
}

func TestToValue(t *testing.T) {
	v := ast.ToValue([]any{nil, true, 1, int64(2), 3.0, "s", ast.Int(4), map[string]any{"z": 1, "a": 2}})
	if got, want := v.JSON(), `[null,true,1,2,3.0,"s",4,{"a":2,"z":1}]`; got != want {
		t.Errorf("ToValue: got %#q, want %#q", got, want)
	}
	mtest.MustPanic(t, func() { ast.ToValue(struct{}{}) })
	mtest.MustPanic(t, func() { ast.ToValue([]any{1, []int{2}}) })
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{nil, nil, true},
		{1, 1, true},
		{1, 1.0, false},
		{1.5, 1.5, true},
		{"a", "a", true},
		{"a", "b", false},
		{true, false, false},
		{[]any{1, "x"}, []any{1, "x"}, true},
		{[]any{1, "x"}, []any{"x", 1}, false},
		{[]any{1}, []any{1, 2}, false},
		{map[string]any{"a": 1, "b": 2}, map[string]any{"b": 2, "a": 1}, true},
		{map[string]any{"a": 1}, map[string]any{"a": 2}, false},
		{map[string]any{"a": 1}, map[string]any{"b": 1}, false},
		{map[string]any{}, []any{}, false},
	}
	for _, tc := range tests {
		a, b := ast.ToValue(tc.a), ast.ToValue(tc.b)
		if got := ast.Equal(a, b); got != tc.want {
			t.Errorf("Equal(%s, %s): got %v, want %v", a.JSON(), b.JSON(), got, tc.want)
		}
	}

	if !ast.Equal(nil, nil) {
		t.Error("Equal(nil, nil): got false, want true")
	}
	if ast.Equal(ast.Null{}, nil) {
		t.Error("Equal(null, nil): got true, want false")
	}

	// Member order does not matter, but member values do.
	o := new(ast.Object)
	o.Set("b", ast.Int(2))
	o.Set("a", ast.Int(1))
	if !ast.Equal(o, ast.ToValue(map[string]any{"a": 1, "b": 2})) {
		t.Errorf("Equal(%s): got false, want true", o.JSON())
	}
}
