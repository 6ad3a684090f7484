// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape_test

import (
	"testing"

	"github.com/creachadair/jfilter/internal/escape"
	"go4.org/mem"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ``},
		{" ", ` `},
		{"a\t\nb", `a\t\nb`},
		{"\x00\x01\x02", `\u0000\u0001\u0002`},
		{`a "b c\" d"`, `a \"b c\\\" d\"`},
		{"\u2028 \u2029 \ufffd", "\u2028 \u2029 \ufffd"},
		{"héllo, 世界", "héllo, 世界"},
		{"bad\xffbyte", "bad\xffbyte"},
		{"This is the end\v", `This is the end\u000b`},
		{"a/b", "a/b"},
	}
	for _, test := range tests {
		got := string(escape.Quote(mem.S(test.input)))
		if got != test.want {
			t.Errorf("Input: %#q\nGot:  %#q\nWant: %#q", test.input, got, test.want)
		}
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		input byte
		want  byte
		ok    bool
	}{
		{'"', '"', true},
		{'\\', '\\', true},
		{'/', '/', true},
		{'b', '\b', true},
		{'f', '\f', true},
		{'n', '\n', true},
		{'r', '\r', true},
		{'t', '\t', true},
		{'u', 0, false},
		{'x', 0, false},
		{'0', 0, false},
	}
	for _, test := range tests {
		got, ok := escape.Decode(test.input)
		if got != test.want || ok != test.ok {
			t.Errorf("Decode(%q): got (%q, %v), want (%q, %v)", test.input, got, ok, test.want, test.ok)
		}
	}
}
