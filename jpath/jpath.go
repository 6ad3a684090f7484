// Package jpath implements a parser for the subset of JSONPath expressions
// that select fixed structural paths: object members, array offsets, bounded
// slices and array wildcards.
package jpath

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

/*
Grammar:

  expr = root steps
  root = "$"
 steps = step [steps]
  step = "." name
  step = "[" value "]"
  step = "[" slice "]"
  name = WORD
  name = "'" QTEXT "'"
  name = "*"
 value = name
 value = INDEX ["," INDEX ...]
 slice = [INDEX] ":" INDEX

  WORD = RE `\w+`
 QTEXT = RE `[^']*`
 INDEX = RE `\d+`

Recursive descent (".."), filter "?(...)" and script "(...)" steps are not
supported, nor are negative offsets or slices without an upper bound, since
none of them can be resolved before the whole input is seen.

Source:
  https://www.ietf.org/archive/id/draft-goessner-dispatch-jsonpath-00.html
*/

// An Expr is a parsed path expression.
type Expr []Step

// Parse parses s as a path expression.
func Parse(s string) (Expr, error) {
	st, _, err := parseExpr(s)
	if err != nil {
		return Expr{}, err
	}
	return st, nil
}

func (e Expr) String() string {
	var buf strings.Builder
	buf.WriteString("$")
	for _, s := range e {
		switch s.Op {
		case Member:
			if s.Arg2 == QName.String() {
				fmt.Fprintf(&buf, "%s'%s'", s.Op, s.Arg1)
			} else {
				fmt.Fprint(&buf, s.Op, s.Arg1)
			}

		case Slice:
			fmt.Fprintf(&buf, "[%s:%s]", s.Arg1, s.Arg2)

		default:
			if s.Op == QName {
				fmt.Fprintf(&buf, "['%s']", s.Arg1)
			} else {
				fmt.Fprintf(&buf, "[%s]", s.Arg1)
			}
		}
	}
	return buf.String()
}

func parseExpr(s string) ([]Step, string, error) {
	t, ok := strings.CutPrefix(s, "$")
	if !ok {
		return nil, s, errors.New("missing root marker")
	}
	return parseSteps(t)
}

func parseSteps(s string) (steps []Step, rest string, _ error) {
	for s != "" {
		step, rest, err := parseStep(s)
		if err != nil {
			return nil, s, err
		}
		steps = append(steps, step)
		s = rest
	}
	return steps, s, nil
}

func parseStep(s string) (_ Step, rest string, _ error) {
	if strings.HasPrefix(s, "..") {
		return Step{}, s, errors.New("recursive descent is not supported")
	}
	if t, ok := strings.CutPrefix(s, "."); ok {
		kind, name, u, err := parseName(t)
		if err != nil {
			return Step{}, s, fmt.Errorf("invalid .name: %w", err)
		}
		return Step{Op: Member, Arg1: name, Arg2: kind.String()}, u, nil
	}
	if t, ok := strings.CutPrefix(s, "["); ok {
		kind, val, u, err := parseValue(t)
		if err != nil {
			return Step{}, t, err
		}
		out := Step{Op: kind, Arg1: val}
		if out.Op == Slice {
			arg2, rest, err := parseIndex(u)
			if err != nil {
				return Step{}, u, errors.New("slice requires an upper bound")
			}
			out.Arg2 = arg2
			u = rest
		}
		u, ok := strings.CutPrefix(u, "]")
		if !ok {
			return Step{}, u, errors.New("missing close bracket")
		}
		return out, u, nil
	}
	return Step{}, s, errors.New("invalid path step")
}

func parseName(s string) (kind Op, name, rest string, _ error) {
	if t, ok := strings.CutPrefix(s, "*"); ok {
		return Wildcard, "*", t, nil
	}
	if m := wordRE.FindStringSubmatch(s); m != nil {
		return Name, m[1], s[len(m[0]):], nil
	}
	if m := quoteRE.FindStringSubmatch(s); m != nil {
		return QName, m[1], s[len(m[0]):], nil
	}
	return Invalid, "", s, errors.New("invalid name")
}

func parseIndex(s string) (text, rest string, _ error) {
	if m := indexRE.FindStringSubmatch(s); m != nil {
		return m[1], s[len(m[0]):], nil
	}
	return "", "", errors.New("invalid index")
}

func parseValue(s string) (kind Op, value, rest string, _ error) {
	if strings.HasPrefix(s, "?(") || strings.HasPrefix(s, "(") {
		return Invalid, "", s, errors.New("filter and script expressions are not supported")
	}
	if text, rest, err := parseIndex(s); err == nil {
		if u, ok := strings.CutPrefix(rest, ":"); ok {
			if strings.Contains(text, ",") {
				return Invalid, "", s, errors.New("invalid slice")
			}
			return Slice, text, u, nil
		}
		return Index, text, rest, nil
	}
	if u, ok := strings.CutPrefix(s, ":"); ok {
		return Slice, "0", u, nil
	}
	if kind, text, rest, err := parseName(s); err == nil {
		return kind, text, rest, nil
	}
	return Invalid, "", s, fmt.Errorf("invalid value: %q", s)
}

var (
	wordRE  = regexp.MustCompile(`^(\w+)`)
	indexRE = regexp.MustCompile(`^(\d+(?:,\d+)*)`)
	quoteRE = regexp.MustCompile(`^'([^\']*)'`)
)

// An Op is a path operator.
type Op byte

const (
	Invalid  Op = iota // invalid operator
	Member             // member lookup (.)
	Index              // array index lookup
	Slice              // array slice
	Wildcard           // wildcard expansion (*)
	Name               // unquoted name expansion
	QName              // quoted name expansion
)

var opText = map[Op]string{
	Invalid:  "invalid",
	Member:   ".",
	Index:    "index",
	Slice:    "slice",
	Wildcard: "*",
	Name:     "name",
	QName:    "qname",
}

func (o Op) String() string {
	if s, ok := opText[o]; ok {
		return s
	}
	return opText[Invalid]
}

// A Step is a single step of a path expression.
//
// For a Member step, Arg1 is the name and Arg2 is the kind of name (as
// reported by Name.String, QName.String, or Wildcard.String). For an Index
// step, Arg1 is a comma-separated list of offsets. For a Slice step, Arg1 and
// Arg2 are the inclusive lower and exclusive upper bounds. For Name, QName,
// and Wildcard steps (written in brackets), Arg1 is the name.
type Step struct {
	Op   Op
	Arg1 string
	Arg2 string
}

// MaxSliceOffsets is the widest slice whose offsets Offsets will enumerate.
const MaxSliceOffsets = 1 << 16

// Offsets returns the array offsets selected by an Index or Slice step.
// It reports an error for other steps, and for a Slice step wider than
// MaxSliceOffsets; use Bounds to handle slices of any width.
func (s Step) Offsets() ([]int, error) {
	switch s.Op {
	case Index:
		var out []int
		for _, text := range strings.Split(s.Arg1, ",") {
			v, err := strconv.Atoi(text)
			if err != nil {
				return nil, fmt.Errorf("invalid offset %q: %w", text, err)
			}
			out = append(out, v)
		}
		return out, nil
	case Slice:
		lo, hi, err := s.Bounds()
		if err != nil {
			return nil, err
		}
		if hi-lo > MaxSliceOffsets {
			return nil, fmt.Errorf("slice [%d:%d] has more than %d offsets", lo, hi, MaxSliceOffsets)
		}
		var out []int
		for i := lo; i < hi; i++ {
			out = append(out, i)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("step %v has no offsets", s.Op)
	}
}

// Bounds returns the inclusive lower and exclusive upper bounds of a Slice
// step. If hi < lo, the slice is empty and hi == lo.
func (s Step) Bounds() (lo, hi int, _ error) {
	if s.Op != Slice {
		return 0, 0, fmt.Errorf("step %v has no bounds", s.Op)
	}
	lo, err := strconv.Atoi(s.Arg1)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid slice bound %q: %w", s.Arg1, err)
	}
	hi, err = strconv.Atoi(s.Arg2)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid slice bound %q: %w", s.Arg2, err)
	}
	return lo, max(lo, hi), nil
}
