// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// A Formatter carries the settings for rendering values as text.
// A zero value renders compact JSON.
type Formatter struct {
	// If positive, each nesting level of an object or array is indented by
	// this many spaces more than its parent, and members and elements are
	// written one per line. Otherwise, the output has no inserted whitespace.
	Indent int
}

// Format renders v to w using the settings from f.
func (f Formatter) Format(w io.Writer, v Value) error {
	if v == nil {
		return errors.New("no value to format")
	}
	bw := bufio.NewWriter(w)
	if f.Indent <= 0 {
		bw.WriteString(v.JSON())
	} else {
		f.formatValue(bw, v, "")
	}
	return bw.Flush()
}

// Compact renders v as compact JSON text.
func Compact(v Value) string { return v.JSON() }

// Indent renders v as JSON text in which each nesting level is indented by
// step spaces. If step ≤ 0 the result is the same as Compact.
func Indent(v Value, step int) string {
	var sb strings.Builder
	if err := (Formatter{Indent: step}).Format(&sb, v); err != nil {
		return ""
	}
	return sb.String()
}

// formatValue writes a representation of v to w, assuming the current line
// is already indented by indent.
func (f Formatter) formatValue(w *bufio.Writer, v Value, indent string) {
	switch t := v.(type) {
	case *Array:
		if len(t.Values) == 0 {
			w.WriteString("[]")
			return
		}
		adent := indent + f.step()
		w.WriteString("[\n")
		for i, elt := range t.Values {
			if i > 0 {
				w.WriteString(",\n")
			}
			w.WriteString(adent)
			f.formatValue(w, elt, adent)
		}
		fmt.Fprint(w, "\n", indent, "]")

	case *Object:
		if len(t.Members) == 0 {
			w.WriteString("{}")
			return
		}
		mdent := indent + f.step()
		w.WriteString("{\n")
		for i, m := range t.Members {
			if i > 0 {
				w.WriteString(",\n")
			}
			fmt.Fprint(w, mdent, Quote(m.Key), ": ")
			f.formatValue(w, m.Value, mdent)
		}
		fmt.Fprint(w, "\n", indent, "}")

	case nil:
		panic("nil value in tree")

	default:
		w.WriteString(t.JSON())
	}
}

func (f Formatter) step() string { return strings.Repeat(" ", f.Indent) }
