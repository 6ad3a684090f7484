// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jfilter

// A state is an entry on the parser's state stack. The state on top of the
// stack determines how the next input byte is interpreted.
type state byte

// Constants defining the parser states.
const (
	stStart       state = iota // before the root value
	stObjectOpen               // after "{"
	stObjectKey                // after a member key
	stObjectColon              // after ":"
	stObjectValue              // after a member value
	stObjectComma              // after "," in an object
	stArrayOpen                // after "["
	stArrayValue               // after an element value
	stArrayComma               // after "," in an array
	stString                   // inside a string
	stNumber                   // inside a number
	stTrue                     // matching "true"
	stFalse                    // matching "false"
	stNull                     // matching "null"
	stError                    // malformed input; absorbing
	stStop                     // after the root value; only whitespace may follow
)

var stateStr = [...]string{
	stStart:       "Start",
	stObjectOpen:  "ObjectOpen",
	stObjectKey:   "ObjectKey",
	stObjectColon: "ObjectColon",
	stObjectValue: "ObjectValue",
	stObjectComma: "ObjectComma",
	stArrayOpen:   "ArrayOpen",
	stArrayValue:  "ArrayValue",
	stArrayComma:  "ArrayComma",
	stString:      "String",
	stNumber:      "Number",
	stTrue:        "TrueStart",
	stFalse:       "FalseStart",
	stNull:        "NullStart",
	stError:       "Error",
	stStop:        "Stop",
}

func (s state) String() string {
	if int(s) >= len(stateStr) {
		return "invalid state"
	}
	return stateStr[s]
}

// numState tracks progress through the grammar of a number:
//
//	-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?
//
// A number has no terminator of its own; it ends at the first byte that
// cannot extend it.
type numState byte

const (
	numStart    numState = iota // nothing yet
	numMinus                    // "-"
	numZero                     // leading "0"
	numInt                      // integer digits
	numDot                      // "."
	numFrac                     // fraction digits
	numExp                      // "e" or "E"
	numExpSign                  // exponent sign
	numExpDigit                 // exponent digits
)

// next reports the state after consuming c, and false if c cannot extend a
// number in state n.
func (n numState) next(c byte) (numState, bool) {
	switch n {
	case numStart:
		if c == '-' {
			return numMinus, true
		}
		fallthrough
	case numMinus:
		if c == '0' {
			return numZero, true
		} else if isDigit(c) {
			return numInt, true
		}
	case numInt:
		if isDigit(c) {
			return numInt, true
		}
		fallthrough
	case numZero:
		if c == '.' {
			return numDot, true
		} else if c == 'e' || c == 'E' {
			return numExp, true
		}
	case numDot:
		if isDigit(c) {
			return numFrac, true
		}
	case numFrac:
		if isDigit(c) {
			return numFrac, true
		} else if c == 'e' || c == 'E' {
			return numExp, true
		}
	case numExp:
		if c == '-' || c == '+' {
			return numExpSign, true
		}
		fallthrough
	case numExpSign, numExpDigit:
		if isDigit(c) {
			return numExpDigit, true
		}
	}
	return n, false
}

// complete reports whether n is a state in which a number may end.
func (n numState) complete() bool {
	return n == numZero || n == numInt || n == numFrac || n == numExpDigit
}

// isInt reports whether a complete number in state n is an integer.
func (n numState) isInt() bool { return n == numZero || n == numInt }

func isSpace(c byte) bool   { return c == ' ' || c == '\r' || c == '\n' || c == '\t' }
func isDigit(c byte) bool   { return '0' <= c && c <= '9' }
func isNumByte(c byte) bool { return isDigit(c) || c == '.' || c == 'e' || c == 'E' || c == '-' || c == '+' }
