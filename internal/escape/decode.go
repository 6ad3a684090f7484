// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

// Decode reports the byte denoted by the single-character escape sequence
// "\c", and whether c names a supported escape. Unicode escapes ("\u") are
// not supported and report false.
func Decode(c byte) (byte, bool) {
	switch c {
	case '"', '\\', '/':
		return c, true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	}
	return 0, false
}
