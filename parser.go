// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jfilter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/creachadair/jfilter/ast"
	"github.com/creachadair/jfilter/filter"
	"github.com/creachadair/jfilter/internal/escape"
	"go4.org/mem"
)

// A Parser incrementally parses a single JSON value from a sequence of input
// chunks. Each call to Feed consumes an entire chunk, and chunk boundaries may
// fall anywhere in the input, including inside a token. The zero value is not
// ready for use; construct a Parser with New.
//
// A Parser is not safe for concurrent use by multiple goroutines.
type Parser struct {
	states []state // never empty
	frames []frame // never empty; frames[0] is the root
	filt   *filter.Filter
	root   ast.Value
	err    error
	at     Pos // location of the next input byte

	// Scratch for the leaf token in progress. At most one string, number, or
	// literal is being scanned at any time.
	leaf filter.Decision // decision for the value in progress
	skip bool            // text is not being recorded
	text []byte          // decoded text of a string or number
	esc  bool            // the previous byte was a backslash
	num  numState        // progress through a number
	lit  string          // the literal being matched
	nlit int             // number of bytes of lit matched
}

// A frame records the target for values parsed at one level of nesting.
type frame struct {
	kind ast.Kind        // KindObject, KindArray, or Invalid for the root
	mode filter.Decision // the decision for this container
	filt *filter.Filter  // the filter governing this container, if mode == Continue
	val  ast.Value       // *ast.Object or *ast.Array; nil if discarded or root
	key  string          // key of the current member (objects)
	n    int             // number of elements begun (arrays)
}

// New constructs a new Parser ready to accept input.
func New() *Parser {
	p := new(Parser)
	p.Reset()
	return p
}

// Reset discards all progress and the attached filter, if any, and restores p
// to its initial state. Reset does not modify a value previously returned by
// the Value method.
func (p *Parser) Reset() {
	p.states = append(p.states[:0], stStart)
	clear(p.frames[:cap(p.frames)]) // drop references to partial values
	p.frames = append(p.frames[:0], frame{mode: filter.Keep})
	p.filt = nil
	p.root = nil
	p.err = nil
	p.at = Pos{Line: 1}
	p.text = p.text[:0]
	p.esc = false
}

// SetFilter attaches f to p, so that subsequent input is filtered by f.
// A nil filter keeps everything. SetFilter must be called before any input is
// fed to p; otherwise it reports ErrInProgress.
func (p *Parser) SetFilter(f *filter.Filter) error {
	if p.at.Offset != 0 || p.top() != stStart {
		return ErrInProgress
	}
	p.filt = f
	if f == nil {
		p.frames[0] = frame{mode: filter.Keep}
	} else {
		p.frames[0] = frame{mode: filter.Continue, filt: f}
	}
	return nil
}

// Feed consumes all of chunk, advancing the parse as far as the input allows.
// It reports an error if chunk contains malformed input; the error has
// concrete type *SyntaxError. Once p has reported an error, further calls to
// Feed have no effect and report the same error.
func (p *Parser) Feed(chunk []byte) error { return p.feed(mem.B(chunk)) }

// FeedString is as Feed, but consumes the bytes of a string.
func (p *Parser) FeedString(chunk string) error { return p.feed(mem.S(chunk)) }

// Finish reports the end of the input. It completes a root value that has no
// terminator of its own (that is, a number), and reports an error if the input
// did not contain exactly one complete value.
func (p *Parser) Finish() error {
	if p.err != nil {
		return p.err
	}
	if p.top() == stNumber {
		p.endNumber()
	}
	if p.err == nil && p.top() != stStop {
		p.failf("unexpected end of input in %v", p.top())
	}
	return p.err
}

// IsComplete reports whether p has parsed a complete root value with no
// error. Trailing whitespace may still be fed to a complete parser.
func (p *Parser) IsComplete() bool { return p.err == nil && p.top() == stStop }

// Err returns the error that stopped the parse, or nil.
func (p *Parser) Err() error { return p.err }

// Pos reports the location of the next input byte.
func (p *Parser) Pos() Pos { return p.at }

// Depth reports the current nesting depth of objects and arrays.
func (p *Parser) Depth() int { return len(p.frames) - 1 }

// Value returns the root value parsed by p. If the root value was discarded
// by the filter, the result is nil. If p is not complete, Value reports an
// error wrapping ErrNotReady, and also the parse error, if there was one.
//
// The caller owns the returned value; p does not modify it after completion.
func (p *Parser) Value() (ast.Value, error) {
	if p.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotReady, p.err)
	} else if !p.IsComplete() {
		return nil, ErrNotReady
	}
	return p.root, nil
}

// String renders a summary of the state stack of p, for debugging.
func (p *Parser) String() string {
	ss := make([]string, len(p.states))
	for i, s := range p.states {
		ss[i] = s.String()
	}
	return fmt.Sprintf("Parser(at %s, depth %d, [%s])", p.at, p.Depth(), strings.Join(ss, " "))
}

func (p *Parser) feed(data mem.RO) error {
	for i := 0; i < data.Len() && p.err == nil; {
		// Inside a string, consume runs of ordinary bytes at once.
		if p.top() == stString && !p.esc {
			if n := plainRun(data.SliceFrom(i)); n > 0 {
				if !p.skip {
					p.text = mem.Append(p.text, data.Slice(i, i+n))
				}
				p.at.Offset += n
				p.at.Column += n // plain bytes do not include newlines
				i += n
				continue
			}
		}

		c := data.At(i)
		if p.step(c) {
			p.at.advance(c)
			i++
		}
	}
	return p.err
}

// plainRun reports the length of the prefix of data that contains no quotes,
// backslashes, or control characters.
func plainRun(data mem.RO) int {
	for i := 0; i < data.Len(); i++ {
		if c := data.At(i); c < ' ' || c == '"' || c == '\\' {
			return i
		}
	}
	return data.Len()
}

// step advances the state machine by one input byte, and reports whether c
// was consumed. If c was not consumed it must be offered again.
func (p *Parser) step(c byte) bool {
	st := p.top()
	switch st {
	case stString:
		return p.stepString(c)
	case stNumber:
		return p.stepNumber(c)
	case stTrue, stFalse, stNull:
		p.stepLiteral(c)
		return true
	case stError:
		return false
	}

	if isSpace(c) {
		return true
	}
	switch st {
	case stStart:
		p.setTop(stStop)
		p.beginValue(c)

	case stStop:
		p.failf("unexpected %q after end of value", c)

	case stObjectOpen:
		if c == '}' {
			p.pop()
			p.endContainer()
		} else if c == '"' {
			p.setTop(stObjectKey)
			p.beginKey()
		} else {
			p.failf("got %q, want string or %q", c, '}')
		}

	case stObjectKey:
		if c == ':' {
			p.setTop(stObjectColon)
		} else {
			p.failf("got %q, want %q", c, ':')
		}

	case stObjectColon:
		p.setTop(stObjectValue)
		p.beginValue(c)

	case stObjectValue:
		if c == ',' {
			p.setTop(stObjectComma)
		} else if c == '}' {
			p.pop()
			p.endContainer()
		} else {
			p.failf("got %q, want %q or %q", c, ',', '}')
		}

	case stObjectComma:
		if c == '"' {
			p.setTop(stObjectKey)
			p.beginKey()
		} else {
			p.failf("got %q, want string", c)
		}

	case stArrayOpen:
		if c == ']' {
			p.pop()
			p.endContainer()
		} else {
			p.setTop(stArrayValue)
			p.beginValue(c)
		}

	case stArrayValue:
		if c == ',' {
			p.setTop(stArrayComma)
		} else if c == ']' {
			p.pop()
			p.endContainer()
		} else {
			p.failf("got %q, want %q or %q", c, ',', ']')
		}

	case stArrayComma:
		p.setTop(stArrayValue)
		p.beginValue(c)

	default:
		panic(fmt.Sprintf("unhandled parser state %v", st))
	}
	return true
}

// beginValue starts a new value whose first byte is c, consuming c. The
// caller has already replaced the top state with the state to resume when
// the value is complete.
func (p *Parser) beginValue(c byte) {
	switch c {
	case '{':
		p.beginContainer(ast.KindObject, stObjectOpen)
	case '[':
		p.beginContainer(ast.KindArray, stArrayOpen)
	case '"':
		p.beginLeaf(ast.KindString, stString)
		p.esc = false
	case 't':
		p.beginLiteral(ast.KindBool, stTrue, "true")
	case 'f':
		p.beginLiteral(ast.KindBool, stFalse, "false")
	case 'n':
		p.beginLiteral(ast.KindNull, stNull, "null")
	default:
		if c != '-' && !isDigit(c) {
			p.failf("unexpected %q, want value", c)
			return
		}
		p.beginLeaf(ast.KindNumber, stNumber)
		p.num, _ = numStart.next(c)
		p.addText(c)
	}
}

// decide reports the decision and governing filter for a value of kind k
// beginning at the current position of the innermost container.
func (p *Parser) decide(k ast.Kind) (filter.Decision, *filter.Filter) {
	fr := p.topFrame()
	var f *filter.Filter
	switch fr.kind {
	case ast.KindArray:
		i := fr.n
		fr.n++
		if fr.mode != filter.Continue {
			return fr.mode, nil
		}
		f = fr.filt.Index(i)
	case ast.KindObject:
		if fr.mode != filter.Continue {
			return fr.mode, nil
		}
		f = fr.filt.Key(fr.key)
	default:
		if fr.mode != filter.Continue {
			return fr.mode, nil
		}
		f = fr.filt
	}
	if f == nil {
		return filter.Discard, nil
	}
	d := f.Evaluate(k)
	if d == filter.Continue && k != ast.KindObject && k != ast.KindArray {
		d = filter.Keep
	}
	return d, f
}

func (p *Parser) beginContainer(k ast.Kind, st state) {
	d, f := p.decide(k)
	fr := frame{kind: k, mode: d}
	if d == filter.Continue {
		fr.filt = f
	}
	if d != filter.Discard {
		if k == ast.KindObject {
			fr.val = new(ast.Object)
		} else {
			fr.val = new(ast.Array)
		}
	}
	p.frames = append(p.frames, fr)
	p.push(st)
}

// endContainer completes the innermost object or array and attaches it to
// its parent. The caller has already popped its state.
func (p *Parser) endContainer() {
	fr := p.topFrame()
	p.frames = p.frames[:len(p.frames)-1]
	if fr.mode != filter.Discard {
		p.attach(fr.val)
	}
}

// attach stores a completed value into the innermost container.
func (p *Parser) attach(v ast.Value) {
	fr := p.topFrame()
	switch fr.kind {
	case ast.KindObject:
		fr.val.(*ast.Object).Set(fr.key, v)
	case ast.KindArray:
		fr.val.(*ast.Array).Append(v)
	default:
		p.root = v
	}
}

func (p *Parser) beginLeaf(k ast.Kind, st state) {
	p.leaf, _ = p.decide(k)
	p.skip = p.leaf == filter.Discard
	p.text = p.text[:0]
	p.push(st)
}

// endLeaf attaches v, unless the value in progress is being discarded.
func (p *Parser) endLeaf(v ast.Value) {
	if p.leaf != filter.Discard {
		p.attach(v)
	}
}

// beginKey starts scanning an object member key.
func (p *Parser) beginKey() {
	p.skip = p.topFrame().mode == filter.Discard
	p.text = p.text[:0]
	p.esc = false
	p.push(stString)
}

func (p *Parser) addText(c byte) {
	if !p.skip {
		p.text = append(p.text, c)
	}
}

func (p *Parser) stepString(c byte) bool {
	if p.esc {
		p.esc = false
		if b, ok := escape.Decode(c); ok {
			p.addText(b)
		} else if c == 'u' {
			p.failf("unsupported Unicode escape")
		} else {
			p.failf("invalid %q after escape", c)
		}
		return true
	}

	switch {
	case c == '"':
		p.pop()
		p.endString()
	case c == '\\':
		p.esc = true
	case c < ' ':
		p.failf("unescaped control %q in string", c)
	default:
		p.addText(c)
	}
	return true
}

// endString completes a string, which is either a member key or a value.
func (p *Parser) endString() {
	if !p.skip && !utf8.Valid(p.text) {
		p.failf("invalid UTF-8 in string")
		return
	}
	if p.top() == stObjectKey {
		if !p.skip {
			p.topFrame().key = string(p.text)
		}
		return
	}
	if !p.skip {
		p.endLeaf(ast.String(p.text))
	}
}

func (p *Parser) stepNumber(c byte) bool {
	if next, ok := p.num.next(c); ok {
		p.num = next
		p.addText(c)
		return true
	} else if isNumByte(c) {
		p.failf("unexpected %q in number", c)
		return true
	}
	p.endNumber()
	return false // c belongs to the enclosing context
}

// endNumber completes a number and pops its state.
func (p *Parser) endNumber() {
	if !p.num.complete() {
		p.failf("incomplete number")
		return
	}
	p.pop()
	if p.skip {
		return
	}
	if p.num.isInt() {
		z, err := strconv.ParseInt(string(p.text), 10, 64)
		if err == nil {
			p.endLeaf(ast.Int(z))
			return
		}
		// Out of range for int64; fall through to floating-point.
	}
	f, err := strconv.ParseFloat(string(p.text), 64)
	if err != nil || math.IsInf(f, 0) {
		p.failf("number %s is out of range", p.text)
		return
	}
	p.endLeaf(ast.Float(f))
}

func (p *Parser) beginLiteral(k ast.Kind, st state, lit string) {
	p.leaf, _ = p.decide(k)
	p.lit, p.nlit = lit, 1
	p.push(st)
}

func (p *Parser) stepLiteral(c byte) {
	if c != p.lit[p.nlit] {
		p.failf("invalid %q in literal %q", c, p.lit)
		return
	}
	p.nlit++
	if p.nlit < len(p.lit) {
		return
	}
	st := p.pop()
	switch st {
	case stTrue:
		p.endLeaf(ast.Bool(true))
	case stFalse:
		p.endLeaf(ast.Bool(false))
	default:
		p.endLeaf(ast.Null{})
	}
}

func (p *Parser) top() state { return p.states[len(p.states)-1] }

func (p *Parser) setTop(s state) { p.states[len(p.states)-1] = s }

func (p *Parser) push(s state) { p.states = append(p.states, s) }

func (p *Parser) pop() state {
	s := p.top()
	p.states = p.states[:len(p.states)-1]
	return s
}

func (p *Parser) topFrame() *frame { return &p.frames[len(p.frames)-1] }

// failf records a syntax error at the current location and moves p to the
// absorbing error state.
func (p *Parser) failf(msg string, args ...any) {
	p.err = &SyntaxError{Location: p.at, Message: fmt.Sprintf(msg, args...)}
	p.push(stError)
}
