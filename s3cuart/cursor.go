// s3cuart/cursor.go

package s3cuart

import (
	"errors"
	"strconv"
)

var (
	// ErrMissingArg means a directive ran past the end of the arguments.
	ErrMissingArg = errors.New("missing argument")
	// ErrBadArg means an argument's type does not fit its directive.
	ErrBadArg = errors.New("wrong argument type")
)

// ArgError describes the first argument problem seen by a formatting call.
type ArgError struct {
	Verb  byte // directive letter
	Index int  // zero-based argument slot
	Err   error
}

func (e *ArgError) Error() string {
	return "s3cuart: %" + string(rune(e.Verb)) + " arg " + strconv.Itoa(e.Index) + ": " + e.Err.Error()
}

func (e *ArgError) Unwrap() error { return e.Err }

// cursor walks the variadic arguments of one formatting call. Each read
// consumes exactly one slot whether or not the value fits, so a bad argument
// never shifts the ones after it.
type cursor struct {
	args []any
	pos  int
}

func newCursor(args []any) cursor { return cursor{args: args} }

// next consumes one slot. ok is false once the arguments are exhausted; the
// position still advances so that later errors report the right slot.
func (c *cursor) next() (v any, idx int, ok bool) {
	idx = c.pos
	c.pos++
	if idx >= len(c.args) {
		return nil, idx, false
	}
	return c.args[idx], idx, true
}

// release drops the argument slice at the end of the call.
func (c *cursor) release() { c.args = nil }

func (c *cursor) fail(verb byte, idx int, err error) *ArgError {
	return &ArgError{Verb: verb, Index: idx, Err: err}
}

// int32 reads a signed value at the default promotion width.
func (c *cursor) int32(verb byte) (int32, *ArgError) {
	v, idx, ok := c.next()
	if !ok {
		return 0, c.fail(verb, idx, ErrMissingArg)
	}
	x, ok := toUint64(v)
	if !ok {
		return 0, c.fail(verb, idx, ErrBadArg)
	}
	return int32(x), nil
}

// uint32 reads an unsigned value at the default promotion width.
func (c *cursor) uint32(verb byte) (uint32, *ArgError) {
	v, idx, ok := c.next()
	if !ok {
		return 0, c.fail(verb, idx, ErrMissingArg)
	}
	x, ok := toUint64(v)
	if !ok {
		return 0, c.fail(verb, idx, ErrBadArg)
	}
	return uint32(x), nil
}

// char reads a character-width value.
func (c *cursor) char(verb byte) (byte, *ArgError) {
	v, idx, ok := c.next()
	if !ok {
		return 0, c.fail(verb, idx, ErrMissingArg)
	}
	x, ok := toUint64(v)
	if !ok {
		return 0, c.fail(verb, idx, ErrBadArg)
	}
	return byte(x), nil
}

// str reads a character-sequence reference.
func (c *cursor) str(verb byte) (string, *ArgError) {
	v, idx, ok := c.next()
	if !ok {
		return "", c.fail(verb, idx, ErrMissingArg)
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case interface{ String() string }:
		return s.String(), nil
	}
	return "", c.fail(verb, idx, ErrBadArg)
}

// toUint64 returns the two's complement bits of any integer value.
func toUint64(v any) (uint64, bool) {
	switch x := v.(type) {
	case int:
		return uint64(x), true
	case int8:
		return uint64(x), true
	case int16:
		return uint64(x), true
	case int32:
		return uint64(x), true
	case int64:
		return uint64(x), true
	case uint:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	case uintptr:
		return uint64(x), true
	}
	return 0, false
}
