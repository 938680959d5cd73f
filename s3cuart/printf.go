// s3cuart/printf.go

package s3cuart

import (
	"io"
	"strings"
)

// UnknownVerbPolicy decides what a directive outside %s %d %x %c %% does.
type UnknownVerbPolicy uint8

const (
	// DropUnknown emits nothing and consumes no argument ("%q" vanishes).
	DropUnknown UnknownVerbPolicy = iota
	// EchoUnknown emits the directive as written and consumes no argument.
	EchoUnknown
)

// Formatter renders printf-style format strings one byte at a time. The zero
// value is ready to use.
//
// Supported directives, all without width or flags:
//
//	%s  string, []byte or String() value, up to its end or first NUL
//	%d  any integer, truncated to int32, signed decimal
//	%x  any integer, truncated to uint32, lowercase hex, no padding
//	%c  any integer, its low byte
//	%%  a literal '%', no argument
//
// The format itself ends at its first NUL. A '%' as the last character emits
// nothing.
type Formatter struct {
	Unknown UnknownVerbPolicy
}

// Fprintf writes format to w, consuming one argument per directive. It
// returns the number of bytes written.
//
// A directive whose argument is missing or of the wrong type emits nothing;
// formatting carries on and the first such problem is returned as an
// *ArgError once the format is done. An error from w stops the call at once.
func (f Formatter) Fprintf(w io.ByteWriter, format string, args ...any) (int, error) {
	p := printer{w: w}
	cur := newCursor(args)
	defer cur.release()

	var argErr *ArgError
	note := func(e *ArgError) {
		if e != nil && argErr == nil {
			argErr = e
		}
	}

	for i := 0; i < len(format) && format[i] != 0 && p.err == nil; i++ {
		ch := format[i]
		if ch != '%' {
			p.put(ch)
			continue
		}
		i++
		if i >= len(format) || format[i] == 0 {
			break
		}
		switch verb := format[i]; verb {
		case 's':
			s, e := cur.str(verb)
			note(e)
			p.cstring(s)
		case 'd':
			v, e := cur.int32(verb)
			note(e)
			if e == nil {
				p.decimal(v)
			}
		case 'x':
			v, e := cur.uint32(verb)
			note(e)
			if e == nil {
				p.hex(v)
			}
		case 'c':
			v, e := cur.char(verb)
			note(e)
			if e == nil {
				p.put(v)
			}
		case '%':
			p.put('%')
		default:
			if f.Unknown == EchoUnknown {
				p.put('%')
				p.put(verb)
			}
		}
	}

	if p.err != nil {
		return p.n, p.err
	}
	if argErr != nil {
		return p.n, argErr
	}
	return p.n, nil
}

// Fprintf formats with the default Formatter.
func Fprintf(w io.ByteWriter, format string, args ...any) (int, error) {
	return Formatter{}.Fprintf(w, format, args...)
}

// Sprintf formats with the default Formatter and returns the result.
func Sprintf(format string, args ...any) (string, error) {
	var sb strings.Builder
	_, err := Fprintf(&sb, format, args...)
	return sb.String(), err
}

// printer counts bytes and latches the first write error.
type printer struct {
	w   io.ByteWriter
	n   int
	err error
}

func (p *printer) put(c byte) {
	if p.err != nil {
		return
	}
	if p.err = p.w.WriteByte(c); p.err == nil {
		p.n++
	}
}

func (p *printer) cstring(s string) {
	for i := 0; i < len(s) && s[i] != 0; i++ {
		p.put(s[i])
	}
}

func (p *printer) decimal(v int32) {
	// Magnitude in uint32 so that -2147483648 needs no overflowing negation.
	m := uint32(v)
	if v < 0 {
		p.put('-')
		m = -m
	}
	var buf [10]byte
	i := len(buf)
	for {
		i--
		buf[i] = byte('0' + m%10)
		m /= 10
		if m == 0 {
			break
		}
	}
	for _, c := range buf[i:] {
		p.put(c)
	}
}

const hexDigits = "0123456789abcdef"

func (p *printer) hex(v uint32) {
	var buf [8]byte
	i := len(buf)
	for {
		i--
		buf[i] = hexDigits[v&0xf]
		v >>= 4
		if v == 0 {
			break
		}
	}
	for _, c := range buf[i:] {
		p.put(c)
	}
}
