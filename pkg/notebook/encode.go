package notebook

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// EncodeOptions controls the canonical text form of a document.
type EncodeOptions struct {
	// Indent is the number of spaces per nesting level.
	Indent int

	// EnsureASCII escapes every character outside printable ASCII.
	EnsureASCII bool
}

// DefaultEncodeOptions returns the layout Jupyter itself writes:
// one space per level, ": " between names and values, UTF-8 text.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{Indent: 1}
}

const hexDigits = "0123456789abcdef"

// Marshal encodes v in the canonical multi-line layout. Non-empty containers
// put each element on its own line; empty ones are written as [] and {}.
// No trailing newline is added.
func Marshal(v any, opts EncodeOptions) ([]byte, error) {
	if opts.Indent < 0 {
		return nil, fmt.Errorf("negative indent %d", opts.Indent)
	}
	e := &encoder{opts: opts, indent: strings.Repeat(" ", opts.Indent)}
	if err := e.encode(v, 0); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

type encoder struct {
	buf    bytes.Buffer
	opts   EncodeOptions
	indent string
}

func (e *encoder) newline(depth int) {
	e.buf.WriteByte('\n')
	for i := 0; i < depth; i++ {
		e.buf.WriteString(e.indent)
	}
}

func (e *encoder) encode(v any, depth int) error {
	switch val := v.(type) {
	case nil:
		e.buf.WriteString("null")
	case bool:
		e.buf.WriteString(strconv.FormatBool(val))
	case Number:
		e.buf.WriteString(string(val))
	case int:
		e.buf.WriteString(strconv.Itoa(val))
	case int64:
		e.buf.WriteString(strconv.FormatInt(val, 10))
	case string:
		e.quote(val)
	case *Object:
		return e.encodeObject(val, depth)
	case []any:
		return e.encodeArray(val, depth)
	default:
		return fmt.Errorf("cannot encode value of type %T", v)
	}
	return nil
}

func (e *encoder) encodeObject(obj *Object, depth int) error {
	if obj.Len() == 0 {
		e.buf.WriteString("{}")
		return nil
	}

	e.buf.WriteByte('{')
	for i, key := range obj.keys {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.newline(depth + 1)
		e.quote(key)
		e.buf.WriteString(": ")
		if err := e.encode(obj.values[key], depth+1); err != nil {
			return fmt.Errorf("%q: %w", key, err)
		}
	}
	e.newline(depth)
	e.buf.WriteByte('}')
	return nil
}

func (e *encoder) encodeArray(arr []any, depth int) error {
	if len(arr) == 0 {
		e.buf.WriteString("[]")
		return nil
	}

	e.buf.WriteByte('[')
	for i, item := range arr {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.newline(depth + 1)
		if err := e.encode(item, depth+1); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	e.newline(depth)
	e.buf.WriteByte(']')
	return nil
}

func (e *encoder) quote(s string) {
	e.buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			e.buf.WriteString(`\"`)
		case '\\':
			e.buf.WriteString(`\\`)
		case '\n':
			e.buf.WriteString(`\n`)
		case '\r':
			e.buf.WriteString(`\r`)
		case '\t':
			e.buf.WriteString(`\t`)
		case '\b':
			e.buf.WriteString(`\b`)
		case '\f':
			e.buf.WriteString(`\f`)
		default:
			switch {
			case r < 0x20:
				e.escapeRune(r)
			case e.opts.EnsureASCII && r > 0x7e:
				if r > 0xffff {
					r1, r2 := surrogates(r)
					e.escapeRune(r1)
					e.escapeRune(r2)
				} else {
					e.escapeRune(r)
				}
			default:
				e.buf.WriteRune(r)
			}
		}
	}
	e.buf.WriteByte('"')
}

func (e *encoder) escapeRune(r rune) {
	e.buf.WriteString(`\u`)
	e.buf.WriteByte(hexDigits[r>>12&0xf])
	e.buf.WriteByte(hexDigits[r>>8&0xf])
	e.buf.WriteByte(hexDigits[r>>4&0xf])
	e.buf.WriteByte(hexDigits[r&0xf])
}

func surrogates(r rune) (rune, rune) {
	r -= 0x10000
	return 0xd800 + (r>>10)&0x3ff, 0xdc00 + r&0x3ff
}
