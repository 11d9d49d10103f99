package notebook

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json/jsontext"
)

// Number is a JSON number kept as its literal text so that re-encoding
// does not change how it is spelled.
type Number string

// Decode parses a single JSON value into the ordered tree representation:
// *Object, []any, string, Number, bool or nil.
//
// Duplicate object names are accepted; the first position and the last value win.
func Decode(data []byte) (any, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data), jsontext.AllowDuplicateNames(true))

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}

	// Only one top-level value is allowed.
	if _, err := dec.ReadToken(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
		}
		return nil, err
	}

	return v, nil
}

func decodeValue(dec *jsontext.Decoder) (any, error) {
	switch dec.PeekKind() {
	case '{':
		return decodeObject(dec)
	case '[':
		return decodeArray(dec)
	case '0':
		raw, err := dec.ReadValue()
		if err != nil {
			return nil, err
		}
		return Number(raw), nil
	}

	tok, err := dec.ReadToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch tok.Kind() {
	case '"':
		return tok.String(), nil
	case 't':
		return true, nil
	case 'f':
		return false, nil
	case 'n':
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected token %v at offset %d", tok, dec.InputOffset())
	}
}

func decodeObject(dec *jsontext.Decoder) (*Object, error) {
	if _, err := dec.ReadToken(); err != nil {
		return nil, err
	}

	obj := NewObject()
	for dec.PeekKind() != '}' {
		tok, err := dec.ReadToken()
		if err != nil {
			return nil, err
		}
		// The token is voided by the next decoder call.
		name := tok.String()
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(name, v)
	}

	if _, err := dec.ReadToken(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *jsontext.Decoder) ([]any, error) {
	if _, err := dec.ReadToken(); err != nil {
		return nil, err
	}

	arr := make([]any, 0)
	for dec.PeekKind() != ']' {
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}

	if _, err := dec.ReadToken(); err != nil {
		return nil, err
	}
	return arr, nil
}
