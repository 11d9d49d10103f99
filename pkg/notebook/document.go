// Package notebook reads and writes Jupyter notebook documents as ordered
// JSON trees.
//
// Only the parts of the nbformat layout needed to locate cells are
// interpreted. Everything else is carried through untouched, in its
// original member order.
package notebook

import (
	"errors"
	"fmt"
)

// Cell types defined by nbformat.
const (
	CellTypeCode     = "code"
	CellTypeMarkdown = "markdown"
)

// Well-known document and cell keys.
const (
	KeyCells          = "cells"
	KeyCellType       = "cell_type"
	KeyOutputs        = "outputs"
	KeyExecutionCount = "execution_count"
	KeyMetadata       = "metadata"
	KeyNBFormat       = "nbformat"
	KeyNBFormatMinor  = "nbformat_minor"
)

// ErrNotObject is returned when the top-level JSON value is not an object.
var ErrNotObject = errors.New("top-level value is not a JSON object")

// Document is a parsed notebook.
type Document struct {
	root *Object
}

// Cell is one entry of the document's cell list.
type Cell struct {
	*Object
}

// Type returns the cell_type discriminator, or "" if it is missing.
func (c Cell) Type() string {
	t, _ := c.GetString(KeyCellType)
	return t
}

// IsCode reports whether the cell is a code cell.
func (c Cell) IsCode() bool {
	return c.Type() == CellTypeCode
}

// Parse decodes notebook text.
func Parse(data []byte) (*Document, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	root, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf("%w (got %s)", ErrNotObject, kindOf(v))
	}
	return &Document{root: root}, nil
}

// NewDocument wraps an existing root object.
func NewDocument(root *Object) *Document {
	if root == nil {
		root = NewObject()
	}
	return &Document{root: root}
}

// Root returns the top-level object.
func (d *Document) Root() *Object {
	return d.root
}

// Cells returns the object entries of the cell list in order. Entries that
// are not objects are skipped. A missing or non-array cell list yields nil.
func (d *Document) Cells() []Cell {
	arr, ok := d.root.GetArray(KeyCells)
	if !ok {
		return nil
	}
	cells := make([]Cell, 0, len(arr))
	for _, item := range arr {
		if obj, ok := item.(*Object); ok {
			cells = append(cells, Cell{obj})
		}
	}
	return cells
}

// Version returns the "major.minor" nbformat version, or "" when the
// document does not declare one.
func (d *Document) Version() string {
	major, ok := d.root.Get(KeyNBFormat)
	if !ok {
		return ""
	}
	minor, ok := d.root.Get(KeyNBFormatMinor)
	if !ok {
		return fmt.Sprint(major)
	}
	return fmt.Sprintf("%v.%v", major, minor)
}

// Marshal encodes the document with the given options.
func (d *Document) Marshal(opts EncodeOptions) ([]byte, error) {
	return Marshal(d.root, opts)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case *Object:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
