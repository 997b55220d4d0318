package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	// ErrEmptyInput is returned by Parse when the input holds no JSON value.
	ErrEmptyInput = errors.New("unexpected end of JSON input")

	// ErrTrailingData is returned by Parse when non-whitespace data follows
	// the first JSON value.
	ErrTrailingData = errors.New("unexpected data after top-level JSON value")

	// ErrUnsupportedValue is returned by Encode when the tree contains a Go
	// value that has no JSON representation in this model.
	ErrUnsupportedValue = errors.New("unsupported value in document")
)

// Object is an insertion-ordered JSON object.
type Object = orderedmap.OrderedMap[string, any]

// NewObject returns an empty Object.
func NewObject() *Object {
	return orderedmap.New[string, any]()
}

// Document is a parsed JSON file.
// The root may be any JSON value; only object roots expose lists.
type Document struct {
	root any
}

// New wraps an already-built value tree into a Document.
func New(root any) *Document {
	return &Document{root: root}
}

// Parse decodes exactly one JSON value from data.
//
// Objects keep their key order. A duplicated key keeps the position of its
// first occurrence and the value of its last one.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := decodeValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyInput
		}
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}

	return &Document{root: root}, nil
}

// decodeValue reads the next complete value from dec.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := NewObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("invalid object key %v", keyTok)
			}
			value, err := decodeValue(dec)
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			obj.Set(key, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, unexpectedEOF(err)
		}
		return obj, nil

	case '[':
		arr := make([]any, 0)
		for dec.More() {
			value, err := decodeValue(dec)
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			arr = append(arr, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, unexpectedEOF(err)
		}
		return arr, nil

	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// unexpectedEOF turns io.EOF inside a container into io.ErrUnexpectedEOF so
// that a truncated document is not mistaken for an empty one.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Root returns the root value of the document.
func (d *Document) Root() any {
	return d.root
}

// List returns the array stored under key on an object root.
// It reports false when the root is not an object, the key is missing, or
// the value is not an array.
func (d *Document) List(key string) ([]any, bool) {
	obj, ok := d.root.(*Object)
	if !ok {
		return nil, false
	}
	value, ok := obj.Get(key)
	if !ok {
		return nil, false
	}
	list, ok := value.([]any)
	return list, ok
}

// SetList stores list under key on an object root, keeping the key's
// position when it already exists. It is a no-op for non-object roots.
func (d *Document) SetList(key string, list []any) {
	obj, ok := d.root.(*Object)
	if !ok {
		return
	}
	obj.Set(key, list)
}

// Field returns the value of key when record is an object.
func Field(record any, key string) (any, bool) {
	obj, ok := record.(*Object)
	if !ok || obj == nil {
		return nil, false
	}
	return obj.Get(key)
}
