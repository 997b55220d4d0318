package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Indent is the indentation unit used by Encode.
const Indent = "    "

const hexDigits = "0123456789abcdef"

// Encode serialises the document with 4-space indentation.
// The output has no trailing newline and does not escape HTML characters.
func (d *Document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, d.root, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v any, depth int) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case string:
		writeString(buf, t)
	case json.Number:
		buf.WriteString(t.String())
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			buf.WriteString("null")
			return nil
		}
		buf.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
	case int:
		buf.WriteString(strconv.Itoa(t))
	case int64:
		buf.WriteString(strconv.FormatInt(t, 10))
	case []any:
		return encodeArray(buf, t, depth)
	case *Object:
		return encodeObject(buf, t, depth)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
	return nil
}

func encodeArray(buf *bytes.Buffer, arr []any, depth int) error {
	if len(arr) == 0 {
		buf.WriteString("[]")
		return nil
	}

	buf.WriteString("[\n")
	for i, elem := range arr {
		buf.WriteString(strings.Repeat(Indent, depth+1))
		if err := encodeValue(buf, elem, depth+1); err != nil {
			return err
		}
		if i < len(arr)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(strings.Repeat(Indent, depth))
	buf.WriteByte(']')
	return nil
}

func encodeObject(buf *bytes.Buffer, obj *Object, depth int) error {
	if obj == nil {
		buf.WriteString("null")
		return nil
	}
	if obj.Len() == 0 {
		buf.WriteString("{}")
		return nil
	}

	buf.WriteString("{\n")
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		buf.WriteString(strings.Repeat(Indent, depth+1))
		writeString(buf, pair.Key)
		buf.WriteString(": ")
		if err := encodeValue(buf, pair.Value, depth+1); err != nil {
			return err
		}
		if pair.Next() != nil {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(strings.Repeat(Indent, depth))
	buf.WriteByte('}')
	return nil
}

// writeString quotes s the way JSON.stringify does: only quotes,
// backslashes and control characters are escaped.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hexDigits[r>>4])
				buf.WriteByte(hexDigits[r&0xF])
				continue
			}
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}
