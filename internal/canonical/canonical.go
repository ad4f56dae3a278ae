// Package canonical serializes commitment payloads into the exact byte string
// used as a hash preimage. The encoding is a strict function of field values:
// object keys are sorted, strings are NFC normalized, separators carry no
// whitespace, and floats are forbidden (prices use the fixed-scale Price type).
package canonical

import (
	"bytes"
	"fmt"
	"sort"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Value is a sealed interface over the types allowed in a canonical payload.
// Only String, Int, Bool, Price, Array, and Object implement it.
// There is deliberately no float type: floats break byte reproducibility.
type Value interface {
	canonicalValue() // sealed
}

// String is a canonical string value.
type String string

func (String) canonicalValue() {}

// Int is a canonical integer value. Always int64, never float64.
type Int int64

func (Int) canonicalValue() {}

// Bool is a canonical boolean value.
type Bool bool

func (Bool) canonicalValue() {}

// Array is an ordered list of canonical values.
type Array []Value

func (Array) canonicalValue() {}

// Object is a map of string keys to canonical values.
// Serialization order is always SortedKeys(), never map iteration order.
type Object map[string]Value

func (Object) canonicalValue() {}

// SortedKeys returns the object's keys in byte-lexicographic order.
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Marshal produces the canonical byte encoding of v.
//
// Contract: two values with equal contents (including equal fixed-precision
// price representation) marshal to identical bytes, independent of how their
// objects were built. Nulls and floats return an error.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshal(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshal(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical payloads")
	case String:
		return marshalString(buf, string(val))
	case Int:
		fmt.Fprintf(buf, "%d", int64(val))
		return nil
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case Price:
		// Fixed four-decimal number token, e.g. 450.2500.
		buf.WriteString(val.String())
		return nil
	case Array:
		return marshalArray(buf, val)
	case Object:
		return marshalObject(buf, val)
	default:
		return fmt.Errorf("unsupported canonical type: %T", v)
	}
}

// marshalString writes a JSON string with NFC normalization and no HTML
// escaping. Only control characters, backslash, and quote are escaped, so the
// encoding never depends on encoder defaults.
func marshalString(buf *bytes.Buffer, s string) error {
	normalized := norm.NFC.String(s)
	if !utf8.ValidString(normalized) {
		return fmt.Errorf("invalid UTF-8 in canonical string")
	}
	buf.WriteByte('"')
	for _, r := range normalized {
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
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
	return nil
}

func marshalArray(buf *bytes.Buffer, arr Array) error {
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshal(buf, elem); err != nil {
			return fmt.Errorf("array[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func marshalObject(buf *bytes.Buffer, obj Object) error {
	buf.WriteByte('{')
	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalString(buf, k); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := marshal(buf, obj[k]); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}
