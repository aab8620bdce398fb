package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FieldKind is the JSON type a FieldValue arrived as.
type FieldKind int

const (
	KindAbsent FieldKind = iota
	KindNull
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

func (k FieldKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "absent"
	}
}

// FieldValue is one writable field of a request body, kept in the text
// form Postgres would parse. Any JSON value decodes into it, so the
// column type decides whether the value is acceptable: "5" becomes the
// name '5', "yes" becomes is_favorite true, and "maybe" fails in the
// database.
//
// Strings carry their unquoted contents. Numbers, booleans, objects and
// arrays carry their JSON text.
type FieldValue struct {
	kind FieldKind
	text string
}

// StringValue returns the FieldValue of a JSON string.
func StringValue(s string) FieldValue {
	return FieldValue{kind: KindString, text: s}
}

// BoolValue returns the FieldValue of a JSON boolean.
func BoolValue(b bool) FieldValue {
	return FieldValue{kind: KindBool, text: strconv.FormatBool(b)}
}

// NullValue returns the FieldValue of an explicit JSON null.
func NullValue() FieldValue {
	return FieldValue{kind: KindNull}
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*v = FieldValue{}
		return nil
	}

	switch data[0] {
	case 'n':
		*v = NullValue()
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case 't', 'f':
		*v = FieldValue{kind: KindBool, text: string(data)}
	case '{':
		*v = FieldValue{kind: KindObject, text: compact(data)}
	case '[':
		*v = FieldValue{kind: KindArray, text: compact(data)}
	default:
		*v = FieldValue{kind: KindNumber, text: string(data)}
	}
	return nil
}

func compact(data []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return string(data)
	}
	return buf.String()
}

func (v FieldValue) Kind() FieldKind {
	return v.kind
}

// IsNull reports whether the field was absent or an explicit null.
func (v FieldValue) IsNull() bool {
	return v.kind == KindAbsent || v.kind == KindNull
}

// Text returns the value as a query argument: nil for NULL, otherwise the
// text form.
func (v FieldValue) Text() *string {
	if v.IsNull() {
		return nil
	}
	text := v.text
	return &text
}

// String returns the text form, or "" for NULL.
func (v FieldValue) String() string {
	return v.text
}
