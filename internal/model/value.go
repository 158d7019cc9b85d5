package model

import (
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
)

// Kind discriminates the shape of a Value.
type Kind int

const (
	KindScalar Kind = iota
	KindList
	KindMap
)

// Value is a single annotation payload value: a scalar (string, number,
// bool or null), a list of values (multiselect), or a nested map
// (compound schema). The zero Value is a null scalar.
type Value struct {
	kind   Kind
	scalar any
	list   []Value
	fields map[string]Value
}

// String returns a scalar string Value.
func String(s string) Value {
	return Value{kind: KindScalar, scalar: s}
}

// Number returns a scalar numeric Value.
func Number(f float64) Value {
	return Value{kind: KindScalar, scalar: f}
}

// Bool returns a scalar boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindScalar, scalar: b}
}

// List returns a list Value.
func List(vs ...Value) Value {
	return Value{kind: KindList, list: vs}
}

// Map returns a map Value.
func Map(m map[string]Value) Value {
	return Value{kind: KindMap, fields: m}
}

// Kind returns the shape of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// ListValue returns the elements of a list value, or nil for other kinds.
func (v Value) ListValue() []Value {
	return v.list
}

// MapValue returns the fields of a map value, or nil for other kinds.
func (v Value) MapValue() map[string]Value {
	return v.fields
}

// ScalarString returns the canonical string form of a scalar value.
// Numbers render without a trailing exponent ("3" not "3e+00"), booleans
// as "true"/"false", null as "". Non-scalar values return "".
func (v Value) ScalarString() string {
	if v.kind != KindScalar {
		return ""
	}
	switch s := v.scalar.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// Fold returns the Unicode case-folded form of ScalarString, used for
// case-insensitive comparison and consensus counting.
func (v Value) Fold() string {
	return cases.Fold().String(v.ScalarString())
}

// Clone returns a deep copy of the value.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		list := make([]Value, len(v.list))
		for i, e := range v.list {
			list[i] = e.Clone()
		}
		return Value{kind: KindList, list: list}
	case KindMap:
		fields := make(map[string]Value, len(v.fields))
		for k, e := range v.fields {
			fields[k] = e.Clone()
		}
		return Value{kind: KindMap, fields: fields}
	default:
		return v
	}
}

// FromAny converts a decoded-JSON value (string, float64, bool, nil,
// []any, map[string]any) into a Value. Unrecognized Go types become a
// null scalar.
func FromAny(raw any) Value {
	switch t := raw.(type) {
	case string, float64, bool, nil:
		return Value{kind: KindScalar, scalar: t}
	case []any:
		list := make([]Value, len(t))
		for i, e := range t {
			list[i] = FromAny(e)
		}
		return Value{kind: KindList, list: list}
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, e := range t {
			fields[k] = FromAny(e)
		}
		return Value{kind: KindMap, fields: fields}
	default:
		return Value{kind: KindScalar, scalar: nil}
	}
}

// MarshalJSON encodes the value in its natural JSON shape.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindList:
		return json.Marshal(v.list)
	case KindMap:
		return json.Marshal(v.fields)
	default:
		return json.Marshal(v.scalar)
	}
}

// UnmarshalJSON decodes any JSON shape into the matching Value kind.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "model: unmarshal value")
	}
	*v = FromAny(raw)
	return nil
}

// Response is a worker-submitted (or reference) annotation payload,
// keyed by schema name.
type Response map[string]Value

// Clone returns a deep copy of the response.
func (r Response) Clone() Response {
	if r == nil {
		return nil
	}
	out := make(Response, len(r))
	for k, v := range r {
		out[k] = v.Clone()
	}
	return out
}
