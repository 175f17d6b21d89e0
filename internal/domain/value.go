package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ValueKind discriminates the variants of a Value.
type ValueKind int

const (
	KindAbsent ValueKind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

var valueKindNames = map[ValueKind]string{
	KindAbsent: "absent",
	KindNull:   "null",
	KindBool:   "bool",
	KindNumber: "number",
	KindString: "string",
	KindList:   "list",
	KindMap:    "map",
}

// String returns the name of the kind.
func (k ValueKind) String() string {
	if name, ok := valueKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Value is a node of the patient data document: a JSON-like recursive tagged union.
//
// The zero Value is Absent, the result of looking up a path that does not exist.
// Absent is distinct from Null (an explicit JSON null) although the evaluator treats
// both as "not yet answered". Values are immutable once built.
type Value struct {
	kind ValueKind
	b    bool
	n    float64
	s    string
	list []Value
	m    map[string]Value
}

// Absent returns the value of a missing path.
func Absent() Value { return Value{} }

// Null returns an explicit null.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List returns a sequence value.
func List(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

// Map returns a mapping value.
func Map(fields map[string]Value) Value {
	cp := make(map[string]Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Value{kind: KindMap, m: cp}
}

// FromAny converts a decoded JSON or YAML tree into a Value.
// Unsupported leaf types become their fmt representation as a string.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case *Value:
		if t == nil {
			return Null()
		}
		return *t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int8:
		return Number(float64(t))
	case int16:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case uint:
		return Number(float64(t))
	case uint8:
		return Number(float64(t))
	case uint16:
		return Number(float64(t))
	case uint32:
		return Number(float64(t))
	case uint64:
		return Number(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return String(t.String())
		}
		return Number(f)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return Value{kind: KindList, list: items}
	case []string:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = String(item)
		}
		return Value{kind: KindList, list: items}
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			fields[k] = FromAny(item)
		}
		return Value{kind: KindMap, m: fields}
	case map[string]string:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			fields[k] = String(item)
		}
		return Value{kind: KindMap, m: fields}
	case map[any]any:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			fields[fmt.Sprint(k)] = FromAny(item)
		}
		return Value{kind: KindMap, m: fields}
	}

	return fromReflect(reflect.ValueOf(v))
}

func fromReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = FromAny(rv.Index(i).Interface())
		}
		return Value{kind: KindList, list: items}
	case reflect.Map:
		fields := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			fields[fmt.Sprint(iter.Key().Interface())] = FromAny(iter.Value().Interface())
		}
		return Value{kind: KindMap, m: fields}
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
		return FromAny(rv.Elem().Interface())
	case reflect.String:
		return String(rv.String())
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float())
	case reflect.Invalid:
		return Null()
	default:
		return String(fmt.Sprint(rv.Interface()))
	}
}

// Kind returns the variant of the value.
func (v Value) Kind() ValueKind { return v.kind }

// IsAbsent reports whether the value is the result of a missed lookup.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// IsMissing reports whether the value counts as "not yet answered": absent or null.
func (v Value) IsMissing() bool { return v.kind == KindAbsent || v.kind == KindNull }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsNumber returns the numeric payload.
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

// AsString returns the string payload.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsList returns a copy of the list items.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	cp := make([]Value, len(v.list))
	copy(cp, v.list)
	return cp, true
}

// Len returns the number of items of a list or fields of a map, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.m)
	default:
		return 0
	}
}

// Keys returns the sorted field names of a map value.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the field of a map value, or Absent.
func (v Value) Get(key string) Value {
	if v.kind != KindMap {
		return Absent()
	}
	child, ok := v.m[key]
	if !ok {
		return Absent()
	}
	return child
}

// Index returns the item of a list value, or Absent.
func (v Value) Index(i int) Value {
	if v.kind != KindList || i < 0 || i >= len(v.list) {
		return Absent()
	}
	return v.list[i]
}

// Lookup walks the path segments. Map nodes are traversed by key, list nodes by
// decimal index. Any miss yields Absent.
func (v Value) Lookup(path []string) Value {
	cur := v
	for _, seg := range path {
		switch cur.kind {
		case KindMap:
			cur = cur.Get(seg)
		case KindList:
			i, err := strconv.Atoi(seg)
			if err != nil {
				return Absent()
			}
			cur = cur.Index(i)
		default:
			return Absent()
		}
		if cur.IsAbsent() {
			return cur
		}
	}
	return cur
}

// With returns a copy of a map value with key set. Non-map receivers are treated
// as an empty map.
func (v Value) With(key string, child Value) Value {
	fields := make(map[string]Value, len(v.m)+1)
	if v.kind == KindMap {
		for k, item := range v.m {
			fields[k] = item
		}
	}
	fields[key] = child
	return Value{kind: KindMap, m: fields}
}

// Equal reports deep equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindAbsent, KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n
	case KindString:
		return v.s == o.s
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, item := range v.m {
			other, ok := o.m[k]
			if !ok || !item.Equal(other) {
				return false
			}
		}
		return true
	}
	return false
}

// Contains reports whether a list value has an item equal to x. Non-lists contain nothing.
func (v Value) Contains(x Value) bool {
	if v.kind != KindList {
		return false
	}
	for _, item := range v.list {
		if item.Equal(x) {
			return true
		}
	}
	return false
}

// Interface converts the value back into plain Go data (nil, bool, float64, string,
// []any, map[string]any).
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindList:
		items := make([]any, len(v.list))
		for i, item := range v.list {
			items[i] = item.Interface()
		}
		return items
	case KindMap:
		fields := make(map[string]any, len(v.m))
		for k, item := range v.m {
			fields[k] = item.Interface()
		}
		return fields
	default:
		return nil
	}
}

// String renders the value for logs and traces.
func (v Value) String() string {
	switch v.kind {
	case KindAbsent:
		return "<absent>"
	case KindString:
		return strconv.Quote(v.s)
	default:
		data, err := json.Marshal(v.Interface())
		if err != nil {
			return fmt.Sprintf("<%s>", v.kind)
		}
		return string(data)
	}
}

// MarshalJSON implements json.Marshaler. Absent encodes as null.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	*v = FromAny(raw)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	*v = FromAny(raw)
	return nil
}
