package ledger

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind enumerates the JSON shapes a claim value can take.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindObject
)

// Value is a JSON value as stored on a claim. The zero value is null.
// Values are compared structurally, so two objects with the same fields
// are equal regardless of key order.
type Value struct {
	kind Kind
	str  string
	num  float64
	flag bool
	list []Value
	obj  map[string]Value
}

func Null() Value             { return Value{} }
func String(s string) Value   { return Value{kind: KindString, str: s} }
func Number(f float64) Value  { return Value{kind: KindNumber, num: f} }
func Int(n int64) Value       { return Value{kind: KindNumber, num: float64(n)} }
func Bool(b bool) Value       { return Value{kind: KindBool, flag: b} }
func List(items ...Value) Value {
	return Value{kind: KindList, list: items}
}
func Object(fields map[string]Value) Value {
	return Value{kind: KindObject, obj: fields}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Empty reports whether the value is null or the empty string.
// Resolution treats both as "no value asserted".
func (v Value) Empty() bool {
	return v.kind == KindNull || (v.kind == KindString && v.str == "")
}

func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

func (v Value) Num() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

func (v Value) Boolean() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.flag, true
}

func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	out, ok := v.obj[key]
	return out, ok
}

// Exists reports the exists flag on a relationship value. Anything that
// is not an object with an explicit boolean flag defaults to true.
func (v Value) Exists() bool {
	if v.kind != KindObject {
		return true
	}
	flag, ok := v.obj["exists"]
	if !ok || flag.kind != KindBool {
		return true
	}
	return flag.flag
}

// AsInt coerces to an integer: numbers truncate, numeric strings parse,
// booleans become 0 or 1. A fractional string like "7.5" does not parse.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindBool:
		if v.flag {
			return 1, true
		}
		return 0, true
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return 0, false
		}
		if v.num >= math.MaxInt64 || v.num < math.MinInt64 {
			return 0, false
		}
		return int64(v.num), true
	case KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.str), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// AsFloat coerces numbers and numeric strings. Booleans do not coerce.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// AsString renders scalar values as text. Lists and objects do not
// coerce, and neither does null.
func (v Value) AsString() (string, bool) {
	switch v.kind {
	case KindString:
		return v.str, true
	case KindNumber:
		return formatNumber(v.num), true
	case KindBool:
		return strconv.FormatBool(v.flag), true
	}
	return "", false
}

// Interface returns the plain Go representation (nil, string, float64,
// bool, []interface{}, map[string]interface{}), matching what
// encoding/json produces when unmarshaling into interface{}.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.flag
	case KindList:
		out := make([]interface{}, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, len(v.obj))
		for k, item := range v.obj {
			out[k] = item.Interface()
		}
		return out
	}
	return nil
}

// Equal is deep structural equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.flag == o.flag
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
	case KindObject:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, vv := range v.obj {
			ov, ok := o.obj[k]
			if !ok || !vv.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON emits canonical JSON: object keys are sorted so the same
// value always serializes to the same bytes.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(formatNumber(v.num)), nil
	case KindBool:
		return []byte(strconv.FormatBool(v.flag)), nil
	case KindList:
		out := []byte{'['}
		for i, item := range v.list {
			if i > 0 {
				out = append(out, ',')
			}
			b, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
		return append(out, ']'), nil
	case KindObject:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := []byte{'{'}
		for i, k := range keys {
			if i > 0 {
				out = append(out, ',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			out = append(out, kb...)
			out = append(out, ':')
			vb, err := v.obj[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			out = append(out, vb...)
		}
		return append(out, '}'), nil
	}
	return nil, fmt.Errorf("unknown value kind %d", v.kind)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := FromJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromJSON parses raw JSON into a Value.
func FromJSON(data []byte) (Value, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Value{}, err
	}
	return fromAny(raw)
}

func fromAny(raw interface{}) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(x), nil
	case float64:
		return Number(x), nil
	case bool:
		return Bool(x), nil
	case []interface{}:
		items := make([]Value, 0, len(x))
		for _, item := range x {
			cv, err := fromAny(item)
			if err != nil {
				return Value{}, err
			}
			items = append(items, cv)
		}
		return Value{kind: KindList, list: items}, nil
	case map[string]interface{}:
		fields := make(map[string]Value, len(x))
		for k, item := range x {
			cv, err := fromAny(item)
			if err != nil {
				return Value{}, err
			}
			fields[k] = cv
		}
		return Value{kind: KindObject, obj: fields}, nil
	}
	return Value{}, fmt.Errorf("unsupported JSON value of type %T", raw)
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
