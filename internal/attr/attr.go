// Package attr defines the constrained attribute values carried by
// provenance records.
//
// Attribute values are limited to strings, 64-bit integers, booleans,
// and arrays/objects thereof. Floats are not representable: timestamps
// and sentence indexes are integers, and allowing floats would make the
// stored form nondeterministic across serialization boundaries. Strings
// are NFC-normalized when marshaled so that the same text always
// produces the same stored bytes.
package attr

import (
	"slices"
	"strconv"
)

// Value is a sealed interface over the allowed attribute value types.
// Only String, Int, Bool, Array, and Object implement it.
type Value interface {
	attrValue()
}

// String is a text attribute value.
type String string

func (String) attrValue() {}

// Int is an integer attribute value. Always int64, never float64.
type Int int64

func (Int) attrValue() {}

// Bool is a boolean attribute value.
type Bool bool

func (Bool) attrValue() {}

// Array is an ordered list of attribute values.
type Array []Value

func (Array) attrValue() {}

// Object is a map of attribute names to values.
// Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) attrValue() {}

// SortedKeys returns the object's keys in ascending byte order.
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Clone returns a deep copy of the object.
func (o Object) Clone() Object {
	out := make(Object, len(o))
	for k, v := range o {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v Value) Value {
	switch val := v.(type) {
	case Array:
		arr := make(Array, len(val))
		for i, elem := range val {
			arr[i] = cloneValue(elem)
		}
		return arr
	case Object:
		return val.Clone()
	default:
		return v
	}
}

// GetString returns the string value for key, or "" if absent or not a string.
func (o Object) GetString(key string) string {
	if s, ok := o[key].(String); ok {
		return string(s)
	}
	return ""
}

// GetInt returns the integer value for key, or 0 if absent or not an integer.
func (o Object) GetInt(key string) int64 {
	if n, ok := o[key].(Int); ok {
		return int64(n)
	}
	return 0
}

// GetStrings returns the value for key as a string slice. Non-string
// elements are skipped.
func (o Object) GetStrings(key string) []string {
	arr, ok := o[key].(Array)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, elem := range arr {
		if s, ok := elem.(String); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// Strings builds an Array from a string slice.
func Strings(values []string) Array {
	arr := make(Array, len(values))
	for i, v := range values {
		arr[i] = String(v)
	}
	return arr
}

// Pairs builds an Array of two-element string arrays, the stored shape
// of part-of-speech tag lists.
func Pairs(pairs [][2]string) Array {
	arr := make(Array, len(pairs))
	for i, p := range pairs {
		arr[i] = Array{String(p[0]), String(p[1])}
	}
	return arr
}

// GetPairs returns the value for key as a slice of two-element string
// pairs, the inverse of Pairs. Malformed elements are skipped.
func (o Object) GetPairs(key string) [][2]string {
	arr, ok := o[key].(Array)
	if !ok {
		return nil
	}
	out := make([][2]string, 0, len(arr))
	for _, elem := range arr {
		pair, ok := elem.(Array)
		if !ok || len(pair) != 2 {
			continue
		}
		first, ok1 := pair[0].(String)
		second, ok2 := pair[1].(String)
		if ok1 && ok2 {
			out = append(out, [2]string{string(first), string(second)})
		}
	}
	return out
}

// Format renders a scalar value as a plain string, used for key encoding.
func Format(v Value) string {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Bool:
		return strconv.FormatBool(bool(val))
	default:
		return ""
	}
}
