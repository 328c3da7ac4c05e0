package attr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Marshal produces deterministic JSON for an attribute value: object
// keys in sorted order, strings NFC-normalized, HTML escaping disabled.
// The same value always marshals to the same bytes, which keeps stored
// rows and exported documents diff-friendly.
func Marshal(v Value) ([]byte, error) {
	switch val := v.(type) {
	case String:
		return marshalString(string(val))
	case Int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case Bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case Array:
		return marshalArray(val)
	case Object:
		return marshalObject(val)
	default:
		return nil, fmt.Errorf("unsupported attribute type: %T", v)
	}
}

func marshalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder appends a trailing newline.
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}
	return result, nil
}

func marshalArray(arr Array) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := Marshal(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalObject(obj Object) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := marshalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := Marshal(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalObject parses JSON into an attribute Object.
// Numbers are decoded as int64; a non-integer number is kept as its raw
// string form rather than rejected, so documents authored elsewhere can
// still be imported.
func UnmarshalObject(data []byte) (Object, error) {
	if len(data) == 0 || string(data) == "{}" {
		return Object{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("unmarshal attributes: %w", err)
	}

	obj := make(Object, len(raw))
	for k, v := range raw {
		val, err := FromJSON(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		if val != nil {
			obj[k] = val
		}
	}
	return obj, nil
}

// FromJSON converts a decoded JSON value (as produced by json.Decoder
// with UseNumber) into an attribute Value. JSON null maps to nil, which
// callers treat as an absent attribute.
func FromJSON(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return Int(n), nil
		}
		return String(val.String()), nil
	case float64:
		// Only reachable when the caller decoded without UseNumber.
		if val == float64(int64(val)) {
			return Int(int64(val)), nil
		}
		return String(strings.TrimRight(fmt.Sprintf("%f", val), "0")), nil
	case []any:
		arr := make(Array, 0, len(val))
		for i, elem := range val {
			converted, err := FromJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			if converted != nil {
				arr = append(arr, converted)
			}
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			converted, err := FromJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			if converted != nil {
				obj[k] = converted
			}
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported JSON value type: %T", v)
	}
}

// ToJSON converts a Value to plain Go types for encoding/json.
func ToJSON(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Bool:
		return bool(val)
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToJSON(elem)
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToJSON(elem)
		}
		return out
	default:
		return nil
	}
}
