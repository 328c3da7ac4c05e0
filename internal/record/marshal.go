package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/seedcat/seedprov/internal/attr"
)

// marshalAttributes serializes an attribute object to canonical JSON.
// Nil objects marshal as the empty object so stored rows never carry
// SQL NULL.
func marshalAttributes(o attr.Object) (string, error) {
	if o == nil {
		return "{}", nil
	}
	data, err := attr.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("marshal attributes: %w", err)
	}
	return string(data), nil
}

// unmarshalAttributes parses stored attribute JSON.
func unmarshalAttributes(data string) (attr.Object, error) {
	return attr.UnmarshalObject([]byte(data))
}

// marshalUsed serializes an activity's used-entity list.
func marshalUsed(used []UsedEntity) (string, error) {
	if len(used) == 0 {
		return "[]", nil
	}
	return encodeJSON(used)
}

// unmarshalUsed parses a stored used-entity list.
func unmarshalUsed(data string) ([]UsedEntity, error) {
	var used []UsedEntity
	if err := json.Unmarshal([]byte(data), &used); err != nil {
		return nil, fmt.Errorf("unmarshal used entities: %w", err)
	}
	if used == nil {
		used = []UsedEntity{}
	}
	return used, nil
}

// marshalInformedBy serializes an activity's wasInformedBy key list.
func marshalInformedBy(keys []ActivityKey) (string, error) {
	if len(keys) == 0 {
		return "[]", nil
	}
	return encodeJSON(keys)
}

// unmarshalInformedBy parses a stored wasInformedBy key list.
func unmarshalInformedBy(data string) ([]ActivityKey, error) {
	var keys []ActivityKey
	if err := json.Unmarshal([]byte(data), &keys); err != nil {
		return nil, fmt.Errorf("unmarshal informed-by keys: %w", err)
	}
	if keys == nil {
		keys = []ActivityKey{}
	}
	return keys, nil
}

func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
