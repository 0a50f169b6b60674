package kvs

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// KeyCodec converts keys to and from the TEXT column backing a store.
type KeyCodec[K any] interface {
	EncodeKey(K) (string, error)
	DecodeKey(string) (K, error)
}

// ValueCodec converts values to and from the BLOB column backing a store.
type ValueCodec[V any] interface {
	EncodeValue(V) ([]byte, error)
	DecodeValue([]byte) (V, error)
}

// StringKey stores string keys as-is.
type StringKey struct{}

func (StringKey) EncodeKey(k string) (string, error) { return k, nil }
func (StringKey) DecodeKey(s string) (string, error) { return s, nil }

// StringValue stores string values as raw bytes.
type StringValue struct{}

func (StringValue) EncodeValue(v string) ([]byte, error) { return []byte(v), nil }
func (StringValue) DecodeValue(b []byte) (string, error) { return string(b), nil }

// JSONValue stores values as JSON documents. Stores using it can serve
// partial reads through Store.GetPath.
type JSONValue[V any] struct{}

func (JSONValue[V]) EncodeValue(v V) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONValue[V]) DecodeValue(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}

// YAMLValue stores values as YAML documents.
type YAMLValue[V any] struct{}

func (YAMLValue[V]) EncodeValue(v V) ([]byte, error) {
	return yaml.Marshal(v)
}

func (YAMLValue[V]) DecodeValue(b []byte) (V, error) {
	var v V
	err := yaml.Unmarshal(b, &v)
	return v, err
}
