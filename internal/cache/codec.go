package cache

import "github.com/vmihailenco/msgpack/v5"

// Encode serializes a cached value with MessagePack.
func Encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Decode deserializes a cached value into the provided pointer.
func Decode(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
