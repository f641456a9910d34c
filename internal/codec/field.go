package codec

import (
	"bytes"
	"encoding/json"
)

// Field records whether a key was present in a payload. A present JSON null
// leaves Value at its zero value.
type Field[T any] struct {
	Present bool
	Value   T
}

func Set[T any](v T) Field[T] {
	return Field[T]{Present: true, Value: v}
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Present = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Present {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func mapField[W, D any](f Field[W], conv func(W) D) Field[D] {
	if !f.Present {
		return Field[D]{}
	}
	return Field[D]{Present: true, Value: conv(f.Value)}
}
