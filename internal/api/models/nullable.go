package models

import (
	"bytes"
	"encoding/json"
)

// Field is a JSON field that remembers whether it was present in the body.
// A present null leaves Value nil with Set true.
type Field[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON is only called for keys present in the body.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	f.Value = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// Null reports whether the field was sent as an explicit null.
func (f Field[T]) Null() bool {
	return f.Set && f.Value == nil
}
