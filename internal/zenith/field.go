package zenith

import (
	"bytes"
	"encoding/json"
)

// FieldState records how a field appeared in an update payload.
type FieldState int

const (
	FieldAbsent FieldState = iota
	FieldNull
	FieldPresent
)

// Field is an update payload value that distinguishes absent, null and set.
// Use it with the omitzero tag option so absent fields are not written.
type Field[T any] struct {
	State FieldState
	Value T
}

// Present returns a Field holding v.
func Present[T any](v T) Field[T] {
	return Field[T]{State: FieldPresent, Value: v}
}

// Null returns a Field that was sent as null.
func Null[T any]() Field[T] {
	return Field[T]{State: FieldNull}
}

// IsZero reports whether the field was absent.
func (f Field[T]) IsZero() bool {
	return f.State == FieldAbsent
}

// UnmarshalJSON is only called when the key is present.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.State = FieldNull
		f.Value = zero
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.State = FieldPresent
	f.Value = v
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.State != FieldPresent {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
