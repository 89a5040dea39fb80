package domain

// PatchKind says what an update payload requested for one field.
type PatchKind int

const (
	// PatchUnchanged means the field was absent from the payload.
	PatchUnchanged PatchKind = iota
	// PatchClear means the field was sent as an explicit null.
	PatchClear
	// PatchSet means the field was sent with a value.
	PatchSet
)

// Patch is a three-way field value on an update payload.
type Patch[T any] struct {
	Kind  PatchKind
	Value T
}

// Set returns a Patch carrying value.
func Set[T any](value T) Patch[T] {
	return Patch[T]{Kind: PatchSet, Value: value}
}

// Clear returns a Patch that clears the field.
func Clear[T any]() Patch[T] {
	return Patch[T]{Kind: PatchClear}
}

// Apply resolves the patch against the current value.
// The second result is false when the payload did not mention the field.
func (p Patch[T]) Apply(current T) (T, bool) {
	switch p.Kind {
	case PatchUnchanged:
		return current, false
	case PatchClear:
		var zero T
		return zero, true
	case PatchSet:
		return p.Value, true
	default:
		PanicInternal(CodeUnhandledEnum, "patch kind")
		return current, false
	}
}
