// Package correctness models how trustworthy a data source currently is.
package correctness

// ID is the coarse health of a data source.
// Values are ordered so that a larger value is a worse state.
type ID int

const (
	Good ID = iota
	Suspect
	Error
)

// String returns the name of the correctness value.
func (c ID) String() string {
	switch c {
	case Good:
		return "Good"
	case Suspect:
		return "Suspect"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// IsUsable reports whether data with this correctness may be shown as live.
func IsUsable(c ID) bool {
	return c != Error
}

// Merge returns the worse of two correctness values.
// Error dominates Suspect which dominates Good.
func Merge(a, b ID) ID {
	if a > b {
		return a
	}
	return b
}

// MergeAll folds Merge over ids. An empty call returns Good.
func MergeAll(ids ...ID) ID {
	result := Good
	for _, id := range ids {
		result = Merge(result, id)
	}
	return result
}
