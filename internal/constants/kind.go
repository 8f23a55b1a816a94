package constants

// RecordKind identifies which operation produced a stored result.
type RecordKind string

const (
	// KindRun is a single RunCycles result.
	KindRun RecordKind = "run"

	// KindComparison is an AnalyzePair result.
	KindComparison RecordKind = "comparison"

	// KindDeficit is a DetectDeficit result.
	KindDeficit RecordKind = "deficit"
)

// Valid returns true if the kind is a recognized value.
func (k RecordKind) Valid() bool {
	switch k {
	case KindRun, KindComparison, KindDeficit:
		return true
	}
	return false
}

// String returns the string representation of the kind.
func (k RecordKind) String() string {
	return string(k)
}
