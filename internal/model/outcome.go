package model

import "fmt"

// Outcome represents what a run did to a single file.
type Outcome int

const (
	// OutcomeUnchanged means the file was processed and left as it was.
	OutcomeUnchanged Outcome = iota

	// OutcomeModified means at least one stage wrote the file back.
	OutcomeModified

	// OutcomeFailed means the file could not be read, parsed, transformed
	// or written. Stages that completed before the failure may still have
	// written the file.
	OutcomeFailed
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeModified:
		return "modified"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome as its name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name.
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "unchanged":
		*o = OutcomeUnchanged
	case "modified":
		*o = OutcomeModified
	case "failed":
		*o = OutcomeFailed
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}
	return nil
}
