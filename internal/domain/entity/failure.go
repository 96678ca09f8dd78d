package entity

import "fmt"

// FailureReason classifies why a segment could not become a FlightRecord.
type FailureReason string

const (
	FailureMissingField  FailureReason = "MISSING_FIELD"
	FailureInvalidFormat FailureReason = "INVALID_FORMAT"
)

// NormalizationFailure is the side-channel record for a segment that was
// dropped during normalization. It never aborts the batch.
type NormalizationFailure struct {
	Reason        FailureReason `bson:"reason"`
	Field         string        `bson:"field"`
	RawValue      string        `bson:"rawValue,omitempty"`
	SourceEmailID string        `bson:"sourceEmailId"`
}

func (f NormalizationFailure) String() string {
	if f.RawValue == "" {
		return fmt.Sprintf("%s: %s (email %s)", f.Reason, f.Field, f.SourceEmailID)
	}
	return fmt.Sprintf("%s: %s=%q (email %s)", f.Reason, f.Field, f.RawValue, f.SourceEmailID)
}
